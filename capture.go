package steer

import (
	"reflect"
)

// Capture holds the single value produced by the action that matched.
//
// A Capture is empty when the matched action was Call or Pass. Read it with
// To.
type Capture struct {
	value any
	typ   reflect.Type
	set   bool
}

// store sets the value once. The dispatch that owns the capture runs exactly
// one action, so a second store means a broken tree.
func (c *Capture) store(v any, typ reflect.Type) error {
	if c.set {
		return ErrCaptureAlreadySet
	}
	c.value, c.typ, c.set = v, typ, true
	return nil
}

// Empty reports whether no value was captured.
func (c Capture) Empty() bool { return !c.set }

// Value returns the captured value, or nil when empty.
func (c Capture) Value() any { return c.value }

// Type returns the static type the value was captured as, or nil when empty.
func (c Capture) Type() reflect.Type { return c.typ }

// To returns the captured value as T.
//
// It fails with ErrEmptyCapture when nothing was captured and with a
// *CaptureTypeMismatchError when the value is not assignable to T.
//
//	resp, err := steer.To[*steer.Response](capture)
func To[T any](c Capture) (T, error) {
	var zero T
	if !c.set {
		return zero, ErrEmptyCapture
	}
	if v, ok := c.value.(T); ok {
		return v, nil
	}
	want := reflect.TypeOf((*T)(nil)).Elem()
	if c.value == nil && c.typ != nil && c.typ.AssignableTo(want) {
		return zero, nil
	}
	return zero, &CaptureTypeMismatchError{Expected: want, Actual: c.typ}
}
