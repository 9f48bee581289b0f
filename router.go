package steer

import (
	"context"
	"fmt"
)

// Router is a routing tree of any key type. Trees built with Route
// implement it; the interface exists so trees keyed by different types can
// nest.
type Router interface {
	// Execute routes r and returns the capture of the action that ran.
	Execute(ctx context.Context, r *Response, reader *MessageReader) (Capture, error)

	route(ctx context.Context, r *Response, reader *MessageReader, c *Capture) error
}

// Tree is an ordered set of bindings under one selector.
//
// Evaluation:
//  1. Select the key from the response
//  2. Run the first binding, in declaration order, whose value equals the key
//  3. Otherwise run the wildcard binding, if any
//  4. Otherwise fail with *NoMatchingBindingError
//
// When two bindings share a value the first wins and the second is never
// reached. That is not reported.
//
// A Tree is immutable and safe for concurrent use.
type Tree[A comparable] struct {
	selector Selector[A]
	bindings []Binding[A]
	wildcard *Binding[A]
}

// Route builds a Tree. Only the first wildcard binding counts. Zero Binding
// values, which were never finished by a Builder, are ignored.
//
// Example:
//
//	tree := steer.Route(steer.StatusFamily(),
//	    steer.CaptureAs[User](steer.On(steer.Successful)),
//	    steer.On(steer.ClientError).Dispatch(steer.Route(steer.Status(),
//	        steer.On(http.StatusNotFound).Call(notFound),
//	        steer.Any[int]().Call(badRequest),
//	    )),
//	)
func Route[A comparable](sel Selector[A], bindings ...Binding[A]) *Tree[A] {
	t := &Tree[A]{selector: sel}
	for _, b := range bindings {
		if b.action == nil {
			continue
		}
		if !b.wildcard {
			t.bindings = append(t.bindings, b)
			continue
		}
		if t.wildcard == nil {
			w := b
			t.wildcard = &w
		}
	}
	return t
}

// Execute routes r through the tree and returns the resulting capture.
func (t *Tree[A]) Execute(ctx context.Context, r *Response, reader *MessageReader) (Capture, error) {
	var c Capture
	if err := t.route(ctx, r, reader, &c); err != nil {
		return Capture{}, err
	}
	return c, nil
}

func (t *Tree[A]) route(ctx context.Context, r *Response, reader *MessageReader, c *Capture) error {
	key, err := t.selector.Select(r)
	if err != nil {
		return fmt.Errorf("select key: %w", err)
	}

	b, found := t.match(key)
	if !found {
		return &NoMatchingBindingError{Key: key}
	}
	return b.action.run(ctx, r, reader, c)
}

// match returns the first binding for key, falling back to the wildcard.
func (t *Tree[A]) match(key A) (Binding[A], bool) {
	for _, b := range t.bindings {
		if b.value == key {
			return b, true
		}
	}
	if t.wildcard != nil {
		return *t.wildcard, true
	}
	return Binding[A]{}, false
}
