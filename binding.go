package steer

import (
	"context"
	"reflect"
)

// action is what a binding does when it matches. The set is closed:
// captureResponse, captureBody, call and nested.
type action interface {
	run(ctx context.Context, r *Response, reader *MessageReader, c *Capture) error
}

type captureResponse struct{}

func (captureResponse) run(_ context.Context, r *Response, _ *MessageReader, c *Capture) error {
	return c.store(r, responseType)
}

var responseType = reflect.TypeOf((**Response)(nil)).Elem()

type captureBody[T any] struct{}

func (captureBody[T]) run(_ context.Context, r *Response, reader *MessageReader, c *Capture) error {
	v, err := ReadAs[T](reader, r)
	if err != nil {
		return err
	}
	return c.store(v, reflect.TypeOf((*T)(nil)).Elem())
}

type call struct {
	fn func(ctx context.Context, r *Response) error
}

func (a call) run(ctx context.Context, r *Response, _ *MessageReader, _ *Capture) error {
	if a.fn == nil {
		return nil
	}
	return a.fn(ctx, r)
}

type callBody[T any] struct {
	fn func(ctx context.Context, body T) error
}

func (a callBody[T]) run(ctx context.Context, r *Response, reader *MessageReader, _ *Capture) error {
	v, err := ReadAs[T](reader, r)
	if err != nil {
		return err
	}
	return a.fn(ctx, v)
}

type nested struct {
	router Router
}

func (a nested) run(ctx context.Context, r *Response, reader *MessageReader, c *Capture) error {
	return a.router.route(ctx, r, reader, c)
}

// Binding pairs a key value, or the wildcard, with an action. Bindings are
// immutable and may be reused across trees and requests.
type Binding[A comparable] struct {
	value    A
	wildcard bool
	action   action
}

// Value returns the key the binding matches. It is the zero value for a
// wildcard binding.
func (b Binding[A]) Value() A { return b.value }

// Wildcard reports whether the binding matches any key.
func (b Binding[A]) Wildcard() bool { return b.wildcard }

// Builder starts a Binding. Obtain one from On or Any and finish it with one
// of its action methods, CaptureAs or CallWith.
type Builder[A comparable] struct {
	value    A
	wildcard bool
}

// On starts a binding that matches value.
//
//	steer.On(http.StatusNotFound).Capture()
func On[A comparable](value A) Builder[A] {
	return Builder[A]{value: value}
}

// Any starts a wildcard binding. The wildcard runs only when no binding with
// an exact value matched, wherever it appears in the list.
//
//	steer.Any[int]().Call(logUnexpected)
func Any[A comparable]() Builder[A] {
	return Builder[A]{wildcard: true}
}

func (b Builder[A]) bind(a action) Binding[A] {
	return Binding[A]{value: b.value, wildcard: b.wildcard, action: a}
}

// Capture captures the response itself. Its body is not read, so the caller
// can still read it in full and must close it.
func (b Builder[A]) Capture() Binding[A] {
	return b.bind(captureResponse{})
}

// Call invokes fn with the response and captures nothing.
func (b Builder[A]) Call(fn func(ctx context.Context, r *Response) error) Binding[A] {
	return b.bind(call{fn: fn})
}

// Pass does nothing and captures nothing. Use it to accept a key explicitly.
func (b Builder[A]) Pass() Binding[A] {
	return b.bind(call{})
}

// Dispatch routes the same response through a nested tree.
//
//	steer.On(steer.ClientError).Dispatch(steer.Route(steer.Status(),
//	    steer.On(http.StatusNotFound).Call(notFound),
//	))
func (b Builder[A]) Dispatch(r Router) Binding[A] {
	return b.bind(nested{router: r})
}

// CaptureAs captures the body decoded into T.
//
// This is a package-level function (not a method) due to Go generics
// limitations: methods cannot have type parameters independent of the
// receiver.
//
//	steer.CaptureAs[User](steer.On(http.StatusOK))
func CaptureAs[T any, A comparable](b Builder[A]) Binding[A] {
	return b.bind(captureBody[T]{})
}

// CallWith invokes fn with the body decoded into T and captures nothing.
//
//	steer.CallWith(steer.On(http.StatusBadRequest), func(ctx context.Context, p Problem) error {
//	    return p
//	})
func CallWith[T any, A comparable](b Builder[A], fn func(ctx context.Context, body T) error) Binding[A] {
	return b.bind(callBody[T]{fn: fn})
}
