package steer

import (
	"context"
	"time"
)

// OnSendFunc is called before the request is handed to the transport.
// Use this to enrich the context with logging fields or trace spans.
// The returned context is used for the rest of the request.
type OnSendFunc func(ctx context.Context, method, url string) context.Context

// OnResponseFunc is called when the transport delivered a response, before
// it is routed.
type OnResponseFunc func(ctx context.Context, method, url string, status int)

// OnSuccessFunc is called after the routing tree completed without error.
type OnSuccessFunc func(ctx context.Context, method, url string, c Capture, duration time.Duration)

// OnFailureFunc is called when the request could not be written or the
// routing tree failed. Transport failures go to OnTransportErrorFunc.
type OnFailureFunc func(ctx context.Context, method, url string, err error, duration time.Duration)

// OnTransportErrorFunc is called when no response was received.
type OnTransportErrorFunc func(ctx context.Context, method, url string, err *TransportError)

// hooks holds all configured hook functions.
type hooks struct {
	onSend           []OnSendFunc
	onResponse       []OnResponseFunc
	onSuccess        []OnSuccessFunc
	onFailure        []OnFailureFunc
	onTransportError []OnTransportErrorFunc
}

// WithOnSend adds a hook called before each request is sent.
// Multiple hooks are called in order, with context chaining through each.
//
// Example:
//
//	steer.WithOnSend(func(ctx context.Context, method, url string) context.Context {
//	    return trace.WithSpan(ctx, method+" "+url)
//	})
func WithOnSend(fn OnSendFunc) Option {
	return func(c *Client) {
		c.hooks.onSend = append(c.hooks.onSend, fn)
	}
}

// WithOnResponse adds a hook called when a response arrives.
// Multiple hooks are called in order.
func WithOnResponse(fn OnResponseFunc) Option {
	return func(c *Client) {
		c.hooks.onResponse = append(c.hooks.onResponse, fn)
	}
}

// WithOnSuccess adds a hook called after a dispatch succeeds.
// Multiple hooks are called in order.
//
// Example:
//
//	steer.WithOnSuccess(func(ctx context.Context, method, url string, c steer.Capture, d time.Duration) {
//	    metrics.Timing("http.dispatch", d, "method:"+method)
//	})
func WithOnSuccess(fn OnSuccessFunc) Option {
	return func(c *Client) {
		c.hooks.onSuccess = append(c.hooks.onSuccess, fn)
	}
}

// WithOnFailure adds a hook called after a dispatch fails.
// Multiple hooks are called in order.
func WithOnFailure(fn OnFailureFunc) Option {
	return func(c *Client) {
		c.hooks.onFailure = append(c.hooks.onFailure, fn)
	}
}

// WithOnTransportError adds a hook called when the transport returns no
// response. Multiple hooks are called in order.
func WithOnTransportError(fn OnTransportErrorFunc) Option {
	return func(c *Client) {
		c.hooks.onTransportError = append(c.hooks.onTransportError, fn)
	}
}

func (h *hooks) callOnSend(ctx context.Context, method, url string) context.Context {
	for _, fn := range h.onSend {
		ctx = fn(ctx, method, url)
	}
	return ctx
}

func (h *hooks) callOnResponse(ctx context.Context, method, url string, status int) {
	for _, fn := range h.onResponse {
		fn(ctx, method, url, status)
	}
}

func (h *hooks) callOnSuccess(ctx context.Context, method, url string, c Capture, d time.Duration) {
	for _, fn := range h.onSuccess {
		fn(ctx, method, url, c, d)
	}
}

func (h *hooks) callOnFailure(ctx context.Context, method, url string, err error, d time.Duration) {
	for _, fn := range h.onFailure {
		fn(ctx, method, url, err, d)
	}
}

func (h *hooks) callOnTransportError(ctx context.Context, method, url string, err *TransportError) {
	for _, fn := range h.onTransportError {
		fn(ctx, method, url, err)
	}
}
