package steer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/apex/log"
)

// Doer sends an HTTP request and returns its response. *http.Client
// implements it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client sends requests and routes their responses.
//
// Usage:
//  1. Create a client with New
//  2. Start a request with Request or one of the verb helpers
//  3. Route the response with Request.Dispatch or Dispatch
//  4. Wait on the returned Future
//
// Client is safe for concurrent use.
type Client struct {
	transport  Doer
	converters []Converter
	baseURL    string
	header     http.Header
	logger     log.Interface
	hooks      hooks
}

// Option configures a Client.
type Option func(*Client)

// New creates a Client with the given options.
//
// By default the client sends through http.DefaultClient, uses
// DefaultConverters and logs to log.Log.
//
// Example:
//
//	c := steer.New(
//	    steer.WithBaseURL("https://api.example.com"),
//	    steer.WithOnFailure(func(ctx context.Context, method, url string, err error, d time.Duration) {
//	        metrics.Incr("http.failure", "method:"+method)
//	    }),
//	)
func New(opts ...Option) *Client {
	c := &Client{
		transport:  http.DefaultClient,
		converters: DefaultConverters(),
		header:     make(http.Header),
		logger:     log.Log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithTransport sets the transport requests are sent through.
func WithTransport(d Doer) Option {
	return func(c *Client) {
		c.transport = d
	}
}

// WithConverters replaces the converter list. Order matters: the first
// converter able to handle a body wins.
func WithConverters(cs ...Converter) Option {
	return func(c *Client) {
		c.converters = append([]Converter(nil), cs...)
	}
}

// WithBaseURL sets the URL relative request URIs are resolved against.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithDefaultHeader adds a header sent with every request. Headers set on a
// Request replace defaults of the same name.
func WithDefaultHeader(key, value string) Option {
	return func(c *Client) {
		c.header.Add(key, value)
	}
}

// WithLogger sets the logger.
func WithLogger(l log.Interface) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// Request starts a request. Nothing is sent until Dispatch.
func (c *Client) Request(ctx context.Context, method, uri string) *Request {
	return &Request{
		client: c,
		ctx:    ctx,
		method: method,
		uri:    uri,
		header: make(http.Header),
	}
}

// Get starts a GET request.
func (c *Client) Get(ctx context.Context, uri string) *Request {
	return c.Request(ctx, http.MethodGet, uri)
}

// Head starts a HEAD request.
func (c *Client) Head(ctx context.Context, uri string) *Request {
	return c.Request(ctx, http.MethodHead, uri)
}

// Post starts a POST request.
func (c *Client) Post(ctx context.Context, uri string) *Request {
	return c.Request(ctx, http.MethodPost, uri)
}

// Put starts a PUT request.
func (c *Client) Put(ctx context.Context, uri string) *Request {
	return c.Request(ctx, http.MethodPut, uri)
}

// Patch starts a PATCH request.
func (c *Client) Patch(ctx context.Context, uri string) *Request {
	return c.Request(ctx, http.MethodPatch, uri)
}

// Delete starts a DELETE request.
func (c *Client) Delete(ctx context.Context, uri string) *Request {
	return c.Request(ctx, http.MethodDelete, uri)
}

// Options starts an OPTIONS request.
func (c *Client) Options(ctx context.Context, uri string) *Request {
	return c.Request(ctx, http.MethodOptions, uri)
}

// Request is a request under construction. It is not safe for concurrent
// use and is meant to be dispatched once.
type Request struct {
	client *Client
	ctx    context.Context
	method string
	uri    string
	header http.Header
	body   any
}

// Header adds a request header.
func (r *Request) Header(key, value string) *Request {
	r.header.Add(key, value)
	return r
}

// ContentType declares the media type of the body. It also steers which
// converter writes it.
func (r *Request) ContentType(mediaType string) *Request {
	r.header.Set("Content-Type", mediaType)
	return r
}

// Accept sets the Accept header.
func (r *Request) Accept(mediaTypes ...string) *Request {
	r.header.Set("Accept", strings.Join(mediaTypes, ", "))
	return r
}

// Body sets the value written as the request body.
func (r *Request) Body(v any) *Request {
	r.body = v
	return r
}

// Dispatch sends the request and routes the response through router.
//
// The request body is written before anything is sent; a body no converter
// can write fails the Future without sending. Transport failures fail it
// with a *TransportError. Errors from the tree, and panics in actions, fail
// it as well, and so do panics in hooks, the transport or the tree. Nothing
// escapes the returned Future.
func (r *Request) Dispatch(router Router) (f *Future) {
	c := r.client
	start := time.Now()
	defer func() {
		if v := recover(); v != nil {
			perr := &PanicError{Value: v}
			c.logger.WithFields(log.Fields{"method": r.method, "url": r.uri}).
				WithError(perr).Error("request not sent")
			f = failedFuture(perr)
		}
	}()

	req, err := r.build()
	if err != nil {
		c.hooks.callOnFailure(r.ctx, r.method, r.uri, err, time.Since(start))
		c.logger.WithFields(log.Fields{"method": r.method, "url": r.uri}).
			WithError(err).Warn("request not sent")
		return failedFuture(err)
	}

	target := req.URL.String()
	ctx := c.hooks.callOnSend(r.ctx, r.method, target)
	req = req.WithContext(ctx)

	entry := c.logger.WithFields(log.Fields{"method": r.method, "url": target})
	entry.Debug("sending request")

	f = newFuture()
	go c.exchange(ctx, req, router, f, start, entry)
	return f
}

// Dispatch sends r and routes the response by sel through bindings. It is
// shorthand for r.Dispatch(Route(sel, bindings...)).
//
//	f := steer.Dispatch(c.Get(ctx, "/users/1"), steer.Status(),
//	    steer.CaptureAs[User](steer.On(http.StatusOK)),
//	    steer.On(http.StatusNotFound).Pass(),
//	)
func Dispatch[A comparable](r *Request, sel Selector[A], bindings ...Binding[A]) *Future {
	return r.Dispatch(Route(sel, bindings...))
}

func (r *Request) build() (*http.Request, error) {
	target, err := r.client.resolve(r.uri)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", r.uri, err)
	}

	header := r.client.header.Clone()
	for k, vs := range r.header {
		header[k] = vs
	}

	var body io.Reader
	if r.body != nil {
		buf := new(bytes.Buffer)
		if err := r.client.writeBody(header, buf, r.body); err != nil {
			return nil, err
		}
		body = buf
	}

	req, err := http.NewRequestWithContext(r.ctx, r.method, target, body)
	if err != nil {
		return nil, err
	}
	req.Header = header
	return req, nil
}

func (c *Client) resolve(uri string) (string, error) {
	if c.baseURL == "" {
		return uri, nil
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(uri)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}

// writeBody writes body through the first converter that accepts its type
// and the declared content type.
func (c *Client) writeBody(h http.Header, w io.Writer, body any) error {
	typ := reflect.TypeOf(body)
	mt := contentTypeOf(h)
	for _, conv := range c.converters {
		if !conv.CanWrite(typ, mt) {
			continue
		}
		if err := conv.Write(h, w, body); err != nil {
			return fmt.Errorf("write request body: %w", err)
		}
		return nil
	}
	return &NoSuitableWriteConverterError{Type: typ, ContentType: h.Get("Content-Type")}
}

// exchange runs on its own goroutine: it waits for the transport, routes
// the response and completes f.
func (c *Client) exchange(ctx context.Context, req *http.Request, router Router, f *Future, start time.Time, entry *log.Entry) {
	method, target := req.Method, req.URL.String()
	defer func() {
		if v := recover(); v != nil {
			perr := &PanicError{Value: v}
			entry.WithError(perr).Error("dispatch panicked")
			f.complete(Capture{}, perr)
		}
	}()

	resp, err := c.transport.Do(req)
	if err == nil && resp == nil {
		err = ErrNoResponse
	}
	if err != nil {
		terr := &TransportError{Method: method, URL: target, Err: err}
		c.hooks.callOnTransportError(ctx, method, target, terr)
		entry.WithError(err).Warn("transport failed")
		f.complete(Capture{}, terr)
		return
	}

	c.hooks.callOnResponse(ctx, method, target, resp.StatusCode)
	capture, err := c.route(ctx, router, NewResponse(resp))
	duration := time.Since(start)
	entry = entry.WithField("status", resp.StatusCode).WithDuration(duration)

	if err != nil {
		c.hooks.callOnFailure(ctx, method, target, err, duration)
		entry.WithError(err).Warn("dispatch failed")
		f.complete(Capture{}, err)
		return
	}

	c.hooks.callOnSuccess(ctx, method, target, capture, duration)
	entry.Debug("dispatched")
	f.complete(capture, nil)
}

// route executes router with a fresh reader, turning panics into errors.
func (c *Client) route(ctx context.Context, router Router, resp *Response) (capture Capture, err error) {
	defer func() {
		if v := recover(); v != nil {
			capture, err = Capture{}, &PanicError{Value: v}
		}
	}()
	return router.Execute(ctx, resp, NewMessageReader(c.converters...))
}
