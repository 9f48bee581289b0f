// Package steer routes HTTP responses to exactly one action, chosen by
// inspecting the response instead of branching on a status code by hand.
//
// A request is sent asynchronously; when the response arrives it is handed to
// a routing tree. The tree selects a key from the response (the status code,
// its family, the content type, a header predicate), runs the first binding
// whose value equals that key, and resolves a Future with whatever that
// binding captured.
//
// # Quick Start
//
//	c := steer.New(steer.WithBaseURL("https://api.example.com"))
//
//	f := steer.Dispatch(c.Get(ctx, "/users/42"), steer.StatusFamily(),
//	    steer.CaptureAs[User](steer.On(steer.Successful)),
//	    steer.On(steer.ClientError).Dispatch(steer.Route(steer.Status(),
//	        steer.On(http.StatusNotFound).Call(notFound),
//	        steer.Any[int]().Call(badRequest),
//	    )),
//	)
//
//	capture, err := f.Get(ctx)
//	if err != nil {
//	    return err
//	}
//	user, err := steer.To[User](capture)
//
// # Design Philosophy
//
// The package separates concerns into four layers:
//
//   - Selectors: derive a comparable key from a response
//   - Bindings: pair a key (or the wildcard) with an action
//   - Trees: evaluate bindings in order and run the first match
//   - Client: sends requests and feeds responses to trees
//
// Selectors, bindings and trees are immutable once built and can be shared
// across requests and goroutines.
//
// # Selectors
//
// Built-in selectors:
//   - Status: the exact status code
//   - StatusFamily: 1xx through 5xx
//   - ContentType: the media type, "" when missing
//   - Header: a header's first value, "" when missing
//   - IsCurrentRepresentation: Location and Content-Location are both present and equal
//   - HeadersEqual: the same test for any two headers
//   - Match: any Predicate (HasHeaders, HeaderEquals, StatusIn, And, Or, Not,
//     and the body predicates BodyHasFields, BodyFieldEquals, BodyFieldRaw)
//   - BodyField: a gjson path into a JSON body
//
// Only BodyField and the body predicates read the body. Implement Selector, or use SelectorFunc, for
// anything else.
//
// # Actions
//
// Each binding carries one action:
//
//	steer.On(401).Capture()                         // capture the *Response
//	steer.CaptureAs[Problem](steer.On(400))         // capture the decoded body
//	steer.On(204).Call(fn)                          // call fn with the response
//	steer.CallWith(steer.On(409), fn)               // call fn with the decoded body
//	steer.On(steer.ClientError).Dispatch(subtree)   // route again
//	steer.On(304).Pass()                            // accept, do nothing
//
// CaptureAs and CallWith are package-level functions because methods cannot
// carry their own type parameters.
//
// When no binding matches, the wildcard (Any) runs. Without one the Future
// fails with *NoMatchingBindingError.
//
// # Bodies
//
// A response body is read from the wire at most once per dispatch, and only
// if a selector or action needs it. Decoding goes through the client's
// converter list: the first converter that can read the media type into the
// requested type wins. The defaults cover []byte, io.Reader, text, protobuf,
// JSON, XML and YAML.
//
// A captured *Response whose body was never needed is handed over untouched;
// the caller reads and closes it.
//
// Request bodies take the same path in reverse: the first converter that can
// write the body's type for the declared content type serializes it, or the
// Future fails with *NoSuitableWriteConverterError before anything is sent.
//
// # Hooks and Logging
//
// Hooks provide observability without coupling to a metrics system:
//
//	c := steer.New(
//	    steer.WithOnSuccess(func(ctx context.Context, method, url string, c steer.Capture, d time.Duration) {
//	        metrics.Timing("http.dispatch", d)
//	    }),
//	    steer.WithOnTransportError(func(ctx context.Context, method, url string, err *steer.TransportError) {
//	        metrics.Incr("http.transport_error")
//	    }),
//	)
//
// The client also logs through github.com/apex/log; replace the logger with
// WithLogger.
//
// # Errors
//
// Every failure ends up in the Future:
//   - *TransportError: no response was received
//   - *NoSuitableWriteConverterError: the request body could not be written
//   - *NoSuitableReadConverterError: an action asked for a body type no converter reads
//   - *NoMatchingBindingError: nothing matched and there was no wildcard
//   - *PanicError: an action, selector, hook or the transport panicked
//
// To reports *CaptureTypeMismatchError and ErrEmptyCapture.
//
// Nothing is retried. Cancel a request through its context.
package steer
