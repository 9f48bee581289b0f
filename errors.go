package steer

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrEmptyCapture is returned when a Capture that holds no value is read.
	// This is the normal outcome of a dispatch that ended in a Call or Pass
	// action.
	ErrEmptyCapture = errors.New("steer: capture is empty")

	// ErrCaptureAlreadySet is returned when a second action tries to store
	// into a Capture. Well-formed trees never trigger it.
	ErrCaptureAlreadySet = errors.New("steer: capture already set")

	// ErrNoResponse is the cause of a *TransportError when a Doer returned
	// neither a response nor an error.
	ErrNoResponse = errors.New("steer: transport returned no response")
)

// TransportError is returned when the transport failed before any response
// was received. The request was never routed.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("I/O error on %s request for %q: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// NoSuitableWriteConverterError is returned, before the request is sent, when
// no converter can serialize the request body.
type NoSuitableWriteConverterError struct {
	Type        reflect.Type
	ContentType string
}

func (e *NoSuitableWriteConverterError) Error() string {
	msg := fmt.Sprintf("could not write request: no suitable converter found for request type [%v]", e.Type)
	if e.ContentType == "" {
		return msg
	}
	return fmt.Sprintf("%s and content type [%s]", msg, e.ContentType)
}

// NoSuitableReadConverterError is returned when no converter can decode the
// response body into the type an action asked for.
type NoSuitableReadConverterError struct {
	Type        reflect.Type
	ContentType string
}

func (e *NoSuitableReadConverterError) Error() string {
	msg := fmt.Sprintf("could not read response: no suitable converter found for response type [%v]", e.Type)
	if e.ContentType == "" {
		return msg
	}
	return fmt.Sprintf("%s and content type [%s]", msg, e.ContentType)
}

// NoMatchingBindingError is returned when the selected key matched no binding
// and the tree has no wildcard.
type NoMatchingBindingError struct {
	Key any
}

func (e *NoMatchingBindingError) Error() string {
	return fmt.Sprintf("steer: no matching binding for %v", e.Key)
}

// CaptureTypeMismatchError is returned by To when the captured value cannot
// be returned as the requested type.
type CaptureTypeMismatchError struct {
	Expected reflect.Type
	Actual   reflect.Type
}

func (e *CaptureTypeMismatchError) Error() string {
	return fmt.Sprintf("steer: captured value of type %v is not assignable to %v", e.Actual, e.Expected)
}

// PanicError carries a value recovered from a panicking action.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("steer: panic during dispatch: %v", e.Value)
}

// Unwrap returns the recovered value when it is an error.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}
