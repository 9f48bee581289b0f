package steer

import (
	"fmt"
)

// Selector extracts the attribute a routing tree dispatches on.
//
// Selectors are stateless and safe to share between trees and goroutines.
// They must not mutate the response. Selectors that need the body read it
// through Response.Bytes; all others never touch it.
type Selector[A comparable] interface {
	Select(r *Response) (A, error)
}

// SelectorFunc adapts a function to Selector.
type SelectorFunc[A comparable] func(r *Response) (A, error)

// Select implements Selector.
func (f SelectorFunc[A]) Select(r *Response) (A, error) { return f(r) }

// Family is the class of an HTTP status code.
type Family int

// Status code families. FamilyOther covers codes outside 100-599.
const (
	FamilyOther Family = iota
	Informational
	Successful
	Redirection
	ClientError
	ServerError
)

// FamilyOf returns the family of an HTTP status code.
func FamilyOf(code int) Family {
	switch code / 100 {
	case 1:
		return Informational
	case 2:
		return Successful
	case 3:
		return Redirection
	case 4:
		return ClientError
	case 5:
		return ServerError
	default:
		return FamilyOther
	}
}

func (f Family) String() string {
	switch f {
	case Informational:
		return "1xx"
	case Successful:
		return "2xx"
	case Redirection:
		return "3xx"
	case ClientError:
		return "4xx"
	case ServerError:
		return "5xx"
	default:
		return "other"
	}
}

// Status selects the exact status code.
func Status() Selector[int] {
	return SelectorFunc[int](func(r *Response) (int, error) {
		return r.StatusCode, nil
	})
}

// StatusFamily selects the status class, for coarse routing before a nested
// tree refines by exact code.
func StatusFamily() Selector[Family] {
	return SelectorFunc[Family](func(r *Response) (Family, error) {
		return FamilyOf(r.StatusCode), nil
	})
}

// ContentType selects the declared media type, lowercased and without
// parameters. A missing Content-Type selects "".
func ContentType() Selector[string] {
	return SelectorFunc[string](func(r *Response) (string, error) {
		return r.MediaType(), nil
	})
}

// Header selects the first value of a header, or "" when it is absent.
func Header(name string) Selector[string] {
	return SelectorFunc[string](func(r *Response) (string, error) {
		v, _ := headerValue(r, name)
		return v, nil
	})
}

// Match selects the outcome of a Predicate.
func Match(p Predicate) Selector[bool] {
	return SelectorFunc[bool](func(r *Response) (bool, error) {
		return p.Match(r), nil
	})
}

// HeadersEqual selects true only when both headers are present and
// textually equal.
func HeadersEqual(a, b string) Selector[bool] {
	return Match(SameHeaders(a, b))
}

// IsCurrentRepresentation selects whether the response body is the current
// representation of the resource named by Location, that is whether Location
// and Content-Location are both present and equal.
func IsCurrentRepresentation() Selector[bool] {
	return HeadersEqual("Location", "Content-Location")
}

// BodyField selects the value at a gjson path of a JSON body, rendered as
// text. A missing field selects "". The body is read through the response's
// one-shot gate and remains available to the matched action.
func BodyField(path string) Selector[string] {
	return BodyFieldWith(JSONInspector(), path)
}

// BodyFieldWith is BodyField with a custom Inspector.
func BodyFieldWith(insp Inspector, path string) Selector[string] {
	return SelectorFunc[string](func(r *Response) (string, error) {
		view, err := insp.Inspect(r)
		if err != nil {
			return "", fmt.Errorf("inspect body: %w", err)
		}
		v, _ := view.Lookup(path)
		return v, nil
	})
}
