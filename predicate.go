package steer

import (
	"bytes"
	"slices"
)

// Predicate is a boolean test over a response. Header and status predicates
// never touch the body. Body predicates read it through Response.Bytes, so
// it stays available to the matched action.
//
// Use Match to turn a Predicate into a Selector[bool].
type Predicate interface {
	Match(r *Response) bool
}

// PredicateFunc adapts a function to Predicate.
type PredicateFunc func(r *Response) bool

// Match implements Predicate.
func (f PredicateFunc) Match(r *Response) bool { return f(r) }

// HasHeaders returns a Predicate that matches when all headers are present.
func HasHeaders(names ...string) Predicate {
	return hasHeaders{names: names}
}

type hasHeaders struct {
	names []string
}

func (p hasHeaders) Match(r *Response) bool {
	for _, n := range p.names {
		if _, ok := headerValue(r, n); !ok {
			return false
		}
	}
	return true
}

// HeaderEquals returns a Predicate that matches when the header is present
// and its first value equals value.
func HeaderEquals(name, value string) Predicate {
	return headerEquals{name: name, value: value}
}

type headerEquals struct {
	name  string
	value string
}

func (p headerEquals) Match(r *Response) bool {
	v, ok := headerValue(r, p.name)
	return ok && v == p.value
}

// SameHeaders returns a Predicate that matches when both headers are present
// and textually equal. A missing header is a non-match, never an error.
func SameHeaders(a, b string) Predicate {
	return sameHeaders{a: a, b: b}
}

type sameHeaders struct {
	a, b string
}

func (p sameHeaders) Match(r *Response) bool {
	va, ok := headerValue(r, p.a)
	if !ok {
		return false
	}
	vb, ok := headerValue(r, p.b)
	return ok && va == vb
}

// StatusIn returns a Predicate that matches any of the given status codes.
func StatusIn(codes ...int) Predicate {
	return statusIn{codes: codes}
}

type statusIn struct {
	codes []int
}

func (p statusIn) Match(r *Response) bool {
	return r.Response != nil && slices.Contains(p.codes, r.StatusCode)
}

// And returns a Predicate that matches when all predicates match.
func And(ps ...Predicate) Predicate {
	return and{ps: ps}
}

type and struct {
	ps []Predicate
}

func (p and) Match(r *Response) bool {
	for _, pred := range p.ps {
		if !pred.Match(r) {
			return false
		}
	}
	return true
}

// Or returns a Predicate that matches when any predicate matches.
func Or(ps ...Predicate) Predicate {
	return or{ps: ps}
}

type or struct {
	ps []Predicate
}

func (p or) Match(r *Response) bool {
	for _, pred := range p.ps {
		if pred.Match(r) {
			return true
		}
	}
	return false
}

// Not inverts a Predicate.
func Not(p Predicate) Predicate {
	return PredicateFunc(func(r *Response) bool { return !p.Match(r) })
}

// BodyHasFields returns a Predicate that matches when all gjson paths exist
// in a JSON body. A body that is not JSON does not match.
func BodyHasFields(paths ...string) Predicate {
	return bodyHasFields{insp: JSONInspector(), paths: paths}
}

type bodyHasFields struct {
	insp  Inspector
	paths []string
}

func (p bodyHasFields) Match(r *Response) bool {
	v, ok := inspect(p.insp, r)
	if !ok {
		return false
	}
	for _, path := range p.paths {
		if !v.HasField(path) {
			return false
		}
	}
	return true
}

// BodyFieldEquals returns a Predicate that matches when the path holds a
// JSON string equal to value.
func BodyFieldEquals(path, value string) Predicate {
	return bodyFieldEquals{insp: JSONInspector(), path: path, value: value}
}

type bodyFieldEquals struct {
	insp  Inspector
	path  string
	value string
}

func (p bodyFieldEquals) Match(r *Response) bool {
	v, ok := inspect(p.insp, r)
	if !ok {
		return false
	}
	s, ok := v.GetString(p.path)
	return ok && s == p.value
}

// BodyFieldRaw returns a Predicate that matches when the raw JSON at path is
// exactly raw, for non-string values:
//
//	steer.BodyFieldRaw("retryable", "true")
func BodyFieldRaw(path, raw string) Predicate {
	return bodyFieldRaw{insp: JSONInspector(), path: path, raw: []byte(raw)}
}

type bodyFieldRaw struct {
	insp Inspector
	path string
	raw  []byte
}

func (p bodyFieldRaw) Match(r *Response) bool {
	v, ok := inspect(p.insp, r)
	if !ok {
		return false
	}
	b, ok := v.GetBytes(p.path)
	return ok && bytes.Equal(b, p.raw)
}

func inspect(insp Inspector, r *Response) (View, bool) {
	if r == nil || r.Response == nil {
		return nil, false
	}
	v, err := insp.Inspect(r)
	return v, err == nil
}

func headerValue(r *Response, name string) (string, bool) {
	if r == nil || r.Response == nil {
		return "", false
	}
	vs := r.Header.Values(name)
	if len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}
