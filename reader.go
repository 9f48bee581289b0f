package steer

import (
	"bytes"
	"fmt"
	"reflect"
)

// MessageReader decodes response bodies using the first converter, in list
// order, that can read the response's media type into the requested type.
//
// A MessageReader holds no per-call state and is safe for concurrent use.
type MessageReader struct {
	converters []Converter
}

// NewMessageReader returns a MessageReader over a copy of converters.
func NewMessageReader(converters ...Converter) *MessageReader {
	return &MessageReader{converters: append([]Converter(nil), converters...)}
}

// Read decodes the body of r into target, which must be a non-nil pointer.
func (m *MessageReader) Read(r *Response, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("steer: read target must be a non-nil pointer, got %T", target)
	}
	typ := rv.Type().Elem()
	mt := r.MediaType()

	conv := m.find(typ, mt)
	if conv == nil {
		return &NoSuitableReadConverterError{Type: typ, ContentType: mt}
	}

	body, err := r.Bytes()
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if err := conv.Read(bytes.NewReader(body), mt, target); err != nil {
		return fmt.Errorf("decode %v: %w", typ, err)
	}
	return nil
}

func (m *MessageReader) find(typ reflect.Type, mediaType string) Converter {
	for _, c := range m.converters {
		if c.CanRead(typ, mediaType) {
			return c
		}
	}
	return nil
}

// ReadAs decodes the body of r into a new T.
//
// This is a package-level function (not a method) because methods cannot
// have type parameters.
func ReadAs[T any](m *MessageReader, r *Response) (T, error) {
	var v T
	err := m.Read(r, &v)
	return v, err
}
