package steer

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"gopkg.in/yaml.v3"
)

// Converter reads response bodies and writes request bodies for the media
// types and Go types it declares.
//
// CanRead and CanWrite receive the target or body type and the media type
// without parameters ("" when undeclared). Read decodes into v, a non-nil
// pointer to a value of the type CanRead accepted. Write sets Content-Type
// on h when the request did not declare one, then encodes v to w.
type Converter interface {
	CanRead(t reflect.Type, mediaType string) bool
	CanWrite(t reflect.Type, mediaType string) bool
	Read(r io.Reader, mediaType string, v any) error
	Write(h http.Header, w io.Writer, v any) error
}

// DefaultConverters returns a new slice of the built-in converters in the
// order they are consulted.
func DefaultConverters() []Converter {
	return []Converter{
		BytesConverter(),
		ReaderConverter(),
		TextConverter(),
		ProtobufConverter(),
		JSONConverter(),
		XMLConverter(),
		YAMLConverter(),
	}
}

// matchMediaType reports whether mediaType matches one of the patterns.
// Patterns are exact ("application/json"), a subtype wildcard ("text/*"), or
// a structured suffix ("*+json").
func matchMediaType(mediaType string, patterns ...string) bool {
	for _, p := range patterns {
		switch {
		case p == mediaType:
			return true
		case strings.HasSuffix(p, "/*"):
			if strings.HasPrefix(mediaType, strings.TrimSuffix(p, "*")) {
				return true
			}
		case strings.HasPrefix(p, "*+"):
			if strings.HasSuffix(mediaType, p[1:]) {
				return true
			}
		}
	}
	return false
}

func setDefaultContentType(h http.Header, mediaType string) {
	if h.Get("Content-Type") == "" {
		h.Set("Content-Type", mediaType)
	}
}

func contentTypeOf(h http.Header) string {
	return parseMediaType(h.Get("Content-Type"))
}

var (
	bytesType        = reflect.TypeOf((*[]byte)(nil)).Elem()
	readerType       = reflect.TypeOf((*io.Reader)(nil)).Elem()
	protoMessageType = reflect.TypeOf((*proto.Message)(nil)).Elem()
)

// BytesConverter passes []byte bodies through unchanged, for any media type.
func BytesConverter() Converter { return bytesConverter{} }

type bytesConverter struct{}

func (bytesConverter) CanRead(t reflect.Type, _ string) bool  { return t == bytesType }
func (bytesConverter) CanWrite(t reflect.Type, _ string) bool { return t == bytesType }

func (bytesConverter) Read(r io.Reader, _ string, v any) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	*(v.(*[]byte)) = b
	return nil
}

func (bytesConverter) Write(h http.Header, w io.Writer, v any) error {
	setDefaultContentType(h, "application/octet-stream")
	_, err := w.Write(v.([]byte))
	return err
}

// ReaderConverter streams io.Reader request bodies unchanged and reads
// response bodies into an io.Reader, for any media type.
func ReaderConverter() Converter { return readerConverter{} }

type readerConverter struct{}

func (readerConverter) CanRead(t reflect.Type, _ string) bool  { return t == readerType }
func (readerConverter) CanWrite(t reflect.Type, _ string) bool { return t.Implements(readerType) }

func (readerConverter) Read(r io.Reader, _ string, v any) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	*(v.(*io.Reader)) = bytes.NewReader(b)
	return nil
}

func (readerConverter) Write(h http.Header, w io.Writer, v any) error {
	setDefaultContentType(h, "application/octet-stream")
	_, err := io.Copy(w, v.(io.Reader))
	return err
}

// TextConverter reads and writes string kinds as text/* (or undeclared)
// bodies.
func TextConverter() Converter { return textConverter{} }

type textConverter struct{}

func (textConverter) CanRead(t reflect.Type, mt string) bool {
	return t.Kind() == reflect.String && (mt == "" || matchMediaType(mt, "text/*"))
}

func (c textConverter) CanWrite(t reflect.Type, mt string) bool {
	return c.CanRead(t, mt)
}

func (textConverter) Read(r io.Reader, _ string, v any) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	reflect.ValueOf(v).Elem().SetString(string(b))
	return nil
}

func (textConverter) Write(h http.Header, w io.Writer, v any) error {
	setDefaultContentType(h, "text/plain; charset=utf-8")
	_, err := io.WriteString(w, reflect.ValueOf(v).String())
	return err
}

// ProtobufConverter handles proto.Message types: binary wire format for
// application/x-protobuf and protojson for JSON media types.
func ProtobufConverter() Converter { return protobufConverter{} }

type protobufConverter struct{}

var (
	protobufMediaTypes = []string{"application/x-protobuf", "application/protobuf", "application/vnd.google.protobuf"}
	jsonMediaTypes     = []string{"application/json", "*+json"}
)

func (protobufConverter) CanRead(t reflect.Type, mt string) bool {
	if !t.Implements(protoMessageType) || t.Kind() != reflect.Pointer {
		return false
	}
	return matchMediaType(mt, protobufMediaTypes...) || matchMediaType(mt, jsonMediaTypes...)
}

func (protobufConverter) CanWrite(t reflect.Type, mt string) bool {
	if !t.Implements(protoMessageType) {
		return false
	}
	return mt == "" || matchMediaType(mt, protobufMediaTypes...) || matchMediaType(mt, jsonMediaTypes...)
}

func (protobufConverter) Read(r io.Reader, mt string, v any) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	// v is a pointer to a message pointer; allocate the message if needed.
	slot := reflect.ValueOf(v).Elem()
	if slot.IsNil() {
		slot.Set(reflect.New(slot.Type().Elem()))
	}
	msg := slot.Interface().(proto.Message)
	if matchMediaType(mt, jsonMediaTypes...) {
		return protojson.Unmarshal(b, msg)
	}
	return proto.Unmarshal(b, msg)
}

func (protobufConverter) Write(h http.Header, w io.Writer, v any) error {
	setDefaultContentType(h, "application/x-protobuf")
	msg := v.(proto.Message)
	var (
		b   []byte
		err error
	)
	if matchMediaType(contentTypeOf(h), jsonMediaTypes...) {
		b, err = protojson.Marshal(msg)
	} else {
		b, err = proto.Marshal(msg)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// JSONConverter handles application/json and +json media types. It is also
// the converter for bodies without a declared content type.
func JSONConverter() Converter { return jsonConverter{} }

type jsonConverter struct{}

func (jsonConverter) CanRead(_ reflect.Type, mt string) bool {
	return mt == "" || matchMediaType(mt, jsonMediaTypes...)
}

// CanWrite rejects kinds encoding/json cannot represent and readers, which
// would otherwise be sent as an empty object.
func (c jsonConverter) CanWrite(t reflect.Type, mt string) bool {
	if t.Implements(readerType) {
		return false
	}
	switch t.Kind() {
	case reflect.Func, reflect.Chan, reflect.Complex64, reflect.Complex128, reflect.UnsafePointer:
		return false
	}
	return c.CanRead(t, mt)
}

// Read leaves v untouched for an empty body.
func (jsonConverter) Read(r io.Reader, _ string, v any) error {
	if err := json.NewDecoder(r).Decode(v); err != nil && err != io.EOF {
		return err
	}
	return nil
}

func (jsonConverter) Write(h http.Header, w io.Writer, v any) error {
	setDefaultContentType(h, "application/json")
	return json.NewEncoder(w).Encode(v)
}

// XMLConverter handles application/xml, text/xml and +xml media types.
func XMLConverter() Converter { return xmlConverter{} }

type xmlConverter struct{}

var xmlMediaTypes = []string{"application/xml", "text/xml", "*+xml"}

func (xmlConverter) CanRead(_ reflect.Type, mt string) bool {
	return matchMediaType(mt, xmlMediaTypes...)
}

func (c xmlConverter) CanWrite(t reflect.Type, mt string) bool {
	return c.CanRead(t, mt)
}

func (xmlConverter) Read(r io.Reader, _ string, v any) error {
	return xml.NewDecoder(r).Decode(v)
}

func (xmlConverter) Write(_ http.Header, w io.Writer, v any) error {
	return xml.NewEncoder(w).Encode(v)
}

// YAMLConverter handles YAML media types.
func YAMLConverter() Converter { return yamlConverter{} }

type yamlConverter struct{}

var yamlMediaTypes = []string{"application/yaml", "application/x-yaml", "text/yaml", "*+yaml"}

func (yamlConverter) CanRead(_ reflect.Type, mt string) bool {
	return matchMediaType(mt, yamlMediaTypes...)
}

func (c yamlConverter) CanWrite(t reflect.Type, mt string) bool {
	return c.CanRead(t, mt)
}

func (yamlConverter) Read(r io.Reader, _ string, v any) error {
	if err := yaml.NewDecoder(r).Decode(v); err != nil && err != io.EOF {
		return err
	}
	return nil
}

func (yamlConverter) Write(_ http.Header, w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
