package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"strings"
)

// Blob is an opaque binary body. It is sent as-is and never receives a
// default Content-Type.
type Blob []byte

// FormData is a multipart form body. Its Content-Type, including the
// boundary, is produced when the body is encoded.
type FormData struct {
	fields []formField
}

type formField struct {
	name     string
	value    string
	filename string
	content  []byte
}

// NewFormData returns an empty multipart form.
func NewFormData() *FormData {
	return &FormData{}
}

// Set appends a plain text field.
func (f *FormData) Set(name, value string) *FormData {
	f.fields = append(f.fields, formField{name: name, value: value})
	return f
}

// AddFile appends a file part.
func (f *FormData) AddFile(name, filename string, content []byte) *FormData {
	f.fields = append(f.fields, formField{name: name, filename: filename, content: content})
	return f
}

func (f *FormData) encode() (io.Reader, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for _, field := range f.fields {
		if field.filename == "" {
			if err := w.WriteField(field.name, field.value); err != nil {
				return nil, "", err
			}
			continue
		}
		part, err := w.CreateFormFile(field.name, field.filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(field.content); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

// isPlatformTyped reports whether the body picks its own Content-Type.
// A nil *FormData counts as no body.
func isPlatformTyped(body any) bool {
	switch b := body.(type) {
	case *FormData:
		return b != nil
	case FormData, Blob:
		return true
	}
	return false
}

// encodeBody turns a request body into a reader. Plain values are encoded
// as JSON only when contentType mentions json; raw bodies pass through.
// The returned string is the Content-Type the encoding itself requires.
func encodeBody(body any, contentType string) (io.Reader, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case *FormData:
		if b == nil {
			return nil, "", nil
		}
		return b.encode()
	case FormData:
		return b.encode()
	case Blob:
		return bytes.NewReader(b), "", nil
	case []byte:
		return bytes.NewReader(b), "", nil
	case string:
		return strings.NewReader(b), "", nil
	case url.Values:
		return strings.NewReader(b.Encode()), "", nil
	case io.Reader:
		return b, "", nil
	}

	if !strings.Contains(strings.ToLower(contentType), "json") {
		return nil, "", fmt.Errorf("cannot encode %T as %q", body, contentType)
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, "", fmt.Errorf("encode request body: %w", err)
	}
	return bytes.NewReader(data), "", nil
}
