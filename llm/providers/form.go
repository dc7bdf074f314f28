package providers

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"sort"

	"github.com/BaSui01/omniai/llm"
)

// FormPart is one part of a multipart payload.
type FormPart struct {
	Name        string
	Value       string
	Filename    string
	ContentType string
	Reader      io.Reader
}

// IsFile reports whether the part carries binary content.
func (p FormPart) IsFile() bool { return p.Reader != nil }

// Form is a multipart/form-data payload. HTTPClient.Post sends it as is,
// with the boundary chosen at encode time.
type Form struct {
	parts []FormPart
}

// NewForm creates an empty form.
func NewForm() *Form {
	return &Form{}
}

// AddField appends a string part.
func (f *Form) AddField(name, value string) {
	f.parts = append(f.parts, FormPart{Name: name, Value: value})
}

// AddFile appends a file part. An empty filename defaults to name.
func (f *Form) AddFile(name, filename, contentType string, r io.Reader) {
	if filename == "" {
		filename = name
	}
	f.parts = append(f.parts, FormPart{Name: name, Filename: filename, ContentType: contentType, Reader: r})
}

// Parts returns the parts in insertion order.
func (f *Form) Parts() []FormPart {
	out := make([]FormPart, len(f.parts))
	copy(out, f.parts)
	return out
}

// Encode writes the parts and returns the body with its Content-Type header value.
// File readers are consumed.
func (f *Form) Encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, p := range f.parts {
		if !p.IsFile() {
			if err := writer.WriteField(p.Name, p.Value); err != nil {
				return nil, "", fmt.Errorf("write field %q: %w", p.Name, err)
			}
			continue
		}

		var (
			part io.Writer
			err  error
		)
		if p.ContentType == "" {
			part, err = writer.CreateFormFile(p.Name, p.Filename)
		} else {
			h := make(textproto.MIMEHeader)
			h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, p.Name, p.Filename))
			h.Set("Content-Type", p.ContentType)
			part, err = writer.CreatePart(h)
		}
		if err != nil {
			return nil, "", fmt.Errorf("create file part %q: %w", p.Name, err)
		}
		if _, err := io.Copy(part, p.Reader); err != nil {
			return nil, "", fmt.Errorf("copy file part %q: %w", p.Name, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return &buf, writer.FormDataContentType(), nil
}

// BuildForm turns an option mapping into a form. Nil values (typed nils
// included) are omitted, binary values (llm.FilePart, []byte, io.Reader)
// become file parts and everything else is stringified. Keys are added in
// sorted order.
func BuildForm(fields map[string]any) *Form {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	form := NewForm()
	for _, k := range keys {
		if IsNil(fields[k]) {
			continue
		}
		switch v := fields[k].(type) {
		case llm.FilePart:
			if v.Reader != nil {
				form.AddFile(k, v.Filename, v.ContentType, v.Reader)
			}
		case *llm.FilePart:
			if v.Reader != nil {
				form.AddFile(k, v.Filename, v.ContentType, v.Reader)
			}
		case []byte:
			form.AddFile(k, "", "", bytes.NewReader(v))
		case io.Reader:
			form.AddFile(k, "", "", v)
		default:
			form.AddField(k, Stringify(v))
		}
	}
	return form
}
