package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// File is one upload forwarded to the backend.
type File struct {
	Field       string
	Name        string
	ContentType string
	Content     io.Reader
}

type formField struct {
	name  string
	value string
}

// Form builds a multipart/form-data body. Fields keep insertion order.
type Form struct {
	fields []formField
	files  []File
}

// NewForm starts an empty multipart body.
func NewForm() *Form {
	return &Form{}
}

// Field adds a trimmed text field, skipping empty values.
func (f *Form) Field(name, value string) *Form {
	value = strings.TrimSpace(value)
	if value == "" {
		return f
	}
	f.fields = append(f.fields, formField{name: name, value: value})
	return f
}

// File adds an upload. Files without content are skipped.
func (f *Form) File(file File) *Form {
	if file.Content == nil || strings.TrimSpace(file.Field) == "" {
		return f
	}
	f.files = append(f.files, file)
	return f
}

// Encode writes the multipart body and returns it with its content type.
func (f *Form) Encode() ([]byte, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, field := range f.fields {
		if err := writer.WriteField(field.name, field.value); err != nil {
			return nil, "", fmt.Errorf("write form field %s: %w", field.name, err)
		}
	}
	for _, file := range f.files {
		part, err := writer.CreatePart(fileHeader(file))
		if err != nil {
			return nil, "", fmt.Errorf("create form file %s: %w", file.Field, err)
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return nil, "", fmt.Errorf("copy form file %s: %w", file.Field, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}
	return buf.Bytes(), writer.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func fileHeader(file File) textproto.MIMEHeader {
	name := file.Name
	if name == "" {
		name = file.Field
	}
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(file.Field), quoteEscaper.Replace(name)))
	header.Set("Content-Type", contentType)
	return header
}

// SendForm issues a multipart mutation, for endpoints that accept uploads.
func (c *Client) SendForm(ctx context.Context, method string, path string, form *Form, token string) (Item, error) {
	if form == nil {
		form = NewForm()
	}
	body, contentType, err := form.Encode()
	if err != nil {
		return Item{}, err
	}
	payload, err := c.Do(ctx, Request{Method: method, Path: path, Body: body, ContentType: contentType, Token: token})
	if err != nil {
		return Item{}, err
	}
	item, err := ParseItem(payload)
	if err != nil {
		return Item{}, nil
	}
	return item, nil
}
