package backend

import (
	"strings"

	"github.com/tidwall/sjson"
)

// Payload builds a JSON request body field by field.
type Payload struct {
	raw string
	err error
}

// NewPayload starts an empty JSON object.
func NewPayload() *Payload {
	return &Payload{raw: "{}"}
}

// Set stores value at a dotted path.
func (p *Payload) Set(path string, value any) *Payload {
	if p.err != nil {
		return p
	}
	p.raw, p.err = sjson.Set(p.raw, path, value)
	return p
}

// SetText stores a trimmed string at path, skipping empty values.
func (p *Payload) SetText(path string, value string) *Payload {
	value = strings.TrimSpace(value)
	if value == "" {
		return p
	}
	return p.Set(path, value)
}

// Bytes returns the encoded body.
func (p *Payload) Bytes() ([]byte, error) {
	if p.err != nil {
		return nil, p.err
	}
	return []byte(p.raw), nil
}
