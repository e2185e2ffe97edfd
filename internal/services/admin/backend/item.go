package backend

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Item is one JSON record returned by the backend.
type Item struct {
	value gjson.Result
}

// ParseItem wraps a raw JSON object.
func ParseItem(raw []byte) (Item, error) {
	if !gjson.ValidBytes(raw) {
		return Item{}, errMalformed("invalid json")
	}
	value := gjson.ParseBytes(raw)
	if !value.IsObject() {
		return Item{}, errMalformed("expected object")
	}
	return Item{value: value}, nil
}

// MustItem wraps raw JSON and panics on malformed input. Intended for tests
// and literals.
func MustItem(raw string) Item {
	item, err := ParseItem([]byte(raw))
	if err != nil {
		panic(err)
	}
	return item
}

// ParseCollection decodes a JSON array of objects. When arrayPath is set the
// array is read from that property of a wrapping object.
func ParseCollection(raw []byte, arrayPath string) ([]Item, error) {
	if !gjson.ValidBytes(raw) {
		return nil, errMalformed("invalid json")
	}
	value := gjson.ParseBytes(raw)
	if arrayPath != "" {
		value = value.Get(arrayPath)
		if !value.Exists() || value.Type == gjson.Null {
			return []Item{}, nil
		}
	}
	if !value.IsArray() {
		return nil, errMalformed("expected array")
	}
	return itemsOf(value), nil
}

func itemsOf(value gjson.Result) []Item {
	elements := value.Array()
	items := make([]Item, 0, len(elements))
	for _, element := range elements {
		if element.IsObject() {
			items = append(items, Item{value: element})
		}
	}
	return items
}

// Exists reports whether the item wraps a JSON object.
func (i Item) Exists() bool {
	return i.value.IsObject()
}

// ID returns the backend identifier.
func (i Item) ID() string {
	if id := i.value.Get("_id"); id.Exists() && id.Type != gjson.Null {
		return id.String()
	}
	return i.value.Get("id").String()
}

// Lookup returns the string form of the value at a dotted path. Missing and
// null values report false.
func (i Item) Lookup(path string) (string, bool) {
	result := i.value.Get(path)
	if !result.Exists() || result.Type == gjson.Null {
		return "", false
	}
	if result.IsObject() || result.IsArray() {
		return result.Raw, true
	}
	return result.String(), true
}

// Text returns the value at path or "" when absent.
func (i Item) Text(path string) string {
	value, _ := i.Lookup(path)
	return value
}

// Int returns the integer at path or 0.
func (i Item) Int(path string) int64 {
	return i.value.Get(path).Int()
}

// Float returns the number at path or 0.
func (i Item) Float(path string) float64 {
	return i.value.Get(path).Float()
}

// List returns the objects in the array at path.
func (i Item) List(path string) []Item {
	result := i.value.Get(path)
	if !result.IsArray() {
		return []Item{}
	}
	return itemsOf(result)
}

// Strings returns the scalar values in the array at path.
func (i Item) Strings(path string) []string {
	result := i.value.Get(path)
	if !result.IsArray() {
		return []string{}
	}
	elements := result.Array()
	out := make([]string, 0, len(elements))
	for _, element := range elements {
		if element.IsObject() || element.IsArray() || element.Type == gjson.Null {
			continue
		}
		out = append(out, element.String())
	}
	return out
}

// Relation resolves an embedded reference at path.
func (i Item) Relation(path string) Relation {
	result := i.value.Get(path)
	if !result.IsObject() {
		return Relation{}
	}
	return Relation{item: Item{value: result}, present: true}
}

// Raw returns the JSON text of the item.
func (i Item) Raw() string {
	return i.value.Raw
}

// DisplayName joins first and last name at prefix ("" for the item itself).
func (i Item) DisplayName(prefix string) string {
	first := i.Text(joinPath(prefix, "firstName"))
	last := i.Text(joinPath(prefix, "lastName"))
	return strings.TrimSpace(first + " " + last)
}

func joinPath(prefix, field string) string {
	if prefix == "" {
		return field
	}
	return prefix + "." + field
}

// Relation is an optional reference to another record embedded in an item.
type Relation struct {
	item    Item
	present bool
}

// Present reports whether the referenced record is still available.
func (r Relation) Present() bool {
	return r.present
}

// Item returns the referenced record. It is empty when not present.
func (r Relation) Item() Item {
	return r.item
}

func errMalformed(reason string) error {
	return &Error{Kind: KindDecode, Err: malformedError(reason)}
}

type malformedError string

func (e malformedError) Error() string { return string(e) }
