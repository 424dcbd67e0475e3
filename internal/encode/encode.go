// Package encode maps raw categorical field values to the integer codes the
// trained model expects. Encoding tables are fitted during training and loaded
// read-only; values outside a table fall back to code 0 so that an unseen
// category can never block scoring.
package encode

import "fmt"

// FallbackCode is returned for any value outside the fitted encoding table,
// and for every value of a field whose table is missing entirely.
const FallbackCode = 0

// Encoder is the capability contract of a fitted categorical encoder artifact.
// Transform must only be called with values the encoder was fitted on; the
// caller is responsible for checking Classes first.
type Encoder interface {
	// Transform returns the integer code for a fitted category value.
	Transform(value string) (int, error)
	// Classes returns the fitted category values in code order.
	Classes() []string
}

// FieldEncoder wraps a fitted encoder with the unseen-category fallback policy
// and a reverse mapping for decoding. It is immutable after construction and
// safe for concurrent use.
type FieldEncoder struct {
	enc     Encoder
	known   map[string]struct{}
	reverse map[int]string
}

// NewFieldEncoder builds the fallback wrapper around a fitted encoder.
func NewFieldEncoder(enc Encoder) *FieldEncoder {
	fe := &FieldEncoder{
		enc:     enc,
		known:   make(map[string]struct{}),
		reverse: make(map[int]string),
	}
	for _, class := range enc.Classes() {
		fe.known[class] = struct{}{}
		if code, err := enc.Transform(class); err == nil {
			fe.reverse[code] = class
		}
	}
	return fe
}

// Code returns the integer code for value, or FallbackCode if the value was
// not seen at training time. It never fails: the unseen check happens before
// the artifact's Transform is invoked.
func (fe *FieldEncoder) Code(value string) int {
	if _, ok := fe.known[value]; !ok {
		return FallbackCode
	}
	code, err := fe.enc.Transform(value)
	if err != nil {
		return FallbackCode
	}
	return code
}

// Decode returns the category value for a code, if the code maps to a fitted
// class.
func (fe *FieldEncoder) Decode(code int) (string, bool) {
	v, ok := fe.reverse[code]
	return v, ok
}

// Known reports whether value was seen at training time.
func (fe *FieldEncoder) Known(value string) bool {
	_, ok := fe.known[value]
	return ok
}

// Tables holds one FieldEncoder per categorical field.
type Tables map[string]*FieldEncoder

// Code encodes a value for the named field. A field with no table at all
// encodes every value to FallbackCode.
func (t Tables) Code(field, value string) int {
	fe, ok := t[field]
	if !ok || fe == nil {
		return FallbackCode
	}
	return fe.Code(value)
}

// Table is a plain in-memory encoder fitted over an ordered class list
// (code = position in the list). It backs both test fixtures and the JSON
// encoder artifact.
type Table struct {
	classes []string
	codes   map[string]int
}

// NewTable creates a Table over classes in code order.
func NewTable(classes []string) *Table {
	t := &Table{classes: classes, codes: make(map[string]int, len(classes))}
	for i, c := range classes {
		t.codes[c] = i
	}
	return t
}

// Transform implements Encoder.
func (t *Table) Transform(value string) (int, error) {
	code, ok := t.codes[value]
	if !ok {
		return 0, fmt.Errorf("value %q not in fitted classes", value)
	}
	return code, nil
}

// Classes implements Encoder.
func (t *Table) Classes() []string {
	return t.classes
}
