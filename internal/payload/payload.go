// Package payload turns request bodies into the canonical flat field mapping the
// operation handlers validate.
//
// Two body shapes are accepted: a flat JSON object, and the property-list shape
// produced by agent tooling:
//
//	{"content":{"application/json":{"properties":[{"name":"cpf","value":"..."}]}}}
//
// Decode resolves the shape once; Normalize reduces either shape to a Payload.
package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNotObject is returned by Decode when the body is valid JSON but not an object
var ErrNotObject = errors.New("request body must be a JSON object")

// Shape identifies which of the accepted body layouts an Input carries
type Shape int

const (
	// ShapeFlat is a plain JSON object of field name to value
	ShapeFlat Shape = iota
	// ShapeProperties is the content/application/json/properties list layout
	ShapeProperties
)

func (s Shape) String() string {
	switch s {
	case ShapeFlat:
		return "flat"
	case ShapeProperties:
		return "properties"
	default:
		return "unknown"
	}
}

// Property is a single name/value pair of the property-list shape
type Property struct {
	Name  string
	Value any
}

// Input is a decoded request body. Exactly one of Flat or Properties is
// meaningful, selected by Shape.
type Input struct {
	Shape      Shape
	Flat       map[string]any
	Properties []Property
}

// FlatInput builds a flat-shaped Input from an existing mapping
func FlatInput(fields map[string]any) Input {
	return Input{Shape: ShapeFlat, Flat: fields}
}

// PropertiesInput builds a property-list Input
func PropertiesInput(props ...Property) Input {
	return Input{Shape: ShapeProperties, Properties: props}
}

// Decode parses a request body. Empty or unparsable bodies decode to an empty
// flat Input so that validation reports the first missing field. Numbers keep
// their literal text (json.Number).
func Decode(body []byte) (Input, error) {
	empty := FlatInput(map[string]any{})
	if len(bytes.TrimSpace(body)) == 0 {
		return empty, nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return empty, nil
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return Input{}, ErrNotObject
	}

	if props, ok := propertyList(obj); ok {
		return PropertiesInput(props...), nil
	}
	return FlatInput(obj), nil
}

// propertyList extracts content -> application/json -> properties when the object
// has that layout and every list item is an object
func propertyList(obj map[string]any) ([]Property, bool) {
	content, ok := obj["content"].(map[string]any)
	if !ok {
		return nil, false
	}
	body, ok := content["application/json"].(map[string]any)
	if !ok {
		return nil, false
	}
	items, ok := body["properties"].([]any)
	if !ok {
		return nil, false
	}

	props := make([]Property, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			return nil, false
		}
		name, present := entry["name"]
		if !present || name == nil {
			continue
		}
		props = append(props, Property{Name: TextOf(name), Value: entry["value"]})
	}
	return props, true
}

// Payload is the canonical flat field mapping. Values are strings, json.Number,
// bools, lists or nested objects exactly as decoded.
type Payload map[string]any

// synonyms maps a canonical field to the alias agents sometimes send instead
var synonyms = []struct {
	canonical string
	alias     string
}{
	{canonical: "nome_condutor", alias: "nome"},
	{canonical: "nome_mae", alias: "mae"},
	{canonical: "data_nascimento", alias: "nascimento"},
}

// Normalize flattens in, resolves field synonyms and trims every string value.
// It never fails and never mutates in.
func Normalize(in Input) Payload {
	p := make(Payload)
	switch in.Shape {
	case ShapeProperties:
		// later occurrences of a name win
		for _, prop := range in.Properties {
			p[prop.Name] = prop.Value
		}
	default:
		for k, v := range in.Flat {
			p[k] = v
		}
	}

	for _, s := range synonyms {
		if _, ok := p[s.canonical]; ok {
			continue
		}
		if v, ok := p[s.alias]; ok {
			p[s.canonical] = v
		}
	}

	for k, v := range p {
		if s, ok := v.(string); ok {
			p[k] = strings.TrimSpace(s)
		}
	}
	return p
}

// Get returns the raw value of field
func (p Payload) Get(field string) (any, bool) {
	v, ok := p[field]
	return v, ok
}

// Text returns field rendered as text. The second result is false when the
// field is absent or null.
func (p Payload) Text(field string) (string, bool) {
	v, ok := p[field]
	if !ok || v == nil {
		return "", false
	}
	return TextOf(v), true
}

// TextOr returns field rendered as text, or fallback when absent, null or blank
func (p Payload) TextOr(field, fallback string) string {
	if s, ok := p.Text(field); ok && strings.TrimSpace(s) != "" {
		return s
	}
	return fallback
}

// Present reports whether field holds a meaningful value. Null, blank
// strings, false, zero and empty lists or objects count as absent.
func (p Payload) Present(field string) bool {
	switch t := p[field].(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	case bool:
		return t
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case float64:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}

// TextOf renders a decoded JSON value as text: strings as-is, numbers in their
// literal form, bools as true/false and composite values as compact JSON.
func TextOf(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}
