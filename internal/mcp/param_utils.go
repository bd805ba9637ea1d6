package mcp

import (
	"encoding/json"
	"reflect"
	"slices"
	"strings"
)

// UnknownField represents an argument that was passed but not recognized
type UnknownField struct {
	Name  string      `json:"name"`
	Value interface{} `json:"value"`
}

// decodeParams unmarshals tool arguments into dst, a pointer to a struct,
// and reports the arguments dst does not declare. Unknown arguments are
// not an error so clients can pass extra context.
func decodeParams(data []byte, dst interface{}) ([]UnknownField, error) {
	if len(data) == 0 || string(data) == "null" {
		data = []byte("{}")
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return nil, err
	}
	_, unknown, err := collectUnknownFields(data, knownFields(dst))
	return unknown, err
}

// knownFields lists the json names of a struct's fields, including those
// of untagged embedded structs.
func knownFields(dst interface{}) map[string]struct{} {
	known := make(map[string]struct{})
	addKnownFields(reflect.TypeOf(dst), known)
	return known
}

func addKnownFields(t reflect.Type, known map[string]struct{}) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if f.Anonymous && name == "" && f.Type.Kind() == reflect.Struct {
			addKnownFields(f.Type, known)
			continue
		}
		if name == "" {
			name = f.Name
		}
		if name != "-" {
			known[name] = struct{}{}
		}
	}
}

// collectUnknownFields parses raw JSON into a map, capturing any fields
// that aren't part of the provided known field set.
func collectUnknownFields(data []byte, known map[string]struct{}) (map[string]json.RawMessage, []UnknownField, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, err
	}

	var warnings []UnknownField
	for key, value := range raw {
		if _, ok := known[key]; !ok {
			warnings = append(warnings, decodeUnknownField(key, value))
		}
	}
	slices.SortFunc(warnings, func(a, b UnknownField) int { return strings.Compare(a.Name, b.Name) })

	return raw, warnings, nil
}

func decodeUnknownField(name string, data json.RawMessage) UnknownField {
	var value interface{}
	if err := json.Unmarshal(data, &value); err != nil {
		value = string(data)
	}
	return UnknownField{Name: name, Value: value}
}
