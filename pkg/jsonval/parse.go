package jsonval

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Parse errors. Use errors.Is to distinguish them.
var (
	// ErrSyntax is returned for input that is not valid JSON.
	ErrSyntax = errors.New("invalid JSON")

	// ErrArrayRoot is returned when the document root is an array.
	ErrArrayRoot = errors.New("document root is an array")

	// ErrNotObject is returned when the document root is a scalar.
	ErrNotObject = errors.New("document root is not an object")
)

// Parse decodes a document whose root must be a JSON object.
// Key order is preserved. When a key repeats, the first position is kept
// and the last value wins.
func Parse(data []byte) (*Object, error) {
	if !json.Valid(data) {
		var probe any
		if err := json.Unmarshal(data, &probe); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
		}
		return nil, ErrSyntax
	}
	trimmed := bytes.TrimSpace(data)
	switch trimmed[0] {
	case '{':
		return parseObject(trimmed)
	case '[':
		return nil, ErrArrayRoot
	default:
		return nil, ErrNotObject
	}
}

// parseObject walks one object level with a token decoder. Each member is
// captured raw and classified; nested objects recurse on their raw bytes.
func parseObject(data []byte) (*Object, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}

	obj := NewObject()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected token %v", ErrSyntax, tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
		}
		v, err := valueFromRaw(raw)
		if err != nil {
			return nil, err
		}
		obj.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	return obj, nil
}

func valueFromRaw(raw []byte) (Value, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Absent(), fmt.Errorf("%w: empty value", ErrSyntax)
	}
	switch raw[0] {
	case '{':
		obj, err := parseObject(raw)
		if err != nil {
			return Absent(), err
		}
		return ObjectValue(obj), nil
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Absent(), fmt.Errorf("%w: %v", ErrSyntax, err)
		}
		return String(s), nil
	default:
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return Absent(), fmt.Errorf("%w: %v", ErrSyntax, err)
		}
		return Raw(buf.Bytes()), nil
	}
}
