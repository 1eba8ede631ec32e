package jsonval

import "bytes"

// Kind is the shape of a JSON value as far as the editor is concerned.
type Kind uint8

const (
	// KindAbsent marks a key that does not exist.
	KindAbsent Kind = iota
	// KindString is a JSON string.
	KindString
	// KindObject is a JSON object (never null, never an array).
	KindObject
	// KindOther is any other JSON value: number, boolean, null or array.
	KindOther
)

// String returns a short name for the kind.
func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindOther:
		return "other"
	default:
		return "unknown"
	}
}

// Value is a tagged JSON value. The zero Value is absent.
type Value struct {
	kind Kind
	str  string
	obj  *Object
	raw  []byte
}

// Absent returns the absent value.
func Absent() Value { return Value{} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// ObjectValue wraps obj. A nil obj becomes an empty object.
func ObjectValue(obj *Object) Value {
	if obj == nil {
		obj = NewObject()
	}
	return Value{kind: KindObject, obj: obj}
}

// Raw wraps already-encoded JSON that is neither a string nor an object.
// The bytes are stored as given; callers pass compact JSON.
func Raw(b []byte) Value {
	return Value{kind: KindOther, raw: append([]byte(nil), b...)}
}

// Kind reports the shape of v.
func (v Value) Kind() Kind { return v.kind }

// IsAbsent reports whether v is the absent value.
func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

// Str returns the string payload and whether v is a string.
func (v Value) Str() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// Object returns the object payload and whether v is an object.
func (v Value) Object() (*Object, bool) {
	if v.kind != KindObject {
		return nil, false
	}
	return v.obj, true
}

// RawJSON returns the encoded bytes of a KindOther value, or nil.
func (v Value) RawJSON() []byte {
	if v.kind != KindOther {
		return nil
	}
	return v.raw
}

// TypeName describes the JSON type of v for user-facing messages,
// e.g. "number", "boolean", "Array".
func (v Value) TypeName() string {
	switch v.kind {
	case KindAbsent:
		return "undefined"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	}
	b := bytes.TrimSpace(v.raw)
	if len(b) == 0 {
		return "unknown"
	}
	switch b[0] {
	case '[':
		return "Array"
	case 't', 'f':
		return "boolean"
	case 'n':
		return "null"
	default:
		return "number"
	}
}

// Clone returns a deep copy of v.
func (v Value) Clone() Value {
	switch v.kind {
	case KindObject:
		return Value{kind: KindObject, obj: v.obj.Clone()}
	case KindOther:
		return Raw(v.raw)
	default:
		return v
	}
}
