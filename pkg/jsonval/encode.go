package jsonval

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// Encode returns the canonical file form of obj: two-space indentation,
// no HTML escaping, no trailing newline.
func Encode(obj *Object) []byte {
	compact := appendObject(nil, obj)
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", "  "); err != nil {
		// appendObject only emits valid JSON.
		return compact
	}
	return out.Bytes()
}

func appendObject(dst []byte, o *Object) []byte {
	dst = append(dst, '{')
	for i, k := range o.Keys() {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = appendString(dst, k)
		dst = append(dst, ':')
		v, _ := o.Get(k)
		dst = appendValue(dst, v)
	}
	return append(dst, '}')
}

func appendValue(dst []byte, v Value) []byte {
	switch v.kind {
	case KindString:
		return appendString(dst, v.str)
	case KindObject:
		return appendObject(dst, v.obj)
	case KindOther:
		return append(dst, v.raw...)
	default:
		return append(dst, "null"...)
	}
}

// appendString quotes s without HTML escaping. U+2028 and U+2029 are
// written raw, matching how editors and JavaScript tooling save them.
func appendString(dst []byte, s string) []byte {
	if !strings.ContainsAny(s, "\u2028\u2029") {
		return appendQuoted(dst, s)
	}
	dst = append(dst, '"')
	start := 0
	for i, r := range s {
		if r != '\u2028' && r != '\u2029' {
			continue
		}
		dst = appendUnquoted(dst, s[start:i])
		dst = utf8.AppendRune(dst, r)
		start = i + utf8.RuneLen(r)
	}
	dst = appendUnquoted(dst, s[start:])
	return append(dst, '"')
}

func appendQuoted(dst []byte, s string) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return append(dst, bytes.TrimSuffix(buf.Bytes(), []byte("\n"))...)
}

// appendUnquoted appends the escaped body of s without its quotes.
func appendUnquoted(dst []byte, s string) []byte {
	q := appendQuoted(nil, s)
	return append(dst, q[1:len(q)-1]...)
}
