package jsonval

import (
	"slices"
	"strings"
)

// Path is an ordered sequence of key segments from the document root.
// Paths are document-agnostic: the same path is looked up in every document.
type Path []string

// ParsePath splits a dotted path such as "errors.auth.title". A literal dot
// inside a segment is written as `\.`. The empty string is the root path.
func ParsePath(s string) Path {
	if s == "" {
		return Path{}
	}
	var (
		p   Path
		cur strings.Builder
	)
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '\\' && i+1 < len(s) && s[i+1] == '.':
			cur.WriteByte('.')
			i++
		case s[i] == '.':
			p = append(p, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(s[i])
		}
	}
	return append(p, cur.String())
}

// String renders the path in dotted form, escaping dots inside segments.
func (p Path) String() string {
	parts := make([]string, len(p))
	for i, seg := range p {
		parts[i] = strings.ReplaceAll(seg, ".", `\.`)
	}
	return strings.Join(parts, ".")
}

var idEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// ID returns a stable identifier for the path in JSON Pointer form
// (RFC 6901), e.g. "/errors/auth". The root path has the empty ID.
func (p Path) ID() string {
	var b strings.Builder
	for _, seg := range p {
		b.WriteByte('/')
		b.WriteString(idEscaper.Replace(seg))
	}
	return b.String()
}

// Last returns the final segment, or "" for the root path.
func (p Path) Last() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Parent returns the path without its final segment.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return Path{}
	}
	return slices.Clone(p[:len(p)-1])
}

// Child returns a new path with key appended.
func (p Path) Child(key string) Path {
	c := make(Path, len(p), len(p)+1)
	copy(c, p)
	return append(c, key)
}

// Equal reports whether p and q have the same segments.
func (p Path) Equal(q Path) bool { return slices.Equal(p, q) }

// Lookup resolves p in obj. It returns the absent value when any segment
// is missing or descends through a non-object.
func Lookup(obj *Object, p Path) Value {
	cur := ObjectValue(obj)
	for _, seg := range p {
		o, ok := cur.Object()
		if !ok {
			return Absent()
		}
		if cur, ok = o.Get(seg); !ok {
			return Absent()
		}
	}
	return cur
}
