package translate

import (
	"strconv"
	"strings"
)

const (
	tokenPrefix = "__PLACEHOLDER_"
	tokenSuffix = "__"
)

// Protect replaces every {...} span with an opaque __PLACEHOLDER_i__
// token so a translator leaves it alone. The spans are returned in order
// for [Restore].
func Protect(text string) (string, []string) {
	var (
		b    strings.Builder
		subs []string
	)
	rest := text
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			break
		}
		closing := strings.IndexByte(rest[open:], '}')
		if closing < 0 {
			break
		}
		end := open + closing + 1
		b.WriteString(rest[:open])
		b.WriteString(token(len(subs)))
		subs = append(subs, rest[open:end])
		rest = rest[end:]
	}
	if subs == nil {
		return text, nil
	}
	b.WriteString(rest)
	return b.String(), subs
}

// Restore puts the protected spans back. Each token is replaced once;
// tokens a translator dropped stay dropped.
func Restore(text string, subs []string) string {
	for i, s := range subs {
		text = strings.Replace(text, token(i), s, 1)
	}
	return text
}

func token(i int) string {
	return tokenPrefix + strconv.Itoa(i) + tokenSuffix
}
