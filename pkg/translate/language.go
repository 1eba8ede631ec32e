package translate

import (
	"strings"
)

var defaultPatterns = []string{"en", "english", "default", "base"}

// LanguageOf returns the language code of a document display name: its
// first path segment, lowercased. "en-US/messages" yields "en-us".
func LanguageOf(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if i := strings.IndexByte(name, '/'); i >= 0 {
		name = name[:i]
	}
	return strings.ToLower(name)
}

// DetectDefault picks the source language for a set of documents: the
// first language starting with one of en, english, default or base, in
// that order of preference, else the first document's language. An empty
// set yields "en".
func DetectDefault(names []string) string {
	for _, p := range defaultPatterns {
		for _, n := range names {
			if lang := LanguageOf(n); strings.HasPrefix(lang, p) {
				return lang
			}
		}
	}
	if len(names) > 0 {
		return LanguageOf(names[0])
	}
	return "en"
}

// OtherLanguages returns the language of every document except those in
// exclude, deduplicated, in document order.
func OtherLanguages(names []string, exclude string) []string {
	exclude = strings.ToLower(exclude)
	seen := map[string]bool{exclude: true}
	var out []string
	for _, n := range names {
		lang := LanguageOf(n)
		if seen[lang] {
			continue
		}
		seen[lang] = true
		out = append(out, lang)
	}
	return out
}

// SourceColumn returns the column used as translation source and its
// language. The configured default language wins when some document
// carries it; otherwise [DetectDefault] decides. It returns -1 for an
// empty set.
func SourceColumn(names []string, defaultLanguage string) (int, string) {
	if len(names) == 0 {
		return -1, ""
	}
	lang := strings.ToLower(strings.TrimSpace(defaultLanguage))
	if i := columnOf(names, lang); lang != "" && i >= 0 {
		return i, lang
	}
	lang = DetectDefault(names)
	return columnOf(names, lang), lang
}

// Columns returns the indexes of every document in language lang.
func Columns(names []string, lang string) []int {
	lang = strings.ToLower(lang)
	var out []int
	for i, n := range names {
		if LanguageOf(n) == lang {
			out = append(out, i)
		}
	}
	return out
}

func columnOf(names []string, lang string) int {
	for i, n := range names {
		if LanguageOf(n) == lang {
			return i
		}
	}
	return -1
}

// NormalizeCode maps a language code onto a backend's code table. The
// full code (lowercased, "_" as "-") is tried first, then its base
// language. Unmapped codes fall back to the base language.
func NormalizeCode(code string, table map[string]string) string {
	full := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(code), "_", "-"))
	if v, ok := table[full]; ok {
		return v
	}
	base := full
	if i := strings.IndexAny(full, "-/"); i >= 0 {
		base = full[:i]
	}
	if v, ok := table[base]; ok {
		return v
	}
	return base
}
