// Package translate defines the machine translation capability used by
// the editor: given a text, a source language and target languages it
// returns a mapping from language to translated text.
//
// Backends live in pkg/integrations; [Service] picks one from the
// configuration, strips the source language from the targets and caches
// results.
package translate

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
)

// Request is a single translation request.
type Request struct {
	Text    string
	Source  string
	Targets []string
}

// Result maps a requested target language, spelled as in the request, to
// its translation. It may be partial.
type Result map[string]string

// Translator is a machine translation backend.
type Translator interface {
	// Name identifies the backend in cache keys and logs.
	Name() string

	// Translate returns the translations it managed to obtain. A non-nil
	// error may accompany a partial result.
	Translate(ctx context.Context, req Request) (Result, error)
}

// TargetFunc translates already protected text into one backend language.
type TargetFunc func(ctx context.Context, text, source, target string) (string, error)

// EachTarget runs fn once per target, protecting placeholders around the
// call and skipping targets equal to the source. Failures are collected;
// the successful translations are returned alongside the joined error.
// normalize maps request codes to backend codes; nil keeps them.
func EachTarget(ctx context.Context, req Request, normalize func(string) string, fn TargetFunc) (Result, error) {
	out := Result{}
	if strings.TrimSpace(req.Text) == "" {
		return out, nil
	}
	if normalize == nil {
		normalize = func(s string) string { return s }
	}

	text, subs := Protect(req.Text)
	source := normalize(req.Source)

	var errs []error
	for _, target := range req.Targets {
		code := normalize(target)
		if code == source || target == req.Source {
			continue
		}
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		translated, err := fn(ctx, text, source, code)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", target, err))
			continue
		}
		out[target] = Restore(translated, subs)
	}
	return out, stderrors.Join(errs...)
}
