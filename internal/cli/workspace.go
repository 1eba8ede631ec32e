package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/AbelMSG89/json-synchronized/pkg/config"
	"github.com/AbelMSG89/json-synchronized/pkg/docstore"
	"github.com/AbelMSG89/json-synchronized/pkg/errors"
	"github.com/AbelMSG89/json-synchronized/pkg/mutate"
)

// workspace is one loaded directory of documents.
type workspace struct {
	dir      string
	cfg      *config.Config
	store    *docstore.Store
	engine   *mutate.Engine
	warnings []docstore.Warning
}

// dirArg returns the directory argument, defaulting to ".".
func dirArg(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return "."
}

// openWorkspace loads configuration and every document under dir. Files
// that did not load cleanly are reported and skipped or recovered.
func (c *CLI) openWorkspace(ctx context.Context, dir string) (*workspace, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}
	cfg, err := c.loadConfig(abs)
	if err != nil {
		return nil, err
	}

	prog := newProgress(c.Logger)
	files, err := docstore.Discover(abs)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.New(errors.ErrCodeNotFound, "no JSON files found in %s", abs)
	}
	store, warnings, err := docstore.Load(ctx, abs, files, c.Logger)
	if err != nil {
		return nil, err
	}
	if store.Len() == 0 {
		return nil, errors.New(errors.ErrCodeInvalidDocument, "no usable JSON documents in %s", abs)
	}
	prog.debug(fmt.Sprintf("Loaded %d documents", store.Len()))

	return &workspace{
		dir:      abs,
		cfg:      cfg,
		store:    store,
		engine:   mutate.New(store, c.Logger),
		warnings: warnings,
	}, nil
}

// printWarnings reports documents that did not load cleanly.
func (w *workspace) printWarnings() {
	for _, warn := range w.warnings {
		printWarning("%s", warn.String())
	}
}
