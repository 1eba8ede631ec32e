package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AbelMSG89/json-synchronized/pkg/errors"
	"github.com/AbelMSG89/json-synchronized/pkg/keytree"
	"github.com/AbelMSG89/json-synchronized/pkg/panel"
	"github.com/AbelMSG89/json-synchronized/pkg/translate"
)

type translateOpts struct {
	from string
	to   []string
	text string
}

// translateCommand creates the translate command.
func (c *CLI) translateCommand() *cobra.Command {
	var opts translateOpts
	cmd := &cobra.Command{
		Use:   "translate <dir> <path>",
		Short: "Translate one key into the other languages",
		Long: `Translate the value of a key from the source language document into
every other language and write the results.

The source language defaults to the configured default_language (or the
document named en, english, default or base). Targets default to every
other document. Configure a backend with JSON_SYNCHRONIZED_TRANSLATION_SERVICE
and its credentials; see 'jsonsync config'.`,
		Args: cobra.ExactArgs(2),

		ValidArgsFunction: c.completeKeyPaths,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTranslate(cmd, args[0], args[1], opts)
		},
	}
	cmd.Flags().StringVar(&opts.from, "from", "", "source language")
	cmd.Flags().StringSliceVar(&opts.to, "to", nil, "target languages (default all others)")
	cmd.Flags().StringVar(&opts.text, "text", "", "text to translate instead of the source value")
	return cmd
}

func (c *CLI) runTranslate(cmd *cobra.Command, dir, key string, opts translateOpts) error {
	ctx := cmd.Context()
	path, err := parseKeyPath(key)
	if err != nil {
		return err
	}
	ws, err := c.openWorkspace(ctx, dir)
	if err != nil {
		return err
	}
	svc, closeSvc, err := c.newTranslator(ctx, ws.cfg)
	if err != nil {
		return err
	}
	defer closeSvc()
	if !svc.Available() {
		printNextStep("Configure a backend", "JSON_SYNCHRONIZED_TRANSLATION_SERVICE=MicrosoftTranslator")
		return errors.New(errors.ErrCodeUnsupported, "No translation service configured")
	}

	names := ws.store.Names()
	source := opts.from
	col := -1
	if source == "" {
		col, source = translate.SourceColumn(names, ws.cfg.DefaultLanguage)
	} else if cols := translate.Columns(names, source); len(cols) > 0 {
		col = cols[0]
	}

	text := opts.text
	if text == "" {
		if col < 0 {
			return errors.New(errors.ErrCodeInvalidLanguage, "no document for language %s", source)
		}
		row, ok := keytree.Find(keytree.Merge(ws.store.Bodies()).Rows, path)
		if !ok || row.Kind != keytree.RowField {
			return errors.New(errors.ErrCodeNotFound, "%s is not a field", path)
		}
		if col >= len(row.Cells) || row.Cells[col].IsEmpty {
			return errors.New(errors.ErrCodeInvalidInput, "%s has no value in %s", path, names[col])
		}
		text = row.Cells[col].Value
	}

	host := panel.NewHost(ws.engine, nil, panel.Options{
		Translator:      svc,
		DefaultLanguage: ws.cfg.DefaultLanguage,
		Logger:          c.Logger,
	})

	spin := newSpinnerWithContext(ctx, fmt.Sprintf("Translating %s via %s...", path, svc.Backend()))
	spin.Start()
	err = host.Handle(ctx, panel.Inbound{
		Command:         panel.CmdTranslate,
		Key:             path,
		Text:            text,
		SourceLanguage:  source,
		TargetLanguages: lowerAll(opts.to),
	}, spinnerDialog{spin: spin, inner: termDialog{}})
	spin.Stop()
	if err != nil {
		return reported{err}
	}
	return nil
}

// spinnerDialog stops the spinner before the first line of output.
type spinnerDialog struct {
	spin  *Spinner
	inner termDialog
}

func (d spinnerDialog) Info(msg string)  { d.spin.Stop(); d.inner.Info(msg) }
func (d spinnerDialog) Warn(msg string)  { d.spin.Stop(); d.inner.Warn(msg) }
func (d spinnerDialog) Error(msg string) { d.spin.Stop(); d.inner.Error(msg) }

func (d spinnerDialog) Confirm(ctx context.Context, msg string) (bool, error) {
	d.spin.Stop()
	return d.inner.Confirm(ctx, msg)
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
