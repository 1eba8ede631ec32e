package cli

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/AbelMSG89/json-synchronized/pkg/panel"
	"github.com/AbelMSG89/json-synchronized/pkg/viewstate"
)

// openCommand creates the open command.
func (c *CLI) openCommand() *cobra.Command {
	var fresh bool
	cmd := &cobra.Command{
		Use:   "open [dir]",
		Short: "Edit the documents of a directory in an interactive grid",
		Long: `Open every JSON document under a directory as one grid: a row per key,
a column per document. Groups expand in place, missing values are marked,
and edits are written to the files immediately. Changes made on disk by
other tools appear as they happen.

Open groups are remembered per directory; --fresh starts with all groups
closed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runOpen(cmd.Context(), dirArg(args), fresh)
		},
	}
	cmd.Flags().BoolVar(&fresh, "fresh", false, "ignore remembered view state")
	return cmd
}

func (c *CLI) runOpen(ctx context.Context, dir string, fresh bool) error {
	ws, err := c.openWorkspace(ctx, dir)
	if err != nil {
		return err
	}
	ws.printWarnings()

	svc, closeSvc, err := c.newTranslator(ctx, ws.cfg)
	if err != nil {
		return err
	}
	defer closeSvc()

	statePath, err := viewstate.DefaultPath(ws.dir)
	if err != nil {
		c.Logger.Debug("view state disabled", "err", err)
	}
	state := viewstate.New()
	if statePath != "" && !fresh {
		if state, err = viewstate.LoadState(statePath); err != nil {
			return err
		}
	}

	// Log lines would corrupt the alternate screen.
	c.Logger.SetOutput(io.Discard)
	defer c.Logger.SetOutput(c.logOut)

	sender := &programSender{}
	dialog := gridDialog{send: sender.Send}
	host := panel.NewHost(ws.engine, sender, panel.Options{
		Translator:      svc,
		DefaultLanguage: ws.cfg.DefaultLanguage,
		Notify:          dialog,
		Logger:          c.Logger,
	})
	defer host.Close()

	watcher, err := c.startWatcher(ws, host)
	if err != nil {
		return err
	}
	defer watcher.Stop()

	model := NewGridModel(ctx, host, state, dialog, ws.dir)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	sender.attach(p)
	final, err := p.Run()
	if err != nil {
		return err
	}

	if statePath != "" {
		if err := state.Save(statePath, ws.dir); err != nil {
			c.Logger.Warn("save view state", "err", err)
		}
	}
	if m, ok := final.(GridModel); ok && m.closed != "" {
		printWarning("Closed: %s", m.closed)
	}
	return nil
}
