package cli

import (
	"context"
	"net"
	"time"

	"github.com/spf13/cobra"

	"github.com/AbelMSG89/json-synchronized/internal/server"
	"github.com/AbelMSG89/json-synchronized/pkg/panel"
	"github.com/AbelMSG89/json-synchronized/pkg/watch"
)

const shutdownTimeout = 5 * time.Second

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve [dir]",
		Short: "Serve the grid to a browser panel over a websocket",
		Long: `Serve the documents of a directory to a web panel.

The panel connects to /ws and exchanges JSON messages: the server pushes the
full document set after every change and applies edit, add, remove,
renameKey and translate commands. Files changed on disk by other tools are
picked up and pushed to every connected panel.

Read-only endpoints: /healthz, /api/documents, /api/rows[?flat=1].`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			return c.runServe(cmd.Context(), dirArg(args), ln)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	return cmd
}

// runServe serves until ctx is cancelled.
func (c *CLI) runServe(ctx context.Context, dir string, ln net.Listener) error {
	ws, err := c.openWorkspace(ctx, dir)
	if err != nil {
		ln.Close()
		return err
	}
	ws.printWarnings()

	svc, closeSvc, err := c.newTranslator(ctx, ws.cfg)
	if err != nil {
		ln.Close()
		return err
	}
	defer closeSvc()

	hub := server.NewHub(c.Logger)
	host := panel.NewHost(ws.engine, hub, panel.Options{
		Translator:      svc,
		DefaultLanguage: ws.cfg.DefaultLanguage,
		Notify:          hub.Dialog(),
		Confirms:        hub.Confirmations(),
		Logger:          c.Logger,
	})

	watcher, err := c.startWatcher(ws, host)
	if err != nil {
		ln.Close()
		return err
	}
	defer watcher.Stop()

	srv := server.New(server.Config{Addr: ln.Addr().String(), Host: host, Hub: hub, Logger: c.Logger})
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	printSuccess("Serving %d documents from %s", ws.store.Len(), ws.dir)
	printDetail("Panel:  ws://%s/ws", ln.Addr())
	printDetail("Health: http://%s/healthz", ln.Addr())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	host.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		c.Logger.Warn("shutdown", "err", err)
	}
	return <-errc
}

// startWatcher watches the workspace and feeds file events to h.
func (c *CLI) startWatcher(ws *workspace, h watch.Handler) (*watch.Watcher, error) {
	w, err := watch.New(ws.dir, h, watch.Options{
		Debounce:    ws.cfg.Watch.Debounce,
		RetryDelay:  ws.cfg.Watch.RetryDelay,
		MaxAttempts: ws.cfg.Watch.MaxAttempts,
		Logger:      c.Logger,
	})
	if err != nil {
		return nil, err
	}
	if err := w.Start(); err != nil {
		return nil, err
	}
	return w, nil
}
