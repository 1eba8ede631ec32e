// Package server exposes a panel host over HTTP: a websocket carrying
// the panel message protocol plus a few read-only JSON endpoints.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	jerrors "github.com/AbelMSG89/json-synchronized/pkg/errors"
	"github.com/AbelMSG89/json-synchronized/pkg/keytree"
	"github.com/AbelMSG89/json-synchronized/pkg/panel"
	"github.com/AbelMSG89/json-synchronized/pkg/translate"
)

// DefaultAddr is the listen address used when none is given.
const DefaultAddr = "127.0.0.1:7420"

const (
	wsWriteWait = 10 * time.Second
	wsPongWait  = 60 * time.Second
	wsPingEvery = (wsPongWait * 9) / 10
	wsMaxRead   = 1 << 20
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Config configures a Server.
type Config struct {
	Addr   string
	Host   *panel.Host
	Hub    *Hub
	Logger *log.Logger
}

// Server serves one panel host.
type Server struct {
	host   *panel.Host
	hub    *Hub
	logger *log.Logger
	router chi.Router
	http   *http.Server
}

// New builds the router. Host must publish to Hub.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	addr := cfg.Addr
	if addr == "" {
		addr = DefaultAddr
	}
	s := &Server{host: cfg.Host, hub: cfg.Hub, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/documents", s.handleDocuments)
		r.Get("/rows", s.handleRows)
	})
	r.Get("/ws", s.handleWS)
	s.router = r

	s.http = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.http.Addr }

// Start listens and serves until Shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return jerrors.Wrap(jerrors.ErrCodeNetwork, err, "listen on %s", s.http.Addr)
	}
	return s.Serve(ln)
}

// Serve serves on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("serving panel", "addr", ln.Addr().String())
	if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"documents": s.host.Store().Len(),
		"clients":   s.hub.Len(),
	})
}

type documentDTO struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	Language  string `json:"language"`
	Recovered bool   `json:"recovered,omitempty"`
}

func (s *Server) handleDocuments(w http.ResponseWriter, _ *http.Request) {
	docs := s.host.Store().Documents()
	out := make([]documentDTO, 0, len(docs))
	for _, d := range docs {
		out = append(out, documentDTO{
			Name:      d.Name,
			Path:      d.Path,
			Language:  translate.LanguageOf(d.Name),
			Recovered: d.Recovered,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRows(w http.ResponseWriter, r *http.Request) {
	res := s.host.Rows()
	names := s.host.Store().Names()
	flat := r.URL.Query().Get("flat") == "1"
	rows := res.Rows
	if flat {
		rows = keytree.Flatten(rows, nil)
	}
	writeJSON(w, http.StatusOK, newResultDTO(names, rows, res, flat))
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	c := s.hub.register()
	defer s.hub.unregister(c)

	conn.SetReadLimit(wsMaxRead)
	if err := conn.SetReadDeadline(time.Now().Add(wsPongWait)); err != nil {
		s.logger.Warn("ws set read deadline failed", "err", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(wsPingEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case data := <-c.send:
				if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	// Commands run one at a time in arrival order. confirmReply skips the
	// queue so a remove waiting for its answer cannot block it.
	work := make(chan panel.Inbound, sendBuffer)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		for msg := range work {
			_ = s.host.Handle(ctx, msg, c.dialog())
		}
	}()

	c.Publish(s.host.Config())
	c.Publish(panel.JSONMessage(s.host.Store().Snapshot()))

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		msg, err := panel.DecodeInbound(data)
		if err != nil {
			c.dialog().Error(jerrors.UserMessage(err))
			continue
		}
		if msg.Command == panel.CmdConfirmReply {
			_ = s.host.Handle(ctx, msg, c.dialog())
			continue
		}
		select {
		case work <- msg:
		default:
			c.dialog().Warn("Too many pending commands; message dropped")
		}
	}
	cancel()
	close(work)
	<-workerDone
	<-writerDone
}
