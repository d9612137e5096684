// Package server exposes a running engine over WebSocket. Clients send
// JSON directives describing the graph they want mounted; the server
// streams drained event batches back on the same connection.
//
// The daemon hosts exactly one engine. Every session drives that same
// engine, so a directive from any session replaces the mounted graph
// for all of them, and each drained event batch is broadcast to every
// connected session and journaled once under the shared engine stream.
package server

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tliron/commonlog"

	"github.com/cristianvogel/elementary/engine"
	"github.com/cristianvogel/elementary/journal"
	"github.com/cristianvogel/elementary/js"
	"github.com/cristianvogel/elementary/manifest"
)

var log = commonlog.GetLogger("elementary.server")

// Server accepts WebSocket sessions and applies their directives to a
// single shared engine through its worker.
type Server struct {
	worker    *engine.Worker
	man       *manifest.Manifest
	jour      *journal.Journal
	validator *schemaValidator
	mux       *http.ServeMux
	upgrader  websocket.Upgrader

	drainEvery time.Duration

	quit     chan struct{}
	quitOnce sync.Once

	mu       sync.Mutex
	sessions map[string]*session
}

// engineStream names the journal stream for server-drained batches.
// One engine serves every session, so a batch is not attributable to a
// single connection.
const engineStream = "engine"

// Option configures a Server.
type Option func(*serverConfig)

type serverConfig struct {
	journal    *journal.Journal
	drainEvery time.Duration
}

// WithJournal sets a journal that records every drained event batch
// under the shared engine stream. Without this, nothing persists.
func WithJournal(j *journal.Journal) Option {
	return func(c *serverConfig) { c.journal = j }
}

// WithDrainInterval sets how often each session polls the engine for
// queued events. Default is 30ms.
func WithDrainInterval(d time.Duration) Option {
	return func(c *serverConfig) { c.drainEvery = d }
}

// New creates a Server wrapping the given worker.
func New(worker *engine.Worker, man *manifest.Manifest, opts ...Option) *Server {
	cfg := &serverConfig{
		drainEvery: 30 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	s := &Server{
		worker:     worker,
		man:        man,
		jour:       cfg.journal,
		validator:  newSchemaValidator(),
		mux:        http.NewServeMux(),
		drainEvery: cfg.drainEvery,
		quit:       make(chan struct{}),
		sessions:   make(map[string]*session),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}

	s.mux.HandleFunc("/session", s.handleSession)
	s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "ok")
	})

	go s.drainLoop()

	return s
}

// drainLoop polls the engine for queued events, journals each batch
// once, and broadcasts it to every connected session.
func (s *Server) drainLoop() {
	ticker := time.NewTicker(s.drainEvery)
	defer ticker.Stop()

	for {
		select {
		case <-s.quit:
			return
		case <-ticker.C:
			batch, err := s.worker.DrainEventBatch()
			if err != nil {
				return
			}
			if len(batch.Array()) == 0 {
				continue
			}
			if s.jour != nil {
				if err := s.jour.Record(engineStream, batch); err != nil {
					log.Errorf("journal: %v", err)
				}
			}
			text, err := js.SerializeJSON(batch)
			if err != nil {
				log.Errorf("serializing events: %v", err)
				continue
			}
			s.broadcast(text)
		}
	}
}

func (s *Server) broadcast(text string) {
	s.mu.Lock()
	targets := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		targets = append(targets, sess)
	}
	s.mu.Unlock()

	for _, sess := range targets {
		if err := sess.writeText(text); err != nil {
			sess.close()
		}
	}
}

// Handler returns the HTTP handler, for mounting under a larger mux or
// an httptest server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	log.Infof("listening on %s", addr)
	return http.ListenAndServe(addr, s.mux)
}

// Stop halts the drain loop, closes every live session, and shuts down
// the worker.
func (s *Server) Stop() {
	s.quitOnce.Do(func() { close(s.quit) })

	s.mu.Lock()
	for _, sess := range s.sessions {
		sess.close()
	}
	s.sessions = make(map[string]*session)
	s.mu.Unlock()

	s.worker.Stop()
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Errorf("upgrade failed: %v", err)
		return
	}

	sess := newSession(s, conn)

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	log.Infof("session %s connected from %s", sess.id, r.RemoteAddr)
	sess.run()

	s.mu.Lock()
	delete(s.sessions, sess.id)
	s.mu.Unlock()

	log.Infof("session %s closed", sess.id)
}
