// Package web serves the planner as a set of HTML pages and forms. Every
// request that changes data loads the document, applies one mutation and
// saves it back before responding.
package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"github.com/kingrea/academic-planner/internal/logbook"
	"github.com/kingrea/academic-planner/internal/report"
	"github.com/kingrea/academic-planner/internal/store"
)

// Server wraps the HTTP listener and handlers of the HTML front end.
type Server struct {
	settings Settings
	store    store.DocumentStore
	logger   *zap.Logger
	clock    report.Clock
	newID    func() string
	journal  *logbook.Logbook
	cookies  *sessions.CookieStore
	metrics  *metrics
	pages    pageSet

	mu        sync.RWMutex
	server    *http.Server
	listener  net.Listener
	startTime time.Time
}

// Option customizes server construction.
type Option func(*Server)

// WithLogger overrides the default no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock allows tests to control "today".
func WithClock(clock report.Clock) Option {
	return func(s *Server) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithIDGenerator overrides how new record ids are minted.
func WithIDGenerator(gen func() string) Option {
	return func(s *Server) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithJournal records every change in the activity journal.
func WithJournal(j *logbook.Logbook) Option {
	return func(s *Server) {
		s.journal = j
	}
}

// NewServer prepares the web front end over st.
func NewServer(settings Settings, st store.DocumentStore, opts ...Option) (*Server, error) {
	if st == nil {
		return nil, fmt.Errorf("web: store is required")
	}
	if settings.SessionKey == "" {
		return nil, fmt.Errorf("web: session key is required")
	}
	if settings.MaxFormBytes <= 0 {
		settings.MaxFormBytes = DefaultMaxFormBytes
	}
	if settings.Deadlines <= 0 {
		settings.Deadlines = 5
	}
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}
	cookies := sessions.NewCookieStore([]byte(settings.SessionKey))
	cookies.Options = &sessions.Options{Path: "/", MaxAge: 3600, HttpOnly: true, SameSite: http.SameSiteLaxMode}
	s := &Server{
		settings: settings,
		store:    st,
		logger:   zap.NewNop(),
		clock:    report.SystemClock,
		newID:    uuid.NewString,
		cookies:  cookies,
		metrics:  newMetrics(),
		pages:    pages,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Start binds the TCP listener and begins serving HTTP traffic.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return fmt.Errorf("web: server already started")
	}
	addr := s.settings.Address()
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("web: listen %s: %w", addr, err)
	}
	server := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.settings.ReadTimeout,
		WriteTimeout: s.settings.WriteTimeout,
		IdleTimeout:  s.settings.IdleTimeout,
	}
	if ctx != nil {
		server.BaseContext = func(net.Listener) context.Context { return ctx }
	}
	s.listener = listener
	s.server = server
	s.startTime = time.Now()
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("web: serve error", zap.Error(err))
		}
	}()
	s.logger.Info("web: listening", zap.String("addr", listener.Addr().String()))
	return nil
}

// Shutdown stops accepting new connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil || s.server == nil {
		return nil
	}
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
	}
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	s.listener = nil
	s.server = nil
	s.logger.Info("web: stopped")
	return nil
}

// Addr returns the bound TCP address once the server has started.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// BaseURL returns the HTTP base URL for the running server.
func (s *Server) BaseURL() string {
	addr := s.Addr()
	if addr == "" {
		return s.settings.URL()
	}
	return "http://" + addr
}

func (s *Server) uptimeSeconds() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.startTime.IsZero() {
		return 0
	}
	return int64(time.Since(s.startTime).Seconds())
}
