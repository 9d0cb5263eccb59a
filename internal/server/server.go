// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server is the backend-for-frontend: a gin HTTP API over the
// search service, chat sessions, exports and metrics.
package server

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/pdiddy/bioexplorer/internal/chat"
	"github.com/pdiddy/bioexplorer/internal/metrics"
	"github.com/pdiddy/bioexplorer/internal/oracle"
	"github.com/pdiddy/bioexplorer/internal/search"
	"github.com/pdiddy/bioexplorer/internal/studycache"
	"github.com/pdiddy/bioexplorer/pkg/types"
)

// SessionHeader carries the client session id on requests and responses.
const SessionHeader = "X-Session-ID"

// shutdownTimeout bounds graceful shutdown in Run.
const shutdownTimeout = 10 * time.Second

// session is the per-client state: its own search fencing and chat
// history. Sessions share the study cache.
type session struct {
	search *search.Service
	chat   *chat.Session
}

// Server wires HTTP routes to the explorer services.
type Server struct {
	backend  oracle.Backend
	cfg      types.ExplorerConfig
	cache    *studycache.Cache
	sessions *lru.Cache[string, *session]
	recorder *metrics.Recorder
	logger   *zap.Logger
	engine   *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithRecorder records HTTP and search metrics and serves them on /metrics.
func WithRecorder(r *metrics.Recorder) Option {
	return func(s *Server) { s.recorder = r }
}

// New builds a Server over backend.
func New(backend oracle.Backend, cfg types.ExplorerConfig, opts ...Option) (*Server, error) {
	s := &Server{
		backend: backend,
		cfg:     cfg,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	capacity := cfg.Server.Sessions
	if capacity <= 0 {
		capacity = types.DefaultSessions
	}
	sessions, err := lru.New[string, *session](capacity)
	if err != nil {
		return nil, err
	}
	s.sessions = sessions
	s.cache = studycache.New(cfg.Search.CacheCapacity)
	s.engine = s.routes()
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(s.requestLogger(), gin.Recovery(), s.cors())

	r.GET("/healthz", s.health)
	r.GET("/metrics", gin.WrapH(s.recorder.Handler()))

	api := r.Group("/api")
	{
		api.GET("/search", s.search)
		api.GET("/studies/:id", s.detail)
		api.GET("/kpi", s.kpi)
		api.GET("/filter-values", s.filterValues)
		api.GET("/export", s.export)

		chatGroup := api.Group("/chat")
		chatGroup.POST("", s.ask)
		chatGroup.GET("/history", s.history)
		chatGroup.DELETE("/history", s.clearHistory)
	}
	return r
}

// Run serves on cfg.Server.Addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("server shutting down")
	return srv.Shutdown(shutdownCtx)
}

// cors allows the configured browser origins, or any origin when none are
// configured.
func (s *Server) cors() gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", SessionHeader},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", SessionHeader},
		MaxAge:        12 * time.Hour,
	}
	allowed := s.cfg.Server.AllowedOrigins
	if len(allowed) == 0 {
		cfg.AllowOriginFunc = func(string) bool { return true }
	} else {
		cfg.AllowOriginFunc = func(origin string) bool {
			return slices.Contains(allowed, origin)
		}
	}
	return cors.New(cfg)
}

// sessionFor returns the session named by the request header, creating it
// on first use. Without a header the request gets a throwaway session, so
// anonymous clients never supersede each other's searches.
func (s *Server) sessionFor(c *gin.Context) (string, *session) {
	id := c.GetHeader(SessionHeader)
	if id != "" {
		if sess, ok := s.sessions.Get(id); ok {
			return id, sess
		}
	}
	sess := s.newSession(id)
	id = sess.chat.ID
	if c.GetHeader(SessionHeader) != "" {
		s.sessions.Add(id, sess)
	}
	return id, sess
}

// chatSessionFor is like sessionFor but always keeps the session, since
// chat history must survive between requests.
func (s *Server) chatSessionFor(c *gin.Context) (string, *session) {
	id := c.GetHeader(SessionHeader)
	if id != "" {
		if sess, ok := s.sessions.Get(id); ok {
			return id, sess
		}
	}
	sess := s.newSession(id)
	s.sessions.Add(sess.chat.ID, sess)
	return sess.chat.ID, sess
}

func (s *Server) newSession(id string) *session {
	cs := chat.NewSession(s.backend,
		chat.WithSessionID(id),
		chat.WithTopK(s.cfg.Chat.TopK),
		chat.WithRecorder(s.recorder),
		chat.WithLogger(s.logger),
	)
	svc := search.New(s.backend, s.cfg.Search,
		search.WithCache(s.cache),
		search.WithRecorder(s.recorder),
		search.WithLogger(s.logger),
	)
	return &session{search: svc, chat: cs}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		s.recorder.HTTPRequest(c.Request.Method, c.FullPath(), strconv.Itoa(status), latency)
		s.logger.Info("http request",
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)
	}
}
