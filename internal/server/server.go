package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

/*
Responsibilities
- Expose the lookup service over HTTP
- Versioned routes under /api/v1, unversioned routes kept for old clients
- Request plumbing: request ids, panic recovery, per-request timeout, CORS
- Stop accepting work on shutdown and drain in-flight requests
*/

const (
	defaultRequestTimeout = 30 * time.Second
	defaultShutdownGrace  = 10 * time.Second
)

type Param struct {
	Addr           string
	Service        ScoreService
	Logger         *slog.Logger
	Version        string
	CORSOrigins    []string
	RequestTimeout time.Duration
	ShutdownGrace  time.Duration
}

type Server struct {
	httpServer    *http.Server
	router        chi.Router
	logger        *slog.Logger
	shutdownGrace time.Duration
}

func New(param Param) *Server {
	if param.RequestTimeout <= 0 {
		param.RequestTimeout = defaultRequestTimeout
	}
	if param.ShutdownGrace <= 0 {
		param.ShutdownGrace = defaultShutdownGrace
	}

	handler := NewHandler(param.Service, param.Logger, param.Version)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(param.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(param.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: param.CORSOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/", handler.Root)
	r.Get("/health", handler.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", handler.Health)
		r.Get("/live-matches", handler.LiveMatches)
		r.Get("/matches/{matchID}/score", handler.MatchScore)
		r.Get("/matches/{matchID}/live", handler.MatchLive)
	})

	// Unversioned routes of the first release.
	r.Get("/live-matches", handler.LegacyMatches)
	r.Get("/score", handler.LegacyScore)
	r.Get("/score/live", handler.LegacyScoreLive)

	return &Server{
		httpServer: &http.Server{
			Addr:         param.Addr,
			Handler:      r,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		router:        r,
		logger:        param.Logger,
		shutdownGrace: param.ShutdownGrace,
	}
}

// Handler exposes the routing tree, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx ends, then drains in-flight requests within the
// shutdown grace period.
func (s *Server) Run(ctx context.Context) error {
	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("listening", slog.String("addr", s.httpServer.Addr))
		serverErrors <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down", slog.Duration("grace", s.shutdownGrace))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownGrace)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			_ = s.httpServer.Close()
			return err
		}
		return nil
	}
}

// requestLogger logs one line per served request.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("request served",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", chimiddleware.GetReqID(r.Context())),
			)
		})
	}
}
