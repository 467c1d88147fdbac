// Package server exposes the bridge dispatcher over local HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/h0rv/bugdrop/internal/bridge"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// maxBodyBytes bounds an action envelope, attachments included.
const maxBodyBytes = 64 << 20

// Handler answers bridge envelopes.
type Handler interface {
	Handle(ctx context.Context, req bridge.Request) bridge.Response
}

type Server struct {
	Router *chi.Mux
	Addr   string
	logger *zap.Logger
}

// New builds the router for addr.
func New(addr string, handler Handler, logger *zap.Logger) *Server {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, "bugdrop-bridge")
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	// JSON only, so a cross-site page cannot post without a preflight.
	r.With(OriginMiddleware, middleware.AllowContentType("application/json")).
		Post("/v1/actions", actionsHandler(handler, logger))

	return &Server{
		Router: r,
		Addr:   addr,
		logger: logger,
	}
}

func actionsHandler(handler Handler, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req bridge.Request
		body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := json.NewDecoder(body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, bridge.Response{Error: "invalid request: " + err.Error()})
			return
		}

		resp := handler.Handle(r.Context(), req)
		if !resp.Success {
			logger.Debug("action failed",
				zap.String("request_id", GetRequestID(r.Context())),
				zap.String("action", req.Action),
				zap.String("error", resp.Error))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting bridge server", zap.String("addr", s.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("stopping bridge server")
		return srv.Shutdown(shutdownCtx)
	}
}
