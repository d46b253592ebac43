package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ashveil/progression-engine/internal/database"
	"github.com/ashveil/progression-engine/internal/handler"
	"github.com/ashveil/progression-engine/internal/logger"
	"github.com/ashveil/progression-engine/internal/metrics"
	"github.com/ashveil/progression-engine/internal/sse"
)

// Server hosts the progression engine's HTTP surface
type Server struct {
	httpServer *http.Server
	dbPool     database.Pool
}

// NewServer wires the middleware stack and routes
func NewServer(port int, apiKey string, trustedProxies []string, dbPool database.Pool,
	progressHandler *handler.ProgressHandler, adminHandler *handler.AdminHandler, hub *sse.Hub) *Server {
	r := chi.NewRouter()

	// Chi middleware executes in order defined (outermost to innermost)
	r.Use(SecurityHeadersMiddleware())
	r.Use(AuthMiddleware(apiKey, trustedProxies))
	r.Use(RequestSizeLimitMiddleware(MaxRequestBodyBytes))
	r.Use(metrics.Middleware)
	r.Use(requestLogging)

	// Operational endpoints stay unversioned and unauthenticated
	r.Get("/healthz", handler.HandleHealthz())
	r.Get("/readyz", handler.HandleReadyz(dbPool))
	r.Get("/version", handler.HandleVersion())
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/progress", func(r chi.Router) {
			r.Post("/award", progressHandler.HandleAward)
			r.Get("/summary", progressHandler.HandleGetSummary)
			r.Get("/history", progressHandler.HandleGetHistory)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/ratelimit/reset", adminHandler.HandleResetRateLimit)
		})

		// Real-time progression events
		r.Get("/events", sse.Handler(hub))
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
		dbPool: dbPool,
	}
}

// statusRecorder captures the response status for the request log while
// forwarding Flush so SSE streaming still works behind the wrapper
type statusRecorder struct {
	http.ResponseWriter
	status int
	sent   bool
}

func (rec *statusRecorder) WriteHeader(status int) {
	if rec.sent {
		return
	}
	rec.status = status
	rec.sent = true
	rec.ResponseWriter.WriteHeader(status)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	if !rec.sent {
		rec.WriteHeader(http.StatusOK)
	}
	return rec.ResponseWriter.Write(b)
}

func (rec *statusRecorder) Flush() {
	if f, ok := rec.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Probe and scrape traffic would drown the request log
var unloggedPaths = map[string]bool{
	"/healthz": true,
	"/readyz":  true,
	"/metrics": true,
}

func requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if unloggedPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		ctx := logger.WithRequestID(r.Context(), logger.GenerateRequestID())
		r = r.WithContext(ctx)
		log := logger.FromContext(ctx)

		log.Info(LogMsgRequestStarted,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"content_length", r.ContentLength,
			"user_agent", r.UserAgent())
		log.Debug(LogMsgRequestHeaders, "headers", redactSecrets(r.Header))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)

		log.Info(LogMsgRequestCompleted,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", elapsed.Milliseconds(),
			"duration", elapsed)
	})
}

// redactSecrets copies headers with credential values masked
func redactSecrets(headers http.Header) http.Header {
	out := make(http.Header, len(headers))
	for k, v := range headers {
		if strings.EqualFold(k, HeaderAPIKey) {
			out[k] = []string{RedactedValue}
			continue
		}
		out[k] = v
	}
	return out
}

// Start starts the server
func (s *Server) Start() error {
	slog.Default().Info(LogMsgServerStarting, "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
