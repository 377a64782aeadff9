// Package http is the presentation layer: a server-rendered UI over
// the record list, with htmx partials for capture, review, summaries,
// analysis, export and sync.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"rimborsi/internal/cache"
	"rimborsi/internal/core"
	"rimborsi/internal/services"
	appweb "rimborsi/web"
)

// Assistant is the AI side of the app: receipt field extraction from
// an image or a voice note, and free-text analysis over the list.
type Assistant interface {
	ExtractFromImage(ctx context.Context, data []byte, mimeType string) (core.Record, error)
	ExtractFromAudio(ctx context.Context, data []byte, mimeType string) (core.Record, error)
	Analyze(ctx context.Context, records []core.Record, query string) (string, error)
}

// RecordSyncer pushes the whole record list to an external endpoint.
type RecordSyncer interface {
	Configured() bool
	Push(ctx context.Context, records []core.Record) error
}

type Server struct {
	http.Server
	templates *template.Template
	records   *services.RecordService
	assistant Assistant
	syncer    RecordSyncer

	maxUploadBytes int64
	rateLimiter    *rateLimiter

	// Repeated analysis questions over an unchanged list are served
	// from here instead of the model.
	answerCache *cache.LRU[template.HTML]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run
// http.Server. assistant and syncer may be nil; the matching handlers
// then answer with a not-configured notice.
func NewServer(addr string, records *services.RecordService, assistant Assistant, syncer RecordSyncer, maxUploadBytes int64) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		records:          records,
		assistant:        assistant,
		syncer:           syncer,
		maxUploadBytes:   maxUploadBytes,
		rateLimiter:      newRateLimiter(),
		answerCache:      cache.NewLRU[template.HTML](100, 5*time.Minute),
		stopCacheCleanup: make(chan struct{}),
	}

	go s.startCacheCleanup()

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("/", s.withSecurityHeaders(s.handleIndex))
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/records", s.withSecurityHeaders(s.handleCreateRecord))
	mux.HandleFunc("/records/delete", s.withSecurityHeaders(s.handleDeleteRecord))
	mux.HandleFunc("/extract/image", s.withSecurityHeaders(s.handleExtractImage))
	mux.HandleFunc("/extract/audio", s.withSecurityHeaders(s.handleExtractAudio))
	mux.HandleFunc("/analyze", s.withSecurityHeaders(s.handleAnalyze))
	mux.HandleFunc("/sync", s.withSecurityHeaders(s.handleSync))
	// UI partials and downloads
	mux.HandleFunc("/ui/records", s.withSecurityHeaders(s.handleRecordsPartial))
	mux.HandleFunc("/export/csv", s.withSecurityHeaders(s.handleExportCSV))
	mux.HandleFunc("/export/pdf", s.withSecurityHeaders(s.handleExportPDF))

	return s
}

// startCacheCleanup periodically drops expired analysis answers.
func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if cleaned := s.answerCache.CleanExpired(); cleaned > 0 {
				slog.Debug("Answer cache cleanup completed", "entries_removed", cleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown stops the cleanup goroutines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		close(s.stopCacheCleanup)
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

type contextKey string

const requestIDKey contextKey = "request_id"

// withSecurityHeaders adds security headers, rate limiting and request
// logging to a handler.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)

		requestID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP,
			"user_agent", r.Header.Get("User-Agent"))

		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://unpkg.com 'unsafe-eval'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", clientIP)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
