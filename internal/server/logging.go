package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// requestLogger routes chi's request logging through slog.
type requestLogger struct {
	logger *slog.Logger
}

func (l requestLogger) NewLogEntry(r *http.Request) middleware.LogEntry {
	return &requestEntry{
		logger: l.logger.With(
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
			"request_id", middleware.GetReqID(r.Context()),
		),
	}
}

type requestEntry struct {
	logger *slog.Logger
}

func (e *requestEntry) Write(status, bytes int, _ http.Header, elapsed time.Duration, _ interface{}) {
	e.logger.Info("http request", "status", status, "bytes", bytes, "elapsed", elapsed)
}

func (e *requestEntry) Panic(v interface{}, stack []byte) {
	e.logger.Error("http handler panic", "panic", v, "stack", string(stack))
}
