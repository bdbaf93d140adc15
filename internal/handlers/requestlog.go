package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RequestLogger logs one line per request through the global zerolog logger.
// Mount it after middleware.RequestID and middleware.RealIP.
func RequestLogger(next http.Handler) http.Handler {
	return middleware.RequestLogger(requestLogFormatter{})(next)
}

type requestLogFormatter struct{}

func (requestLogFormatter) NewLogEntry(r *http.Request) middleware.LogEntry {
	return &requestLogEntry{
		method:    r.Method,
		path:      r.URL.Path,
		remote:    clientIP(r),
		peer:      peerAddr(r),
		requestID: middleware.GetReqID(r.Context()),
	}
}

type requestLogEntry struct {
	method    string
	path      string
	remote    string
	peer      string
	requestID string
}

func (e *requestLogEntry) Write(status, bytes int, _ http.Header, elapsed time.Duration, _ interface{}) {
	var ev *zerolog.Event
	switch {
	case status >= http.StatusInternalServerError:
		ev = log.Error()
	case status >= http.StatusBadRequest:
		ev = log.Warn()
	default:
		ev = log.Info()
	}
	ev.Str("method", e.method).
		Str("path", e.path).
		Int("status", status).
		Int("bytes", bytes).
		Dur("elapsed", elapsed).
		Str("remote", e.remote).
		Str("peer", e.peer).
		Str("request_id", e.requestID).
		Msg("[HTTP] Request")
}

func (e *requestLogEntry) Panic(v interface{}, stack []byte) {
	log.Error().
		Interface("panic", v).
		Bytes("stack", stack).
		Str("path", e.path).
		Str("request_id", e.requestID).
		Msg("[HTTP] Panic while serving request")
}
