// Package logging builds the structured loggers used across the app.
//
// Every logger writes JSON lines with a UTC timestamp and the name of the
// component that produced the entry:
//
//	{"component":"repository","err":"...","level":"error","msg":"failed to list children","ts":"..."}
package logging

import (
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// New returns a JSON logger on stderr filtered at lvl ("debug", "info",
// "warn", "error"; anything else means info).
func New(lvl string) log.Logger {
	return NewWithWriter(os.Stderr, lvl)
}

// NewWithWriter is New writing to w.
func NewWithWriter(w io.Writer, lvl string) log.Logger {
	var logger log.Logger
	logger = log.NewJSONLogger(log.NewSyncWriter(w))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)
	return level.NewFilter(logger, allow(lvl))
}

// Nop discards everything. Used by tests.
func Nop() log.Logger {
	return log.NewNopLogger()
}

// Component tags every entry of logger with the component name.
func Component(logger log.Logger, name string) log.Logger {
	return log.With(logger, "component", name)
}

func allow(lvl string) level.Option {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		return level.AllowDebug()
	case "warn", "warning":
		return level.AllowWarn()
	case "error":
		return level.AllowError()
	default:
		return level.AllowInfo()
	}
}

// RequestLogger logs one line per HTTP request once it has been served.
func RequestLogger(logger log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			l := level.Info(logger)
			if status >= http.StatusInternalServerError {
				l = level.Error(logger)
			}
			l.Log(
				"msg", "http request",
				"method", r.Method,
				"uri", r.RequestURI,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start).String(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
