// Package xhttp implements http helpers for the preview server.
package xhttp

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"cdr.dev/slog"

	"github.com/vinemap/vinemap/lib/log"
)

func NewServer(h http.Handler) *http.Server {
	return &http.Server{
		MaxHeaderBytes: 1 << 18,
		ReadTimeout:    time.Minute,
		WriteTimeout:   time.Minute,
		IdleTimeout:    time.Hour,
		Handler:        http.MaxBytesHandler(h, 1<<20),
	}
}

// Serve runs s on l until ctx is canceled, then shuts down gracefully
// within shutdownTimeout.
func Serve(ctx context.Context, shutdownTimeout time.Duration, s *http.Server, l net.Listener) error {
	s.BaseContext = func(net.Listener) context.Context {
		return ctx
	}

	done := make(chan error, 1)
	go func() {
		done <- s.Serve(l)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return s.Shutdown(sctx)
	}
}

// Error pairs an HTTP status with the underlying error. Returned from a
// HandlerFunc, it selects the status written to the connection.
type Error struct {
	Code int
	Err  error
}

func Errorf(code int, msg string, v ...interface{}) error {
	return Error{Code: code, Err: fmt.Errorf(msg, v...)}
}

func (e Error) Error() string {
	return fmt.Sprintf("http error %v: %v", e.Code, e.Err)
}

func (e Error) Unwrap() error {
	return e.Err
}

// HandlerFunc is http.HandlerFunc with an error return. Errors are logged
// and written to the connection by Adapt.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Adapt turns a HandlerFunc into an http.Handler that logs and reports
// failures. Handlers that already wrote a response (e.g. hijacked
// websockets) return nil and are left alone.
func Adapt(fn HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}
		code := http.StatusInternalServerError
		if herr, ok := err.(Error); ok {
			code = herr.Code
		}
		log.Error(r.Context(), "http handler failed",
			slog.F("path", r.URL.Path),
			slog.F("code", code),
			slog.Error(err),
		)
		http.Error(w, http.StatusText(code), code)
	})
}

// LogRequests wraps h with debug-level request logging.
func LogRequests(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		h.ServeHTTP(w, r)
		log.Debug(r.Context(), "http request",
			slog.F("method", r.Method),
			slog.F("path", r.URL.Path),
			slog.F("dur", time.Since(start)),
		)
	})
}
