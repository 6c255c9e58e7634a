package nhttp

import (
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/muir/nphase"
	"github.com/muir/nphase/nvelope"
)

// Fallback answers a request whose pipeline failed.  failure is the
// pipeline's error value.
type Fallback func(w http.ResponseWriter, r *http.Request, failure any)

type handlerOptions struct {
	name     string
	log      nvelope.BasicLogger
	fallback Fallback
	metrics  *Metrics
}

type Option func(*handlerOptions)

// WithName sets the handler label used in logs and metrics.
func WithName(name string) Option {
	return func(o *handlerOptions) {
		o.name = name
	}
}

// WithLogger sets where failures are logged.  The default is
// nvelope.NoLogger().
func WithLogger(log nvelope.BasicLogger) Option {
	return func(o *handlerOptions) {
		o.log = log
	}
}

// WithFallback replaces DefaultFallback.
func WithFallback(fallback Fallback) Option {
	return func(o *handlerOptions) {
		o.fallback = fallback
	}
}

// WithNext hands failed requests to next instead of answering them.
func WithNext(next http.Handler) Option {
	return func(o *handlerOptions) {
		o.fallback = func(w http.ResponseWriter, r *http.Request, _ any) {
			next.ServeHTTP(w, r)
		}
	}
}

// WithMetrics records every request in m.
func WithMetrics(m *Metrics) Option {
	return func(o *handlerOptions) {
		o.metrics = m
	}
}

// ToHandler turns a pipeline into an http.Handler.  Each request gets
// its own Connection.  When the pipeline fails before the response
// body was sent, its status and headers are dropped and the fallback
// answers instead.  When it fails afterwards the failure can only be
// logged.
//
// A failure inside nphase.OrElse or nphase.Alt after the response
// ended cannot be recovered: the recovery panics with
// *nphase.ProtocolViolation, which net/http turns into an aborted
// request, and the fallback never runs.
func ToHandler[E, A any](m nphase.Middleware[nphase.StatusOpen, nphase.ResponseEnded, E, A], opts ...Option) http.Handler {
	o := handlerOptions{
		name:     "nphase",
		log:      nvelope.NoLogger(),
		fallback: DefaultFallback,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		conn := NewConnection(w, r)
		conn.log = o.log
		failure, failed := m.Run(nphase.Open(conn)).GetLeft()
		if failed {
			o.recover(conn, failure)
		}
		conn.commit()
		o.metrics.Observe(o.name, r.Method, conn.Status(), time.Since(start), failed)
	})
}

func (o handlerOptions) recover(conn *Connection, failure any) {
	fields := map[string]interface{}{
		"handler": o.name,
		"method":  conn.r.Method,
		"uri":     conn.OriginalURL(),
		"error":   fmt.Sprint(failure),
	}
	if conn.w.Done() {
		o.log.Error("Pipeline failed after the response was sent", fields)
		return
	}
	o.log.Debug("Pipeline failed", fields)
	conn.w.Reset()
	o.fallback(conn.w, conn.r, failure)
	conn.status = conn.w.Status()
	if conn.status == 0 && len(conn.w.Buffered()) == 0 && !conn.w.Done() {
		o.log.Warn("Request was not answered", fields)
		conn.w.WriteHeader(http.StatusInternalServerError)
		conn.status = http.StatusInternalServerError
	}
}

// DefaultFallback sends the error text with the status from
// nvelope.GetReturnCode.  A *Rejected error is replayed as the
// lifted handler wrote it.  Failures that are not errors get a 500.
func DefaultFallback(w http.ResponseWriter, _ *http.Request, failure any) {
	err, ok := failure.(error)
	if !ok {
		http.Error(w, fmt.Sprint(failure), http.StatusInternalServerError)
		return
	}
	var rejected *Rejected
	if errors.As(err, &rejected) {
		rejected.writeTo(w)
		return
	}
	http.Error(w, err.Error(), nvelope.GetReturnCode(err))
}
