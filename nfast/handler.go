package nfast

import (
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/valyala/fasthttp"

	"github.com/muir/nphase"
	"github.com/muir/nphase/nhttp"
	"github.com/muir/nphase/nvelope"
)

// Fallback answers a request whose pipeline failed.
type Fallback func(ctx *fasthttp.RequestCtx, failure any)

type handlerOptions struct {
	name     string
	log      nvelope.BasicLogger
	fallback Fallback
	metrics  *nhttp.Metrics
}

type Option func(*handlerOptions)

// WithName sets the handler label used in logs and metrics.
func WithName(name string) Option {
	return func(o *handlerOptions) {
		o.name = name
	}
}

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

// WithMetrics records requests the same way nhttp does.
func WithMetrics(m *nhttp.Metrics) Option {
	return func(o *handlerOptions) {
		o.metrics = m
	}
}

// ToHandler turns a pipeline into a fasthttp.RequestHandler.  Since
// fasthttp holds the whole response until the handler returns, a
// failed pipeline is always answered by the fallback, even one that
// failed after sending its body.
func ToHandler[E, A any](m nphase.Middleware[nphase.StatusOpen, nphase.ResponseEnded, E, A], opts ...Option) fasthttp.RequestHandler {
	o := handlerOptions{
		name:     "nphase",
		log:      nvelope.NoLogger(),
		fallback: DefaultFallback,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()
		conn := NewConnection(ctx)
		conn.log = o.log
		failure, failed := m.Run(nphase.Open(conn)).GetLeft()
		if failed {
			o.log.Debug("Pipeline failed", map[string]interface{}{
				"handler": o.name,
				"method":  conn.Method(),
				"uri":     conn.OriginalURL(),
				"error":   fmt.Sprint(failure),
			})
			ctx.Response.Reset()
			o.fallback(ctx, failure)
		}
		o.metrics.Observe(o.name, conn.Method(), ctx.Response.StatusCode(), time.Since(start), failed)
	}
}

// DefaultFallback sends the error text with the status from
// nvelope.GetReturnCode.  Failures that are not errors get a 500.
func DefaultFallback(ctx *fasthttp.RequestCtx, failure any) {
	ctx.SetContentType("text/plain; charset=utf-8")
	err, ok := failure.(error)
	if !ok {
		ctx.SetStatusCode(http.StatusInternalServerError)
		ctx.SetBodyString(fmt.Sprint(failure))
		return
	}
	var rejected *nhttp.Rejected
	if errors.As(err, &rejected) {
		for k, v := range rejected.Header {
			for _, s := range v {
				ctx.Response.Header.Add(k, s)
			}
		}
		ctx.SetStatusCode(rejected.Status)
		ctx.SetBody(rejected.Body)
		return
	}
	ctx.SetStatusCode(nvelope.GetReturnCode(err))
	ctx.SetBodyString(err.Error())
}
