package nhttp

import (
	"fmt"
	"net/http"

	"code.hybscloud.com/kont"

	"github.com/muir/nphase"
	"github.com/muir/nphase/nvelope"
)

// Rejected is what a lifted handler wrote instead of calling the next
// handler.
type Rejected struct {
	Status int
	Header http.Header
	Body   []byte
}

func (r *Rejected) Error() string {
	if len(r.Body) == 0 {
		return fmt.Sprintf("rejected with status %d", r.Status)
	}
	return fmt.Sprintf("rejected with status %d: %s", r.Status, r.Body)
}

func (r *Rejected) writeTo(w http.ResponseWriter) {
	h := w.Header()
	for k, v := range r.Header {
		h[k] = v
	}
	w.WriteHeader(r.Status)
	_, _ = w.Write(r.Body)
}

// Replay sends a rejection as the response.
func Replay[E any](r *Rejected) nphase.Middleware[nphase.StatusOpen, nphase.ResponseEnded, E, struct{}] {
	return nphase.Then(nphase.Status[E](r.Status),
		nphase.Then(nphase.Headers[E](r.Header),
			nphase.Then(nphase.CloseHeaders[E](), nphase.SendBytes[E](r.Body))))
}

// FromHandler lifts wrapping middleware, the func(http.Handler)
// http.Handler kind, into a step that stays in phase P.  When mw calls
// the next handler, the headers it set are kept and the step produces
// project(r) for the request next was given; later steps see that
// request too.  When mw answers by itself, nothing reaches the
// response and the step fails with onError of what mw wrote.
//
// Headers are only taken over while they are still open, that is in
// StatusOpen and HeadersOpen.  In later phases they are dropped and
// logged.
//
// The step only works on connections made by this package.
func FromHandler[P nphase.Phase, E, A any](
	mw func(http.Handler) http.Handler,
	project func(*http.Request) A,
	onError func(*Rejected) E,
) nphase.Middleware[P, P, E, A] {
	return nphase.FromFunc(func(c nphase.Conn[P]) kont.Either[E, nphase.Result[P, A]] {
		c.Check("FromHandler")
		conn, ok := c.Raw().(*Connection)
		if !ok {
			return nphase.Abort[P, A](onError(&Rejected{
				Status: http.StatusInternalServerError,
				Body:   []byte(fmt.Sprintf("%T is not a net/http connection", c.Raw())),
			}))
		}
		var passed *http.Request
		inner := nvelope.NewDeferredWriter(discardWriter{header: http.Header{}})
		mw(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			passed = r
		})).ServeHTTP(inner, conn.r)
		if passed == nil {
			status := inner.Status()
			if status == 0 {
				status = http.StatusOK
			}
			return nphase.Abort[P, A](onError(&Rejected{
				Status: status,
				Header: inner.Header(),
				Body:   append([]byte(nil), inner.Buffered()...),
			}))
		}
		switch tag := c.Phase(); tag {
		case nphase.TagStatusOpen, nphase.TagHeadersOpen:
			h := conn.w.Header()
			for k, v := range inner.Header() {
				h[k] = v
			}
		default:
			if len(inner.Header()) != 0 {
				conn.log.Warn("Dropped headers set after the header section closed", map[string]interface{}{
					"phase": tag.String(),
					"uri":   conn.OriginalURL(),
				})
			}
		}
		conn.r = passed
		return nphase.Done[E](project(passed), c)
	})
}

// Request is a projection for FromHandler that keeps the request.
func Request(r *http.Request) *http.Request { return r }

// Combine nests middleware so that the first one given is the
// outermost.
func Combine(mw ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	switch len(mw) {
	case 0:
		return func(h http.Handler) http.Handler {
			return h
		}
	case 1:
		return mw[0]
	default:
		combined := mw[len(mw)-1]
		for i := len(mw) - 2; i >= 0; i-- {
			f := mw[i]
			c := combined
			combined = func(h http.Handler) http.Handler {
				return f(c(h))
			}
		}
		return combined
	}
}

type discardWriter struct {
	header http.Header
}

func (d discardWriter) Header() http.Header         { return d.header }
func (d discardWriter) Write(b []byte) (int, error) { return len(b), nil }
func (d discardWriter) WriteHeader(int)             {}
