package nvelope

import (
	"io"
	"net/http"

	"github.com/pkg/errors"
)

// DeferredWriter is a http.ResponseWriter that holds the status,
// headers, and body until Flush is called.  Until then everything
// can be thrown away with Reset.  After Flush, writes go straight
// to the underlying writer.
type DeferredWriter struct {
	base        http.ResponseWriter
	passthrough bool
	header      http.Header
	resetHeader http.Header
	buffer      []byte
	status      int
}

var _ http.ResponseWriter = &DeferredWriter{}

// NewDeferredWriter wraps w.  Headers already set on w are the
// starting point for the deferred headers.
func NewDeferredWriter(w http.ResponseWriter) *DeferredWriter {
	return &DeferredWriter{
		base:        w,
		header:      w.Header().Clone(),
		resetHeader: w.Header().Clone(),
		buffer:      make([]byte, 0, 4*1024),
	}
}

func (w *DeferredWriter) Header() http.Header {
	if w.passthrough {
		return w.base.Header()
	}
	return w.header
}

func (w *DeferredWriter) Write(b []byte) (int, error) {
	if w.passthrough {
		return w.base.Write(b)
	}
	w.buffer = append(w.buffer, b...)
	return len(b), nil
}

func (w *DeferredWriter) WriteHeader(statusCode int) {
	if w.passthrough {
		w.base.WriteHeader(statusCode)
		return
	}
	w.status = statusCode
}

// Reset drops the buffered status, body, and header changes.  It
// has no effect once the writer was flushed.
func (w *DeferredWriter) Reset() {
	if w.passthrough {
		return
	}
	w.buffer = w.buffer[:0]
	w.status = 0
	w.header = w.resetHeader.Clone()
}

// PreserveHeader makes the current headers the ones Reset returns to.
func (w *DeferredWriter) PreserveHeader() {
	w.resetHeader = w.header.Clone()
}

// Status is the status code written so far, or 0.
func (w *DeferredWriter) Status() int { return w.status }

// Buffered is the body written so far and not yet flushed.
func (w *DeferredWriter) Buffered() []byte { return w.buffer }

// Done is true once Flush was called.
func (w *DeferredWriter) Done() bool { return w.passthrough }

// UnderlyingWriter returns the wrapped writer.
func (w *DeferredWriter) UnderlyingWriter() http.ResponseWriter { return w.base }

// Flush sends the status, headers, and buffered body.  Short writes
// are retried.
func (w *DeferredWriter) Flush() error {
	if w.passthrough {
		return nil
	}
	w.passthrough = true
	h := w.base.Header()
	for k := range h {
		if _, ok := w.header[k]; !ok {
			delete(h, k)
		}
	}
	for k, v := range w.header {
		h[k] = v
	}
	if w.status != 0 {
		w.base.WriteHeader(w.status)
	}
	b := w.buffer
	for len(b) > 0 {
		n, err := w.base.Write(b)
		b = b[n:]
		if err != nil {
			if errors.Is(err, io.ErrShortWrite) {
				continue
			}
			return errors.Wrap(err, "flush deferred writer")
		}
	}
	w.buffer = nil
	return nil
}
