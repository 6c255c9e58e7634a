package nhttp

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/muir/nphase"
	"github.com/muir/nphase/nvelope"
)

// Connection is an nphase.Connection over net/http.  Status and
// headers are held in a DeferredWriter until the body is sent, so
// they can still be dropped by a recovery branch or by the handler's
// fallback.
type Connection struct {
	w      *nvelope.DeferredWriter
	r      *http.Request
	log    nvelope.BasicLogger
	status int
	query  url.Values
	body   any
	marks  []snapshot
}

type snapshot struct {
	status int
	header http.Header
	r      *http.Request
}

var (
	_ nphase.Connection = &Connection{}
	_ nphase.Rewinder   = &Connection{}
)

// NewConnection wraps one request.  Path parameters come from
// gorilla/mux when the request was routed by a mux.Router.
func NewConnection(w http.ResponseWriter, r *http.Request) *Connection {
	return &Connection{
		w:   nvelope.NewDeferredWriter(w),
		r:   r,
		log: nvelope.NoLogger(),
	}
}

// Writer is the deferred writer the connection writes to.
func (c *Connection) Writer() *nvelope.DeferredWriter { return c.w }

// HTTPRequest is the request as last seen by a lifted handler.
func (c *Connection) HTTPRequest() *http.Request { return c.r }

// Status is the status code sent or about to be sent.
func (c *Connection) Status() int {
	if c.status == 0 {
		return http.StatusOK
	}
	return c.status
}

func (c *Connection) Context() context.Context  { return c.r.Context() }
func (c *Connection) Method() string            { return c.r.Method }
func (c *Connection) OriginalURL() string       { return c.r.URL.RequestURI() }
func (c *Connection) Header(name string) string { return c.r.Header.Get(name) }

func (c *Connection) Params() map[string]string {
	if vars := mux.Vars(c.r); vars != nil {
		return vars
	}
	return map[string]string{}
}

func (c *Connection) Query() url.Values {
	if c.query == nil {
		c.query = c.r.URL.Query()
	}
	return c.query
}

// Body reads the request body on first use and returns it as []byte.
// The request body is replaced so that lifted handlers can read it
// again.  A read failure is returned as an io.Reader that fails.
func (c *Connection) Body() any {
	if c.body != nil {
		return c.body
	}
	if c.r.Body == nil {
		c.body = []byte{}
		return c.body
	}
	b, err := io.ReadAll(c.r.Body)
	_ = c.r.Body.Close()
	if err != nil {
		c.body = failingReader{err: errors.Wrap(err, "read request body")}
		return c.body
	}
	c.r.Body = io.NopCloser(bytes.NewReader(b))
	c.body = b
	return c.body
}

type failingReader struct{ err error }

func (f failingReader) Read([]byte) (int, error) { return 0, f.err }

func (c *Connection) SetStatus(code int) {
	c.status = code
	c.w.WriteHeader(code)
}

func (c *Connection) SetHeader(name, value string) {
	c.w.Header().Add(name, value)
}

func (c *Connection) SetCookie(name, value string, options nphase.CookieOptions) {
	http.SetCookie(c.w, options.Cookie(name, value))
}

func (c *Connection) ClearCookie(name string, options nphase.CookieOptions) {
	http.SetCookie(c.w, options.Expired(name))
}

func (c *Connection) SetBody(body []byte) {
	_, _ = c.w.Write(body)
	c.commit()
}

func (c *Connection) PipeStream(r io.Reader) {
	c.commit()
	if _, err := io.Copy(c.w, r); err != nil {
		c.log.Warn("Cannot stream response", map[string]interface{}{
			"error": err.Error(),
			"uri":   c.OriginalURL(),
		})
	}
}

func (c *Connection) EndResponse() {
	c.commit()
}

// Mark remembers the status and headers so far, and the request as
// lifted handlers left it.
func (c *Connection) Mark() int {
	c.marks = append(c.marks, snapshot{status: c.w.Status(), header: c.w.Header().Clone(), r: c.r})
	return len(c.marks) - 1
}

// Rewind drops the status and header writes made since Mark and goes
// back to the request seen at Mark.  Once the body was sent there is
// nothing left to drop.
func (c *Connection) Rewind(mark int) {
	if c.w.Done() || mark >= len(c.marks) {
		return
	}
	s := c.marks[mark]
	c.marks = c.marks[:mark]
	c.r = s.r
	c.w.Reset()
	h := c.w.Header()
	for k := range h {
		delete(h, k)
	}
	for k, v := range s.header {
		h[k] = v
	}
	if s.status != 0 {
		c.w.WriteHeader(s.status)
	}
	c.status = s.status
}

func (c *Connection) commit() {
	if err := c.w.Flush(); err != nil {
		c.log.Warn("Cannot send response", map[string]interface{}{
			"error": err.Error(),
			"uri":   c.OriginalURL(),
		})
	}
}
