package nphase

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Request is the read-only half of a Connection.  None of these
// methods fail or change the phase.
type Request interface {
	Context() context.Context
	Method() string
	OriginalURL() string
	Header(name string) string
	Params() map[string]string
	Query() url.Values
	// Body is opaque until decoded.  Adapters usually return an
	// io.Reader or []byte, but lifted native middleware may have
	// replaced it with an already-parsed value.
	Body() any
}

// Connection is what a framework adapter implements over its native
// request and response objects.  The mutators are called by this
// package in protocol order only; adapters do not need to check it.
type Connection interface {
	Request

	SetStatus(code int)
	SetHeader(name, value string)
	SetCookie(name, value string, options CookieOptions)
	ClearCookie(name string, options CookieOptions)
	SetBody(body []byte)
	PipeStream(r io.Reader)
	EndResponse()
}

// Rewinder is optionally implemented by adapters that buffer the
// response.  Mark is called before a step that can be recovered from
// (OrElse, Alt).  If that step fails, Rewind is called with the mark
// and must drop every write made since.
type Rewinder interface {
	Mark() int
	Rewind(mark int)
}

// CookieOptions are the attributes of a cookie written with SetCookie or
// removed with ClearCookie.
type CookieOptions struct {
	Expires  time.Time
	Domain   string
	HTTPOnly bool
	MaxAge   int
	Path     string
	SameSite http.SameSite
	Secure   bool
}

// Cookie builds the *http.Cookie an adapter should emit.
func (o CookieOptions) Cookie(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Expires:  o.Expires,
		Domain:   o.Domain,
		HttpOnly: o.HTTPOnly,
		MaxAge:   o.MaxAge,
		Path:     o.Path,
		SameSite: o.SameSite,
		Secure:   o.Secure,
	}
}

// Expired builds the *http.Cookie that clears a cookie.
func (o CookieOptions) Expired(name string) *http.Cookie {
	c := o.Cookie(name, "")
	c.MaxAge = -1
	c.Expires = time.Unix(0, 0)
	return c
}

type connState struct {
	phase PhaseTag
	epoch uint64
}

// Conn is a phase-tagged handle on a Connection.  Mutators are package
// functions that accept a Conn of one phase and return a Conn of the
// next, so out-of-order writes do not compile.  A handle is invalidated
// when its connection moves to another phase; using it afterwards
// panics with *ProtocolViolation.
type Conn[P Phase] struct {
	conn  Connection
	state *connState
	epoch uint64
}

// Open starts the protocol on a fresh connection.  Each native
// request must be opened exactly once.
func Open(c Connection) Conn[StatusOpen] {
	return OpenAt[StatusOpen](c)
}

// OpenAt starts tracking a connection that is already in phase P.
// This is for adapters that resume part way through a response and
// for tests.
func OpenAt[P Phase](c Connection) Conn[P] {
	return Conn[P]{
		conn:  c,
		state: &connState{phase: TagOf[P]()},
	}
}

// Phase reports the phase the handle was issued for.
func (c Conn[P]) Phase() PhaseTag { return TagOf[P]() }

// Valid is true if the connection is still in the handle's phase.
func (c Conn[P]) Valid() bool {
	return c.state != nil && c.state.epoch == c.epoch && c.state.phase == TagOf[P]()
}

// Raw returns the adapter connection.  Adapter packages use this to
// reach their own connection type; pipelines should not.
func (c Conn[P]) Raw() Connection { return c.conn }

// Request returns the read-only view of the connection.
func (c Conn[P]) Request() Request { return c.conn }

func (c Conn[P]) Context() context.Context  { return c.conn.Context() }
func (c Conn[P]) Method() string            { return c.conn.Method() }
func (c Conn[P]) OriginalURL() string       { return c.conn.OriginalURL() }
func (c Conn[P]) Header(name string) string { return c.conn.Header(name) }
func (c Conn[P]) Params() map[string]string { return c.conn.Params() }
func (c Conn[P]) Query() url.Values         { return c.conn.Query() }
func (c Conn[P]) Body() any                 { return c.conn.Body() }

// Check panics with *ProtocolViolation unless the handle is valid.
// Steps that reach the adapter through Raw call it before touching
// the connection.
func (c Conn[P]) Check(op string) { c.check(op) }

func (c Conn[P]) check(op string) {
	if c.state == nil {
		panic(&ProtocolViolation{Op: op, Handle: TagOf[P]()})
	}
	if c.state.epoch != c.epoch || c.state.phase != TagOf[P]() {
		panic(&ProtocolViolation{Op: op, Handle: TagOf[P](), Current: c.state.phase})
	}
}

func advance[P, Q Phase](c Conn[P]) Conn[Q] {
	c.state.epoch++
	c.state.phase = TagOf[Q]()
	return Conn[Q]{conn: c.conn, state: c.state, epoch: c.state.epoch}
}

// SetStatus writes the status code.
func SetStatus(c Conn[StatusOpen], code int) Conn[HeadersOpen] {
	c.check("SetStatus")
	c.conn.SetStatus(code)
	return advance[StatusOpen, HeadersOpen](c)
}

// SetHeader adds a header.  The returned handle and c are both
// still usable.
func SetHeader(c Conn[HeadersOpen], name, value string) Conn[HeadersOpen] {
	c.check("SetHeader")
	c.conn.SetHeader(name, value)
	return c
}

// SetCookie adds a Set-Cookie header.
func SetCookie(c Conn[HeadersOpen], name, value string, options CookieOptions) Conn[HeadersOpen] {
	c.check("SetCookie")
	c.conn.SetCookie(name, value, options)
	return c
}

// UnsetCookie adds a Set-Cookie header that expires the cookie.
func UnsetCookie(c Conn[HeadersOpen], name string, options CookieOptions) Conn[HeadersOpen] {
	c.check("UnsetCookie")
	c.conn.ClearCookie(name, options)
	return c
}

// EndHeaders ends the header section.  Nothing is sent to the
// adapter; only the phase changes.
func EndHeaders(c Conn[HeadersOpen]) Conn[BodyOpen] {
	c.check("EndHeaders")
	return advance[HeadersOpen, BodyOpen](c)
}

// SetBody sends the whole body and ends the response.
func SetBody(c Conn[BodyOpen], body []byte) Conn[ResponseEnded] {
	c.check("SetBody")
	c.conn.SetBody(body)
	return advance[BodyOpen, ResponseEnded](c)
}

// SetStream copies r into the response and ends it.
func SetStream(c Conn[BodyOpen], r io.Reader) Conn[ResponseEnded] {
	c.check("SetStream")
	c.conn.PipeStream(r)
	return advance[BodyOpen, ResponseEnded](c)
}

// EndResponse ends the response without a body.
func EndResponse(c Conn[BodyOpen]) Conn[ResponseEnded] {
	c.check("EndResponse")
	c.conn.EndResponse()
	return advance[BodyOpen, ResponseEnded](c)
}
