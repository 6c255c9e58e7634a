package nfast

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/valyala/fasthttp"

	"github.com/muir/nphase"
	"github.com/muir/nphase/nvelope"
)

// Connection is an nphase.Connection over fasthttp.  fasthttp sends
// nothing until the handler returns, so every write can be taken
// back until then.
type Connection struct {
	ctx    *fasthttp.RequestCtx
	log    nvelope.BasicLogger
	query  url.Values
	params map[string]string
	body   []byte
	marks  []*fasthttp.ResponseHeader
}

var (
	_ nphase.Connection = &Connection{}
	_ nphase.Rewinder   = &Connection{}
)

// NewConnection wraps one request.  Path parameters are the string
// user values of ctx, which is where fasthttp routers put them.
func NewConnection(ctx *fasthttp.RequestCtx) *Connection {
	return &Connection{
		ctx: ctx,
		log: nvelope.NoLogger(),
	}
}

// RequestCtx is the wrapped fasthttp context.
func (c *Connection) RequestCtx() *fasthttp.RequestCtx { return c.ctx }

func (c *Connection) Context() context.Context  { return c.ctx }
func (c *Connection) Method() string            { return string(c.ctx.Method()) }
func (c *Connection) OriginalURL() string       { return string(c.ctx.RequestURI()) }
func (c *Connection) Header(name string) string { return string(c.ctx.Request.Header.Peek(name)) }

func (c *Connection) Params() map[string]string {
	if c.params == nil {
		c.params = make(map[string]string)
		c.ctx.VisitUserValues(func(k []byte, v interface{}) {
			if s, ok := v.(string); ok {
				c.params[string(k)] = s
			}
		})
	}
	return c.params
}

func (c *Connection) Query() url.Values {
	if c.query == nil {
		c.query = url.Values{}
		c.ctx.QueryArgs().VisitAll(func(k, v []byte) {
			c.query.Add(string(k), string(v))
		})
	}
	return c.query
}

// Body is a copy of the request body as []byte.
func (c *Connection) Body() any {
	if c.body == nil {
		c.body = append([]byte{}, c.ctx.PostBody()...)
	}
	return c.body
}

func (c *Connection) SetStatus(code int) {
	c.ctx.SetStatusCode(code)
}

func (c *Connection) SetHeader(name, value string) {
	c.ctx.Response.Header.Add(name, value)
}

func (c *Connection) SetCookie(name, value string, options nphase.CookieOptions) {
	c.setCookie(options.Cookie(name, value))
}

func (c *Connection) ClearCookie(name string, options nphase.CookieOptions) {
	c.setCookie(options.Expired(name))
}

func (c *Connection) setCookie(hc *http.Cookie) {
	cookie := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(cookie)
	cookie.SetKey(hc.Name)
	cookie.SetValue(hc.Value)
	cookie.SetPath(hc.Path)
	cookie.SetDomain(hc.Domain)
	switch {
	case hc.MaxAge < 0:
		cookie.SetExpire(fasthttp.CookieExpireDelete)
	case hc.MaxAge > 0:
		cookie.SetMaxAge(hc.MaxAge)
	}
	if !hc.Expires.IsZero() && hc.MaxAge >= 0 {
		cookie.SetExpire(hc.Expires)
	}
	cookie.SetHTTPOnly(hc.HttpOnly)
	cookie.SetSecure(hc.Secure)
	cookie.SetSameSite(sameSite(hc.SameSite))
	c.ctx.Response.Header.SetCookie(cookie)
}

func sameSite(s http.SameSite) fasthttp.CookieSameSite {
	switch s {
	case http.SameSiteDefaultMode:
		return fasthttp.CookieSameSiteDefaultMode
	case http.SameSiteLaxMode:
		return fasthttp.CookieSameSiteLaxMode
	case http.SameSiteStrictMode:
		return fasthttp.CookieSameSiteStrictMode
	case http.SameSiteNoneMode:
		return fasthttp.CookieSameSiteNoneMode
	default:
		return fasthttp.CookieSameSiteDisabled
	}
}

func (c *Connection) SetBody(body []byte) {
	c.ctx.SetBody(body)
}

func (c *Connection) PipeStream(r io.Reader) {
	c.ctx.SetBodyStream(r, -1)
}

func (c *Connection) EndResponse() {}

// Mark copies the response header, status included.
func (c *Connection) Mark() int {
	h := &fasthttp.ResponseHeader{}
	c.ctx.Response.Header.CopyTo(h)
	c.marks = append(c.marks, h)
	return len(c.marks) - 1
}

// Rewind restores the response header copied by Mark.
func (c *Connection) Rewind(mark int) {
	if mark >= len(c.marks) {
		return
	}
	c.marks[mark].CopyTo(&c.ctx.Response.Header)
	c.marks = c.marks[:mark]
}
