/*
Package nmock provides an in-memory nphase.Connection that records
every write.  Tests run a pipeline against it and compare the
recorded actions.
*/
package nmock

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/muir/nphase"
)

// ActionType names a recorded write.
type ActionType string

const (
	SetStatus   ActionType = "setStatus"
	SetHeader   ActionType = "setHeader"
	SetCookie   ActionType = "setCookie"
	ClearCookie ActionType = "clearCookie"
	SetBody     ActionType = "setBody"
	PipeStream  ActionType = "pipeStream"
	EndResponse ActionType = "endResponse"
)

// Action is one recorded write.  Only the fields that make sense
// for its Type are set.
type Action struct {
	Type    ActionType
	Status  int
	Name    string
	Value   string
	Body    string
	Options nphase.CookieOptions
}

// Request is the incoming side of a mock connection.  Zero values are
// fine: the method defaults to GET and the context to Background.
type Request struct {
	Ctx     context.Context
	Method  string
	URL     string
	Headers map[string]string
	Params  map[string]string
	Query   url.Values
	Body    any
}

// Connection is a recording nphase.Connection.
type Connection struct {
	req     Request
	actions []Action
	ended   bool
}

var _ nphase.Connection = &Connection{}

// New creates a Connection for req.
func New(req Request) *Connection {
	if req.Ctx == nil {
		req.Ctx = context.Background()
	}
	if req.Method == "" {
		req.Method = "GET"
	}
	if req.URL == "" {
		req.URL = "/"
	}
	if req.Query == nil {
		if u, err := url.Parse(req.URL); err == nil {
			req.Query = u.Query()
		} else {
			req.Query = url.Values{}
		}
	}
	if req.Params == nil {
		req.Params = map[string]string{}
	}
	return &Connection{req: req}
}

// Actions returns the writes made so far, in order.
func (c *Connection) Actions() []Action {
	return append([]Action(nil), c.actions...)
}

// Ended reports whether the response was finished.
func (c *Connection) Ended() bool { return c.ended }

// Status returns the last status written, or 0.
func (c *Connection) Status() int {
	for i := len(c.actions) - 1; i >= 0; i-- {
		if c.actions[i].Type == SetStatus {
			return c.actions[i].Status
		}
	}
	return 0
}

// Reset forgets all recorded actions.
func (c *Connection) Reset() {
	c.actions = nil
	c.ended = false
}

// Truncate forgets the actions after the first n.
func (c *Connection) Truncate(n int) {
	if n < len(c.actions) {
		c.actions = c.actions[:n]
	}
	c.ended = false
	for _, a := range c.actions {
		switch a.Type {
		case SetBody, PipeStream, EndResponse:
			c.ended = true
		}
	}
}

func (c *Connection) Context() context.Context  { return c.req.Ctx }
func (c *Connection) Method() string            { return c.req.Method }
func (c *Connection) OriginalURL() string       { return c.req.URL }
func (c *Connection) Params() map[string]string { return c.req.Params }
func (c *Connection) Query() url.Values         { return c.req.Query }
func (c *Connection) Body() any                 { return c.req.Body }

// Header looks up a request header ignoring case.
func (c *Connection) Header(name string) string {
	for k, v := range c.req.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

func (c *Connection) SetStatus(code int) {
	c.record(Action{Type: SetStatus, Status: code})
}

func (c *Connection) SetHeader(name, value string) {
	c.record(Action{Type: SetHeader, Name: name, Value: value})
}

func (c *Connection) SetCookie(name, value string, options nphase.CookieOptions) {
	c.record(Action{Type: SetCookie, Name: name, Value: value, Options: options})
}

func (c *Connection) ClearCookie(name string, options nphase.CookieOptions) {
	c.record(Action{Type: ClearCookie, Name: name, Options: options})
}

func (c *Connection) SetBody(body []byte) {
	c.record(Action{Type: SetBody, Body: string(body)})
	c.ended = true
}

// PipeStream reads r to the end and records what it read.
func (c *Connection) PipeStream(r io.Reader) {
	b, err := io.ReadAll(r)
	if err != nil {
		b = append(b, []byte(errors.Wrap(err, "read stream").Error())...)
	}
	c.record(Action{Type: PipeStream, Body: string(b)})
	c.ended = true
}

func (c *Connection) EndResponse() {
	c.record(Action{Type: EndResponse})
	c.ended = true
}

func (c *Connection) record(a Action) {
	if c.ended {
		panic(errors.Errorf("nmock: %s after the response ended", a.Type))
	}
	c.actions = append(c.actions, a)
}
