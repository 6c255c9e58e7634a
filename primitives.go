package nphase

import (
	"encoding/json"
	"io"
	"net/http"
	"sort"

	"code.hybscloud.com/kont"
)

// Status writes the status code.
func Status[E any](code int) Middleware[StatusOpen, HeadersOpen, E, struct{}] {
	return Middleware[StatusOpen, HeadersOpen, E, struct{}]{
		run: func(c Conn[StatusOpen]) kont.Either[E, Result[HeadersOpen, struct{}]] {
			return Done[E](struct{}{}, SetStatus(c, code))
		},
	}
}

// Header adds one header.
func Header[E any](name, value string) Middleware[HeadersOpen, HeadersOpen, E, struct{}] {
	return Middleware[HeadersOpen, HeadersOpen, E, struct{}]{
		run: func(c Conn[HeadersOpen]) kont.Either[E, Result[HeadersOpen, struct{}]] {
			return Done[E](struct{}{}, SetHeader(c, name, value))
		},
	}
}

// Headers adds every header in h, names in sorted order.
func Headers[E any](h http.Header) Middleware[HeadersOpen, HeadersOpen, E, struct{}] {
	return Middleware[HeadersOpen, HeadersOpen, E, struct{}]{
		run: func(c Conn[HeadersOpen]) kont.Either[E, Result[HeadersOpen, struct{}]] {
			names := make([]string, 0, len(h))
			for name := range h {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				for _, v := range h[name] {
					c = SetHeader(c, name, v)
				}
			}
			return Done[E](struct{}{}, c)
		},
	}
}

// ContentType sets the Content-Type header.
func ContentType[E any](mediaType MediaType) Middleware[HeadersOpen, HeadersOpen, E, struct{}] {
	return Header[E]("Content-Type", string(mediaType))
}

// Cookie adds a cookie.
func Cookie[E any](name, value string, options CookieOptions) Middleware[HeadersOpen, HeadersOpen, E, struct{}] {
	return Middleware[HeadersOpen, HeadersOpen, E, struct{}]{
		run: func(c Conn[HeadersOpen]) kont.Either[E, Result[HeadersOpen, struct{}]] {
			return Done[E](struct{}{}, SetCookie(c, name, value, options))
		},
	}
}

// ClearCookie expires a cookie.
func ClearCookie[E any](name string, options CookieOptions) Middleware[HeadersOpen, HeadersOpen, E, struct{}] {
	return Middleware[HeadersOpen, HeadersOpen, E, struct{}]{
		run: func(c Conn[HeadersOpen]) kont.Either[E, Result[HeadersOpen, struct{}]] {
			return Done[E](struct{}{}, UnsetCookie(c, name, options))
		},
	}
}

// CloseHeaders ends the header section.
func CloseHeaders[E any]() Middleware[HeadersOpen, BodyOpen, E, struct{}] {
	return Middleware[HeadersOpen, BodyOpen, E, struct{}]{
		run: func(c Conn[HeadersOpen]) kont.Either[E, Result[BodyOpen, struct{}]] {
			return Done[E](struct{}{}, EndHeaders(c))
		},
	}
}

// Send writes body and ends the response.
func Send[E any](body string) Middleware[BodyOpen, ResponseEnded, E, struct{}] {
	return SendBytes[E]([]byte(body))
}

// SendBytes writes body and ends the response.
func SendBytes[E any](body []byte) Middleware[BodyOpen, ResponseEnded, E, struct{}] {
	return Middleware[BodyOpen, ResponseEnded, E, struct{}]{
		run: func(c Conn[BodyOpen]) kont.Either[E, Result[ResponseEnded, struct{}]] {
			return Done[E](struct{}{}, SetBody(c, body))
		},
	}
}

// PipeStream copies r into the response and ends it.  A reader can
// only be drained once, so unlike the other primitives the resulting
// middleware should be built per request.
func PipeStream[E any](r io.Reader) Middleware[BodyOpen, ResponseEnded, E, struct{}] {
	return Middleware[BodyOpen, ResponseEnded, E, struct{}]{
		run: func(c Conn[BodyOpen]) kont.Either[E, Result[ResponseEnded, struct{}]] {
			return Done[E](struct{}{}, SetStream(c, r))
		},
	}
}

// End ends the response without a body.
func End[E any]() Middleware[BodyOpen, ResponseEnded, E, struct{}] {
	return Middleware[BodyOpen, ResponseEnded, E, struct{}]{
		run: func(c Conn[BodyOpen]) kont.Either[E, Result[ResponseEnded, struct{}]] {
			return Done[E](struct{}{}, EndResponse(c))
		},
	}
}

// JSON marshals body, sets Content-Type to application/json, closes the
// headers and sends the encoding.  If body cannot be marshalled nothing
// is written and the middleware fails with onError(err).
func JSON[E any](body any, onError func(error) E) Middleware[HeadersOpen, ResponseEnded, E, struct{}] {
	return Middleware[HeadersOpen, ResponseEnded, E, struct{}]{
		run: func(c Conn[HeadersOpen]) kont.Either[E, Result[ResponseEnded, struct{}]] {
			enc, err := json.Marshal(body)
			if err != nil {
				return Abort[ResponseEnded, struct{}](onError(err))
			}
			return Then(
				ContentType[E](ApplicationJSON),
				Then(CloseHeaders[E](), SendBytes[E](enc)),
			).Run(c)
		},
	}
}

// Redirect writes a 302 Found status and a Location header.
func Redirect[E any](uri string) Middleware[StatusOpen, HeadersOpen, E, struct{}] {
	return Then(Status[E](http.StatusFound), Header[E]("Location", uri))
}
