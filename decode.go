package nphase

import (
	"net/url"

	"code.hybscloud.com/kont"
)

// Decoding steps read one part of the request, hand it to a decoder,
// and never write to the connection.  They work in any phase.  A
// failed decode is returned unchanged in the error channel.

// DecodeParam decodes the path parameter name.  A missing parameter
// is passed to f as the empty string.
func DecodeParam[P Phase, E, A any](name string, f func(string) kont.Either[E, A]) Middleware[P, P, E, A] {
	return decodeWith[P](func(r Request) kont.Either[E, A] { return f(r.Params()[name]) })
}

// DecodeParams decodes all path parameters.
func DecodeParams[P Phase, E, A any](f func(map[string]string) kont.Either[E, A]) Middleware[P, P, E, A] {
	return decodeWith[P](func(r Request) kont.Either[E, A] { return f(r.Params()) })
}

// DecodeQuery decodes the query string.
func DecodeQuery[P Phase, E, A any](f func(url.Values) kont.Either[E, A]) Middleware[P, P, E, A] {
	return decodeWith[P](func(r Request) kont.Either[E, A] { return f(r.Query()) })
}

// DecodeBody decodes the request body.
func DecodeBody[P Phase, E, A any](f func(any) kont.Either[E, A]) Middleware[P, P, E, A] {
	return decodeWith[P](func(r Request) kont.Either[E, A] { return f(r.Body()) })
}

// DecodeMethod decodes the request method.
func DecodeMethod[P Phase, E, A any](f func(string) kont.Either[E, A]) Middleware[P, P, E, A] {
	return decodeWith[P](func(r Request) kont.Either[E, A] { return f(r.Method()) })
}

// DecodeHeader decodes the request header name.
func DecodeHeader[P Phase, E, A any](name string, f func(string) kont.Either[E, A]) Middleware[P, P, E, A] {
	return decodeWith[P](func(r Request) kont.Either[E, A] { return f(r.Header(name)) })
}

func decodeWith[P Phase, E, A any](f func(Request) kont.Either[E, A]) Middleware[P, P, E, A] {
	return Middleware[P, P, E, A]{run: func(c Conn[P]) kont.Either[E, Result[P, A]] {
		r := f(c.Request())
		if e, ok := r.GetLeft(); ok {
			return Abort[P, A](e)
		}
		a, _ := r.GetRight()
		return Done[E](a, c)
	}}
}
