package nphase

import (
	"code.hybscloud.com/kont"
)

// Result is what a successful Middleware produces: a value and the
// handle for the phase the middleware finished in.
type Result[O Phase, A any] struct {
	Value A
	Conn  Conn[O]
}

// Middleware is a deferred step over a connection.  It starts in phase
// I, finishes in phase O, and either fails with an E or produces an A.
// A Middleware holds no state of its own: it can be run any number of
// times against different connections.
type Middleware[I, O Phase, E, A any] struct {
	run func(Conn[I]) kont.Either[E, Result[O, A]]
}

// FromFunc wraps a function as a Middleware.  Use Done and Abort to
// build the return value.
func FromFunc[I, O Phase, E, A any](f func(Conn[I]) kont.Either[E, Result[O, A]]) Middleware[I, O, E, A] {
	return Middleware[I, O, E, A]{run: f}
}

// Done is the successful outcome of a step.
func Done[E any, O Phase, A any](value A, c Conn[O]) kont.Either[E, Result[O, A]] {
	return kont.Right[E, Result[O, A]](Result[O, A]{Value: value, Conn: c})
}

// Abort is the failed outcome of a step.
func Abort[O Phase, A, E any](err E) kont.Either[E, Result[O, A]] {
	return kont.Left[E, Result[O, A]](err)
}

// Run executes the middleware against c.  Exactly one of the two sides
// of the returned Either is set.  A single connection must only be
// driven by one Run at a time.
func (m Middleware[I, O, E, A]) Run(c Conn[I]) kont.Either[E, Result[O, A]] {
	if m.run == nil {
		panic("nphase: Run called on a zero Middleware")
	}
	return m.run(c)
}

// Eval runs m and keeps only the value.
func Eval[I, O Phase, E, A any](m Middleware[I, O, E, A], c Conn[I]) kont.Either[E, A] {
	r := m.Run(c)
	if e, ok := r.GetLeft(); ok {
		return kont.Left[E, A](e)
	}
	out, _ := r.GetRight()
	return kont.Right[E, A](out.Value)
}

// Exec runs m and keeps only the final connection handle.
func Exec[I, O Phase, E, A any](m Middleware[I, O, E, A], c Conn[I]) kont.Either[E, Conn[O]] {
	r := m.Run(c)
	if e, ok := r.GetLeft(); ok {
		return kont.Left[E, Conn[O]](e)
	}
	out, _ := r.GetRight()
	return kont.Right[E, Conn[O]](out.Conn)
}

// Succeed produces a without touching the connection.
func Succeed[P Phase, E, A any](a A) Middleware[P, P, E, A] {
	return Middleware[P, P, E, A]{run: func(c Conn[P]) kont.Either[E, Result[P, A]] {
		return Done[E](a, c)
	}}
}

// Fail always fails with err.
func Fail[P Phase, E, A any](err E) Middleware[P, P, E, A] {
	return Middleware[P, P, E, A]{run: func(Conn[P]) kont.Either[E, Result[P, A]] {
		return Abort[P, A](err)
	}}
}

// FromEither lifts an already computed outcome.
func FromEither[P Phase, E, A any](e kont.Either[E, A]) Middleware[P, P, E, A] {
	return Middleware[P, P, E, A]{run: func(c Conn[P]) kont.Either[E, Result[P, A]] {
		if err, ok := e.GetLeft(); ok {
			return Abort[P, A](err)
		}
		a, _ := e.GetRight()
		return Done[E](a, c)
	}}
}

// FromPredicate succeeds with a when pred(a) holds and fails with
// onFalse(a) otherwise.
func FromPredicate[P Phase, E, A any](a A, pred func(A) bool, onFalse func(A) E) Middleware[P, P, E, A] {
	return Middleware[P, P, E, A]{run: func(c Conn[P]) kont.Either[E, Result[P, A]] {
		if !pred(a) {
			return Abort[P, A](onFalse(a))
		}
		return Done[E](a, c)
	}}
}

// TryCatch calls f each time the middleware runs.  A non-nil error is
// converted with onError.  f receives the request context.
func TryCatch[P Phase, E, A any](f func(Request) (A, error), onError func(error) E) Middleware[P, P, E, A] {
	return Middleware[P, P, E, A]{run: func(c Conn[P]) kont.Either[E, Result[P, A]] {
		a, err := f(c.Request())
		if err != nil {
			return Abort[P, A](onError(err))
		}
		return Done[E](a, c)
	}}
}

// Gets reads something from the request.  It never fails and never
// writes.
func Gets[P Phase, E, A any](f func(Request) A) Middleware[P, P, E, A] {
	return Middleware[P, P, E, A]{run: func(c Conn[P]) kont.Either[E, Result[P, A]] {
		return Done[E](f(c.Request()), c)
	}}
}
