package nphase

import (
	"code.hybscloud.com/kont"
)

// OrElse recovers from a failure of m by running f(err) against the
// same handle m started with.  The alternative must start and end in
// the same phases as m.  Writes m made before failing are not undone
// unless the adapter implements Rewinder (see nhttp).  The error type
// may change, which makes OrElse its own widening variant.
//
// c must be valid when the step starts: a stale handle panics with
// *ProtocolViolation rather than being reopened.
func OrElse[I, O Phase, E, E2, A any](m Middleware[I, O, E, A], f func(E) Middleware[I, O, E2, A]) Middleware[I, O, E2, A] {
	return Middleware[I, O, E2, A]{run: func(c Conn[I]) kont.Either[E2, Result[O, A]] {
		c.check("OrElse")
		undo := checkpoint(c)
		r := m.Run(c)
		if e, ok := r.GetLeft(); ok {
			return f(e).Run(reopen(c, undo))
		}
		out, _ := r.GetRight()
		return Done[E2](out.Value, out.Conn)
	}}
}

// Alt runs other when m fails, ignoring the error from m.  When m
// succeeds, other is never run.
func Alt[I, O Phase, E, A any](m Middleware[I, O, E, A], other Middleware[I, O, E, A]) Middleware[I, O, E, A] {
	return OrElse(m, func(E) Middleware[I, O, E, A] { return other })
}

// MapLeft transforms the error.
func MapLeft[I, O Phase, E, E2, A any](m Middleware[I, O, E, A], f func(E) E2) Middleware[I, O, E2, A] {
	return Middleware[I, O, E2, A]{run: func(c Conn[I]) kont.Either[E2, Result[O, A]] {
		r := m.Run(c)
		if e, ok := r.GetLeft(); ok {
			return Abort[O, A](f(e))
		}
		out, _ := r.GetRight()
		return Done[E2](out.Value, out.Conn)
	}}
}

// Bimap transforms the error with f and the value with g.
func Bimap[I, O Phase, E, E2, A, B any](m Middleware[I, O, E, A], f func(E) E2, g func(A) B) Middleware[I, O, E2, B] {
	return Map(MapLeft(m, f), g)
}

// FilterOrElse fails with onFalse(value) when pred does not hold for
// the value of m.
func FilterOrElse[I, O Phase, E, A any](m Middleware[I, O, E, A], pred func(A) bool, onFalse func(A) E) Middleware[I, O, E, A] {
	return IChain(m, func(a A) Middleware[O, O, E, A] {
		return FromPredicate[O](a, pred, onFalse)
	})
}

// checkpoint returns a function that drops the writes made after
// this point, if the adapter can.
func checkpoint[P Phase](c Conn[P]) func() {
	rw, ok := c.conn.(Rewinder)
	if !ok {
		return func() {}
	}
	mark := rw.Mark()
	return func() { rw.Rewind(mark) }
}

// reopen gives the recovery branch a handle for the phase the failed
// branch started in.  c was valid when the failed branch started, so
// an invalid c here means that branch moved the connection on.
// Adapters that can are asked to drop the writes of the failed
// branch; otherwise the partial writes stand.
func reopen[I Phase](c Conn[I], undo func()) Conn[I] {
	valid := c.Valid()
	if !valid && c.state.phase == TagResponseEnded {
		// a second response would be sent
		panic(&ProtocolViolation{Op: "recover", Handle: TagOf[I](), Current: c.state.phase})
	}
	undo()
	if valid {
		return c
	}
	c.state.epoch++
	c.state.phase = TagOf[I]()
	return Conn[I]{conn: c.conn, state: c.state, epoch: c.state.epoch}
}
