package nphase

import (
	"code.hybscloud.com/kont"
)

// Map transforms the value.  Phases and failures pass through.
func Map[I, O Phase, E, A, B any](m Middleware[I, O, E, A], f func(A) B) Middleware[I, O, E, B] {
	return Middleware[I, O, E, B]{run: func(c Conn[I]) kont.Either[E, Result[O, B]] {
		r := m.Run(c)
		if e, ok := r.GetLeft(); ok {
			return Abort[O, B](e)
		}
		out, _ := r.GetRight()
		return Done[E](f(out.Value), out.Conn)
	}}
}

// IChain sequences two middlewares: f gets the value of m and starts
// in the phase m finished in.  If m fails, f is not called.
//
//	IChain(IChain(a, f), g) == IChain(a, func(x) { return IChain(f(x), g) })
//	IChain(Succeed(x), f)   == f(x)
//	IChain(a, Succeed)      == a
func IChain[I, O, Z Phase, E, A, B any](m Middleware[I, O, E, A], f func(A) Middleware[O, Z, E, B]) Middleware[I, Z, E, B] {
	return Middleware[I, Z, E, B]{run: func(c Conn[I]) kont.Either[E, Result[Z, B]] {
		r := m.Run(c)
		if e, ok := r.GetLeft(); ok {
			return Abort[Z, B](e)
		}
		out, _ := r.GetRight()
		return f(out.Value).Run(out.Conn)
	}}
}

// IChainW is IChain for steps written against different error types.
// lift1 and lift2 move each side's error into the combined type.
func IChainW[I, O, Z Phase, E, E1, E2, A, B any](
	m Middleware[I, O, E1, A],
	f func(A) Middleware[O, Z, E2, B],
	lift1 func(E1) E,
	lift2 func(E2) E,
) Middleware[I, Z, E, B] {
	return IChain(MapLeft(m, lift1), func(a A) Middleware[O, Z, E, B] {
		return MapLeft(f(a), lift2)
	})
}

// Chain is IChain restricted to steps that stay in one phase.
func Chain[P Phase, E, A, B any](m Middleware[P, P, E, A], f func(A) Middleware[P, P, E, B]) Middleware[P, P, E, B] {
	return IChain(m, f)
}

// ChainW is Chain with error widening, see IChainW.
func ChainW[P Phase, E, E1, E2, A, B any](
	m Middleware[P, P, E1, A],
	f func(A) Middleware[P, P, E2, B],
	lift1 func(E1) E,
	lift2 func(E2) E,
) Middleware[P, P, E, B] {
	return IChainW(m, f, lift1, lift2)
}

// IChainFirst runs f for its effects and phase change but keeps the
// value of m.
func IChainFirst[I, O, Z Phase, E, A, B any](m Middleware[I, O, E, A], f func(A) Middleware[O, Z, E, B]) Middleware[I, Z, E, A] {
	return IChain(m, func(a A) Middleware[O, Z, E, A] {
		return Map(f(a), func(B) A { return a })
	})
}

// ChainFirst is IChainFirst within one phase.
func ChainFirst[P Phase, E, A, B any](m Middleware[P, P, E, A], f func(A) Middleware[P, P, E, B]) Middleware[P, P, E, A] {
	return IChainFirst(m, f)
}

// Then sequences next after m, discarding the value of m.
func Then[I, O, Z Phase, E, A, B any](m Middleware[I, O, E, A], next Middleware[O, Z, E, B]) Middleware[I, Z, E, B] {
	return IChain(m, func(A) Middleware[O, Z, E, B] { return next })
}

// ChainEitherK feeds the value of m to a plain function returning
// an outcome.
func ChainEitherK[I, O Phase, E, A, B any](m Middleware[I, O, E, A], f func(A) kont.Either[E, B]) Middleware[I, O, E, B] {
	return IChain(m, func(a A) Middleware[O, O, E, B] { return FromEither[O](f(a)) })
}

// IFlatten runs the middleware produced by m.
func IFlatten[I, O, Z Phase, E, A any](m Middleware[I, O, E, Middleware[O, Z, E, A]]) Middleware[I, Z, E, A] {
	return IChain(m, func(inner Middleware[O, Z, E, A]) Middleware[O, Z, E, A] { return inner })
}

// Flatten is IFlatten within one phase.
func Flatten[P Phase, E, A any](m Middleware[P, P, E, Middleware[P, P, E, A]]) Middleware[P, P, E, A] {
	return IFlatten(m)
}

// Ap applies the function produced by mf to the value produced by ma.
// Both operands stay in phase P so neither can observe a phase change
// made by the other.  mf runs first, then ma, against the same handle;
// if both write headers the writes of mf come first.  The first failure
// wins and ma is not run when mf fails.
func Ap[P Phase, E, A, B any](mf Middleware[P, P, E, func(A) B], ma Middleware[P, P, E, A]) Middleware[P, P, E, B] {
	return Middleware[P, P, E, B]{run: func(c Conn[P]) kont.Either[E, Result[P, B]] {
		rf := mf.Run(c)
		if e, ok := rf.GetLeft(); ok {
			return Abort[P, B](e)
		}
		f, _ := rf.GetRight()
		ra := ma.Run(c)
		if e, ok := ra.GetLeft(); ok {
			return Abort[P, B](e)
		}
		a, _ := ra.GetRight()
		return Done[E](f.Value(a.Value), c)
	}}
}

// ApFirst runs both operands like Ap and keeps the first value.
func ApFirst[P Phase, E, A, B any](ma Middleware[P, P, E, A], mb Middleware[P, P, E, B]) Middleware[P, P, E, A] {
	return Ap(Map(ma, func(a A) func(B) A { return func(B) A { return a } }), mb)
}

// ApSecond runs both operands like Ap and keeps the second value.
func ApSecond[P Phase, E, A, B any](ma Middleware[P, P, E, A], mb Middleware[P, P, E, B]) Middleware[P, P, E, B] {
	return Ap(Map(ma, func(A) func(B) B { return func(b B) B { return b } }), mb)
}
