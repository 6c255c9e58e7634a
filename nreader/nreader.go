/*
Package nreader adds a read-only environment to nphase middleware.
A ReaderMiddleware is a function from the environment to a
Middleware: configuration, a database handle, or per-request values
can be threaded through a pipeline without globals.

The W variants combine steps that were written against different
environments and error types.  A Widen value says how the combined
environment is projected onto each side and how each side's error
becomes the combined error.
*/
package nreader

import (
	"code.hybscloud.com/kont"

	"github.com/muir/nphase"
)

// ReaderMiddleware is a Middleware that needs an R to be built.
type ReaderMiddleware[R any, I, O nphase.Phase, E, A any] func(R) nphase.Middleware[I, O, E, A]

// Run supplies the environment and runs the result against c.
func Run[R any, I, O nphase.Phase, E, A any](m ReaderMiddleware[R, I, O, E, A], env R, c nphase.Conn[I]) kont.Either[E, nphase.Result[O, A]] {
	return m(env).Run(c)
}

// Ask produces the environment.
func Ask[P nphase.Phase, E, R any]() ReaderMiddleware[R, P, P, E, R] {
	return func(env R) nphase.Middleware[P, P, E, R] {
		return nphase.Succeed[P, E](env)
	}
}

// Asks produces a value computed from the environment.
func Asks[P nphase.Phase, E, R, A any](f func(R) A) ReaderMiddleware[R, P, P, E, A] {
	return func(env R) nphase.Middleware[P, P, E, A] {
		return nphase.Succeed[P, E](f(env))
	}
}

// FromMiddleware ignores the environment.
func FromMiddleware[R any, I, O nphase.Phase, E, A any](m nphase.Middleware[I, O, E, A]) ReaderMiddleware[R, I, O, E, A] {
	return func(R) nphase.Middleware[I, O, E, A] { return m }
}

// FromReader lifts a function of the environment that may fail.
func FromReader[P nphase.Phase, R, E, A any](f func(R) kont.Either[E, A]) ReaderMiddleware[R, P, P, E, A] {
	return func(env R) nphase.Middleware[P, P, E, A] {
		return nphase.FromEither[P](f(env))
	}
}

// Succeed produces a, ignoring the environment.
func Succeed[R any, P nphase.Phase, E, A any](a A) ReaderMiddleware[R, P, P, E, A] {
	return FromMiddleware[R](nphase.Succeed[P, E](a))
}

// Fail fails with err, ignoring the environment.
func Fail[R any, P nphase.Phase, E, A any](err E) ReaderMiddleware[R, P, P, E, A] {
	return FromMiddleware[R](nphase.Fail[P, E, A](err))
}

// Map transforms the value.
func Map[R any, I, O nphase.Phase, E, A, B any](m ReaderMiddleware[R, I, O, E, A], f func(A) B) ReaderMiddleware[R, I, O, E, B] {
	return func(env R) nphase.Middleware[I, O, E, B] { return nphase.Map(m(env), f) }
}

// MapLeft transforms the error.
func MapLeft[R any, I, O nphase.Phase, E, E2, A any](m ReaderMiddleware[R, I, O, E, A], f func(E) E2) ReaderMiddleware[R, I, O, E2, A] {
	return func(env R) nphase.Middleware[I, O, E2, A] { return nphase.MapLeft(m(env), f) }
}

// Bimap transforms the error with f and the value with g.
func Bimap[R any, I, O nphase.Phase, E, E2, A, B any](m ReaderMiddleware[R, I, O, E, A], f func(E) E2, g func(A) B) ReaderMiddleware[R, I, O, E2, B] {
	return func(env R) nphase.Middleware[I, O, E2, B] { return nphase.Bimap(m(env), f, g) }
}

// IChain sequences two steps.  Both get the same environment.
func IChain[R any, I, O, Z nphase.Phase, E, A, B any](m ReaderMiddleware[R, I, O, E, A], f func(A) ReaderMiddleware[R, O, Z, E, B]) ReaderMiddleware[R, I, Z, E, B] {
	return func(env R) nphase.Middleware[I, Z, E, B] {
		return nphase.IChain(m(env), func(a A) nphase.Middleware[O, Z, E, B] { return f(a)(env) })
	}
}

// Chain is IChain for steps that stay in one phase.
func Chain[R any, P nphase.Phase, E, A, B any](m ReaderMiddleware[R, P, P, E, A], f func(A) ReaderMiddleware[R, P, P, E, B]) ReaderMiddleware[R, P, P, E, B] {
	return IChain(m, f)
}

// ChainMiddlewareK continues with a plain Middleware.
func ChainMiddlewareK[R any, I, O, Z nphase.Phase, E, A, B any](m ReaderMiddleware[R, I, O, E, A], f func(A) nphase.Middleware[O, Z, E, B]) ReaderMiddleware[R, I, Z, E, B] {
	return func(env R) nphase.Middleware[I, Z, E, B] { return nphase.IChain(m(env), f) }
}

// Ap follows nphase.Ap: mf runs before ma.
func Ap[R any, P nphase.Phase, E, A, B any](mf ReaderMiddleware[R, P, P, E, func(A) B], ma ReaderMiddleware[R, P, P, E, A]) ReaderMiddleware[R, P, P, E, B] {
	return func(env R) nphase.Middleware[P, P, E, B] { return nphase.Ap(mf(env), ma(env)) }
}

// OrElse recovers from a failure with f(err), given the same environment.
func OrElse[R any, I, O nphase.Phase, E, E2, A any](m ReaderMiddleware[R, I, O, E, A], f func(E) ReaderMiddleware[R, I, O, E2, A]) ReaderMiddleware[R, I, O, E2, A] {
	return func(env R) nphase.Middleware[I, O, E2, A] {
		return nphase.OrElse(m(env), func(e E) nphase.Middleware[I, O, E2, A] { return f(e)(env) })
	}
}

// Alt runs other when m fails.
func Alt[R any, I, O nphase.Phase, E, A any](m, other ReaderMiddleware[R, I, O, E, A]) ReaderMiddleware[R, I, O, E, A] {
	return func(env R) nphase.Middleware[I, O, E, A] { return nphase.Alt(m(env), other(env)) }
}

// Local runs m with an environment derived from a wider one.
func Local[R, R2 any, I, O nphase.Phase, E, A any](m ReaderMiddleware[R, I, O, E, A], f func(R2) R) ReaderMiddleware[R2, I, O, E, A] {
	return func(env R2) nphase.Middleware[I, O, E, A] { return m(f(env)) }
}

// Widen describes how steps needing environments R1 and R2 and
// failing with E1 and E2 combine into a step that needs R and fails
// with E.  Env1 and Env2 project R onto each side; Err1 and Err2
// lift each side's errors.
type Widen[R, R1, R2, E, E1, E2 any] struct {
	Env1 func(R) R1
	Env2 func(R) R2
	Err1 func(E1) E
	Err2 func(E2) E
}

// IChainW is IChain for steps with different environments and errors.
// It behaves exactly like IChain over Local and MapLeft of each side.
func IChainW[R, R1, R2 any, I, O, Z nphase.Phase, E, E1, E2, A, B any](
	w Widen[R, R1, R2, E, E1, E2],
	m ReaderMiddleware[R1, I, O, E1, A],
	f func(A) ReaderMiddleware[R2, O, Z, E2, B],
) ReaderMiddleware[R, I, Z, E, B] {
	return func(env R) nphase.Middleware[I, Z, E, B] {
		return nphase.IChainW(m(w.Env1(env)), func(a A) nphase.Middleware[O, Z, E2, B] {
			return f(a)(w.Env2(env))
		}, w.Err1, w.Err2)
	}
}

// ChainW is IChainW for steps that stay in one phase.
func ChainW[R, R1, R2 any, P nphase.Phase, E, E1, E2, A, B any](
	w Widen[R, R1, R2, E, E1, E2],
	m ReaderMiddleware[R1, P, P, E1, A],
	f func(A) ReaderMiddleware[R2, P, P, E2, B],
) ReaderMiddleware[R, P, P, E, B] {
	return IChainW(w, m, f)
}

// OrElseW recovers a step with an alternative that needs a different
// environment.  The result fails with the alternative's error type.
func OrElseW[R, R1, R2 any, I, O nphase.Phase, E1, E2, A any](
	m ReaderMiddleware[R1, I, O, E1, A],
	f func(E1) ReaderMiddleware[R2, I, O, E2, A],
	env1 func(R) R1,
	env2 func(R) R2,
) ReaderMiddleware[R, I, O, E2, A] {
	return func(env R) nphase.Middleware[I, O, E2, A] {
		return nphase.OrElse(m(env1(env)), func(e E1) nphase.Middleware[I, O, E2, A] {
			return f(e)(env2(env))
		})
	}
}
