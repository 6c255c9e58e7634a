package nvelope

import (
	"fmt"
	"runtime/debug"

	"code.hybscloud.com/kont"
	"github.com/pkg/errors"

	"github.com/muir/nphase"
)

// LogFlusher is used to check if a logger implements
// Flush().  This is useful as part of a panic handler.
type LogFlusher interface {
	Flush()
}

type panicError struct {
	msg   string
	r     interface{}
	stack string
}

func (err panicError) Error() string {
	return "panic: " + err.msg
}

// SetErrorOnPanic should be called as a defer.  It
// sets an error value if there is a panic.  Protocol
// violations are not errors: they are panicked again.
func SetErrorOnPanic(ep *error, log BasicLogger) {
	r := recover()
	if r == nil {
		return
	}
	if pv, ok := r.(*nphase.ProtocolViolation); ok {
		panic(pv)
	}
	pe := panicError{
		msg:   fmt.Sprint(r),
		r:     r,
		stack: string(debug.Stack()),
	}
	*ep = errors.WithStack(pe)
	log.Error("panic!", map[string]interface{}{
		"msg":   pe.msg,
		"stack": pe.stack,
	})
	if flusher, ok := log.(LogFlusher); ok {
		flusher.Flush()
	}
}

// CatchPanic wraps a step so that a panic inside it becomes a
// failure of the step.  The connection is left however the panicking
// step left it.
func CatchPanic[I, O nphase.Phase, A any](m nphase.Middleware[I, O, error, A], log BasicLogger) nphase.Middleware[I, O, error, A] {
	return nphase.FromFunc(func(c nphase.Conn[I]) (result kont.Either[error, nphase.Result[O, A]]) {
		var err error
		defer func() {
			if err != nil {
				result = nphase.Abort[O, A](err)
			}
		}()
		defer SetErrorOnPanic(&err, log)
		return m.Run(c)
	})
}

// RecoverInterface returns the interface{} that recover()
// originally provided.  Or it returns nil if the
// error isn't a from a panic recovery.  This works only
// in conjunction with SetErrorOnPanic() and CatchPanic.
func RecoverInterface(err error) interface{} {
	if pe, ok := isPanicError(err); ok {
		return pe.r
	}
	return nil
}

// RecoverStack returns the stack from when recover()
// originally caught the panic.  Or it returns "" if the
// error isn't a from a panic recovery.  This works only
// in conjunction with SetErrorOnPanic() and CatchPanic.
func RecoverStack(err error) string {
	if pe, ok := isPanicError(err); ok {
		return pe.stack
	}
	return ""
}

func isPanicError(err error) (panicError, bool) {
	var pe panicError
	if errors.As(err, &pe) {
		return pe, true
	}
	return panicError{}, false
}
