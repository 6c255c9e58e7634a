package nserve

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// Callback is invoked when its hook is run.  A start callback can
// register the matching stop callback with app.On.
type Callback func(ctx context.Context, app *App) error

// App provides hooks to start and stop libraries that are used by an app.  It
// expected that an App corresponds to a service and that libraries that the
// service uses need to be started & stopped.
type App struct {
	Name    string
	lock    sync.Mutex // held when adding hooks
	runLock sync.Mutex // held when running hooks
	hooks   map[hookID][]Callback
	ctx     context.Context
}

// NewApp creates an App.  Its context is canceled when the Shutdown
// hook runs.
func NewApp(name string) *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		Name:  name,
		hooks: make(map[hookID][]Callback),
		ctx:   ctx,
	}
	app.On(Shutdown, func(context.Context, *App) error {
		cancel()
		return nil
	})
	return app
}

// Context is canceled once the app shuts down.
func (app *App) Context() context.Context { return app.ctx }

// On registers a callback to be invoked on hook invocation.  This can be used during
// callbacks, for example a start callback, can register a stop callback.
func (app *App) On(h *Hook, cb Callback) {
	app.lock.Lock()
	defer app.lock.Unlock()
	app.hooks[h.ID] = append(app.hooks[h.ID], cb)
}

// Do invokes the callbacks for a hook.  It returns only the first error reported
// unless the hook provides an error combiner.
func (app *App) Do(h *Hook) error {
	app.runLock.Lock()
	defer app.runLock.Unlock()
	return app.do(h)
}

func (app *App) do(h *Hook) error {
	ec := h.ErrorCombiner
	if ec == nil {
		ec = func(err, _ error) error { return err }
	}
	ecw := func(e1, e2 error) error {
		if e1 == nil {
			return e2
		}
		if e2 == nil {
			return e1
		}
		return ec(e1, e2)
	}
	app.lock.Lock()
	callbacks := make([]Callback, len(app.hooks[h.ID]))
	copy(callbacks, app.hooks[h.ID])
	app.lock.Unlock()
	var err error
	run := func(cb Callback) {
		e := app.call(h, cb)
		err = ecw(err, e)
	}
	if h.Order == ForwardOrder {
		for _, cb := range callbacks {
			run(cb)
			if err != nil && !h.ContinuePast {
				break
			}
		}
	} else {
		for i := len(callbacks) - 1; i >= 0; i-- {
			run(callbacks[i])
			if err != nil && !h.ContinuePast {
				break
			}
		}
	}
	if err != nil {
		for _, oe := range h.InvokeOnError {
			err = ecw(err, app.do(oe))
		}
	}
	return err
}

func (app *App) call(h *Hook, cb Callback) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("%s callback panic: %v", h, r)
		}
	}()
	return cb(app.ctx, app)
}
