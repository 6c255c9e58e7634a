package nserve

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Server is an http.Server whose life follows an App's hooks.
type Server struct {
	srv      *http.Server
	lock     sync.Mutex
	listener net.Listener
	done     chan error
}

// AddServer starts srv on the Start hook and shuts it down, waiting
// up to timeout for open requests, on the Stop hook.  The listening
// socket is opened by the Start hook itself so that a bad address
// fails the start.
func (app *App) AddServer(srv *http.Server, timeout time.Duration) *Server {
	s := &Server{srv: srv}
	app.On(Start, func(_ context.Context, app *App) error {
		l, err := net.Listen("tcp", srv.Addr)
		if err != nil {
			return errors.Wrapf(err, "listen on %s", srv.Addr)
		}
		s.lock.Lock()
		s.listener = l
		s.done = make(chan error, 1)
		s.lock.Unlock()
		go func() {
			err := srv.Serve(l)
			if errors.Is(err, http.ErrServerClosed) {
				err = nil
			}
			s.done <- err
		}()
		app.On(Stop, func(context.Context, *App) error {
			return s.shutdown(timeout)
		})
		return nil
	})
	return s
}

// Addr is the address the server listens on, or nil before start.
func (s *Server) Addr() net.Addr {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *Server) shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "shutdown http server")
	}
	return errors.Wrap(<-s.done, "http server")
}
