package npoint

import (
	"net/http"
	"sync"

	"github.com/gorilla/mux"

	"github.com/muir/nphase/nhttp"
)

// ServiceWithMux allows a group of related endpoints to be started
// together. This form of service represents an already-started
// service that binds its endpoints using gorilla
// mux.Router.HandleFunc.
type ServiceWithMux struct {
	Name       string
	endpoints  map[string][]*EndpointRegistrationWithMux
	middleware Middleware
	binder     endpointBinderWithMux
	lock       sync.Mutex
}

// ServiceRegistrationWithMux allows a group of related endpoints to be started
// together. This form of service represents pre-registered service
// service that binds its endpoints using gorilla
// mux.Router.HandleFunc.  None of the endpoints associated
// with this service will be built or start listening until Start()
// is called.
type ServiceRegistrationWithMux struct {
	Name       string
	started    *ServiceWithMux
	endpoints  map[string][]*EndpointRegistrationWithMux
	middleware Middleware
	lock       sync.Mutex
}

// EndpointRegistrationWithMux holds endpoint definitions for
// services that will be Start()ed with gorilla mux.  Most of
// the gorilla mux methods can be used with these endpoint
// definitions.
type EndpointRegistrationWithMux struct {
	EndpointRegistration
	muxroutes []func(*mux.Route) *mux.Route
	route     *mux.Route
	err       error
}

type endpointBinderWithMux func(string, func(http.ResponseWriter, *http.Request)) *mux.Route

// PreregisterServiceWithMux creates a service that must be Start()ed later.
//
// The middleware wraps every endpoint registered with this service.
// Several endpoints may share a path when they are told apart by
// route modifiers such as Methods.
//
// The name of the service is just used for error messages and is otherwise ignored.
func PreregisterServiceWithMux(name string, mw ...Middleware) *ServiceRegistrationWithMux {
	return &ServiceRegistrationWithMux{
		Name:       name,
		endpoints:  make(map[string][]*EndpointRegistrationWithMux),
		middleware: nhttp.Combine(mw...),
	}
}

// RegisterServiceWithMux creates a service and starts it immediately.
func RegisterServiceWithMux(name string, router *mux.Router, mw ...Middleware) *ServiceWithMux {
	sr := PreregisterServiceWithMux(name, mw...)
	return sr.Start(router)
}

// Start builds the endpoints of this Service and then registers all the
// endpoint handlers to the router.   Start() should be called at most once.
func (s *ServiceRegistrationWithMux) Start(router *mux.Router) *ServiceWithMux {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.started != nil {
		panic("duplicate call to Start()")
	}
	for path, el := range s.endpoints {
		for _, endpoint := range el {
			endpoint.start(path, s.middleware, router.HandleFunc)
		}
	}
	svc := &ServiceWithMux{
		Name:       s.Name,
		endpoints:  s.endpoints,
		middleware: s.middleware,
		binder:     router.HandleFunc,
	}
	s.started = svc
	return svc
}

// Start an endpoint: builds the endpoint and binds it to the path.
// If called more than once, subsequent calls to
// EndpointRegistrationWithMux methods that act on the route will
// only act on the last route bound.
func (r *EndpointRegistrationWithMux) start(
	path string,
	mw Middleware,
	binder endpointBinderWithMux,
) *mux.Route {
	r.init(mw)
	r.path = path
	r.route = binder(path, r.finalFunc)
	for _, mod := range r.muxroutes {
		r.route = mod(r.route)
	}
	r.err = r.route.GetError()
	return r.route
}

// RegisterEndpoint pre-registers an endpoint.  Usually h comes from
// nhttp.ToHandler.
//
// The return value can be used to add mux.Route-like modifiers.
// They will not take effect until the service is started.
//
// If the service has already been started, the endpoint will be
// started immediately.
func (s *ServiceRegistrationWithMux) RegisterEndpoint(path string, h http.Handler) *EndpointRegistrationWithMux {
	return s.RegisterEndpointFunc(path, constant(h))
}

// RegisterEndpointFunc pre-registers an endpoint whose handler is
// built by build when the service starts.
func (s *ServiceRegistrationWithMux) RegisterEndpointFunc(path string, build func() http.Handler) *EndpointRegistrationWithMux {
	s.lock.Lock()
	defer s.lock.Unlock()
	wmux := &EndpointRegistrationWithMux{
		EndpointRegistration: EndpointRegistration{
			path:  path,
			build: build,
		},
		muxroutes: make([]func(*mux.Route) *mux.Route, 0),
	}
	s.endpoints[path] = append(s.endpoints[path], wmux)
	if s.started != nil {
		wmux.start(path, s.middleware, s.started.binder)
	}
	return wmux
}

// RegisterEndpoint registers and immediately starts an endpoint.
func (s *ServiceWithMux) RegisterEndpoint(path string, h http.Handler) *mux.Route {
	s.lock.Lock()
	defer s.lock.Unlock()
	wmux := &EndpointRegistrationWithMux{
		EndpointRegistration: EndpointRegistration{
			path:  path,
			build: constant(h),
		},
		muxroutes: make([]func(*mux.Route) *mux.Route, 0),
	}
	s.endpoints[path] = append(s.endpoints[path], wmux)
	return wmux.start(path, s.middleware, s.binder)
}
