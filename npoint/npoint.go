package npoint

import (
	"net/http"
	"sync"

	"github.com/muir/nphase/nhttp"
)

// Middleware wraps every endpoint of a service.  It is the
// func(http.Handler) http.Handler kind; the first one given to a
// service is the outermost.
type Middleware = func(http.Handler) http.Handler

// Service allows a group of related endpoints to be started
// together. This form of service represents an already-started
// service that binds its enpoints using a simple binder like
// http.ServeMux.HandleFunc().
type Service struct {
	Name       string
	endpoints  map[string]*EndpointRegistration
	middleware Middleware
	binder     EndpointBinder
	lock       sync.Mutex
}

// ServiceRegistration allows a group of related endpoints to be started
// together. This form of service represents pre-registered service
// service that binds its enpoints using a simple binder like
// http.ServeMux.HandleFunc().  None of the endpoints associated
// with this service will be built or start listening until Start()
// is called.
type ServiceRegistration struct {
	Name       string
	started    *Service
	endpoints  map[string]*EndpointRegistration
	middleware Middleware
	lock       sync.Mutex
}

// EndpointRegistration holds endpoint defintions for services
// that will be started w/o gorilla mux.
type EndpointRegistration struct {
	finalFunc http.HandlerFunc
	build     func() http.Handler
	path      string
	bound     bool
}

// PreregisterService creates a service that must be Start()ed later.
//
// The middleware wraps every endpoint registered with this service.
//
// PreregsteredServices do not build or bind their handlers until
// they are Start()ed.
//
// The name of the service is just used for error messages and is otherwise ignored.
func PreregisterService(name string, mw ...Middleware) *ServiceRegistration {
	return &ServiceRegistration{
		Name:       name,
		endpoints:  make(map[string]*EndpointRegistration),
		middleware: nhttp.Combine(mw...),
	}
}

// RegisterService creates a service and starts it immediately.
func RegisterService(name string, binder EndpointBinder, mw ...Middleware) *Service {
	sr := PreregisterService(name, mw...)
	return sr.Start(binder)
}

// EndpointBinder is the signature of the binding function
// used to start a ServiceRegistration.
type EndpointBinder func(path string, fn http.HandlerFunc)

// Start builds all endpoints pre-registered with this service and
// binds them.  Start() may only be called once.
func (s *ServiceRegistration) Start(binder EndpointBinder) *Service {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.started != nil {
		panic("duplicate call to Start()")
	}
	for path, endpoint := range s.endpoints {
		endpoint.start(path, s.middleware, binder)
	}
	svc := &Service{
		Name:       s.Name,
		endpoints:  s.endpoints,
		middleware: s.middleware,
		binder:     binder,
	}
	s.started = svc
	return svc
}

func (r *EndpointRegistration) init(mw Middleware) {
	if !r.bound {
		r.finalFunc = mw(r.build()).ServeHTTP
		r.bound = true
	}
}

func (r *EndpointRegistration) start(path string, mw Middleware, binder EndpointBinder) {
	r.path = path
	r.init(mw)
	binder(path, r.finalFunc)
}

// CreateEndpoint wraps h with mw.  This bypasses Service and
// ServiceRegistration.
func CreateEndpoint(h http.Handler, mw ...Middleware) http.HandlerFunc {
	if h == nil {
		panic("a handler must be provided")
	}
	return nhttp.Combine(mw...)(h).ServeHTTP
}

func constant(h http.Handler) func() http.Handler {
	if h == nil {
		panic("a handler must be provided")
	}
	return func() http.Handler { return h }
}

// RegisterEndpoint pre-registers an endpoint.  Usually h comes from
// nhttp.ToHandler.
//
// The return value does not need to be retained -- it is also remembered
// in the ServiceRegistration.
//
// If the service has already been started, the endpoint will be
// started immediately.
func (s *ServiceRegistration) RegisterEndpoint(path string, h http.Handler) *EndpointRegistration {
	return s.RegisterEndpointFunc(path, constant(h))
}

// RegisterEndpointFunc pre-registers an endpoint whose handler is
// built by build when the service starts.  This lets endpoints be
// registered in init() functions before what they depend upon
// exists.
func (s *ServiceRegistration) RegisterEndpointFunc(path string, build func() http.Handler) *EndpointRegistration {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.endpoints[path] != nil {
		panic("endpoint path already registered")
	}
	r := &EndpointRegistration{
		path:  path,
		build: build,
	}
	s.endpoints[path] = r
	if s.started != nil {
		r.start(path, s.middleware, s.started.binder)
	}
	return r
}

// RegisterEndpoint registers and immedately starts an endpoint.
//
// The return value does not need to be retained -- it is also remembered
// in the Service.
func (s *Service) RegisterEndpoint(path string, h http.Handler) *EndpointRegistration {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.endpoints[path] != nil {
		panic("endpoint path already registered")
	}
	r := &EndpointRegistration{
		path:  path,
		build: constant(h),
	}
	s.endpoints[path] = r
	r.start(path, s.middleware, s.binder)
	return r
}
