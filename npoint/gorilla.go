package npoint

import (
	"net/url"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

// The route modifiers below are recorded when called and applied to
// the *mux.Route when the endpoint is started.

func (r *EndpointRegistrationWithMux) add(f func(m *mux.Route) *mux.Route) *EndpointRegistrationWithMux {
	r.muxroutes = append(r.muxroutes, f)
	if r.route != nil {
		r.route = f(r.route)
		r.err = r.route.GetError()
	}
	return r
}

// Route returns the *mux.Route that has been registered to this endpoint, if possible.
func (r *EndpointRegistrationWithMux) Route() (*mux.Route, error) {
	if !r.bound {
		return nil, errors.Errorf("registration is not complete for %s", r.path)
	}
	if r.route == nil {
		return nil, errors.Errorf("no *mux.Route was used to start %s", r.path)
	}
	return r.route, nil
}

func (r *EndpointRegistrationWithMux) Headers(pairs ...string) *EndpointRegistrationWithMux {
	return r.add(func(m *mux.Route) *mux.Route { return m.Headers(pairs...) })
}

func (r *EndpointRegistrationWithMux) Host(tpl string) *EndpointRegistrationWithMux {
	return r.add(func(m *mux.Route) *mux.Route { return m.Host(tpl) })
}

func (r *EndpointRegistrationWithMux) MatcherFunc(f mux.MatcherFunc) *EndpointRegistrationWithMux {
	return r.add(func(m *mux.Route) *mux.Route { return m.MatcherFunc(f) })
}

func (r *EndpointRegistrationWithMux) Methods(methods ...string) *EndpointRegistrationWithMux {
	return r.add(func(m *mux.Route) *mux.Route { return m.Methods(methods...) })
}

func (r *EndpointRegistrationWithMux) Name(name string) *EndpointRegistrationWithMux {
	return r.add(func(m *mux.Route) *mux.Route { return m.Name(name) })
}

func (r *EndpointRegistrationWithMux) Queries(pairs ...string) *EndpointRegistrationWithMux {
	return r.add(func(m *mux.Route) *mux.Route { return m.Queries(pairs...) })
}

func (r *EndpointRegistrationWithMux) Schemes(schemes ...string) *EndpointRegistrationWithMux {
	return r.add(func(m *mux.Route) *mux.Route { return m.Schemes(schemes...) })
}

// GetError returns the route's error, for example from a bad
// template.
func (r *EndpointRegistrationWithMux) GetError() error {
	return r.err
}

// URL builds a URL for the started route.
func (r *EndpointRegistrationWithMux) URL(pairs ...string) (*url.URL, error) {
	if r.route == nil {
		return nil, errors.Errorf("%s has not been started", r.path)
	}
	return r.route.URL(pairs...)
}
