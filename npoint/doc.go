// Stuff

/*

Package npoint groups HTTP endpoints into services that are bound to
a router together.

Endpoints are usually nphase pipelines turned into handlers with
nhttp.ToHandler.  A service adds the func(http.Handler) http.Handler
middleware it was created with around each of its endpoints.

Services

A service allows a group of related endpoints to be started together.

Services come in four flavors: started or pre-registered; with Mux or
with without.

Pre-registered services do not build their endpoints until they are
Start()ed.  This allows endpoints to depend upon resources that are
only available once the service is started.  It also allows endpoints
to be registered in init() functions next to the definition of the
endpoint.  RegisterEndpointFunc takes a function that builds the
handler at start time.

Services with Mux bind through a gorilla mux.Router.  Their endpoints
accept the route modifiers of mux.Route (Methods, Headers, Host, and
so on), so several endpoints can share a path.

Panics

Registering the same path twice on a service without Mux panics, as
does starting a service twice.

*/
package npoint
