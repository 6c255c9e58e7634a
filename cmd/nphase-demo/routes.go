package main

import (
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"code.hybscloud.com/kont"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/muir/nphase"
	"github.com/muir/nphase/nhttp"
	"github.com/muir/nphase/npoint"
	"github.com/muir/nphase/nvelope"
)

type user struct {
	ID   int    `json:"id"   yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

type newUser struct {
	Name string `json:"name" yaml:"name"`
}

type userPath struct {
	ID int `nvelope:"path,name=id"`
}

type directory struct {
	mu    sync.RWMutex
	users map[int]user
	next  int
}

func newDirectory() *directory {
	return &directory{users: map[int]user{}, next: 1}
}

func (d *directory) get(id int) kont.Either[error, user] {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.users[id]
	if !ok {
		return kont.Left[error, user](nvelope.NotFound(errors.Errorf("no user %d", id)))
	}
	return kont.Right[error](u)
}

func (d *directory) add(nu newUser) kont.Either[error, user] {
	if strings.TrimSpace(nu.Name) == "" {
		return kont.Left[error, user](nvelope.BadRequest(errors.New("name is required")))
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	u := user{ID: d.next, Name: nu.Name}
	d.users[u.ID] = u
	d.next++
	return kont.Right[error](u)
}

func (d *directory) list() []user {
	d.mu.RLock()
	defer d.mu.RUnlock()
	all := make([]user, 0, len(d.users))
	for _, u := range d.users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}

// requireAPIKey rejects requests without one of keys in X-API-Key.
// With no keys configured every request passes.
func requireAPIKey(keys []string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(keys))
	for _, k := range keys {
		allowed[k] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(allowed) != 0 && !allowed[r.Header.Get("X-API-Key")] {
				http.Error(w, "missing or unknown API key", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func accessLog(log *zap.Logger) npoint.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.Debug("request",
				zap.String("method", r.Method),
				zap.String("uri", r.URL.RequestURI()),
				zap.Duration("elapsed", time.Since(start)))
		})
	}
}

func clientKey(r nphase.Request) string {
	if k := r.Header("X-API-Key"); k != "" {
		return k
	}
	return "anonymous"
}

func rejection(r *nhttp.Rejected) error {
	return nvelope.ReturnCode(r, r.Status)
}

type (
	open  = nphase.StatusOpen
	ended = nphase.ResponseEnded
)

// routes builds the demo API on a fresh router.
func routes(cfg Config, log *zap.Logger, reg *prometheus.Registry) (*mux.Router, error) {
	metrics, err := nhttp.NewMetrics(reg)
	if err != nil {
		return nil, err
	}
	nlog := nvelope.LoggerFromZap(log)
	users := newDirectory()
	limits := nvelope.NewLimiterPool(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	encoder := nvelope.EncodeJSON.With(nvelope.WithEncoderLogger(nlog))
	byID := nvelope.MustRequestDecoder[userPath]()

	handler := func(name string, m nphase.Middleware[open, ended, error, struct{}]) http.Handler {
		return nhttp.ToHandler(nvelope.CatchPanic(m, nlog),
			nhttp.WithName(name),
			nhttp.WithLogger(nlog),
			nhttp.WithMetrics(metrics))
	}

	router := mux.NewRouter()
	svc := npoint.RegisterServiceWithMux("demo", router, accessLog(log))

	svc.RegisterEndpoint("/hello/{name}", handler("hello",
		nphase.IChain(nphase.DecodeParam[open]("name", nvelope.NonEmpty("name")),
			func(name string) nphase.Middleware[open, ended, error, struct{}] {
				return nphase.Then(nphase.Status[error](http.StatusOK),
					nphase.Then(nphase.ContentType[error](nphase.TextPlain),
						nphase.Then(nphase.CloseHeaders[error](), nphase.Send[error]("hello "+name))))
			}))).Methods(http.MethodGet)

	svc.RegisterEndpoint("/users", handler("list-users",
		nvelope.Respond(encoder, nphase.Then(
			nvelope.RateLimitBy[open](limits, clientKey),
			nphase.Gets[open, error](func(nphase.Request) []user { return users.list() }))))).
		Methods(http.MethodGet)

	svc.RegisterEndpoint("/users/{id}", handler("get-user",
		nvelope.Respond(encoder, nphase.Then(
			nvelope.RateLimitBy[open](limits, clientKey),
			nphase.Chain(nvelope.Decode[open](byID), func(p userPath) nphase.Middleware[open, open, error, user] {
				return nphase.FromEither[open](users.get(p.ID))
			}))))).
		Methods(http.MethodGet)

	svc.RegisterEndpoint("/users", handler("add-user",
		nvelope.Respond(encoder, nphase.Then(
			nhttp.FromHandler[open](requireAPIKey(cfg.APIKeys), nhttp.Request, rejection),
			nphase.ChainEitherK(nphase.DecodeBody[open](nvelope.JSONBody[newUser]), users.add))))).
		Methods(http.MethodPost)

	svc.RegisterEndpoint("/old-hello", handler("old-hello",
		nphase.Then(nphase.Redirect[error]("/hello/world"),
			nphase.Then(nphase.CloseHeaders[error](), nphase.End[error]())))).
		Methods(http.MethodGet)

	svc.RegisterEndpoint("/logout", handler("logout",
		nphase.Then(nphase.Status[error](http.StatusNoContent),
			nphase.Then(nphase.ClearCookie[error]("session", nphase.CookieOptions{Path: "/"}),
				nphase.Then(nphase.CloseHeaders[error](), nphase.End[error]()))))).
		Methods(http.MethodPost)

	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return router, nil
}
