package shop

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"ShadesStore/internal/auth"
	"ShadesStore/internal/cart"
	"ShadesStore/internal/catalog"
	"ShadesStore/pkg/kit"
)

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string
}

// Deps are the stores and policies behind the public API.
type Deps struct {
	Catalog catalog.Store
	Users   auth.CredentialStore
	Carts   cart.Store

	TokenTTL        time.Duration
	MaxFailedLogins int
	LoginRatePerMin int
	Clock           func() time.Time
}

const readyTimeout = 1 * time.Second

func NewHandler(deps Deps, httpDeps HTTPDeps) http.Handler {
	log := httpDeps.Log
	if log == nil {
		log = zap.NewNop()
	}

	var (
		authMetrics *auth.Metrics
		cartMetrics *cart.Metrics
	)
	if httpDeps.Registry != nil {
		authMetrics = auth.NewMetrics(httpDeps.Registry)
		cartMetrics = cart.NewMetrics(httpDeps.Registry)
	}

	opts := []auth.Option{
		auth.WithTTL(deps.TokenTTL),
		auth.WithLogger(log.Named("auth")),
		auth.WithMetrics(authMetrics),
	}
	if deps.Clock != nil {
		opts = append(opts, auth.WithClock(deps.Clock))
	}
	issuer := auth.NewIssuer(deps.Users, auth.NewThrottler(deps.MaxFailedLogins), opts...)

	authSrv := &auth.Server{Log: log, Issuer: issuer}
	if deps.LoginRatePerMin > 0 {
		authSrv.Limiter = kit.NewIPRateLimiter(deps.LoginRatePerMin, time.Minute)
	}
	catalogSrv := &catalog.Server{Store: deps.Catalog, Log: log}
	cartSrv := &cart.Server{
		Manager:  cart.NewManager(deps.Carts, deps.Catalog, cartMetrics),
		Resolver: issuer,
		Log:      log,
	}

	r := chi.NewRouter()
	setupMiddleware(r, httpDeps, log)
	setupMetrics(r, httpDeps)

	r.Get("/healthz", healthz)
	r.Get("/readyz", readyz(deps.Catalog, log))

	r.Route("/api", func(api chi.Router) {
		catalogSrv.Routes(api)
		authSrv.Routes(api)
		api.Route("/me/cart", cartSrv.Routes)
	})

	return r
}

func setupMiddleware(r *chi.Mux, deps HTTPDeps, log *zap.Logger) {
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(log))
}

func setupMetrics(r *chi.Mux, deps HTTPDeps) {
	if deps.Registry == nil {
		return
	}

	metrics := kit.NewMetrics(deps.Registry)
	r.Use(metrics.Middleware(deps.Service, kit.ChiRoutePattern))

	if !deps.MetricsEnabled {
		return
	}

	r.With(kit.MetricsAuth(deps.MetricsToken)).
		Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func readyz(store catalog.Store, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			log.Warn("readyz failed: catalog", zap.Error(err))
			kit.WriteError(w, r, http.StatusServiceUnavailable, "catalog not ready", nil)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}
