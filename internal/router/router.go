package router

import (
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"cashcards/internal/app/cashcards"
	"cashcards/internal/auth"
	"cashcards/internal/config"
	cashcards_http "cashcards/internal/handler/http/cashcards"
	http_middleware "cashcards/internal/handler/http/middleware"
	"cashcards/internal/infrastructure/metrics"
)

type Dependencies struct {
	Service  cashcards.CashCardService
	Provider auth.IdentityProvider
	Ready    cashcards_http.ReadinessCheck
	Metrics  *metrics.Recorder
	Logger   *zap.Logger
}

func NewRouter(cfg *config.Config, deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(http_middleware.AccessLog(deps.Logger.With(zap.String("component", "AccessLog"))))
	r.Use(deps.Metrics.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.HTTPRequestTimeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Location"},
		AllowCredentials: !allowsAnyOrigin(cfg.CORSAllowedOrigins),
		MaxAge:           300,
	}))

	r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())

	cashcards_http.RegisterRoutes(r, deps.Service, deps.Provider, cfg.OwnerRole, deps.Ready, deps.Logger)

	return r
}

// Browsers refuse credentials on a wildcard origin, so "*" turns them off.
func allowsAnyOrigin(origins []string) bool {
	return slices.Contains(origins, "*")
}
