package cashcards_http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"cashcards/internal/app/cashcards"
	"cashcards/internal/auth"
)

// ReadinessCheck reports whether the storage backend can serve requests.
type ReadinessCheck func(ctx context.Context) error

func RegisterRoutes(r chi.Router, s cashcards.CashCardService, provider auth.IdentityProvider, ownerRole string, ready ReadinessCheck, l *zap.Logger) {
	handler := NewCashCardHandler(s, l.With(zap.String("component", "CashCardHTTPHandler")))

	r.Route("/health", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("Cash card service is healthy!"))
		})
		r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := ready(ctx); err != nil {
				l.Warn("Readiness check failed", zap.Error(err))
				http.Error(w, "storage not ready", http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
		})
	})

	r.Route("/cashcards", func(r chi.Router) {
		r.Use(auth.BasicAuth(provider, ownerRole, l.With(zap.String("component", "BasicAuth"))))

		r.Post("/", handler.CreateCashCard)
		r.Get("/", handler.ListCashCards)
		r.Get("/{id}", handler.GetCashCard)
		r.Put("/{id}", handler.UpdateCashCard)
		r.Delete("/{id}", handler.DeleteCashCard)
	})
}
