package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/hearthledger/hearth/internal/http/ai"
	"github.com/hearthledger/hearth/internal/http/auth"
	"github.com/hearthledger/hearth/internal/http/bulk"
	"github.com/hearthledger/hearth/internal/http/category"
	"github.com/hearthledger/hearth/internal/http/matching"
	"github.com/hearthledger/hearth/internal/http/preview"
	"github.com/hearthledger/hearth/internal/http/transaction"
)

type Options struct {
	JWTSecret      string
	AllowedOrigins []string
}

type Handlers struct {
	Transactions *transaction.Handler
	Preview      *preview.Handler
	Categories   *category.Handler
	Matching     *matching.Handler
	Bulk         *bulk.Handler
	AI           *ai.Handler
}

func New(h Handlers, opts Options) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Group(func(r chi.Router) {
		r.Use(auth.Middleware(opts.JWTSecret))

		r.Route("/api/v1", func(r chi.Router) {
			r.Route("/transactions", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Transactions.Routes(r)
			})

			r.Route("/import", h.Preview.Routes)
			r.Route("/categories", h.Categories.Routes)

			r.Route("/matching", func(r chi.Router) {
				h.Matching.Routes(r)
			})
		})

		r.Route("/family/transactions/bulk", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Bulk.Routes(r)
		})

		r.Route("/ai", h.AI.Routes)
	})

	return router
}
