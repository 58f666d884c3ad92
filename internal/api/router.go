package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/splitledger/splitledger/internal/auth"
	"github.com/splitledger/splitledger/pkg/metrics"
)

// NewRouter creates the router with all routes configured. Everything under
// /api requires a bearer token; /healthz and /metrics are open.
func NewRouter(h *Handler, jwtManager *auth.JWTManager) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
	}))

	r.Get("/healthz", h.Healthz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(RequireAuth(jwtManager))

		r.Post("/auth/stepup", h.StepUp)

		r.Route("/groups/{groupID}", func(r chi.Router) {
			r.Get("/balances", h.GetBalances)
			r.Get("/debts", h.GetSimplifiedDebts)

			r.Route("/expenses", func(r chi.Router) {
				r.Get("/", h.ListExpenses)
				r.Post("/", h.AddExpense)
				r.Post("/{expenseID}/void", h.VoidExpense)
			})

			r.Route("/settlements", func(r chi.Router) {
				r.Get("/", h.ListSettlements)
				r.Post("/", h.ProposeSettlement)
			})
		})

		r.Route("/settlements/{settlementID}", func(r chi.Router) {
			r.Post("/confirm", h.ConfirmSettlement)
			r.Post("/reject", h.RejectSettlement)
		})
	})

	return r
}
