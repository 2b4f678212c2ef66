package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/GregMSThompson/gift-budget/internal/handlers"
	"github.com/GregMSThompson/gift-budget/internal/middleware"
)

func NewRouter(deps *handlers.Deps, auth *middleware.Middleware) chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.NewLoggerMiddleware(deps.Log).LoggerMiddleware)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Metrics)

	ush := handlers.NewUserHandlers(deps)
	bh := handlers.NewBudgetHandlers(deps)
	rh := handlers.NewRecipientHandlers(deps)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Handle("/metrics", promhttp.Handler())
	r.Mount("/auth", ush.AuthRoutes())

	r.Group(func(r chi.Router) {
		r.Use(auth.FirebaseAuth)
		r.Mount("/session", bh.SessionRoutes())
		r.Mount("/profile", bh.ProfileRoutes())
		r.Get("/budget", bh.GetBudget)
		r.Mount("/recipients", rh.RecipientRoutes())
	})
	return r
}
