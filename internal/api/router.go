package api

import (
	"html/template"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/optiretina/portal/internal/analysis"
	"github.com/optiretina/portal/internal/api/handler"
	"github.com/optiretina/portal/internal/api/middleware"
	"github.com/optiretina/portal/internal/auth"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	AuthService    *auth.Service
	Tokens         *auth.TokenManager
	Analysis       *analysis.Client
	DB             handler.DBPinger
	Templates      *template.Template
	CookieSecure   bool
	MaxUploadBytes int64
	Version        string
}

// NewRouter creates and configures a Chi router with all middleware and routes.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)

	healthHandler := handler.NewHealthHandler(deps.DB, deps.Analysis, deps.Version)
	r.Get("/health", healthHandler.ServeHTTP)

	authHandler := handler.NewAuthHandler(deps.AuthService, deps.Tokens, deps.CookieSecure)
	r.Post("/auth/login", authHandler.Login)
	r.Post("/auth/logout", authHandler.Logout)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Session(deps.Tokens))
		r.Get("/auth/me", authHandler.Me)
	})

	pageHandler := handler.NewPageHandler(deps.Templates, deps.Analysis, deps.Tokens)
	r.Get("/", pageHandler.Home)
	r.Get("/login", pageHandler.Login)
	r.Group(func(r chi.Router) {
		r.Use(middleware.PageSession(deps.Tokens))
		r.Get("/dashboard", pageHandler.Dashboard)
		r.Get("/dashboard/upload", pageHandler.Upload)
		r.Get("/dashboard/history", pageHandler.History)
	})

	analysisHandler := handler.NewAnalysisHandler(deps.Analysis, deps.MaxUploadBytes)
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Session(deps.Tokens))
		r.Post("/analyze", analysisHandler.Analyze)
		r.Get("/history", analysisHandler.History)
	})

	return r
}
