package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handlers struct {
	Session *SessionMiddleware
	Auth    *AuthHandler
	Poll    *PollHandler
	User    *UserHandler
	Ballot  *BallotHandler
	Results *ResultsHandler
	Admin   *AdminHandler
	Health  *HealthHandler
}

func NewHandler(h Handlers, corsOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", h.Health.Health)

	r.Route("/oauth", func(r chi.Router) {
		r.Use(h.Session.WithSession)
		r.Get("/login", h.Auth.Login)
		r.Get("/callback", h.Auth.CodeCallback)
		r.Post("/callback", h.Auth.GoogleCallback)
		r.Post("/refresh", h.Auth.Refresh)
		r.Post("/logout", h.Auth.Logout)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/poll", h.Poll.GetPoll)
		r.Get("/results", h.Results.GetResults)

		r.Group(func(r chi.Router) {
			r.Use(h.Session.WithSession)
			r.Use(h.Session.WithIdentity)

			r.Get("/me", h.User.GetMe)
			r.Route("/ballot", func(r chi.Router) {
				r.Get("/", h.Ballot.GetBallot)
				r.Post("/choices/{index}", h.Ballot.Toggle)
				r.Post("/submit", h.Ballot.Submit)
			})
			r.Get("/admin/votes", h.Admin.ListVotes)
		})
	})

	return r
}
