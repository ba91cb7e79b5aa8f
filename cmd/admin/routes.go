package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/justinas/nosurf"
)

// routes returns the router wrapped in CSRF protection.
func (app *adminApplication) routes() http.Handler {
	csrf := nosurf.New(app.router())
	csrf.SetBaseCookie(http.Cookie{
		HttpOnly: true,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
	csrf.SetFailureHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.logger.Warn("CSRF validation failed", "path", r.URL.Path, "reason", nosurf.Reason(r))
		http.Error(w, "Invalid CSRF token. Reload the page and try again.", http.StatusBadRequest)
	}))
	return csrf
}

// router sets up the HTTP router for the admin application.
func (app *adminApplication) router() http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// --- Static file server ---
	if app.staticDir != "" {
		r.Group(func(r chi.Router) {
			r.Use(middleware.StripSlashes)
			fs := http.FileServer(http.Dir(app.staticDir))
			r.Handle("/static/*", http.StripPrefix("/static/", fs))
		})
	}

	// --- Handlers ---
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/blueprints/datasources/", http.StatusFound)
	})
	r.Get("/blueprints/{type}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, r.URL.Path+"/", http.StatusMovedPermanently)
	})
	r.Get("/blueprints/{type}/", app.indexHandler)
	r.Post("/blueprints/{type}/", app.bulkHandler)

	return r
}
