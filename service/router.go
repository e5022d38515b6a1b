package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func setupRoutes(app *App) *chi.Mux {
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(app.tracingMiddleware)
	router.Use(app.loggingMiddleware)
	router.Use(app.metricsMiddleware)
	router.Use(app.responseHeadersMiddleware)

	router.Get("/health", app.healthHandler)

	routes := func(r chi.Router) {
		mountCollection(r, coffeeDrinksCollection, NewDrinksHandler(app.stores.Drinks, app.logger, app.tracer, app.metrics))
		mountCollection(r, coffeeShopsCollection, NewShopsHandler(app.stores.Shops, app.logger, app.tracer, app.metrics))
		mountCollection(r, usersCollection, NewUsersHandler(app.stores.Users, app.logger, app.tracer, app.metrics))
		mountCollection(r, drinkLogCollection, NewDrinkLogHandler(app.stores.DrinkLog, app.logger, app.tracer, app.metrics))
		mountCollection(r, photosCollection, NewPhotosHandler(app.stores.Photos, app.cfg.Photos, app.logger, app.tracer, app.metrics))
	}

	if app.cfg.BasePath == "" {
		routes(router)
	} else {
		router.Route(app.cfg.BasePath, routes)
	}

	return router
}

// mountCollection hands every method on /name and /name/* to h; the handler
// does its own method dispatch.
func mountCollection(r chi.Router, name string, h http.Handler) {
	r.Handle("/"+name, h)
	r.Handle("/"+name+"/*", h)
}
