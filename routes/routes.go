package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/txix-open/isp-kit/log"
	"skeb-gate-service/middleware"
)

type Handlers struct {
	Static      middleware.Handler
	User        middleware.Handler
	Works       middleware.Handler
	InvalidPath middleware.Handler
}

type Config struct {
	Logger           log.Logger
	RequestLogEnable bool
	// RateLimit guards everything under /api, static paths are exempt.
	RateLimit middleware.Middleware
}

func Handler(handlers Handlers, config Config) http.Handler {
	common := []middleware.Middleware{
		middleware.RequestId(),
		middleware.Logger(config.Logger, config.RequestLogEnable),
		middleware.ErrorHandler(config.Logger),
	}
	api := append(append([]middleware.Middleware{}, common...), config.RateLimit)

	entrypoint := func(handler middleware.Handler, endpoint string, middlewares []middleware.Middleware) http.Handler {
		return middleware.Entrypoint(middleware.Chain(handler, middlewares...), endpoint, config.Logger)
	}

	router := mux.NewRouter()
	router.Handle("/", entrypoint(handlers.Static, "static", common)).Methods(http.MethodGet)
	router.Handle("/@{username}", entrypoint(handlers.Static, "static", common)).Methods(http.MethodGet)
	router.Handle("/api/users/{username}", entrypoint(handlers.User, "user_info", api)).Methods(http.MethodGet)
	router.Handle("/api/users/{username}/works", entrypoint(handlers.Works, "works", api)).Methods(http.MethodGet)
	router.PathPrefix("/api").Handler(entrypoint(handlers.InvalidPath, "invalid_api_path", api))
	router.NotFoundHandler = http.HandlerFunc(notFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(notFound)

	return router
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte("Not Found"))
}
