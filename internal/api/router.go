package api

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// NewHTTPRouter wires every diary endpoint. Login and registration go through
// limiter when it is non-nil.
func NewHTTPRouter(httpHandler *HTTPHandler, limiter *RateLimiter) *mux.Router {
	router := mux.NewRouter()
	router.Use(httpHandler.RequestLogger)

	router.HandleFunc("/healthz", httpHandler.Health).Methods(http.MethodGet)

	apiRouter := router.PathPrefix("/api").Subrouter()

	authRouter := apiRouter.NewRoute().Subrouter()
	if limiter != nil {
		authRouter.Use(limiter.Middleware)
	}
	authRouter.HandleFunc("/registration", httpHandler.Register).Methods(http.MethodPost)
	authRouter.HandleFunc("/login", httpHandler.Login).Methods(http.MethodPost)

	apiRouter.HandleFunc("/movies", httpHandler.ListMovies).Methods(http.MethodGet)

	userRouter := apiRouter.PathPrefix("/user").Subrouter()
	userRouter.Use(httpHandler.AuthMiddleware)
	userRouter.HandleFunc("/movies", httpHandler.AddToDiary).Methods(http.MethodPost)
	userRouter.HandleFunc("/movies/{id}", httpHandler.SetStatus).Methods(http.MethodPut)
	userRouter.HandleFunc("/movies/{id}/rate", httpHandler.SetRating).Methods(http.MethodPut)
	userRouter.HandleFunc("/movies/{id}/review", httpHandler.SetReview).Methods(http.MethodPut)
	userRouter.HandleFunc("/{userId}/movies", httpHandler.ListDiary).Methods(http.MethodGet)
	userRouter.HandleFunc("/{userId}/stats", httpHandler.DiaryStats).Methods(http.MethodGet)

	return router
}

// WithCORS allows the configured frontend origins to call the API.
func WithCORS(next http.Handler, origins []string) http.Handler {
	return handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", requestIDHeader}),
		handlers.ExposedHeaders([]string{requestIDHeader}),
	)(next)
}
