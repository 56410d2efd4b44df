package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// corsMethods covers every verb the API routes serve.
var corsMethods = []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}

// CORS adds cross-origin headers for the browser frontend and answers
// preflight requests. An empty origin disables the headers.
func CORS(origin string) func(http.Handler) http.Handler {
	if origin == "" {
		return func(next http.Handler) http.Handler { return next }
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: []string{origin},
		AllowedMethods: corsMethods,
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	})
}
