package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// WithCORS allows cross-origin reads from any origin. The API is
// read-mostly and carries no credentials.
func WithCORS() func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		middleware := cors.New(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
			AllowedHeaders: []string{"*"},
		})
		return middleware.Handler(h)
	}
}
