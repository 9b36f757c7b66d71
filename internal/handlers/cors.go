package handlers

import (
	"net/http"

	"github.com/rs/cors"
)

var corsHandler = cors.New(cors.Options{AllowedMethods: []string{http.MethodGet, http.MethodHead}})

// CORS allows cross-origin GET and HEAD requests unless disabled
func CORS(disabled bool, handler http.Handler) http.Handler {
	if disabled {
		return handler
	}

	return corsHandler.Handler(handler)
}
