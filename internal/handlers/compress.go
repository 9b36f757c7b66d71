package handlers

import (
	"net/http"

	"github.com/klauspost/compress/gzhttp"
)

// Compress gzips responses for clients that accept it unless disabled.
// Responses smaller than gzhttp.DefaultMinSize are sent as they are.
func Compress(disabled bool, handler http.Handler) http.Handler {
	if disabled {
		return handler
	}

	return gzhttp.GzipHandler(handler)
}
