package rejectmethods

import (
	"net/http"
	"strings"

	"gitlab.com/gitlab-org/gitlab-dirindex/internal/httperrors"
	"gitlab.com/gitlab-org/gitlab-dirindex/metrics"
)

var readMethods = map[string]bool{
	http.MethodGet:  true,
	http.MethodHead: true,
}

var allowHeader = strings.Join([]string{http.MethodGet, http.MethodHead, http.MethodOptions}, ", ")

// NewMiddleware passes GET and HEAD requests to handler. OPTIONS is answered
// with the allowed methods, CORS preflight requests are expected to be
// handled before they get here. Every other method gets a 405.
func NewMiddleware(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case readMethods[r.Method]:
			handler.ServeHTTP(w, r)
		case r.Method == http.MethodOptions:
			w.Header().Set("Allow", allowHeader)
			w.WriteHeader(http.StatusNoContent)
		default:
			metrics.RejectedRequestsCount.Inc()
			httperrors.Serve405(w, allowHeader)
		}
	})
}
