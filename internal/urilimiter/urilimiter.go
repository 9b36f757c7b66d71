package urilimiter

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"gitlab.com/gitlab-org/gitlab-dirindex/internal/httperrors"
	"gitlab.com/gitlab-org/gitlab-dirindex/internal/logging"
	"gitlab.com/gitlab-org/gitlab-dirindex/metrics"
)

// NewMiddleware answers 414 to requests whose URI, escaped as the client sent
// it, is longer than limit bytes. A limit of 0 disables the check.
func NewMiddleware(handler http.Handler, limit int) http.Handler {
	if limit <= 0 {
		return handler
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if n := uriLength(r); n > limit {
			metrics.URITooLongRejectedRequests.Inc()
			logging.LogRequest(r).WithFields(logrus.Fields{
				"uri_length":     n,
				"max_uri_length": limit,
			}).Info("request URI too long")

			httperrors.Serve414(w)
			return
		}

		handler.ServeHTTP(w, r)
	})
}

// uriLength falls back to the URL for requests that were not read off the wire
func uriLength(r *http.Request) int {
	if r.RequestURI != "" {
		return len(r.RequestURI)
	}

	return len(r.URL.RequestURI())
}
