package rejectmethods

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"gitlab.com/gitlab-org/gitlab-dirindex/metrics"
)

func TestNewMiddleware(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "OK\n")
	})

	middleware := NewMiddleware(handler)

	acceptedMethods := []string{"GET", "HEAD"}
	for _, method := range acceptedMethods {
		t.Run(method, func(t *testing.T) {
			require.HTTPStatusCode(t, middleware.ServeHTTP, method, "/", nil, http.StatusOK)
		})
	}

	t.Run("OPTIONS", func(t *testing.T) {
		w := httptest.NewRecorder()
		middleware.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/", nil))

		require.Equal(t, http.StatusNoContent, w.Code)
		require.Equal(t, "GET, HEAD, OPTIONS", w.Header().Get("Allow"))
		require.Empty(t, w.Body.String())
	})

	rejectedMethods := []string{"POST", "PUT", "PATCH", "DELETE", "TRACE", "UNKNOWN"}
	for _, method := range rejectedMethods {
		t.Run(method, func(t *testing.T) {
			before := testutil.ToFloat64(metrics.RejectedRequestsCount)

			w := httptest.NewRecorder()
			middleware.ServeHTTP(w, httptest.NewRequest(method, "/", nil))

			require.Equal(t, http.StatusMethodNotAllowed, w.Code)
			require.Equal(t, "GET, HEAD, OPTIONS", w.Header().Get("Allow"))
			require.NotContains(t, w.Body.String(), "OK")
			require.Equal(t, before+1, testutil.ToFloat64(metrics.RejectedRequestsCount))
		})
	}
}
