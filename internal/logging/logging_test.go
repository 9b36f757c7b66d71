package logging

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"gitlab.com/gitlab-org/gitlab-dirindex/internal/request"
)

func TestExtraFields(t *testing.T) {
	tests := []struct {
		name         string
		scheme       string
		host         string
		expectedHost string
	}{
		{
			name:         "https",
			scheme:       request.SchemeHTTPS,
			host:         "files.example.com",
			expectedHost: "files.example.com",
		},
		{
			name:         "http",
			scheme:       request.SchemeHTTP,
			host:         "files.example.com",
			expectedHost: "files.example.com",
		},
		{
			name:         "host with port",
			scheme:       request.SchemeHTTP,
			host:         "files.example.com:8080",
			expectedHost: "files.example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest("GET", "/sub/", nil)
			require.NoError(t, err)

			req.URL.Scheme = tt.scheme
			req.Host = tt.host

			got := extraFields(req)
			require.Equal(t, tt.scheme == request.SchemeHTTPS, got["dirindex_https"])
			require.Equal(t, tt.expectedHost, got["dirindex_host"])
			require.Equal(t, "/sub/", got["dirindex_path"])
		})
	}
}

func TestLogRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://files.example.com:8080/sub/", nil)

	entry := LogRequest(req)
	require.Equal(t, "files.example.com", entry.Data["host"])
	require.Equal(t, "/sub/", entry.Data["path"])
}

func TestBasicAccessLogger(t *testing.T) {
	for _, format := range []string{"text", "json"} {
		t.Run(format, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			})

			handler, err := BasicAccessLogger(next, format)
			require.NoError(t, err)

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
			require.Equal(t, http.StatusNoContent, w.Code)
		})
	}
}
