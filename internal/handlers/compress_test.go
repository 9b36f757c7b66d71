package handlers

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompress(t *testing.T) {
	largeBody := strings.Repeat("<tr><td class='name'><a href='/sub'>sub</a></td></tr>\n", 100)

	tests := map[string]struct {
		disabled       bool
		acceptEncoding string
		body           string
		expectGzip     bool
	}{
		"large listing": {
			acceptEncoding: "gzip",
			body:           largeBody,
			expectGzip:     true,
		},
		"client without gzip": {
			body: largeBody,
		},
		"small response": {
			acceptEncoding: "gzip",
			body:           "Forbidden\n",
		},
		"disabled": {
			disabled:       true,
			acceptEncoding: "gzip",
			body:           largeBody,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				io.WriteString(w, tt.body)
			})

			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.acceptEncoding != "" {
				r.Header.Set("Accept-Encoding", tt.acceptEncoding)
			}
			w := httptest.NewRecorder()

			Compress(tt.disabled, next).ServeHTTP(w, r)

			require.Equal(t, http.StatusOK, w.Code)

			if !tt.expectGzip {
				require.Empty(t, w.Header().Get("Content-Encoding"))
				require.Equal(t, tt.body, w.Body.String())
				return
			}

			require.Equal(t, "gzip", w.Header().Get("Content-Encoding"))

			zr, err := gzip.NewReader(w.Body)
			require.NoError(t, err)
			defer zr.Close()

			body, err := io.ReadAll(zr)
			require.NoError(t, err)
			require.Equal(t, tt.body, string(body))
		})
	}
}
