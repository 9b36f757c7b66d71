package request

import (
	"context"
	"net"
	"net/http"
	"strings"
)

type ctxKey string

const (
	ctxScriptNameKey ctxKey = "script_name"

	// SchemeHTTP name for the HTTP scheme
	SchemeHTTP = "http"
	// SchemeHTTPS name for the HTTPS scheme
	SchemeHTTPS = "https"
)

// WithScriptName saves the prefix the handler is mounted under in the request's context
func WithScriptName(r *http.Request, scriptName string) *http.Request {
	ctx := context.WithValue(r.Context(), ctxScriptNameKey, scriptName)

	return r.WithContext(ctx)
}

// ScriptName extracts the mount prefix from request's context. It is empty
// when the handler is mounted at the root.
func ScriptName(r *http.Request) string {
	scriptName, _ := r.Context().Value(ctxScriptNameKey).(string)

	return scriptName
}

// PathInfo returns the request path, relative to the mount prefix, in the
// escaped form it was received in
func PathInfo(r *http.Request) string {
	return r.URL.EscapedPath()
}

// Mount strips prefix from the request URL and records it as the script name
// before calling h. Requests outside of prefix get a 404.
func Mount(prefix string, h http.Handler) http.Handler {
	prefix = strings.TrimSuffix(prefix, "/")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path, ok := stripPrefix(r.URL.Path, prefix)
		if !ok {
			http.NotFound(w, r)
			return
		}

		rawPath, ok := stripPrefix(r.URL.RawPath, prefix)
		if !ok {
			http.NotFound(w, r)
			return
		}

		r2 := WithScriptName(r, prefix)
		u := *r.URL
		u.Path = path
		u.RawPath = rawPath
		r2.URL = &u

		h.ServeHTTP(w, r2)
	})
}

func stripPrefix(path, prefix string) (string, bool) {
	if path == "" || prefix == "" {
		return path, true
	}

	if path == prefix {
		return "/", true
	}

	if strings.HasPrefix(path, prefix+"/") {
		return path[len(prefix):], true
	}

	return "", false
}

// IsHTTPS checks whether the request was served over HTTPS, directly or
// behind a proxy that set the scheme
func IsHTTPS(r *http.Request) bool {
	return r.URL.Scheme == SchemeHTTPS || r.TLS != nil
}

// GetHostWithoutPort returns the host without the port
func GetHostWithoutPort(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.Host)
	if err != nil {
		return r.Host
	}

	return host
}

// GetRemoteAddrWithoutPort strips the port from the r.RemoteAddr if present
func GetRemoteAddrWithoutPort(r *http.Request) string {
	remoteAddr, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return remoteAddr
}
