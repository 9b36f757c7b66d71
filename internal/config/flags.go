package config

import (
	"time"

	"github.com/namsral/flag"
)

var (
	rootDir        = flag.String("root-dir", ".", "The directory to serve and index")
	mountPath      = flag.String("mount-path", "/", "The URL path prefix the directory is served under, e.g. /files")
	maxSymlinkHops = flag.Int("max-symlink-hops", 10, "The maximum number of symbolic links followed for a single directory entry")
	statusPath     = flag.String("status-path", "", "The url path for a status page, e.g., /-/status")
	metricsAddress = flag.String("metrics-address", "", "The address to listen on for metrics requests")
	maxURILength   = flag.Int("max-uri-length", 2048, "Limit the length of URI, 0 for unlimited.")
	maxConns       = flag.Int("max-conns", 0, "Limit on the number of concurrent connections to the HTTP or proxy listeners, 0 for no limit")

	propagateCorrelationID     = flag.Bool("propagate-correlation-id", false, "Reuse existing Correlation-ID from the incoming request header `X-Request-ID` if present")
	disableCrossOriginRequests = flag.Bool("disable-cross-origin-requests", false, "Disable cross-origin requests")
	disableCompression         = flag.Bool("disable-compression", false, "Disable gzip compression of responses")

	// HTTP rate limits
	rateLimitSourceIP        = flag.Float64("rate-limit-source-ip", 0.0, "Rate limit HTTP requests per second from a single IP, 0 means is disabled")
	rateLimitSourceIPBurst   = flag.Int("rate-limit-source-ip-burst", 100, "Rate limit HTTP requests from a single IP, maximum burst allowed per second")
	rateLimitSourceIPEnforce = flag.Bool("rate-limit-source-ip-enforce", true, "Reject requests over the source IP rate limit with 429, otherwise only log and count them")

	sentryDSN         = flag.String("sentry-dsn", "", "The address for sending sentry crash reporting to")
	sentryEnvironment = flag.String("sentry-environment", "", "The environment for sentry crash reporting")
	logFormat         = flag.String("log-format", "json", "The log output format: 'text' or 'json'")
	logVerbose        = flag.Bool("log-verbose", false, "Verbose logging")

	// HTTP server timeouts
	serverReadTimeout       = flag.Duration("server-read-timeout", 5*time.Second, "ReadTimeout is the maximum duration for reading the entire request, including the body. A zero or negative value means there will be no timeout.")
	serverReadHeaderTimeout = flag.Duration("server-read-header-timeout", time.Second, "ReadHeaderTimeout is the amount of time allowed to read request headers. A zero or negative value means there will be no timeout.")
	serverWriteTimeout      = flag.Duration("server-write-timeout", 0, "WriteTimeout is the maximum duration before timing out writes of the response. A zero or negative value means there will be no timeout.")
	serverKeepAlive         = flag.Duration("server-keep-alive", 15*time.Second, "KeepAlive specifies the keep-alive period for network connections accepted by this listener. If zero, keep-alives are enabled if supported by the protocol and operating system. If negative, keep-alives are disabled.")
	serverShutdownTimeout   = flag.Duration("server-shutdown-timeout", 30*time.Second, "Server shutdown timeout (default: 30s)")

	showVersion = flag.Bool("version", false, "Show version")

	// See initFlags()
	listenHTTP    = MultiStringFlag{separator: ","}
	listenProxy   = MultiStringFlag{separator: ","}
	listenProxyV2 = MultiStringFlag{separator: ","}

	header = MultiStringFlag{separator: ";;"}
)

// initFlags will be called from LoadConfig
func initFlags() {
	flag.Var(&listenHTTP, "listen-http", "The address(es) or unix socket paths to listen on for HTTP requests")
	flag.Var(&listenProxy, "listen-proxy", "The address(es) or unix socket paths to listen on for requests from a proxy setting X-Forwarded-For and X-Forwarded-Proto")
	flag.Var(&listenProxyV2, "listen-proxyv2", "The address(es) or unix socket paths to listen on for PROXY protocol v2 requests (https://www.haproxy.org/download/1.8/doc/proxy-protocol.txt)")
	flag.Var(&header, "header", "The additional http header(s) that should be send to the client")

	// read from -config=/path/to/gitlab-dirindex-config
	flag.String(flag.DefaultConfigFlagname, "", "path to config file")

	flag.Parse()
}
