package config

import (
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/namsral/flag"
	log "github.com/sirupsen/logrus"

	"gitlab.com/gitlab-org/gitlab-dirindex/internal/customheaders"
)

// Config stores all the config options relevant to the directory index daemon
type Config struct {
	General   General
	Listeners Listeners
	RateLimit RateLimit
	Server    Server
	Log       Log
	Sentry    Sentry
}

// General groups settings that can not be categorized under other head
type General struct {
	RootDir        string
	MountPath      string
	MaxSymlinkHops int
	StatusPath     string
	MetricsAddress string
	MaxConns       int
	MaxURILength   int

	DisableCrossOriginRequests bool
	DisableCompression         bool
	PropagateCorrelationID     bool

	ShowVersion bool

	CustomHeaders http.Header
}

// Listeners holds the addresses to listen on. Addresses starting with a
// slash are unix socket paths.
type Listeners struct {
	HTTP    []string
	Proxy   []string
	ProxyV2 []string
}

// RateLimit config struct
type RateLimit struct {
	// HTTP limits
	SourceIPLimitPerSecond float64
	SourceIPBurst          int
	SourceIPEnforce        bool
}

// Server holds the settings shared by every HTTP server
type Server struct {
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	ListenKeepAlive   time.Duration
	ShutdownTimeout   time.Duration
}

// Log groups settings related to configuring logging
type Log struct {
	Format  string
	Verbose bool
}

// Sentry groups settings related to configuring Sentry
type Sentry struct {
	DSN         string
	Environment string
}

// normalizeMountPath turns a mount path into the prefix form the router
// expects: leading slash, no trailing slash, "" for the root.
func normalizeMountPath(mount string) string {
	mount = path.Clean("/" + strings.TrimSpace(mount))
	if mount == "/" {
		return ""
	}

	return mount
}

func loadConfig() (*Config, error) {
	config := &Config{
		General: General{
			RootDir:                    *rootDir,
			MountPath:                  normalizeMountPath(*mountPath),
			MaxSymlinkHops:             *maxSymlinkHops,
			StatusPath:                 *statusPath,
			MetricsAddress:             *metricsAddress,
			MaxConns:                   *maxConns,
			MaxURILength:               *maxURILength,
			DisableCrossOriginRequests: *disableCrossOriginRequests,
			DisableCompression:         *disableCompression,
			PropagateCorrelationID:     *propagateCorrelationID,
			ShowVersion:                *showVersion,
		},
		Listeners: Listeners{
			HTTP:    listenHTTP.Split(),
			Proxy:   listenProxy.Split(),
			ProxyV2: listenProxyV2.Split(),
		},
		RateLimit: RateLimit{
			SourceIPLimitPerSecond: *rateLimitSourceIP,
			SourceIPBurst:          *rateLimitSourceIPBurst,
			SourceIPEnforce:        *rateLimitSourceIPEnforce,
		},
		Server: Server{
			ReadTimeout:       *serverReadTimeout,
			ReadHeaderTimeout: *serverReadHeaderTimeout,
			WriteTimeout:      *serverWriteTimeout,
			ListenKeepAlive:   *serverKeepAlive,
			ShutdownTimeout:   *serverShutdownTimeout,
		},
		Log: Log{
			Format:  *logFormat,
			Verbose: *logVerbose,
		},
		Sentry: Sentry{
			DSN:         *sentryDSN,
			Environment: *sentryEnvironment,
		},
	}

	// -version short-circuits everything else
	if config.General.ShowVersion {
		return config, nil
	}

	customHeaders, err := customheaders.ParseHeaderString(header.Split())
	if err != nil {
		return nil, fmt.Errorf("unable to parse header string: %w", err)
	}

	config.General.CustomHeaders = customHeaders

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// LogConfig prints the effective configuration at debug level
func LogConfig(config *Config) {
	log.WithFields(log.Fields{
		"default-config-filename":       flag.DefaultConfigFlagname,
		"disable-compression":           config.General.DisableCompression,
		"disable-cross-origin-requests": config.General.DisableCrossOriginRequests,
		"header":                        header.String(),
		"listen-http":                   strings.Join(config.Listeners.HTTP, ","),
		"listen-proxy":                  strings.Join(config.Listeners.Proxy, ","),
		"listen-proxyv2":                strings.Join(config.Listeners.ProxyV2, ","),
		"log-format":                    config.Log.Format,
		"log-verbose":                   config.Log.Verbose,
		"max-conns":                     config.General.MaxConns,
		"max-symlink-hops":              config.General.MaxSymlinkHops,
		"max-uri-length":                config.General.MaxURILength,
		"metrics-address":               config.General.MetricsAddress,
		"mount-path":                    config.General.MountPath,
		"propagate-correlation-id":      config.General.PropagateCorrelationID,
		"rate-limit-source-ip":          config.RateLimit.SourceIPLimitPerSecond,
		"rate-limit-source-ip-burst":    config.RateLimit.SourceIPBurst,
		"rate-limit-source-ip-enforce":  config.RateLimit.SourceIPEnforce,
		"root-dir":                      config.General.RootDir,
		"sentry-environment":            config.Sentry.Environment,
		"server-read-timeout":           config.Server.ReadTimeout,
		"server-read-header-timeout":    config.Server.ReadHeaderTimeout,
		"server-write-timeout":          config.Server.WriteTimeout,
		"server-keep-alive":             config.Server.ListenKeepAlive,
		"server-shutdown-timeout":       config.Server.ShutdownTimeout,
		"status-path":                   config.General.StatusPath,
	}).Debug("Start daemon with configuration")
}

// LoadConfig parses configuration settings passed as command line arguments or
// via config file, and populates a Config object with those values
func LoadConfig() (*Config, error) {
	initFlags()

	return loadConfig()
}
