package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
)

var (
	// ErrNoListener is returned when neither -listen-http nor -listen-proxy is set
	ErrNoListener = errors.New("no listener defined, please specify at least one --listen-* flag")

	errNoRootDir                 = errors.New("root-dir must be defined")
	errRootDirNotDirectory       = errors.New("root-dir must be a directory")
	errNegativeSymlinkHops       = errors.New("max-symlink-hops must not be negative")
	errNegativeMaxConns          = errors.New("max-conns must not be negative")
	errNegativeMaxURILength      = errors.New("max-uri-length must not be negative")
	errNegativeRateLimit         = errors.New("rate-limit-source-ip must not be negative")
	errInvalidRateLimitBurst     = errors.New("rate-limit-source-ip-burst must be at least 1 when rate limiting is enabled")
	errInvalidStatusPath         = errors.New("status-path must start with a slash")
	errInvalidLogFormat          = errors.New("log-format must be either 'text' or 'json'")
)

func validateConfig(config *Config) error {
	var result *multierror.Error

	for _, validate := range []func(*Config) error{
		validateListeners,
		validateGeneral,
		validateRateLimit,
		validateLog,
	} {
		if err := validate(config); err != nil {
			result = multierror.Append(result, err)
		}
	}

	return result.ErrorOrNil()
}

func validateListeners(config *Config) error {
	if len(config.Listeners.HTTP)+len(config.Listeners.Proxy)+len(config.Listeners.ProxyV2) == 0 {
		return ErrNoListener
	}

	return nil
}

func validateGeneral(config *Config) error {
	var result *multierror.Error

	if config.General.RootDir == "" {
		result = multierror.Append(result, errNoRootDir)
	} else if fi, err := os.Stat(config.General.RootDir); err != nil {
		result = multierror.Append(result, fmt.Errorf("root-dir: %w", err))
	} else if !fi.IsDir() {
		result = multierror.Append(result, errRootDirNotDirectory)
	}

	if config.General.MaxSymlinkHops < 0 {
		result = multierror.Append(result, errNegativeSymlinkHops)
	}

	if config.General.MaxConns < 0 {
		result = multierror.Append(result, errNegativeMaxConns)
	}

	if config.General.MaxURILength < 0 {
		result = multierror.Append(result, errNegativeMaxURILength)
	}

	if statusPath := config.General.StatusPath; statusPath != "" && !strings.HasPrefix(statusPath, "/") {
		result = multierror.Append(result, errInvalidStatusPath)
	}

	return result.ErrorOrNil()
}

func validateRateLimit(config *Config) error {
	if config.RateLimit.SourceIPLimitPerSecond < 0 {
		return errNegativeRateLimit
	}

	if config.RateLimit.SourceIPLimitPerSecond > 0 && config.RateLimit.SourceIPBurst < 1 {
		return errInvalidRateLimitBurst
	}

	return nil
}

func validateLog(config *Config) error {
	switch config.Log.Format {
	case "json", "text":
		return nil
	default:
		return errInvalidLogFormat
	}
}
