package main

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	ghandlers "github.com/gorilla/handlers"
	proxyproto "github.com/pires/go-proxyproto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"

	"gitlab.com/gitlab-org/gitlab-dirindex/internal/netutil"
	"gitlab.com/gitlab-org/gitlab-dirindex/metrics"
)

const (
	listenerHTTP    = "http"
	listenerProxy   = "proxy"
	listenerProxyV2 = "proxyv2"
	listenerMetrics = "metrics"
)

type listener struct {
	listener net.Listener
	addr     string
	kind     string
	handler  http.Handler
}

// listen opens a unix socket when addr is an absolute path, a TCP socket otherwise
func listen(addr string) (net.Listener, error) {
	network := "tcp"
	if strings.HasPrefix(addr, "/") {
		network = "unix"
	}

	l, err := net.Listen(network, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s %s: %w", network, addr, err)
	}

	return l, nil
}

func (a *theApp) createListeners(handler http.Handler) ([]listener, error) {
	var limiter *netutil.Limiter
	if a.config.General.MaxConns > 0 {
		limiter = netutil.NewLimiterWithMetrics(
			a.config.General.MaxConns,
			metrics.LimitListenerMaxConns,
			metrics.LimitListenerConcurrentConns,
			metrics.LimitListenerWaitingConns,
		)
	}

	wrap := func(l net.Listener) net.Listener {
		if limiter != nil {
			l = limiter.Listen(l)
		}

		return netutil.KeepAliveListener(l, a.config.Server.ListenKeepAlive)
	}

	var listeners []listener

	add := func(addrs []string, kind string, h http.Handler, proxyV2 bool) error {
		for _, addr := range addrs {
			l, err := listen(addr)
			if err != nil {
				return err
			}

			l = wrap(l)
			if proxyV2 {
				l = &proxyproto.Listener{
					Listener: l,
					Policy: func(upstream net.Addr) (proxyproto.Policy, error) {
						return proxyproto.REQUIRE, nil
					},
				}
			}

			listeners = append(listeners, listener{listener: l, addr: addr, kind: kind, handler: h})
		}

		return nil
	}

	cfg := a.config.Listeners
	err := add(cfg.HTTP, listenerHTTP, handler, false)
	if err == nil {
		err = add(cfg.Proxy, listenerProxy, ghandlers.ProxyHeaders(handler), false)
	}
	if err == nil {
		err = add(cfg.ProxyV2, listenerProxyV2, handler, true)
	}

	if err == nil && a.config.General.MetricsAddress != "" {
		var l net.Listener
		l, err = listen(a.config.General.MetricsAddress)
		if err == nil {
			listeners = append(listeners, listener{
				listener: l,
				addr:     a.config.General.MetricsAddress,
				kind:     listenerMetrics,
				handler:  promhttp.Handler(),
			})
		}
	}

	if err != nil {
		closeListeners(listeners)
		return nil, err
	}

	return listeners, nil
}

func closeListeners(listeners []listener) {
	for _, l := range listeners {
		l.listener.Close()
	}
}

func (a *theApp) newServer(handler http.Handler) (*http.Server, error) {
	server := &http.Server{
		Handler:           handler,
		ReadTimeout:       a.config.Server.ReadTimeout,
		ReadHeaderTimeout: a.config.Server.ReadHeaderTimeout,
		WriteTimeout:      a.config.Server.WriteTimeout,
	}

	if err := http2.ConfigureServer(server, &http2.Server{}); err != nil {
		return nil, err
	}

	return server, nil
}
