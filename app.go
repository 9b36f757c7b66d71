package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	ghandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"gitlab.com/gitlab-org/labkit/correlation"
	labmetrics "gitlab.com/gitlab-org/labkit/metrics"
	"golang.org/x/sync/errgroup"

	"gitlab.com/gitlab-org/gitlab-dirindex/internal/config"
	"gitlab.com/gitlab-org/gitlab-dirindex/internal/customheaders"
	"gitlab.com/gitlab-org/gitlab-dirindex/internal/directory"
	"gitlab.com/gitlab-org/gitlab-dirindex/internal/errortracking"
	"gitlab.com/gitlab-org/gitlab-dirindex/internal/handlers"
	"gitlab.com/gitlab-org/gitlab-dirindex/internal/healthcheck"
	"gitlab.com/gitlab-org/gitlab-dirindex/internal/httperrors"
	"gitlab.com/gitlab-org/gitlab-dirindex/internal/logging"
	"gitlab.com/gitlab-org/gitlab-dirindex/internal/ratelimiter"
	"gitlab.com/gitlab-org/gitlab-dirindex/internal/rejectmethods"
	"gitlab.com/gitlab-org/gitlab-dirindex/internal/request"
	"gitlab.com/gitlab-org/gitlab-dirindex/internal/urilimiter"
	"gitlab.com/gitlab-org/gitlab-dirindex/internal/vfs"
	"gitlab.com/gitlab-org/gitlab-dirindex/internal/vfs/local"
)

// HTTP request metrics can only be registered once per process
var metricsHandlerFactory = labmetrics.NewHandlerFactory(labmetrics.WithNamespace("dirindex"))

type theApp struct {
	config      *config.Config
	root        vfs.Root
	responder   *directory.Responder
	rateLimiter *ratelimiter.RateLimiter
}

func newApp(ctx context.Context, cfg *config.Config) (*theApp, error) {
	root, err := vfs.Instrumented(&local.VFS{}).Root(ctx, cfg.General.RootDir)
	if err != nil {
		return nil, fmt.Errorf("opening root directory: %w", err)
	}

	return &theApp{
		config: cfg,
		root:   root,
		responder: directory.New(root,
			directory.WithMaxSymlinkHops(cfg.General.MaxSymlinkHops),
		),
	}, nil
}

// mountMatcher matches the mount path itself and everything below it
func mountMatcher(mount string) mux.MatcherFunc {
	return func(r *http.Request, _ *mux.RouteMatch) bool {
		return r.URL.Path == mount || strings.HasPrefix(r.URL.Path, mount+"/")
	}
}

func (a *theApp) router() *mux.Router {
	router := mux.NewRouter()

	// Cleaning would redirect "/a/../b" before the responder can reject it
	router.SkipClean(true)

	if a.config.General.StatusPath != "" {
		router.Path(a.config.General.StatusPath).
			Methods(http.MethodGet, http.MethodHead).
			Handler(healthcheck.Handler(a.root))
	}

	mount := a.config.General.MountPath
	router.MatcherFunc(mountMatcher(mount)).Handler(request.Mount(mount, a.responder))

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httperrors.ServeNotFound(w, r.URL.EscapedPath())
	})

	return router
}

// buildHandler wraps the router in the middleware chain. The first
// middleware applied is the last one to see the request.
func (a *theApp) buildHandler() (http.Handler, error) {
	var handler http.Handler = a.router()

	handler = handlers.Compress(a.config.General.DisableCompression, handler)
	handler = customheaders.NewMiddleware(handler, a.config.General.CustomHeaders)
	handler = rejectmethods.NewMiddleware(handler)
	handler = handlers.CORS(a.config.General.DisableCrossOriginRequests, handler)

	if a.config.RateLimit.SourceIPLimitPerSecond > 0 {
		a.rateLimiter = ratelimiter.New(
			ratelimiter.WithSourceIPLimitPerSecond(a.config.RateLimit.SourceIPLimitPerSecond),
			ratelimiter.WithSourceIPBurstSize(a.config.RateLimit.SourceIPBurst),
			ratelimiter.WithEnforce(a.config.RateLimit.SourceIPEnforce),
		)

		handler = a.rateLimiter.SourceIPLimiter(handler)
	}

	handler = urilimiter.NewMiddleware(handler, a.config.General.MaxURILength)
	handler = metricsHandlerFactory(handler)

	handler, err := logging.BasicAccessLogger(handler, a.config.Log.Format)
	if err != nil {
		return nil, err
	}

	var correlationOpts []correlation.InboundHandlerOption
	if a.config.General.PropagateCorrelationID {
		correlationOpts = append(correlationOpts, correlation.WithPropagation())
	}

	handler = correlation.InjectCorrelationID(handler, correlationOpts...)

	handler = ghandlers.RecoveryHandler(
		ghandlers.RecoveryLogger(recoveryLogger{}),
		ghandlers.PrintRecoveryStack(true),
	)(handler)

	return handler, nil
}

// Run serves until ctx is cancelled or a listener fails, then shuts every
// server down
func (a *theApp) Run(ctx context.Context) error {
	handler, err := a.buildHandler()
	if err != nil {
		return fmt.Errorf("building handler: %w", err)
	}

	listeners, err := a.createListeners(handler)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	servers := make([]*http.Server, 0, len(listeners))
	for _, l := range listeners {
		l := l

		server, err := a.newServer(l.handler)
		if err != nil {
			closeListeners(listeners)
			return err
		}

		servers = append(servers, server)

		g.Go(func() error {
			log.WithFields(log.Fields{
				"listener": l.addr,
				"type":     l.kind,
			}).Info("Started listener")

			if err := server.Serve(l.listener); !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serving %s listener %s: %w", l.kind, l.addr, err)
			}

			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()

		return a.shutdown(servers)
	})

	return g.Wait()
}

func (a *theApp) shutdown(servers []*http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
	defer cancel()

	log.WithField("timeout", a.config.Server.ShutdownTimeout).Info("Shutting down servers")

	g := errgroup.Group{}
	for _, server := range servers {
		server := server

		g.Go(func() error {
			return server.Shutdown(ctx)
		})
	}

	err := g.Wait()

	if a.rateLimiter != nil {
		a.rateLimiter.Stop()
		a.rateLimiter = nil
	}

	return err
}

type recoveryLogger struct{}

func (recoveryLogger) Println(v ...interface{}) {
	err := fmt.Errorf("recovered from panic: %s", fmt.Sprint(v...))

	log.WithError(err).Error("handler panicked")
	errortracking.CaptureErrWithStackTrace(err)
}

func runApp(ctx context.Context, cfg *config.Config) error {
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}

	return a.Run(ctx)
}
