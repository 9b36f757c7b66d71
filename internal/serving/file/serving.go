package file

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"gitlab.com/gitlab-org/gitlab-dirindex/internal/httperrors"
	"gitlab.com/gitlab-org/gitlab-dirindex/internal/logging"
	"gitlab.com/gitlab-org/gitlab-dirindex/internal/mimetype"
	"gitlab.com/gitlab-org/gitlab-dirindex/internal/request"
	"gitlab.com/gitlab-org/gitlab-dirindex/internal/vfs"
	"gitlab.com/gitlab-org/gitlab-dirindex/internal/vfs/symlink"
	"gitlab.com/gitlab-org/gitlab-dirindex/metrics"
)

const cacheMaxAge = 10 * time.Minute

var errNotRegular = errors.New("is not a regular file")

// Handler serves regular files below a vfs.Root. It is the default delegate
// of the directory responder.
type Handler struct {
	root           vfs.Root
	maxHops        int
	mimeType       func(ext string) string
	now            func() time.Time
	fileSizeMetric prometheus.Histogram
}

// Option configures a Handler
type Option func(*Handler)

// WithMaxSymlinkHops sets how many symlinks are followed to reach the file
func WithMaxSymlinkHops(hops int) Option {
	return func(h *Handler) {
		h.maxHops = hops
	}
}

// WithMIMELookup replaces the extension based MIME lookup
func WithMIMELookup(lookup func(ext string) string) Option {
	return func(h *Handler) {
		h.mimeType = lookup
	}
}

// WithNow replaces the clock used for the Expires header
func WithNow(now func() time.Time) Option {
	return func(h *Handler) {
		h.now = now
	}
}

// New returns a file serving handler scoped to root
func New(root vfs.Root, opts ...Option) *Handler {
	h := &Handler{
		root:           root,
		maxHops:        symlink.MaxHops,
		mimeType:       mimetype.Lookup,
		now:            time.Now,
		fileSizeMetric: metrics.FileServingFileSize,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	pathInfo := request.PathInfo(r)

	if err := h.serveFile(w, r, pathInfo); err != nil {
		logging.LogRequest(r).WithError(err).Debug("could not serve file")
		httperrors.ServeNotFound(w, pathInfo)
	}
}

func (h *Handler) serveFile(w http.ResponseWriter, r *http.Request, pathInfo string) error {
	ctx := r.Context()

	name, err := url.PathUnescape(pathInfo)
	if err != nil {
		return err
	}

	if strings.Contains(name, "..") {
		return fmt.Errorf("%q: traversal segment", name)
	}

	resolved, fi, err := symlink.Resolve(ctx, h.root, name, h.maxHops)
	if err != nil {
		return err
	}

	// The file exists, but is not a supported type to serve. Perhaps a block
	// special device or something else that may be a security risk.
	if !fi.Mode().IsRegular() {
		return fmt.Errorf("%s: %w", resolved, errNotRegular)
	}

	file, err := h.root.Open(ctx, resolved)
	if err != nil {
		return err
	}

	defer file.Close()

	contentType, err := h.detectContentType(resolved, file)
	if err != nil {
		httperrors.Serve500WithRequest(w, r, "detecting content type", err)
		return nil
	}

	h.fileSizeMetric.Observe(float64(fi.Size()))

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", fmt.Sprintf("max-age=%d", int(cacheMaxAge.Seconds())))
	w.Header().Set("Expires", h.now().Add(cacheMaxAge).UTC().Format(http.TimeFormat))

	http.ServeContent(w, r, resolved, fi.ModTime(), file)

	return nil
}
