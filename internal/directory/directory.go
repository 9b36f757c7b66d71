package directory

import (
	"errors"
	"io/fs"
	"net/http"
	"net/url"
	"strings"

	"gitlab.com/gitlab-org/gitlab-dirindex/internal/httperrors"
	"gitlab.com/gitlab-org/gitlab-dirindex/internal/logging"
	"gitlab.com/gitlab-org/gitlab-dirindex/internal/mimetype"
	"gitlab.com/gitlab-org/gitlab-dirindex/internal/request"
	"gitlab.com/gitlab-org/gitlab-dirindex/internal/serving/file"
	"gitlab.com/gitlab-org/gitlab-dirindex/internal/vfs"
	"gitlab.com/gitlab-org/gitlab-dirindex/internal/vfs/symlink"
	"gitlab.com/gitlab-org/gitlab-dirindex/metrics"
)

const (
	outcomeListing   = "listing"
	outcomeDelegated = "delegated"
	outcomeForbidden = "forbidden"
	outcomeNotFound  = "not_found"
)

// ErrTraversal is returned for paths containing a parent directory segment
var ErrTraversal = errors.New("path contains a traversal segment")

// Request is the part of an HTTP request the responder works with. It is
// built per call and never stored.
type Request struct {
	// PathInfo is the path below the mount prefix, escaped as received
	PathInfo string
	// ScriptName is the prefix the responder is mounted under
	ScriptName string
}

// NewRequest extracts the path info and the script name from r
func NewRequest(r *http.Request) Request {
	return Request{
		PathInfo:   request.PathInfo(r),
		ScriptName: request.ScriptName(r),
	}
}

// Traversal reports whether the path info, raw or unescaped, contains "..".
// It never touches the filesystem.
func (req Request) Traversal() bool {
	if strings.Contains(req.PathInfo, "..") {
		return true
	}

	unescaped, err := url.PathUnescape(req.PathInfo)

	return err == nil && strings.Contains(unescaped, "..")
}

// name is the root relative name addressed by the request
func (req Request) name() (string, error) {
	if req.Traversal() {
		return "", ErrTraversal
	}

	return url.PathUnescape(req.PathInfo)
}

// Responder serves the files below its root through a delegate and renders
// an index for directories. It holds no per-request state and can be shared
// between goroutines.
type Responder struct {
	root     vfs.Root
	delegate http.Handler
	mimeType func(ext string) string
	maxHops  int
}

// Option configures a Responder
type Option func(*Responder)

// WithDelegate sets the handler regular files are passed to
func WithDelegate(delegate http.Handler) Option {
	return func(d *Responder) {
		d.delegate = delegate
	}
}

// WithMIMELookup sets the function mapping an extension, dot included, to
// the type shown in the index
func WithMIMELookup(lookup func(ext string) string) Option {
	return func(d *Responder) {
		d.mimeType = lookup
	}
}

// WithMaxSymlinkHops limits how many links are followed for each entry
func WithMaxSymlinkHops(hops int) Option {
	return func(d *Responder) {
		d.maxHops = hops
	}
}

// New returns a Responder for root. Unless WithDelegate is given, files are
// served by a file handler scoped to the same root.
func New(root vfs.Root, opts ...Option) *Responder {
	d := &Responder{
		root:     root,
		mimeType: mimetype.Lookup,
		maxHops:  symlink.MaxHops,
	}

	for _, opt := range opts {
		opt(d)
	}

	if d.delegate == nil {
		d.delegate = file.New(root,
			file.WithMaxSymlinkHops(d.maxHops),
			file.WithMIMELookup(d.mimeType),
		)
	}

	return d
}

func (d *Responder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req := NewRequest(r)

	if req.Traversal() {
		metrics.Responses.WithLabelValues(outcomeForbidden).Inc()
		httperrors.ServeForbidden(w)
		return
	}

	name, err := req.name()
	if err != nil {
		d.notFound(w, r, req, err)
		return
	}

	// Unreadable entries are reported like missing ones
	fi, err := d.root.Stat(r.Context(), name)
	if err != nil {
		d.notFound(w, r, req, err)
		return
	}

	if err := d.root.Readable(r.Context(), name); err != nil {
		d.notFound(w, r, req, err)
		return
	}

	switch {
	case fi.Mode().IsRegular():
		metrics.Responses.WithLabelValues(outcomeDelegated).Inc()
		d.delegate.ServeHTTP(w, r)
	case fi.IsDir():
		d.serveListing(w, r, req)
	default:
		d.notFound(w, r, req, nil)
	}
}

func (d *Responder) serveListing(w http.ResponseWriter, r *http.Request, req Request) {
	listing, err := d.List(r.Context(), req)
	if err != nil {
		d.notFound(w, r, req, err)
		return
	}

	metrics.Responses.WithLabelValues(outcomeListing).Inc()
	metrics.ListingEntries.Observe(float64(len(listing.entries)))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	if r.Method == http.MethodHead {
		return
	}

	if _, err := listing.WriteTo(w); err != nil {
		logging.LogRequest(r).WithError(err).Debug("writing directory listing")
	}
}

func (d *Responder) notFound(w http.ResponseWriter, r *http.Request, req Request, err error) {
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		logging.LogRequest(r).WithError(err).Debug("entity is not readable")
	}

	metrics.Responses.WithLabelValues(outcomeNotFound).Inc()
	httperrors.ServeNotFound(w, req.PathInfo)
}
