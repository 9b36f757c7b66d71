package directory

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"gitlab.com/gitlab-org/gitlab-dirindex/internal/vfs/symlink"
	"gitlab.com/gitlab-org/gitlab-dirindex/metrics"
)

// Entry is one row of a directory index
type Entry struct {
	Href    string
	Name    string
	Size    string
	Type    string
	ModTime string
}

var parentEntry = Entry{Href: "../", Name: "Parent Directory"}

// Listing is the index of a single directory, built for one request. Its
// rendered form is produced line by line while it is written out.
type Listing struct {
	title   string
	entries []Entry
}

// Title is the directory path shown in the page title and heading
func (l *Listing) Title() string {
	return l.title
}

// Entries returns the rows of the listing, starting with the parent entry
func (l *Listing) Entries() []Entry {
	entries := make([]Entry, len(l.entries))
	copy(entries, l.entries)

	return entries
}

// EachLine renders the page one line at a time, stopping at the first error
// returned by fn
func (l *Listing) EachLine(fn func(line string) error) error {
	if err := fn(renderHeader(l.title)); err != nil {
		return err
	}

	for _, entry := range l.entries {
		if err := fn(renderRow(entry)); err != nil {
			return err
		}
	}

	return fn(pageFooter)
}

// WriteTo streams the rendered page to w
func (l *Listing) WriteTo(w io.Writer) (int64, error) {
	var written int64

	err := l.EachLine(func(line string) error {
		n, err := io.WriteString(w, line)
		written += int64(n)

		return err
	})

	return written, err
}

// List builds the index of the directory addressed by req
func (d *Responder) List(ctx context.Context, req Request) (*Listing, error) {
	name, err := req.name()
	if err != nil {
		return nil, err
	}

	children, err := d.root.ReadDir(ctx, name)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(children))
	for _, child := range children {
		// hidden entries are never listed
		if strings.HasPrefix(child.Name(), ".") {
			continue
		}

		names = append(names, child.Name())
	}

	sort.Strings(names)

	listing := &Listing{
		title:   name,
		entries: make([]Entry, 0, len(names)+1),
	}

	if listing.title == "" {
		listing.title = "/"
	}

	listing.entries = append(listing.entries, parentEntry)

	for _, base := range names {
		entry, err := d.entry(ctx, req, name, base)
		if err != nil {
			metrics.ListingSkippedEntries.Inc()

			if !errors.Is(err, fs.ErrNotExist) {
				log.WithError(err).WithField("name", path.Join(name, base)).Debug("skipping directory entry")
			}

			continue
		}

		listing.entries = append(listing.entries, entry)
	}

	return listing, nil
}

func (d *Responder) entry(ctx context.Context, req Request, dir, base string) (Entry, error) {
	resolved, fi, err := symlink.Resolve(ctx, d.root, path.Join(dir, base), d.maxHops)
	if err != nil {
		return Entry{}, err
	}

	entry := Entry{
		Href:    path.Join(req.ScriptName, req.PathInfo, url.PathEscape(base)),
		Name:    base,
		ModTime: fi.ModTime().UTC().Format(http.TimeFormat),
	}

	if fi.IsDir() {
		entry.Size = "-"
		entry.Type = "directory"
	} else {
		entry.Size = FormatSize(fi.Size())
		entry.Type = d.mimeType(path.Ext(resolved))
	}

	return entry, nil
}
