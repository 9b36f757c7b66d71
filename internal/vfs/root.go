package vfs

import (
	"context"
	"io/fs"
	"os"
	"strconv"

	log "github.com/sirupsen/logrus"

	"gitlab.com/gitlab-org/gitlab-dirindex/metrics"
)

//go:generate mockgen -destination=mock/root_mock.go -package=mock gitlab.com/gitlab-org/gitlab-dirindex/internal/vfs Root

// Root abstracts the things the directory index needs from a given root path.
// Every name is relative to the root.
type Root interface {
	Lstat(ctx context.Context, name string) (os.FileInfo, error)
	Stat(ctx context.Context, name string) (os.FileInfo, error)
	Readlink(ctx context.Context, name string) (string, error)
	ReadDir(ctx context.Context, name string) ([]fs.DirEntry, error)
	// Readable returns an error unless the process may read name, following links
	Readable(ctx context.Context, name string) error
	Open(ctx context.Context, name string) (File, error)
}

type instrumentedRoot struct {
	root Root
	name string
	path string
}

func (i *instrumentedRoot) increment(operation string, err error) {
	metrics.VFSOperations.WithLabelValues(i.name, operation, strconv.FormatBool(err == nil)).Inc()
}

func (i *instrumentedRoot) log(name string) *log.Entry {
	return log.WithField("vfs", i.name).
		WithField("path", i.path).
		WithField("name", name)
}

func (i *instrumentedRoot) Lstat(ctx context.Context, name string) (os.FileInfo, error) {
	fi, err := i.root.Lstat(ctx, name)
	i.increment("Lstat", err)

	i.log(name).WithError(err).Traceln("Lstat call")

	return fi, err
}

func (i *instrumentedRoot) Stat(ctx context.Context, name string) (os.FileInfo, error) {
	fi, err := i.root.Stat(ctx, name)
	i.increment("Stat", err)

	i.log(name).WithError(err).Traceln("Stat call")

	return fi, err
}

func (i *instrumentedRoot) Readlink(ctx context.Context, name string) (string, error) {
	target, err := i.root.Readlink(ctx, name)
	i.increment("Readlink", err)

	i.log(name).
		WithField("ret-target", target).
		WithError(err).
		Traceln("Readlink call")

	return target, err
}

func (i *instrumentedRoot) ReadDir(ctx context.Context, name string) ([]fs.DirEntry, error) {
	entries, err := i.root.ReadDir(ctx, name)
	i.increment("ReadDir", err)

	i.log(name).
		WithField("ret-entries", len(entries)).
		WithError(err).
		Traceln("ReadDir call")

	return entries, err
}

func (i *instrumentedRoot) Readable(ctx context.Context, name string) error {
	err := i.root.Readable(ctx, name)
	i.increment("Readable", err)

	i.log(name).WithError(err).Traceln("Readable call")

	return err
}

func (i *instrumentedRoot) Open(ctx context.Context, name string) (File, error) {
	f, err := i.root.Open(ctx, name)
	i.increment("Open", err)

	i.log(name).WithError(err).Traceln("Open call")

	return f, err
}
