package local

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"gitlab.com/gitlab-org/gitlab-dirindex/internal/vfs"
)

type invalidPathError struct {
	rootPath      string
	requestedPath string
}

func (i *invalidPathError) Error() string {
	return fmt.Sprintf("%q should be in %q", i.requestedPath, i.rootPath)
}

// Root is a vfs.Root backed by a directory on the local disk. Every name
// handed to it is lexically confined to that directory.
type Root struct {
	path string
}

// Path returns the absolute canonical path of the root
func (r *Root) Path() string {
	return r.path
}

func (r *Root) validatePath(path string) (string, string, error) {
	fullPath := filepath.Join(r.path, path)

	if r.path == fullPath {
		return fullPath, "", nil
	}

	vfsPath := strings.TrimPrefix(fullPath, r.path+"/")

	// The requested path resolved to somewhere outside of the `r.path` directory
	if fullPath == vfsPath {
		return "", "", &invalidPathError{rootPath: r.path, requestedPath: fullPath}
	}

	return fullPath, vfsPath, nil
}

func (r *Root) Lstat(ctx context.Context, name string) (os.FileInfo, error) {
	fullPath, _, err := r.validatePath(name)
	if err != nil {
		return nil, err
	}

	return os.Lstat(fullPath)
}

// Stat follows symlinks of the final path element
func (r *Root) Stat(ctx context.Context, name string) (os.FileInfo, error) {
	fullPath, _, err := r.validatePath(name)
	if err != nil {
		return nil, err
	}

	return os.Stat(fullPath)
}

// Readlink returns the target of the link, always relative to the directory
// containing the link
func (r *Root) Readlink(ctx context.Context, name string) (string, error) {
	fullPath, _, err := r.validatePath(name)
	if err != nil {
		return "", err
	}

	target, err := os.Readlink(fullPath)
	if err != nil {
		return "", err
	}

	if filepath.IsAbs(target) {
		return filepath.Rel(filepath.Dir(fullPath), target)
	}

	return target, nil
}

func (r *Root) ReadDir(ctx context.Context, name string) ([]fs.DirEntry, error) {
	fullPath, _, err := r.validatePath(name)
	if err != nil {
		return nil, err
	}

	return os.ReadDir(fullPath)
}

// Readable checks read permission with access(2), so it also reports
// directories that can not be listed
func (r *Root) Readable(ctx context.Context, name string) error {
	fullPath, _, err := r.validatePath(name)
	if err != nil {
		return err
	}

	if err := unix.Access(fullPath, unix.R_OK); err != nil {
		return &fs.PathError{Op: "access", Path: fullPath, Err: err}
	}

	return nil
}

func (r *Root) Open(ctx context.Context, name string) (vfs.File, error) {
	fullPath, _, err := r.validatePath(name)
	if err != nil {
		return nil, err
	}

	file, err := os.OpenFile(fullPath, os.O_RDONLY|unix.O_NOFOLLOW, 0)
	if err != nil {
		return nil, err
	}

	return file, nil
}
