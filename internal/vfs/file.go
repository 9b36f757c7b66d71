package vfs

import (
	"io"
	"os"
)

// File represents an open file, which will typically be the response body of a delegated request.
type File interface {
	io.Reader
	io.Seeker
	io.Closer
	Stat() (os.FileInfo, error)
}
