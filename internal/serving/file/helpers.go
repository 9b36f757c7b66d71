package file

import (
	"io"
	"net/http"
	"path"

	"gitlab.com/gitlab-org/gitlab-dirindex/internal/mimetype"
	"gitlab.com/gitlab-org/gitlab-dirindex/internal/vfs"
)

// Detect file's content-type either by extension or mime-sniffing.
// Implementation is adapted from Golang's `http.serveContent()`
// See https://github.com/golang/go/blob/902fc114272978a40d2e65c2510a18e870077559/src/net/http/fs.go#L194
func (h *Handler) detectContentType(name string, file vfs.File) (string, error) {
	if contentType := h.mimeType(path.Ext(name)); contentType != mimetype.Default {
		return contentType, nil
	}

	var buf [512]byte

	// Using `io.ReadFull()` because `file.Read()` may be chunked.
	// Ignoring errors because we don't care if the 512 bytes cannot be read.
	n, _ := io.ReadFull(file, buf[:])

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	return http.DetectContentType(buf[:n]), nil
}
