package mimetype

import (
	"mime"
	"sync"

	log "github.com/sirupsen/logrus"
	"gitlab.com/gitlab-org/go-mimedb"
)

// Default is returned for extensions nobody knows about
const Default = "application/octet-stream"

var extraMIMETypes = map[string]string{
	".avif": "image/avif",
	".md":   "text/markdown; charset=utf-8",
}

var loadOnce sync.Once

// Load registers the extended MIME database and the extra types with the
// mime package. It is safe to call more than once.
func Load() {
	loadOnce.Do(func() {
		if err := mimedb.LoadTypes(); err != nil {
			log.WithError(err).Warn("Loading extended MIME database failed")
		}

		for ext, mimeType := range extraMIMETypes {
			if err := mime.AddExtensionType(ext, mimeType); err != nil {
				log.WithError(err).Errorf("failed to add extension: %q with MIME type: %q", ext, mimeType)
			}
		}
	})
}

// Lookup returns the MIME type for ext, the extension including its leading
// dot. Unknown or empty extensions yield Default.
func Lookup(ext string) string {
	Load()

	if ext == "" {
		return Default
	}

	if contentType := mime.TypeByExtension(ext); contentType != "" {
		return contentType
	}

	return Default
}
