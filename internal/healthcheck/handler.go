package healthcheck

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"gitlab.com/gitlab-org/gitlab-dirindex/internal/vfs"
)

// Handler is serving the application status check. The check fails while the
// served root directory can not be stat'ed.
func Handler(root vfs.Root) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")

		fi, err := root.Stat(r.Context(), "/")
		if err != nil || !fi.IsDir() {
			log.WithError(err).Warn("status check: root directory is not available")
			http.Error(w, "root directory unavailable", http.StatusServiceUnavailable)
			return
		}

		w.Write([]byte("success\n"))
	})
}
