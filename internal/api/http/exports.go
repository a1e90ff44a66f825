// internal/api/http/exports.go
package http

import (
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-exams/internal/storage"
)

// MountExports serves stored result exports. Mount it under /exports.
func MountExports(r chi.Router, bs storage.BlobStore) {
	// GET /exports/*  -> the blob at exports/<whatever follows>
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
		if rest == "" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		key := path.Join("exports", rest)
		rc, err := bs.Get(key)
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		defer rc.Close()
		if strings.HasSuffix(key, ".csv") {
			w.Header().Set("Content-Type", "text/csv")
			w.Header().Set("Content-Disposition", "attachment; filename=\""+path.Base(key)+"\"")
		} else {
			w.Header().Set("Content-Type", "application/octet-stream")
		}
		_, _ = io.Copy(w, rc)
	})
}
