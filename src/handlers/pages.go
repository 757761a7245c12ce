package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/username/tradejournal/src/logger"
	"github.com/username/tradejournal/src/utils"
)

// SPAHandler serves the built dashboard frontend from dir: existing files as
// is, every other path as index.html so client-side routing works.
func SPAHandler(dir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if dir == "" {
			utils.SendJSONErrorBody(w, utils.ErrorBody{Error: "Frontend is not configured", Code: "not_found"}, http.StatusNotFound)
			return
		}
		clean := filepath.Clean("/" + strings.TrimPrefix(r.URL.Path, "/"))
		if serveStatic(w, r, filepath.Join(dir, filepath.FromSlash(clean))) {
			return
		}
		w.Header().Set("Cache-Control", "no-cache")
		if !serveStatic(w, r, filepath.Join(dir, "index.html")) {
			logger.FromContext(r.Context()).Error("index.html missing from static dir", "dir", dir)
			http.NotFound(w, r)
		}
	})
}

func serveStatic(w http.ResponseWriter, r *http.Request, path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil || info.IsDir() {
		return false
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	return true
}
