package server

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"bookstore/config"
)

// NewSPAHandler serves the built front end from cfg.Root. Paths that do not
// name an existing file get index.html so client-side routes resolve. In
// development with a dev server URL set, requests are proxied there instead.
func NewSPAHandler(cfg config.SPAConfig, development bool) (http.Handler, error) {
	if development && cfg.DevServerURL != "" {
		target, err := url.Parse(cfg.DevServerURL)
		if err != nil {
			return nil, fmt.Errorf("parse spa.dev_server_url: %w", err)
		}
		return httputil.NewSingleHostReverseProxy(target), nil
	}
	return &spaHandler{root: cfg.Root, files: http.FileServer(http.Dir(cfg.Root))}, nil
}

type spaHandler struct {
	root  string
	files http.Handler
}

func (h *spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	name := path.Clean("/" + r.URL.Path)
	full := filepath.Join(h.root, filepath.FromSlash(name))
	if info, err := os.Stat(full); err == nil && !info.IsDir() {
		h.files.ServeHTTP(w, r)
		return
	}

	index := filepath.Join(h.root, "index.html")
	if _, err := os.Stat(index); err != nil {
		http.NotFound(w, r)
		return
	}
	// Only extensionless paths fall back to the index.
	if strings.Contains(path.Base(name), ".") {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, index)
}
