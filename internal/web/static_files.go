package web

import (
	"bytes"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

//go:embed static/*
var embeddedStaticFiles embed.FS

// pageAsset is an embedded file served at a fixed route. Its body and ETag
// are read once on first request.
type pageAsset struct {
	file        string
	contentType string
	headers     map[string]string

	once sync.Once
	body []byte
	etag string
	err  error
}

var (
	indexAsset = &pageAsset{
		file:        "static/index.html",
		contentType: "text/html; charset=utf-8",
		headers: map[string]string{
			"Cache-Control":          "no-cache",
			"X-Content-Type-Options": "nosniff",
			"Referrer-Policy":        "strict-origin-when-cross-origin",
		},
	}
	serviceWorkerAsset = &pageAsset{
		file:        "static/sw.js",
		contentType: "application/javascript; charset=utf-8",
		headers: map[string]string{
			"Cache-Control":          "no-cache",
			"Service-Worker-Allowed": "/",
		},
	}
)

func (a *pageAsset) load() error {
	a.once.Do(func() {
		a.body, a.err = embeddedStaticFiles.ReadFile(a.file)
		if a.err == nil {
			sum := sha256.Sum256(a.body)
			a.etag = `"` + hex.EncodeToString(sum[:8]) + `"`
		}
	})
	return a.err
}

// serve writes the asset, answering conditional requests with 304.
func (a *pageAsset) serve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeAPIError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
		return
	}
	if err := a.load(); err != nil {
		webLog.Error("embedded_asset_missing", slog.String("file", a.file), slog.String("error", err.Error()))
		http.Error(w, "asset unavailable", http.StatusInternalServerError)
		return
	}
	h := w.Header()
	for k, v := range a.headers {
		h.Set(k, v)
	}
	h.Set("Content-Type", a.contentType)
	h.Set("ETag", a.etag)
	http.ServeContent(w, r, a.file, time.Time{}, bytes.NewReader(a.body))
}

func (s *Server) staticFileServer() http.Handler {
	sub, err := fs.Sub(embeddedStaticFiles, "static")
	if err != nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "static assets unavailable", http.StatusInternalServerError)
		})
	}
	return http.FileServer(http.FS(sub))
}

// handleIndex serves the page for / and for /blog/{slug} deep links, which
// the page resolves on the client.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if p := r.URL.Path; p != "/" && !strings.HasPrefix(p, "/blog/") {
		http.NotFound(w, r)
		return
	}
	indexAsset.serve(w, r)
}

func (s *Server) handleServiceWorker(w http.ResponseWriter, r *http.Request) {
	serviceWorkerAsset.serve(w, r)
}
