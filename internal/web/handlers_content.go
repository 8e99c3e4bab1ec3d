package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/asheshgoplani/folio/internal/content"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiErrorResponse struct {
	Error apiError `json:"error"`
}

type siteResponse struct {
	Version  uint64        `json:"version"`
	Sections []string      `json:"sections"`
	Site     *content.Site `json:"site"`
}

type postsResponse struct {
	Posts []content.Post `json:"posts"`
}

func (s *Server) handleSite(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, s.siteSnapshot())
}

// siteSnapshot is the site with post bodies stripped.
func (s *Server) siteSnapshot() siteResponse {
	site := *s.content.Site()
	site.Posts = site.PostSummaries()
	return siteResponse{
		Version:  s.content.Version(),
		Sections: content.Sections(),
		Site:     &site,
	}
}

func (s *Server) handlePosts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, postsResponse{Posts: s.content.Site().PostSummaries()})
}

func (s *Server) handlePostBySlug(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
		return
	}

	const prefix = "/api/posts/"
	slug := strings.TrimPrefix(r.URL.Path, prefix)
	if slug == "" || strings.Contains(slug, "/") {
		writeAPIError(w, http.StatusBadRequest, "INVALID_REQUEST", "post slug is required")
		return
	}

	post, err := s.content.Site().Post(slug)
	if errors.Is(err, content.ErrPostNotFound) {
		writeAPIError(w, http.StatusNotFound, "NOT_FOUND", "post not found")
		return
	}
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to load post")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, apiErrorResponse{
		Error: apiError{
			Code:    code,
			Message: message,
		},
	})
}
