package handlers

import (
	"encoding/json"
	"net/http"

	"linkstash/internal/remote"
	"linkstash/internal/views"
)

type PageHandler struct {
	identity remote.IdentityService
}

func NewPageHandler(identity remote.IdentityService) *PageHandler {
	return &PageHandler{identity: identity}
}

func (h *PageHandler) Landing(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if sess, _ := h.identity.CurrentSession(r); sess != nil {
		http.Redirect(w, r, "/bookmarks", http.StatusSeeOther)
		return
	}
	views.Render(w, "landing.html", views.PageData{})
}

func (h *PageHandler) Login(w http.ResponseWriter, r *http.Request) {
	if sess, _ := h.identity.CurrentSession(r); sess != nil {
		http.Redirect(w, r, "/bookmarks", http.StatusSeeOther)
		return
	}
	views.Render(w, "login.html", views.PageData{})
}

func (h *PageHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "It's healthy"})
}
