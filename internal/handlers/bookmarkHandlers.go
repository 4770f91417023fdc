package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"linkstash/internal/models"
	"linkstash/internal/remote"
	"linkstash/internal/services"
	"linkstash/internal/views"
)

type BookmarkHandler struct {
	identity remote.IdentityService
	registry *services.Registry
	store    remote.BookmarkStore
}

func NewBookmarkHandler(identity remote.IdentityService, registry *services.Registry, store remote.BookmarkStore) *BookmarkHandler {
	return &BookmarkHandler{identity: identity, registry: registry, store: store}
}

// requireSession redirects unauthenticated visitors to the landing page and
// returns nil.
func (h *BookmarkHandler) requireSession(w http.ResponseWriter, r *http.Request) *models.Session {
	sess, err := h.identity.CurrentSession(r)
	if err != nil || sess == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return nil
	}
	return sess
}

func (h *BookmarkHandler) GetBookmarks(w http.ResponseWriter, r *http.Request) {
	sess := h.requireSession(w, r)
	if sess == nil {
		return
	}
	ctrl := h.registry.For(sess)

	query := r.URL.Query()
	if query.Has("q") {
		ctrl.SetSearch(query.Get("q"))
	}
	if raw := query.Get("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil {
			ctrl.SetPage(page)
		}
	}

	data := h.pageData(ctrl, sess)
	switch {
	case query.Get("form") == "new":
		data.FormOpen = true
	case query.Get("edit") != "":
		id := query.Get("edit")
		for _, bm := range data.State.Items {
			if bm.ID == id {
				data.FormOpen = true
				data.EditID = id
				data.FormURL = bm.URL
				data.FormTitle = bm.Title
				break
			}
		}
	}

	views.Render(w, "bookmarks.html", data)
}

// SaveBookmark handles both create and update posts; a non-empty id field
// selects update mode. On failure the form re-renders open and populated.
func (h *BookmarkHandler) SaveBookmark(w http.ResponseWriter, r *http.Request) {
	sess := h.requireSession(w, r)
	if sess == nil {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	ctrl := h.registry.For(sess)

	form := services.NewBookmarkForm(h.store, ctrl.Refresh)
	form.SetFields(r.PostFormValue("url"), r.PostFormValue("title"))
	if id := r.PostFormValue("id"); id != "" {
		form.SetEditTarget(id)
	}

	if err := form.Submit(r.Context(), sess); err != nil {
		data := h.pageData(ctrl, sess)
		data.FormOpen = true
		data.FormURL = form.URL()
		data.FormTitle = form.Title()
		data.FormError = form.Err()
		data.EditID = form.EditID()
		views.Render(w, "bookmarks.html", data)
		return
	}

	http.Redirect(w, r, "/bookmarks", http.StatusSeeOther)
}

func (h *BookmarkHandler) DeleteBookmark(w http.ResponseWriter, r *http.Request) {
	sess := h.requireSession(w, r)
	if sess == nil {
		return
	}
	id := mux.Vars(r)["id"]
	if id == "" {
		http.Error(w, "Missing ID parameter", http.StatusBadRequest)
		return
	}

	ctrl := h.registry.For(sess)
	if err := ctrl.Delete(r.Context(), id); err != nil {
		http.Error(w, "Failed to delete bookmark", http.StatusBadGateway)
		return
	}
	http.Redirect(w, r, "/bookmarks", http.StatusSeeOther)
}

// Events streams a server-sent event every time the user's snapshot is
// replaced, so every open session re-renders live.
func (h *BookmarkHandler) Events(w http.ResponseWriter, r *http.Request) {
	sess := h.requireSession(w, r)
	if sess == nil {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	ctrl := h.registry.For(sess)
	updates, cancel := ctrl.Watch()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case _, open := <-updates:
			if !open {
				return
			}
			fmt.Fprint(w, "data: refresh\n\n")
			flusher.Flush()
		}
	}
}

func (h *BookmarkHandler) pageData(ctrl *services.ListController, sess *models.Session) views.BookmarksData {
	state := ctrl.Snapshot()
	log.Debug().Str("userID", sess.UserID).Int("page", state.Page).Int("total", state.Total).Msg("Rendering bookmark list")
	return views.BookmarksData{
		User:       sess.User(),
		State:      state,
		TotalPages: ctrl.TotalPages(),
	}
}
