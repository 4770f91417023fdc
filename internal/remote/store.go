package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"linkstash/internal/models"
	"linkstash/internal/utils"
)

// BookmarkStore wraps the hosted bookmark table. Every operation performs
// exactly one remote call and propagates the backend's error unchanged.
type BookmarkStore interface {
	List(ctx context.Context, sess *models.Session, page, pageSize int, search string) (*models.BookmarkPage, error)
	Insert(ctx context.Context, sess *models.Session, rawURL, title string) (*models.Bookmark, error)
	Update(ctx context.Context, sess *models.Session, id, rawURL, title string) (*models.Bookmark, error)
	Delete(ctx context.Context, sess *models.Session, id string) error
}

type bookmarkStore struct {
	client *Client
}

func NewBookmarkStore(client *Client) BookmarkStore {
	return &bookmarkStore{client: client}
}

func (s *bookmarkStore) observe(operation string, status *string) *prometheus.Timer {
	return prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.RemoteCallDurationSeconds.WithLabelValues(operation, "bookmark", *status).Observe(v)
	}))
}

// List fetches one page, newest first. The search term, trimmed, is matched
// by the backend case-insensitively as a substring of title or url; a blank
// term returns the unfiltered set. Total is the exact count for the filter.
func (s *bookmarkStore) List(ctx context.Context, sess *models.Session, page, pageSize int, search string) (*models.BookmarkPage, error) {
	operation := "list"
	status := "success"
	timer := s.observe(operation, &status)
	defer timer.ObserveDuration()

	query := url.Values{}
	query.Set("offset", strconv.Itoa((page-1)*pageSize))
	query.Set("limit", strconv.Itoa(pageSize))
	query.Set("order", "created_at.desc")
	if term := strings.TrimSpace(search); term != "" {
		query.Set("q", term)
	}

	var result models.BookmarkPage
	if err := s.client.do(ctx, http.MethodGet, "/v1/bookmarks", query, sess.Token, nil, &result); err != nil {
		status = "error"
		utils.RemoteCallErrorsTotal.WithLabelValues(operation, "bookmark").Inc()
		return nil, fmt.Errorf("failed to retrieve bookmarks: %w", err)
	}
	if result.Items == nil {
		result.Items = []models.Bookmark{}
	}
	return &result, nil
}

func (s *bookmarkStore) Insert(ctx context.Context, sess *models.Session, rawURL, title string) (*models.Bookmark, error) {
	operation := "insert"
	status := "success"
	timer := s.observe(operation, &status)
	defer timer.ObserveDuration()

	body := models.InsertBookmarkRequestBody{
		URL:    strings.TrimSpace(rawURL),
		Title:  strings.TrimSpace(title),
		UserID: sess.UserID,
	}

	var created models.Bookmark
	if err := s.client.do(ctx, http.MethodPost, "/v1/bookmarks", nil, sess.Token, body, &created); err != nil {
		status = "error"
		utils.RemoteCallErrorsTotal.WithLabelValues(operation, "bookmark").Inc()
		return nil, err
	}
	return &created, nil
}

func (s *bookmarkStore) Update(ctx context.Context, sess *models.Session, id, rawURL, title string) (*models.Bookmark, error) {
	operation := "update"
	status := "success"
	timer := s.observe(operation, &status)
	defer timer.ObserveDuration()

	body := models.UpdateBookmarkRequestBody{
		URL:   strings.TrimSpace(rawURL),
		Title: strings.TrimSpace(title),
	}

	var updated models.Bookmark
	if err := s.client.do(ctx, http.MethodPatch, "/v1/bookmarks/"+url.PathEscape(id), nil, sess.Token, body, &updated); err != nil {
		status = "error"
		utils.RemoteCallErrorsTotal.WithLabelValues(operation, "bookmark").Inc()
		return nil, err
	}
	return &updated, nil
}

func (s *bookmarkStore) Delete(ctx context.Context, sess *models.Session, id string) error {
	operation := "delete"
	status := "success"
	timer := s.observe(operation, &status)
	defer timer.ObserveDuration()

	if err := s.client.do(ctx, http.MethodDelete, "/v1/bookmarks/"+url.PathEscape(id), nil, sess.Token, nil, nil); err != nil {
		status = "error"
		utils.RemoteCallErrorsTotal.WithLabelValues(operation, "bookmark").Inc()
		return fmt.Errorf("failed to delete bookmark: %w", err)
	}
	return nil
}
