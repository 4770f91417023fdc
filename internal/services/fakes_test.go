package services

import (
	"context"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"linkstash/internal/models"
	"linkstash/internal/remote"
)

// fakeStore mimics the hosted table's contract: case-insensitive substring
// match on title or url, newest first, exact total count for the filter.
type fakeStore struct {
	mu      sync.Mutex
	rows    []models.Bookmark
	nextID  int
	listErr error
	saveErr error

	listCalls   []listCall
	insertCalls int
	updateCalls int
	deleteCalls int
}

type listCall struct {
	page     int
	pageSize int
	term     string
}

func newFakeStore(rows ...models.Bookmark) *fakeStore {
	return &fakeStore{rows: rows, nextID: len(rows) + 1}
}

func (f *fakeStore) List(ctx context.Context, sess *models.Session, page, pageSize int, search string) (*models.BookmarkPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls = append(f.listCalls, listCall{page: page, pageSize: pageSize, term: strings.TrimSpace(search)})
	if f.listErr != nil {
		return nil, f.listErr
	}

	term := strings.ToLower(strings.TrimSpace(search))
	matched := []models.Bookmark{}
	for _, row := range f.rows {
		if term == "" ||
			strings.Contains(strings.ToLower(row.Title), term) ||
			strings.Contains(strings.ToLower(row.URL), term) {
			matched = append(matched, row)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	offset := (page - 1) * pageSize
	if offset > total {
		offset = total
	}
	end := offset + pageSize
	if end > total {
		end = total
	}
	items := append([]models.Bookmark{}, matched[offset:end]...)
	return &models.BookmarkPage{Items: items, Total: total}, nil
}

func (f *fakeStore) Insert(ctx context.Context, sess *models.Session, rawURL, title string) (*models.Bookmark, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insertCalls++
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	row := models.Bookmark{
		ID:        "bm-" + strconv.Itoa(f.nextID),
		URL:       strings.TrimSpace(rawURL),
		Title:     strings.TrimSpace(title),
		UserID:    sess.UserID,
		CreatedAt: time.Now(),
	}
	f.nextID++
	f.rows = append(f.rows, row)
	return &row, nil
}

func (f *fakeStore) Update(ctx context.Context, sess *models.Session, id, rawURL, title string) (*models.Bookmark, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows[i].URL = strings.TrimSpace(rawURL)
			f.rows[i].Title = strings.TrimSpace(title)
			row := f.rows[i]
			return &row, nil
		}
	}
	return nil, &remote.Error{Status: 404, Message: "bookmark not found"}
}

func (f *fakeStore) Delete(ctx context.Context, sess *models.Session, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return &remote.Error{Status: 404, Message: "bookmark not found"}
}

func (f *fakeStore) calls() []listCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]listCall{}, f.listCalls...)
}

// fakeSubscriber hands the controller's handler back to the test so it can
// emit change events on demand.
type fakeSubscriber struct {
	mu      sync.Mutex
	handler func(models.ChangeEvent)
	closed  bool
}

type nopCloser struct{ sub *fakeSubscriber }

func (c nopCloser) Close() error {
	c.sub.mu.Lock()
	defer c.sub.mu.Unlock()
	c.sub.closed = true
	return nil
}

func (f *fakeSubscriber) Subscribe(ctx context.Context, sess *models.Session, handler func(models.ChangeEvent)) (io.Closer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler = handler
	return nopCloser{sub: f}, nil
}

func (f *fakeSubscriber) emit(event models.ChangeEvent) {
	f.mu.Lock()
	handler := f.handler
	f.mu.Unlock()
	if handler != nil {
		handler(event)
	}
}
