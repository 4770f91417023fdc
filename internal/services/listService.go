package services

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"linkstash/internal/metrics"
	"linkstash/internal/models"
	"linkstash/internal/remote"
)

const (
	DefaultPageSize = 10
	// Quiet period after the last keystroke before a search fetch fires.
	DefaultDebounce = 500 * time.Millisecond
)

// ListState is the snapshot a view renders. Search is the raw input text,
// Term the debounced value actually applied to fetches. Refresh counts
// completed mutations and exists only to force a refetch after each one.
type ListState struct {
	Page    int
	Search  string
	Term    string
	Total   int
	Items   []models.Bookmark
	Refresh int
}

// ListController owns the visible page of one user's bookmarks and funnels
// every trigger source (page change, settled search, completed mutation,
// realtime change event) into a single authoritative refetch. The snapshot
// is replaced atomically after each successful fetch; a failed fetch leaves
// the previous snapshot untouched. Overlapping fetches are not sequenced:
// the last one to complete wins.
type ListController struct {
	store    remote.BookmarkStore
	changes  remote.ChangeSubscriber
	sess     *models.Session
	pageSize int
	debounce time.Duration

	mu          sync.Mutex
	state       ListState
	timer       *time.Timer
	sub         io.Closer
	ctx         context.Context
	cancel      context.CancelFunc
	watchers    map[int]chan struct{}
	nextWatcher int
	closed      bool
}

func NewListController(store remote.BookmarkStore, changes remote.ChangeSubscriber, sess *models.Session) *ListController {
	return newListController(store, changes, sess, DefaultPageSize, DefaultDebounce)
}

func newListController(store remote.BookmarkStore, changes remote.ChangeSubscriber, sess *models.Session, pageSize int, debounce time.Duration) *ListController {
	return &ListController{
		store:    store,
		changes:  changes,
		sess:     sess,
		pageSize: pageSize,
		debounce: debounce,
		state:    ListState{Page: 1, Items: []models.Bookmark{}},
		watchers: map[int]chan struct{}{},
	}
}

// Start performs the initial fetch and opens the change subscription. A
// failed initial fetch is logged, not fatal; a failed subscription is
// returned so the caller can decide whether to run without live updates.
func (l *ListController) Start(ctx context.Context) error {
	l.mu.Lock()
	l.ctx, l.cancel = context.WithCancel(ctx)
	l.mu.Unlock()

	l.fetch(1, "")

	if l.changes == nil {
		return nil
	}
	sub, err := l.changes.Subscribe(l.ctx, l.sess, l.handleChange)
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.sub = sub
	l.mu.Unlock()
	return nil
}

func (l *ListController) Snapshot() ListState {
	l.mu.Lock()
	defer l.mu.Unlock()
	snapshot := l.state
	snapshot.Items = append([]models.Bookmark(nil), l.state.Items...)
	return snapshot
}

func (l *ListController) PageSize() int {
	return l.pageSize
}

func (l *ListController) TotalPages() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totalPagesLocked()
}

func (l *ListController) totalPagesLocked() int {
	return (l.state.Total + l.pageSize - 1) / l.pageSize
}

// SetPage navigates to page p, clamped to [1, totalPages]. A request for a
// page outside that range never reaches the store; a no-op move fetches
// nothing.
func (l *ListController) SetPage(p int) {
	l.mu.Lock()
	high := l.totalPagesLocked()
	if high < 1 {
		high = 1
	}
	if p < 1 {
		p = 1
	}
	if p > high {
		p = high
	}
	if p == l.state.Page || l.closed {
		l.mu.Unlock()
		return
	}
	l.state.Page = p
	term := l.state.Term
	l.mu.Unlock()

	l.fetch(p, term)
}

func (l *ListController) NextPage() {
	l.SetPage(l.Snapshot().Page + 1)
}

func (l *ListController) PrevPage() {
	l.SetPage(l.Snapshot().Page - 1)
}

// SetSearch records a keystroke. The page resets to 1 immediately so a new
// query always starts at the first page; the fetch itself only fires once
// the debounce window has passed without another keystroke.
func (l *ListController) SetSearch(q string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if q == l.state.Search || l.closed {
		return
	}
	l.state.Search = q
	l.state.Page = 1
	if l.timer != nil {
		l.timer.Stop()
	}
	l.timer = time.AfterFunc(l.debounce, l.flushSearch)
}

func (l *ListController) flushSearch() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.state.Term = l.state.Search
	page, term := l.state.Page, l.state.Term
	l.mu.Unlock()

	metrics.SearchesTotal.Inc()
	l.fetch(page, term)
}

// Refresh signals a completed mutation elsewhere and refetches the current
// page so counts and contents stay consistent with the server.
func (l *ListController) Refresh() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.state.Refresh++
	page, term := l.state.Page, l.state.Term
	l.mu.Unlock()

	l.fetch(page, term)
}

// Delete removes a record server-side. The row is never spliced out
// locally; the refetch keeps pagination consistent even when rows shift in
// from the following page.
func (l *ListController) Delete(ctx context.Context, id string) error {
	if err := l.store.Delete(ctx, l.sess, id); err != nil {
		log.Error().Err(err).Str("userID", l.sess.UserID).Str("bookmarkID", id).Msg("Error deleting bookmark")
		return err
	}
	metrics.BookmarkDeletedTotal.Inc()
	log.Info().Str("userID", l.sess.UserID).Str("bookmarkID", id).Msg("Bookmark deleted")
	l.Refresh()
	return nil
}

// handleChange refetches the currently displayed page and term, keeping
// pagination stable when unrelated rows change.
func (l *ListController) handleChange(event models.ChangeEvent) {
	log.Debug().Str("kind", event.Kind).Str("userID", l.sess.UserID).Msg("Change notification received")
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	page, term := l.state.Page, l.state.Term
	l.mu.Unlock()

	l.fetch(page, term)
}

func (l *ListController) fetch(page int, term string) {
	l.mu.Lock()
	ctx := l.ctx
	l.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}

	result, err := l.store.List(ctx, l.sess, page, l.pageSize, term)
	if err != nil {
		log.Error().Err(err).Str("userID", l.sess.UserID).Int("page", page).Msg("Error fetching bookmarks")
		return
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.state.Items = result.Items
	l.state.Total = result.Total
	l.notifyLocked()
	l.mu.Unlock()
}

// Watch returns a channel that fires after every successful snapshot swap,
// plus a cancel func the caller must invoke when done.
func (l *ListController) Watch() (<-chan struct{}, func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := l.nextWatcher
	l.nextWatcher++
	ch := make(chan struct{}, 1)
	l.watchers[id] = ch
	return ch, func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.watchers, id)
	}
}

func (l *ListController) notifyLocked() {
	for _, ch := range l.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Close tears down the debounce timer, the change subscription, and every
// watcher. Safe to call more than once.
func (l *ListController) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	if l.timer != nil {
		l.timer.Stop()
	}
	sub := l.sub
	cancel := l.cancel
	for id, ch := range l.watchers {
		close(ch)
		delete(l.watchers, id)
	}
	l.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if sub != nil {
		return sub.Close()
	}
	return nil
}
