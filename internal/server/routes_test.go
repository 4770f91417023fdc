package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/markbates/goth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkstash/internal/models"
	"linkstash/internal/remote"
	"linkstash/internal/services"
)

// fakeIdentity treats any request carrying the session cookie as signed in.
type fakeIdentity struct{}

func (fakeIdentity) EstablishSession(w http.ResponseWriter, u goth.User) (*models.Session, error) {
	return nil, nil
}

func (fakeIdentity) CurrentSession(r *http.Request) (*models.Session, error) {
	if cookie, err := r.Cookie(remote.SessionCookie); err == nil && cookie.Value != "" {
		return &models.Session{UserID: "u1", Email: "u1@example.com", Token: cookie.Value}, nil
	}
	return nil, nil
}

func (fakeIdentity) SignOut(w http.ResponseWriter, r *http.Request) error          { return nil }
func (fakeIdentity) SetReturnTo(http.ResponseWriter, *http.Request, string)        {}
func (fakeIdentity) TakeReturnTo(http.ResponseWriter, *http.Request) (target string) { return "" }

type staticStore struct {
	page models.BookmarkPage
}

func (s *staticStore) List(ctx context.Context, sess *models.Session, page, pageSize int, search string) (*models.BookmarkPage, error) {
	result := s.page
	return &result, nil
}

func (s *staticStore) Insert(ctx context.Context, sess *models.Session, rawURL, title string) (*models.Bookmark, error) {
	return &models.Bookmark{ID: "bm-new", URL: rawURL, Title: title, UserID: sess.UserID, CreatedAt: time.Now()}, nil
}

func (s *staticStore) Update(ctx context.Context, sess *models.Session, id, rawURL, title string) (*models.Bookmark, error) {
	return &models.Bookmark{ID: id, URL: rawURL, Title: title, UserID: sess.UserID}, nil
}

func (s *staticStore) Delete(ctx context.Context, sess *models.Session, id string) error {
	return nil
}

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := &staticStore{page: models.BookmarkPage{
		Items: []models.Bookmark{{
			ID: "bm-1", URL: "https://go.dev", Title: "The Go Programming Language",
			UserID: "u1", CreatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		}},
		Total: 1,
	}}
	registry := services.NewRegistry(context.Background(), store, nil)
	t.Cleanup(registry.CloseAll)

	s := &Server{
		identity: fakeIdentity{},
		store:    store,
		registry: registry,
	}
	ts := httptest.NewServer(s.RegisterRoutes())
	t.Cleanup(ts.Close)
	return ts
}

func noRedirects(ts *httptest.Server) *http.Client {
	client := *ts.Client()
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &client
}

func TestLandingRenders(t *testing.T) {
	ts := testServer(t)

	resp, err := ts.Client().Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Linkstash")
}

func TestHealthEndpoint(t *testing.T) {
	ts := testServer(t)

	resp, err := ts.Client().Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"It's healthy"}`, string(body))
}

func TestBookmarksRequiresSession(t *testing.T) {
	ts := testServer(t)

	resp, err := noRedirects(ts).Get(ts.URL + "/bookmarks")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"), "unauthenticated visitors land on the landing page")
}

func TestBookmarksRendersForAuthenticatedUser(t *testing.T) {
	ts := testServer(t)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/bookmarks", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: remote.SessionCookie, Value: "tok"})

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "The Go Programming Language")
	assert.Contains(t, string(body), "u1@example.com")
	assert.Contains(t, string(body), "Your Bookmarks (1)")
}

func TestSaveBookmarkValidationRendersInlineError(t *testing.T) {
	ts := testServer(t)

	form := url.Values{"url": {"not-a-url"}, "title": {"X"}}
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/bookmarks", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: remote.SessionCookie, Value: "tok"})

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Please enter a valid URL")
	assert.Contains(t, string(body), `value="not-a-url"`, "form stays populated on failure")
}

func TestMetricsExposed(t *testing.T) {
	ts := testServer(t)

	resp, err := ts.Client().Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
