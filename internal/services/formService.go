package services

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"linkstash/internal/metrics"
	"linkstash/internal/models"
	"linkstash/internal/remote"
)

const (
	errFieldsRequired = "Both URL and title are required"
	errInvalidURL     = "Please enter a valid URL"
	errNotLoggedIn    = "You must be logged in to save bookmarks."
	errReauth         = "You must be logged in to add bookmarks. Please log in again."
	errSaveFallback   = "Failed to save bookmark. Please try again."
)

// BookmarkForm holds the add/edit form's transient state. An empty EditID
// means create mode. The form never touches list state directly; a
// successful submit clears the fields and invokes the success callback, in
// that order, and the caller decides how to refresh.
type BookmarkForm struct {
	store remote.BookmarkStore

	url        string
	title      string
	editID     string
	submitting bool
	errMsg     string

	onSuccess func()
}

func NewBookmarkForm(store remote.BookmarkStore, onSuccess func()) *BookmarkForm {
	return &BookmarkForm{store: store, onSuccess: onSuccess}
}

func (f *BookmarkForm) SetFields(rawURL, title string) {
	f.url = rawURL
	f.title = title
	f.errMsg = ""
}

// SetEditTarget switches the form to update mode for the given record.
func (f *BookmarkForm) SetEditTarget(id string) {
	f.editID = id
}

func (f *BookmarkForm) URL() string      { return f.url }
func (f *BookmarkForm) Title() string    { return f.title }
func (f *BookmarkForm) EditID() string   { return f.editID }
func (f *BookmarkForm) Err() string      { return f.errMsg }
func (f *BookmarkForm) Submitting() bool { return f.submitting }

// validate runs the field checks in order, stopping at the first failure.
// Validation failures never reach the backend.
func (f *BookmarkForm) validate() error {
	if strings.TrimSpace(f.url) == "" || strings.TrimSpace(f.title) == "" {
		return errors.New(errFieldsRequired)
	}
	u, err := url.Parse(strings.TrimSpace(f.url))
	if err != nil || !u.IsAbs() || u.Host == "" {
		return errors.New(errInvalidURL)
	}
	return nil
}

// Submit validates and pushes the form to the backend. On failure the form
// stays populated so the user can correct and resubmit; the returned error
// carries the user-facing message, also available via Err.
func (f *BookmarkForm) Submit(ctx context.Context, sess *models.Session) error {
	f.errMsg = ""

	if err := f.validate(); err != nil {
		f.errMsg = err.Error()
		return err
	}

	if sess == nil {
		f.errMsg = errNotLoggedIn
		return errors.New(errNotLoggedIn)
	}

	f.submitting = true
	defer func() { f.submitting = false }()

	var err error
	if f.editID != "" {
		_, err = f.store.Update(ctx, sess, f.editID, f.url, f.title)
	} else {
		_, err = f.store.Insert(ctx, sess, f.url, f.title)
	}

	if err != nil {
		log.Error().Err(err).Str("userID", sess.UserID).Str("editID", f.editID).Msg("Error saving bookmark")
		f.errMsg = saveErrorMessage(err)
		return errors.New(f.errMsg)
	}

	if f.editID != "" {
		metrics.BookmarkUpdatedTotal.Inc()
	} else {
		metrics.BookmarkCreatedTotal.Inc()
	}
	log.Info().Str("userID", sess.UserID).Str("editID", f.editID).Msg("Bookmark saved")

	f.url = ""
	f.title = ""
	if f.onSuccess != nil {
		f.onSuccess()
	}
	return nil
}

// saveErrorMessage maps known provider failure text to user-facing wording;
// anything unrecognized falls back to the raw message.
func saveErrorMessage(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "row-level security"):
		return errReauth
	case strings.Contains(msg, "Invalid URL"):
		return errInvalidURL + "."
	case msg != "":
		return msg
	default:
		return errSaveFallback
	}
}
