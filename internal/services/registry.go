package services

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"linkstash/internal/models"
	"linkstash/internal/remote"
)

// Registry hands out one ListController per authenticated user, started
// lazily on first use and closed on logout or shutdown.
type Registry struct {
	store   remote.BookmarkStore
	changes remote.ChangeSubscriber
	ctx     context.Context // outlives any single request

	mu          sync.Mutex
	controllers map[string]*ListController
}

func NewRegistry(ctx context.Context, store remote.BookmarkStore, changes remote.ChangeSubscriber) *Registry {
	return &Registry{
		store:       store,
		changes:     changes,
		ctx:         ctx,
		controllers: map[string]*ListController{},
	}
}

// For returns the user's controller, creating and starting it on first use.
func (r *Registry) For(sess *models.Session) *ListController {
	r.mu.Lock()
	if ctrl, ok := r.controllers[sess.UserID]; ok {
		r.mu.Unlock()
		return ctrl
	}
	ctrl := NewListController(r.store, r.changes, sess)
	r.controllers[sess.UserID] = ctrl
	r.mu.Unlock()

	if err := ctrl.Start(r.ctx); err != nil {
		log.Warn().Err(err).Str("userID", sess.UserID).Msg("Change subscription unavailable; live updates disabled")
	}
	return ctrl
}

// Drop closes and forgets the user's controller, e.g. on sign-out.
func (r *Registry) Drop(userID string) {
	r.mu.Lock()
	ctrl, ok := r.controllers[userID]
	delete(r.controllers, userID)
	r.mu.Unlock()
	if ok {
		if err := ctrl.Close(); err != nil {
			log.Warn().Err(err).Str("userID", userID).Msg("Error closing list controller")
		}
	}
}

// CloseAll tears down every controller. Called on server shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	controllers := r.controllers
	r.controllers = map[string]*ListController{}
	r.mu.Unlock()

	for userID, ctrl := range controllers {
		if err := ctrl.Close(); err != nil {
			log.Warn().Err(err).Str("userID", userID).Msg("Error closing list controller")
		}
	}
}
