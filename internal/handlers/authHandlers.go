package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/markbates/goth/gothic"
	"github.com/rs/zerolog/log"

	"linkstash/internal/metrics"
	"linkstash/internal/remote"
	"linkstash/internal/services"
)

type AuthHandler struct {
	identity remote.IdentityService
	registry *services.Registry
}

func NewAuthHandler(identity remote.IdentityService, registry *services.Registry) *AuthHandler {
	return &AuthHandler{identity: identity, registry: registry}
}

// ProviderAuth starts the external sign-in round trip, remembering where to
// send the user afterwards.
func (a *AuthHandler) ProviderAuth(w http.ResponseWriter, r *http.Request) {
	provider := mux.Vars(r)["provider"]
	if provider == "" {
		log.Error().Msg("Provider not specified in URL")
		http.Error(w, "Provider not specified", http.StatusBadRequest)
		return
	}

	a.identity.SetReturnTo(w, r, r.URL.Query().Get("return_to"))

	log.Info().Str("provider", provider).Msg("Initiating authentication with provider")
	gothic.BeginAuthHandler(w, r)
}

func (a *AuthHandler) ProviderCallback(w http.ResponseWriter, r *http.Request) {
	user, err := gothic.CompleteUserAuth(w, r)
	if err != nil {
		log.Error().Err(err).Msg("Error completing user authentication")
		metrics.LoginAttemptsTotal.WithLabelValues("failed").Inc()
		http.Redirect(w, r, "/login", http.StatusTemporaryRedirect)
		return
	}

	if _, err := a.identity.EstablishSession(w, user); err != nil {
		log.Error().Err(err).Str("email", user.Email).Msg("Error establishing session after provider authentication")
		metrics.LoginAttemptsTotal.WithLabelValues("failed").Inc()
		http.Redirect(w, r, "/login", http.StatusTemporaryRedirect)
		return
	}
	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()

	target := a.identity.TakeReturnTo(w, r)
	if target == "" {
		target = "/bookmarks"
	}
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}

// Logout tears down the user's list controller before clearing the session,
// so the change subscription never outlives the user it was scoped to.
func (a *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if sess, _ := a.identity.CurrentSession(r); sess != nil {
		a.registry.Drop(sess.UserID)
		log.Info().Str("userID", sess.UserID).Msg("User signed out")
	}
	if err := a.identity.SignOut(w, r); err != nil {
		log.Warn().Err(err).Msg("Error clearing provider session")
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
