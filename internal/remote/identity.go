package remote

import (
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/github"
	"github.com/markbates/goth/providers/google"
	"github.com/rs/zerolog/log"

	"linkstash/internal/models"
)

const (
	SessionCookie = "linkstash_session"
	MaxAge        = 86400 * 30
	IsProd        = false

	returnToSession = "linkstash_return"
	returnToKey     = "return_to"
)

type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// IdentityService wraps the third-party sign-in flow and the session cookie
// derived from it. All credentials live with the provider; the session token
// doubles as the bearer token for the data and realtime services.
type IdentityService interface {
	EstablishSession(w http.ResponseWriter, u goth.User) (*models.Session, error)
	CurrentSession(r *http.Request) (*models.Session, error)
	SignOut(w http.ResponseWriter, r *http.Request) error
	SetReturnTo(w http.ResponseWriter, r *http.Request, target string)
	TakeReturnTo(w http.ResponseWriter, r *http.Request) string
}

type identityService struct {
	jwtSecret []byte
	store     *sessions.CookieStore
}

func NewIdentityService() IdentityService {
	return &identityService{
		jwtSecret: []byte(os.Getenv("JWT_SECRET")),
		store:     gothic.Store.(*sessions.CookieStore),
	}
}

// InitProviders registers the OAuth providers and the cookie store backing
// the handshake state. Must run once, before any auth route is served.
func InitProviders() {
	sessionSecret := os.Getenv("SESSION_SECRET")
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	store := sessions.NewCookieStore([]byte(sessionSecret))
	store.MaxAge(MaxAge)
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.Secure = IsProd
	store.Options.SameSite = http.SameSiteLaxMode

	gothic.Store = store

	goth.UseProviders(
		google.New(os.Getenv("GOOGLE_CLIENT_ID"), os.Getenv("GOOGLE_CLIENT_SECRET"), baseURL+"/auth/google/callback"),
		github.New(os.Getenv("GITHUB_CLIENT_ID"), os.Getenv("GITHUB_CLIENT_SECRET"), baseURL+"/auth/github/callback"),
	)
	log.Info().Msg("OAuth providers initialized")
}

func (s *identityService) EstablishSession(w http.ResponseWriter, u goth.User) (*models.Session, error) {
	if u.UserID == "" || u.Email == "" {
		log.Error().Str("provider", u.Provider).Msg("Provider returned incomplete user data")
		return nil, errors.New("missing user id or email from provider")
	}

	claims := &Claims{
		Email: u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.UserID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(MaxAge * time.Second)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		log.Error().Err(err).Str("email", u.Email).Msg("Error signing session token")
		return nil, err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   MaxAge,
		HttpOnly: true,
		Secure:   IsProd,
		SameSite: http.SameSiteLaxMode,
	})

	log.Info().Str("userID", u.UserID).Str("email", u.Email).Msg("Session established")
	return &models.Session{UserID: u.UserID, Email: u.Email, Token: token}, nil
}

// CurrentSession returns the session carried by the request cookie, or
// (nil, nil) when the visitor is unauthenticated or the token has expired.
func (s *identityService) CurrentSession(r *http.Request) (*models.Session, error) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return nil, nil
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(cookie.Value, claims, func(t *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, nil
	}

	return &models.Session{UserID: claims.Subject, Email: claims.Email, Token: cookie.Value}, nil
}

func (s *identityService) SignOut(w http.ResponseWriter, r *http.Request) error {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	return gothic.Logout(w, r)
}

// SetReturnTo remembers where to send the user after the provider round trip.
func (s *identityService) SetReturnTo(w http.ResponseWriter, r *http.Request, target string) {
	if target == "" {
		return
	}
	session, _ := s.store.Get(r, returnToSession)
	session.Values[returnToKey] = target
	if err := session.Save(r, w); err != nil {
		log.Warn().Err(err).Msg("Failed to store return target")
	}
}

func (s *identityService) TakeReturnTo(w http.ResponseWriter, r *http.Request) string {
	session, _ := s.store.Get(r, returnToSession)
	target, _ := session.Values[returnToKey].(string)
	delete(session.Values, returnToKey)
	_ = session.Save(r, w)
	return target
}
