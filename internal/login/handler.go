// Package login implements the GitHub OAuth login flow: code
// exchange, idempotent user creation, and session cookie issuance.
package login

import (
	"context"
	"log"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	oauth2github "golang.org/x/oauth2/github"

	"github.com/opencontrib/octoken/internal/github"
	"github.com/opencontrib/octoken/internal/session"
)

// SessionCookie is the cookie carrying the session token.
const SessionCookie = "octoken_session"

// UserCreator is the directory write surface the login flow needs.
type UserCreator interface {
	CreateUserIfNotExists(ctx context.Context, username, name, token string) error
}

// Handler handles the GitHub OAuth callback
type Handler struct {
	oauth        *oauth2.Config
	users        UserCreator
	sessions     *session.Manager
	frontendBase string

	// fetchAccount resolves the access token to its GitHub account.
	// Swappable in tests.
	fetchAccount func(ctx context.Context, token string) (*github.Account, error)
}

// NewHandler creates a new login handler
func NewHandler(clientID, clientSecret string, users UserCreator, sessions *session.Manager, frontendBase string) *Handler {
	return &Handler{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     oauth2github.Endpoint,
		},
		users:        users,
		sessions:     sessions,
		frontendBase: frontendBase,
		fetchAccount: func(ctx context.Context, token string) (*github.Account, error) {
			return github.NewClient(token).AuthenticatedUser(ctx)
		},
	}
}

// Callback handles GET /auth/github/callback?code=... Every failure
// redirects to the frontend error page; the browser never sees error
// details.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		log.Printf("login.callback.missing_code")
		h.redirectError(w, r)
		return
	}

	tok, err := h.oauth.Exchange(r.Context(), code)
	if err != nil {
		log.Printf("login.callback.exchange_failed: %v", err)
		h.redirectError(w, r)
		return
	}

	account, err := h.fetchAccount(r.Context(), tok.AccessToken)
	if err != nil {
		log.Printf("login.callback.user_lookup_failed: %v", err)
		h.redirectError(w, r)
		return
	}

	name := account.Name
	if name == "" {
		name = account.Username
	}
	if err := h.users.CreateUserIfNotExists(r.Context(), account.Username, name, tok.AccessToken); err != nil {
		log.Printf("login.callback.create_user_failed: %v", err)
		h.redirectError(w, r)
		return
	}

	sessionToken, err := h.sessions.Issue(account.Username)
	if err != nil {
		log.Printf("login.callback.session_failed: %v", err)
		h.redirectError(w, r)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sessionToken,
		Path:     "/",
		Expires:  time.Now().Add(time.Hour),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	log.Printf("login.callback.success user=%s", account.Username)
	http.Redirect(w, r, h.frontendBase+"/login/success", http.StatusFound)
}

func (h *Handler) redirectError(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.frontendBase+"/login/error", http.StatusFound)
}
