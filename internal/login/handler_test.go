package login

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/oauth2"

	"github.com/opencontrib/octoken/internal/github"
	"github.com/opencontrib/octoken/internal/session"
)

type fakeUsers struct {
	created map[string]string // username -> name
	err     error
}

func (f *fakeUsers) CreateUserIfNotExists(_ context.Context, username, name, token string) error {
	if f.err != nil {
		return f.err
	}
	if f.created == nil {
		f.created = make(map[string]string)
	}
	f.created[username] = name
	return nil
}

// tokenServer mimics GitHub's OAuth token endpoint.
func tokenServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token": "gho_testtoken", "token_type": "bearer"}`)
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestHandler(t *testing.T, users *fakeUsers) *Handler {
	t.Helper()
	h := NewHandler("client-id", "client-secret", users, session.NewManager("shared"), "http://localhost:5000")
	server := tokenServer(t)
	h.oauth.Endpoint = oauth2.Endpoint{
		TokenURL:  server.URL + "/login/oauth/access_token",
		AuthStyle: oauth2.AuthStyleInParams,
	}
	h.fetchAccount = func(_ context.Context, token string) (*github.Account, error) {
		if token != "gho_testtoken" {
			return nil, errors.New("wrong token")
		}
		return &github.Account{Username: "alice", Name: "Alice Doe"}, nil
	}
	return h
}

func TestCallbackSuccess(t *testing.T) {
	users := &fakeUsers{}
	h := newTestHandler(t, users)

	req := httptest.NewRequest(http.MethodGet, "/auth/github/callback?code=abc123", nil)
	rec := httptest.NewRecorder()
	h.Callback(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusFound)
	}
	if loc := rec.Header().Get("Location"); loc != "http://localhost:5000/login/success" {
		t.Errorf("redirect = %s, want success page", loc)
	}
	if users.created["alice"] != "Alice Doe" {
		t.Errorf("created users = %v, want alice", users.created)
	}

	var sessionCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookie {
			sessionCookie = c
		}
	}
	if sessionCookie == nil {
		t.Fatal("session cookie not set")
	}
	if !sessionCookie.HttpOnly {
		t.Error("session cookie should be HttpOnly")
	}

	// The cookie must validate against the same shared key
	username, err := session.NewManager("shared").Validate(sessionCookie.Value)
	if err != nil {
		t.Fatalf("cookie validation failed: %v", err)
	}
	if username != "alice" {
		t.Errorf("cookie subject = %s, want alice", username)
	}
}

func TestCallbackMissingCode(t *testing.T) {
	users := &fakeUsers{}
	h := newTestHandler(t, users)

	req := httptest.NewRequest(http.MethodGet, "/auth/github/callback", nil)
	rec := httptest.NewRecorder()
	h.Callback(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusFound)
	}
	if loc := rec.Header().Get("Location"); loc != "http://localhost:5000/login/error" {
		t.Errorf("redirect = %s, want error page", loc)
	}
	if len(users.created) != 0 {
		t.Errorf("user created despite missing code")
	}
}

func TestCallbackExchangeFailure(t *testing.T) {
	users := &fakeUsers{}
	h := newTestHandler(t, users)

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad code", http.StatusBadRequest)
	}))
	defer failing.Close()
	h.oauth.Endpoint = oauth2.Endpoint{
		TokenURL:  failing.URL,
		AuthStyle: oauth2.AuthStyleInParams,
	}

	req := httptest.NewRequest(http.MethodGet, "/auth/github/callback?code=bad", nil)
	rec := httptest.NewRecorder()
	h.Callback(rec, req)

	if loc := rec.Header().Get("Location"); loc != "http://localhost:5000/login/error" {
		t.Errorf("redirect = %s, want error page", loc)
	}
}

func TestCallbackUserLookupFailure(t *testing.T) {
	users := &fakeUsers{}
	h := newTestHandler(t, users)
	h.fetchAccount = func(_ context.Context, token string) (*github.Account, error) {
		return nil, errors.New("api down")
	}

	req := httptest.NewRequest(http.MethodGet, "/auth/github/callback?code=abc123", nil)
	rec := httptest.NewRecorder()
	h.Callback(rec, req)

	if loc := rec.Header().Get("Location"); loc != "http://localhost:5000/login/error" {
		t.Errorf("redirect = %s, want error page", loc)
	}
}

func TestCallbackCreateUserFailure(t *testing.T) {
	users := &fakeUsers{err: errors.New("db down")}
	h := newTestHandler(t, users)

	req := httptest.NewRequest(http.MethodGet, "/auth/github/callback?code=abc123", nil)
	rec := httptest.NewRecorder()
	h.Callback(rec, req)

	if loc := rec.Header().Get("Location"); loc != "http://localhost:5000/login/error" {
		t.Errorf("redirect = %s, want error page", loc)
	}
}

func TestCallbackFallsBackToUsernameForEmptyName(t *testing.T) {
	users := &fakeUsers{}
	h := newTestHandler(t, users)
	h.fetchAccount = func(_ context.Context, token string) (*github.Account, error) {
		return &github.Account{Username: "bob", Name: ""}, nil
	}

	req := httptest.NewRequest(http.MethodGet, "/auth/github/callback?code=abc123", nil)
	rec := httptest.NewRecorder()
	h.Callback(rec, req)

	if users.created["bob"] != "bob" {
		t.Errorf("created = %v, want bob with username as name", users.created)
	}
}
