package github

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultAPIBaseURL = "https://api.github.com"

// AuthProvider defines the interface for GitHub App authentication
type AuthProvider interface {
	InstallationToken(installationID int64) (*InstallationToken, error)
}

// AppAuth holds GitHub App authentication configuration. AppID and
// PrivateKey are loaded once at startup and read-only afterwards.
type AppAuth struct {
	AppID      string
	PrivateKey string

	// BaseURL overrides the GitHub API endpoint (tests). Empty means
	// api.github.com.
	BaseURL string

	httpClient *http.Client
}

// InstallationToken represents a GitHub App installation access token.
// Tokens are short-lived and fetched fresh per orchestration run.
type InstallationToken struct {
	Token     string
	ExpiresAt time.Time
}

// GenerateJWT creates the signed App assertion. Issued-at is backdated
// 60s to absorb clock skew between us and GitHub; expiry is 10 minutes.
func (a *AppAuth) GenerateJWT() (string, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(a.PrivateKey))
	if err != nil {
		return "", fmt.Errorf("failed to parse private key: %w", err)
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now.Add(-60 * time.Second)),
		ExpiresAt: jwt.NewNumericDate(now.Add(10 * time.Minute)),
		Issuer:    a.AppID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signedToken, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT: %w", err)
	}

	return signedToken, nil
}

// InstallationToken exchanges a signed App assertion for an
// installation access token. No retry: the caller re-authenticates on
// each use.
func (a *AppAuth) InstallationToken(installationID int64) (*InstallationToken, error) {
	jwtToken, err := a.GenerateJWT()
	if err != nil {
		return nil, &AuthError{Stage: "sign", Err: err}
	}

	baseURL := a.BaseURL
	if baseURL == "" {
		baseURL = defaultAPIBaseURL
	}

	url := fmt.Sprintf("%s/app/installations/%d/access_tokens", baseURL, installationID)
	req, err := http.NewRequest(http.MethodPost, url, nil)
	if err != nil {
		return nil, &AuthError{Stage: "request", Err: err}
	}

	req.Header.Set("Authorization", "Bearer "+jwtToken)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

	client := a.httpClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &AuthError{Stage: "exchange", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return nil, &AuthError{
			Stage: "exchange",
			Err:   fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body)),
		}
	}

	var result struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &AuthError{Stage: "decode", Err: err}
	}

	return &InstallationToken{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
	}, nil
}
