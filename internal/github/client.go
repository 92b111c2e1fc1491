package github

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	gogithub "github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"
)

// ReviewComment is a single review comment on a pull request,
// collected per pull request + review id.
type ReviewComment struct {
	Body             string
	Position         int
	OriginalPosition int
	Author           string
}

// Account is the authenticated GitHub account behind a token.
type Account struct {
	Username string
	Name     string
	Email    string
}

// Client wraps the GitHub REST API with bearer-token authorization.
// All calls are single-shot: no retries, no backoff.
type Client struct {
	gh *gogithub.Client
}

// NewClient creates a repository API client for the given access token.
func NewClient(token string) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)
	return &Client{gh: gogithub.NewClient(tc)}
}

// NewClientWithBaseURL creates a client against a non-default API
// endpoint (tests).
func NewClientWithBaseURL(token, baseURL string) (*Client, error) {
	c := NewClient(token)
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	c.gh.BaseURL = parsed
	return c, nil
}

// ListReviewComments fetches the comments attached to a single review
// of a pull request.
func (c *Client) ListReviewComments(ctx context.Context, owner, repo string, number int, reviewID int64) ([]ReviewComment, error) {
	ghComments, resp, err := c.gh.PullRequests.ListReviewComments(ctx, owner, repo, number, reviewID, nil)
	if err != nil {
		return nil, apiError(resp, err)
	}

	comments := make([]ReviewComment, 0, len(ghComments))
	for _, rc := range ghComments {
		comments = append(comments, ReviewComment{
			Body:             rc.GetBody(),
			Position:         rc.GetPosition(),
			OriginalPosition: rc.GetOriginalPosition(),
			Author:           rc.GetUser().GetLogin(),
		})
	}
	return comments, nil
}

// CreateIssueComment posts a comment on an issue or pull request.
func (c *Client) CreateIssueComment(ctx context.Context, owner, repo string, number int, body string) error {
	comment := &gogithub.IssueComment{Body: gogithub.String(body)}
	_, resp, err := c.gh.Issues.CreateComment(ctx, owner, repo, number, comment)
	if err != nil {
		return apiError(resp, err)
	}
	return nil
}

// AuthenticatedUser fetches the account that owns the access token.
func (c *Client) AuthenticatedUser(ctx context.Context) (*Account, error) {
	user, resp, err := c.gh.Users.Get(ctx, "")
	if err != nil {
		return nil, apiError(resp, err)
	}
	return &Account{
		Username: user.GetLogin(),
		Name:     user.GetName(),
		Email:    user.GetEmail(),
	}, nil
}

// apiError converts go-github failures into the APIError taxonomy,
// preserving the HTTP status when one exists.
func apiError(resp *gogithub.Response, err error) error {
	var ghErr *gogithub.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return &APIError{StatusCode: ghErr.Response.StatusCode, Message: ghErr.Message}
	}
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	return &APIError{StatusCode: status, Message: err.Error()}
}
