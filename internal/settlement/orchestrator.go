// Package settlement sequences the per-webhook pipeline:
// authenticate, fetch, score, comment, and on merge transfer tokens
// to reviewers.
package settlement

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/opencontrib/octoken/internal/github"
	"github.com/opencontrib/octoken/internal/scoring"
	"github.com/opencontrib/octoken/internal/webhook"
)

// transferAmount is the fixed payout per reviewer on merge. The
// computed score is posted but does not size the transfer.
const transferAmount = 10

// RepoClient is the repository API surface settlement needs.
type RepoClient interface {
	ListReviewComments(ctx context.Context, owner, repo string, number int, reviewID int64) ([]github.ReviewComment, error)
	CreateIssueComment(ctx context.Context, owner, repo string, number int, body string) error
}

// AddressResolver maps usernames to wallet addresses.
type AddressResolver interface {
	GetAddress(ctx context.Context, username string) (string, error)
}

// Ledger submits token transfers.
type Ledger interface {
	Transfer(ctx context.Context, from, to string, amount uint64) error
}

// Orchestrator drives the settlement state machine. Every run
// authenticates fresh: installation tokens are short-lived and never
// cached.
type Orchestrator struct {
	auth      github.AuthProvider
	newClient func(token string) RepoClient
	users     AddressResolver
	ledger    Ledger
	walletURL string
}

// New creates an orchestrator wired to the real repository API.
func New(auth github.AuthProvider, users AddressResolver, ledger Ledger, walletURL string) *Orchestrator {
	return &Orchestrator{
		auth: auth,
		newClient: func(token string) RepoClient {
			return github.NewClient(token)
		},
		users:     users,
		ledger:    ledger,
		walletURL: walletURL,
	}
}

// Process runs the pipeline for one classified webhook. Approved,
// closed and unknown actions are accepted as no-ops. Any step failure
// aborts the run and propagates unchanged.
func (o *Orchestrator) Process(ctx context.Context, action webhook.Action, ev *webhook.Event) error {
	switch action {
	case webhook.ActionOpen:
		return o.handleOpen(ctx, ev)
	case webhook.ActionReview:
		return o.handleReview(ctx, ev)
	case webhook.ActionMerged:
		return o.handleMerged(ctx, ev)
	default:
		return nil
	}
}

// handleOpen posts the pull request's estimated reward as a comment.
func (o *Orchestrator) handleOpen(ctx context.Context, ev *webhook.Event) error {
	log.Printf("settlement.pull_request pr=%d", ev.PullRequest.Number)

	token, err := o.auth.InstallationToken(ev.Installation.ID)
	if err != nil {
		return fmt.Errorf("authenticate installation %d: %w", ev.Installation.ID, err)
	}

	pr := ev.PullRequest
	score := scoring.PullRequestScore(pr.Additions, pr.Deletions, pr.ChangedFiles)
	body := scoring.FormatPullRequestComment(score, o.walletURL)

	client := o.newClient(token.Token)
	if err := client.CreateIssueComment(ctx, ev.Repository.Owner.Login, ev.Repository.Name, pr.Number, body); err != nil {
		return fmt.Errorf("comment pr %d: %w", pr.Number, err)
	}
	return nil
}

// handleReview posts the review author's current reward as a comment
// addressed to them.
func (o *Orchestrator) handleReview(ctx context.Context, ev *webhook.Event) error {
	log.Printf("settlement.pull_request_review pr=%d review=%d", ev.PullRequest.Number, ev.Review.ID)

	token, err := o.auth.InstallationToken(ev.Installation.ID)
	if err != nil {
		return fmt.Errorf("authenticate installation %d: %w", ev.Installation.ID, err)
	}
	client := o.newClient(token.Token)

	comments, err := client.ListReviewComments(ctx, ev.Repository.Owner.Login, ev.Repository.Name, ev.PullRequest.Number, ev.Review.ID)
	if err != nil {
		return fmt.Errorf("list review comments: %w", err)
	}

	username := ev.Review.User.Login
	score := scoring.ReviewScore(comments, username)
	body := scoring.FormatReviewComment(username, score, o.walletURL)

	if err := client.CreateIssueComment(ctx, ev.Repository.Owner.Login, ev.Repository.Name, ev.PullRequest.Number, body); err != nil {
		return fmt.Errorf("comment pr %d: %w", ev.PullRequest.Number, err)
	}
	return nil
}

// handleMerged settles the pull request: every reviewer other than the
// author gets a score comment and a fixed-amount transfer from the
// author's wallet. The loop stops at the first failing reviewer, so
// reviewers after that point receive nothing for this run.
func (o *Orchestrator) handleMerged(ctx context.Context, ev *webhook.Event) error {
	log.Printf("settlement.merge pr=%d", ev.PullRequest.Number)

	token, err := o.auth.InstallationToken(ev.Installation.ID)
	if err != nil {
		return fmt.Errorf("authenticate installation %d: %w", ev.Installation.ID, err)
	}
	client := o.newClient(token.Token)

	comments, err := client.ListReviewComments(ctx, ev.Repository.Owner.Login, ev.Repository.Name, ev.PullRequest.Number, ev.Review.ID)
	if err != nil {
		return fmt.Errorf("list review comments: %w", err)
	}

	author := ev.PullRequest.User.Login
	authorAddr, err := o.users.GetAddress(ctx, author)
	if err != nil {
		return fmt.Errorf("resolve author %q address: %w", author, err)
	}

	for _, username := range reviewers(comments, author) {
		score := scoring.ReviewScore(comments, username)
		body := scoring.FormatReviewComment(username, score, o.walletURL)

		if err := client.CreateIssueComment(ctx, ev.Repository.Owner.Login, ev.Repository.Name, ev.PullRequest.Number, body); err != nil {
			return fmt.Errorf("comment for reviewer %q: %w", username, err)
		}

		addr, err := o.users.GetAddress(ctx, username)
		if err != nil {
			return fmt.Errorf("resolve reviewer %q address: %w", username, err)
		}

		if err := o.ledger.Transfer(ctx, authorAddr, addr, transferAmount); err != nil {
			return fmt.Errorf("transfer to reviewer %q: %w", username, err)
		}
		log.Printf("settlement.transfer pr=%d reviewer=%s amount=%d", ev.PullRequest.Number, username, transferAmount)
	}
	return nil
}

// reviewers returns the sorted, deduplicated usernames that commented
// on the review, excluding the pull request author.
func reviewers(comments []github.ReviewComment, author string) []string {
	seen := make(map[string]bool)
	var users []string
	for _, c := range comments {
		if c.Author == author || seen[c.Author] {
			continue
		}
		seen[c.Author] = true
		users = append(users, c.Author)
	}
	sort.Strings(users)
	return users
}
