package webhook

// GitHub webhook payload types for pull_request and
// pull_request_review events.

// Event is the inbound webhook payload. Parsed once per request and
// treated as immutable afterwards.
type Event struct {
	Action       string       `json:"action"`
	PullRequest  PullRequest  `json:"pull_request"`
	Installation Installation `json:"installation"`
	Repository   Repository   `json:"repository"`
	Review       Review       `json:"review"`
}

type Installation struct {
	ID int64 `json:"id"`
}

type PullRequest struct {
	Number       int    `json:"number"`
	Additions    int    `json:"additions"`
	Deletions    int    `json:"deletions"`
	ChangedFiles int    `json:"changed_files"`
	State        string `json:"state"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
	ClosedAt     string `json:"closed_at"`
	// MergedAt non-empty is the sole signal distinguishing a merged
	// PR from one that was merely closed.
	MergedAt string `json:"merged_at"`
	User     User   `json:"user"`
}

type User struct {
	Login string `json:"login"`
	Type  string `json:"type"`
}

type Repository struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	Owner    User   `json:"owner"`
}

type Review struct {
	ID    int64  `json:"id"`
	User  User   `json:"user"`
	Body  string `json:"body"`
	State string `json:"state"`
}
