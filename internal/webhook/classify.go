package webhook

// Action is the discrete webhook classification driving settlement.
type Action int

const (
	ActionUnknown Action = iota
	ActionOpen
	ActionReview
	ActionApproved
	ActionClosed
	ActionMerged
)

func (a Action) String() string {
	switch a {
	case ActionOpen:
		return "open"
	case ActionReview:
		return "review"
	case ActionApproved:
		return "approved"
	case ActionClosed:
		return "closed"
	case ActionMerged:
		return "merged"
	default:
		return "unknown"
	}
}

// Classify maps the X-GitHub-Event header plus payload state to an
// Action. Pure and total: same inputs always yield the same Action,
// and every input yields one.
func Classify(eventType string, ev *Event) Action {
	switch eventType {
	case "pull_request":
		switch ev.PullRequest.State {
		case "open":
			return ActionOpen
		case "closed":
			if ev.PullRequest.MergedAt != "" {
				return ActionMerged
			}
			return ActionClosed
		default:
			return ActionUnknown
		}
	case "pull_request_review":
		switch ev.Review.State {
		case "approved":
			return ActionApproved
		case "changes_requested":
			return ActionReview
		default:
			return ActionUnknown
		}
	default:
		return ActionUnknown
	}
}
