package scoring

import (
	"math"
	"strings"
	"testing"

	"github.com/opencontrib/octoken/internal/github"
)

func TestPullRequestScoreBounds(t *testing.T) {
	tests := []struct {
		name         string
		additions    int
		deletions    int
		changedFiles int
	}{
		{"empty PR", 0, 0, 0},
		{"small PR", 10, 2, 1},
		{"large PR", 5000, 3000, 120},
		{"huge PR", 1000000, 1000000, 10000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := PullRequestScore(tt.additions, tt.deletions, tt.changedFiles)
			if score <= 0 || score >= 1 {
				t.Errorf("score = %v, want in open interval (0,1)", score)
			}
		})
	}
}

func TestPullRequestScoreDecreasesWithSize(t *testing.T) {
	// The sigmoid uses a positive exponent: bigger PRs score lower.
	// Kept intentionally; this test pins the shipped behavior.
	small := PullRequestScore(10, 2, 1)
	large := PullRequestScore(500, 300, 40)
	if small <= large {
		t.Errorf("small PR score %v should exceed large PR score %v", small, large)
	}
}

func TestPullRequestScoreWeights(t *testing.T) {
	// 1.2*100 + 0.8*50 + 1.1*10 = 171
	want := Sigmoid(171, 100)
	got := PullRequestScore(100, 50, 10)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("score = %v, want %v", got, want)
	}
}

func TestReviewScoreWorkedExample(t *testing.T) {
	comments := []github.ReviewComment{
		{Author: "bob", Body: strings.Repeat("a", 10)},
		{Author: "bob", Body: strings.Repeat("b", 20)},
		{Author: "bob", Body: strings.Repeat("c", 30)},
		{Author: "carol", Body: strings.Repeat("d", 100)},
		{Author: "dave", Body: strings.Repeat("e", 100)},
	}

	// 3 comments by bob + floor(60/30) = 5
	want := Sigmoid(5, 100)
	got := ReviewScore(comments, "bob")
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("ReviewScore = %v, want sigmoid(5,100) = %v", got, want)
	}
}

func TestReviewScoreNoCommentsForUser(t *testing.T) {
	comments := []github.ReviewComment{
		{Author: "carol", Body: "something"},
	}
	want := Sigmoid(0, 100) // 0.5
	got := ReviewScore(comments, "bob")
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("ReviewScore = %v, want %v", got, want)
	}
}

func TestReviewScoreBounds(t *testing.T) {
	comments := make([]github.ReviewComment, 0, 1000)
	for i := 0; i < 1000; i++ {
		comments = append(comments, github.ReviewComment{Author: "bob", Body: strings.Repeat("x", 500)})
	}
	score := ReviewScore(comments, "bob")
	if score <= 0 || score >= 1 {
		t.Errorf("score = %v, want in open interval (0,1)", score)
	}
}

func TestSigmoid(t *testing.T) {
	if got := Sigmoid(0, 100); got != 0.5 {
		t.Errorf("Sigmoid(0) = %v, want 0.5", got)
	}
	if got := Sigmoid(1000, 100); got >= 0.5 {
		t.Errorf("Sigmoid(1000) = %v, want < 0.5 (decreasing)", got)
	}
	if got := Sigmoid(-1000, 100); got <= 0.5 {
		t.Errorf("Sigmoid(-1000) = %v, want > 0.5 (decreasing)", got)
	}
}

func TestFormatPullRequestComment(t *testing.T) {
	msg := FormatPullRequestComment(0.5, "http://localhost:5000/")
	if !strings.Contains(msg, "Total Reward") {
		t.Errorf("missing header: %q", msg)
	}
	if !strings.Contains(msg, "0.5 OCT") {
		t.Errorf("missing score: %q", msg)
	}
	if !strings.Contains(msg, "http://localhost:5000/") {
		t.Errorf("missing wallet link: %q", msg)
	}
}

func TestFormatReviewComment(t *testing.T) {
	msg := FormatReviewComment("bob", 0.25, "http://localhost:5000/")
	if !strings.HasPrefix(msg, "@bob: ") {
		t.Errorf("comment not addressed to reviewer: %q", msg)
	}
	if !strings.Contains(msg, "0.25 OCT") {
		t.Errorf("missing score: %q", msg)
	}
}
