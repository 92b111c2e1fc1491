package webhook

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
)

// Settler runs the settlement pipeline for a classified webhook.
type Settler interface {
	Process(ctx context.Context, action Action, ev *Event) error
}

// Handler handles GitHub webhook events
type Handler struct {
	webhookSecret string
	settler       Settler
}

// NewHandler creates a new webhook handler
func NewHandler(webhookSecret string, settler Settler) *Handler {
	return &Handler{
		webhookSecret: webhookSecret,
		settler:       settler,
	}
}

// Handle handles pull_request and pull_request_review webhook events.
// Irrelevant events are accepted and ignored; any settlement failure
// terminates processing with a generic error response.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// 1. Read payload
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("Error reading payload: %v", err)
		http.Error(w, "Error reading payload", http.StatusBadRequest)
		return
	}

	// 2. Verify signature
	signature := r.Header.Get("X-Hub-Signature-256")
	if err := ValidateSignatureHeader(signature); err != nil {
		log.Printf("Invalid signature header: %v", err)
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	if !VerifySignature(payload, signature, h.webhookSecret) {
		log.Printf("Signature verification failed")
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	// 3. Determine event type
	eventType := r.Header.Get("X-GitHub-Event")
	if eventType == "" {
		log.Printf("Missing X-GitHub-Event header")
		http.Error(w, "Missing X-GitHub-Event header", http.StatusBadRequest)
		return
	}

	// 4. Parse payload before classification
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		log.Printf("Error parsing event: %v", err)
		http.Error(w, "Error parsing event", http.StatusBadRequest)
		return
	}

	// 5. Classify and settle
	action := Classify(eventType, &ev)
	log.Printf("github_webhook.event type=%s action=%s pr=%d", eventType, action, ev.PullRequest.Number)

	if err := h.settler.Process(r.Context(), action, &ev); err != nil {
		log.Printf("github_webhook.settle.fail action=%s: %v", action, err)
		http.Error(w, "Webhook processing failed", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
