package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/opencontrib/octoken/internal/config"
	"github.com/opencontrib/octoken/internal/github"
	"github.com/opencontrib/octoken/internal/ledger"
	"github.com/opencontrib/octoken/internal/login"
	"github.com/opencontrib/octoken/internal/middleware"
	"github.com/opencontrib/octoken/internal/session"
	"github.com/opencontrib/octoken/internal/settlement"
	"github.com/opencontrib/octoken/internal/store"
	"github.com/opencontrib/octoken/internal/webhook"
)

var (
	loadDotEnv         = godotenv.Load
	newStore           = store.NewStore
	defaultListenServe = http.ListenAndServe
)

func main() {
	if err := run(context.Background(), defaultListenServe); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func run(ctx context.Context, serve func(string, http.Handler) error) error {
	// Load .env file (ignore error if file doesn't exist)
	_ = loadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log.Printf("Starting octoken server...")
	log.Printf("Port: %d", cfg.Port)
	log.Printf("GitHub App ID: %s", cfg.GitHubAppID)
	log.Printf("Ledger RPC: %s", cfg.LedgerRPCURL)
	log.Printf("Frontend: %s", cfg.FrontendBaseURL)

	// User directory
	userStore, err := newStore(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open user store: %w", err)
	}
	defer userStore.Close()

	// GitHub App authentication (read-only after startup)
	appAuth := &github.AppAuth{
		AppID:      cfg.GitHubAppID,
		PrivateKey: cfg.GitHubPrivateKey,
	}

	// Ledger client
	ledgerClient := ledger.NewClient(cfg.LedgerRPCURL)

	// Settlement pipeline behind the webhook handler
	orchestrator := settlement.New(appAuth, userStore, ledgerClient, cfg.FrontendBaseURL+"/")
	webhookHandler := webhook.NewHandler(cfg.GitHubWebhookSecret, orchestrator)

	// Login flow
	sessions := session.NewManager(cfg.SharedKey)
	loginHandler := login.NewHandler(cfg.OAuthClientID, cfg.OAuthClientSecret, userStore, sessions, cfg.FrontendBaseURL)

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.FrontendBaseURL))

	r.HandleFunc("/webhook", webhookHandler.Handle).Methods("POST")
	r.HandleFunc("/auth/github/callback", loginHandler.Callback).Methods("GET")

	// Health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	// Root endpoint with info
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"service":"octoken","status":"running"}`)
	}).Methods("GET")

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("Server listening on %s", addr)
	log.Printf("Webhook endpoint: http://localhost%s/webhook", addr)
	log.Printf("OAuth callback: http://localhost%s/auth/github/callback", addr)

	if err := serve(addr, r); err != nil {
		return fmt.Errorf("server failed to start: %w", err)
	}

	return nil
}
