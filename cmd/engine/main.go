package main

import (
	"log"
	"os"

	"github.com/ethanbaker/prospector/internal/api"
	"github.com/ethanbaker/prospector/internal/linkedin"
	"github.com/ethanbaker/prospector/internal/senders/chat"
	"github.com/ethanbaker/prospector/internal/senders/email"
	"github.com/ethanbaker/prospector/internal/senders/sms"
	engine_store "github.com/ethanbaker/prospector/internal/stores/engine"
	"github.com/ethanbaker/prospector/pkg/engine"
	"github.com/ethanbaker/prospector/pkg/utils"
)

// Start the outreach engine and its API server
func main() {
	// Find env file
	envFile := ".env"
	if os.Getenv("ENV_FILE") != "" {
		envFile = os.Getenv("ENV_FILE")
	}

	// Load global config
	cfg := utils.NewConfigFromEnv(envFile)

	// Connect to the database
	store, err := engine_store.NewStore(cfg.Get("DATABASE_URL"))
	if err != nil {
		log.Fatalf("[MAIN]: Failed to initialize store: %v", err)
	}

	// Build the browser session factory
	opts, err := linkedin.LoadOptions(cfg.Get("LINKEDIN_OPTIONS_FILE"))
	if err != nil {
		log.Fatalf("[MAIN]: Failed to load linkedin options: %v", err)
	}
	sessions := engine.NewSessionRegistry(linkedin.Factory(opts), engine.Credentials{
		Email:    cfg.Get("LINKEDIN_EMAIL"),
		Password: cfg.Get("LINKEDIN_PASSWORD"),
	})
	defer sessions.Close()

	// Build the follow-up channel senders. A nil sender disables its channel.
	senders := engine.Senders{
		Chat: chat.NewSender(cfg),
	}
	if s := email.NewSender(cfg); s != nil {
		senders.Email = s
	}
	if s := sms.NewSender(cfg); s != nil {
		senders.SMS = s
	}

	// Create and start the engine
	manager, err := engine.NewManager(cfg, &engine.ManagerOptions{
		Store:    store,
		Sessions: sessions,
		Senders:  senders,
	})
	if err != nil {
		log.Fatalf("[MAIN]: Failed to create engine manager: %v", err)
	}
	manager.Start()
	defer manager.Stop()

	// Start the API server (blocks)
	api.Start(cfg, manager)
}
