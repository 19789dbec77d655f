// Memseed loads intent definitions and agent prompts from a JSON file
// into the persistent memory backend
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"github.com/ainetwork-ai/ain-adk-providers/internal/logger"
	"github.com/ainetwork-ai/ain-adk-providers/pkg/memory"
	"github.com/ainetwork-ai/ain-adk-providers/pkg/memory/mongodb"
)

var (
	uri      = flag.String("uri", os.Getenv("MONGODB_URI"), "MongoDB connection string")
	database = flag.String("db", mongodb.DefaultDatabase, "Database name")
	seedFile = flag.String("file", "seed.json", "Seed data file")
	wipe     = flag.Bool("wipe", false, "Delete existing intents before seeding")
	logLevel = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
)

// seedData is the on-disk seed format: a list of intents plus prompt
// text keyed by prompt id.
type seedData struct {
	Intents []memory.Intent            `json:"intents"`
	Prompts map[memory.PromptID]string `json:"prompts"`
}

func main() {
	flag.Parse()

	if *uri == "" {
		log.Fatalf("No connection string: set -uri or MONGODB_URI")
	}

	logger.InitGlobalLogger(logger.Config{Level: *logLevel, Pretty: true})

	raw, err := os.ReadFile(*seedFile)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *seedFile, err)
	}
	var seed seedData
	if err := json.Unmarshal(raw, &seed); err != nil {
		log.Fatalf("Failed to parse %s: %v", *seedFile, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	mem := mongodb.New(mongodb.Config{URI: *uri, Database: *database})
	log.Printf("Connecting to %s/%s", *uri, *database)
	if err := mem.Connect(ctx); err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer mem.Disconnect(context.Background())

	intents := mem.Intents()

	if *wipe {
		existing, err := intents.ListIntents(ctx)
		if err != nil {
			log.Fatalf("Failed to list existing intents: %v", err)
		}
		for _, intent := range existing {
			if err := intents.DeleteIntent(ctx, intent.ID); err != nil {
				log.Fatalf("Failed to delete intent %s: %v", intent.Name, err)
			}
		}
		log.Printf("Deleted %d existing intents", len(existing))
	}

	for i := range seed.Intents {
		intent := &seed.Intents[i]
		if err := intents.SaveIntent(ctx, intent); err != nil {
			log.Fatalf("Failed to save intent %s: %v", intent.Name, err)
		}
		log.Printf("Seeded intent %s (%s)", intent.Name, intent.ID)
	}

	prompts := mem.AgentPrompts()
	for id, text := range seed.Prompts {
		if err := prompts.UpdatePrompt(ctx, id, text); err != nil {
			log.Fatalf("Failed to set prompt %s: %v", id, err)
		}
		log.Printf("Seeded prompt %s", id)
	}

	log.Printf("Seeding complete: %d intents, %d prompts", len(seed.Intents), len(seed.Prompts))
}
