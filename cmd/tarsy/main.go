// Command tarsy runs the prompt token optimizer's HTTP service shell:
// /optimize, /feedback, and /healthz over the pipeline orchestrator.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/codeready-toolchain/promptopt/pkg/api"
	"github.com/codeready-toolchain/promptopt/pkg/catalog/concept"
	"github.com/codeready-toolchain/promptopt/pkg/catalog/pattern"
	"github.com/codeready-toolchain/promptopt/pkg/catalog/reviewqueue"
	"github.com/codeready-toolchain/promptopt/pkg/config"
	"github.com/codeready-toolchain/promptopt/pkg/database"
	"github.com/codeready-toolchain/promptopt/pkg/optimizer"
	"github.com/codeready-toolchain/promptopt/pkg/tokenizer"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// openDiskCache opens the optional on-disk optimization cache at
// OPTIMIZER_CACHE_DB_PATH. A missing/unwritable path is logged and the
// service runs with the in-process LRU only, per §3's "purely an
// accelerator" contract: no disk cache is never a startup failure.
func openDiskCache() *concept.BoltCache {
	path := getEnv("OPTIMIZER_CACHE_DB_PATH", "")
	if path == "" {
		return nil
	}
	disk, err := concept.OpenBoltCache(path)
	if err != nil {
		log.Printf("Warning: could not open on-disk optimization cache at %s: %v", path, err)
		return nil
	}
	log.Printf("Optimization cache persisting to %s", path)
	return disk
}

func main() {
	configDir := flag.String("config-dir",
		getEnv("CONFIG_DIR", "./deploy/config"),
		"Path to configuration directory")
	flag.Parse()

	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		log.Printf("Warning: Could not load %s file: %v", envPath, err)
		log.Printf("Continuing with existing environment variables...")
	} else {
		log.Printf("Loaded environment from %s", envPath)
	}

	httpPort := getEnv("HTTP_PORT", "8080")
	ginMode := getEnv("GIN_MODE", "debug")
	gin.SetMode(ginMode)

	defaults, err := config.LoadDefaultsFromEnv()
	if err != nil {
		log.Fatalf("Failed to load optimizer defaults: %v", err)
	}

	log.Println("Starting prompt token optimizer")
	log.Printf("HTTP Port: %s", httpPort)

	ctx := context.Background()

	dbConfig, err := database.LoadConfigFromEnv()
	if err != nil {
		log.Fatalf("Failed to load database config: %v", err)
	}

	dbClient, err := database.NewClient(ctx, dbConfig)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			log.Printf("Error closing database client: %v", err)
		}
	}()
	log.Println("Connected to PostgreSQL database")

	diskCache := openDiskCache()
	if diskCache != nil {
		defer func() {
			if err := diskCache.Close(); err != nil {
				log.Printf("Error closing on-disk optimization cache: %v", err)
			}
		}()
	}

	patterns := pattern.NewPGStore(dbClient.DB())
	concepts := concept.NewCachedStore(concept.NewPGStore(dbClient.DB()), concept.NewLRU(0), diskCache)
	registry := tokenizer.NewDefaultRegistry()

	opt := optimizer.New(registry, patterns, concepts)
	opt.ReviewQueue = reviewqueue.NewPGStore(dbClient.DB())

	server := api.NewServer(opt, patterns, dbClient.DB(), defaults, defaults.RequestTimeout)
	router := server.Router()

	log.Printf("HTTP server listening on :%s", httpPort)
	log.Printf("Health check available at: http://localhost:%s/healthz", httpPort)
	if err := router.Run(":" + httpPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
