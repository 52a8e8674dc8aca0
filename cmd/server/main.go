// cmd/server/main.go
package main

import (
	"fmt"
	"os"

	"github.com/Annany2002/nebula-seeder/api"    // Import router setup
	"github.com/Annany2002/nebula-seeder/config" // Import config loading
	"github.com/Annany2002/nebula-seeder/internal/logger"
	"github.com/Annany2002/nebula-seeder/internal/storage" // Import run ledger
)

var (
	customLog = logger.NewLogger()
)

func main() {
	customLog.Println("Starting Nebula Seeder server...")

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		customLog.Fatalf("Failed to load configuration: %v", err)
		os.Exit(1)
	}
	if err := cfg.ValidateServer(); err != nil {
		customLog.Fatalf("Invalid server configuration: %v", err)
	}

	// 2. Initialize the in-memory run ledger
	runDB, err := storage.ConnectRunDB()
	if err != nil {
		customLog.Fatalf("Failed to initialize run ledger: %v", err)
		os.Exit(1)
	}
	defer func() {
		customLog.Println("Closing run ledger...")
		if err := runDB.Close(); err != nil {
			customLog.Printf("Error closing run ledger: %v", err)
		}
	}()

	// 3. Setup Router (passing dependencies)
	router := api.SetupRouter(runDB, cfg)

	// 4. Start Server
	customLog.Printf("Server listening on port %s", cfg.ServerPort)
	if err := router.Run(fmt.Sprintf(":%s", cfg.ServerPort)); err != nil {
		customLog.Fatalf("Failed to start server: %v", err)
	}
}
