// Command migrate manages the database schema without starting the server.
//
//	go run ./cmd up|down|status|version|redo|reset
package main

import (
	"context"
	"os"

	"github.com/joy095/hotelbooking/config"
	"github.com/joy095/hotelbooking/config/db"
	"github.com/joy095/hotelbooking/logger"
)

func init() {
	logger.InitLoggers()
	config.LoadEnv()
}

func main() {
	command := "up"
	var args []string
	if len(os.Args) > 1 {
		command = os.Args[1]
		args = os.Args[2:]
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.ErrorLogger.Fatal("DATABASE_URL is not set")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, dsn)
	if err != nil {
		logger.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(ctx, pool, command, args...); err != nil {
		logger.ErrorLogger.Errorf("Migration %s failed: %v", command, err)
		db.Close()
		os.Exit(1)
	}
}
