// Command journal is a trading journal and performance analytics CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/joho/godotenv"

	"trade-journal/internal/cli"
	"trade-journal/internal/config"
)

func main() {
	// Environment overrides may live in ./.env or next to config.toml
	_ = godotenv.Load()
	_ = godotenv.Load(filepath.Join(config.DefaultConfigDir(), ".env"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
