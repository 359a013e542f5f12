// Command creatorpulse runs the newsletter service: HTTP API plus the
// scheduled-newsletter sweep.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/jhawaritvik/CreatorPulse/internal/app"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	application, err := app.New(app.Options{
		ConfigPath: *configPath,
		Version:    version,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = application.Close()
	}()

	if err := application.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "service error: %v\n", err)
		os.Exit(1)
	}
}
