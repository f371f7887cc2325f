package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"orderpulse/internal/app"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (defaults to ./config.yaml or ./configs/config.yaml)")
	flag.Parse()

	ctx := context.Background()

	application, err := app.NewApplication(ctx, *configPath)
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(ctx); err != nil {
		slog.Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
