// Command server runs only the API process, for container images that do
// not need the full tiffin CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/shashiranjanraj/tiffin/internal/server"
	"github.com/shashiranjanraj/tiffin/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := server.Boot(ctx)
	if err != nil {
		logger.Error("server: boot failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	if err := app.Serve(ctx); err != nil {
		logger.Error("server: stopped", "error", err)
		app.Close()
		os.Exit(1)
	}
}
