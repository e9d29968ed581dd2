package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/yanqian/cyclecare/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.New()
	app, err := initializeApp()
	if err != nil {
		log.Error("failed to wire cyclecare", "error", err)
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		log.Error("cyclecare stopped with error", "error", err)
		stop()
		os.Exit(1)
	}
}
