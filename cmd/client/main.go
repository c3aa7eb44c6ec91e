package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/taskkeeper/internal/cli"
	"github.com/dmitrijs2005/taskkeeper/internal/config"
)

func main() {

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.LoadConfig()
	app, cleanup, err := cli.NewFromConfig(ctx, cfg)
	if err != nil {
		log.Printf("%v", err)
		return
	}
	defer cleanup()

	if err := app.Run(ctx); err != nil {
		log.Printf("%v", err)
	}

}
