package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"trip-planner-service/internal/app"
	"trip-planner-service/internal/cli"
	"trip-planner-service/internal/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	config.LoadDotEnv()
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := cli.NewRootCmd(&cli.App{
		Schedule: app.ScheduleOptions(cfg),
		Open: func(ctx context.Context) (*cli.Stack, error) {
			a, err := app.New(ctx, cfg)
			if err != nil {
				return nil, err
			}
			return &cli.Stack{Planner: a.Planner, Distance: a.Distance, Close: a.Close}, nil
		},
	})

	return root.ExecuteContext(ctx)
}
