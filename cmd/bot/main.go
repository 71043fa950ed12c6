package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
	"github.com/wardenbot/warden/internal/bot"
	"github.com/wardenbot/warden/internal/setup"
)

func main() {
	app := &cli.Command{
		Name:  "warden",
		Usage: "Start the warden Discord bot",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Aliases: []string{"c"},
				Usage:   "Directory containing bot.toml",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return run(ctx, c.String("config-dir"))
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run(ctx context.Context, configDir string) error {
	app, err := setup.InitializeApp(ctx, configDir)
	if err != nil {
		return err
	}
	defer app.Cleanup()

	discordBot, err := bot.New(app.Config, app.DB, app.Logger)
	if err != nil {
		return err
	}

	if err := discordBot.Start(ctx); err != nil {
		return err
	}

	app.Logger.Info("Bot started, waiting for interrupt signal")

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)

	select {
	case <-sc:
	case <-ctx.Done():
	}

	app.Logger.Info("Shutting down")
	discordBot.Close()

	return nil
}
