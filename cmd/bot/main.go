package main

import (
	"fmt"
	"log"
	"os"

	"github.com/Shadman554/telegram-bot/core/cmd"
	"github.com/Shadman554/telegram-bot/internal/app"
)

const lockFile = "bot.lock"

func main() {
	if os.Getenv("TELEGRAM_BOT_TOKEN") == "" && os.Getenv("CONFIG_PATH") == "" {
		fmt.Println("❌ Missing required environment variables:")
		fmt.Println("   - TELEGRAM_BOT_TOKEN")
		fmt.Println("\nPlease set them before starting the bot.")
		os.Exit(1)
	}

	unlock, err := acquireLock(lockFile)
	if err != nil {
		fmt.Println("Another bot instance is already running")
		os.Exit(1)
	}
	defer unlock()

	var application *app.App

	err = cmd.Run(cmd.Options{
		LoadConfig: func(path string) (cmd.ConfigCarrier, error) {
			return app.LoadConfig(path)
		},
		Bootstrap: func(carrier cmd.ConfigCarrier) (cmd.TelegramApp, error) {
			cfg, ok := carrier.(*app.Config)
			if !ok {
				return nil, fmt.Errorf("unexpected config type %T", carrier)
			}
			a, err := app.New(cfg)
			if err != nil {
				return nil, err
			}
			application = a
			return a, nil
		},
	})

	if application != nil {
		if closeErr := application.Close(); closeErr != nil {
			log.Printf("close error: %v", closeErr)
		}
	}

	if err != nil {
		unlock()
		log.Fatalf("bot stopped: %v", err)
	}
}

// acquireLock creates an exclusive lock file so only one instance polls
// Telegram at a time. The returned func removes the lock.
func acquireLock(path string) (func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(f, "%d\n", os.Getpid())
	_ = f.Close()
	return func() { _ = os.Remove(path) }, nil
}
