// Package app assembles the veterinary dictionary bot: configuration,
// storage, record services, the conversation machine, and the Telegram
// surface.
package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/Shadman554/telegram-bot/core/bootstrap"
	coreconfig "github.com/Shadman554/telegram-bot/core/config"
	coredatabase "github.com/Shadman554/telegram-bot/core/database"
	coretelegram "github.com/Shadman554/telegram-bot/core/telegram"
	"github.com/Shadman554/telegram-bot/internal/bot"
	"github.com/Shadman554/telegram-bot/internal/catalog"
	"github.com/Shadman554/telegram-bot/internal/flow"
	"github.com/Shadman554/telegram-bot/internal/records"
	"github.com/Shadman554/telegram-bot/internal/store"
)

// Config is the full application configuration: the shared core settings
// plus the database and record id policy.
type Config struct {
	Core     coreconfig.Config   `yaml:",inline"`
	Database coredatabase.Config `yaml:"database"`

	// IDPolicy selects the record id generator: "max_scan" or "timestamp".
	IDPolicy string `yaml:"id_policy" envconfig:"ID_POLICY"`
}

// CoreConfig implements cmd.ConfigCarrier.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Core
}

// LoadConfig reads the YAML file (optional) and applies environment
// overrides on top.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("app: failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("app: failed to parse YAML config: %w", err)
		}
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("app: failed to process env: %w", err)
	}

	if err := coreconfig.Normalize(&cfg.Core); err != nil {
		return nil, err
	}

	switch strings.ToLower(strings.TrimSpace(cfg.IDPolicy)) {
	case "", "max_scan":
		cfg.IDPolicy = "max_scan"
	case "timestamp":
		cfg.IDPolicy = "timestamp"
	default:
		return nil, fmt.Errorf("app: invalid id_policy %q; allowed: max_scan, timestamp", cfg.IDPolicy)
	}

	return &cfg, nil
}

// App holds the assembled application components.
type App struct {
	cfg *Config

	store   store.Store
	records *records.Service
	machine *flow.Machine
	surface *bot.Bot
}

// New bootstraps infrastructure and wires the application services.
func New(cfg *Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config")
	}

	res, err := bootstrap.Run(bootstrap.Options{
		Config:   &cfg.Core,
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	var docs store.Store
	if res.DB != nil {
		docs = store.NewPostgres(res.DB)
	}

	registry := catalog.Default()

	var idgen records.IDGenerator = records.MaxScan{}
	if cfg.IDPolicy == "timestamp" {
		idgen = records.Timestamp{}
	}

	provider := bootstrap.TypedServiceProviderFunc[*records.Service](
		func(ctx context.Context, _ interface{}, storage bootstrap.Storage) (*records.Service, error) {
			docs, _ := storage.(store.Store)
			return records.NewService(records.Options{
				Store:    docs,
				Registry: registry,
				IDGen:    idgen,
			}), nil
		},
	)
	svc, err := provider.ProvideTyped(context.Background(), cfg, docs)
	if err != nil {
		return nil, err
	}

	sessions := flow.NewSessions()
	machine := flow.NewMachine(sessions, registry, svc)

	return &App{
		cfg:     cfg,
		store:   docs,
		records: svc,
		machine: machine,
		surface: bot.New(machine, svc),
	}, nil
}

// TelegramRunOptions implements cmd.TelegramApp.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()
	if err := a.surface.Register(reg); err != nil {
		return coretelegram.RunOptions{}, err
	}

	return coretelegram.RunOptions{
		Config:      &a.cfg.Core,
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(&a.cfg.Core, nil),
		Routes:      a.surface.Routes(reg, a.cfg.Core.Telegram.AdminID),
	}, nil
}

// Close releases held infrastructure.
func (a *App) Close() error {
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}
