package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/broker/pkg/commands"
	"github.com/Jacobbrewer1/broker/pkg/dataaccess"
	"github.com/Jacobbrewer1/broker/pkg/dataaccess/connection"
	"github.com/Jacobbrewer1/broker/pkg/keys"
	"github.com/Jacobbrewer1/broker/pkg/logging"
	"github.com/Jacobbrewer1/broker/pkg/setup"
	"github.com/Jacobbrewer1/broker/pkg/social"
	"github.com/Jacobbrewer1/broker/pkg/ticketing"
	"github.com/Jacobbrewer1/discordgo"
	"golang.org/x/time/rate"
)

// botIntents are the gateway events the bot needs.
const botIntents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMembers |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsDirectMessages |
	discordgo.IntentsMessageContent

// NewSession creates the Discord session. It is not opened.
func NewSession(cfg *Config) (*discordgo.Session, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}

	dg.Identify.Intents = botIntents
	return dg, nil
}

// NewPersister connects the configured state store backend.
func NewPersister(ctx context.Context, l *slog.Logger, cfg *Config) (dataaccess.Persister, func(), error) {
	switch cfg.Backend {
	case dataaccess.BackendMongo:
		conn := &connection.MongoDB{ConnectionString: cfg.MongoURI}
		client, err := conn.Connect(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("error connecting to mongo: %w", err)
		}
		l.Debug("Connected to MongoDB")

		return dataaccess.NewMongoPersister(client), func() {
			if err := client.Disconnect(context.Background()); err != nil {
				l.Error("Error disconnecting from mongo", slog.String(logging.KeyError, err.Error()))
			}
		}, nil
	case dataaccess.BackendRedis:
		conn := &connection.Redis{URL: cfg.RedisURL}
		client, err := conn.Connect(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("error connecting to redis: %w", err)
		}
		l.Debug("Connected to Redis")

		return dataaccess.NewRedisPersister(client, cfg.RedisKey), func() {
			if err := client.Close(); err != nil {
				l.Error("Error closing redis client", slog.String(logging.KeyError, err.Error()))
			}
		}, nil
	case dataaccess.BackendFile:
		return dataaccess.NewFilePersister(cfg.StateFile), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// NewLedger creates the key ledger from the configured key table.
func NewLedger(l *slog.Logger, store *dataaccess.Store, cfg *Config) *keys.Ledger {
	return keys.NewLedger(l, store, cfg.Keys)
}

// NewSetupEngine creates the setup dialogue engine.
func NewSetupEngine(l *slog.Logger, store *dataaccess.Store, cfg *Config) *setup.Engine {
	return setup.NewEngine(l, store, cfg.Prefix)
}

// NewDispatcher creates the command dispatcher for the configured variant.
func NewDispatcher(
	l *slog.Logger,
	cfg *Config,
	store *dataaccess.Store,
	ledger *keys.Ledger,
	engine *setup.Engine,
	tickets *ticketing.Manager,
	socialSvc *social.Service,
	platform commands.Platform,
) *commands.Dispatcher {
	return commands.NewDispatcher(l, commands.Config{
		Prefix:  cfg.Prefix,
		OwnerID: cfg.OwnerID,
		Variant: cfg.Variant,
		DMRate:  rate.Limit(cfg.DMRate),
		DMBurst: 1,
	}, store, ledger, engine, tickets, socialSvc, platform)
}
