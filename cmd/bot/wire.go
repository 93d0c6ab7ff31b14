//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"github.com/Jacobbrewer1/broker/pkg/commands"
	"github.com/Jacobbrewer1/broker/pkg/dataaccess"
	"github.com/Jacobbrewer1/broker/pkg/logging"
	"github.com/Jacobbrewer1/broker/pkg/social"
	"github.com/Jacobbrewer1/broker/pkg/ticketing"
	"github.com/google/wire"
	"github.com/gorilla/mux"
)

func InitializeApp(ctx context.Context, cfg *Config) (*App, func(), error) {
	wire.Build(
		wire.Value(logging.Name(AppName)),
		logging.NewConfig,
		logging.CommonLogger,
		mux.NewRouter,
		NewSession,
		newPlatform,
		wire.Bind(new(ticketing.Platform), new(*discordPlatform)),
		wire.Bind(new(commands.Platform), new(*discordPlatform)),
		NewPersister,
		dataaccess.NewStore,
		NewLedger,
		NewSetupEngine,
		ticketing.NewManager,
		social.NewService,
		NewDispatcher,
		NewApp,
	)
	return nil, nil, nil
}
