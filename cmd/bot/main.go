package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Jacobbrewer1/broker/pkg/logging"
	"github.com/spf13/pflag"
)

func main() {
	cfg, err := ParseConfig(os.Args[1:], os.Getenv)
	if errors.Is(err, pflag.ErrHelp) {
		return
	} else if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, cleanup, err := InitializeApp(ctx, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer cleanup()

	a.Info("Starting application")
	if err := a.Run(ctx); err != nil {
		a.Error("Error running application", slog.String(logging.KeyError, err.Error()))
		cleanup()
		os.Exit(1)
	}
}
