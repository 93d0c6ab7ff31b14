package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Jacobbrewer1/broker/pkg/commands"
	"github.com/Jacobbrewer1/broker/pkg/dataaccess"
	"github.com/Jacobbrewer1/broker/pkg/logging"
	"github.com/Jacobbrewer1/broker/pkg/request"
	"github.com/Jacobbrewer1/broker/pkg/setup"
	"github.com/Jacobbrewer1/broker/pkg/ticketing"
	"github.com/Jacobbrewer1/discordgo"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// PathMetrics is the path for metrics.
	PathMetrics = "/metrics"

	// PathHealth is the path for health check.
	PathHealth = "/health"

	// setupSweepInterval is how often timed out setup dialogues are reported.
	setupSweepInterval = 5 * time.Second

	shutdownTimeout = 10 * time.Second
)

// IApp is the interface for the application.
type IApp interface {
	// Log returns the application logger.
	Log() *slog.Logger

	// Session returns the discord session.
	Session() *discordgo.Session
}

type App struct {
	// is the logger.
	*slog.Logger

	cfg *Config

	// r is the router for the application.
	r *mux.Router

	// svr is the server for the application.
	svr *http.Server

	// s is the discord session.
	s *discordgo.Session

	store      *dataaccess.Store
	engine     *setup.Engine
	tickets    *ticketing.Manager
	dispatcher *commands.Dispatcher

	// ctx is the context handlers run under. It is cancelled on shutdown.
	ctx context.Context

	// eventNotifier is the channel for notifying of events.
	eventNotifier chan any
}

// NewApp creates a new instance of App.
func NewApp(
	l *slog.Logger,
	cfg *Config,
	r *mux.Router,
	s *discordgo.Session,
	store *dataaccess.Store,
	engine *setup.Engine,
	tickets *ticketing.Manager,
	dispatcher *commands.Dispatcher,
) *App {
	return &App{
		Logger:     l,
		cfg:        cfg,
		r:          r,
		s:          s,
		store:      store,
		engine:     engine,
		tickets:    tickets,
		dispatcher: dispatcher,
		ctx:        context.Background(),
	}
}

// Run loads the state, connects to Discord and serves the monitoring
// endpoints until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.ctx = ctx

	if err := a.store.Load(ctx); err != nil {
		return fmt.Errorf("error loading state: %w", err)
	}

	a.RegisterBot()

	a.s.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		a.Info(fmt.Sprintf("Logged in as %s", r.User.Username))
	})

	a.RegisterDiscordHandlers()

	// Start event listener.
	go a.eventListener()

	// Open websocket.
	if err := a.s.Open(); err != nil {
		return fmt.Errorf("error opening connection to Discord: %w", err)
	}

	a.Info("Bot is now running.",
		slog.String("variant", string(a.cfg.Variant)),
		slog.String("backend", a.store.Backend()),
	)

	go a.engine.Run(ctx, setupSweepInterval, a.notifySetup)

	a.generateServer()
	a.setupRoutes()
	a.runServer()

	<-ctx.Done()
	a.Info("Received shutdown signal")

	if err := a.ShutdownHook(); err != nil {
		return fmt.Errorf("error shutting down application: %w", err)
	}
	return nil
}

func (a *App) ShutdownHook() error {
	// Reset the total number of guilds to 0.
	TotalDiscordGuilds.Set(0)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if a.svr != nil {
		if err := a.svr.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("error stopping monitoring server: %w", err))
		}
	}

	// Close the connection to Discord.
	if err := a.s.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing connection to Discord: %w", err))
	}
	return errors.Join(errs...)
}

func (a *App) RegisterBot() {
	// Default the number of guilds to 0.
	TotalDiscordGuilds.Set(0)

	if a.eventNotifier == nil {
		// Buffered so the gateway is never blocked on metrics.
		a.eventNotifier = make(chan any, 100)
	}

	a.s.SetEventNotifier(a.eventNotifier)
}

func (a *App) runServer() {
	go func() {
		a.Info("Starting monitoring server", slog.String("addr", a.svr.Addr))
		if err := a.svr.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Error("Error starting monitoring server", slog.String(logging.KeyError, err.Error()))
			a.Warn("Monitoring server will not be available")
		}
	}()
}

func (a *App) setupRoutes() {
	a.r.HandleFunc(PathMetrics, middlewareHttp(promhttp.Handler().ServeHTTP, a)).Methods(http.MethodGet)
	a.r.HandleFunc(PathHealth, middlewareHttp(a.healthCheck(), a)).Methods(http.MethodGet)

	a.r.NotFoundHandler = request.NotFoundHandler(a.Logger)
	a.r.MethodNotAllowedHandler = request.MethodNotAllowedHandler(a.Logger)
}

func (a *App) generateServer() {
	a.svr = &http.Server{
		Addr:              ":" + a.cfg.MonitoringPort,
		Handler:           a.r,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func (a *App) RegisterDiscordHandlers() {
	// Bot joined guild.
	a.s.AddHandler(guildJoinedHandler(a))

	// Bot left guild.
	a.s.AddHandler(guildLeaveHandler(a))

	// Ticket channel removed outside the bot.
	a.s.AddHandler(a.channelDeleteHandler)

	// Prefix commands, setup answers and mode selection.
	a.s.AddHandler(a.messageCreateHandler)

	// Ticket buttons.
	a.s.AddHandler(a.interactionHandler)
}

func (a *App) eventListener() {
	for e := range a.eventNotifier {
		switch t := e.(type) {
		case *discordgo.Event:
			if t.Type != "" {
				TotalDiscordEvents.WithLabelValues(t.Type).Inc()
			} else {
				// If there is no type, then use the operation name.
				TotalDiscordEvents.WithLabelValues(strings.ToUpper(t.Operation.String())).Inc()
			}
		default:
			a.Error("Unknown event type", slog.String("type", fmt.Sprintf("%T", e)))
			TotalDiscordEvents.WithLabelValues("UNKNOWN").Inc()
		}
	}
}

// notifySetup posts the timeout notice of an expired setup dialogue.
func (a *App) notifySetup(out setup.Outcome) {
	TotalSetupOutcomes.WithLabelValues(out.Kind.String()).Inc()
	if out.Reply == "" {
		return
	}

	if _, err := a.s.ChannelMessageSend(out.ChannelID, out.Reply); err != nil {
		a.Error("Error sending setup notice",
			slog.String(logging.KeyChannelID, out.ChannelID),
			slog.String(logging.KeyError, err.Error()),
		)
	}
}

func (a *App) Log() *slog.Logger {
	return a.Logger
}

func (a *App) Session() *discordgo.Session {
	return a.s
}
