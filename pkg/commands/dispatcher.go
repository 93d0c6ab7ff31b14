package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Jacobbrewer1/broker/pkg/dataaccess"
	"github.com/Jacobbrewer1/broker/pkg/entities"
	"github.com/Jacobbrewer1/broker/pkg/keys"
	"github.com/Jacobbrewer1/broker/pkg/logging"
	"github.com/Jacobbrewer1/broker/pkg/messages"
	"github.com/Jacobbrewer1/broker/pkg/setup"
	"github.com/Jacobbrewer1/broker/pkg/social"
	"github.com/Jacobbrewer1/broker/pkg/ticketing"
	"golang.org/x/time/rate"
)

const (
	afkCommand   = "afk"
	setupCommand = "shazam"
)

// Config is the static configuration of the dispatcher.
type Config struct {
	Prefix  string
	OwnerID string
	Variant Variant

	// DMRate limits the owner broadcast, in messages per second.
	DMRate rate.Limit

	// DMBurst is the burst size of the owner broadcast limiter.
	DMBurst int
}

// Option configures a Dispatcher.
type Option func(d *Dispatcher)

// WithClock sets the clock used for redemptions, dialogues and AFK records.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		d.now = now
	}
}

// Dispatcher routes inbound messages and button presses to the services.
type Dispatcher struct {
	l        *slog.Logger
	cfg      Config
	registry *Registry
	store    *dataaccess.Store
	ledger   *keys.Ledger
	setup    *setup.Engine
	tickets  *ticketing.Manager
	social   *social.Service
	platform Platform
	limiter  *rate.Limiter
	now      func() time.Time
}

// NewDispatcher creates a dispatcher with every command for cfg.Variant registered.
func NewDispatcher(
	l *slog.Logger,
	cfg Config,
	store *dataaccess.Store,
	ledger *keys.Ledger,
	engine *setup.Engine,
	tickets *ticketing.Manager,
	socialSvc *social.Service,
	platform Platform,
	opts ...Option,
) *Dispatcher {
	if cfg.DMRate <= 0 {
		cfg.DMRate = rate.Limit(4)
	}
	if cfg.DMBurst <= 0 {
		cfg.DMBurst = 1
	}

	d := &Dispatcher{
		l:        l.With(slog.String(logging.KeyComponent, "dispatcher")),
		cfg:      cfg,
		registry: NewRegistry(),
		store:    store,
		ledger:   ledger,
		setup:    engine,
		tickets:  tickets,
		social:   socialSvc,
		platform: platform,
		limiter:  rate.NewLimiter(cfg.DMRate, cfg.DMBurst),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}

	d.registerCore()
	if cfg.Variant == VariantFull {
		d.registerFull()
	}
	return d
}

// Registry returns the dispatcher's command registry.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// HandleMessage processes an inbound message and returns the replies to send,
// in order. Bot messages produce nothing.
func (d *Dispatcher) HandleMessage(ctx context.Context, msg *Message) []Result {
	if msg == nil || msg.Bot {
		return nil
	}

	now := d.now()
	results := make([]Result, 0, 1)

	if msg.GuildID != "" {
		if err := d.ensureGuild(ctx, msg.GuildID); err != nil {
			d.l.Error("Error creating guild setup",
				slog.String(logging.KeyGuildID, msg.GuildID),
				slog.String(logging.KeyError, err.Error()),
			)
		}
	}

	name, args, rest, isCommand := Parse(d.cfg.Prefix, msg.Content)

	if d.cfg.Variant == VariantFull {
		results = append(results, d.afkEffects(ctx, msg, isCommand && name == afkCommand)...)
	}

	// The setup command restarts a running dialogue instead of answering it.
	if !isCommand || name != setupCommand {
		if out := d.setup.Handle(ctx, msg.ChannelID, msg.AuthorID, msg.Content, now); out.Kind != setup.OutcomeIgnored {
			return append(results, setupResult(out))
		}
	}

	mode, selected, err := d.ledger.SelectMode(ctx, msg.AuthorID, msg.Content)
	if err != nil {
		d.l.Error("Error selecting mode",
			slog.String(logging.KeyUserID, msg.AuthorID),
			slog.String(logging.KeyError, err.Error()),
		)
		return append(results, failed("mode", err))
	} else if selected {
		return append(results, Result{
			Status:  StatusSuccess,
			Command: "mode",
			Reply:   fmt.Sprintf(messages.ModeSelected, modeName(mode), d.cfg.Prefix),
		})
	}

	if !isCommand {
		return results
	}

	cmd, ok := d.registry.Lookup(name)
	if !ok {
		return results
	}

	res := d.run(ctx, cmd, &Request{Message: msg, Args: args, Rest: rest})
	if res.Status == StatusIgnored {
		return results
	}
	return append(results, res)
}

func (d *Dispatcher) run(ctx context.Context, cmd *Command, req *Request) Result {
	usage := messages.UsagePrefix + "`" + d.cfg.Prefix + cmd.Name
	if cmd.Usage != "" {
		usage += " " + cmd.Usage
	}
	usage += "`"

	var res Result
	switch {
	case cmd.GuildOnly && req.GuildID == "":
		res = Result{Status: StatusInvalid, Reply: messages.ErrNotInGuild}
	case len(req.Args) < cmd.MinArgs:
		res = Result{Status: StatusInvalid, Reply: usage}
	default:
		res = cmd.Handler(ctx, req)
	}

	res.Command = cmd.Name
	if res.Status == StatusFailed {
		d.l.Error("Error handling command",
			slog.String(logging.KeyCommand, cmd.Name),
			slog.String(logging.KeyGuildID, req.GuildID),
			slog.String(logging.KeyChannelID, req.ChannelID),
			slog.String(logging.KeyUserID, req.AuthorID),
			slog.String(logging.KeyError, errString(res.Err)),
		)
	}
	return res
}

// ensureGuild creates an empty setup record for guildID when there is none.
func (d *Dispatcher) ensureGuild(ctx context.Context, guildID string) error {
	exists := false
	d.store.View(func(doc *entities.Document) {
		_, exists = doc.Guilds[guildID]
	})
	if exists {
		return nil
	}

	return d.store.Update(ctx, func(doc *entities.Document) error {
		doc.Guild(guildID)
		return nil
	})
}

// afkEffects clears the author's AFK status and reports mentioned AFK users.
func (d *Dispatcher) afkEffects(ctx context.Context, msg *Message, isAfkCommand bool) []Result {
	var out []Result

	if !isAfkCommand {
		cleared, err := d.social.ClearAfk(ctx, msg.AuthorID)
		if err != nil {
			d.l.Error("Error clearing AFK",
				slog.String(logging.KeyUserID, msg.AuthorID),
				slog.String(logging.KeyError, err.Error()),
			)
		} else if cleared {
			out = append(out, Result{
				Status:  StatusSuccess,
				Command: afkCommand,
				Reply:   fmt.Sprintf(messages.AfkCleared, msg.AuthorID),
			})
		}
	}

	mentioned := make([]string, 0, len(msg.Mentions))
	for _, id := range msg.Mentions {
		if id != msg.AuthorID {
			mentioned = append(mentioned, id)
		}
	}
	if len(mentioned) == 0 {
		return out
	}

	statuses := d.social.Afk(mentioned...)
	seen := make(map[string]struct{}, len(statuses))
	for _, id := range mentioned {
		rec, ok := statuses[id]
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, Result{
			Status:  StatusSuccess,
			Command: afkCommand,
			Reply:   fmt.Sprintf(messages.AfkNotice, id, rec.Reason, rec.Since.Unix()),
		})
	}
	return out
}

// requireMode resolves the author's unlocked mode. A non-nil result is the
// reply to send when there is none.
func (d *Dispatcher) requireMode(ctx context.Context, userID string) (entities.Mode, *Result) {
	um, err := d.ledger.Active(ctx, userID, d.now())
	switch {
	case err == nil:
		return um.Mode, nil
	case errors.Is(err, keys.ErrNoMode):
		return entities.ModeUnset, &Result{Status: StatusDenied, Reply: fmt.Sprintf(messages.ModeNotRedeemed, d.cfg.Prefix)}
	case errors.Is(err, keys.ErrModeUnset):
		return entities.ModeUnset, &Result{Status: StatusDenied, Reply: messages.ModeNotSelected}
	case errors.Is(err, keys.ErrExpired):
		return entities.ModeUnset, &Result{Status: StatusDenied, Reply: fmt.Sprintf(messages.ModeExpired, d.cfg.Prefix)}
	default:
		res := failed("", err)
		return entities.ModeUnset, &res
	}
}

func setupResult(out setup.Outcome) Result {
	res := Result{
		Status:    StatusSuccess,
		Command:   "setup",
		ChannelID: out.ChannelID,
		Reply:     out.Reply,
		Err:       out.Err,
	}
	switch out.Kind {
	case setup.OutcomeReprompt:
		res.Status = StatusInvalid
	case setup.OutcomeFailed:
		res.Status = StatusFailed
	}
	return res
}

func failed(command string, err error) Result {
	return Result{
		Status:  StatusFailed,
		Command: command,
		Reply:   messages.ErrUserErrorProcessing,
		Err:     err,
	}
}

func modeName(mode entities.Mode) string {
	if mode == entities.ModeMiddleman {
		return messages.ModeMiddlemanName
	}
	return messages.ModeTicketName
}

// parseUser returns the user ID referenced by a mention or raw ID.
func parseUser(s string) (string, bool) {
	id := setup.NormalizeID(s)
	if id == "" || strings.ContainsAny(id, "<>@#& \t\n") {
		return "", false
	}
	return id, true
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
