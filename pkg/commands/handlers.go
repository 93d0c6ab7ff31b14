package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Jacobbrewer1/broker/pkg/entities"
	"github.com/Jacobbrewer1/broker/pkg/keys"
	"github.com/Jacobbrewer1/broker/pkg/logging"
	"github.com/Jacobbrewer1/broker/pkg/messages"
)

func (d *Dispatcher) registerCore() {
	d.registry.Register(&Command{
		Name:        "help",
		Description: "List the available commands.",
		Handler:     d.help,
	})
	d.registry.Register(&Command{
		Name:        "redeem",
		Usage:       "<key>",
		Description: "Redeem a key to unlock the ticket or middleman bot.",
		MinArgs:     1,
		Handler:     d.redeem,
	})
	d.registry.Register(&Command{
		Name:        setupCommand,
		Description: "Set up the bot for this server.",
		GuildOnly:   true,
		Handler:     d.shazam,
	})
	d.registry.Register(&Command{
		Name:        "ticket1",
		Description: "Post the ticket panel in this channel.",
		GuildOnly:   true,
		Handler:     d.panel,
	})
	d.registry.Register(&Command{
		Name:        "add",
		Usage:       "<user>",
		Description: "Add a user to this ticket.",
		MinArgs:     1,
		GuildOnly:   true,
		Handler:     d.add,
	})
	d.registry.Register(&Command{
		Name:        "transfer",
		Usage:       "<user>",
		Description: "Transfer this ticket to another middleman.",
		MinArgs:     1,
		GuildOnly:   true,
		Handler:     d.transfer,
	})
	d.registry.Register(&Command{
		Name:        "close",
		Description: "Close this ticket and post its transcript.",
		GuildOnly:   true,
		Handler:     d.close,
	})
}

func (d *Dispatcher) help(_ context.Context, _ *Request) Result {
	var sb strings.Builder
	sb.WriteString(messages.HelpHeader)
	for _, cmd := range d.registry.Commands(d.cfg.Variant) {
		sb.WriteString("\n`")
		sb.WriteString(d.cfg.Prefix)
		sb.WriteString(cmd.Name)
		if cmd.Usage != "" {
			sb.WriteString(" ")
			sb.WriteString(cmd.Usage)
		}
		sb.WriteString("` ")
		sb.WriteString(cmd.Description)
	}
	return Result{Status: StatusSuccess, Reply: sb.String()}
}

func (d *Dispatcher) redeem(ctx context.Context, req *Request) Result {
	tier, err := d.ledger.Redeem(ctx, req.AuthorID, req.Args[0], d.now())
	switch {
	case errors.Is(err, keys.ErrInvalidKey):
		return Result{Status: StatusInvalid, Reply: messages.InvalidKey}
	case errors.Is(err, keys.ErrAlreadyUsed):
		return Result{Status: StatusInvalid, Reply: messages.KeyAlreadyUsed}
	case err != nil:
		return failed("", err)
	}

	if err := d.platform.SendDM(ctx, req.AuthorID, fmt.Sprintf(messages.RedeemDM, tier)); err != nil {
		d.l.Warn("Error sending redemption DM",
			slog.String(logging.KeyUserID, req.AuthorID),
			slog.String(logging.KeyError, err.Error()),
		)
		return Result{Status: StatusSuccess, Reply: fmt.Sprintf(messages.KeyRedeemedNoDM, tier)}
	}
	return Result{Status: StatusSuccess, Reply: fmt.Sprintf(messages.KeyRedeemed, tier)}
}

func (d *Dispatcher) shazam(ctx context.Context, req *Request) Result {
	if _, denied := d.requireMode(ctx, req.AuthorID); denied != nil {
		return *denied
	}

	out := d.setup.Start(req.GuildID, req.ChannelID, req.AuthorID, d.now())
	return Result{Status: StatusSuccess, ChannelID: out.ChannelID, Reply: out.Reply}
}

func (d *Dispatcher) panel(ctx context.Context, req *Request) Result {
	mode, denied := d.requireMode(ctx, req.AuthorID)
	if denied != nil {
		return *denied
	}

	p := Panel{
		Title: messages.PanelTicketTitle,
		Body:  messages.PanelTicketBody,
		Mode:  mode,
	}
	if mode == entities.ModeMiddleman {
		p.Title = messages.PanelMiddlemanTitle
		p.Body = messages.PanelMiddlemanBody
	}

	if err := d.platform.SendPanel(ctx, req.ChannelID, p); err != nil {
		return failed("", err)
	}
	return Result{Status: StatusSuccess}
}
