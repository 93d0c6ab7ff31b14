package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Jacobbrewer1/broker/pkg/entities"
	"github.com/Jacobbrewer1/broker/pkg/logging"
	"github.com/Jacobbrewer1/broker/pkg/messages"
)

// Button custom IDs.
const (
	ButtonRequestTicket  = "request_ticket"
	ButtonClaimTicket    = "claim_ticket"
	ButtonUnclaimTicket  = "unclaim_ticket"
	ButtonCloseTicket    = "close_ticket"
	ButtonTransferTicket = "transfer_ticket"
	ButtonAddTicket      = "add_ticket"
)

// RequestButtonID returns the custom ID of the request button of a panel for mode.
func RequestButtonID(mode entities.Mode) string {
	if mode == entities.ModeUnset {
		return ButtonRequestTicket
	}
	return ButtonRequestTicket + ":" + string(mode)
}

// HandleButton processes a button press.
func (d *Dispatcher) HandleButton(ctx context.Context, in *Interaction) Result {
	if in == nil {
		return Result{Status: StatusIgnored}
	}

	id, arg, _ := strings.Cut(in.CustomID, ":")

	var res Result
	switch id {
	case ButtonRequestTicket:
		res = d.requestTicket(ctx, in, entities.Mode(arg))
	case ButtonClaimTicket:
		t, err := d.tickets.Claim(ctx, in.ChannelID, in.User)
		if err != nil {
			res = d.ticketError(err, t, in.ChannelID, "")
		} else {
			res = Result{Status: StatusSuccess, Reply: fmt.Sprintf(messages.TicketClaimed, in.User.ID)}
		}
	case ButtonUnclaimTicket:
		t, err := d.tickets.Unclaim(ctx, in.ChannelID, in.User)
		if err != nil {
			res = d.ticketError(err, t, in.ChannelID, "")
		} else {
			res = Result{Status: StatusSuccess, Reply: fmt.Sprintf(messages.TicketUnclaimed, in.User.ID)}
		}
	case ButtonCloseTicket:
		if _, err := d.tickets.Close(ctx, in.ChannelID, in.User); err != nil {
			res = d.ticketError(err, nil, in.ChannelID, "")
		} else {
			res = Result{Status: StatusSuccess, Ephemeral: true}
		}
	case ButtonTransferTicket:
		res = Result{Status: StatusSuccess, Ephemeral: true, Reply: fmt.Sprintf(messages.TicketTransferHint, d.cfg.Prefix)}
	case ButtonAddTicket:
		res = Result{Status: StatusSuccess, Ephemeral: true, Reply: fmt.Sprintf(messages.TicketAddHint, d.cfg.Prefix)}
	default:
		return Result{Status: StatusIgnored, Command: in.CustomID}
	}

	res.Command = id
	if res.Status != StatusSuccess {
		res.Ephemeral = true
	}
	if res.Status == StatusFailed {
		d.l.Error("Error handling button",
			slog.String(logging.KeyCommand, id),
			slog.String(logging.KeyGuildID, in.GuildID),
			slog.String(logging.KeyChannelID, in.ChannelID),
			slog.String(logging.KeyUserID, in.User.ID),
			slog.String(logging.KeyError, errString(res.Err)),
		)
	}
	return res
}

func (d *Dispatcher) requestTicket(ctx context.Context, in *Interaction, mode entities.Mode) Result {
	if in.GuildID == "" {
		return Result{Status: StatusInvalid, Reply: messages.ErrNotInGuild}
	}
	if err := d.ensureGuild(ctx, in.GuildID); err != nil {
		return failed("", err)
	}

	if mode != entities.ModeMiddleman {
		mode = entities.ModeTicket
	}

	t, err := d.tickets.Create(ctx, in.GuildID, in.User, mode, d.now())
	if err != nil {
		return d.ticketError(err, nil, in.ChannelID, "")
	}
	return Result{Status: StatusSuccess, Ephemeral: true, Reply: fmt.Sprintf(messages.TicketCreated, t.ChannelID)}
}
