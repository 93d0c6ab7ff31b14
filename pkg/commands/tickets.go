package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/Jacobbrewer1/broker/pkg/entities"
	"github.com/Jacobbrewer1/broker/pkg/messages"
	"github.com/Jacobbrewer1/broker/pkg/ticketing"
)

func (d *Dispatcher) add(ctx context.Context, req *Request) Result {
	target, ok := parseUser(req.Args[0])
	if !ok {
		return Result{Status: StatusInvalid, Reply: messages.InvalidUserReference}
	}

	t, err := d.tickets.Add(ctx, req.ChannelID, req.actor(), target)
	if err != nil {
		return d.ticketError(err, t, req.ChannelID, target)
	}
	return Result{Status: StatusSuccess, Reply: fmt.Sprintf(messages.TicketAdded, target)}
}

func (d *Dispatcher) transfer(ctx context.Context, req *Request) Result {
	target, ok := parseUser(req.Args[0])
	if !ok {
		return Result{Status: StatusInvalid, Reply: messages.InvalidUserReference}
	}

	t, changed, err := d.tickets.Transfer(ctx, req.ChannelID, req.actor(), target)
	if err != nil {
		return d.ticketError(err, t, req.ChannelID, target)
	} else if !changed {
		return Result{Status: StatusSuccess, Reply: fmt.Sprintf(messages.TicketTransferNoop, target)}
	}
	return Result{Status: StatusSuccess, Reply: fmt.Sprintf(messages.TicketTransferred, target)}
}

func (d *Dispatcher) close(ctx context.Context, req *Request) Result {
	if _, err := d.tickets.Close(ctx, req.ChannelID, req.actor()); err != nil {
		return d.ticketError(err, nil, req.ChannelID, "")
	}

	// The channel is gone, so there is nowhere to reply.
	return Result{Status: StatusSuccess}
}

// ticketError maps a ticket manager error to the reply shown to the user.
func (d *Dispatcher) ticketError(err error, t *entities.Ticket, channelID, target string) Result {
	switch {
	case errors.Is(err, ticketing.ErrNotTicket):
		return Result{Status: StatusInvalid, Reply: messages.ErrNotTicketChannel}
	case errors.Is(err, ticketing.ErrNotConfigured):
		return Result{Status: StatusInvalid, Reply: fmt.Sprintf(messages.TicketNoSetup, d.cfg.Prefix)}
	case errors.Is(err, ticketing.ErrNotMiddleman):
		return Result{Status: StatusDenied, Reply: fmt.Sprintf(messages.TicketNotMiddleman, d.middlemanRole(channelID))}
	case errors.Is(err, ticketing.ErrNotAuthorized):
		return Result{Status: StatusDenied, Reply: messages.TicketNotAuthorized}
	case errors.Is(err, ticketing.ErrAlreadyClaimed):
		claimer := ""
		if t != nil {
			claimer = t.ClaimedBy
		}
		return Result{Status: StatusDenied, Reply: fmt.Sprintf(messages.TicketAlreadyClaimed, claimer)}
	case errors.Is(err, ticketing.ErrNotClaimed):
		return Result{Status: StatusInvalid, Reply: messages.TicketNotClaimed}
	case errors.Is(err, ticketing.ErrTargetNotMiddleman):
		return Result{Status: StatusInvalid, Reply: fmt.Sprintf(messages.TicketTargetNotMM, target)}
	case errors.Is(err, ticketing.ErrAlreadyAdded):
		return Result{Status: StatusInvalid, Reply: fmt.Sprintf(messages.TicketAlreadyAdded, target)}
	default:
		return failed("", err)
	}
}

func (d *Dispatcher) middlemanRole(channelID string) string {
	_, gs, err := d.tickets.Ticket(channelID)
	if err != nil {
		return ""
	}
	return gs.MiddlemanRoleID
}
