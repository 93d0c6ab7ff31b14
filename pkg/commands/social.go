package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/broker/pkg/logging"
	"github.com/Jacobbrewer1/broker/pkg/messages"
	"github.com/Jacobbrewer1/broker/pkg/social"
)

func (d *Dispatcher) registerFull() {
	d.registry.Register(&Command{
		Name:        "vouch",
		Usage:       "<user>",
		Description: "Vouch for a user.",
		MinArgs:     1,
		FullOnly:    true,
		Handler:     d.vouch,
	})
	d.registry.Register(&Command{
		Name:        "vouches",
		Usage:       "[user]",
		Description: "Show how many vouches a user has.",
		FullOnly:    true,
		Handler:     d.vouches,
	})
	d.registry.Register(&Command{
		Name:        afkCommand,
		Usage:       "[reason]",
		Description: "Mark yourself as away.",
		FullOnly:    true,
		Handler:     d.afk,
	})
	d.registry.Register(&Command{
		Name:        "dm",
		Usage:       "<message>",
		Description: "DM every member of this server (owner only).",
		MinArgs:     1,
		GuildOnly:   true,
		FullOnly:    true,
		Handler:     d.broadcast,
	})
}

func (d *Dispatcher) vouch(ctx context.Context, req *Request) Result {
	target, ok := parseUser(req.Args[0])
	if !ok {
		return Result{Status: StatusInvalid, Reply: messages.InvalidUserReference}
	}

	n, err := d.social.Vouch(ctx, req.AuthorID, target)
	if errors.Is(err, social.ErrSelfVouch) {
		return Result{Status: StatusInvalid, Reply: messages.VouchSelf}
	} else if err != nil {
		return failed("", err)
	}
	return Result{Status: StatusSuccess, Reply: fmt.Sprintf(messages.VouchAdded, target, n)}
}

func (d *Dispatcher) vouches(_ context.Context, req *Request) Result {
	target := req.AuthorID
	if len(req.Args) > 0 {
		id, ok := parseUser(req.Args[0])
		if !ok {
			return Result{Status: StatusInvalid, Reply: messages.InvalidUserReference}
		}
		target = id
	}
	return Result{Status: StatusSuccess, Reply: fmt.Sprintf(messages.VouchCount, target, d.social.Vouches(target))}
}

func (d *Dispatcher) afk(ctx context.Context, req *Request) Result {
	reason := req.Rest
	if reason == "" {
		reason = messages.AfkDefault
	}

	rec, err := d.social.SetAfk(ctx, req.AuthorID, reason, d.now())
	if err != nil {
		return failed("", err)
	}
	return Result{Status: StatusSuccess, Reply: fmt.Sprintf(messages.AfkSet, req.AuthorID, rec.Reason)}
}

// broadcast DMs every human member of the guild, throttled by the limiter.
func (d *Dispatcher) broadcast(ctx context.Context, req *Request) Result {
	if d.cfg.OwnerID == "" || req.AuthorID != d.cfg.OwnerID {
		return Result{Status: StatusDenied, Reply: messages.DmOwnerOnly}
	}

	members, err := d.platform.GuildMemberIDs(ctx, req.GuildID)
	if err != nil {
		return failed("", err)
	}

	sent, failedCount := 0, 0
	for _, id := range members {
		if err := d.limiter.Wait(ctx); err != nil {
			d.l.Warn("Broadcast interrupted", slog.String(logging.KeyError, err.Error()))
			failedCount += len(members) - sent - failedCount
			break
		}

		if err := d.platform.SendDM(ctx, id, req.Rest); err != nil {
			d.l.Debug("Error sending broadcast DM",
				slog.String(logging.KeyUserID, id),
				slog.String(logging.KeyError, err.Error()),
			)
			failedCount++
			continue
		}
		sent++
	}

	d.l.Info("Broadcast sent",
		slog.String(logging.KeyGuildID, req.GuildID),
		slog.Int("sent", sent),
		slog.Int("failed", failedCount),
	)
	return Result{Status: StatusSuccess, Reply: fmt.Sprintf(messages.DmSent, sent, failedCount)}
}
