package ticketing

import (
	"context"
	"log/slog"

	"github.com/Jacobbrewer1/broker/pkg/entities"
	"github.com/Jacobbrewer1/broker/pkg/logging"
)

// Intent is the desired send permission for one target in a ticket channel.
type Intent struct {
	TargetID string
	Type     TargetType

	// Allow is an explicit allow when true and an explicit deny when false.
	Allow bool
}

// PermissionOutcome is the result of applying one intent.
type PermissionOutcome struct {
	Intent Intent
	Err    error
}

// Intents computes the send permissions a ticket channel should have. The
// middleman role may send only while the ticket is unclaimed; the opener,
// claimer, added users and the helper and co-owner roles may always send.
// Unconfigured roles are skipped and each member appears once.
func Intents(t *entities.Ticket, gs entities.GuildSetup) []Intent {
	intents := make([]Intent, 0, 4+len(t.AddedUsers))

	if gs.MiddlemanRoleID != "" {
		intents = append(intents, Intent{TargetID: gs.MiddlemanRoleID, Type: TargetRole, Allow: !t.IsClaimed()})
	}

	seen := make(map[string]struct{})
	addMember := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		intents = append(intents, Intent{TargetID: id, Type: TargetMember, Allow: true})
	}

	addMember(t.Opener)
	addMember(t.ClaimedBy)
	for _, u := range t.AddedUsers {
		addMember(u)
	}

	for _, r := range []string{gs.HelperRoleID, gs.CoOwnerRoleID} {
		if r != "" && r != gs.MiddlemanRoleID {
			intents = append(intents, Intent{TargetID: r, Type: TargetRole, Allow: true})
		}
	}
	return intents
}

// Apply applies each intent independently. A failure for one target does not
// stop the others; every outcome is returned.
func Apply(ctx context.Context, l *slog.Logger, p Platform, channelID string, intents []Intent) []PermissionOutcome {
	out := make([]PermissionOutcome, 0, len(intents))
	for _, in := range intents {
		err := p.SetSendPermission(ctx, channelID, in)
		if err != nil {
			l.Warn("Error setting ticket permission",
				slog.String(logging.KeyChannelID, channelID),
				slog.String("target", in.TargetID),
				slog.String("target_type", in.Type.String()),
				slog.String(logging.KeyError, err.Error()),
			)
		}
		out = append(out, PermissionOutcome{Intent: in, Err: err})
	}
	return out
}

// Failed returns the outcomes that errored.
func Failed(outcomes []PermissionOutcome) []PermissionOutcome {
	var failed []PermissionOutcome
	for _, o := range outcomes {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}
