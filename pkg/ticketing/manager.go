package ticketing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/Jacobbrewer1/broker/pkg/custom"
	"github.com/Jacobbrewer1/broker/pkg/dataaccess"
	"github.com/Jacobbrewer1/broker/pkg/entities"
	"github.com/Jacobbrewer1/broker/pkg/logging"
	"github.com/Jacobbrewer1/broker/pkg/messages"
)

var (
	// ErrNotTicket is returned when the channel is not a ticket.
	ErrNotTicket = errors.New("channel is not a ticket")

	// ErrNotConfigured is returned when the guild has no middleman role configured.
	ErrNotConfigured = errors.New("guild is not set up")

	// ErrNotMiddleman is returned when the actor does not hold the middleman role.
	ErrNotMiddleman = errors.New("actor is not a middleman")

	// ErrNotAuthorized is returned when the actor may not perform the operation.
	ErrNotAuthorized = errors.New("actor is not authorized")

	// ErrAlreadyClaimed is returned when claiming a claimed ticket.
	ErrAlreadyClaimed = errors.New("ticket already claimed")

	// ErrNotClaimed is returned when unclaiming an unclaimed ticket.
	ErrNotClaimed = errors.New("ticket not claimed")

	// ErrTargetNotMiddleman is returned when transferring to a non-middleman.
	ErrTargetNotMiddleman = errors.New("target is not a middleman")

	// ErrAlreadyAdded is returned when adding a user twice.
	ErrAlreadyAdded = errors.New("user already added")
)

var channelNameRegex = regexp.MustCompile(`[^a-z0-9-]+`)

// CloseResult describes a closed ticket.
type CloseResult struct {
	// Transcript is the rendered, truncated transcript.
	Transcript string

	// TranscriptPosted is true when the transcript reached the transcripts channel.
	TranscriptPosted bool
}

// Manager drives the ticket lifecycle: open, claimed and unclaimed, then closed.
type Manager struct {
	l        *slog.Logger
	store    *dataaccess.Store
	platform Platform
}

// NewManager creates a ticket manager.
func NewManager(l *slog.Logger, store *dataaccess.Store, platform Platform) *Manager {
	return &Manager{
		l:        l.With(slog.String(logging.KeyComponent, "ticketing")),
		store:    store,
		platform: platform,
	}
}

// Ticket returns a copy of the ticket for channelID and its guild setup.
func (m *Manager) Ticket(channelID string) (*entities.Ticket, entities.GuildSetup, error) {
	var (
		t  *entities.Ticket
		gs entities.GuildSetup
	)
	m.store.View(func(doc *entities.Document) {
		rec, ok := doc.Tickets[channelID]
		if !ok {
			return
		}
		t = copyTicket(rec)
		if g, ok := doc.Guilds[rec.GuildID]; ok {
			gs = g.Setup
		}
	})
	if t == nil {
		return nil, gs, ErrNotTicket
	}
	return t, gs, nil
}

// Create opens a ticket channel for opener.
func (m *Manager) Create(ctx context.Context, guildID string, opener Actor, mode entities.Mode, now time.Time) (*entities.Ticket, error) {
	var gs entities.GuildSetup
	m.store.View(func(doc *entities.Document) {
		if g, ok := doc.Guilds[guildID]; ok {
			gs = g.Setup
		}
	})
	if gs.MiddlemanRoleID == "" {
		return nil, ErrNotConfigured
	}

	channelID, err := m.platform.CreateTicketChannel(ctx, ChannelRequest{
		GuildID:      guildID,
		Name:         channelName(mode, opener.Name),
		Topic:        fmt.Sprintf("Ticket opened by %s", opener.Name),
		OpenerID:     opener.ID,
		StaffRoleIDs: gs.Roles(),
	})
	if err != nil {
		return nil, fmt.Errorf("error creating ticket channel: %w", err)
	}

	t := &entities.Ticket{
		ChannelID:  channelID,
		GuildID:    guildID,
		Opener:     opener.ID,
		AddedUsers: make([]string, 0),
		Mode:       mode,
		CreatedAt:  custom.NewDatetime(now),
	}

	err = m.store.Update(ctx, func(doc *entities.Document) error {
		doc.Tickets[channelID] = copyTicket(t)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error saving ticket: %w", err)
	}

	if err := m.platform.SendControls(ctx, channelID, fmt.Sprintf(messages.TicketWelcome, opener.ID)); err != nil {
		m.l.Error("Error sending ticket controls",
			slog.String(logging.KeyChannelID, channelID),
			slog.String(logging.KeyError, err.Error()),
		)
	}

	m.Sync(ctx, t, gs)

	m.l.Info("Ticket created",
		slog.String(logging.KeyGuildID, guildID),
		slog.String(logging.KeyChannelID, channelID),
		slog.String(logging.KeyUserID, opener.ID),
	)
	return t, nil
}

// Claim assigns an unclaimed ticket to a middleman.
func (m *Manager) Claim(ctx context.Context, channelID string, actor Actor) (*entities.Ticket, error) {
	t, gs, err := m.Ticket(channelID)
	if err != nil {
		return nil, err
	}

	if t.IsClaimed() {
		return t, ErrAlreadyClaimed
	} else if !actor.HasRole(gs.MiddlemanRoleID) {
		return t, ErrNotMiddleman
	}

	t, err = m.mutate(ctx, channelID, func(rec *entities.Ticket) error {
		if rec.IsClaimed() {
			return ErrAlreadyClaimed
		}
		rec.ClaimedBy = actor.ID
		return nil
	})
	if err != nil {
		return t, err
	}

	m.Sync(ctx, t, gs)
	m.l.Info("Ticket claimed", slog.String(logging.KeyChannelID, channelID), slog.String(logging.KeyUserID, actor.ID))
	return t, nil
}

// Unclaim releases a claimed ticket. Only the claimer or a co-owner may do this.
func (m *Manager) Unclaim(ctx context.Context, channelID string, actor Actor) (*entities.Ticket, error) {
	t, gs, err := m.Ticket(channelID)
	if err != nil {
		return nil, err
	}

	if !t.IsClaimed() {
		return t, ErrNotClaimed
	} else if actor.ID != t.ClaimedBy && !actor.HasRole(gs.CoOwnerRoleID) {
		return t, ErrNotAuthorized
	}

	t, err = m.mutate(ctx, channelID, func(rec *entities.Ticket) error {
		if !rec.IsClaimed() {
			return ErrNotClaimed
		}
		rec.ClaimedBy = ""
		return nil
	})
	if err != nil {
		return t, err
	}

	m.Sync(ctx, t, gs)
	m.l.Info("Ticket unclaimed", slog.String(logging.KeyChannelID, channelID), slog.String(logging.KeyUserID, actor.ID))
	return t, nil
}

// Transfer assigns the ticket to targetID, who must be a middleman. The
// claimer, a co-owner or any middleman may transfer. Transferring to the
// current claimer changes nothing and reports changed as false.
func (m *Manager) Transfer(ctx context.Context, channelID string, actor Actor, targetID string) (*entities.Ticket, bool, error) {
	t, gs, err := m.Ticket(channelID)
	if err != nil {
		return nil, false, err
	}

	if !canManage(t, gs, actor) {
		return t, false, ErrNotAuthorized
	}

	if gs.MiddlemanRoleID == "" {
		return t, false, ErrTargetNotMiddleman
	}

	isMiddleman, err := m.platform.HasRole(ctx, t.GuildID, targetID, gs.MiddlemanRoleID)
	if err != nil {
		return t, false, fmt.Errorf("error checking target roles: %w", err)
	} else if !isMiddleman {
		return t, false, ErrTargetNotMiddleman
	}

	if t.ClaimedBy == targetID {
		return t, false, nil
	}

	t, err = m.mutate(ctx, channelID, func(rec *entities.Ticket) error {
		rec.ClaimedBy = targetID
		return nil
	})
	if err != nil {
		return t, false, err
	}

	m.Sync(ctx, t, gs)
	m.l.Info("Ticket transferred",
		slog.String(logging.KeyChannelID, channelID),
		slog.String(logging.KeyUserID, actor.ID),
		slog.String("target", targetID),
	)
	return t, true, nil
}

// Add grants targetID send access to the ticket. The claimer, a co-owner or
// any middleman may add users.
func (m *Manager) Add(ctx context.Context, channelID string, actor Actor, targetID string) (*entities.Ticket, error) {
	t, gs, err := m.Ticket(channelID)
	if err != nil {
		return nil, err
	}

	if !canManage(t, gs, actor) {
		return t, ErrNotAuthorized
	} else if t.HasAdded(targetID) {
		return t, ErrAlreadyAdded
	}

	t, err = m.mutate(ctx, channelID, func(rec *entities.Ticket) error {
		if rec.HasAdded(targetID) {
			return ErrAlreadyAdded
		}
		rec.AddedUsers = append(rec.AddedUsers, targetID)
		return nil
	})
	if err != nil {
		return t, err
	}

	m.Sync(ctx, t, gs)
	m.l.Info("User added to ticket",
		slog.String(logging.KeyChannelID, channelID),
		slog.String(logging.KeyUserID, actor.ID),
		slog.String("target", targetID),
	)
	return t, nil
}

// Close posts the transcript to the transcripts channel, if configured, and
// deletes the channel. Only the claimer or a co-owner may close. The ticket
// record is removed once the channel is gone; a failed delete leaves it so
// close can be retried.
func (m *Manager) Close(ctx context.Context, channelID string, actor Actor) (*CloseResult, error) {
	t, gs, err := m.Ticket(channelID)
	if err != nil {
		return nil, err
	}

	if !(t.IsClaimed() && actor.ID == t.ClaimedBy) && !actor.HasRole(gs.CoOwnerRoleID) {
		return nil, ErrNotAuthorized
	}

	msgs, err := m.platform.RecentMessages(ctx, channelID, TranscriptMessageLimit)
	if err != nil {
		return nil, fmt.Errorf("error fetching messages: %w", err)
	}

	res := &CloseResult{
		Transcript: Truncate(RenderTranscript(msgs), TranscriptMaxLength),
	}

	if gs.TranscriptsChannelID != "" {
		content := fmt.Sprintf(messages.TranscriptHeader, channelID, t.Opener) + "\n```\n" + res.Transcript + "\n```"
		if err := m.platform.SendMessage(ctx, gs.TranscriptsChannelID, content); err != nil {
			m.l.Error("Error posting transcript",
				slog.String(logging.KeyChannelID, channelID),
				slog.String(logging.KeyError, err.Error()),
			)
		} else {
			res.TranscriptPosted = true
		}
	}

	if err := m.platform.DeleteChannel(ctx, channelID); err != nil {
		return res, fmt.Errorf("error deleting ticket channel: %w", err)
	}

	if _, err := m.Forget(ctx, channelID); err != nil {
		m.l.Error("Error removing closed ticket",
			slog.String(logging.KeyChannelID, channelID),
			slog.String(logging.KeyError, err.Error()),
		)
	}

	m.l.Info("Ticket closed", slog.String(logging.KeyChannelID, channelID), slog.String(logging.KeyUserID, actor.ID))
	return res, nil
}

// Forget removes the ticket record for a deleted channel. It reports whether
// a record existed.
func (m *Manager) Forget(ctx context.Context, channelID string) (bool, error) {
	found := false
	m.store.View(func(doc *entities.Document) {
		_, found = doc.Tickets[channelID]
	})
	if !found {
		return false, nil
	}

	err := m.store.Update(ctx, func(doc *entities.Document) error {
		delete(doc.Tickets, channelID)
		return nil
	})
	if err != nil {
		return true, err
	}
	return true, nil
}

// Sync recomputes and applies the channel's send permissions.
func (m *Manager) Sync(ctx context.Context, t *entities.Ticket, gs entities.GuildSetup) []PermissionOutcome {
	outcomes := Apply(ctx, m.l, m.platform, t.ChannelID, Intents(t, gs))
	if failed := Failed(outcomes); len(failed) > 0 {
		m.l.Warn("Ticket permissions partially applied",
			slog.String(logging.KeyChannelID, t.ChannelID),
			slog.Int("failed", len(failed)),
			slog.Int("total", len(outcomes)),
		)
	}
	return outcomes
}

// mutate applies fn to the stored ticket and returns a copy of the result.
func (m *Manager) mutate(ctx context.Context, channelID string, fn func(rec *entities.Ticket) error) (*entities.Ticket, error) {
	var out *entities.Ticket
	err := m.store.Update(ctx, func(doc *entities.Document) error {
		rec, ok := doc.Tickets[channelID]
		if !ok {
			return ErrNotTicket
		}
		if err := fn(rec); err != nil {
			out = copyTicket(rec)
			return err
		}
		out = copyTicket(rec)
		return nil
	})
	return out, err
}

// canManage reports whether actor may transfer or add users.
func canManage(t *entities.Ticket, gs entities.GuildSetup, actor Actor) bool {
	return (t.IsClaimed() && actor.ID == t.ClaimedBy) ||
		actor.HasRole(gs.CoOwnerRoleID) ||
		actor.HasRole(gs.MiddlemanRoleID)
}

func copyTicket(t *entities.Ticket) *entities.Ticket {
	c := *t
	c.AddedUsers = append(make([]string, 0, len(t.AddedUsers)), t.AddedUsers...)
	return &c
}

func channelName(mode entities.Mode, username string) string {
	prefix := "ticket"
	if mode == entities.ModeMiddleman {
		prefix = "middleman"
	}

	name := channelNameRegex.ReplaceAllString(strings.ToLower(username), "")
	if name == "" {
		return prefix
	}
	return prefix + "-" + name
}
