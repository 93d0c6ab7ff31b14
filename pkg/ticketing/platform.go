package ticketing

import (
	"context"
	"slices"
	"time"
)

// TargetType is the kind of permission overwrite target.
type TargetType int

const (
	// TargetRole is a guild role.
	TargetRole TargetType = iota

	// TargetMember is a guild member.
	TargetMember
)

func (t TargetType) String() string {
	if t == TargetRole {
		return "role"
	}
	return "member"
}

// ChannelRequest describes a ticket channel to create.
type ChannelRequest struct {
	GuildID string
	Name    string
	Topic   string

	// OpenerID is granted access to the channel.
	OpenerID string

	// StaffRoleIDs are granted access to the channel.
	StaffRoleIDs []string
}

// Message is a chat message read back for a transcript.
type Message struct {
	Timestamp   time.Time
	Author      string
	Content     string
	Attachments int
}

// Platform is the chat platform the manager drives.
type Platform interface {
	// CreateTicketChannel creates a private channel and returns its ID.
	CreateTicketChannel(ctx context.Context, req ChannelRequest) (string, error)

	// DeleteChannel deletes a channel.
	DeleteChannel(ctx context.Context, channelID string) error

	// SetSendPermission sets an explicit send allow or deny for one target.
	SetSendPermission(ctx context.Context, channelID string, intent Intent) error

	// SendMessage posts plain text to a channel.
	SendMessage(ctx context.Context, channelID, content string) error

	// SendControls posts content with the ticket lifecycle buttons.
	SendControls(ctx context.Context, channelID, content string) error

	// RecentMessages returns up to limit of the most recent messages, in any order.
	RecentMessages(ctx context.Context, channelID string, limit int) ([]Message, error)

	// HasRole reports whether a guild member holds a role.
	HasRole(ctx context.Context, guildID, userID, roleID string) (bool, error)
}

// Actor is the user performing a ticket operation.
type Actor struct {
	ID    string
	Name  string
	Roles []string
}

// HasRole reports whether the actor holds roleID. An empty role never matches.
func (a Actor) HasRole(roleID string) bool {
	return roleID != "" && slices.Contains(a.Roles, roleID)
}
