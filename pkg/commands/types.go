package commands

import (
	"context"
	"fmt"

	"github.com/Jacobbrewer1/broker/pkg/entities"
	"github.com/Jacobbrewer1/broker/pkg/ticketing"
)

// Status is the kind of result a handler produced.
type Status int

const (
	// StatusIgnored means the input was not for the bot.
	StatusIgnored Status = iota

	// StatusSuccess means the action was performed.
	StatusSuccess

	// StatusDenied means the user is not allowed to perform the action.
	StatusDenied

	// StatusInvalid means the user's input was wrong.
	StatusInvalid

	// StatusFailed means the platform or the store failed.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIgnored:
		return "ignored"
	case StatusSuccess:
		return "success"
	case StatusDenied:
		return "denied"
	case StatusInvalid:
		return "invalid"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result is the outcome of handling a message or interaction.
type Result struct {
	Status Status

	// Command is the command or button that produced the result.
	Command string

	// ChannelID is where Reply goes. Empty means the channel of the input.
	ChannelID string

	// Reply is the text to send back. Empty means nothing is sent.
	Reply string

	// Ephemeral replies to interactions are only shown to the user.
	Ephemeral bool

	// Err is the underlying error for StatusFailed.
	Err error
}

// Message is an inbound chat message.
type Message struct {
	GuildID    string
	ChannelID  string
	AuthorID   string
	AuthorName string

	// AuthorRoles are the author's role IDs in the guild.
	AuthorRoles []string

	// Bot is true when the author is a bot.
	Bot bool

	Content string

	// Mentions are the IDs of the mentioned users.
	Mentions []string
}

func (m *Message) actor() ticketing.Actor {
	return ticketing.Actor{ID: m.AuthorID, Name: m.AuthorName, Roles: m.AuthorRoles}
}

// Interaction is a button press.
type Interaction struct {
	CustomID  string
	GuildID   string
	ChannelID string
	User      ticketing.Actor
}

// Panel is the message with the request button posted by the panel command.
type Panel struct {
	Title string
	Body  string
	Mode  entities.Mode
}

// Platform is the chat platform the commands drive.
type Platform interface {
	ticketing.Platform

	// SendDM sends a direct message to a user.
	SendDM(ctx context.Context, userID, content string) error

	// SendPanel posts a ticket panel with a request button.
	SendPanel(ctx context.Context, channelID string, panel Panel) error

	// GuildMemberIDs lists the IDs of the guild's human members.
	GuildMemberIDs(ctx context.Context, guildID string) ([]string, error)
}

// Variant selects which command set the bot exposes.
type Variant string

const (
	// VariantLite exposes the ticket and middleman workflow only.
	VariantLite Variant = "lite"

	// VariantFull adds AFK, vouch and owner DM commands.
	VariantFull Variant = "full"
)

// Valid reports whether v is a known variant.
func (v Variant) Valid() bool {
	return v == VariantLite || v == VariantFull
}
