package entities

import (
	"slices"

	"github.com/Jacobbrewer1/broker/pkg/custom"
)

// Ticket is the lifecycle record of a ticket channel.
type Ticket struct {
	// ChannelID is the ID of the channel that the ticket is in.
	ChannelID string `json:"channelId" bson:"channel_id"`

	// GuildID is the ID of the guild that the ticket is in.
	GuildID string `json:"guildId" bson:"guild_id"`

	// Opener is the ID of the user that opened the ticket.
	Opener string `json:"opener" bson:"opener"`

	// ClaimedBy is the ID of the user that claimed the ticket, empty when unclaimed.
	ClaimedBy string `json:"claimedBy,omitempty" bson:"claimed_by,omitempty"`

	// AddedUsers are the users explicitly added to the ticket.
	AddedUsers []string `json:"addedUsers" bson:"added_users"`

	// Mode is the mode of the panel that opened the ticket.
	Mode Mode `json:"mode,omitempty" bson:"mode,omitempty"`

	// CreatedAt is the time that the ticket was created.
	CreatedAt custom.Datetime `json:"createdAt" bson:"created_at"`
}

// IsClaimed reports whether the ticket has been claimed.
func (t *Ticket) IsClaimed() bool {
	return t.ClaimedBy != ""
}

// HasAdded reports whether the user has been added to the ticket.
func (t *Ticket) HasAdded(userID string) bool {
	return slices.Contains(t.AddedUsers, userID)
}
