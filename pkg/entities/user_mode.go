package entities

import (
	"strings"

	"github.com/Jacobbrewer1/broker/pkg/custom"
)

// Mode is the bot mode a user has unlocked.
type Mode string

const (
	// ModeUnset is the mode of a user who redeemed a key but has not picked a mode.
	ModeUnset Mode = ""

	// ModeTicket unlocks the ticket bot.
	ModeTicket Mode = "ticket"

	// ModeMiddleman unlocks the middleman bot.
	ModeMiddleman Mode = "middleman"
)

// ParseModeChoice parses a mode selection reply. Only "1"/"ticket" and
// "2"/"middleman" are accepted, case-insensitively.
func ParseModeChoice(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", string(ModeTicket):
		return ModeTicket, true
	case "2", string(ModeMiddleman):
		return ModeMiddleman, true
	default:
		return ModeUnset, false
	}
}

// UserMode is the mode a user has unlocked by redeeming a key.
type UserMode struct {
	// UserID is the ID of the user.
	UserID string `json:"userId" bson:"user_id"`

	// Mode is the unlocked mode, unset until the user picks one.
	Mode Mode `json:"mode" bson:"mode"`

	// Tier is the category of the redeemed key.
	Tier string `json:"tier" bson:"tier"`

	// RedeemedAt is when the key was redeemed.
	RedeemedAt custom.Datetime `json:"redeemedAt" bson:"redeemed_at"`
}
