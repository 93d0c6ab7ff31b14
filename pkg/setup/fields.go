package setup

import (
	"errors"
	"regexp"
	"strings"

	"github.com/Jacobbrewer1/broker/pkg/entities"
)

// Field is a guild setup field collected by the dialogue.
type Field int

const (
	FieldTranscriptsChannel Field = iota
	FieldMiddlemanRole
	FieldHelperRole
	FieldVerificationLink
	FieldGuideChannel
	FieldCoOwnerRole
)

// ErrInvalidLink is returned when the verification link is not https.
var ErrInvalidLink = errors.New("verification link must start with https://")

// mentionRegex matches channel, role and user mentions.
var mentionRegex = regexp.MustCompile(`^<(?:#|@&|@!?)(\d+)>$`)

type step struct {
	field  Field
	prompt string
	parse  func(string) (string, error)
}

// steps is the fixed order the dialogue asks in.
var steps = []step{
	{
		field:  FieldTranscriptsChannel,
		prompt: "Mention the channel ticket transcripts should be posted to (or paste its ID).",
		parse:  parseID,
	},
	{
		field:  FieldMiddlemanRole,
		prompt: "Mention the middleman role (or paste its ID).",
		parse:  parseID,
	},
	{
		field:  FieldHelperRole,
		prompt: "Mention the hitter/helper role (or paste its ID).",
		parse:  parseID,
	},
	{
		field:  FieldVerificationLink,
		prompt: "Send the verification link members should use. It must start with `https://`.",
		parse:  parseLink,
	},
	{
		field:  FieldGuideChannel,
		prompt: "Mention the guide channel (or paste its ID).",
		parse:  parseID,
	},
	{
		field:  FieldCoOwnerRole,
		prompt: "Mention the co-owner role (or paste its ID).",
		parse:  parseID,
	},
}

// NormalizeID turns a mention into the bare ID it references. Anything else
// is returned trimmed.
func NormalizeID(s string) string {
	s = strings.TrimSpace(s)
	if m := mentionRegex.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}

func parseID(s string) (string, error) {
	return NormalizeID(s), nil
}

func parseLink(s string) (string, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "https://") {
		return "", ErrInvalidLink
	}
	return s, nil
}

// set writes value into the field of gs.
func (f Field) set(gs *entities.GuildSetup, value string) {
	switch f {
	case FieldTranscriptsChannel:
		gs.TranscriptsChannelID = value
	case FieldMiddlemanRole:
		gs.MiddlemanRoleID = value
	case FieldHelperRole:
		gs.HelperRoleID = value
	case FieldVerificationLink:
		gs.VerificationLink = value
	case FieldGuideChannel:
		gs.GuideChannelID = value
	case FieldCoOwnerRole:
		gs.CoOwnerRoleID = value
	}
}

func (f Field) String() string {
	switch f {
	case FieldTranscriptsChannel:
		return "transcripts_channel"
	case FieldMiddlemanRole:
		return "middleman_role"
	case FieldHelperRole:
		return "helper_role"
	case FieldVerificationLink:
		return "verification_link"
	case FieldGuideChannel:
		return "guide_channel"
	case FieldCoOwnerRole:
		return "co_owner_role"
	default:
		return "unknown"
	}
}
