package entities

// Guild is the persisted state for a guild.
type Guild struct {
	// Setup is the configuration collected by the setup dialogue.
	Setup GuildSetup `json:"setup" bson:"setup"`
}

// GuildSetup is the configuration for a guild.
type GuildSetup struct {
	// TranscriptsChannelID is the ID of the channel transcripts are posted to.
	TranscriptsChannelID string `json:"transcriptsChannelId" bson:"transcripts_channel_id"`

	// MiddlemanRoleID is the ID of the role that can claim tickets.
	MiddlemanRoleID string `json:"middlemanRoleId" bson:"middleman_role_id"`

	// HelperRoleID is the ID of the hitter/helper role.
	HelperRoleID string `json:"hitterOrHelperRoleId" bson:"helper_role_id"`

	// CoOwnerRoleID is the ID of the co-owner role.
	CoOwnerRoleID string `json:"coOwnerRoleId" bson:"co_owner_role_id"`

	// VerificationLink is the link members are sent to for verification.
	VerificationLink string `json:"verificationLink" bson:"verification_link"`

	// GuideChannelID is the ID of the guide channel.
	GuideChannelID string `json:"guideChannelId" bson:"guide_channel_id"`
}

// Roles returns the configured staff role IDs, skipping unset ones.
func (s *GuildSetup) Roles() []string {
	roles := make([]string, 0, 3)
	for _, r := range []string{s.MiddlemanRoleID, s.HelperRoleID, s.CoOwnerRoleID} {
		if r != "" {
			roles = append(roles, r)
		}
	}
	return roles
}
