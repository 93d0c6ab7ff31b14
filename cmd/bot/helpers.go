package main

import (
	"log/slog"

	"github.com/Jacobbrewer1/broker/pkg/logging"
	"github.com/Jacobbrewer1/broker/pkg/messages"
	"github.com/Jacobbrewer1/discordgo"
)

func deferEphemeral(a IApp, i *discordgo.InteractionCreate) error {
	return a.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
}

func editResponse(a IApp, i *discordgo.InteractionCreate, content string) error {
	_, err := a.Session().InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content: &content,
	})
	return err
}

func respondError(a IApp, i *discordgo.InteractionCreate) error {
	return editResponse(a, i, messages.ErrUserErrorProcessing)
}

// deleteResponse removes the deferred response. The channel may already be gone.
func deleteResponse(a IApp, i *discordgo.InteractionCreate) {
	if err := a.Session().InteractionResponseDelete(i.Interaction); err != nil {
		a.Log().Debug("Error deleting interaction response", slog.String(logging.KeyError, err.Error()))
	}
}
