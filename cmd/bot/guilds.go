package main

import (
	"log/slog"

	"github.com/Jacobbrewer1/broker/pkg/logging"
	"github.com/Jacobbrewer1/discordgo"
)

func guildJoinedHandler(a IApp) func(s *discordgo.Session, g *discordgo.GuildCreate) {
	return func(_ *discordgo.Session, g *discordgo.GuildCreate) {
		a.Log().Info("Joined guild", slog.String(logging.KeyGuildID, g.ID), slog.String("name", g.Name))

		// Increment the total number of guilds.
		TotalDiscordGuilds.Inc()
	}
}

func guildLeaveHandler(a IApp) func(s *discordgo.Session, g *discordgo.GuildDelete) {
	return func(_ *discordgo.Session, g *discordgo.GuildDelete) {
		a.Log().Info("Left guild", slog.String(logging.KeyGuildID, g.ID))

		// Decrement the total number of guilds.
		TotalDiscordGuilds.Dec()
	}
}
