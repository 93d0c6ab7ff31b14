package main

import (
	"log/slog"
	"time"

	"github.com/Jacobbrewer1/broker/pkg/commands"
	"github.com/Jacobbrewer1/broker/pkg/logging"
	"github.com/Jacobbrewer1/broker/pkg/ticketing"
	"github.com/Jacobbrewer1/discordgo"
)

func (a *App) messageCreateHandler(s *discordgo.Session, m *discordgo.MessageCreate) {
	defer recoverHandler(a, "MESSAGE_CREATE")

	if m.Author == nil || m.Author.Bot {
		return
	}

	start := time.Now()
	results := a.dispatcher.HandleMessage(a.ctx, toMessage(m))
	elapsed := time.Since(start)

	for _, res := range results {
		observeResult(res, elapsed)

		if res.Reply == "" {
			continue
		}
		channelID := res.ChannelID
		if channelID == "" {
			channelID = m.ChannelID
		}
		if _, err := s.ChannelMessageSend(channelID, res.Reply); err != nil {
			a.Error("Error sending reply",
				slog.String(logging.KeyCommand, res.Command),
				slog.String(logging.KeyChannelID, channelID),
				slog.String(logging.KeyError, err.Error()),
			)
		}
	}
}

func (a *App) interactionHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	defer recoverHandler(a, "INTERACTION_CREATE")

	if i.Type != discordgo.InteractionMessageComponent {
		return
	}

	// Ticket operations can take longer than the interaction deadline.
	if err := deferEphemeral(a, i); err != nil {
		a.Error("Error acknowledging interaction", slog.String(logging.KeyError, err.Error()))
		return
	}

	start := time.Now()
	res := a.dispatcher.HandleButton(a.ctx, &commands.Interaction{
		CustomID:  i.MessageComponentData().CustomID,
		GuildID:   i.GuildID,
		ChannelID: i.ChannelID,
		User:      interactionActor(i),
	})
	observeResult(res, time.Since(start))

	switch {
	case res.Reply == "":
		deleteResponse(a, i)
	case res.Ephemeral:
		if err := editResponse(a, i, res.Reply); err != nil {
			a.Error("Error responding to interaction",
				slog.String(logging.KeyCommand, res.Command),
				slog.String(logging.KeyError, err.Error()),
			)
		}
	default:
		if _, err := s.ChannelMessageSend(i.ChannelID, res.Reply); err != nil {
			a.Error("Error sending reply",
				slog.String(logging.KeyCommand, res.Command),
				slog.String(logging.KeyChannelID, i.ChannelID),
				slog.String(logging.KeyError, err.Error()),
			)
			if err := respondError(a, i); err != nil {
				a.Error("Error responding to interaction", slog.String(logging.KeyError, err.Error()))
			}
			return
		}
		deleteResponse(a, i)
	}
}

func (a *App) channelDeleteHandler(_ *discordgo.Session, c *discordgo.ChannelDelete) {
	defer recoverHandler(a, "CHANNEL_DELETE")

	if c.Channel == nil {
		return
	}

	removed, err := a.tickets.Forget(a.ctx, c.ID)
	if err != nil {
		a.Error("Error removing deleted ticket",
			slog.String(logging.KeyChannelID, c.ID),
			slog.String(logging.KeyError, err.Error()),
		)
	} else if removed {
		a.Info("Removed ticket for deleted channel", slog.String(logging.KeyChannelID, c.ID))
	}
}

func observeResult(res commands.Result, elapsed time.Duration) {
	if res.Command == "" {
		return
	}
	DiscordCommandDuration.WithLabelValues(res.Command).Observe(elapsed.Seconds())
	TotalCommandResults.WithLabelValues(res.Command, res.Status.String()).Inc()
}

func toMessage(m *discordgo.MessageCreate) *commands.Message {
	msg := &commands.Message{
		GuildID:    m.GuildID,
		ChannelID:  m.ChannelID,
		AuthorID:   m.Author.ID,
		AuthorName: m.Author.Username,
		Bot:        m.Author.Bot,
		Content:    m.Content,
		Mentions:   make([]string, 0, len(m.Mentions)),
	}
	if m.Member != nil {
		msg.AuthorRoles = m.Member.Roles
	}
	for _, u := range m.Mentions {
		if u != nil {
			msg.Mentions = append(msg.Mentions, u.ID)
		}
	}
	return msg
}

func interactionActor(i *discordgo.InteractionCreate) ticketing.Actor {
	if i.Member != nil && i.Member.User != nil {
		return ticketing.Actor{
			ID:    i.Member.User.ID,
			Name:  i.Member.User.Username,
			Roles: i.Member.Roles,
		}
	}
	if i.User != nil {
		return ticketing.Actor{ID: i.User.ID, Name: i.User.Username}
	}
	return ticketing.Actor{}
}
