package main

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/Jacobbrewer1/broker/pkg/commands"
	"github.com/Jacobbrewer1/broker/pkg/logging"
	"github.com/Jacobbrewer1/broker/pkg/messages"
	"github.com/Jacobbrewer1/broker/pkg/ticketing"
	"github.com/Jacobbrewer1/discordgo"
)

const (
	// ClaimEmoji is the emoji used on the claim button. (Ticket)
	ClaimEmoji = "\U0001F3AB"

	// CloseEmoji is the emoji used on the close button. (Padlock)
	CloseEmoji = "\U0001F510"

	// guildMembersPageSize is the largest page Discord returns for guild members.
	guildMembersPageSize = 1000

	sendPermissions = discordgo.PermissionSendMessages
	readPermissions = discordgo.PermissionViewChannel | discordgo.PermissionReadMessageHistory
)

// discordPlatform drives Discord through a session.
type discordPlatform struct {
	l *slog.Logger
	s *discordgo.Session
}

// newPlatform creates the Discord platform adapter.
func newPlatform(l *slog.Logger, s *discordgo.Session) *discordPlatform {
	return &discordPlatform{
		l: l.With(slog.String(logging.KeyComponent, "discord")),
		s: s,
	}
}

func (p *discordPlatform) CreateTicketChannel(ctx context.Context, req ticketing.ChannelRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	overwrites := []*discordgo.PermissionOverwrite{
		{
			// The @everyone role shares the guild's ID.
			ID:   req.GuildID,
			Type: discordgo.PermissionOverwriteTypeRole,
			Deny: discordgo.PermissionViewChannel,
		},
		{
			ID:    req.OpenerID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: readPermissions | sendPermissions,
			Deny:  discordgo.PermissionMentionEveryone,
		},
	}
	for _, roleID := range req.StaffRoleIDs {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    roleID,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: readPermissions,
			Deny:  discordgo.PermissionMentionEveryone,
		})
	}

	ch, err := p.s.GuildChannelCreateComplex(req.GuildID, discordgo.GuildChannelCreateData{
		Name:                 req.Name,
		Type:                 discordgo.ChannelTypeGuildText,
		Topic:                req.Topic,
		PermissionOverwrites: overwrites,
	})
	if err != nil {
		return "", err
	}
	return ch.ID, nil
}

func (p *discordPlatform) DeleteChannel(ctx context.Context, channelID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := p.s.ChannelDelete(channelID)
	return err
}

func (p *discordPlatform) SetSendPermission(ctx context.Context, channelID string, intent ticketing.Intent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	targetType := discordgo.PermissionOverwriteTypeMember
	if intent.Type == ticketing.TargetRole {
		targetType = discordgo.PermissionOverwriteTypeRole
	}

	var allow, deny int64 = readPermissions, 0
	if intent.Allow {
		allow |= sendPermissions
	} else {
		deny = sendPermissions
	}

	return p.s.ChannelPermissionSet(channelID, intent.TargetID, targetType, allow, deny)
}

func (p *discordPlatform) SendMessage(ctx context.Context, channelID, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := p.s.ChannelMessageSend(channelID, content)
	return err
}

func (p *discordPlatform) SendControls(ctx context.Context, channelID, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := p.s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content: content,
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    fmt.Sprintf("%s %s", ClaimEmoji, messages.ControlsClaimLabel),
						Style:    discordgo.PrimaryButton,
						CustomID: commands.ButtonClaimTicket,
					},
					discordgo.Button{
						Label:    messages.ControlsUnclaimLabel,
						Style:    discordgo.SecondaryButton,
						CustomID: commands.ButtonUnclaimTicket,
					},
					discordgo.Button{
						Label:    messages.ControlsTransferLabel,
						Style:    discordgo.SecondaryButton,
						CustomID: commands.ButtonTransferTicket,
					},
					discordgo.Button{
						Label:    messages.ControlsAddLabel,
						Style:    discordgo.SecondaryButton,
						CustomID: commands.ButtonAddTicket,
					},
					discordgo.Button{
						Label:    fmt.Sprintf("%s %s", CloseEmoji, messages.ControlsCloseLabel),
						Style:    discordgo.DangerButton,
						CustomID: commands.ButtonCloseTicket,
					},
				},
			},
		},
	})
	return err
}

func (p *discordPlatform) RecentMessages(ctx context.Context, channelID string, limit int) ([]ticketing.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	msgs, err := p.s.ChannelMessages(channelID, limit, "", "", "")
	if err != nil {
		return nil, err
	}

	out := make([]ticketing.Message, 0, len(msgs))
	for _, m := range msgs {
		author := "unknown"
		if m.Author != nil {
			author = m.Author.Username
		}
		out = append(out, ticketing.Message{
			Timestamp:   m.Timestamp,
			Author:      author,
			Content:     m.Content,
			Attachments: len(m.Attachments),
		})
	}
	return out, nil
}

func (p *discordPlatform) HasRole(ctx context.Context, guildID, userID, roleID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	member, err := p.s.GuildMember(guildID, userID)
	if err != nil {
		return false, err
	}
	return slices.Contains(member.Roles, roleID), nil
}

func (p *discordPlatform) SendDM(ctx context.Context, userID, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ch, err := p.s.UserChannelCreate(userID)
	if err != nil {
		return fmt.Errorf("error opening DM channel: %w", err)
	}

	_, err = p.s.ChannelMessageSend(ch.ID, content)
	return err
}

func (p *discordPlatform) SendPanel(ctx context.Context, channelID string, panel commands.Panel) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := p.s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{
			{
				Title:       panel.Title,
				Description: panel.Body,
			},
		},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    fmt.Sprintf("%s %s", ClaimEmoji, messages.PanelRequestLabel),
						Style:    discordgo.SuccessButton,
						CustomID: commands.RequestButtonID(panel.Mode),
					},
				},
			},
		},
	})
	return err
}

func (p *discordPlatform) GuildMemberIDs(ctx context.Context, guildID string) ([]string, error) {
	ids := make([]string, 0)
	after := ""
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := p.s.GuildMembers(guildID, after, guildMembersPageSize)
		if err != nil {
			return nil, fmt.Errorf("error listing guild members: %w", err)
		}

		for _, m := range page {
			if m.User == nil || m.User.Bot {
				continue
			}
			ids = append(ids, m.User.ID)
		}

		if len(page) < guildMembersPageSize {
			break
		}
		if last := page[len(page)-1]; last.User != nil {
			after = last.User.ID
		} else {
			break
		}
	}

	p.l.Debug("Listed guild members", slog.String(logging.KeyGuildID, guildID), slog.Int("count", len(ids)))
	return ids, nil
}
