package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Message wraps a channel message with shortcuts bound to the session
type Message struct {
	*discordgo.Message
	session *discordgo.Session
}

// NewMessage wraps m
func NewMessage(s *discordgo.Session, m *discordgo.Message) *Message {
	return &Message{Message: m, session: s}
}

// InGuild reports whether the message was sent in a guild channel
func (m *Message) InGuild() bool {
	return m.GuildID != ""
}

// URL returns the jump link of the message
func (m *Message) URL() string {
	guild := m.GuildID
	if guild == "" {
		guild = "@me"
	}
	return fmt.Sprintf("https://discord.com/channels/%s/%s/%s", guild, m.ChannelID, m.ID)
}

// Edit replaces the message content. mentions may be nil to keep the
// platform defaults.
func (m *Message) Edit(content string, mentions *discordgo.MessageAllowedMentions) (*Message, error) {
	edited, err := m.session.ChannelMessageEditComplex(m.editPayload(content, mentions))
	if err != nil {
		return nil, err
	}
	return NewMessage(m.session, edited), nil
}

// SuppressEmbeds hides or restores the message embeds. Nothing is sent when
// the flag already has the requested value.
func (m *Message) SuppressEmbeds(suppress bool) (*Message, error) {
	flags := m.Flags
	if suppress {
		flags |= discordgo.MessageFlagsSuppressEmbeds
	} else {
		flags &^= discordgo.MessageFlagsSuppressEmbeds
	}
	if flags == m.Flags {
		return m, nil
	}

	edited, err := m.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:      m.ID,
		Channel: m.ChannelID,
		Flags:   flags,
	})
	if err != nil {
		return nil, err
	}
	return NewMessage(m.session, edited), nil
}

// Delete removes the message, recording reason in the audit log
func (m *Message) Delete(reason string) error {
	var opts []discordgo.RequestOption
	if reason != "" {
		opts = append(opts, discordgo.WithAuditLogReason(reason))
	}
	return m.session.ChannelMessageDelete(m.ChannelID, m.ID, opts...)
}

// Respond sends a reply referencing the message. mentions may be nil.
func (m *Message) Respond(content string, mentions *discordgo.MessageAllowedMentions) (*Message, error) {
	sent, err := m.session.ChannelMessageSendComplex(m.ChannelID, m.replyPayload(content, mentions))
	if err != nil {
		return nil, err
	}
	return NewMessage(m.session, sent), nil
}

func (m *Message) editPayload(content string, mentions *discordgo.MessageAllowedMentions) *discordgo.MessageEdit {
	return &discordgo.MessageEdit{
		ID:              m.ID,
		Channel:         m.ChannelID,
		Content:         &content,
		AllowedMentions: mentions,
	}
}

func (m *Message) replyPayload(content string, mentions *discordgo.MessageAllowedMentions) *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Content:         content,
		Reference:       m.Reference(),
		AllowedMentions: mentions,
	}
}
