package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageURL(t *testing.T) {
	tests := []struct {
		name    string
		guildID string
		want    string
		inGuild bool
	}{
		{"guild message", "10", "https://discord.com/channels/10/20/30", true},
		{"direct message", "", "https://discord.com/channels/@me/20/30", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMessage(nil, &discordgo.Message{ID: "30", ChannelID: "20", GuildID: tt.guildID})
			assert.Equal(t, tt.want, m.URL())
			assert.Equal(t, tt.inGuild, m.InGuild())
		})
	}
}

func TestSuppressEmbedsNoChange(t *testing.T) {
	// no session: any REST call would panic
	m := NewMessage(nil, &discordgo.Message{ID: "1", ChannelID: "2", Flags: discordgo.MessageFlagsSuppressEmbeds})

	same, err := m.SuppressEmbeds(true)
	require.NoError(t, err)
	assert.Same(t, m, same)

	plain := NewMessage(nil, &discordgo.Message{ID: "1", ChannelID: "2"})
	same, err = plain.SuppressEmbeds(false)
	require.NoError(t, err)
	assert.Same(t, plain, same)
}

func TestMessagePayloadsCarryAllowedMentions(t *testing.T) {
	m := NewMessage(nil, &discordgo.Message{ID: "30", ChannelID: "20", GuildID: "10"})
	mentions := &discordgo.MessageAllowedMentions{Parse: []discordgo.AllowedMentionType{discordgo.AllowedMentionTypeUsers}}

	edit := m.editPayload("hola", mentions)
	assert.Equal(t, "30", edit.ID)
	assert.Equal(t, "20", edit.Channel)
	require.NotNil(t, edit.Content)
	assert.Equal(t, "hola", *edit.Content)
	assert.Same(t, mentions, edit.AllowedMentions)

	reply := m.replyPayload("pong", mentions)
	assert.Equal(t, "pong", reply.Content)
	assert.Same(t, mentions, reply.AllowedMentions)
	require.NotNil(t, reply.Reference)
	assert.Equal(t, "30", reply.Reference.MessageID)
	assert.Equal(t, "20", reply.Reference.ChannelID)

	assert.Nil(t, m.replyPayload("pong", nil).AllowedMentions)
}
