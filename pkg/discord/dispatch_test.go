package discord

import (
	"errors"
	"testing"

	anticrash "github.com/PancyStudios/PancyCommands/pkg/errors"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatInteraction(name string, options ...*discordgo.ApplicationCommandInteractionDataOption) *CommandContext {
	return &CommandContext{
		Interaction: &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
			Type:           discordgo.InteractionApplicationCommand,
			GuildID:        "guild",
			AppPermissions: discordgo.PermissionAdministrator,
			Member:         &discordgo.Member{Permissions: discordgo.PermissionAdministrator},
			Data: discordgo.ApplicationCommandInteractionData{
				Name:        name,
				CommandType: discordgo.ChatApplicationCommand,
				Options:     options,
			},
		}},
	}
}

func stringOption(name, value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionString,
		Value: value,
	}
}

func newTestDispatcher(values ...Instance) (*Dispatcher, *Middlewares) {
	h, _ := newTestHandler(newFakeLoader(), nil)
	h.values = values
	mw := NewMiddlewares()
	return NewDispatcher(h, mw), mw
}

func TestExecuteRunsStagesInOrder(t *testing.T) {
	var trace []string
	cmd := &Command{
		Name:        "ping",
		Middlewares: []string{"first", "second"},
		Run: func(*CommandContext) error {
			trace = append(trace, "run")
			return nil
		},
		Hooks: Hooks{
			OnAfterRun: func(Instance, *CommandContext, error) error {
				trace = append(trace, "after")
				return nil
			},
		},
	}

	d, mw := newTestDispatcher(cmd)
	mw.Register("first", func(*CommandContext) error { trace = append(trace, "first"); return nil })
	mw.Register("second", func(*CommandContext) error { trace = append(trace, "second"); return nil })

	ctx := chatInteraction("ping")
	require.NoError(t, d.Execute(ctx))
	assert.Equal(t, []string{"first", "second", "run", "after"}, trace)
	assert.Same(t, cmd, ctx.Command)
}

func TestExecuteUnknownCommand(t *testing.T) {
	d, _ := newTestDispatcher()
	assert.ErrorIs(t, d.Execute(chatInteraction("nope")), ErrUnknownCommand)
}

func TestExecuteMiddlewareFailure(t *testing.T) {
	var got error
	ran := false
	cmd := &Command{
		Name:        "ping",
		Middlewares: []string{"missing"},
		Run:         func(*CommandContext) error { ran = true; return nil },
		Hooks: Hooks{
			OnMiddlewaresError: func(_ Instance, _ *CommandContext, err error) error {
				got = err
				return nil
			},
		},
	}

	d, _ := newTestDispatcher(cmd)
	require.NoError(t, d.Execute(chatInteraction("ping")))
	assert.ErrorIs(t, got, ErrUnknownMiddleware)
	assert.False(t, ran)
}

func TestExecuteRunErrorHook(t *testing.T) {
	boom := errors.New("boom")
	cmd := &Command{
		Name: "ping",
		Run:  func(*CommandContext) error { return boom },
	}

	d, _ := newTestDispatcher(cmd)
	assert.ErrorIs(t, d.Execute(chatInteraction("ping")), boom)

	cmd.OnRunError = func(_ Instance, _ *CommandContext, err error) error {
		return nil
	}
	assert.NoError(t, d.Execute(chatInteraction("ping")))
}

func TestExecutePanicGoesToInternalHook(t *testing.T) {
	var got error
	cmd := &Command{
		Name: "ping",
		Run:  func(*CommandContext) error { panic("kaboom") },
		Hooks: Hooks{
			OnInternalError: func(_ Instance, _ *CommandContext, err error) error {
				got = err
				return nil
			},
		},
	}

	d, _ := newTestDispatcher(cmd)
	require.NoError(t, d.Execute(chatInteraction("ping")))

	var panicErr *anticrash.PanicError
	require.ErrorAs(t, got, &panicErr)
	assert.Equal(t, "kaboom", panicErr.Value)
}

func TestExecuteValidatesOptions(t *testing.T) {
	var failed map[string]error
	cmd := &Command{
		Name: "say",
		Options: []Option{
			&CommandOption{Name: "text", Type: discordgo.ApplicationCommandOptionString, Required: true},
			&CommandOption{
				Name: "tone",
				Type: discordgo.ApplicationCommandOptionString,
				Choices: []*discordgo.ApplicationCommandOptionChoice{
					{Name: "Loud", Value: "loud"},
					{Name: "Quiet", Value: "quiet"},
				},
			},
		},
		Hooks: Hooks{
			OnOptionsError: func(_ Instance, _ *CommandContext, f map[string]error) error {
				failed = f
				return nil
			},
		},
	}

	d, _ := newTestDispatcher(cmd)
	require.NoError(t, d.Execute(chatInteraction("say", stringOption("tone", "angry"))))

	require.Len(t, failed, 2)
	assert.ErrorIs(t, failed["text"], ErrMissingOption)
	assert.ErrorIs(t, failed["tone"], ErrInvalidChoice)

	failed = nil
	require.NoError(t, d.Execute(chatInteraction("say", stringOption("text", "hi"), stringOption("tone", "quiet"))))
	assert.Nil(t, failed)
}

func TestExecutePermissions(t *testing.T) {
	var botMissing, memberMissing int64
	cmd := &Command{
		Name:                     "ban",
		DefaultMemberPermissions: PermissionBanMembers,
		BotPermissions:           PermissionBanMembers | PermissionEmbedLinks,
		Hooks: Hooks{
			OnBotPermissionsFail: func(_ Instance, _ *CommandContext, missing int64) error {
				botMissing = missing
				return nil
			},
			OnPermissionsFail: func(_ Instance, _ *CommandContext, missing int64) error {
				memberMissing = missing
				return nil
			},
		},
	}

	d, _ := newTestDispatcher(cmd)

	ctx := chatInteraction("ban")
	ctx.Interaction.AppPermissions = PermissionBanMembers
	require.NoError(t, d.Execute(ctx))
	assert.Equal(t, PermissionEmbedLinks, botMissing)

	ctx = chatInteraction("ban")
	ctx.Interaction.Member.Permissions = PermissionSendMessages
	require.NoError(t, d.Execute(ctx))
	assert.Equal(t, PermissionBanMembers, memberMissing)

	cmd.OnPermissionsFail = nil
	ctx = chatInteraction("ban")
	ctx.Interaction.Member.Permissions = 0
	assert.ErrorIs(t, d.Execute(ctx), ErrMissingPermissions)
}

func TestExecuteSelectsSubCommandInGroup(t *testing.T) {
	var ran string
	var hookSelf Instance
	parent := &Command{
		Name: "mod",
		Hooks: Hooks{
			OnRunError: func(self Instance, _ *CommandContext, err error) error {
				hookSelf = self
				return nil
			},
		},
	}
	ban := &SubCommand{
		Name:  "ban",
		Group: "members",
		Run:   func(*CommandContext) error { ran = "members ban"; return errors.New("fail") },
	}
	plainBan := &SubCommand{
		Name: "ban",
		Run:  func(*CommandContext) error { ran = "ban"; return nil },
	}
	parent.Options = []Option{plainBan, ban}
	linkSubCommands(parent)

	d, _ := newTestDispatcher(parent)

	ctx := chatInteraction("mod", &discordgo.ApplicationCommandInteractionDataOption{
		Name: "members",
		Type: discordgo.ApplicationCommandOptionSubCommandGroup,
		Options: []*discordgo.ApplicationCommandInteractionDataOption{
			{Name: "ban", Type: discordgo.ApplicationCommandOptionSubCommand},
		},
	})
	require.NoError(t, d.Execute(ctx))
	assert.Equal(t, "members ban", ran)
	assert.Same(t, ban, ctx.SubCommand)
	assert.Same(t, parent, hookSelf)

	ctx = chatInteraction("mod", &discordgo.ApplicationCommandInteractionDataOption{
		Name: "ban",
		Type: discordgo.ApplicationCommandOptionSubCommand,
	})
	require.NoError(t, d.Execute(ctx))
	assert.Equal(t, "ban", ran)

	ctx = chatInteraction("mod", &discordgo.ApplicationCommandInteractionDataOption{
		Name: "unknown",
		Type: discordgo.ApplicationCommandOptionSubCommand,
	})
	assert.ErrorIs(t, d.Execute(ctx), ErrUnknownCommand)
}

func TestExecuteContextMenu(t *testing.T) {
	ran := false
	menu := &ContextMenuCommand{
		Name: "Avatar",
		Type: discordgo.UserApplicationCommand,
		Run:  func(*CommandContext) error { ran = true; return nil },
	}
	chat := &Command{Name: "Avatar", Run: func(*CommandContext) error { return errors.New("wrong entry") }}

	d, _ := newTestDispatcher(chat, menu)

	ctx := chatInteraction("Avatar")
	data := ctx.Interaction.Data.(discordgo.ApplicationCommandInteractionData)
	data.CommandType = discordgo.UserApplicationCommand
	ctx.Interaction.Data = data

	require.NoError(t, d.Execute(ctx))
	assert.True(t, ran)
}

func TestAutoComplete(t *testing.T) {
	var focused string
	cmd := &Command{
		Name: "search",
		Options: []Option{
			&CommandOption{Name: "query", Type: discordgo.ApplicationCommandOptionString, Autocomplete: true},
		},
		AutoComplete: func(ctx *CommandContext) {
			focused = ctx.GetStringOption("query")
		},
	}

	d, _ := newTestDispatcher(cmd)
	ctx := chatInteraction("search", stringOption("query", "go"))
	ctx.Interaction.Type = discordgo.InteractionApplicationCommandAutocomplete

	require.NoError(t, d.AutoComplete(ctx))
	assert.Equal(t, "go", focused)
}

func TestGuildOnlyMiddleware(t *testing.T) {
	ctx := chatInteraction("ping")
	assert.NoError(t, GuildOnly(ctx))

	ctx.Interaction.GuildID = ""
	assert.Error(t, GuildOnly(ctx))
}

func TestMissingPermissions(t *testing.T) {
	assert.Zero(t, missingPermissions(0, 0))
	assert.Zero(t, missingPermissions(PermissionBanMembers, PermissionAdministrator))
	assert.Equal(t, PermissionKickMembers, missingPermissions(PermissionBanMembers|PermissionKickMembers, PermissionBanMembers))
}
