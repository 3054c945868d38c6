package loader

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/PancyStudios/PancyCommands/pkg/discord"
	"github.com/PancyStudios/PancyCommands/pkg/langs"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadOne(t *testing.T, path string) any {
	t.Helper()
	files, err := New().LoadFiles(context.Background(), []string{path})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, path, files[0].Path)
	return files[0].Export
}

func TestGetFilesIsSortedAndRecursive(t *testing.T) {
	files, err := New().GetFiles(context.Background(), "testdata")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join("testdata", "broken", "broken.go"),
		filepath.Join("testdata", "noexport", "helper.go"),
		filepath.Join("testdata", "ok", "ping.go"),
		filepath.Join("testdata", "value", "value.go"),
	}, files)
}

func TestGetFilesMissingDir(t *testing.T) {
	_, err := New().GetFiles(context.Background(), filepath.Join("testdata", "missing"))
	assert.Error(t, err)
}

func TestLoadFilesConstructor(t *testing.T) {
	export := loadOne(t, filepath.Join("testdata", "ok", "ping.go"))

	factory, ok := export.(discord.Factory)
	require.True(t, ok, "export should be a factory, got %T", export)

	value, err := factory()
	require.NoError(t, err)
	cmd, ok := value.(*discord.Command)
	require.True(t, ok)
	assert.Equal(t, "ping", cmd.Name)

	// each call builds a fresh value
	again, _ := factory()
	assert.NotSame(t, cmd, again)
}

func TestLoadFilesWithoutExport(t *testing.T) {
	assert.Nil(t, loadOne(t, filepath.Join("testdata", "noexport", "helper.go")))
}

func TestLoadFilesNonConstructibleExport(t *testing.T) {
	assert.Equal(t, 42, loadOne(t, filepath.Join("testdata", "value", "value.go")))
}

func TestLoadFilesBrokenScript(t *testing.T) {
	export := loadOne(t, filepath.Join("testdata", "broken", "broken.go"))

	factory, ok := export.(discord.Factory)
	require.True(t, ok)
	_, err := factory()
	assert.Error(t, err)
}

func TestLoadFilesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().LoadFiles(ctx, []string{filepath.Join("testdata", "ok", "ping.go")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCommandHandlerWithScripts(t *testing.T) {
	root := filepath.Join("..", "..", "testdata")

	aliases := filepath.Join(root, "locales", "aliases.toml")
	table, err := langs.LoadDir(filepath.Join(root, "locales"), aliases)
	require.NoError(t, err)
	require.NoError(t, table.LoadAliases(aliases))

	h := discord.NewCommandHandler(New(), table)
	values, err := h.Load(context.Background(), filepath.Join(root, "commands"))
	require.NoError(t, err)

	names := make([]string, 0, len(values))
	for _, v := range values {
		names = append(names, v.GetName())
	}
	assert.Equal(t, []string{"Avatar", "mod", "help", "ping"}, names)

	mod := h.Find("mod").(*discord.Command)
	subs := mod.SubCommands()
	require.Len(t, subs, 3)
	assert.Equal(t, "ban", subs[0].Name)
	assert.Equal(t, "kick", subs[1].Name)
	assert.Equal(t, "purge", subs[2].Name)
	assert.Equal(t, []string{"guildOnly"}, subs[2].Middlewares)
	assert.NotNil(t, subs[0].OnRunError, "inherited from mod")

	assert.Equal(t, "banear", subs[0].NameLocalizations[discordgo.SpanishES])
	assert.Equal(t, "banear", subs[0].NameLocalizations[discordgo.SpanishLATAM])
	assert.Equal(t, "ban", subs[0].NameLocalizations[discordgo.EnglishUS])

	require.Contains(t, mod.Groups, "members")
	assert.Equal(t, "Gestión de miembros", mod.Groups["members"].DefaultDescription)

	help := h.Find("help").(*discord.Command)
	assert.Equal(t, map[discordgo.Locale]string{
		discordgo.EnglishUS:    "help",
		discordgo.EnglishGB:    "help",
		discordgo.SpanishLATAM: "ayuda",
		discordgo.SpanishES:    "ayuda",
	}, help.NameLocalizations)

	ac := mod.ToApplicationCommand()
	require.Len(t, ac.Options, 2)
	assert.Equal(t, discordgo.ApplicationCommandOptionSubCommandGroup, ac.Options[0].Type)
	assert.Equal(t, "membres", ac.Options[0].NameLocalizations[discordgo.French])
	assert.Equal(t, "purge", ac.Options[1].Name)

	require.NoError(t, h.Reload(context.Background(), "ping"))
}
