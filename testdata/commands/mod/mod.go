package mod

import (
	"github.com/PancyStudios/PancyCommands/pkg/discord"
)

func New() any {
	return &discord.Command{
		Name:                     "mod",
		Description:              "Comandos de moderación",
		Category:                 "mod",
		AutoLoad:                 true,
		Middlewares:              []string{"guildOnly"},
		DefaultMemberPermissions: discord.PermissionModerateMembers,
		Locales:                  &discord.LocaleKeys{Name: "mod.name", Description: "mod.desc"},
		GroupLocales: map[string]discord.GroupLocaleKeys{
			"members": {
				Name:               "mod.members.name",
				Description:        "mod.members.desc",
				DefaultDescription: "Gestión de miembros",
			},
		},
		Hooks: discord.Hooks{
			OnRunError: func(self discord.Instance, ctx *discord.CommandContext, err error) error {
				return ctx.ReplyEphemeral("❌ " + self.GetName() + ": " + err.Error())
			},
			OnMiddlewaresError: func(self discord.Instance, ctx *discord.CommandContext, err error) error {
				return ctx.ReplyEphemeral("❌ Este comando solo funciona en servidores.")
			},
		},
	}
}
