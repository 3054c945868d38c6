package kick

import (
	"github.com/PancyStudios/PancyCommands/pkg/discord"
)

func New() any {
	return &discord.SubCommand{
		Name:           "kick",
		Description:    "Expulsa a un usuario del servidor",
		Group:          "members",
		BotPermissions: discord.PermissionKickMembers,
		Locales:        &discord.LocaleKeys{Name: "mod.kick.name", Description: "mod.kick.desc"},
		Options: []*discord.CommandOption{
			{Type: discord.OptionUser, Name: "usuario", Description: "Usuario a expulsar", Required: true},
			{Type: discord.OptionString, Name: "razon", Description: "Razón de la expulsión"},
		},
		Run: func(ctx *discord.CommandContext) error {
			user := ctx.GetUserOption("usuario")
			reason := ctx.GetStringOption("razon")
			if err := ctx.Session.GuildMemberDeleteWithReason(ctx.Interaction.GuildID, user.ID, reason); err != nil {
				return err
			}
			return ctx.Reply("👢 " + user.Username + " ha sido expulsado.")
		},
	}
}
