package ban

import (
	"github.com/PancyStudios/PancyCommands/pkg/discord"
)

func New() any {
	return &discord.SubCommand{
		Name:           "ban",
		Description:    "Banea a un usuario del servidor",
		Group:          "members",
		BotPermissions: discord.PermissionBanMembers,
		Locales:        &discord.LocaleKeys{Name: "mod.ban.name", Description: "mod.ban.desc"},
		Options: []*discord.CommandOption{
			{Type: discord.OptionUser, Name: "usuario", Description: "Usuario a banear", Required: true},
			{Type: discord.OptionString, Name: "razon", Description: "Razón del ban"},
		},
		Run: func(ctx *discord.CommandContext) error {
			user := ctx.GetUserOption("usuario")
			reason := ctx.GetStringOption("razon")
			if reason == "" {
				reason = "Sin razón especificada"
			}
			if err := ctx.Session.GuildBanCreateWithReason(ctx.Interaction.GuildID, user.ID, reason, 0); err != nil {
				return err
			}
			return ctx.Reply("🔨 " + user.Username + " ha sido baneado. Razón: " + reason)
		},
	}
}
