package avatar

import (
	"github.com/PancyStudios/PancyCommands/pkg/discord"
)

func New() any {
	return &discord.ContextMenuCommand{
		Name: "Avatar",
		Type: discord.UserContextMenu,
		Run: func(ctx *discord.CommandContext) error {
			data := ctx.Interaction.ApplicationCommandData()
			if data.Resolved == nil {
				return ctx.ReplyEphemeral("❌ Usuario no encontrado.")
			}
			user, ok := data.Resolved.Users[data.TargetID]
			if !ok {
				return ctx.ReplyEphemeral("❌ Usuario no encontrado.")
			}
			return ctx.ReplyEphemeral(user.AvatarURL("512"))
		},
	}
}
