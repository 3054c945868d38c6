package purge

import (
	"fmt"

	"github.com/PancyStudios/PancyCommands/pkg/discord"
)

func New() any {
	return &discord.SubCommand{
		Name:           "purge",
		Description:    "Elimina mensajes recientes del canal",
		BotPermissions: discord.PermissionManageMessages,
		Options: []*discord.CommandOption{
			{Type: discord.OptionInteger, Name: "cantidad", Description: "Mensajes a eliminar (1-100)", Required: true},
		},
		Run: func(ctx *discord.CommandContext) error {
			amount := int(ctx.GetIntOption("cantidad"))
			if amount < 1 || amount > 100 {
				return fmt.Errorf("la cantidad debe estar entre 1 y 100")
			}
			channelID := ctx.Interaction.ChannelID
			messages, err := ctx.Session.ChannelMessages(channelID, amount, "", "", "")
			if err != nil {
				return err
			}
			ids := make([]string, 0, len(messages))
			for _, m := range messages {
				ids = append(ids, m.ID)
			}
			if err := ctx.Session.ChannelMessagesBulkDelete(channelID, ids); err != nil {
				return err
			}
			return ctx.ReplyEphemeral(fmt.Sprintf("🧹 %d mensajes eliminados.", len(ids)))
		},
	}
}
