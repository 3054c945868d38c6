package help

import (
	"sort"
	"strings"

	"github.com/PancyStudios/PancyCommands/pkg/discord"
)

func New() any {
	return &discord.Command{
		Name:        "help",
		Description: "Muestra los comandos disponibles",
		Category:    "utils",
		Locales:     &discord.LocaleKeys{Name: "help.name", Description: "help.desc"},
		Run: func(ctx *discord.CommandContext) error {
			var names []string
			for _, inst := range ctx.Client.Commands.Values() {
				names = append(names, "`"+inst.GetName()+"`")
			}
			sort.Strings(names)
			return ctx.ReplyEphemeral("📚 Comandos: " + strings.Join(names, ", "))
		},
	}
}
