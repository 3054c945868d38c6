package ping

import (
	"fmt"

	"github.com/PancyStudios/PancyCommands/pkg/discord"
)

func New() any {
	return &discord.Command{
		Name:        "ping",
		Description: "Comprueba la latencia del bot",
		Category:    "utils",
		Locales:     &discord.LocaleKeys{Name: "ping.name", Description: "ping.desc"},
		Run: func(ctx *discord.CommandContext) error {
			latency := ctx.Session.HeartbeatLatency().Milliseconds()
			return ctx.Reply(fmt.Sprintf("🏓 Pong! Latencia: %dms", latency))
		},
	}
}
