package ping

import "github.com/PancyStudios/PancyCommands/pkg/discord"

func New() any {
	return &discord.Command{Name: "ping", Description: "Pong"}
}
