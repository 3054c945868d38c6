// Package discord provides the Discord bot client and related structures.
// It wraps discordgo with command loading, registration and dispatch.
package discord

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/PancyStudios/PancyCommands/pkg/config"
	"github.com/PancyStudios/PancyCommands/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

const clientPrefix = "Client"

// route discordgo's own logging through the bot logger
func init() {
	discordgo.Logger = func(msgL int, caller int, format string, a ...interface{}) {
		msg := fmt.Sprintf(format, a...)
		switch msgL {
		case discordgo.LogError:
			logger.Error(msg, "DiscordGo")
		case discordgo.LogWarning:
			logger.Warn(msg, "DiscordGo")
		default:
			logger.Debug(msg, "DiscordGo")
		}
	}
}

// ExtendedClient wraps discordgo.Session with the command handler
type ExtendedClient struct {
	Session     *discordgo.Session
	Commands    *CommandHandler
	Middlewares *Middlewares
	StartTime   time.Time

	cfg        *config.Config
	dispatcher *Dispatcher
	mu         sync.RWMutex
	isReady    bool
}

// NewClient creates a new ExtendedClient around handler
func NewClient(cfg *config.Config, handler *CommandHandler) (*ExtendedClient, error) {
	session, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, err
	}

	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages
	session.ShardCount = 1
	session.SyncEvents = false
	session.StateEnabled = true
	session.LogLevel = discordgo.LogWarning

	middlewares := NewMiddlewares()
	c := &ExtendedClient{
		Session:     session,
		Commands:    handler,
		Middlewares: middlewares,
		cfg:         cfg,
		dispatcher:  NewDispatcher(handler, middlewares),
	}
	return c, nil
}

// Start loads the commands, wires the session handlers and opens the gateway
func (c *ExtendedClient) Start(ctx context.Context) error {
	loaded, err := c.Commands.Load(ctx, c.cfg.CommandsDir)
	if err != nil {
		logger.Error("Failed to load commands: "+err.Error(), clientPrefix)
		return err
	}
	logger.System(fmt.Sprintf("%d comandos cargados", len(loaded)), clientPrefix)

	c.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		c.mu.Lock()
		c.isReady = true
		c.mu.Unlock()

		logger.Success("Bot conectado como: "+r.User.Username, clientPrefix)

		if err := c.SyncCommands(ctx); err != nil {
			logger.Error("Error registrando comandos: "+err.Error(), clientPrefix)
		}
	})
	c.Session.AddHandler(c.handleInteraction)

	c.StartTime = time.Now()
	return c.Session.Open()
}

// SyncCommands registers the public commands globally and the dev commands
// in the configured dev guild
func (c *ExtendedClient) SyncCommands(ctx context.Context) error {
	if c.Session.State == nil || c.Session.State.User == nil {
		return fmt.Errorf("session is not ready")
	}
	appID := c.Session.State.User.ID

	res, err := c.Commands.Sync(ctx, c.Session, appID, "", c.Commands.Definitions(false))
	if err != nil {
		return err
	}
	logger.System(fmt.Sprintf("Comandos globales: %d creados, %d eliminados, %d sin cambios",
		len(res.Created), len(res.Deleted), len(res.Unchanged)), clientPrefix)

	if c.cfg.DevGuildID == "" {
		return nil
	}
	res, err = c.Commands.Sync(ctx, c.Session, appID, c.cfg.DevGuildID, c.Commands.Definitions(true))
	if err != nil {
		return err
	}
	logger.System(fmt.Sprintf("Comandos dev: %d creados, %d eliminados", len(res.Created), len(res.Deleted)), clientPrefix)
	return nil
}

// handleInteraction handles incoming Discord interactions
func (c *ExtendedClient) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := &CommandContext{
		Session:     s,
		Interaction: i,
		Client:      c,
	}

	switch i.Type {
	case discordgo.InteractionApplicationCommandAutocomplete:
		if err := c.dispatcher.AutoComplete(ctx); err != nil {
			logger.Warn("Error en autocompletado: "+err.Error(), clientPrefix)
		}
	case discordgo.InteractionApplicationCommand:
		if err := c.dispatcher.Execute(ctx); err != nil {
			logger.Error(fmt.Sprintf("Error executing command %s: %v", i.ApplicationCommandData().Name, err), clientPrefix)
		}
	}
}

// Stop stops the bot and closes the session
func (c *ExtendedClient) Stop() error {
	c.mu.Lock()
	c.isReady = false
	c.mu.Unlock()

	if c.Session != nil {
		return c.Session.Close()
	}
	return nil
}

// IsReady returns true if the bot is ready
func (c *ExtendedClient) IsReady() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isReady
}

// GuildCount returns the number of guilds the bot is in
func (c *ExtendedClient) GuildCount() int {
	if c.Session == nil || c.Session.State == nil {
		return 0
	}
	c.Session.State.RLock()
	defer c.Session.State.RUnlock()
	return len(c.Session.State.Guilds)
}

// Uptime returns how long the client has been running
func (c *ExtendedClient) Uptime() time.Duration {
	if c.StartTime.IsZero() {
		return 0
	}
	return time.Since(c.StartTime)
}
