package discord

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// MiddlewareFunc runs before a command; a non-nil error stops the command
type MiddlewareFunc func(ctx *CommandContext) error

// Middlewares is the registry commands refer to by name
type Middlewares struct {
	mu    sync.RWMutex
	funcs map[string]MiddlewareFunc
}

// NewMiddlewares creates a registry holding the built-in middlewares
func NewMiddlewares() *Middlewares {
	m := &Middlewares{funcs: make(map[string]MiddlewareFunc)}
	m.Register("guildOnly", GuildOnly)
	return m
}

// Register adds or replaces a middleware
func (m *Middlewares) Register(name string, fn MiddlewareFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.funcs[name] = fn
}

// Get returns the middleware registered under name
func (m *Middlewares) Get(name string) (MiddlewareFunc, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fn, ok := m.funcs[name]
	return fn, ok
}

// Run executes the named middlewares in order, stopping at the first error
func (m *Middlewares) Run(ctx *CommandContext, names []string) error {
	for _, name := range names {
		fn, ok := m.Get(name)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownMiddleware, name)
		}
		if err := fn(ctx); err != nil {
			return err
		}
	}
	return nil
}

// GuildOnly rejects interactions sent outside a guild
func GuildOnly(ctx *CommandContext) error {
	if ctx.Interaction == nil || ctx.Interaction.GuildID == "" {
		return fmt.Errorf("command %s can only be used in a guild", commandName(ctx))
	}
	return nil
}

func commandName(ctx *CommandContext) string {
	if ctx.Command != nil {
		return ctx.Command.GetName()
	}
	if ctx.Interaction != nil && ctx.Interaction.Type == discordgo.InteractionApplicationCommand {
		return ctx.Interaction.ApplicationCommandData().Name
	}
	return "?"
}
