package discord

import (
	"errors"
	"fmt"

	anticrash "github.com/PancyStudios/PancyCommands/pkg/errors"
	"github.com/bwmarrin/discordgo"
)

const dispatchPrefix = "Dispatcher"

// execution is a snapshot of everything needed to run one interaction, taken
// under the handler lock so a concurrent reload cannot tear it.
type execution struct {
	self         Instance
	command      Instance
	sub          *SubCommand
	run          CommandRunFunc
	autoComplete AutoCompleteFunc
	hooks        Hooks
	middlewares  []string
	memberPerms  int64
	botPerms     int64
	options      []*CommandOption
}

// Dispatcher routes interactions to the loaded commands
type Dispatcher struct {
	handler     *CommandHandler
	middlewares *Middlewares
}

// NewDispatcher creates a Dispatcher over the handler's loaded commands
func NewDispatcher(handler *CommandHandler, middlewares *Middlewares) *Dispatcher {
	if middlewares == nil {
		middlewares = NewMiddlewares()
	}
	return &Dispatcher{handler: handler, middlewares: middlewares}
}

// Execute runs an application command interaction through permission checks,
// option validation, middlewares, the command itself and its after-run hook.
// A panic anywhere in the chain is handed to OnInternalError.
func (d *Dispatcher) Execute(ctx *CommandContext) error {
	exec, err := d.resolve(ctx)
	if err != nil {
		return err
	}
	ctx.Command = exec.command
	ctx.SubCommand = exec.sub

	err = anticrash.Catch(func() error {
		return d.execute(ctx, exec)
	})

	var panicErr *anticrash.PanicError
	if errors.As(err, &panicErr) {
		d.handler.log.Warn(fmt.Sprintf("Panic ejecutando %s: %v", exec.self.GetName(), panicErr.Value), dispatchPrefix)
		if hook := exec.hooks.OnInternalError; hook != nil {
			return anticrash.Catch(func() error {
				return hook(exec.self, ctx, err)
			})
		}
	}
	return err
}

func (d *Dispatcher) execute(ctx *CommandContext, exec *execution) error {
	interaction := ctx.Interaction.Interaction

	if missing := missingPermissions(exec.botPerms, interaction.AppPermissions); missing != 0 {
		if hook := exec.hooks.OnBotPermissionsFail; hook != nil {
			return hook(exec.self, ctx, missing)
		}
		return fmt.Errorf("%w: %d", ErrMissingBotPermissions, missing)
	}

	if interaction.Member != nil {
		if missing := missingPermissions(exec.memberPerms, interaction.Member.Permissions); missing != 0 {
			if hook := exec.hooks.OnPermissionsFail; hook != nil {
				return hook(exec.self, ctx, missing)
			}
			return fmt.Errorf("%w: %d", ErrMissingPermissions, missing)
		}
	}

	if failed := validateOptions(exec.options, ctx.Options()); len(failed) > 0 {
		if hook := exec.hooks.OnOptionsError; hook != nil {
			return hook(exec.self, ctx, failed)
		}
		return fmt.Errorf("invalid options for %s: %d failed", exec.self.GetName(), len(failed))
	}

	if err := d.middlewares.Run(ctx, exec.middlewares); err != nil {
		if hook := exec.hooks.OnMiddlewaresError; hook != nil {
			return hook(exec.self, ctx, err)
		}
		return err
	}

	if exec.run != nil {
		if err := exec.run(ctx); err != nil {
			if hook := exec.hooks.OnRunError; hook != nil {
				return hook(exec.self, ctx, err)
			}
			return err
		}
	}

	if hook := exec.hooks.OnAfterRun; hook != nil {
		return hook(exec.self, ctx, nil)
	}
	return nil
}

// AutoComplete forwards an autocomplete interaction to the resolved command
func (d *Dispatcher) AutoComplete(ctx *CommandContext) error {
	exec, err := d.resolve(ctx)
	if err != nil {
		return err
	}
	if exec.autoComplete == nil {
		return nil
	}
	ctx.Command = exec.command
	ctx.SubCommand = exec.sub
	return anticrash.Catch(func() error {
		exec.autoComplete(ctx)
		return nil
	})
}

// resolve finds the instance an interaction targets and snapshots it
func (d *Dispatcher) resolve(ctx *CommandContext) (*execution, error) {
	if ctx.Interaction == nil || ctx.Interaction.Interaction == nil {
		return nil, ErrUnknownCommand
	}
	data := ctx.Interaction.ApplicationCommandData()

	h := d.handler
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, inst := range h.values {
		switch c := inst.(type) {
		case *Command:
			if c.Name != data.Name || data.CommandType == discordgo.UserApplicationCommand || data.CommandType == discordgo.MessageApplicationCommand {
				continue
			}
			return commandExecution(c, data.Options)
		case *ContextMenuCommand:
			if c.Name != data.Name || data.CommandType != contextMenuType(c) {
				continue
			}
			return &execution{
				self:        c,
				command:     c,
				run:         c.Run,
				hooks:       c.Hooks,
				middlewares: c.Middlewares,
				memberPerms: c.DefaultMemberPermissions,
				botPerms:    c.BotPermissions,
			}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, data.Name)
}

func contextMenuType(c *ContextMenuCommand) discordgo.ApplicationCommandType {
	if c.Type == 0 {
		return discordgo.UserApplicationCommand
	}
	return c.Type
}

// commandExecution picks the sub-command selected by the interaction options,
// descending into a group when one is present.
func commandExecution(c *Command, options []*discordgo.ApplicationCommandInteractionDataOption) (*execution, error) {
	group, name := "", ""
	if len(options) > 0 {
		switch first := options[0]; first.Type {
		case discordgo.ApplicationCommandOptionSubCommandGroup:
			group = first.Name
			if len(first.Options) > 0 {
				name = first.Options[0].Name
			}
		case discordgo.ApplicationCommandOptionSubCommand:
			name = first.Name
		}
	}

	if name == "" {
		plain := make([]*CommandOption, 0, len(c.Options))
		for _, opt := range c.Options {
			if o, ok := opt.(*CommandOption); ok {
				plain = append(plain, o)
			}
		}
		return &execution{
			self:         c,
			command:      c,
			run:          c.Run,
			autoComplete: c.AutoComplete,
			hooks:        c.Hooks,
			middlewares:  c.Middlewares,
			memberPerms:  c.DefaultMemberPermissions,
			botPerms:     c.BotPermissions,
			options:      plain,
		}, nil
	}

	for _, sub := range c.SubCommands() {
		if sub.Name != name || sub.Group != group {
			continue
		}
		return &execution{
			self:         sub,
			command:      c,
			sub:          sub,
			run:          sub.Run,
			autoComplete: sub.AutoComplete,
			hooks:        sub.Hooks,
			middlewares:  sub.Middlewares,
			memberPerms:  c.DefaultMemberPermissions,
			botPerms:     c.BotPermissions | sub.BotPermissions,
			options:      sub.Options,
		}, nil
	}
	if group != "" {
		name = group + " " + name
	}
	return nil, fmt.Errorf("%w: %s %s", ErrUnknownCommand, c.Name, name)
}

// missingPermissions returns the required bits absent from have. Holders of
// the administrator bit miss nothing.
func missingPermissions(required, have int64) int64 {
	if required == 0 || have&discordgo.PermissionAdministrator != 0 {
		return 0
	}
	return required &^ have
}

// validateOptions checks supplied values against the declared options
func validateOptions(declared []*CommandOption, supplied []*discordgo.ApplicationCommandInteractionDataOption) map[string]error {
	byName := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(supplied))
	for _, opt := range supplied {
		byName[opt.Name] = opt
	}

	failed := make(map[string]error)
	for _, opt := range declared {
		value, ok := byName[opt.Name]
		if !ok {
			if opt.Required {
				failed[opt.Name] = ErrMissingOption
			}
			continue
		}
		if len(opt.Choices) > 0 && !value.Focused && !matchesChoice(opt.Choices, value.Value) {
			failed[opt.Name] = fmt.Errorf("%w: %v", ErrInvalidChoice, value.Value)
		}
	}
	return failed
}

func matchesChoice(choices []*discordgo.ApplicationCommandOptionChoice, value interface{}) bool {
	want := fmt.Sprint(value)
	for _, c := range choices {
		if fmt.Sprint(c.Value) == want {
			return true
		}
	}
	return false
}
