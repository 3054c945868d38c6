package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// Kind discriminates the command variants a definition file can produce
type Kind int

const (
	KindOther Kind = iota
	KindCommand
	KindSubCommand
	KindContextMenu
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindCommand:
		return "command"
	case KindSubCommand:
		return "subcommand"
	case KindContextMenu:
		return "context-menu"
	default:
		return "other"
	}
}

// KindOf classifies a constructed value
func KindOf(v any) Kind {
	switch v.(type) {
	case *Command:
		return KindCommand
	case *SubCommand:
		return KindSubCommand
	case *ContextMenuCommand:
		return KindContextMenu
	default:
		return KindOther
	}
}

// Factory builds a fresh command value. Definition files export one as New.
type Factory func() (any, error)

// Instance is a loaded command of any kind
type Instance interface {
	Kind() Kind
	GetName() string
	FilePath() string
	Reload(ctx context.Context) error

	setFilePath(path string)
	setReloader(fn reloadFunc)
}

// reloadFunc re-reads an instance's definition file and swaps in its behaviour
type reloadFunc func(ctx context.Context, self Instance) error

// Option is an entry of Command.Options: a *SubCommand or a *CommandOption
type Option interface {
	OptionName() string
}

// LocaleKeys holds translation keys for a name and a description
type LocaleKeys struct {
	Name        string
	Description string
}

// GroupLocaleKeys holds translation keys for a named sub-command group
type GroupLocaleKeys struct {
	Name               string
	Description        string
	DefaultDescription string
}

// LocalizedText is a single platform locale code and its text
type LocalizedText struct {
	Locale discordgo.Locale
	Text   string
}

// Group is the resolved localization data of a sub-command group
type Group struct {
	DefaultDescription string
	Name               []LocalizedText
	Description        []LocalizedText
}

// CommandRunFunc is the function type for command execution
type CommandRunFunc func(ctx *CommandContext) error

// AutoCompleteFunc is the function type for autocomplete handling
type AutoCompleteFunc func(ctx *CommandContext)

// Command represents a chat input (slash) command
type Command struct {
	Name                     string
	Description              string
	Category                 string
	Options                  []Option
	AutoLoad                 bool
	Middlewares              []string
	DefaultMemberPermissions int64
	BotPermissions           int64
	IsDev                    bool
	Run                      CommandRunFunc
	AutoComplete             AutoCompleteFunc
	Hooks

	// Translation keys, resolved into the localization fields at load time.
	Locales      *LocaleKeys
	GroupLocales map[string]GroupLocaleKeys

	NameLocalizations        map[discordgo.Locale]string
	DescriptionLocalizations map[discordgo.Locale]string
	Groups                   map[string]*Group

	filePath string
	reload   reloadFunc
}

// SubCommand is a child of a Command, optionally inside a named group
type SubCommand struct {
	Name           string
	Description    string
	Group          string
	Options        []*CommandOption
	Middlewares    []string
	BotPermissions int64
	Run            CommandRunFunc
	AutoComplete   AutoCompleteFunc
	Hooks

	Locales *LocaleKeys

	NameLocalizations        map[discordgo.Locale]string
	DescriptionLocalizations map[discordgo.Locale]string

	filePath string
	reload   reloadFunc
}

// ContextMenuCommand is a user or message context menu entry
type ContextMenuCommand struct {
	Name                     string
	Type                     discordgo.ApplicationCommandType
	Middlewares              []string
	DefaultMemberPermissions int64
	BotPermissions           int64
	Run                      CommandRunFunc
	Hooks

	filePath string
	reload   reloadFunc
}

// CommandOption is a plain (non sub-command) option
type CommandOption struct {
	Type         discordgo.ApplicationCommandOptionType
	Name         string
	Description  string
	Required     bool
	Autocomplete bool
	Choices      []*discordgo.ApplicationCommandOptionChoice
	ChannelTypes []discordgo.ChannelType
	MinValue     *float64
	MaxValue     float64
	MinLength    *int
	MaxLength    int

	Locales *LocaleKeys

	NameLocalizations        map[discordgo.Locale]string
	DescriptionLocalizations map[discordgo.Locale]string
}

// OptionName implements Option
func (o *CommandOption) OptionName() string { return o.Name }

// OptionName implements Option
func (s *SubCommand) OptionName() string { return s.Name }

// Kind implements Instance
func (c *Command) Kind() Kind { return KindCommand }

// GetName implements Instance
func (c *Command) GetName() string { return c.Name }

// FilePath returns the definition file the command was loaded from
func (c *Command) FilePath() string { return c.filePath }

// Reload re-reads the command's definition file
func (c *Command) Reload(ctx context.Context) error {
	if c.reload == nil {
		return ErrNoSource
	}
	return c.reload(ctx, c)
}

func (c *Command) setFilePath(path string) {
	if c.filePath == "" {
		c.filePath = path
	}
}

func (c *Command) setReloader(fn reloadFunc) { c.reload = fn }

// SubCommands returns the sub-command options in declaration order
func (c *Command) SubCommands() []*SubCommand {
	subs := make([]*SubCommand, 0, len(c.Options))
	for _, opt := range c.Options {
		if sub, ok := opt.(*SubCommand); ok {
			subs = append(subs, sub)
		}
	}
	return subs
}

// Kind implements Instance
func (s *SubCommand) Kind() Kind { return KindSubCommand }

// GetName implements Instance
func (s *SubCommand) GetName() string { return s.Name }

// FilePath returns the definition file the sub-command was loaded from
func (s *SubCommand) FilePath() string { return s.filePath }

// Reload re-reads the sub-command's definition file
func (s *SubCommand) Reload(ctx context.Context) error {
	if s.reload == nil {
		return ErrNoSource
	}
	return s.reload(ctx, s)
}

func (s *SubCommand) setFilePath(path string) {
	if s.filePath == "" {
		s.filePath = path
	}
}

func (s *SubCommand) setReloader(fn reloadFunc) { s.reload = fn }

// Kind implements Instance
func (m *ContextMenuCommand) Kind() Kind { return KindContextMenu }

// GetName implements Instance
func (m *ContextMenuCommand) GetName() string { return m.Name }

// FilePath returns the definition file the entry was loaded from
func (m *ContextMenuCommand) FilePath() string { return m.filePath }

// Reload re-reads the entry's definition file
func (m *ContextMenuCommand) Reload(ctx context.Context) error {
	if m.reload == nil {
		return ErrNoSource
	}
	return m.reload(ctx, m)
}

func (m *ContextMenuCommand) setFilePath(path string) {
	if m.filePath == "" {
		m.filePath = path
	}
}

func (m *ContextMenuCommand) setReloader(fn reloadFunc) { m.reload = fn }
