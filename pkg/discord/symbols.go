package discord

import (
	"reflect"

	"github.com/bwmarrin/discordgo"
)

// Option types, re-exported so command scripts only import this package
const (
	OptionString      = discordgo.ApplicationCommandOptionString
	OptionInteger     = discordgo.ApplicationCommandOptionInteger
	OptionBoolean     = discordgo.ApplicationCommandOptionBoolean
	OptionUser        = discordgo.ApplicationCommandOptionUser
	OptionChannel     = discordgo.ApplicationCommandOptionChannel
	OptionRole        = discordgo.ApplicationCommandOptionRole
	OptionMentionable = discordgo.ApplicationCommandOptionMentionable
	OptionNumber      = discordgo.ApplicationCommandOptionNumber
	OptionAttachment  = discordgo.ApplicationCommandOptionAttachment

	UserContextMenu    = discordgo.UserApplicationCommand
	MessageContextMenu = discordgo.MessageApplicationCommand
)

// Permission bits commonly required by commands
const (
	PermissionAdministrator   = int64(discordgo.PermissionAdministrator)
	PermissionManageMessages  = int64(discordgo.PermissionManageMessages)
	PermissionManageRoles     = int64(discordgo.PermissionManageRoles)
	PermissionKickMembers     = int64(discordgo.PermissionKickMembers)
	PermissionBanMembers      = int64(discordgo.PermissionBanMembers)
	PermissionModerateMembers = int64(discordgo.PermissionModerateMembers)
	PermissionSendMessages    = int64(discordgo.PermissionSendMessages)
	PermissionEmbedLinks      = int64(discordgo.PermissionEmbedLinks)
)

// SymbolsPath is the import path command scripts use for this package
const SymbolsPath = "github.com/PancyStudios/PancyCommands/pkg/discord"

// Symbols exposes the command API to the script interpreter
var Symbols = map[string]map[string]reflect.Value{
	SymbolsPath + "/discord": {
		// types
		"Command":            reflect.ValueOf((*Command)(nil)),
		"SubCommand":         reflect.ValueOf((*SubCommand)(nil)),
		"ContextMenuCommand": reflect.ValueOf((*ContextMenuCommand)(nil)),
		"CommandOption":      reflect.ValueOf((*CommandOption)(nil)),
		"Option":             reflect.ValueOf((*Option)(nil)),
		"Instance":           reflect.ValueOf((*Instance)(nil)),
		"LocaleKeys":         reflect.ValueOf((*LocaleKeys)(nil)),
		"GroupLocaleKeys":    reflect.ValueOf((*GroupLocaleKeys)(nil)),
		"Hooks":              reflect.ValueOf((*Hooks)(nil)),
		"CommandContext":     reflect.ValueOf((*CommandContext)(nil)),
		"Message":            reflect.ValueOf((*Message)(nil)),
		"CommandRunFunc":     reflect.ValueOf((*CommandRunFunc)(nil)),
		"AutoCompleteFunc":   reflect.ValueOf((*AutoCompleteFunc)(nil)),
		"ErrorHook":          reflect.ValueOf((*ErrorHook)(nil)),
		"OptionsErrorHook":   reflect.ValueOf((*OptionsErrorHook)(nil)),
		"PermissionsHook":    reflect.ValueOf((*PermissionsHook)(nil)),
		"Factory":            reflect.ValueOf((*Factory)(nil)),

		// constants
		"OptionString":              reflect.ValueOf(OptionString),
		"OptionInteger":             reflect.ValueOf(OptionInteger),
		"OptionBoolean":             reflect.ValueOf(OptionBoolean),
		"OptionUser":                reflect.ValueOf(OptionUser),
		"OptionChannel":             reflect.ValueOf(OptionChannel),
		"OptionRole":                reflect.ValueOf(OptionRole),
		"OptionMentionable":         reflect.ValueOf(OptionMentionable),
		"OptionNumber":              reflect.ValueOf(OptionNumber),
		"OptionAttachment":          reflect.ValueOf(OptionAttachment),
		"UserContextMenu":           reflect.ValueOf(UserContextMenu),
		"MessageContextMenu":        reflect.ValueOf(MessageContextMenu),
		"PermissionAdministrator":   reflect.ValueOf(PermissionAdministrator),
		"PermissionManageMessages":  reflect.ValueOf(PermissionManageMessages),
		"PermissionManageRoles":     reflect.ValueOf(PermissionManageRoles),
		"PermissionKickMembers":     reflect.ValueOf(PermissionKickMembers),
		"PermissionBanMembers":      reflect.ValueOf(PermissionBanMembers),
		"PermissionModerateMembers": reflect.ValueOf(PermissionModerateMembers),
		"PermissionSendMessages":    reflect.ValueOf(PermissionSendMessages),
		"PermissionEmbedLinks":      reflect.ValueOf(PermissionEmbedLinks),

		// errors
		"ErrMissingOption": reflect.ValueOf(&ErrMissingOption).Elem(),
		"ErrInvalidChoice": reflect.ValueOf(&ErrInvalidChoice).Elem(),

		// functions
		"NewMessage": reflect.ValueOf(NewMessage),
		"GuildOnly":  reflect.ValueOf(GuildOnly),
	},
}
