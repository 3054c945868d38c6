package discord

import (
	"context"
	"crypto/sha1"
	"fmt"
	"sort"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/goccy/go-json"
)

// ToApplicationCommand converts the command to a Discord application command
func (c *Command) ToApplicationCommand() *discordgo.ApplicationCommand {
	ac := &discordgo.ApplicationCommand{
		Type:                     discordgo.ChatApplicationCommand,
		Name:                     c.Name,
		Description:              c.Description,
		Options:                  c.applicationOptions(),
		NameLocalizations:        localizationPtr(c.NameLocalizations),
		DescriptionLocalizations: localizationPtr(c.DescriptionLocalizations),
	}
	if c.DefaultMemberPermissions != 0 {
		perms := c.DefaultMemberPermissions
		ac.DefaultMemberPermissions = &perms
	}
	return ac
}

// ToApplicationCommand converts the entry to a Discord application command
func (m *ContextMenuCommand) ToApplicationCommand() *discordgo.ApplicationCommand {
	ac := &discordgo.ApplicationCommand{
		Type: m.Type,
		Name: m.Name,
	}
	if ac.Type == 0 {
		ac.Type = discordgo.UserApplicationCommand
	}
	if m.DefaultMemberPermissions != 0 {
		perms := m.DefaultMemberPermissions
		ac.DefaultMemberPermissions = &perms
	}
	return ac
}

// applicationOptions lays out options in declaration order, folding
// sub-commands that name a group into a single group option.
func (c *Command) applicationOptions() []*discordgo.ApplicationCommandOption {
	options := make([]*discordgo.ApplicationCommandOption, 0, len(c.Options))
	groups := make(map[string]*discordgo.ApplicationCommandOption)

	for _, opt := range c.Options {
		switch o := opt.(type) {
		case *CommandOption:
			options = append(options, o.toApplicationOption())
		case *SubCommand:
			if o.Group == "" {
				options = append(options, o.toApplicationOption())
				continue
			}
			group, ok := groups[o.Group]
			if !ok {
				group = c.groupOption(o.Group)
				groups[o.Group] = group
				options = append(options, group)
			}
			group.Options = append(group.Options, o.toApplicationOption())
		}
	}
	return options
}

// groupOption builds a sub-command group from its resolved localizations.
// The group key stands in for a missing description.
func (c *Command) groupOption(key string) *discordgo.ApplicationCommandOption {
	group := &discordgo.ApplicationCommandOption{
		Type: discordgo.ApplicationCommandOptionSubCommandGroup,
		Name: key,
	}
	if keys, ok := c.GroupLocales[key]; ok {
		group.Description = keys.DefaultDescription
	}
	if resolved, ok := c.Groups[key]; ok {
		if resolved.DefaultDescription != "" {
			group.Description = resolved.DefaultDescription
		}
		group.NameLocalizations = pairsToMap(resolved.Name)
		group.DescriptionLocalizations = pairsToMap(resolved.Description)
	}
	if group.Description == "" {
		group.Description = key
	}
	return group
}

func (s *SubCommand) toApplicationOption() *discordgo.ApplicationCommandOption {
	opt := &discordgo.ApplicationCommandOption{
		Type:                     discordgo.ApplicationCommandOptionSubCommand,
		Name:                     s.Name,
		Description:              s.Description,
		NameLocalizations:        s.NameLocalizations,
		DescriptionLocalizations: s.DescriptionLocalizations,
	}
	for _, o := range s.Options {
		opt.Options = append(opt.Options, o.toApplicationOption())
	}
	return opt
}

func (o *CommandOption) toApplicationOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:                     o.Type,
		Name:                     o.Name,
		Description:              o.Description,
		Required:                 o.Required,
		Autocomplete:             o.Autocomplete,
		Choices:                  o.Choices,
		ChannelTypes:             o.ChannelTypes,
		MinValue:                 o.MinValue,
		MaxValue:                 o.MaxValue,
		MinLength:                o.MinLength,
		MaxLength:                o.MaxLength,
		NameLocalizations:        o.NameLocalizations,
		DescriptionLocalizations: o.DescriptionLocalizations,
	}
}

func localizationPtr(m map[discordgo.Locale]string) *map[discordgo.Locale]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[discordgo.Locale]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return &out
}

// pairsToMap collapses ordered pairs; later pairs win
func pairsToMap(pairs []LocalizedText) map[discordgo.Locale]string {
	if len(pairs) == 0 {
		return nil
	}
	out := make(map[discordgo.Locale]string, len(pairs))
	for _, p := range pairs {
		out[p.Locale] = p.Text
	}
	return out
}

// Definitions returns the registration payloads of the loaded instances.
// dev selects the commands marked IsDev instead of the public ones.
func (h *CommandHandler) Definitions(dev bool) []*discordgo.ApplicationCommand {
	h.mu.RLock()
	defer h.mu.RUnlock()

	defs := make([]*discordgo.ApplicationCommand, 0, len(h.values))
	for _, inst := range h.values {
		switch c := inst.(type) {
		case *Command:
			if c.IsDev == dev {
				defs = append(defs, c.ToApplicationCommand())
			}
		case *ContextMenuCommand:
			if !dev {
				defs = append(defs, c.ToApplicationCommand())
			}
		}
	}
	return defs
}

// ApplicationCommandAPI is the subset of *discordgo.Session used to sync
type ApplicationCommandAPI interface {
	ApplicationCommands(appID, guildID string, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
	ApplicationCommandCreate(appID string, guildID string, cmd *discordgo.ApplicationCommand, options ...discordgo.RequestOption) (*discordgo.ApplicationCommand, error)
	ApplicationCommandDelete(appID, guildID, cmdID string, options ...discordgo.RequestOption) error
}

// HashStore persists the hash of every registered definition per guild.
// The empty guild ID holds the global commands.
type HashStore interface {
	LoadHashes(ctx context.Context, guildID string) (map[string]string, error)
	SaveHashes(ctx context.Context, guildID string, hashes map[string]string) error
}

// MemoryHashStore keeps hashes for the life of the process
type MemoryHashStore struct {
	mu     sync.Mutex
	hashes map[string]map[string]string
}

// NewMemoryHashStore creates an empty MemoryHashStore
func NewMemoryHashStore() *MemoryHashStore {
	return &MemoryHashStore{hashes: make(map[string]map[string]string)}
}

// LoadHashes implements HashStore
func (s *MemoryHashStore) LoadHashes(_ context.Context, guildID string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.hashes[guildID]))
	for k, v := range s.hashes[guildID] {
		out[k] = v
	}
	return out, nil
}

// SaveHashes implements HashStore
func (s *MemoryHashStore) SaveHashes(_ context.Context, guildID string, hashes map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make(map[string]string, len(hashes))
	for k, v := range hashes {
		copied[k] = v
	}
	s.hashes[guildID] = copied
	return nil
}

// SyncResult lists what a Sync changed
type SyncResult struct {
	Created   []string
	Deleted   []string
	Unchanged []string
}

// Sync makes the remote command list of guildID match defs: stale remote
// commands are deleted and definitions whose hash changed are (re)created.
func (h *CommandHandler) Sync(ctx context.Context, api ApplicationCommandAPI, appID, guildID string, defs []*discordgo.ApplicationCommand) (SyncResult, error) {
	var result SyncResult

	remote, err := api.ApplicationCommands(appID, guildID, discordgo.WithContext(ctx))
	if err != nil {
		return result, fmt.Errorf("listing remote commands: %w", err)
	}
	remoteByKey := make(map[string]*discordgo.ApplicationCommand, len(remote))
	for _, rc := range remote {
		remoteByKey[SyncKey(rc)] = rc
	}

	cached, err := h.hashes.LoadHashes(ctx, guildID)
	if err != nil {
		return result, fmt.Errorf("loading command hashes: %w", err)
	}

	local := make(map[string]struct{}, len(defs))
	for _, d := range defs {
		local[SyncKey(d)] = struct{}{}
	}

	keys := make([]string, 0, len(remoteByKey))
	for key := range remoteByKey {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if _, ok := local[key]; ok {
			continue
		}
		rc := remoteByKey[key]
		if err := api.ApplicationCommandDelete(appID, guildID, rc.ID, discordgo.WithContext(ctx)); err != nil {
			h.log.Warn(fmt.Sprintf("Error eliminando comando %s: %v", rc.Name, err), handlerPrefix)
			continue
		}
		delete(cached, key)
		result.Deleted = append(result.Deleted, rc.Name)
	}

	for _, d := range defs {
		key := SyncKey(d)
		hash := HashCommand(d)
		if _, exists := remoteByKey[key]; exists && cached[key] == hash {
			result.Unchanged = append(result.Unchanged, d.Name)
			continue
		}
		if _, err := api.ApplicationCommandCreate(appID, guildID, d, discordgo.WithContext(ctx)); err != nil {
			h.log.Warn(fmt.Sprintf("Error registrando comando %s: %v", d.Name, err), handlerPrefix)
			continue
		}
		cached[key] = hash
		result.Created = append(result.Created, d.Name)
	}

	if err := h.hashes.SaveHashes(ctx, guildID, cached); err != nil {
		return result, fmt.Errorf("saving command hashes: %w", err)
	}
	return result, nil
}

// SyncKey identifies a definition within one scope. Chat commands keep their
// bare name; context menus are prefixed with their type since they may share
// a name with a chat command.
func SyncKey(cmd *discordgo.ApplicationCommand) string {
	switch cmd.Type {
	case discordgo.UserApplicationCommand:
		return "user:" + cmd.Name
	case discordgo.MessageApplicationCommand:
		return "message:" + cmd.Name
	default:
		return cmd.Name
	}
}

// HashCommand creates a deterministic hash of a definition, localizations included
func HashCommand(cmd *discordgo.ApplicationCommand) string {
	obj := map[string]interface{}{
		"name":        cmd.Name,
		"description": cmd.Description,
		"type":        cmd.Type,
	}
	if cmd.NameLocalizations != nil {
		obj["name_localizations"] = *cmd.NameLocalizations
	}
	if cmd.DescriptionLocalizations != nil {
		obj["description_localizations"] = *cmd.DescriptionLocalizations
	}
	if cmd.DefaultMemberPermissions != nil {
		obj["default_member_permissions"] = *cmd.DefaultMemberPermissions
	}
	if len(cmd.Options) > 0 {
		obj["options"] = normalizeOptions(cmd.Options)
	}

	// encoding sorts map keys, so equal definitions produce equal bytes
	data, _ := json.Marshal(obj)
	return fmt.Sprintf("%x", sha1.Sum(data))
}

func normalizeOptions(opts []*discordgo.ApplicationCommandOption) []map[string]interface{} {
	normalized := make([]map[string]interface{}, len(opts))
	for i, o := range opts {
		entry := map[string]interface{}{
			"name":        o.Name,
			"description": o.Description,
			"type":        o.Type,
			"required":    o.Required,
		}
		if len(o.NameLocalizations) > 0 {
			entry["name_localizations"] = o.NameLocalizations
		}
		if len(o.DescriptionLocalizations) > 0 {
			entry["description_localizations"] = o.DescriptionLocalizations
		}
		if o.Autocomplete {
			entry["autocomplete"] = true
		}
		if len(o.ChannelTypes) > 0 {
			entry["channel_types"] = o.ChannelTypes
		}
		if o.MinValue != nil {
			entry["min_value"] = *o.MinValue
		}
		if o.MaxValue != 0 {
			entry["max_value"] = o.MaxValue
		}
		if o.MinLength != nil {
			entry["min_length"] = *o.MinLength
		}
		if o.MaxLength != 0 {
			entry["max_length"] = o.MaxLength
		}
		if len(o.Choices) > 0 {
			choices := make([]map[string]interface{}, len(o.Choices))
			for j, c := range o.Choices {
				choices[j] = map[string]interface{}{
					"name":  c.Name,
					"value": c.Value,
				}
			}
			entry["choices"] = choices
		}
		if len(o.Options) > 0 {
			entry["options"] = normalizeOptions(o.Options)
		}
		normalized[i] = entry
	}
	return normalized
}
