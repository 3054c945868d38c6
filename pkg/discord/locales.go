package discord

import (
	"sort"

	"github.com/bwmarrin/discordgo"
)

// LocaleTable maps author facing locale identifiers to translated strings
type LocaleTable interface {
	// Locales returns every locale identifier known to the table
	Locales() []string
	// Aliases returns the platform locale codes a locale identifier expands to
	Aliases(locale string) []discordgo.Locale
	// GetKey looks up a translation; ok is false for missing or empty values
	GetKey(locale, key string) (string, bool)
}

// IsPlatformLocale reports whether id is one of Discord's locale codes
func IsPlatformLocale(id string) bool {
	_, ok := discordgo.Locales[discordgo.Locale(id)]
	return ok
}

// TargetLocales returns the platform codes a locale identifier populates: its
// alias expansion followed by the identifier itself when Discord recognises it.
// The same code may appear twice; writes under it are idempotent.
func TargetLocales(table LocaleTable, locale string) []discordgo.Locale {
	aliases := table.Aliases(locale)
	targets := make([]discordgo.Locale, 0, len(aliases)+1)
	targets = append(targets, aliases...)
	if IsPlatformLocale(locale) {
		targets = append(targets, discordgo.Locale(locale))
	}
	return targets
}

// ResolveLocales expands the translation keys declared by a command or
// sub-command, and by its plain options, into per locale code maps. Context
// menu commands are left untouched.
func ResolveLocales(entity Instance, table LocaleTable) {
	if table == nil {
		return
	}

	switch e := entity.(type) {
	case *Command:
		if e.Locales != nil {
			e.NameLocalizations, e.DescriptionLocalizations = localize(table, e.Locales)
		}
		for _, opt := range e.Options {
			if plain, ok := opt.(*CommandOption); ok {
				resolveOption(plain, table)
			}
		}
		if e.GroupLocales != nil {
			e.Groups = localizeGroups(table, e.GroupLocales)
		}
	case *SubCommand:
		if e.Locales != nil {
			e.NameLocalizations, e.DescriptionLocalizations = localize(table, e.Locales)
		}
		for _, opt := range e.Options {
			resolveOption(opt, table)
		}
	}
}

func resolveOption(opt *CommandOption, table LocaleTable) {
	if opt == nil || opt.Locales == nil {
		return
	}
	opt.NameLocalizations, opt.DescriptionLocalizations = localize(table, opt.Locales)
}

// localize builds the name and description maps for a key bundle
func localize(table LocaleTable, keys *LocaleKeys) (names, descriptions map[discordgo.Locale]string) {
	names = make(map[discordgo.Locale]string)
	descriptions = make(map[discordgo.Locale]string)

	for _, locale := range table.Locales() {
		targets := TargetLocales(table, locale)

		if keys.Name != "" {
			if value, ok := table.GetKey(locale, keys.Name); ok {
				for _, code := range targets {
					names[code] = value
				}
			}
		}

		if keys.Description != "" {
			if value, ok := table.GetKey(locale, keys.Description); ok {
				for _, code := range targets {
					descriptions[code] = value
				}
			}
		}
	}

	return names, descriptions
}

// localizeGroups accumulates ordered (code, text) pairs per group. Repeated
// codes are kept.
func localizeGroups(table LocaleTable, groups map[string]GroupLocaleKeys) map[string]*Group {
	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	resolved := make(map[string]*Group, len(groups))
	for _, locale := range table.Locales() {
		targets := TargetLocales(table, locale)

		for _, key := range keys {
			src := groups[key]
			group, ok := resolved[key]
			if !ok {
				group = &Group{
					DefaultDescription: src.DefaultDescription,
					Name:               []LocalizedText{},
					Description:        []LocalizedText{},
				}
				resolved[key] = group
			}

			if src.Name != "" {
				if value, ok := table.GetKey(locale, src.Name); ok {
					for _, code := range targets {
						group.Name = append(group.Name, LocalizedText{Locale: code, Text: value})
					}
				}
			}

			if src.Description != "" {
				if value, ok := table.GetKey(locale, src.Description); ok {
					for _, code := range targets {
						group.Description = append(group.Description, LocalizedText{Locale: code, Text: value})
					}
				}
			}
		}
	}

	return resolved
}
