// Package langs loads the translation files commands refer to by key.
// Message files are parsed with go-i18n; each file name is a locale identifier
// such as "en" or "es-ES" and nested keys are joined with dots.
package langs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/PancyStudios/PancyCommands/pkg/logger"
	"github.com/bwmarrin/discordgo"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

const langsPrefix = "Langs"

// Alias maps an author facing locale identifier to the platform codes it fills
type Alias struct {
	Locale string
	Codes  []discordgo.Locale
}

// Table holds translated strings per locale identifier
type Table struct {
	mu      sync.RWMutex
	values  map[string]map[string]string
	aliases []Alias
}

// New creates a Table from in-memory values
func New(values map[string]map[string]string, aliases []Alias) *Table {
	t := &Table{values: make(map[string]map[string]string, len(values))}
	for locale, keys := range values {
		copied := make(map[string]string, len(keys))
		for k, v := range keys {
			copied[k] = v
		}
		t.values[locale] = copied
	}
	t.aliases = append(t.aliases, aliases...)
	return t
}

func newBundle() *i18n.Bundle {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)
	bundle.RegisterUnmarshalFunc("yml", yaml.Unmarshal)
	return bundle
}

func isMessageFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".toml", ".yaml", ".yml":
		return true
	}
	return false
}

// LoadDir parses every message file directly under dir. Paths listed in
// skip, such as an alias file kept next to the locales, are ignored. Other
// files whose name is not a language tag are skipped with a warning.
func LoadDir(dir string, skip ...string) (*Table, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading locales dir: %w", err)
	}

	skipped := make(map[string]struct{}, len(skip))
	for _, path := range skip {
		skipped[filepath.Clean(path)] = struct{}{}
	}

	bundle := newBundle()
	t := &Table{values: make(map[string]map[string]string)}

	for _, entry := range entries {
		if entry.IsDir() || !isMessageFile(entry.Name()) {
			continue
		}

		name := entry.Name()
		if _, ok := skipped[filepath.Join(dir, name)]; ok {
			continue
		}
		locale := strings.TrimSuffix(name, filepath.Ext(name))
		if _, err := language.Parse(locale); err != nil {
			logger.Warn(fmt.Sprintf("Archivo de idioma ignorado %s: %v", name, err), langsPrefix)
			continue
		}

		file, err := bundle.LoadMessageFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}

		keys, ok := t.values[locale]
		if !ok {
			keys = make(map[string]string, len(file.Messages))
			t.values[locale] = keys
		}
		for _, msg := range file.Messages {
			keys[msg.ID] = messageText(msg)
		}
	}

	logger.Debug(fmt.Sprintf("%d idiomas cargados desde %s", len(t.values), dir), langsPrefix)
	return t, nil
}

// messageText returns the plain form of a message
func messageText(msg *i18n.Message) string {
	if msg.Other != "" {
		return msg.Other
	}
	return msg.One
}

// LoadAliases reads a TOML or YAML file of `locale = ["code", ...]` entries
// into t, replacing any aliases already set.
func (t *Table) LoadAliases(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading aliases: %w", err)
	}

	raw := make(map[string][]string)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &raw)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	default:
		return fmt.Errorf("unsupported aliases format: %s", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("parsing aliases: %w", err)
	}

	locales := make([]string, 0, len(raw))
	for locale := range raw {
		locales = append(locales, locale)
	}
	sort.Strings(locales)

	aliases := make([]Alias, 0, len(locales))
	for _, locale := range locales {
		codes := make([]discordgo.Locale, 0, len(raw[locale]))
		for _, code := range raw[locale] {
			if _, ok := discordgo.Locales[discordgo.Locale(code)]; !ok {
				logger.Warn(fmt.Sprintf("Alias %s -> %s no es un idioma de Discord", locale, code), langsPrefix)
			}
			codes = append(codes, discordgo.Locale(code))
		}
		aliases = append(aliases, Alias{Locale: locale, Codes: codes})
	}

	t.mu.Lock()
	t.aliases = aliases
	t.mu.Unlock()
	return nil
}

// Locales returns the locale identifiers in sorted order
func (t *Table) Locales() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, 0, len(t.values))
	for locale := range t.values {
		out = append(out, locale)
	}
	sort.Strings(out)
	return out
}

// Aliases returns the platform codes configured for locale, or nil. The
// returned slice is a copy.
func (t *Table) Aliases(locale string) []discordgo.Locale {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, alias := range t.aliases {
		if alias.Locale == locale {
			return append([]discordgo.Locale(nil), alias.Codes...)
		}
	}
	return nil
}

// GetKey returns the translation of key; missing and empty values report false
func (t *Table) GetKey(locale, key string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	value := t.values[locale][key]
	return value, value != ""
}
