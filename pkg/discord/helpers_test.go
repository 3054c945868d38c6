package discord

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

// fakeLoader serves exports from memory in registration order
type fakeLoader struct {
	mu      sync.Mutex
	order   []string
	exports map[string]any
	listErr error
	loadErr error
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{exports: make(map[string]any)}
}

func (f *fakeLoader) add(path string, export any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.exports[path]; !ok {
		f.order = append(f.order, path)
	}
	f.exports[path] = export
}

func (f *fakeLoader) GetFiles(_ context.Context, dir string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	prefix := filepath.Clean(dir) + string(filepath.Separator)
	var out []string
	for _, p := range f.order {
		if strings.HasPrefix(p, prefix) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeLoader) LoadFiles(_ context.Context, paths []string) ([]LoadedFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	out := make([]LoadedFile, 0, len(paths))
	for _, p := range paths {
		out = append(out, LoadedFile{Path: p, Export: f.exports[p]})
	}
	return out, nil
}

// recordLogger keeps every warning
type recordLogger struct {
	mu     sync.Mutex
	warns  []string
	fields []logrus.Fields
}

func (l *recordLogger) Warn(message string, _ string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, message)
}

func (l *recordLogger) WarnWith(message string, _ string, fields logrus.Fields) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, message)
	l.fields = append(l.fields, fields)
}

func (l *recordLogger) Info(string, string)  {}
func (l *recordLogger) Debug(string, string) {}

func (l *recordLogger) warnings() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.warns...)
}

// mapTable is an in-memory LocaleTable
type mapTable struct {
	values  map[string]map[string]string
	aliases map[string][]discordgo.Locale
}

func (t *mapTable) Locales() []string {
	out := make([]string, 0, len(t.values))
	for locale := range t.values {
		out = append(out, locale)
	}
	sort.Strings(out)
	return out
}

func (t *mapTable) Aliases(locale string) []discordgo.Locale {
	return t.aliases[locale]
}

func (t *mapTable) GetKey(locale, key string) (string, bool) {
	v := t.values[locale][key]
	return v, v != ""
}

// versioned returns a constructor whose Run reports version
func versioned(name, version string) func() any {
	return func() any {
		return &Command{
			Name: name,
			Run: func(*CommandContext) error {
				return errors.New(version)
			},
		}
	}
}

func runVersion(inst Instance) string {
	cmd := inst.(*Command)
	if cmd.Run == nil {
		return ""
	}
	return cmd.Run(nil).Error()
}

func newTestHandler(loader FileLoader, langs LocaleTable) (*CommandHandler, *recordLogger) {
	log := &recordLogger{}
	return NewCommandHandler(loader, langs, WithLogger(log)), log
}
