package discord

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	anticrash "github.com/PancyStudios/PancyCommands/pkg/errors"
	"github.com/PancyStudios/PancyCommands/pkg/logger"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const handlerPrefix = "CommandHandler"

// LoadedFile is a definition file and the value it exports, nil when it
// exports nothing.
type LoadedFile struct {
	Path   string
	Export any
}

// FileLoader discovers definition files and resolves their exports
type FileLoader interface {
	GetFiles(ctx context.Context, dir string) ([]string, error)
	LoadFiles(ctx context.Context, paths []string) ([]LoadedFile, error)
}

// Logger is the logging surface the handler needs
type Logger interface {
	Warn(message string, prefix string)
	WarnWith(message string, prefix string, fields logrus.Fields)
	Info(message string, prefix string)
	Debug(message string, prefix string)
}

// LoadCallback is invoked once per loaded top-level instance
type LoadCallback func(ctx context.Context, inst Instance) error

// DefaultFilter accepts Go command scripts and rejects test files
func DefaultFilter(path string) bool {
	return strings.HasSuffix(path, ".go") && !strings.HasSuffix(path, "_test.go")
}

// CommandHandler loads command definition files into a command tree
type CommandHandler struct {
	loader   FileLoader
	langs    LocaleTable
	log      Logger
	filter   func(path string) bool
	callback LoadCallback
	hashes   HashStore

	mu     sync.RWMutex
	values []Instance
}

// HandlerOption configures a CommandHandler
type HandlerOption func(*CommandHandler)

// WithLogger replaces the global logger
func WithLogger(l Logger) HandlerOption {
	return func(h *CommandHandler) { h.log = l }
}

// WithFilter replaces DefaultFilter
func WithFilter(filter func(path string) bool) HandlerOption {
	return func(h *CommandHandler) { h.filter = filter }
}

// WithHashStore sets where registration hashes are persisted
func WithHashStore(store HashStore) HandlerOption {
	return func(h *CommandHandler) { h.hashes = store }
}

// NewCommandHandler creates a new CommandHandler. langs may be nil, in which
// case no localizations are resolved.
func NewCommandHandler(loader FileLoader, langs LocaleTable, opts ...HandlerOption) *CommandHandler {
	h := &CommandHandler{
		loader: loader,
		langs:  langs,
		filter: DefaultFilter,
		hashes: NewMemoryHashStore(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.log == nil {
		h.log = logger.Get()
	}
	return h
}

// SetCallback registers the post-load callback
func (h *CommandHandler) SetCallback(cb LoadCallback) {
	h.callback = cb
}

// SetLocaleTable swaps the table used by later loads
func (h *CommandHandler) SetLocaleTable(langs LocaleTable) {
	h.langs = langs
}

// Values returns the instances of the last successful Load
func (h *CommandHandler) Values() []Instance {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Instance, len(h.values))
	copy(out, h.values)
	return out
}

// Find returns the first loaded instance with the given name
func (h *CommandHandler) Find(name string) Instance {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, inst := range h.values {
		if inst.GetName() == name {
			return inst
		}
	}
	return nil
}

// Load discovers every definition file under dir and builds the command tree.
// Per-file failures are logged and skipped; only listing, loading, context or
// callback errors are returned, in which case Values is left unchanged.
func (h *CommandHandler) Load(ctx context.Context, dir string) ([]Instance, error) {
	pass := uuid.NewString()
	h.log.Info(fmt.Sprintf("Iniciando carga de comandos desde %s", dir), handlerPrefix)

	paths, err := h.loader.GetFiles(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	loaded, err := h.loader.LoadFiles(ctx, h.filterPaths(paths))
	if err != nil {
		return nil, fmt.Errorf("loading command files: %w", err)
	}

	files := make([]LoadedFile, 0, len(loaded))
	exports := make(map[string]any, len(loaded))
	for _, file := range loaded {
		if file.Export == nil {
			continue
		}
		files = append(files, file)
		exports[filepath.Clean(file.Path)] = file.Export
	}

	values := make([]Instance, 0, len(files))
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		value, err := construct(file.Export)
		if err != nil {
			h.warnConstruct(file, err, pass)
			continue
		}

		switch inst := value.(type) {
		case *ContextMenuCommand:
			values = append(values, inst)
			inst.setFilePath(file.Path)
			inst.setReloader(h.reloadFromSource)
			if err := h.notify(ctx, inst); err != nil {
				return nil, err
			}

		case *Command:
			inst.setFilePath(file.Path)
			inst.setReloader(h.reloadFromSource)
			if inst.Options == nil {
				inst.Options = []Option{}
			}

			if inst.AutoLoad {
				discarded, err := h.autoLoad(ctx, inst, exports)
				if err != nil {
					return nil, err
				}
				if len(discarded) > 0 {
					h.log.Debug(fmt.Sprintf("%s: %d archivos hermanos ignorados", inst.Name, len(discarded)), handlerPrefix)
				}
			}

			linkSubCommands(inst)

			values = append(values, inst)
			ResolveLocales(inst, h.langs)
			for _, sub := range inst.SubCommands() {
				ResolveLocales(sub, h.langs)
			}

			if err := h.notify(ctx, inst); err != nil {
				return nil, err
			}
		}
	}

	h.mu.Lock()
	h.values = values
	h.mu.Unlock()

	h.log.Info(fmt.Sprintf("Carga finalizada: %d comandos", len(values)), handlerPrefix)
	return h.Values(), nil
}

func (h *CommandHandler) filterPaths(paths []string) []string {
	if h.filter == nil {
		return paths
	}
	kept := make([]string, 0, len(paths))
	for _, p := range paths {
		if h.filter(p) {
			kept = append(kept, p)
		}
	}
	return kept
}

func (h *CommandHandler) notify(ctx context.Context, inst Instance) error {
	if h.callback == nil {
		return nil
	}
	if err := h.callback(ctx, inst); err != nil {
		return fmt.Errorf("load callback for %s: %w", inst.GetName(), err)
	}
	return nil
}

// warnConstruct logs a construction failure. A non-constructible export gets
// a hint about the expected export shape.
func (h *CommandHandler) warnConstruct(file LoadedFile, err error, pass string) {
	if errors.Is(err, ErrNotConstructible) {
		h.log.Warn(fmt.Sprintf("%s doesn't export the command by `func New() any`", displayPath(file.Path)), handlerPrefix)
		return
	}
	h.log.WarnWith(err.Error(), handlerPrefix, logrus.Fields{
		"path": file.Path,
		"pass": pass,
	})
}

// displayPath trims the working directory from a path
func displayPath(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	if rel, err := filepath.Rel(wd, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}

// construct calls an export as a constructor. Panics become errors.
func construct(export any) (value any, err error) {
	err = anticrash.Catch(func() error {
		var cerr error
		switch fn := export.(type) {
		case Factory:
			value, cerr = fn()
		case func() (any, error):
			value, cerr = fn()
		case func() any:
			value = fn()
		default:
			cerr = ErrNotConstructible
		}
		return cerr
	})
	return value, err
}

// siblingResult is the outcome of constructing one auto-load candidate
type siblingResult struct {
	Path  string
	Value any
	Err   error
}

// tryConstruct constructs a sibling export and reports the outcome instead of
// failing; callers decide what to discard.
func tryConstruct(path string, exports map[string]any) siblingResult {
	export, ok := exports[filepath.Clean(path)]
	if !ok {
		return siblingResult{Path: path, Err: ErrNotConstructible}
	}
	value, err := construct(export)
	return siblingResult{Path: path, Value: value, Err: err}
}

// autoLoad appends every sub-command defined next to cmd's file to its
// options. It returns the siblings that were discarded.
func (h *CommandHandler) autoLoad(ctx context.Context, cmd *Command, exports map[string]any) ([]siblingResult, error) {
	own := filepath.Clean(cmd.filePath)
	siblings, err := h.loader.GetFiles(ctx, filepath.Dir(own))
	if err != nil {
		return nil, fmt.Errorf("listing sub-commands of %s: %w", cmd.Name, err)
	}

	var discarded []siblingResult
	for _, path := range siblings {
		if filepath.Clean(path) == own {
			continue
		}

		res := tryConstruct(path, exports)
		sub, ok := res.Value.(*SubCommand)
		if res.Err != nil || !ok {
			discarded = append(discarded, res)
			continue
		}

		sub.setFilePath(path)
		sub.setReloader(h.reloadFromSource)
		cmd.Options = append(cmd.Options, sub)
	}
	return discarded, nil
}

// linkSubCommands propagates the parent's middlewares and hooks to its
// sub-commands
func linkSubCommands(cmd *Command) {
	for _, sub := range cmd.SubCommands() {
		sub.Middlewares = inheritMiddlewares(cmd.Middlewares, sub.Middlewares)
		sub.Hooks.inherit(cmd.Hooks, cmd)
	}
}

// Reload reloads the first loaded instance named name. Unknown names are not
// an error.
func (h *CommandHandler) Reload(ctx context.Context, name string) error {
	inst := h.Find(name)
	if inst == nil {
		return nil
	}
	return inst.Reload(ctx)
}

// ReloadInstance reloads inst
func (h *CommandHandler) ReloadInstance(ctx context.Context, inst Instance) error {
	return inst.Reload(ctx)
}

// ReloadAll reloads every loaded instance in order. With stopIfFail the first
// failure is returned immediately; otherwise failures are logged and skipped.
func (h *CommandHandler) ReloadAll(ctx context.Context, stopIfFail bool) error {
	_, err := h.ReloadAllReport(ctx, stopIfFail)
	return err
}

// ReloadFailure is a reload that failed and was skipped
type ReloadFailure struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// ReloadReport lists the outcome of a ReloadAllReport pass
type ReloadReport struct {
	Reloaded []string        `json:"reloaded"`
	Failed   []ReloadFailure `json:"failed"`
}

// ReloadAllReport behaves like ReloadAll and also reports which instances
// were reloaded and which failed.
func (h *CommandHandler) ReloadAllReport(ctx context.Context, stopIfFail bool) (ReloadReport, error) {
	report := ReloadReport{Reloaded: []string{}, Failed: []ReloadFailure{}}
	for _, inst := range h.Values() {
		name := inst.GetName()
		if err := h.Reload(ctx, name); err != nil {
			if stopIfFail {
				return report, err
			}
			h.log.WarnWith(fmt.Sprintf("Error recargando %s", name), handlerPrefix, logrus.Fields{
				"error": err.Error(),
			})
			report.Failed = append(report.Failed, ReloadFailure{Name: name, Error: err.Error()})
			continue
		}
		report.Reloaded = append(report.Reloaded, name)
	}
	return report, nil
}

// reloadFromSource re-reads self's definition file and swaps the fresh
// behaviour into self, keeping its identity and sub-command linkage.
func (h *CommandHandler) reloadFromSource(ctx context.Context, self Instance) error {
	path := self.FilePath()
	if path == "" {
		return ErrNoSource
	}

	files, err := h.loader.LoadFiles(ctx, []string{path})
	if err != nil {
		return fmt.Errorf("reloading %s: %w", path, err)
	}
	if len(files) == 0 || files[0].Export == nil {
		return fmt.Errorf("reloading %s: %w", path, ErrNotConstructible)
	}

	value, err := construct(files[0].Export)
	if err != nil {
		return fmt.Errorf("reloading %s: %w", path, err)
	}
	if kind := KindOf(value); kind != self.Kind() {
		return fmt.Errorf("%w: %s is now %s", ErrKindChanged, self.GetName(), kind)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	switch cur := self.(type) {
	case *Command:
		fresh := value.(*Command)
		cur.Run = fresh.Run
		cur.AutoComplete = fresh.AutoComplete
		cur.Hooks = fresh.Hooks
		cur.Middlewares = fresh.Middlewares
		cur.DefaultMemberPermissions = fresh.DefaultMemberPermissions
		cur.BotPermissions = fresh.BotPermissions
	case *SubCommand:
		fresh := value.(*SubCommand)
		cur.Run = fresh.Run
		cur.AutoComplete = fresh.AutoComplete
		cur.BotPermissions = fresh.BotPermissions
	case *ContextMenuCommand:
		fresh := value.(*ContextMenuCommand)
		cur.Run = fresh.Run
		cur.Hooks = fresh.Hooks
		cur.Middlewares = fresh.Middlewares
		cur.DefaultMemberPermissions = fresh.DefaultMemberPermissions
		cur.BotPermissions = fresh.BotPermissions
	}

	h.log.Debug(fmt.Sprintf("Comando recargado: %s", self.GetName()), handlerPrefix)
	return nil
}
