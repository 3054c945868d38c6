// Package loader interprets command scripts with yaegi.
//
// A command script is a plain Go file that imports
// "github.com/PancyStudios/PancyCommands/pkg/discord" and exports a
// constructor:
//
//	package ping
//
//	import "github.com/PancyStudios/PancyCommands/pkg/discord"
//
//	func New() any {
//		return &discord.Command{Name: "ping", Description: "Pong"}
//	}
//
// Every file is evaluated in its own interpreter so reloading a file never
// sees stale declarations.
package loader

import (
	"context"
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/PancyStudios/PancyCommands/pkg/discord"
	"github.com/PancyStudios/PancyCommands/pkg/logger"
	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

const loaderPrefix = "ScriptLoader"

// ExportName is the symbol looked up in every script
const ExportName = "New"

// ScriptLoader implements discord.FileLoader over yaegi
type ScriptLoader struct {
	symbols []interp.Exports
}

// New creates a ScriptLoader exposing the standard library, the command API
// and any extra symbol tables to scripts.
func New(extra ...interp.Exports) *ScriptLoader {
	symbols := []interp.Exports{stdlib.Symbols, discord.Symbols}
	return &ScriptLoader{symbols: append(symbols, extra...)}
}

// GetFiles returns every regular file below dir in lexical order
func (l *ScriptLoader) GetFiles(ctx context.Context, dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// LoadFiles evaluates each script and resolves its export. A script that
// fails to evaluate yields a constructor returning the evaluation error.
func (l *ScriptLoader) LoadFiles(ctx context.Context, paths []string) ([]discord.LoadedFile, error) {
	loaded := make([]discord.LoadedFile, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		export, err := l.load(ctx, path)
		if err != nil {
			failure := fmt.Errorf("%s: %w", path, err)
			export = discord.Factory(func() (any, error) { return nil, failure })
		}
		loaded = append(loaded, discord.LoadedFile{Path: path, Export: export})
	}
	return loaded, nil
}

func (l *ScriptLoader) load(ctx context.Context, path string) (any, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	pkg, err := packageName(path, src)
	if err != nil {
		return nil, err
	}

	i := interp.New(interp.Options{})
	for _, symbols := range l.symbols {
		if err := i.Use(symbols); err != nil {
			return nil, fmt.Errorf("loading symbols: %w", err)
		}
	}

	if _, err := i.EvalWithContext(ctx, string(src)); err != nil {
		return nil, err
	}

	v, err := i.Eval(pkg + "." + ExportName)
	if err != nil || !v.IsValid() {
		logger.Debug(fmt.Sprintf("%s no exporta %s", path, ExportName), loaderPrefix)
		return nil, nil
	}

	return asExport(v.Interface()), nil
}

// asExport converts the constructor shapes scripts may declare into a
// discord.Factory. Anything else is returned unchanged.
func asExport(value any) any {
	switch fn := value.(type) {
	case func() any:
		return discord.Factory(func() (any, error) { return fn(), nil })
	case func() (any, error):
		return discord.Factory(fn)
	default:
		return value
	}
}

// packageName reads only the package clause of a script
func packageName(path string, src []byte) (string, error) {
	file, err := parser.ParseFile(token.NewFileSet(), path, src, parser.PackageClauseOnly)
	if err != nil {
		return "", err
	}
	return file.Name.Name, nil
}
