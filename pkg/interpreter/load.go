package interpreter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var ErrIncludeNotFound = errors.New("include not found")

// Loader reads scene documents and expands their includes. An include is
// resolved against the directory of the including file first, then against
// each search path in order.
type Loader struct {
	SearchPaths []string
}

// Load reads the document at path and every file it includes, transitively.
// Included statements precede the including document's own. A file may be
// included more than once but never from within itself.
func (l *Loader) Load(path string) (*Program, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("scene: resolve %s: %w", path, err)
	}
	return l.load(abs, nil)
}

func (l *Loader) load(path string, stack []string) (*Program, error) {
	for i, p := range stack {
		if p == path {
			cycle := append(append([]string(nil), stack[i:]...), path)
			return nil, fmt.Errorf("scene: include cycle: %s", strings.Join(cycle, " -> "))
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scene: read %s: %w", path, err)
	}
	doc, err := Decode(data, path)
	if err != nil {
		return nil, err
	}
	stack = append(stack, path)

	prog := &Program{Path: path, Includes: doc.Includes}
	for _, inc := range doc.Includes {
		target, err := l.resolve(filepath.Dir(path), inc)
		if err != nil {
			return nil, fmt.Errorf("scene: %s: %w", path, err)
		}
		Logger().Info("include", "from", path, "path", target)
		sub, err := l.load(target, stack)
		if err != nil {
			return nil, err
		}
		prog.Statements = append(prog.Statements, sub.Statements...)
	}
	prog.Statements = append(prog.Statements, doc.Statements...)
	return prog, nil
}

func (l *Loader) resolve(dir, inc string) (string, error) {
	if filepath.IsAbs(inc) {
		return filepath.Clean(inc), nil
	}
	candidates := append([]string{dir}, l.SearchPaths...)
	for _, base := range candidates {
		p, err := filepath.Abs(filepath.Join(base, inc))
		if err != nil {
			continue
		}
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrIncludeNotFound, inc)
}
