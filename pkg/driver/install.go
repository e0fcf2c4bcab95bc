package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Fetcher materialises a git library.
type Fetcher interface {
	Fetch(name string, spec *LibrarySpec) (*LockedLibrary, error)
}

// Installer brings a lockfile in line with the manifest's libraries.
type Installer struct {
	Manifest *Manifest
	Git      Fetcher
}

// Install resolves every library and records it in lock. Git libraries whose
// locked entry still matches the manifest and whose checkout exists are not
// fetched again. It reports whether lock changed and a line per library.
func (in *Installer) Install(lock *Lockfile) (bool, []string, error) {
	if in.Manifest == nil {
		return false, nil, fmt.Errorf("install: no manifest")
	}
	changed := lock.Prune(func(name string) bool {
		_, ok := in.Manifest.Libraries[name]
		return ok
	})
	var logs []string
	for _, name := range in.Manifest.LibraryNames() {
		spec := in.Manifest.Libraries[name]
		var (
			lib *LockedLibrary
			err error
		)
		switch {
		case spec.Path != "":
			lib, err = in.local(name, spec)
		case in.upToDate(lock, name, spec):
			existing, _ := lock.Find(name)
			logs = append(logs, fmt.Sprintf("%s %s (locked)", name, existing.Version))
			continue
		default:
			if in.Git == nil {
				return changed, logs, fmt.Errorf("install: library %q needs git but no fetcher is configured", name)
			}
			lib, err = in.Git.Fetch(name, spec)
		}
		if err != nil {
			return changed, logs, fmt.Errorf("install: %w", err)
		}
		if lock.Put(lib) {
			changed = true
		}
		logs = append(logs, fmt.Sprintf("%s %s", name, lib.Version))
	}
	return changed, logs, nil
}

func (in *Installer) local(name string, spec *LibrarySpec) (*LockedLibrary, error) {
	dir := spec.Path
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(in.Manifest.Dir(), dir)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("library %q: %w", name, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("library %q: %s is not a directory", name, dir)
	}
	return &LockedLibrary{
		Name:    name,
		Version: "path",
		Source:  "path:" + filepath.ToSlash(spec.Path),
		Dir:     dir,
	}, nil
}

// upToDate reports whether the locked checkout still satisfies spec. Branch
// pins are always refetched.
func (in *Installer) upToDate(lock *Lockfile, name string, spec *LibrarySpec) bool {
	existing, ok := lock.Find(name)
	if !ok || existing.Dir == "" || spec.Branch != "" {
		return false
	}
	if !strings.HasPrefix(existing.Source, "git+"+spec.Git+"@") {
		return false
	}
	descriptor := spec.Rev + spec.Tag
	if existing.Version != descriptor && !strings.HasPrefix(existing.Version, descriptor+"@") {
		return false
	}
	_, err := os.Stat(existing.Dir)
	return err == nil
}

// SearchPaths lists the library directories includes are resolved against,
// in library name order.
func SearchPaths(m *Manifest, lock *Lockfile) ([]string, error) {
	if m == nil {
		return nil, nil
	}
	paths := make([]string, 0, len(m.Libraries))
	for _, name := range m.LibraryNames() {
		spec := m.Libraries[name]
		if spec.Path != "" {
			dir := spec.Path
			if !filepath.IsAbs(dir) {
				dir = filepath.Join(m.Dir(), dir)
			}
			paths = append(paths, dir)
			continue
		}
		lib, ok := lock.Find(name)
		if !ok || lib.Dir == "" {
			return nil, fmt.Errorf("library %q is not installed; run `extopenscad deps install`", name)
		}
		paths = append(paths, lib.Dir)
	}
	return paths, nil
}
