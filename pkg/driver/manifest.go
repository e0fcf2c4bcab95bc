package driver

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ManifestName is the project file looked up by FindManifest.
const ManifestName = "scad.yml"

var (
	ErrManifestNotFound = errors.New("scad.yml not found")
	ErrNoScene          = errors.New("manifest: no scenes defined")
)

// Manifest represents the parsed contents of scad.yml.
type Manifest struct {
	Path       string
	Name       string
	Scenes     map[string]string
	SceneOrder []string
	Default    string
	Settings   Settings
	Libraries  map[string]*LibrarySpec
}

// Settings tune how scenes are evaluated.
type Settings struct {
	LogLevel string
	// PackGrid is the placement resolution of pack; zero means the kernel default.
	PackGrid float64
}

// Level parses LogLevel; an empty level is info.
func (s Settings) Level() (slog.Level, error) {
	var lvl slog.Level
	if strings.TrimSpace(s.LogLevel) == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("manifest: %w", err)
	}
	return lvl, nil
}

// LibrarySpec locates a library of scene documents.
type LibrarySpec struct {
	Path   string
	Git    string
	Rev    string
	Tag    string
	Branch string
}

// ValidationError aggregates manifest validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "manifest: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("manifest validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// LoadManifest parses scad.yml from disk, returning a validated manifest.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return nil, fmt.Errorf("manifest: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("manifest: open %s: %w", absPath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw manifestFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("manifest: %s is empty", absPath)
		}
		return nil, fmt.Errorf("manifest: parse %s: %w", absPath, err)
	}

	manifest := raw.toManifest(absPath)
	if err := manifest.validate(); err != nil {
		return nil, err
	}
	return manifest, nil
}

// FindManifest walks up from dir looking for scad.yml.
func FindManifest(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(abs, ManifestName)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", ErrManifestNotFound
		}
		abs = parent
	}
}

func (m *Manifest) validate() error {
	var errs ValidationError
	if m.Name == "" {
		errs.Issues = append(errs.Issues, "name must be provided")
	}
	for _, name := range m.SceneOrder {
		if strings.TrimSpace(m.Scenes[name]) == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("scenes.%s must name a file", name))
		}
	}
	if m.Default != "" {
		if _, ok := m.Scenes[m.Default]; !ok {
			errs.Issues = append(errs.Issues, fmt.Sprintf("default scene %q is not defined", m.Default))
		}
	}
	if _, err := m.Settings.Level(); err != nil {
		errs.Issues = append(errs.Issues, fmt.Sprintf("settings.log_level: unknown level %q", m.Settings.LogLevel))
	}
	if m.Settings.PackGrid < 0 {
		errs.Issues = append(errs.Issues, "settings.pack_grid must not be negative")
	}
	for _, name := range m.LibraryNames() {
		for _, issue := range m.Libraries[name].validate() {
			errs.Issues = append(errs.Issues, fmt.Sprintf("libraries.%s: %s", name, issue))
		}
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

func (l *LibrarySpec) validate() []string {
	if l == nil {
		return []string{"must specify git or path"}
	}
	var errs []string
	switch {
	case l.Path != "" && l.Git != "":
		errs = append(errs, "path libraries cannot also specify git")
	case l.Path == "" && l.Git == "":
		errs = append(errs, "must specify git or path")
	}
	pins := 0
	for _, pin := range []string{l.Rev, l.Tag, l.Branch} {
		if pin != "" {
			pins++
		}
	}
	if l.Path != "" && pins > 0 {
		errs = append(errs, "rev, tag and branch apply only to git libraries")
	}
	if l.Git != "" && pins != 1 {
		errs = append(errs, "git libraries require exactly one of rev, tag or branch")
	}
	return errs
}

// Dir is the directory holding the manifest.
func (m *Manifest) Dir() string { return filepath.Dir(m.Path) }

// LibraryNames returns the library names sorted.
func (m *Manifest) LibraryNames() []string {
	names := make([]string, 0, len(m.Libraries))
	for name := range m.Libraries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultScene returns the default scene, or the first in manifest order when
// none is configured.
func (m *Manifest) DefaultScene() (string, string, error) {
	if m == nil || len(m.SceneOrder) == 0 {
		return "", "", ErrNoScene
	}
	name := m.Default
	if name == "" {
		name = m.SceneOrder[0]
	}
	return name, m.resolve(m.Scenes[name]), nil
}

// FindScene resolves a scene name to its document path.
func (m *Manifest) FindScene(name string) (string, bool) {
	if m == nil {
		return "", false
	}
	rel, ok := m.Scenes[strings.TrimSpace(name)]
	if !ok {
		return "", false
	}
	return m.resolve(rel), true
}

func (m *Manifest) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Dir(), p)
}

type manifestFile struct {
	Name      string                  `yaml:"name"`
	Scenes    sceneMap                `yaml:"scenes"`
	Default   string                  `yaml:"default"`
	Settings  settingsYAML            `yaml:"settings"`
	Libraries map[string]*libraryYAML `yaml:"libraries"`
}

type settingsYAML struct {
	LogLevel string  `yaml:"log_level"`
	PackGrid float64 `yaml:"pack_grid"`
}

type libraryYAML struct {
	Path   string `yaml:"path"`
	Git    string `yaml:"git"`
	Rev    string `yaml:"rev"`
	Tag    string `yaml:"tag"`
	Branch string `yaml:"branch"`
}

// sceneMap keeps scenes in document order.
type sceneMap struct {
	keys  []string
	paths map[string]string
}

func (sm *sceneMap) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == 0 || (value.Kind == yaml.ScalarNode && value.Tag == "!!null") {
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("manifest: scenes must be a mapping")
	}
	sm.paths = make(map[string]string, len(value.Content)/2)
	for i := 0; i < len(value.Content); i += 2 {
		var key, path string
		if err := value.Content[i].Decode(&key); err != nil {
			return err
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("manifest: scenes must not use empty keys")
		}
		if err := value.Content[i+1].Decode(&path); err != nil {
			return fmt.Errorf("manifest: scene %q: %w", key, err)
		}
		if _, dup := sm.paths[key]; !dup {
			sm.keys = append(sm.keys, key)
		}
		sm.paths[key] = strings.TrimSpace(path)
	}
	return nil
}

func (mf manifestFile) toManifest(path string) *Manifest {
	m := &Manifest{
		Path:       path,
		Name:       strings.TrimSpace(mf.Name),
		Scenes:     make(map[string]string, len(mf.Scenes.keys)),
		SceneOrder: append([]string(nil), mf.Scenes.keys...),
		Default:    strings.TrimSpace(mf.Default),
		Settings: Settings{
			LogLevel: strings.TrimSpace(mf.Settings.LogLevel),
			PackGrid: mf.Settings.PackGrid,
		},
		Libraries: make(map[string]*LibrarySpec, len(mf.Libraries)),
	}
	for k, v := range mf.Scenes.paths {
		m.Scenes[k] = v
	}
	for name, lib := range mf.Libraries {
		if lib == nil {
			m.Libraries[name] = nil
			continue
		}
		m.Libraries[name] = &LibrarySpec{
			Path:   strings.TrimSpace(lib.Path),
			Git:    strings.TrimSpace(lib.Git),
			Rev:    strings.TrimSpace(lib.Rev),
			Tag:    strings.TrimSpace(lib.Tag),
			Branch: strings.TrimSpace(lib.Branch),
		}
	}
	return m
}
