package driver

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(strings.TrimSpace(contents)+"\n"), 0o644); err != nil {
		t.Fatalf("write file %s: %v", path, err)
	}
}

// initGitRepo commits every file under dir and tags the commit.
func initGitRepo(t *testing.T, dir, tag string) string {
	t.Helper()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	if err := worktree.AddGlob("*"); err != nil {
		t.Fatalf("stage files: %v", err)
	}
	hash, err := worktree.Commit("init", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "ImplicitCAD",
			Email: "scad@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if tag != "" {
		if _, err := repo.CreateTag(tag, hash, nil); err != nil {
			t.Fatalf("CreateTag: %v", err)
		}
	}
	return hash.String()
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestName)
	writeFile(t, path, `
name: gears
scenes:
  spur: scenes/spur.yml
  helical: scenes/helical.yml
default: helical
settings:
  log_level: debug
  pack_grid: 0.5
libraries:
  bolts:
    path: ../bolts
  threads:
    git: https://example.com/threads.git
    tag: v1.2.0
`)
	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if m.Name != "gears" || m.Path != path {
		t.Fatalf("unexpected manifest %+v", m)
	}
	if strings.Join(m.SceneOrder, ",") != "spur,helical" {
		t.Fatalf("scene order lost: %v", m.SceneOrder)
	}
	name, scene, err := m.DefaultScene()
	if err != nil || name != "helical" || scene != filepath.Join(dir, "scenes", "helical.yml") {
		t.Fatalf("DefaultScene = %q %q %v", name, scene, err)
	}
	if p, ok := m.FindScene("spur"); !ok || p != filepath.Join(dir, "scenes", "spur.yml") {
		t.Fatalf("FindScene = %q %v", p, ok)
	}
	if _, ok := m.FindScene("worm"); ok {
		t.Fatalf("unexpected scene")
	}
	if lvl, err := m.Settings.Level(); err != nil || lvl != slog.LevelDebug {
		t.Fatalf("Level = %v %v", lvl, err)
	}
	if m.Settings.PackGrid != 0.5 {
		t.Fatalf("pack grid %g", m.Settings.PackGrid)
	}
	if got := m.LibraryNames(); strings.Join(got, ",") != "bolts,threads" {
		t.Fatalf("libraries %v", got)
	}
	if lib := m.Libraries["threads"]; lib.Git != "https://example.com/threads.git" || lib.Tag != "v1.2.0" {
		t.Fatalf("unexpected library %+v", lib)
	}
}

func TestDefaultSceneFallsBackToFirst(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestName)
	writeFile(t, path, "name: demo\nscenes:\n  b: b.yml\n  a: a.yml\n")
	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if name, _, err := m.DefaultScene(); err != nil || name != "b" {
		t.Fatalf("DefaultScene = %q %v", name, err)
	}

	writeFile(t, path, "name: demo\n")
	m, err = LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if _, _, err := m.DefaultScene(); !errors.Is(err, ErrNoScene) {
		t.Fatalf("expected ErrNoScene, got %v", err)
	}
}

func TestManifestValidationAggregates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestName)
	writeFile(t, path, `
scenes:
  main: ""
default: other
settings:
  log_level: loud
  pack_grid: -1
libraries:
  both:
    path: lib
    git: https://example.com/x.git
    tag: v1
  unpinned:
    git: https://example.com/y.git
  empty: {}
`)
	_, err := LoadManifest(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	want := []string{
		"name must be provided",
		"scenes.main must name a file",
		`default scene "other" is not defined`,
		`settings.log_level: unknown level "loud"`,
		"settings.pack_grid must not be negative",
		"libraries.both: path libraries cannot also specify git",
		"libraries.both: rev, tag and branch apply only to git libraries",
		"libraries.empty: must specify git or path",
		"libraries.unpinned: git libraries require exactly one of rev, tag or branch",
	}
	if len(verr.Issues) != len(want) {
		t.Fatalf("issues = %q", verr.Issues)
	}
	for i, issue := range want {
		if verr.Issues[i] != issue {
			t.Fatalf("issue %d = %q, want %q", i, verr.Issues[i], issue)
		}
	}
	if !strings.HasPrefix(err.Error(), "manifest validation failed:\n- name must be provided") {
		t.Fatalf("unexpected error text %q", err.Error())
	}
}

func TestManifestRejectsUnknownFieldsAndEmptyFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestName)
	writeFile(t, path, "name: demo\ncolour: red\n")
	if _, err := LoadManifest(path); err == nil || !strings.Contains(err.Error(), "field colour not found") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	if _, err := LoadManifest(path); err == nil || !strings.Contains(err.Error(), "is empty") {
		t.Fatalf("expected empty manifest error, got %v", err)
	}
}

func TestFindManifestWalksUp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestName)
	writeFile(t, path, "name: demo\n")
	nested := filepath.Join(dir, "scenes", "parts")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	got, err := FindManifest(nested)
	if err != nil || got != path {
		t.Fatalf("FindManifest = %q %v", got, err)
	}
}

func TestLockfileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, LockfileName)
	lock := NewLockfile("gears", "extopenscad test")
	lock.Put(&LockedLibrary{Name: "threads", Version: "v1@abc", Source: "git+x@abc", Checksum: "ff", Dir: "/lib/threads"})
	lock.Put(&LockedLibrary{Name: "bolts", Version: "path", Source: "path:../bolts", Dir: "/src/bolts"})
	if err := WriteLockfile(lock, path); err != nil {
		t.Fatalf("WriteLockfile: %v", err)
	}
	loaded, err := LoadLockfile(path)
	if err != nil {
		t.Fatalf("LoadLockfile: %v", err)
	}
	if loaded.Root != "gears" || loaded.Tool != "extopenscad test" || loaded.Generated == "" {
		t.Fatalf("metadata lost: %+v", loaded)
	}
	if len(loaded.Libraries) != 2 || loaded.Libraries[0].Name != "bolts" {
		t.Fatalf("libraries not sorted: %+v", loaded.Libraries)
	}
	threads, ok := loaded.Find("threads")
	if !ok || *threads != (LockedLibrary{Name: "threads", Version: "v1@abc", Source: "git+x@abc", Checksum: "ff", Dir: "/lib/threads"}) {
		t.Fatalf("unexpected entry %+v", threads)
	}
	if loaded.Put(&LockedLibrary{Name: "bolts", Version: "path", Source: "path:../bolts", Dir: "/src/bolts"}) {
		t.Fatalf("identical Put must not report a change")
	}
}

func TestGitFetcherChecksOutTag(t *testing.T) {
	t.Setenv(HomeEnv, t.TempDir())
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "nut.yml"), "- {call: cylinder, named: {r: 3, h: 2}}")
	commit := initGitRepo(t, src, "v1.0.0")

	fetcher, err := NewGitFetcher()
	if err != nil {
		t.Fatalf("NewGitFetcher: %v", err)
	}
	lib, err := fetcher.Fetch("nuts", &LibrarySpec{Git: src, Tag: "v1.0.0"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if lib.Version != "v1.0.0@"+commit {
		t.Fatalf("version = %q", lib.Version)
	}
	if lib.Source != "git+"+src+"@"+commit {
		t.Fatalf("source = %q", lib.Source)
	}
	wantDir := filepath.Join(os.Getenv(HomeEnv), "lib", "nuts", sanitizePathSegment(lib.Version))
	if lib.Dir != wantDir {
		t.Fatalf("dir = %q, want %q", lib.Dir, wantDir)
	}
	if _, err := os.Stat(filepath.Join(lib.Dir, "nut.yml")); err != nil {
		t.Fatalf("checkout missing file: %v", err)
	}
	again, err := fetcher.Fetch("nuts", &LibrarySpec{Git: src, Rev: commit})
	if err != nil {
		t.Fatalf("Fetch by rev: %v", err)
	}
	if again.Version != commit || again.Checksum != lib.Checksum {
		t.Fatalf("rev fetch = %+v", again)
	}
}

type countingFetcher struct {
	inner *GitFetcher
	calls int
}

func (c *countingFetcher) Fetch(name string, spec *LibrarySpec) (*LockedLibrary, error) {
	c.calls++
	return c.inner.Fetch(name, spec)
}

func TestInstallAndSearchPaths(t *testing.T) {
	t.Setenv(HomeEnv, t.TempDir())
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "thread.yml"), "- {call: sphere, args: [1]}")
	initGitRepo(t, src, "v2")

	project := t.TempDir()
	if err := os.MkdirAll(filepath.Join(project, "vendor", "bolts"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	manifestPath := filepath.Join(project, ManifestName)
	writeFile(t, manifestPath, `
name: gears
libraries:
  bolts:
    path: vendor/bolts
  threads:
    git: `+src+`
    tag: v2
`)
	m, err := LoadManifest(manifestPath)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	lock := NewLockfile(m.Name, "test")
	lock.Put(&LockedLibrary{Name: "stale", Version: "path", Dir: "/gone"})

	if _, err := SearchPaths(m, lock); err == nil || !strings.Contains(err.Error(), "not installed") {
		t.Fatalf("expected not installed error, got %v", err)
	}

	home, _ := HomeDir()
	fetcher := &countingFetcher{inner: &GitFetcher{Home: home}}
	installer := &Installer{Manifest: m, Git: fetcher}
	changed, logs, err := installer.Install(lock)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if !changed || len(logs) != 2 || fetcher.calls != 1 {
		t.Fatalf("changed=%v logs=%v calls=%d", changed, logs, fetcher.calls)
	}
	if _, ok := lock.Find("stale"); ok {
		t.Fatalf("stale entry kept")
	}

	changed, logs, err = installer.Install(lock)
	if err != nil {
		t.Fatalf("second Install: %v", err)
	}
	if changed || fetcher.calls != 1 || !strings.HasSuffix(logs[1], "(locked)") {
		t.Fatalf("locked library refetched: changed=%v logs=%v calls=%d", changed, logs, fetcher.calls)
	}

	paths, err := SearchPaths(m, lock)
	if err != nil {
		t.Fatalf("SearchPaths: %v", err)
	}
	threads, _ := lock.Find("threads")
	if len(paths) != 2 || paths[0] != filepath.Join(project, "vendor", "bolts") || paths[1] != threads.Dir {
		t.Fatalf("paths = %v", paths)
	}
}
