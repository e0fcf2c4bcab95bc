package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/gg"

	"github.com/shkoo/ImplicitCAD/pkg/docgen"
	"github.com/shkoo/ImplicitCAD/pkg/driver"
	"github.com/shkoo/ImplicitCAD/pkg/interpreter"
	"github.com/shkoo/ImplicitCAD/pkg/kernel"
	"github.com/shkoo/ImplicitCAD/pkg/kernel/outline"
	"github.com/shkoo/ImplicitCAD/pkg/modules"
)

const cliToolVersion = "extopenscad 0.0.0-dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 1
	}

	switch args[0] {
	case "--help", "-h", "help":
		printUsage()
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(os.Stdout, cliToolVersion)
		return 0
	case "run":
		return runScene(args[1:])
	case "doc":
		return runDoc(args[1:])
	case "modules":
		return runModules(args[1:])
	case "deps":
		return runDeps(args[1:])
	default:
		return runScene(args)
	}
}

type runOptions struct {
	format  string
	verbose bool
	strict  bool
	target  string
}

func parseRunOptions(args []string) (runOptions, error) {
	opts := runOptions{format: "text"}
	var positional []string
	for _, arg := range args {
		switch {
		case arg == "--verbose" || arg == "-v":
			opts.verbose = true
		case arg == "--strict":
			opts.strict = true
		case strings.HasPrefix(arg, "--format="):
			opts.format = strings.TrimPrefix(arg, "--format=")
		case strings.HasPrefix(arg, "-") && arg != "-":
			return opts, fmt.Errorf("unknown flag %s", arg)
		default:
			positional = append(positional, arg)
		}
	}
	if opts.format != "text" && opts.format != "yaml" {
		return opts, fmt.Errorf("unsupported format %q (want text or yaml)", opts.format)
	}
	if len(positional) > 1 {
		return opts, fmt.Errorf("unexpected arguments: %s", strings.Join(positional[1:], " "))
	}
	if len(positional) == 1 {
		opts.target = positional[0]
	}
	return opts, nil
}

func runScene(args []string) int {
	opts, err := parseRunOptions(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	manifest, entry, err := resolveEntry(opts.target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	lock, err := loadLockfileForManifest(manifest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	searchPaths, err := driver.SearchPaths(manifest, lock)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to prepare library search paths: %v\n", err)
		return 1
	}

	var settings driver.Settings
	if manifest != nil {
		settings = manifest.Settings
	}
	logger, err := newLogger(settings, opts.verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	interpreter.SetLogger(logger)
	gg.SetLogger(logger)
	defer interpreter.SetLogger(nil)
	defer gg.SetLogger(nil)

	loader := &interpreter.Loader{SearchPaths: searchPaths}
	program, err := loader.Load(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load scene: %v\n", err)
		return 1
	}

	var kopts []outline.Option
	if settings.PackGrid > 0 {
		kopts = append(kopts, outline.WithPackGrid(settings.PackGrid))
	}
	rec := &kernel.Recorder{}
	var sink kernel.Sink = rec
	if opts.verbose {
		sink = kernel.Tee(rec, kernel.LogSink{Logger: logger})
	}
	state, err := interpreter.New(outline.New(kopts...), sink).Run(program)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	res := newResult(state, rec.Diagnostics)
	switch opts.format {
	case "yaml":
		if err := writeYAML(os.Stdout, res); err != nil {
			fmt.Fprintf(os.Stderr, "failed to encode result: %v\n", err)
			return 1
		}
	default:
		writeText(os.Stdout, os.Stderr, res)
	}

	if opts.strict && len(rec.Errors()) > 0 {
		return 1
	}
	return 0
}

// resolveEntry picks the scene document to run: a manifest scene by name, a
// file path, or the manifest's default scene when target is empty.
func resolveEntry(target string) (*driver.Manifest, string, error) {
	manifest, err := loadManifestFrom(".")
	if err != nil && !errors.Is(err, driver.ErrManifestNotFound) {
		if target == "" || !looksLikePath(target) {
			return nil, "", fmt.Errorf("failed to load manifest: %w", err)
		}
		fmt.Fprintf(os.Stderr, "warning: unable to load manifest (%v); running file directly\n", err)
		manifest = nil
	}

	if target == "" {
		if manifest == nil {
			return nil, "", fmt.Errorf("extopenscad run requires a scene name or file (%s not found)", driver.ManifestName)
		}
		_, path, err := manifest.DefaultScene()
		if err != nil {
			return nil, "", fmt.Errorf("manifest error: %w", err)
		}
		return manifest, path, nil
	}

	if manifest != nil {
		if path, ok := manifest.FindScene(target); ok {
			return manifest, path, nil
		}
	}

	abs, err := filepath.Abs(target)
	if err != nil {
		return nil, "", fmt.Errorf("resolve %s: %w", target, err)
	}
	fileManifest, err := loadManifestFrom(filepath.Dir(abs))
	switch {
	case err == nil:
		return fileManifest, abs, nil
	case errors.Is(err, driver.ErrManifestNotFound):
		return nil, abs, nil
	default:
		return nil, "", fmt.Errorf("failed to read manifest for %s: %w", target, err)
	}
}

func loadManifestFrom(start string) (*driver.Manifest, error) {
	path, err := driver.FindManifest(start)
	if err != nil {
		return nil, err
	}
	return driver.LoadManifest(path)
}

func looksLikePath(arg string) bool {
	if strings.ContainsAny(arg, `/\`) || strings.HasPrefix(arg, ".") {
		return true
	}
	switch filepath.Ext(arg) {
	case ".yml", ".yaml", ".json":
		return true
	}
	return false
}

func newLogger(settings driver.Settings, verbose bool) (*slog.Logger, error) {
	level, err := settings.Level()
	if err != nil {
		return nil, err
	}
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), nil
}

func loadLockfileForManifest(manifest *driver.Manifest) (*driver.Lockfile, error) {
	if manifest == nil {
		return nil, nil
	}
	lockPath := driver.LockfilePath(manifest)
	lock, err := driver.LoadLockfile(lockPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if manifestHasGitLibraries(manifest) {
				return nil, fmt.Errorf("%s missing for %q; run `extopenscad deps install`", driver.LockfileName, manifest.Name)
			}
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read lockfile %s: %w", lockPath, err)
	}
	if lock.Root != manifest.Name {
		return nil, fmt.Errorf("lockfile root %q does not match manifest name %q", lock.Root, manifest.Name)
	}
	return lock, nil
}

func manifestHasGitLibraries(manifest *driver.Manifest) bool {
	for _, lib := range manifest.Libraries {
		if lib != nil && lib.Git != "" {
			return true
		}
	}
	return false
}

func runDoc(args []string) int {
	html := false
	var names []string
	for _, arg := range args {
		switch {
		case arg == "--html":
			html = true
		case strings.HasPrefix(arg, "-"):
			fmt.Fprintf(os.Stderr, "unknown flag %s\n", arg)
			return 1
		default:
			names = append(names, arg)
		}
	}

	reg := modules.Default()
	defs := reg.Definitions()
	if len(names) > 0 {
		defs = make([]*modules.Definition, 0, len(names))
		for _, name := range names {
			def, ok := reg.Lookup(name)
			if !ok {
				fmt.Fprintf(os.Stderr, "unknown module %q\n", name)
				return 1
			}
			defs = append(defs, def)
		}
	}

	render := docgen.Markdown
	if html {
		render = docgen.HTML
	}
	if err := render(os.Stdout, defs); err != nil {
		fmt.Fprintf(os.Stderr, "failed to render documentation: %v\n", err)
		return 1
	}
	return 0
}

func runModules(args []string) int {
	if len(args) > 0 {
		fmt.Fprintf(os.Stderr, "extopenscad modules does not take arguments (received %s)\n", strings.Join(args, " "))
		return 1
	}
	reg := modules.Default()
	for _, name := range reg.Names() {
		def, _ := reg.Lookup(name)
		marker := ""
		if def.TakesSuite {
			marker = " {...}"
		}
		fmt.Fprintf(os.Stdout, "%s%s\n", name, marker)
	}
	return 0
}

func runDeps(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "extopenscad deps requires a subcommand (install)")
		return 1
	}
	switch args[0] {
	case "install":
		if len(args) > 1 {
			fmt.Fprintf(os.Stderr, "extopenscad deps install does not take arguments (received %s)\n", strings.Join(args[1:], " "))
			return 1
		}
		return runDepsInstall()
	default:
		fmt.Fprintf(os.Stderr, "unknown deps subcommand %q\n", args[0])
		return 1
	}
}

func runDepsInstall() int {
	manifest, err := loadManifestFrom(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to load %s: %v\n", driver.ManifestName, err)
		return 1
	}
	fetcher, err := driver.NewGitFetcher()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve %s: %v\n", driver.HomeEnv, err)
		return 1
	}

	fmt.Fprintf(os.Stdout, "Manifest: %s\n", manifest.Path)
	fmt.Fprintf(os.Stdout, "Project: %s\n", manifest.Name)
	fmt.Fprintf(os.Stdout, "Libraries: %d\n", len(manifest.Libraries))
	fmt.Fprintf(os.Stdout, "Library directory: %s\n", filepath.Join(fetcher.Home, "lib"))

	lockPath := driver.LockfilePath(manifest)
	lock, err := driver.LoadLockfile(lockPath)
	lockCreated := false
	switch {
	case err == nil:
		if lock.Root != manifest.Name {
			fmt.Fprintf(os.Stderr, "lockfile root %q does not match manifest name %q\n", lock.Root, manifest.Name)
			return 1
		}
	case errors.Is(err, os.ErrNotExist):
		lock = driver.NewLockfile(manifest.Name, cliToolVersion)
		lockCreated = true
	default:
		fmt.Fprintf(os.Stderr, "failed to read lockfile: %v\n", err)
		return 1
	}
	lock.Path = lockPath
	lock.Tool = cliToolVersion

	installer := &driver.Installer{Manifest: manifest, Git: fetcher}
	changed, logs, err := installer.Install(lock)
	for _, line := range logs {
		fmt.Fprintf(os.Stdout, "  %s\n", line)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	if changed || lockCreated {
		if err := driver.WriteLockfile(lock, lockPath); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write lockfile: %v\n", err)
			return 1
		}
		action := "Updated"
		if lockCreated {
			action = "Created"
		}
		fmt.Fprintf(os.Stdout, "%s %s: %s\n", action, driver.LockfileName, lock.Path)
	} else {
		fmt.Fprintf(os.Stdout, "%s already up to date: %s\n", driver.LockfileName, lock.Path)
	}
	return 0
}

func printUsage() {
	w := io.Writer(os.Stderr)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  extopenscad run [--format=text|yaml] [--verbose] [--strict] [scene|file]")
	fmt.Fprintln(w, "  extopenscad <file.yml>")
	fmt.Fprintln(w, "  extopenscad doc [--html] [module ...]")
	fmt.Fprintln(w, "  extopenscad modules")
	fmt.Fprintln(w, "  extopenscad deps install")
	fmt.Fprintln(w, "  extopenscad version")
}
