package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// HomeEnv overrides the directory libraries are fetched into.
const HomeEnv = "IMPLICITCAD_HOME"

// HomeDir returns $IMPLICITCAD_HOME, else ~/.implicitcad.
func HomeDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(HomeEnv)); dir != "" {
		return filepath.Abs(dir)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("driver: locate home directory: %w", err)
	}
	return filepath.Join(home, ".implicitcad"), nil
}

// GitFetcher clones git libraries into <Home>/lib/<name>/<version>.
type GitFetcher struct {
	Home string
}

// NewGitFetcher returns a fetcher rooted at HomeDir.
func NewGitFetcher() (*GitFetcher, error) {
	home, err := HomeDir()
	if err != nil {
		return nil, err
	}
	return &GitFetcher{Home: home}, nil
}

// Fetch resolves the pinned revision of spec and checks it out. A checkout
// that already exists for the resolved version is reused.
func (g *GitFetcher) Fetch(name string, spec *LibrarySpec) (*LockedLibrary, error) {
	if g == nil || g.Home == "" {
		return nil, errors.New("git fetcher unavailable")
	}
	url := strings.TrimSpace(spec.Git)
	if url == "" {
		return nil, fmt.Errorf("library %q: git URL required", name)
	}
	revision, descriptor, err := gitRevision(spec)
	if err != nil {
		return nil, fmt.Errorf("library %q: %w", name, err)
	}

	baseDir := filepath.Join(g.Home, "lib", sanitizePathSegment(name))
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, err
	}
	tmpDir, err := os.MkdirTemp(baseDir, "git-fetch-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmpDir)

	repo, err := git.PlainClone(tmpDir, false, &git.CloneOptions{URL: url})
	if err != nil {
		return nil, fmt.Errorf("git clone %s: %w", url, err)
	}
	hash, err := repo.ResolveRevision(revision)
	if err != nil {
		return nil, fmt.Errorf("resolve revision %s: %w", revision, err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return nil, err
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		return nil, fmt.Errorf("git checkout %s: %w", revision, err)
	}

	version := pinnedVersion(descriptor, hash.String())
	targetDir := filepath.Join(baseDir, sanitizePathSegment(version))
	if _, err := os.Stat(targetDir); errors.Is(err, fs.ErrNotExist) {
		if err := os.Rename(tmpDir, targetDir); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	checksum, err := dirChecksum(targetDir)
	if err != nil {
		return nil, err
	}
	return &LockedLibrary{
		Name:     name,
		Version:  version,
		Source:   fmt.Sprintf("git+%s@%s", url, hash.String()),
		Checksum: checksum,
		Dir:      targetDir,
	}, nil
}

func gitRevision(spec *LibrarySpec) (plumbing.Revision, string, error) {
	if rev := strings.TrimSpace(spec.Rev); rev != "" {
		return plumbing.Revision(rev), rev, nil
	}
	if tag := strings.TrimSpace(spec.Tag); tag != "" {
		return plumbing.Revision("refs/tags/" + tag), tag, nil
	}
	if branch := strings.TrimSpace(spec.Branch); branch != "" {
		return plumbing.Revision("refs/remotes/origin/" + branch), branch, nil
	}
	return "", "", fmt.Errorf("git libraries require rev, tag, or branch")
}

func pinnedVersion(descriptor, commit string) string {
	if descriptor == "" || descriptor == commit {
		return commit
	}
	return descriptor + "@" + commit
}

func sanitizePathSegment(segment string) string {
	segment = strings.TrimSpace(segment)
	var b strings.Builder
	for _, r := range segment {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "head"
	}
	return b.String()
}

// dirChecksum hashes file names and contents under path, skipping .git.
func dirChecksum(path string) (string, error) {
	h := sha256.New()
	err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(path, p)
		if err != nil {
			return err
		}
		h.Write([]byte(filepath.ToSlash(rel)))
		h.Write(data)
		return nil
	})
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
