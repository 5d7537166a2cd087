// Package vcs is the sync layer's version-control collaborator. Local
// object manipulation — opening the repo, reading status, staging the
// index, creating commits, walking trees, testing ancestry — goes through
// github.com/go-git/go-git/v5 in-process. Network operations (fetch, push)
// and remote URL configuration shell out to the host `git` binary, so
// transport auth stays with the user's configured credential helpers.
package vcs

import (
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Repo wraps a single git repository rooted at a store directory.
type Repo struct {
	path string
	repo *git.Repository
}

// Open opens the repository at exactly path, with no parent-directory
// search. It returns (nil, false, nil) if path has no repository.
func Open(path string) (*Repo, bool, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: false})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("opening repository at %s: %w", path, err)
	}
	return &Repo{path: path, repo: repo}, true, nil
}

// Init creates a new, non-bare repository at exactly path.
func Init(path string) (*Repo, error) {
	repo, err := git.PlainInit(path, false)
	if err != nil {
		return nil, fmt.Errorf("initializing repository at %s: %w", path, err)
	}
	return &Repo{path: path, repo: repo}, nil
}

// Path returns the working tree root this Repo was opened against.
func (r *Repo) Path() string { return r.path }

// isShardPath reports whether p is a path auto-commit and dirty checks
// care about: a table's shard file, matching "<table>/items_*.jsonl".
func isShardPath(p string) bool {
	p = filepath.ToSlash(p)
	parts := strings.Split(p, "/")
	if len(parts) != 2 {
		return false
	}
	name := parts[1]
	return strings.HasPrefix(name, "items_") && strings.HasSuffix(name, ".jsonl")
}

// IsDirty reports whether the working tree has uncommitted changes to any
// shard file. Untracked noise (lock files, unrelated files) is ignored.
func (r *Repo) IsDirty() (bool, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("getting worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("getting status: %w", err)
	}
	for path, fileStatus := range status {
		if !isShardPath(path) {
			continue
		}
		if fileStatus.Staging != git.Unmodified || fileStatus.Worktree != git.Unmodified {
			return true, nil
		}
	}
	return false, nil
}

// Signature returns the commit signature to use for auto-commits: the
// repository's configured user.name/user.email if present, otherwise a
// deterministic default.
func (r *Repo) Signature() (name, email string) {
	cfg, err := r.repo.Config()
	if err != nil {
		return "blogwarrior", "blogwarrior@localhost"
	}
	name, email = cfg.User.Name, cfg.User.Email
	if name == "" {
		name = "blogwarrior"
	}
	if email == "" {
		email = "blogwarrior@localhost"
	}
	return name, email
}

// HeadCommit returns the commit HEAD currently points to, or nil if HEAD
// doesn't resolve yet (a brand-new repository with no commits).
func (r *Repo) HeadCommit() (*object.Commit, error) {
	head, err := r.repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolving HEAD: %w", err)
	}
	commit, err := r.repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("loading HEAD commit: %w", err)
	}
	return commit, nil
}

// CommitAt loads the commit object at hash.
func (r *Repo) CommitAt(hash plumbing.Hash) (*object.Commit, error) {
	commit, err := r.repo.CommitObject(hash)
	if err != nil {
		return nil, fmt.Errorf("loading commit %s: %w", hash, err)
	}
	return commit, nil
}

// CurrentBranch returns the short name of the branch HEAD points to, or ""
// if HEAD is detached or unborn.
func (r *Repo) CurrentBranch() (string, error) {
	head, err := r.repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("resolving HEAD: %w", err)
	}
	if !head.Name().IsBranch() {
		return "", nil
	}
	return head.Name().Short(), nil
}

// RemoteTrackingRef resolves the remote-tracking branch to sync against,
// preferring refs/remotes/origin/<branch>, then falling back to
// refs/remotes/origin/main, then refs/remotes/origin/master. It returns
// (nil, false, nil) if none exist.
func (r *Repo) RemoteTrackingRef(branch string) (*plumbing.Reference, bool, error) {
	candidates := []string{}
	if branch != "" {
		candidates = append(candidates, branch)
	}
	candidates = append(candidates, "main", "master")

	for _, candidate := range candidates {
		name := plumbing.NewRemoteReferenceName("origin", candidate)
		ref, err := r.repo.Reference(name, true)
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			continue
		}
		if err != nil {
			return nil, false, fmt.Errorf("resolving %s: %w", name, err)
		}
		return ref, true, nil
	}
	return nil, false, nil
}

// HasRemote reports whether a remote named "origin" is configured.
func (r *Repo) HasRemote() (bool, error) {
	_, err := r.repo.Remote("origin")
	if errors.Is(err, git.ErrRemoteNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("looking up remote origin: %w", err)
	}
	return true, nil
}

// RemoteURL returns the configured fetch URL for "origin".
func (r *Repo) RemoteURL() (string, error) {
	remote, err := r.repo.Remote("origin")
	if err != nil {
		return "", fmt.Errorf("looking up remote origin: %w", err)
	}
	cfg := remote.Config()
	if len(cfg.URLs) == 0 {
		return "", fmt.Errorf("remote origin has no configured URL")
	}
	return cfg.URLs[0], nil
}

// AddRemote configures "origin" to point at url by running
// `git remote add origin <url>` in the repository.
func (r *Repo) AddRemote(url string) error {
	cmd := exec.Command("git", "remote", "add", "origin", url) // #nosec G204 -- url comes from the caller configuring its own repository
	cmd.Dir = r.path
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("configuring remote origin: %w\n%s", err, string(out))
	}
	return nil
}

// IsAncestor reports whether ancestor is a (non-strict) ancestor of
// descendant, i.e. descendant's history contains ancestor.
func IsAncestor(ancestor, descendant *object.Commit) (bool, error) {
	if ancestor.Hash == descendant.Hash {
		return true, nil
	}
	return ancestor.IsAncestor(descendant)
}
