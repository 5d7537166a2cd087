package vcs

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// AutoCommit stages every shard file under the store directory, reconciles
// the index against files deleted from disk, and creates a commit if the
// resulting tree differs from HEAD's. It returns (false, nil) when nothing
// changed; no empty commit is created.
func (r *Repo) AutoCommit(message string) (bool, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("getting worktree: %w", err)
	}

	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("getting status: %w", err)
	}

	changed := false
	for path, fileStatus := range status {
		if !isShardPath(path) {
			continue
		}
		if fileStatus.Worktree == git.Unmodified && fileStatus.Staging == git.Unmodified {
			continue
		}
		changed = true

		absPath := filepath.Join(r.path, path)
		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			if _, err := wt.Remove(path); err != nil {
				return false, fmt.Errorf("staging removal of %s: %w", path, err)
			}
			continue
		}
		if _, err := wt.Add(path); err != nil {
			return false, fmt.Errorf("staging %s: %w", path, err)
		}
	}

	if !changed {
		return false, nil
	}

	name, email := r.Signature()
	sig := &object.Signature{Name: name, Email: email, When: time.Now()}

	hash, err := wt.Commit(message, &git.CommitOptions{Author: sig, Committer: sig})
	if err != nil {
		if err == git.ErrEmptyCommit {
			return false, nil
		}
		return false, fmt.Errorf("creating commit: %w", err)
	}
	_ = hash
	return true, nil
}

// MergeCommit stages the working tree (already reconciled by last-writer-wins
// merge and written to disk) and commits it as a two-parent merge of ours and
// theirs. The working tree, not a recursive three-way diff, decides the
// merge result content; go-git's CommitOptions.Parents attaches both
// history lines to a single tree without hand-building tree objects.
func (r *Repo) MergeCommit(message string, ours, theirs *object.Commit) (plumbing.Hash, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("getting worktree: %w", err)
	}

	status, err := wt.Status()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("getting status: %w", err)
	}
	for path, fileStatus := range status {
		if !isShardPath(path) {
			continue
		}
		if fileStatus.Worktree == git.Unmodified && fileStatus.Staging == git.Unmodified {
			continue
		}
		absPath := filepath.Join(r.path, path)
		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			if _, err := wt.Remove(path); err != nil {
				return plumbing.ZeroHash, fmt.Errorf("staging removal of %s: %w", path, err)
			}
			continue
		}
		if _, err := wt.Add(path); err != nil {
			return plumbing.ZeroHash, fmt.Errorf("staging %s: %w", path, err)
		}
	}

	name, email := r.Signature()
	now := time.Now()
	sig := &object.Signature{Name: name, Email: email, When: now}

	hash, err := wt.Commit(message, &git.CommitOptions{
		Author:            sig,
		Committer:         sig,
		Parents:           []plumbing.Hash{ours.Hash, theirs.Hash},
		AllowEmptyCommits: true,
	})
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("creating merge commit: %w", err)
	}
	return hash, nil
}
