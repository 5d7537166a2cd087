package vcs

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/object"
)

// TableBlobs walks commit's tree and returns the raw contents of every shard
// file belonging to tableName, keyed by shard filename. The sync layer feeds
// this straight into the table package's line parser to build a remote-rows
// map for MergeRemote, without ever checking the remote commit out.
func TableBlobs(commit *object.Commit, tableName string) (map[string][]byte, error) {
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("loading tree for %s: %w", commit.Hash, err)
	}

	out := make(map[string][]byte)
	files := tree.Files()
	defer files.Close()

	for {
		f, err := files.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("walking tree %s: %w", commit.Hash, err)
		}

		dir, name := path.Split(f.Name)
		if strings.TrimSuffix(dir, "/") != tableName {
			continue
		}
		if !strings.HasPrefix(name, "items_") || !strings.HasSuffix(name, ".jsonl") {
			continue
		}

		contents, err := f.Contents()
		if err != nil {
			return nil, fmt.Errorf("reading blob %s: %w", f.Name, err)
		}
		out[name] = []byte(contents)
	}
	return out, nil
}
