// Package gittest provides test utilities for the git package.
package gittest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-billy/v6/osfs"
	gogit "github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/cache"
	"github.com/go-git/go-git/v6/plumbing/object"
	"github.com/go-git/go-git/v6/storage/filesystem"
	"github.com/stretchr/testify/require"
)

// SourceRepo is an on-disk repository usable as a clone URL.
type SourceRepo struct {
	Dir  string
	Head plumbing.Hash

	repo *gogit.Repository
}

// NewSourceRepo creates a repository in a temp dir seeded with files and a
// single commit. Keys of files are slash-separated relative paths.
func NewSourceRepo(t *testing.T, files map[string]string) *SourceRepo {
	t.Helper()

	dir := t.TempDir()
	storer := filesystem.NewStorage(osfs.New(filepath.Join(dir, ".git")), cache.NewObjectLRUDefault())

	repo, err := gogit.Init(storer, gogit.WithWorkTree(osfs.New(dir)))
	require.NoError(t, err, "failed to init source repo")

	wt, err := repo.Worktree()
	require.NoError(t, err, "failed to get worktree")

	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		_, err = wt.Add(name)
		require.NoError(t, err, "failed to add %s", name)
	}

	hash, err := wt.Commit("Initial commit", &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  "Test User",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	require.NoError(t, err, "failed to create initial commit")

	return &SourceRepo{Dir: dir, Head: hash, repo: repo}
}

// Tag creates a lightweight tag at HEAD.
func (r *SourceRepo) Tag(t *testing.T, name string) {
	t.Helper()
	_, err := r.repo.CreateTag(name, r.Head, nil)
	require.NoError(t, err, "failed to create tag %s", name)
}

// Repository returns the underlying go-git Repository for test assertions.
func (r *SourceRepo) Repository() *gogit.Repository {
	return r.repo
}
