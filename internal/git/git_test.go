package git_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schmitthub/stackup/internal/executor"
	"github.com/schmitthub/stackup/internal/git"
	"github.com/schmitthub/stackup/internal/git/gittest"
)

func TestGoGitCloner_Clone(t *testing.T) {
	src := gittest.NewSourceRepo(t, map[string]string{
		"Makefile":                "install:\n\ttrue\n",
		"localstack/constants.py": "DEFAULT_PORT_S3 = 4572\n",
	})
	dest := filepath.Join(t.TempDir(), "install")

	err := (&git.GoGitCloner{}).Clone(context.Background(), git.CloneRequest{URL: src.Dir, Dir: dest})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dest, "localstack", "constants.py"))
	require.NoError(t, err)
	assert.Equal(t, "DEFAULT_PORT_S3 = 4572\n", string(data))

	head, err := git.Head(dest)
	require.NoError(t, err)
	assert.Equal(t, src.Head.String(), head)
}

func TestGoGitCloner_TagRef(t *testing.T) {
	src := gittest.NewSourceRepo(t, map[string]string{"README.md": "x\n"})
	src.Tag(t, "v1.0.0")
	dest := filepath.Join(t.TempDir(), "install")

	err := (&git.GoGitCloner{}).Clone(context.Background(), git.CloneRequest{URL: src.Dir, Dir: dest, Ref: "v1.0.0"})
	require.NoError(t, err)

	head, err := git.Head(dest)
	require.NoError(t, err)
	assert.Equal(t, src.Head.String(), head)
}

func TestGoGitCloner_MissingRepo(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "install")

	err := (&git.GoGitCloner{}).Clone(context.Background(), git.CloneRequest{
		URL: filepath.Join(t.TempDir(), "does-not-exist"),
		Dir: dest,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cloning")
}

func TestHead_NotRepository(t *testing.T) {
	_, err := git.Head(t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, git.ErrNotRepository))
}

func TestCloneCommand(t *testing.T) {
	tests := []struct {
		name string
		req  git.CloneRequest
		want string
	}{
		{
			name: "plain",
			req:  git.CloneRequest{URL: "https://github.com/atlassian/localstack", Dir: "/tmp/localstack_install_dir"},
			want: "git clone 'https://github.com/atlassian/localstack' '/tmp/localstack_install_dir'",
		},
		{
			name: "depth and ref",
			req:  git.CloneRequest{URL: "u", Dir: "d", Depth: 1, Ref: "refs/tags/v0.8"},
			want: "git clone --depth 1 --branch 'v0.8' 'u' 'd'",
		},
		{
			name: "quotes in path",
			req:  git.CloneRequest{URL: "u", Dir: "/tmp/it's here"},
			want: `git clone 'u' '/tmp/it'\''s here'`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, git.CloneCommand(tt.req))
		})
	}
}

type recordingRunner struct {
	dir, command string
	err          error
}

func (r *recordingRunner) RunSync(_ context.Context, dir, command string) (*executor.Result, error) {
	r.dir, r.command = dir, command
	return &executor.Result{}, r.err
}

func TestCommandCloner(t *testing.T) {
	runner := &recordingRunner{}
	cloner := &git.CommandCloner{Runner: runner, WorkDir: "/tmp"}

	require.NoError(t, cloner.Clone(context.Background(), git.CloneRequest{URL: "u", Dir: "d"}))
	assert.Equal(t, "/tmp", runner.dir)
	assert.Equal(t, "git clone 'u' 'd'", runner.command)

	runner.err = &executor.CommandFailedError{Command: runner.command, ExitCode: 128}
	err := cloner.Clone(context.Background(), git.CloneRequest{URL: "u", Dir: "d"})
	require.Error(t, err)

	var cmdErr *executor.CommandFailedError
	assert.True(t, errors.As(err, &cmdErr))
}
