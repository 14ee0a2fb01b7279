// Package git fetches the emulator sources into the install directory.
//
// Two Cloner implementations exist:
//   - GoGitCloner clones in-process with go-git and needs no git binary
//   - CommandCloner shells out to `git clone` through a CommandRunner
//
// The package imports no config; callers pass a CloneRequest built from
// their own settings.
package git

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	gogit "github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"

	"github.com/schmitthub/stackup/internal/executor"
)

// ErrNotRepository is returned when the path is not a git checkout.
var ErrNotRepository = errors.New("not a git repository")

// CloneRequest describes one clone.
type CloneRequest struct {
	// URL is the repository to clone. Local paths are accepted.
	URL string
	// Dir is the destination; it must not exist or must be empty.
	Dir string
	// Ref is an optional branch or tag. Empty clones the default branch.
	Ref string
	// Depth limits history; 0 clones everything.
	Depth int
}

// Cloner clones a repository into a directory.
type Cloner interface {
	Clone(ctx context.Context, req CloneRequest) error
}

// GoGitCloner clones with go-git.
type GoGitCloner struct {
	// Progress receives the remote's sideband output, if set.
	Progress io.Writer
}

// Clone implements Cloner. A short Ref is tried as a branch first, then as
// a tag; a Ref starting with "refs/" is used as-is.
func (c *GoGitCloner) Clone(ctx context.Context, req CloneRequest) error {
	var lastErr error
	for _, ref := range candidateRefs(req.Ref) {
		opts := &gogit.CloneOptions{
			URL:   req.URL,
			Depth: req.Depth,
		}
		if ref != "" {
			opts.ReferenceName = ref
			opts.SingleBranch = true
		}
		if c.Progress != nil {
			opts.Progress = c.Progress
		}

		_, err := gogit.PlainCloneContext(ctx, req.Dir, opts)
		if err == nil {
			return nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		// leave an empty destination for the next candidate
		if rmErr := os.RemoveAll(req.Dir); rmErr != nil {
			return fmt.Errorf("cleaning up after failed clone of %s: %w", req.URL, rmErr)
		}
	}
	return fmt.Errorf("cloning %s: %w", req.URL, lastErr)
}

func candidateRefs(ref string) []plumbing.ReferenceName {
	switch {
	case ref == "":
		return []plumbing.ReferenceName{""}
	case strings.HasPrefix(ref, "refs/"):
		return []plumbing.ReferenceName{plumbing.ReferenceName(ref)}
	default:
		return []plumbing.ReferenceName{
			plumbing.NewBranchReferenceName(ref),
			plumbing.NewTagReferenceName(ref),
		}
	}
}

// CommandRunner runs a shell command synchronously.
// *executor.Executor satisfies this interface.
type CommandRunner interface {
	RunSync(ctx context.Context, dir, command string) (*executor.Result, error)
}

// CommandCloner clones by running the git binary.
type CommandCloner struct {
	Runner CommandRunner
	// WorkDir is where `git clone` runs. Empty uses the current directory.
	WorkDir string
}

// Clone implements Cloner.
func (c *CommandCloner) Clone(ctx context.Context, req CloneRequest) error {
	if _, err := c.Runner.RunSync(ctx, c.WorkDir, CloneCommand(req)); err != nil {
		return fmt.Errorf("cloning %s: %w", req.URL, err)
	}
	return nil
}

// CloneCommand renders the `git clone` invocation for req.
func CloneCommand(req CloneRequest) string {
	args := []string{"git", "clone"}
	if req.Depth > 0 {
		args = append(args, "--depth", strconv.Itoa(req.Depth))
	}
	if req.Ref != "" {
		args = append(args, "--branch", shellQuote(strings.TrimPrefix(strings.TrimPrefix(req.Ref, "refs/heads/"), "refs/tags/")))
	}
	args = append(args, shellQuote(req.URL), shellQuote(req.Dir))
	return strings.Join(args, " ")
}

// shellQuote wraps a string in single quotes with proper escaping.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "'\\''") + "'"
}

// Head returns the commit hash checked out in dir.
func Head(dir string) (string, error) {
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return "", fmt.Errorf("%w: %s", ErrNotRepository, dir)
		}
		return "", fmt.Errorf("opening repository at %s: %w", dir, err)
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolving HEAD in %s: %w", dir, err)
	}
	return head.Hash().String(), nil
}
