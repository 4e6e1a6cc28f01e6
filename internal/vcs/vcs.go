// Package vcs reports the git state of a project directory.
package vcs

import (
	"context"
	"strings"

	"github.com/dshills/goto/internal/command"
)

// Info is the branch and working-tree state of a repository.
type Info struct {
	Branch string
	Dirty  bool
}

// Status runs git against path. The bool is false when path is not a git
// work tree or git is unavailable.
func Status(ctx context.Context, runner command.Runner, path string) (*Info, bool) {
	out, err := runner.Run(ctx, "git", "-C", path, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return nil, false
	}
	info := &Info{Branch: strings.TrimSpace(string(out))}

	out, err = runner.Run(ctx, "git", "-C", path, "status", "--porcelain")
	if err == nil {
		info.Dirty = strings.TrimSpace(string(out)) != ""
	}
	return info, true
}

// String renders the branch with a trailing marker when dirty.
func (i *Info) String() string {
	if i == nil {
		return ""
	}
	if i.Dirty {
		return i.Branch + " *"
	}
	return i.Branch
}
