package vcs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/goto/internal/command"
)

func fakeGit(branch, porcelain string, fail bool) command.Runner {
	return command.Func(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		if fail {
			return nil, &command.ExitError{Name: name, Code: 128, Stderr: "not a git repository"}
		}
		switch args[2] {
		case "rev-parse":
			return []byte(branch + "\n"), nil
		case "status":
			return []byte(porcelain), nil
		}
		return nil, errors.New("unexpected command")
	})
}

func TestStatus(t *testing.T) {
	tests := []struct {
		name      string
		runner    command.Runner
		wantOK    bool
		wantDirty bool
		wantStr   string
	}{
		{name: "clean", runner: fakeGit("main", "", false), wantOK: true, wantStr: "main"},
		{name: "dirty", runner: fakeGit("dev", " M file.go\n", false), wantOK: true, wantDirty: true, wantStr: "dev *"},
		{name: "not a repo", runner: fakeGit("", "", true)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, ok := Status(context.Background(), tt.runner, "/tmp/project")
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				assert.Nil(t, info)
				return
			}
			assert.Equal(t, tt.wantDirty, info.Dirty)
			assert.Equal(t, tt.wantStr, info.String())
		})
	}
}

func TestStatus_PassesPath(t *testing.T) {
	var seen [][]string
	runner := command.Func(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		seen = append(seen, append([]string{name}, args...))
		return []byte("main"), nil
	})

	_, ok := Status(context.Background(), runner, "/work/foyer")
	require.True(t, ok)
	require.Len(t, seen, 2)
	assert.Equal(t, []string{"git", "-C", "/work/foyer", "rev-parse", "--abbrev-ref", "HEAD"}, seen[0])
	assert.Equal(t, []string{"git", "-C", "/work/foyer", "status", "--porcelain"}, seen[1])
}
