package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunner_Stdout(t *testing.T) {
	if !Available("sh") {
		t.Skip("sh not available")
	}
	r := NewExecRunner(5*time.Second, nil)

	out, err := r.Run(context.Background(), "sh", "-c", "printf hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(out))
}

func TestExecRunner_ExitError(t *testing.T) {
	if !Available("sh") {
		t.Skip("sh not available")
	}
	r := NewExecRunner(5*time.Second, nil)

	_, err := r.Run(context.Background(), "sh", "-c", "echo oops >&2; exit 3")
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 3, exitErr.Code)
	assert.Equal(t, "oops", exitErr.Stderr)
	assert.Contains(t, exitErr.Error(), "status 3")
}

func TestExecRunner_Timeout(t *testing.T) {
	if !Available("sleep") {
		t.Skip("sleep not available")
	}
	r := NewExecRunner(50*time.Millisecond, nil)

	_, err := r.Run(context.Background(), "sleep", "5")
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestExecRunner_MissingBinary(t *testing.T) {
	r := NewExecRunner(0, nil)
	_, err := r.Run(context.Background(), "goto-no-such-binary")
	require.Error(t, err)

	var exitErr *ExitError
	assert.False(t, errors.As(err, &exitErr))
}

func TestFunc(t *testing.T) {
	var gotName string
	var gotArgs []string
	f := Func(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		gotName, gotArgs = name, args
		return []byte("ok"), nil
	})

	out, err := f.Run(context.Background(), "git", "status")
	require.NoError(t, err)
	assert.Equal(t, "ok", string(out))
	assert.Equal(t, "git", gotName)
	assert.Equal(t, []string{"status"}, gotArgs)
}
