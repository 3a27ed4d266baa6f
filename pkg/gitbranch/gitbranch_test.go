package gitbranch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeRunner(out string, err error) (Runner, *[]string) {
	var calls []string
	return func(_ context.Context, dir, name string, args ...string) ([]byte, error) {
		calls = append(calls, dir+":"+name)
		calls = append(calls, args...)
		return []byte(out), err
	}, &calls
}

func TestDetect(t *testing.T) {
	ctx := context.Background()

	t.Run("trims git output", func(t *testing.T) {
		run, calls := fakeRunner("feature/spiral\n", nil)
		branch, err := Detect(ctx, "/repo", "", run, nil)
		require.NoError(t, err)
		assert.Equal(t, "feature/spiral", branch)
		assert.Equal(t, []string{"/repo:git", "rev-parse", "--abbrev-ref", "HEAD"}, *calls)
	})

	t.Run("override skips git", func(t *testing.T) {
		run, calls := fakeRunner("", errors.New("should not run"))
		branch, err := Detect(ctx, "/repo", "main", run, nil)
		require.NoError(t, err)
		assert.Equal(t, "main", branch)
		assert.Empty(t, *calls)
	})

	t.Run("empty output", func(t *testing.T) {
		run, _ := fakeRunner("  \n", nil)
		_, err := Detect(ctx, "/repo", "", run, nil)
		require.ErrorIs(t, err, ErrEmptyBranch)
	})

	t.Run("command failure", func(t *testing.T) {
		boom := errors.New("not a git repository")
		run, _ := fakeRunner("", boom)
		_, err := Detect(ctx, "/repo", "", run, nil)
		require.ErrorIs(t, err, boom)
	})
}
