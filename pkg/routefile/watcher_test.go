package routefile_test

import (
	"context"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/waymark/pkg/route"
	"github.com/dmitrymomot/waymark/pkg/routefile"
)

func TestWatcher(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "routes:\n  - name: one\n    uri: one\n")
	tbl := route.NewTable()

	var failures atomic.Int32
	w, err := routefile.NewWatcher(path, tbl,
		routefile.WithDebounce(50*time.Millisecond),
		routefile.OnError(func(error) { failures.Add(1) }),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, w.Start(ctx))
	defer func() { assert.NoError(t, w.Stop()) }()

	names := func() []string {
		var out []string
		for _, r := range tbl.All() {
			out = append(out, r.Name())
		}
		return out
	}
	assert.Equal(t, []string{"one"}, names())

	require.NoError(t, os.WriteFile(path, []byte("routes:\n  - name: two\n    uri: two\n  - name: three\n    uri: three\n"), 0o600))
	require.Eventually(t, func() bool {
		return tbl.Len() == 2
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"two", "three"}, names())

	require.NoError(t, os.WriteFile(path, []byte("routes:\n  - name: broken\n    uri: \"(\"\n"), 0o600))
	require.Eventually(t, func() bool {
		return failures.Load() > 0
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"two", "three"}, names(), "broken file keeps previous routes")
}

func TestWatcher_InitialLoadFails(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "routes:\n  - name: x\n    uri: \"<\"\n")

	w, err := routefile.NewWatcher(path, route.NewTable())
	require.NoError(t, err)

	require.ErrorIs(t, w.Start(context.Background()), route.ErrInvalidKey)
	require.NoError(t, w.Stop())
}
