package sweep

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	znmetrics "github.com/yourorg/nmsweep/internal/metrics"
	"github.com/yourorg/nmsweep/internal/storage"
	"github.com/yourorg/nmsweep/internal/types"
)

// fakeFS records calls and fails RemoveAll / Stat for chosen paths.
type fakeFS struct {
	storage.Local
	removeErr map[string]error
	statErr   map[string]error
	removed   []string
}

func (f *fakeFS) Stat(p string) (fs.FileInfo, error) {
	if err, ok := f.statErr[p]; ok {
		return nil, err
	}
	return f.Local.Stat(p)
}

func (f *fakeFS) RemoveAll(p string) error {
	if err, ok := f.removeErr[p]; ok {
		return err
	}
	f.removed = append(f.removed, p)
	return f.Local.RemoveAll(p)
}

func makeMatches(t *testing.T, names ...string) (string, types.MatchSet) {
	t.Helper()
	root := t.TempDir()
	var ms types.MatchSet
	for _, n := range names {
		p := filepath.Join(root, n, "node_modules")
		require.NoError(t, os.MkdirAll(filepath.Join(p, "pkg"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(p, "pkg", "index.js"), make([]byte, 100), 0o644))
		ms = append(ms, p)
	}
	return root, ms
}

func TestDeleteAll(t *testing.T) {
	_, ms := makeMatches(t, "a", "b")
	var want int64
	for _, p := range ms {
		info, err := os.Stat(p)
		require.NoError(t, err)
		want += info.Size()
	}
	before := testutil.ToFloat64(znmetrics.Deleted)

	var seen []string
	res := New(nil, nil, WithProgress(func(i, n int, p string) {
		assert.Equal(t, 2, n)
		assert.Equal(t, len(seen)+1, i)
		seen = append(seen, p)
	})).Delete(context.Background(), types.DeleteParams{Matches: ms})

	assert.Equal(t, 2, res.Count)
	assert.Equal(t, want, res.TotalSize)
	assert.Empty(t, res.Failures)
	assert.False(t, res.Interrupted)
	assert.Equal(t, []string(ms), seen)
	assert.Equal(t, before+2, testutil.ToFloat64(znmetrics.Deleted))
	for _, p := range ms {
		_, err := os.Stat(p)
		assert.True(t, os.IsNotExist(err), p)
	}
}

func TestDeleteScenarioD(t *testing.T) {
	_, ms := makeMatches(t, "one", "two", "three")
	denied := &fs.PathError{Op: "unlinkat", Path: ms[1], Err: fs.ErrPermission}
	fsys := &fakeFS{removeErr: map[string]error{ms[1]: denied}}
	core, logs := observer.New(zapcore.WarnLevel)

	res := New(fsys, zap.New(core)).Delete(context.Background(), types.DeleteParams{Matches: ms})

	assert.Equal(t, 2, res.Count)
	assert.Equal(t, []string{ms[0], ms[2]}, fsys.removed)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, ms[1], res.Failures[0].Path)
	assert.ErrorIs(t, res.Failures[0], fs.ErrPermission)

	warned := logs.FilterMessage("could not delete").All()
	require.Len(t, warned, 1)
	assert.Equal(t, ms[1], warned[0].ContextMap()["path"])
	_, err := os.Stat(ms[1])
	assert.NoError(t, err, "failed item must be left in place")
}

func TestDeleteStatFailureDoesNotBlock(t *testing.T) {
	_, ms := makeMatches(t, "a")
	fsys := &fakeFS{statErr: map[string]error{ms[0]: errors.New("stat boom")}}

	res := New(fsys, nil).Delete(context.Background(), types.DeleteParams{Matches: ms})
	assert.Equal(t, 1, res.Count)
	assert.Zero(t, res.TotalSize)
}

func TestDeleteVanishedPathCounts(t *testing.T) {
	root := t.TempDir()
	gone := filepath.Join(root, "x", "node_modules")

	res := New(nil, nil).Delete(context.Background(), types.DeleteParams{Matches: types.MatchSet{gone}})
	assert.Equal(t, 1, res.Count)
	assert.Zero(t, res.TotalSize)
	assert.Empty(t, res.Failures)
}

func TestDeleteDeepSize(t *testing.T) {
	_, ms := makeMatches(t, "a", "b")
	res := New(nil, nil).Delete(context.Background(), types.DeleteParams{Matches: ms, SizeMode: types.SizeDeep})
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, int64(200), res.TotalSize)
}

func TestDeleteRefusesNonTargets(t *testing.T) {
	root, ms := makeMatches(t, "a")
	fsys := &fakeFS{}
	bad := types.MatchSet{root, "relative/node_modules", ms[0] + string(filepath.Separator) + ".." + string(filepath.Separator) + "node_modules", ms[0]}

	res := New(fsys, nil).Delete(context.Background(), types.DeleteParams{Matches: bad})
	assert.Equal(t, 1, res.Count)
	assert.Equal(t, []string{ms[0]}, fsys.removed)
	require.Len(t, res.Failures, 3)
	for _, f := range res.Failures {
		assert.ErrorIs(t, f.Err, ErrNotTarget)
	}
	_, err := os.Stat(root)
	assert.NoError(t, err)
}

func TestDeleteCancelled(t *testing.T) {
	_, ms := makeMatches(t, "a", "b", "c")
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	d := New(nil, nil, WithProgress(func(i, _ int, _ string) {
		calls++
		if i == 1 {
			cancel()
		}
	}))

	res := d.Delete(ctx, types.DeleteParams{Matches: ms})
	assert.True(t, res.Interrupted)
	assert.Equal(t, 1, res.Count, "the in-flight item completes")
	assert.Equal(t, 1, calls)
	_, err := os.Stat(ms[2])
	assert.NoError(t, err)
}
