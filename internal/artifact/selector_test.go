package artifact

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeClassFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("class"), 0o644))
	}
}

func TestSelectEmptyPatternsNeverScans(t *testing.T) {
	dir := t.TempDir()
	writeClassFiles(t, dir, "com/x/Foo.class", "com/x/Stale.class")

	got, err := Select([]string{dir}, nil)
	require.NoError(t, err)
	assert.True(t, got.Empty(), "empty pattern list must yield the empty set, not the unfiltered directory")

	// Empty patterns must short-circuit even when the directory is unreadable.
	got, err = Select([]string{filepath.Join(dir, "missing")}, nil)
	require.NoError(t, err)
	assert.True(t, got.Empty())
}

func TestSelectMatchesPrimaryAndNestedArtifacts(t *testing.T) {
	dir := t.TempDir()
	writeClassFiles(t, dir,
		"com/x/Foo.class",
		"com/x/Foo$Inner.class",
		"com/x/Unrelated.class",
		"com/y/Foo.class",
	)

	got, err := Select([]string{dir}, []string{"com/x/Foo*"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "com", "x", "Foo$Inner.class"),
		filepath.Join(dir, "com", "x", "Foo.class"),
	}, got.Files)
}

func TestSelectUnionAcrossOutputDirs(t *testing.T) {
	classes := t.TempDir()
	generated := t.TempDir()
	writeClassFiles(t, classes, "com/x/Foo.class")
	writeClassFiles(t, generated, "com/x/Bar.class")

	got, err := Select([]string{classes, generated}, []string{"com/x/Foo*", "com/x/Bar*"})
	require.NoError(t, err)
	assert.Equal(t, 2, got.Len())
}

func TestSelectIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeClassFiles(t, dir, "com/x/Foo.class", "com/x/Bar.class")
	patterns := []string{"com/x/*"}

	first, err := Select([]string{dir}, patterns)
	require.NoError(t, err)
	second, err := Select([]string{dir}, patterns)
	require.NoError(t, err)
	assert.Equal(t, first.Files, second.Files)
	assert.Equal(t, first.Fingerprint(), second.Fingerprint())
}

func TestSelectToleratesMissingOutputDir(t *testing.T) {
	dir := t.TempDir()
	writeClassFiles(t, dir, "com/x/Foo.class")

	got, err := Select([]string{filepath.Join(dir, "not-yet-compiled"), dir}, []string{"com/x/Foo*"})
	require.NoError(t, err)
	assert.Equal(t, 1, got.Len())
}

func TestProviderEvaluatesOnce(t *testing.T) {
	calls := 0
	p := NewProvider(func() (Set, error) {
		calls++
		return Set{Files: []string{"a"}}, nil
	})
	for i := 0; i < 3; i++ {
		set, err := p.Get()
		require.NoError(t, err)
		assert.Equal(t, 1, set.Len())
	}
	assert.Equal(t, 1, calls)
}

func TestProviderMemoizesError(t *testing.T) {
	boom := errors.New("scan failed")
	calls := 0
	p := NewProvider(func() (Set, error) {
		calls++
		return Set{}, boom
	})
	_, err := p.Get()
	assert.ErrorIs(t, err, boom)
	_, err = p.Get()
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}
