package filex

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) func() {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	return func() { _ = os.Chdir(old) }
}

func TestEnsureSubDir_CreatesDirectoryInCWD(t *testing.T) {
	tmp := t.TempDir()
	defer chdir(t, tmp)()

	got, err := EnsureSubDir(".taskkeeper")
	require.NoError(t, err)

	want := filepath.Join(tmp, ".taskkeeper")
	require.Equal(t, want, got)

	fi, err := os.Stat(want)
	require.NoError(t, err)
	require.True(t, fi.IsDir(), "should create a directory")

	if runtime.GOOS != "windows" {
		perm := fi.Mode().Perm()
		require.Equal(t, os.FileMode(0o700), perm&0o700)
	}
}

func TestEnsureSubDir_Idempotent(t *testing.T) {
	tmp := t.TempDir()
	defer chdir(t, tmp)()

	first, err := EnsureSubDir(".taskkeeper")
	require.NoError(t, err)

	second, err := EnsureSubDir(".taskkeeper")
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestEnsureSubDir_FailsIfFileWithSameNameExists(t *testing.T) {
	tmp := t.TempDir()
	defer chdir(t, tmp)()

	require.NoError(t, os.WriteFile(".taskkeeper", []byte("x"), 0o660))

	_, err := EnsureSubDir(".taskkeeper")
	require.Error(t, err, "should fail when a file exists with the same name")
}

func TestLocalPath(t *testing.T) {
	tmp := t.TempDir()
	defer chdir(t, tmp)()

	got, err := LocalPath(".taskkeeper", "prefs.db")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(tmp, ".taskkeeper", "prefs.db"), got)

	for _, name := range []string{":memory:", "file:prefs.db?mode=memory", filepath.Join("data", "prefs.db"), ""} {
		got, err := LocalPath(".other", name)
		require.NoError(t, err)
		require.Equal(t, name, got)
	}
	_, err = os.Stat(filepath.Join(tmp, ".other"))
	require.True(t, os.IsNotExist(err))
}
