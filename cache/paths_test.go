package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPathLayoutSiblings(t *testing.T) {
	root := t.TempDir()
	id := ResourceID("abc123")
	v := Version(1000)

	data := DataFile(root, id, v)
	download := DownloadFile(root, id, v)
	lock := LockFile(root, id, v)

	require.Equal(t, filepath.Dir(data), filepath.Dir(download))
	require.Equal(t, filepath.Dir(data), filepath.Dir(lock))
	require.Equal(t, filepath.Join(root, "abc123", "1000", "data"), data)
}

func TestListVersionDirsSkipsNonNumericEntries(t *testing.T) {
	root := t.TempDir()
	id := ResourceID("abc123")

	require.NoError(t, ensureEntryDir(root, id, 1000))
	require.NoError(t, ensureEntryDir(root, id, 1001))
	require.NoError(t, os.MkdirAll(filepath.Join(root, string(id), "not-a-version"), 0o777))

	versions, err := listVersionDirs(root, id)
	require.NoError(t, err)
	require.ElementsMatch(t, []Version{1000, 1001}, versions)
}

func TestListVersionDirsMissingResourceIsEmpty(t *testing.T) {
	root := t.TempDir()
	versions, err := listVersionDirs(root, ResourceID("nope"))
	require.NoError(t, err)
	require.Empty(t, versions)
}
