package lib

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gingerrexayers/kpk-go/internal/kpk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTree creates the given slash-separated files under root.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755), "Failed to create parent directory")
		require.NoError(t, os.WriteFile(path, []byte(content), 0644), "Failed to write %s", rel)
	}
}

func names(files []SourceFile) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Name
	}
	return out
}

func TestCollectSourceFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"data/z.txt":          "z",
		"data/a.txt":          "a",
		"data/sub/b.txt":      "b",
		"font/x.bin":          "x",
		"sound/not_asked.ogg": "s",
		"loose.txt":           "l",
	})

	files, err := CollectSourceFiles(root, []string{"font", "data"}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{`data\a.txt`, `data\sub\b.txt`, `data\z.txt`, `font\x.bin`}, names(files))
	assert.Equal(t, filepath.Join(root, "data", "sub", "b.txt"), files[1].Path)
}

func TestCollectSourceFilesMissingFolder(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"data/a.txt": "a"})

	_, err := CollectSourceFiles(root, []string{"data", "font"}, nil)
	assert.ErrorIs(t, err, ErrMissingInput)
}

func TestCollectSourceFilesEmpty(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "data"), 0755))

	files, err := CollectSourceFiles(root, []string{"data"}, nil)
	require.NoError(t, err)
	assert.Empty(t, files)

	files, err = CollectSourceFiles(root, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestCollectSourceFilesWithIgnoreFile(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		IgnoreFilename:        "# editor leftovers\n*.bak\n\ndata\\wip/\n",
		"data/a.txt":          "a",
		"data/a.txt.bak":      "old",
		"data/wip/draft.txt":  "draft",
		"data/deep/keep.txt":  "keep",
		"data/deep/again.bak": "old",
	})

	ignore := LoadIgnoreMatcher(root, IgnoreFilename)
	files, err := CollectSourceFiles(root, []string{"data"}, ignore)
	require.NoError(t, err)
	assert.Equal(t, []string{`data\a.txt`, `data\deep\keep.txt`}, names(files))

	// "-" disables the ignore file entirely.
	files, err = CollectSourceFiles(root, []string{"data"}, LoadIgnoreMatcher(root, "-"))
	require.NoError(t, err)
	assert.Len(t, files, 5)
}

func TestCollectSourceFilesFollowsFileSymlinks(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"data/a.txt": "a"})
	outside := filepath.Join(t.TempDir(), "target.txt")
	require.NoError(t, os.WriteFile(outside, []byte("linked"), 0644))

	if err := os.Symlink(outside, filepath.Join(root, "data", "link.txt")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	require.NoError(t, os.Symlink(filepath.Join(root, "missing"), filepath.Join(root, "data", "dangling.txt")))

	files, err := CollectSourceFiles(root, []string{"data"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{`data\a.txt`, `data\link.txt`}, names(files))

	e, err := EncodeFile(files[1])
	require.NoError(t, err)
	assert.EqualValues(t, len("linked"), e.DecompressedSize)
}

func TestNameHelpers(t *testing.T) {
	assert.Equal(t, `data\sub\a.txt`, ToArchiveName(filepath.Join("data", "sub", "a.txt")))
	assert.Equal(t, filepath.Join("data", "sub", "a.txt"), FromArchiveName(`data\sub\a.txt`))
	assert.Equal(t, `data\`, FolderPrefix("data"))
	assert.Equal(t, `data\`, FolderPrefix("data/"))
	assert.True(t, HasAnyPrefix(`data\a.txt`, []string{`font\`, `data\`}))
	assert.False(t, HasAnyPrefix(`database\a.txt`, []string{`data\`}))
	assert.True(t, IsExempt(`movie\a.Mp4`))
	assert.False(t, IsExempt(`movie\a.mp4.txt`))
}

func TestEncodeFilesPreservesOrder(t *testing.T) {
	root := t.TempDir()
	tree := map[string]string{}
	for _, c := range "abcdefghijklmnopqrstuvwxyz" {
		tree["data/"+string(c)+".txt"] = string(c) + " content"
	}
	writeTree(t, root, tree)

	files, err := CollectSourceFiles(root, []string{"data"}, nil)
	require.NoError(t, err)

	var got []string
	err = EncodeFiles(context.Background(), files, 4, func(i int, e types.Entry) error {
		assert.Equal(t, files[i].Name, e.Name)
		got = append(got, e.Name)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, names(files), got)
}

func TestEncodeFilesStopsOnError(t *testing.T) {
	files := []SourceFile{{Name: `data\missing.txt`, Path: filepath.Join(t.TempDir(), "missing.txt")}}
	err := EncodeFiles(context.Background(), files, 2, func(int, types.Entry) error { return nil })
	assert.Error(t, err)

	root := t.TempDir()
	writeTree(t, root, map[string]string{"data/a.txt": "a"})
	files, err = CollectSourceFiles(root, []string{"data"}, nil)
	require.NoError(t, err)

	boom := errors.New("boom")
	err = EncodeFiles(context.Background(), files, 2, func(int, types.Entry) error { return boom })
	assert.ErrorIs(t, err, boom)
}
