package lib

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyWithinOverlapping(t *testing.T) {
	testCases := []struct {
		name      string
		src, dst  int64
		size      int64
		chunkSize int
	}{
		{name: "Overlap smaller than chunk", src: 10, dst: 4, size: 50, chunkSize: 7},
		{name: "Adjacent regions", src: 30, dst: 0, size: 30, chunkSize: 8},
		{name: "Single chunk", src: 20, dst: 5, size: 40, chunkSize: 1024},
		{name: "Chunk of one byte", src: 3, dst: 1, size: 60, chunkSize: 1},
		{name: "Same position is a no-op", src: 12, dst: 12, size: 20, chunkSize: 4},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			original := make([]byte, 100)
			for i := range original {
				original[i] = byte(i)
			}
			path := filepath.Join(t.TempDir(), "archive.kpk")
			require.NoError(t, os.WriteFile(path, original, 0644))

			f, err := os.OpenFile(path, os.O_RDWR, 0)
			require.NoError(t, err)
			require.NoError(t, CopyWithin(f, tc.src, tc.dst, tc.size, tc.chunkSize))
			require.NoError(t, f.Close())

			got, err := os.ReadFile(path)
			require.NoError(t, err)

			want := append([]byte(nil), original...)
			copy(want[tc.dst:tc.dst+tc.size], original[tc.src:tc.src+tc.size])
			assert.True(t, bytes.Equal(want, got), "unexpected content after copy")
		})
	}
}

func TestCopyWithinRejectsBackwardDestination(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.kpk")
	require.NoError(t, os.WriteFile(path, make([]byte, 64), 0644))
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	require.NoError(t, err)
	defer f.Close()

	assert.Error(t, CopyWithin(f, 4, 10, 8, 4))
}

func TestCopyFile(t *testing.T) {
	src := writeTempFile(t, []byte("archive bytes"))
	dst := filepath.Join(t.TempDir(), "copy.kpk")

	require.NoError(t, CopyFile(src, dst))

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "archive bytes", string(got))
}
