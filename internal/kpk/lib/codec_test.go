package lib

import (
	"bytes"
	"hash/crc32"
	"math/rand"
	"testing"

	"github.com/gingerrexayers/kpk-go/internal/kpk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// randomBytes returns deterministic, incompressible content.
func randomBytes(n int, seed int64) []byte {
	buf := make([]byte, n)
	rand.New(rand.NewSource(seed)).Read(buf)
	return buf
}

func TestEncodeRoundTrip(t *testing.T) {
	testCases := []struct {
		name     string
		fileName string
		content  []byte
		kind     types.StorageKind
	}{
		{
			name:     "Compressible text is stored as LZ4",
			fileName: `data\script.txt`,
			content:  bytes.Repeat([]byte("the quick brown fox "), 100),
			kind:     types.KindLZ4,
		},
		{
			name:     "Incompressible data is stored raw",
			fileName: `image\noise.bin`,
			content:  randomBytes(4096, 1),
			kind:     types.KindRaw,
		},
		{
			name:     "Empty file is stored raw",
			fileName: `data\empty.txt`,
			content:  []byte{},
			kind:     types.KindRaw,
		},
		{
			name:     "Tiny file does not grow",
			fileName: `data\a`,
			content:  []byte("a"),
			kind:     types.KindRaw,
		},
		{
			name:     "MP4 is exempt even when compressible",
			fileName: `movie\clip.mp4`,
			content:  bytes.Repeat([]byte{0}, 10000),
			kind:     types.KindRawExempt,
		},
		{
			name:     "MP4 extension is case-insensitive",
			fileName: `movie\INTRO.MP4`,
			content:  bytes.Repeat([]byte("x"), 1000),
			kind:     types.KindRawExempt,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e, err := Encode(tc.fileName, tc.content)
			require.NoError(t, err)

			assert.Equal(t, tc.kind, e.Kind)
			assert.Equal(t, tc.fileName, e.Name)
			assert.EqualValues(t, len(tc.content), e.DecompressedSize)
			assert.Equal(t, crc32.ChecksumIEEE(tc.content), e.Checksum)
			if e.Kind == types.KindLZ4 {
				assert.Less(t, len(e.Body), len(tc.content))
			} else {
				assert.Equal(t, tc.content, e.Body)
			}

			decoded, err := Decode(e.Kind, e.Body, e.DecompressedSize)
			require.NoError(t, err)
			assert.True(t, bytes.Equal(tc.content, decoded), "round trip changed the content")
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	content := bytes.Repeat([]byte("abcdefgh"), 64)
	e, err := Encode("data.txt", content)
	require.NoError(t, err)
	require.Equal(t, types.KindLZ4, e.Kind)

	t.Run("LZ4 with a shorter declared size", func(t *testing.T) {
		_, err := Decode(types.KindLZ4, e.Body, e.DecompressedSize-1)
		assert.ErrorIs(t, err, ErrCodec)
	})

	t.Run("LZ4 with a longer declared size", func(t *testing.T) {
		_, err := Decode(types.KindLZ4, e.Body, e.DecompressedSize+10)
		assert.ErrorIs(t, err, ErrCodec)
	})

	t.Run("LZ4 with an impossible declared size", func(t *testing.T) {
		for _, size := range []uint64{1 << 60, 1 << 40, ^uint64(0)} {
			_, err := Decode(types.KindLZ4, []byte{0x10, 'a'}, size)
			assert.ErrorIs(t, err, ErrCodec, "size %d", size)
		}
	})

	t.Run("Raw body with a size mismatch", func(t *testing.T) {
		_, err := Decode(types.KindRaw, []byte("abc"), 4)
		assert.ErrorIs(t, err, ErrCodec)
	})

	t.Run("Unknown storage kind", func(t *testing.T) {
		_, err := Decode(types.StorageKind(0x7f), []byte("abc"), 3)
		assert.ErrorIs(t, err, ErrCodec)
	})
}

func TestDecodeEntryChecksumIsOptIn(t *testing.T) {
	e, err := Encode("data.txt", []byte("payload"))
	require.NoError(t, err)
	e.Checksum ^= 0xFFFFFFFF

	// Lenient by default: a wrong checksum is not an error.
	data, err := DecodeEntry(e, false)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	_, err = DecodeEntry(e, true)
	assert.ErrorIs(t, err, ErrChecksum)
}

func TestFileChecksum(t *testing.T) {
	content := randomBytes(100000, 7)
	path := writeTempFile(t, content)

	crc, size, err := FileChecksum(path)
	require.NoError(t, err)
	assert.Equal(t, Checksum(content), crc)
	assert.EqualValues(t, len(content), size)

	_, _, err = FileChecksum(path + ".missing")
	assert.Error(t, err)
}
