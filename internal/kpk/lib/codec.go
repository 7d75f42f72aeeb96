package lib

import (
	"fmt"

	"github.com/gingerrexayers/kpk-go/internal/kpk/types"
	"github.com/pierrec/lz4/v4"
)

// Encode chooses the storage kind for an entry and produces its stored body
// and checksum. Exempt extensions are stored as-is; everything else is LZ4
// block compressed unless that would not make it smaller.
func Encode(name string, raw []byte) (types.Entry, error) {
	e := types.Entry{
		Name:             name,
		DecompressedSize: uint64(len(raw)),
		Checksum:         Checksum(raw),
	}

	if IsExempt(name) {
		e.Kind, e.Body = types.KindRawExempt, raw
		return e, nil
	}

	if len(raw) > 0 {
		dst := make([]byte, lz4.CompressBlockBound(len(raw)))
		n, err := lz4.CompressBlock(raw, dst, nil)
		if err != nil {
			return types.Entry{}, fmt.Errorf("%w: lz4 compress %s: %v", ErrCodec, name, err)
		}
		// n == 0 means the block was incompressible.
		if n > 0 && n < len(raw) {
			e.Kind, e.Body = types.KindLZ4, dst[:n]
			return e, nil
		}
	}

	e.Kind, e.Body = types.KindRaw, raw
	return e, nil
}

// Decode restores the original content of a stored body. LZ4 blocks carry no
// length of their own, so the decompressed size from the header is required
// and must be matched exactly.
func Decode(kind types.StorageKind, body []byte, decompressedSize uint64) ([]byte, error) {
	switch kind {
	case types.KindLZ4:
		if decompressedSize > maxExpansion(len(body)) || decompressedSize > uint64(maxInt) {
			return nil, fmt.Errorf("%w: decompressed size %d out of range for a %d byte block", ErrCodec, decompressedSize, len(body))
		}
		dst := make([]byte, decompressedSize)
		n, err := lz4.UncompressBlock(body, dst)
		if err != nil {
			return nil, fmt.Errorf("%w: lz4: %v", ErrCodec, err)
		}
		if uint64(n) != decompressedSize {
			return nil, fmt.Errorf("%w: lz4 produced %d bytes, header says %d", ErrCodec, n, decompressedSize)
		}
		return dst, nil
	case types.KindRaw, types.KindRawExempt:
		if uint64(len(body)) != decompressedSize {
			return nil, fmt.Errorf("%w: raw body is %d bytes, header says %d", ErrCodec, len(body), decompressedSize)
		}
		return body, nil
	}
	return nil, fmt.Errorf("%w: unknown storage kind %s", ErrCodec, kind)
}

// DecodeEntry decodes e and, when strict is set, verifies its checksum.
func DecodeEntry(e types.Entry, strict bool) ([]byte, error) {
	raw, err := Decode(e.Kind, e.Body, e.DecompressedSize)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", e.Name, err)
	}
	if strict {
		if err := VerifyChecksum(raw, e.Checksum); err != nil {
			return nil, fmt.Errorf("decode %s: %w", e.Name, err)
		}
	}
	return raw, nil
}

// maxExpansion is an upper bound on what an LZ4 block of n bytes can
// decompress to: every input byte extends a match by at most 255 bytes.
func maxExpansion(n int) uint64 {
	return 255*uint64(n) + 16
}

const maxInt = int(^uint(0) >> 1)
