package lib

import (
	"fmt"
	"hash/crc32"
	"io"
	"os"
)

// Checksum calculates the CRC-32 (IEEE) of an in-memory byte slice. This is
// the checksum stored in every entry header, computed over the decompressed
// content regardless of storage kind.
func Checksum(content []byte) uint32 {
	return crc32.ChecksumIEEE(content)
}

// VerifyChecksum returns ErrChecksum when content does not hash to want.
func VerifyChecksum(content []byte, want uint32) error {
	if got := Checksum(content); got != want {
		return fmt.Errorf("%w: got %08x, want %08x", ErrChecksum, got, want)
	}
	return nil
}

// FileChecksum calculates the CRC-32 of a file's contents by streaming it
// from disk, without loading the entire file into memory.
// It returns the checksum and the number of bytes hashed.
func FileChecksum(filePath string) (uint32, int64, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return 0, 0, err
	}
	defer file.Close()

	hasher := crc32.NewIEEE()
	n, err := io.Copy(hasher, file)
	if err != nil {
		return 0, 0, err
	}
	return hasher.Sum32(), n, nil
}
