package lib

import (
	"fmt"
	"io"
	"os"
)

// CopyFile copies a file from src to dst. If dst does not exist, it is created.
// If it does exist, it is overwritten.
func CopyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	_, err = io.Copy(destFile, sourceFile)
	if err != nil {
		return err
	}

	// Ensure the data is written to stable storage.
	return destFile.Sync()
}

// ReaderWriterAt is the subset of *os.File used to move bytes within one file.
type ReaderWriterAt interface {
	io.ReaderAt
	io.WriterAt
}

// CopyWithin copies [src, src+size) to [dst, dst+size) inside the same file,
// chunkSize bytes at a time. The regions may overlap, but dst must not be
// greater than src: copying low to high then never reads bytes it has
// already overwritten.
func CopyWithin(f ReaderWriterAt, src, dst, size int64, chunkSize int) error {
	if dst > src {
		return fmt.Errorf("copy within file: destination %d is past source %d", dst, src)
	}
	if src == dst || size == 0 {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	bufLen := int64(chunkSize)
	if size < bufLen {
		bufLen = size
	}
	buf := make([]byte, bufLen)

	for copied := int64(0); copied < size; {
		n := bufLen
		if size-copied < n {
			n = size - copied
		}
		if _, err := f.ReadAt(buf[:n], src+copied); err != nil {
			return fmt.Errorf("read %d bytes at %d: %w", n, src+copied, err)
		}
		if _, err := f.WriteAt(buf[:n], dst+copied); err != nil {
			return fmt.Errorf("write %d bytes at %d: %w", n, dst+copied, err)
		}
		copied += n
	}
	return nil
}
