package lib

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/gingerrexayers/kpk-go/internal/kpk/types"
)

// Scan reads only the entry headers of the archive at archivePath and
// returns one IndexEntry per record, in physical order. Bodies are skipped
// with a seek and never read.
func Scan(archivePath string) ([]types.IndexEntry, error) {
	file, err := os.Open(archivePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: archive %s", ErrMissingInput, archivePath)
		}
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}

	return ScanReader(file, info.Size())
}

// ScanReader is Scan over an already opened archive of the given size.
// Fewer than HeaderLen trailing bytes end the scan cleanly. A complete
// header whose name or body runs past size is a format error.
func ScanReader(r io.ReadSeeker, size int64) ([]types.IndexEntry, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	if err := ReadSignature(r); err != nil {
		return nil, err
	}

	var entries []types.IndexEntry
	hdrBuf := make([]byte, HeaderLen)
	offset := SignatureLen

	for size-offset >= HeaderLen {
		if _, err := io.ReadFull(r, hdrBuf); err != nil {
			return nil, fmt.Errorf("read header at offset %d: %w", offset, err)
		}
		hdr, err := UnmarshalHeader(hdrBuf)
		if err != nil {
			return nil, err
		}

		nameEnd := offset + HeaderLen + int64(hdr.NameLen)
		if nameEnd > size {
			return nil, fmt.Errorf("%w: entry at offset %d declares a %d-byte name past end of archive",
				ErrFormat, offset, hdr.NameLen)
		}
		if hdr.StoredSize > uint64(size-nameEnd) {
			return nil, fmt.Errorf("%w: entry at offset %d declares a %d-byte body past end of archive",
				ErrFormat, offset, hdr.StoredSize)
		}

		name := make([]byte, hdr.NameLen)
		if _, err := io.ReadFull(r, name); err != nil {
			return nil, fmt.Errorf("read name at offset %d: %w", offset, err)
		}

		// Skip the body.
		if _, err := r.Seek(int64(hdr.StoredSize), io.SeekCurrent); err != nil {
			return nil, err
		}

		length := RecordLength(int(hdr.NameLen), hdr.StoredSize)
		entries = append(entries, types.IndexEntry{
			Name:             string(name),
			Offset:           offset,
			Length:           length,
			StoredSize:       hdr.StoredSize,
			DecompressedSize: hdr.DecompressedSize,
			Kind:             hdr.Kind,
			Checksum:         hdr.Checksum,
		})
		offset += length
	}

	return entries, nil
}

// EntryReader iterates the full records of an archive sequentially.
type EntryReader struct {
	file   *os.File
	r      *bufio.Reader
	offset int64
}

// OpenEntries opens archivePath, checks its signature and positions the
// reader on the first entry.
func OpenEntries(archivePath string) (*EntryReader, error) {
	file, err := os.Open(archivePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: archive %s", ErrMissingInput, archivePath)
		}
		return nil, err
	}
	r := bufio.NewReaderSize(file, 1<<20)
	if err := ReadSignature(r); err != nil {
		file.Close()
		return nil, err
	}
	return &EntryReader{file: file, r: r, offset: SignatureLen}, nil
}

// Next returns the next entry and its offset, or io.EOF at the end of the archive.
func (er *EntryReader) Next() (types.Entry, int64, error) {
	offset := er.offset
	e, err := ReadEntry(er.r)
	if err != nil {
		return types.Entry{}, offset, err
	}
	er.offset += RecordLength(len(e.Name), uint64(len(e.Body)))
	return e, offset, nil
}

// Close closes the underlying file.
func (er *EntryReader) Close() error {
	return er.file.Close()
}
