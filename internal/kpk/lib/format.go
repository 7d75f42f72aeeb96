package lib

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/gingerrexayers/kpk-go/internal/kpk/types"
)

// WriteSignature writes the archive signature to w.
func WriteSignature(w io.Writer) error {
	_, err := io.WriteString(w, Signature)
	return err
}

// ReadSignature reads the first SignatureLen bytes from r and checks them
// against Signature.
func ReadSignature(r io.Reader) error {
	buf := make([]byte, SignatureLen)
	if _, err := io.ReadFull(r, buf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return fmt.Errorf("%w: file shorter than signature", ErrFormat)
		}
		return err
	}
	if !bytes.Equal(buf, []byte(Signature)) {
		return fmt.Errorf("%w: bad signature %q", ErrFormat, buf)
	}
	return nil
}

// MarshalHeader encodes h field by field, little-endian, into exactly HeaderLen bytes.
func MarshalHeader(h types.EntryHeader) []byte {
	buf := make([]byte, HeaderLen)
	binary.LittleEndian.PutUint16(buf[0:2], h.NameLen)
	binary.LittleEndian.PutUint64(buf[2:10], h.StoredSize)
	binary.LittleEndian.PutUint64(buf[10:18], h.DecompressedSize)
	buf[18] = byte(h.Kind)
	binary.LittleEndian.PutUint32(buf[19:23], h.Checksum)
	return buf
}

// UnmarshalHeader decodes a HeaderLen-byte buffer produced by MarshalHeader.
func UnmarshalHeader(buf []byte) (types.EntryHeader, error) {
	if len(buf) < HeaderLen {
		return types.EntryHeader{}, fmt.Errorf("%w: short entry header (%d bytes)", ErrFormat, len(buf))
	}
	return types.EntryHeader{
		NameLen:          binary.LittleEndian.Uint16(buf[0:2]),
		StoredSize:       binary.LittleEndian.Uint64(buf[2:10]),
		DecompressedSize: binary.LittleEndian.Uint64(buf[10:18]),
		Kind:             types.StorageKind(buf[18]),
		Checksum:         binary.LittleEndian.Uint32(buf[19:23]),
	}, nil
}

// RecordLength is the on-disk size of an entry with the given name and stored body size.
func RecordLength(nameLen int, storedSize uint64) int64 {
	return HeaderLen + int64(nameLen) + int64(storedSize)
}

// WriteEntry writes one complete record (header, name, body) to w and
// returns the number of bytes written.
func WriteEntry(w io.Writer, e types.Entry) (int64, error) {
	name := []byte(e.Name)
	if len(name) > math.MaxUint16 {
		return 0, fmt.Errorf("entry name too long (%d bytes): %.64s...", len(name), e.Name)
	}

	hdr := MarshalHeader(types.EntryHeader{
		NameLen:          uint16(len(name)),
		StoredSize:       uint64(len(e.Body)),
		DecompressedSize: e.DecompressedSize,
		Kind:             e.Kind,
		Checksum:         e.Checksum,
	})

	var written int64
	for _, part := range [][]byte{hdr, name, e.Body} {
		n, err := w.Write(part)
		written += int64(n)
		if err != nil {
			return written, fmt.Errorf("write entry %s: %w", e.Name, err)
		}
	}
	return written, nil
}

// ReadEntry reads one complete record from r. It returns io.EOF when fewer
// than HeaderLen bytes remain, matching the tolerant end-of-archive rule.
func ReadEntry(r io.Reader) (types.Entry, error) {
	hdrBuf := make([]byte, HeaderLen)
	if _, err := io.ReadFull(r, hdrBuf); err != nil {
		if err == io.ErrUnexpectedEOF {
			return types.Entry{}, io.EOF
		}
		return types.Entry{}, err
	}
	hdr, err := UnmarshalHeader(hdrBuf)
	if err != nil {
		return types.Entry{}, err
	}

	name := make([]byte, hdr.NameLen)
	if _, err := io.ReadFull(r, name); err != nil {
		return types.Entry{}, fmt.Errorf("%w: truncated entry name: %v", ErrFormat, err)
	}

	body, err := readBody(r, hdr.StoredSize)
	if err != nil {
		return types.Entry{}, fmt.Errorf("%w: truncated body of %s: %v", ErrFormat, name, err)
	}

	return types.Entry{
		Name:             string(name),
		Kind:             hdr.Kind,
		DecompressedSize: hdr.DecompressedSize,
		Checksum:         hdr.Checksum,
		Body:             body,
	}, nil
}

// readBody reads exactly size bytes without trusting size for the initial
// allocation, so a corrupt header cannot force a huge allocation.
func readBody(r io.Reader, size uint64) ([]byte, error) {
	if size > math.MaxInt64 {
		return nil, fmt.Errorf("stored size %d out of range", size)
	}
	var buf bytes.Buffer
	n, err := io.CopyN(&buf, r, int64(size))
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("want %d bytes, got %d", size, n)
		}
		return nil, err
	}
	return buf.Bytes(), nil
}
