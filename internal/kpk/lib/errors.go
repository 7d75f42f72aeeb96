package lib

import "errors"

var (
	// ErrFormat is returned when an archive's signature or entry layout is invalid.
	ErrFormat = errors.New("kpk: invalid archive format")

	// ErrMissingInput is returned when an archive or source folder does not exist.
	ErrMissingInput = errors.New("kpk: missing input")

	// ErrCodec is returned when an entry body cannot be decoded.
	ErrCodec = errors.New("kpk: codec failure")

	// ErrChecksum is returned in strict mode when decoded content does not match its CRC-32.
	ErrChecksum = errors.New("kpk: checksum mismatch")

	// ErrNoChange signals a repack whose diff is empty. The archive was not touched.
	ErrNoChange = errors.New("kpk: nothing to repack")

	// ErrCancelled signals that the repack confirmation was declined.
	ErrCancelled = errors.New("kpk: repack cancelled")
)
