package types

import "fmt"

// StorageKind is the per-entry flag describing how the body is stored.
type StorageKind uint8

const (
	KindLZ4       StorageKind = 0x00
	KindRaw       StorageKind = 0x01
	KindRawExempt StorageKind = 0x03 // formats that must never be re-encoded (.mp4)
)

func (k StorageKind) String() string {
	switch k {
	case KindLZ4:
		return "lz4"
	case KindRaw:
		return "raw"
	case KindRawExempt:
		return "raw-exempt"
	}
	return fmt.Sprintf("unknown(0x%02x)", uint8(k))
}

// Valid reports whether k is one of the known storage kinds.
func (k StorageKind) Valid() bool {
	switch k {
	case KindLZ4, KindRaw, KindRawExempt:
		return true
	}
	return false
}

// EntryHeader is the fixed 23-byte header that precedes every entry's name and body.
type EntryHeader struct {
	NameLen          uint16
	StoredSize       uint64
	DecompressedSize uint64
	Kind             StorageKind
	Checksum         uint32
}

// Entry is one archive record held in memory. Body holds the stored bytes.
type Entry struct {
	Name             string
	Kind             StorageKind
	DecompressedSize uint64
	Checksum         uint32
	Body             []byte
}

// IndexEntry describes one record found while scanning an archive. It never
// carries the body, so scanning a multi-gigabyte archive stays cheap.
type IndexEntry struct {
	Name             string
	Offset           int64
	Length           int64 // header + name + stored body
	StoredSize       uint64
	DecompressedSize uint64
	Kind             StorageKind
	Checksum         uint32
}

// RepackPlan is the diff computed before an in-place repack mutates anything.
type RepackPlan struct {
	ArchivePath  string
	ArchiveSize  int64
	Prefixes     []string
	TotalEntries int
	Preserved    int      // entries outside every managed prefix
	Unchanged    []string // managed entries left in place, only with SkipUnchanged
	Modified     []string
	Deleted      []string
	Added        []string
}

// Empty reports whether applying the plan would change nothing.
func (p RepackPlan) Empty() bool {
	return len(p.Modified) == 0 && len(p.Deleted) == 0 && len(p.Added) == 0
}
