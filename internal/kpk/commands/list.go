package commands

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/gingerrexayers/kpk-go/internal/kpk/lib"
	"github.com/gingerrexayers/kpk-go/internal/kpk/types"
)

// formatBytes is a utility to convert bytes into a human-readable string (KB, MB, GB).
func formatBytes(bytes int64, decimals int) string {
	if bytes == 0 {
		return "0 Bytes"
	}
	const k = 1024
	if decimals < 0 {
		decimals = 0
	}
	sizes := []string{"Bytes", "KB", "MB", "GB", "TB"}

	i := int(math.Floor(math.Log(math.Abs(float64(bytes))) / math.Log(k)))
	if i < 0 {
		i = 0
	}
	if i >= len(sizes) {
		i = len(sizes) - 1
	}
	if i == 0 {
		return fmt.Sprintf("%d %s", bytes, sizes[0])
	}

	return fmt.Sprintf("%.*f %s", decimals, float64(bytes)/math.Pow(k, float64(i)), sizes[i])
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}

// ListSummary aggregates an archive index.
type ListSummary struct {
	Entries           int
	StoredBytes       uint64
	DecompressedBytes uint64
	Kinds             map[types.StorageKind]int
	Folders           []string // distinct top-level folders, sorted
}

// Summarize aggregates an index without touching entry bodies.
func Summarize(index []types.IndexEntry) ListSummary {
	s := ListSummary{Entries: len(index), Kinds: make(map[types.StorageKind]int)}
	folders := make(map[string]bool)
	for _, ie := range index {
		s.StoredBytes += ie.StoredSize
		s.DecompressedBytes += ie.DecompressedSize
		s.Kinds[ie.Kind]++
		if i := strings.Index(ie.Name, lib.NameSeparator); i > 0 {
			folders[ie.Name[:i]] = true
		}
	}
	for f := range folders {
		s.Folders = append(s.Folders, f)
	}
	sort.Strings(s.Folders)
	return s
}

// List is the main function for the 'list' command. It prints the archive
// index in physical order followed by totals.
func List(archivePath string, opts lib.Options) (ListSummary, error) {
	opts = opts.WithDefaults()
	out := opts.Out

	index, err := lib.Scan(archivePath)
	if err != nil {
		return ListSummary{}, fmt.Errorf("failed to scan archive: %w", err)
	}
	summary := Summarize(index)

	fmt.Fprintf(out, "Entries in \"%s\":\n", archivePath)
	fmt.Fprintf(out, "%-12s %-12s %-12s %-10s %-8s %s\n", "OFFSET", "STORED", "SIZE", "KIND", "CRC32", "NAME")
	fmt.Fprintf(out, "%-12s %-12s %-12s %-10s %-8s %s\n", "======", "======", "====", "====", "=====", "====")
	for _, ie := range index {
		fmt.Fprintf(out, "%-12d %-12d %-12d %-10s %08x %s\n",
			ie.Offset, ie.StoredSize, ie.DecompressedSize, ie.Kind, ie.Checksum, ie.Name)
	}

	fmt.Fprintf(out, "\nTotal: %d entries, %s stored, %s decompressed\n",
		summary.Entries,
		formatBytes(int64(summary.StoredBytes), 2),
		formatBytes(int64(summary.DecompressedBytes), 2))
	fmt.Fprintf(out, "Folders: %s\n", joinOrNone(summary.Folders))
	return summary, nil
}
