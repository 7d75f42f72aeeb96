package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/gingerrexayers/kpk-go/internal/kpk/lib"
	"github.com/gingerrexayers/kpk-go/internal/kpk/types"
	log "github.com/rs/zerolog/log"
)

// repackJob is everything computed before the archive is touched.
type repackJob struct {
	plan     types.RepackPlan
	index    []types.IndexEntry
	drop     map[string]bool  // modified and deleted names, skipped during compaction
	toAppend []lib.SourceFile // modified and added files, sorted by name
}

// managedPrefixes turns folder names into sorted, de-duplicated archive prefixes.
func managedPrefixes(folders []string) []string {
	seen := make(map[string]bool)
	var prefixes []string
	for _, folder := range folders {
		p := lib.FolderPrefix(folder)
		if p == lib.NameSeparator || seen[p] {
			continue
		}
		seen[p] = true
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)
	return prefixes
}

// sameContent reports whether a local file matches every archive record
// carrying its name. Only size and CRC-32 are compared.
func sameContent(src lib.SourceFile, records []types.IndexEntry) (bool, error) {
	if len(records) != 1 {
		return false, nil
	}
	crc, size, err := lib.FileChecksum(src.Path)
	if err != nil {
		return false, fmt.Errorf("checksum %s: %w", src.Path, err)
	}
	r := records[0]
	return r.DecompressedSize == uint64(size) && r.Checksum == crc, nil
}

// planRepack scans the archive and the patch directory and computes the diff.
// Nothing is written.
func planRepack(archivePath, patchDir string, folders []string, opts lib.Options) (*repackJob, error) {
	absPatchDir, err := filepath.Abs(patchDir)
	if err != nil {
		return nil, fmt.Errorf("could not resolve absolute path for %s: %w", patchDir, err)
	}

	info, err := os.Stat(archivePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: archive %s", lib.ErrMissingInput, archivePath)
		}
		return nil, err
	}

	log.Info().Msgf("scanning archive index (%s)...", formatBytes(info.Size(), 2))
	index, err := lib.Scan(archivePath)
	if err != nil {
		return nil, err
	}

	ignore := lib.LoadIgnoreMatcher(absPatchDir, opts.IgnoreFile)
	files, err := lib.CollectSourceFiles(absPatchDir, folders, ignore)
	if err != nil {
		return nil, err
	}
	local := make(map[string]lib.SourceFile, len(files))
	for _, f := range files {
		local[f.Name] = f
	}

	prefixes := managedPrefixes(folders)
	job := &repackJob{
		index: index,
		drop:  make(map[string]bool),
		plan: types.RepackPlan{
			ArchivePath:  archivePath,
			ArchiveSize:  info.Size(),
			Prefixes:     prefixes,
			TotalEntries: len(index),
		},
	}

	managedOld := make(map[string][]types.IndexEntry)
	var managedNames []string
	for _, ie := range index {
		if !lib.HasAnyPrefix(ie.Name, prefixes) {
			job.plan.Preserved++
			continue
		}
		if _, ok := managedOld[ie.Name]; !ok {
			managedNames = append(managedNames, ie.Name)
		}
		managedOld[ie.Name] = append(managedOld[ie.Name], ie)
	}
	sort.Strings(managedNames)

	for _, name := range managedNames {
		src, ok := local[name]
		if !ok {
			job.plan.Deleted = append(job.plan.Deleted, name)
			job.drop[name] = true
			continue
		}
		if opts.SkipUnchanged {
			same, err := sameContent(src, managedOld[name])
			if err != nil {
				return nil, err
			}
			if same {
				job.plan.Unchanged = append(job.plan.Unchanged, name)
				continue
			}
		}
		job.plan.Modified = append(job.plan.Modified, name)
		job.drop[name] = true
	}

	for _, f := range files {
		if _, ok := managedOld[f.Name]; !ok {
			job.plan.Added = append(job.plan.Added, f.Name)
			job.toAppend = append(job.toAppend, f)
		} else if job.drop[f.Name] {
			job.toAppend = append(job.toAppend, f)
		}
	}

	return job, nil
}

// PlanRepack computes what Repack would do without touching the archive.
func PlanRepack(archivePath, patchDir string, folders []string, opts lib.Options) (types.RepackPlan, error) {
	opts = opts.WithDefaults()
	job, err := planRepack(archivePath, patchDir, folders, opts)
	if err != nil {
		return types.RepackPlan{}, err
	}
	return job.plan, nil
}

// Repack is the main function for the 'repack' command. It replaces the
// entries under the managed folders of an existing archive with the files
// found under the same folders of patchDir, mutating the archive in place:
//
//  1. retained entries are compacted towards the start of the file,
//     keeping their relative order;
//  2. modified and added entries are appended in sorted name order;
//  3. the file is truncated to the new end.
//
// Every managed name found on both sides counts as modified and is
// rewritten; opts.SkipUnchanged leaves entries with identical content in
// place instead. The operation is not crash-safe. It returns ErrNoChange when the diff is
// empty and ErrCancelled when opts.Confirm declines the plan; in both cases
// the archive is untouched.
func Repack(ctx context.Context, archivePath, patchDir string, folders []string, opts lib.Options) (types.RepackPlan, error) {
	opts = opts.WithDefaults()

	job, err := planRepack(archivePath, patchDir, folders, opts)
	if err != nil {
		return types.RepackPlan{}, err
	}
	plan := job.plan

	printPlan(opts.Out, plan)

	if plan.Empty() {
		fmt.Fprintln(opts.Out, "No changes, archive left untouched.")
		return plan, lib.ErrNoChange
	}

	if opts.Confirm != nil {
		ok, err := opts.Confirm(plan)
		if err != nil {
			return plan, fmt.Errorf("confirmation failed: %w", err)
		}
		if !ok {
			fmt.Fprintln(opts.Out, "Cancelled.")
			return plan, lib.ErrCancelled
		}
	}

	if opts.Backup {
		backupPath := archivePath + ".bak"
		fmt.Fprintf(opts.Out, "   - Backing up archive to \"%s\"...\n", backupPath)
		if err := lib.CopyFile(archivePath, backupPath); err != nil {
			return plan, fmt.Errorf("failed to back up archive: %w", err)
		}
	}

	newSize, count, err := applyRepack(ctx, job, opts)
	if err != nil {
		return plan, fmt.Errorf("repack of %s failed, the archive may be corrupt: %w", archivePath, err)
	}

	diff := newSize - plan.ArchiveSize
	sign := "+"
	if diff < 0 {
		sign, diff = "-", -diff
	}
	fmt.Fprintln(opts.Out, "✅ Repack complete!")
	fmt.Fprintf(opts.Out, "   - Original size: %s\n", formatBytes(plan.ArchiveSize, 2))
	fmt.Fprintf(opts.Out, "   - New size:      %s\n", formatBytes(newSize, 2))
	fmt.Fprintf(opts.Out, "   - Change:        %s%s\n", sign, formatBytes(diff, 2))
	fmt.Fprintf(opts.Out, "   - Entries:       %d\n", count)
	return plan, nil
}

// applyRepack performs compaction, append and truncation on the open archive
// and returns its new size and entry count.
func applyRepack(ctx context.Context, job *repackJob, opts lib.Options) (int64, int, error) {
	f, err := os.OpenFile(job.plan.ArchivePath, os.O_RDWR, 0)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	// Compaction: cursor only grows by the length of kept records while
	// offsets strictly increase, so cursor <= offset always holds and every
	// copy moves data towards the start of the file.
	cursor := lib.SignatureLen
	var kept int
	var moved int64
	for _, ie := range job.index {
		if job.drop[ie.Name] {
			continue
		}
		if cursor < ie.Offset {
			if err := lib.CopyWithin(f, ie.Offset, cursor, ie.Length, opts.ChunkSize); err != nil {
				return 0, 0, fmt.Errorf("move %s: %w", ie.Name, err)
			}
			moved += ie.Length
		}
		cursor += ie.Length
		kept++
		if kept%2000 == 0 {
			log.Info().Msgf("compacted %d entries (%s moved)...", kept, formatBytes(moved, 2))
		}
	}
	log.Info().Int("kept", kept).Int64("moved", moved).Msg("compaction done")

	// Append modified and added entries.
	w := bufio.NewWriterSize(io.NewOffsetWriter(f, cursor), 1<<20)
	err = lib.EncodeFiles(ctx, job.toAppend, opts.Workers, func(i int, e types.Entry) error {
		n, err := lib.WriteEntry(w, e)
		cursor += n
		if err != nil {
			return err
		}
		if (i+1)%500 == 0 {
			log.Info().Msgf("appended %d/%d...", i+1, len(job.toAppend))
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	if err := w.Flush(); err != nil {
		return 0, 0, err
	}

	// Drop whatever is left of the old, longer archive.
	if err := f.Truncate(cursor); err != nil {
		return 0, 0, fmt.Errorf("truncate: %w", err)
	}
	if err := f.Sync(); err != nil {
		return 0, 0, err
	}
	return cursor, kept + len(job.toAppend), nil
}

// printPlan writes the pre-mutation summary of a repack.
func printPlan(out io.Writer, plan types.RepackPlan) {
	rule := "=============================================================="
	fmt.Fprintln(out, rule)
	fmt.Fprintf(out, "  Archive:            %s\n", plan.ArchivePath)
	fmt.Fprintf(out, "  Size:               %s\n", formatBytes(plan.ArchiveSize, 2))
	fmt.Fprintf(out, "  Managed prefixes:   %s\n", joinOrNone(plan.Prefixes))
	fmt.Fprintf(out, "  Total entries:      %d\n", plan.TotalEntries)
	fmt.Fprintf(out, "  Preserved:          %d\n", plan.Preserved)
	fmt.Fprintf(out, "  Unchanged managed:  %d\n", len(plan.Unchanged))
	fmt.Fprintln(out, "  ------------------------------------------")
	fmt.Fprintf(out, "  Modified:           %d\n", len(plan.Modified))
	fmt.Fprintf(out, "  Deleted:            %d\n", len(plan.Deleted))
	fmt.Fprintf(out, "  Added:              %d\n", len(plan.Added))
	fmt.Fprintln(out, rule)

	showList(out, "Modified", plan.Modified, 15)
	showList(out, "Deleted", plan.Deleted, 15)
	showList(out, "Added", plan.Added, 15)
}

func showList(out io.Writer, title string, names []string, limit int) {
	if len(names) == 0 {
		return
	}
	fmt.Fprintf(out, "\n  [%s]\n", title)
	for i, name := range names {
		if i == limit {
			fmt.Fprintf(out, "    ... and %d more\n", len(names)-limit)
			break
		}
		fmt.Fprintf(out, "    %s\n", name)
	}
}
