package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gingerrexayers/kpk-go/internal/kpk/lib"
	"github.com/gingerrexayers/kpk-go/internal/kpk/types"
	log "github.com/rs/zerolog/log"
)

// Pack is the main function for the 'pack' command. It builds a new archive
// at outPath from every file under the given top-level folders of sourceDir,
// replacing any existing file. Entries are written in sorted name order.
func Pack(ctx context.Context, sourceDir string, folders []string, outPath string, opts lib.Options) (int, error) {
	opts = opts.WithDefaults()

	absSourceDir, err := filepath.Abs(sourceDir)
	if err != nil {
		return 0, fmt.Errorf("could not resolve absolute path for %s: %w", sourceDir, err)
	}
	if _, err := os.Stat(absSourceDir); os.IsNotExist(err) {
		return 0, fmt.Errorf("%w: source directory %s", lib.ErrMissingInput, absSourceDir)
	}

	ignore := lib.LoadIgnoreMatcher(absSourceDir, opts.IgnoreFile)
	files, err := lib.CollectSourceFiles(absSourceDir, folders, ignore)
	if err != nil {
		return 0, err
	}

	fmt.Fprintf(opts.Out, "📦 Packing %d files from \"%s\" into \"%s\"...\n", len(files), absSourceDir, outPath)

	if dir := filepath.Dir(outPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return 0, fmt.Errorf("create output directory: %w", err)
		}
	}
	out, err := os.Create(outPath)
	if err != nil {
		return 0, fmt.Errorf("create output: %w", err)
	}
	defer out.Close()

	w := bufio.NewWriterSize(out, 1<<20)
	if err := lib.WriteSignature(w); err != nil {
		return 0, err
	}

	var total int64 = lib.SignatureLen
	err = lib.EncodeFiles(ctx, files, opts.Workers, func(i int, e types.Entry) error {
		n, err := lib.WriteEntry(w, e)
		total += n
		if err != nil {
			return err
		}
		if (i+1)%500 == 0 {
			log.Info().Msgf("packed %d/%d...", i+1, len(files))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if err := w.Flush(); err != nil {
		return 0, err
	}
	if err := out.Sync(); err != nil {
		return 0, err
	}

	fmt.Fprintf(opts.Out, "✅ Pack complete: %d files, %s\n", len(files), formatBytes(total, 2))
	return len(files), nil
}
