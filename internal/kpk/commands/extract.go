// Package commands contains the command-line operations of the kpk application.
package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gingerrexayers/kpk-go/internal/kpk/lib"
	log "github.com/rs/zerolog/log"
)

// ExtractResult summarizes an extraction.
type ExtractResult struct {
	Extracted int
	Failed    []string // entries skipped under ContinueOnError
}

// safeJoin maps an archive entry name to a path inside outDir, rejecting
// names that would escape it.
func safeJoin(outDir, name string) (string, error) {
	rel := lib.FromArchiveName(name)
	if rel == "" || filepath.IsAbs(rel) || filepath.VolumeName(rel) != "" {
		return "", fmt.Errorf("%w: unsafe entry name %q", lib.ErrFormat, name)
	}
	clean := filepath.Clean(rel)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: unsafe entry name %q", lib.ErrFormat, name)
	}
	return filepath.Join(outDir, clean), nil
}

// Extract is the main function for the 'extract' command. It decodes every
// entry of the archive, in order, into outDir.
func Extract(archivePath, outDir string, opts lib.Options) (ExtractResult, error) {
	opts = opts.WithDefaults()
	var result ExtractResult

	absOutDir, err := filepath.Abs(outDir)
	if err != nil {
		return result, fmt.Errorf("could not resolve output path: %w", err)
	}

	entries, err := lib.OpenEntries(archivePath)
	if err != nil {
		return result, err
	}
	defer entries.Close()

	if err := os.MkdirAll(absOutDir, 0755); err != nil {
		return result, fmt.Errorf("failed to create output directory: %w", err)
	}

	fmt.Fprintf(opts.Out, "📦 Extracting \"%s\" to \"%s\"...\n", archivePath, absOutDir)

	for {
		entry, offset, err := entries.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return result, fmt.Errorf("read entry at offset %d: %w", offset, err)
		}

		dest, err := safeJoin(absOutDir, entry.Name)
		if err != nil {
			return result, err
		}

		data, err := lib.DecodeEntry(entry, opts.Strict)
		if err != nil {
			if opts.ContinueOnError && (errors.Is(err, lib.ErrCodec) || errors.Is(err, lib.ErrChecksum)) {
				log.Warn().Err(err).Int64("offset", offset).Msg("skipping entry")
				result.Failed = append(result.Failed, entry.Name)
				continue
			}
			return result, err
		}

		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return result, err
		}
		if err := os.WriteFile(dest, data, 0644); err != nil {
			return result, fmt.Errorf("failed to write file %s: %w", dest, err)
		}

		result.Extracted++
		if result.Extracted%500 == 0 {
			log.Info().Msgf("extracted %d entries...", result.Extracted)
		}
	}

	fmt.Fprintf(opts.Out, "✅ Extract complete: %d files\n", result.Extracted)
	if len(result.Failed) > 0 {
		fmt.Fprintf(opts.Out, "   - %d entries failed to decode and were skipped\n", len(result.Failed))
	}
	return result, nil
}
