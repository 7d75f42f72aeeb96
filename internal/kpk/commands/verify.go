package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/gingerrexayers/kpk-go/internal/kpk/lib"
	log "github.com/rs/zerolog/log"
)

// VerifyResult lists the entries that failed verification.
type VerifyResult struct {
	Checked int
	Failed  []string
}

// Verify is the main function for the 'verify' command. It decodes every
// entry and checks its CRC-32 against the stored checksum. Unlike Extract,
// it keeps going after a bad entry and reports all of them.
func Verify(archivePath string, opts lib.Options) (VerifyResult, error) {
	opts = opts.WithDefaults()
	var result VerifyResult

	entries, err := lib.OpenEntries(archivePath)
	if err != nil {
		return result, err
	}
	defer entries.Close()

	fmt.Fprintf(opts.Out, "🔍 Verifying \"%s\"...\n", archivePath)

	for {
		entry, offset, err := entries.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return result, fmt.Errorf("read entry at offset %d: %w", offset, err)
		}
		result.Checked++

		if _, err := lib.DecodeEntry(entry, true); err != nil {
			if !errors.Is(err, lib.ErrCodec) && !errors.Is(err, lib.ErrChecksum) {
				return result, err
			}
			log.Debug().Err(err).Int64("offset", offset).Msg("verification failed")
			fmt.Fprintf(opts.Out, "   ✗ %s: %v\n", entry.Name, err)
			result.Failed = append(result.Failed, entry.Name)
		}
	}

	if len(result.Failed) > 0 {
		return result, fmt.Errorf("%w: %d of %d entries failed verification",
			lib.ErrChecksum, len(result.Failed), result.Checked)
	}
	fmt.Fprintf(opts.Out, "✅ All %d entries verified.\n", result.Checked)
	return result, nil
}
