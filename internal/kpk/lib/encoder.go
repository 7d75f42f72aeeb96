package lib

import (
	"context"
	"fmt"
	"os"

	"github.com/gingerrexayers/kpk-go/internal/kpk/types"
	"golang.org/x/sync/errgroup"
)

// EncodeFile reads a source file and encodes it into an entry.
func EncodeFile(src SourceFile) (types.Entry, error) {
	raw, err := os.ReadFile(src.Path)
	if err != nil {
		return types.Entry{}, err
	}
	return Encode(src.Name, raw)
}

// EncodeFiles encodes files with up to workers goroutines and hands the
// resulting entries to emit strictly in the order of files. At most
// workers entries are held in memory at once.
func EncodeFiles(ctx context.Context, files []SourceFile, workers int, emit func(int, types.Entry) error) error {
	if workers < 1 {
		workers = 1
	}

	for start := 0; start < len(files); start += workers {
		end := start + workers
		if end > len(files) {
			end = len(files)
		}

		batch := make([]types.Entry, end-start)
		eg, egCtx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			eg.Go(func() error {
				if err := egCtx.Err(); err != nil {
					return err
				}
				e, err := EncodeFile(files[i])
				if err != nil {
					return fmt.Errorf("encode %s: %w", files[i].Path, err)
				}
				batch[i-start] = e
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return err
		}

		for j, e := range batch {
			if err := emit(start+j, e); err != nil {
				return err
			}
			batch[j] = types.Entry{}
		}
	}
	return nil
}
