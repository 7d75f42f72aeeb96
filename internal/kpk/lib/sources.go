package lib

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// SourceFile is a file on disk destined to become an archive entry.
type SourceFile struct {
	Name string // archive entry name, backslash separated
	Path string // absolute path on disk
}

// CollectSourceFiles walks each top-level folder under baseDir and returns
// its regular files, and symlinks to regular files, sorted by entry name.
// Names are relative to baseDir.
// A folder that does not exist is a missing-input error.
func CollectSourceFiles(baseDir string, folders []string, ignore *IgnoreMatcher) ([]SourceFile, error) {
	seen := make(map[string]bool)
	var files []SourceFile

	for _, folder := range folders {
		root := filepath.Join(baseDir, filepath.FromSlash(folder))
		info, err := os.Stat(root)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: folder %s", ErrMissingInput, root)
			}
			return nil, err
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%w: %s is not a directory", ErrMissingInput, root)
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			rel, err := filepath.Rel(baseDir, path)
			if err != nil {
				return err
			}

			if path != root && ignore.Ignored(rel, d.IsDir()) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if d.IsDir() {
				return nil
			}
			if d.Type()&fs.ModeSymlink != 0 {
				// Symlinks to regular files are packed as their target.
				target, err := os.Stat(path)
				if err != nil || !target.Mode().IsRegular() {
					return nil
				}
			} else if !d.Type().IsRegular() {
				return nil
			}

			name := ToArchiveName(rel)
			if seen[name] {
				return nil
			}
			seen[name] = true
			files = append(files, SourceFile{Name: name, Path: path})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}
	}

	// Byte-wise ordering of names determines archive layout.
	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})
	return files, nil
}
