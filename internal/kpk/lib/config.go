// Package lib contains the core, reusable services for the kpk application.
package lib

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/denormal/go-gitignore"
	"github.com/gingerrexayers/kpk-go/internal/kpk/types"
)

// --- Constants ---

// Signature is the 13-byte prefix of every archive: "KinoArchive", version 0x01, reserved 0x00.
const Signature = "KinoArchive\x01\x00"

// SignatureLen is the length of Signature in bytes.
const SignatureLen = int64(len(Signature))

// HeaderLen is the fixed size of an entry header.
const HeaderLen = 23

// NameSeparator is the path separator used inside archive entry names.
const NameSeparator = `\`

// DefaultChunkSize bounds the buffer used when moving entries inside an archive.
const DefaultChunkSize = 8 * 1024 * 1024 // 8MB

// IgnoreFilename is the name of the optional file holding gitignore-style
// patterns that exclude source files from pack and repack.
const IgnoreFilename = ".kpkignore"

// ExemptExtensions lists file extensions that are always stored without compression.
var ExemptExtensions = []string{".mp4"}

// --- Options ---

// Options carries the per-invocation configuration of an archive operation.
// A zero Options is valid; unset fields fall back to defaults.
type Options struct {
	// ChunkSize bounds per-step I/O when copying entries inside the archive.
	ChunkSize int
	// Workers is the number of goroutines encoding entries concurrently.
	Workers int
	// Strict enables CRC-32 verification of decoded content.
	Strict bool
	// ContinueOnError makes extraction skip entries that fail to decode.
	ContinueOnError bool
	// Out receives the human-readable report. Defaults to os.Stdout.
	Out io.Writer
	// Confirm gates destructive repacks. A nil Confirm approves every plan.
	Confirm func(plan types.RepackPlan) (bool, error)
	// IgnoreFile overrides IgnoreFilename. Set to "-" to disable ignore rules.
	IgnoreFile string
	// Backup copies the archive to <archive>.bak before a repack mutates it.
	Backup bool
	// SkipUnchanged keeps managed entries whose size and CRC-32 match the
	// local file in place instead of rewriting them.
	SkipUnchanged bool
}

// WithDefaults returns a copy of o with every unset field filled in.
func (o Options) WithDefaults() Options {
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.Out == nil {
		o.Out = os.Stdout
	}
	if o.IgnoreFile == "" {
		o.IgnoreFile = IgnoreFilename
	}
	return o
}

// --- Name Helpers ---

// ToArchiveName converts an OS-relative path into an archive entry name.
func ToArchiveName(rel string) string {
	return strings.ReplaceAll(filepath.ToSlash(rel), "/", NameSeparator)
}

// FromArchiveName converts an archive entry name into an OS-relative path.
func FromArchiveName(name string) string {
	return filepath.FromSlash(strings.ReplaceAll(name, NameSeparator, "/"))
}

// FolderPrefix returns the archive name prefix managed by a top-level folder.
func FolderPrefix(folder string) string {
	return ToArchiveName(strings.Trim(folder, `/\`)) + NameSeparator
}

// HasAnyPrefix reports whether name lies under one of prefixes.
func HasAnyPrefix(name string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// IsExempt reports whether a name must be stored without compression.
func IsExempt(name string) bool {
	ext := strings.ToLower(filepath.Ext(FromArchiveName(name)))
	for _, e := range ExemptExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// --- Ignore Rules ---

// IgnoreMatcher decides whether a source file is excluded from an archive.
type IgnoreMatcher struct {
	baseDir string
	matcher gitignore.GitIgnore
}

// LoadIgnoreMatcher compiles the ignore file found in baseDir. A missing file
// yields a matcher that ignores nothing. The ignore file itself never matches
// a managed folder, since it lives at the source root.
func LoadIgnoreMatcher(baseDir, filename string) *IgnoreMatcher {
	m := &IgnoreMatcher{baseDir: baseDir}
	if filename == "-" {
		return m
	}

	content, err := os.ReadFile(filepath.Join(baseDir, filename))
	if err != nil {
		return m
	}

	// Clean up the patterns: remove comments and trim whitespace.
	var patterns []string
	for _, line := range strings.Split(string(content), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		// Archive names use backslashes; accept them in patterns too.
		trimmed = strings.ReplaceAll(trimmed, `\`, "/")
		if strings.HasSuffix(trimmed, "/") && !strings.HasSuffix(trimmed, "**/") {
			trimmed += "**"
		}
		patterns = append(patterns, trimmed)
	}
	if len(patterns) == 0 {
		return m
	}

	m.matcher = gitignore.New(
		strings.NewReader(strings.Join(patterns, "\n")),
		baseDir,
		func(err gitignore.Error) bool { return false },
	)
	return m
}

// Ignored reports whether rel, a path relative to the base directory, is excluded.
func (m *IgnoreMatcher) Ignored(rel string, isDir bool) bool {
	if m == nil || m.matcher == nil {
		return false
	}
	match := m.matcher.Relative(filepath.ToSlash(rel), isDir)
	if match == nil {
		return false
	}
	return match.Ignore()
}
