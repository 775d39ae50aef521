package probe

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"syscall"
)

// Limits and validation patterns for probe inputs.
const (
	// maxFileReadBytes is the maximum number of bytes read from any file (10 MB).
	maxFileReadBytes int64 = 10 * 1024 * 1024

	// maxNameLength is the maximum allowed length for package/service/module names.
	maxNameLength = 256
)

var (
	namePattern      = regexp.MustCompile(`^[a-zA-Z0-9_@.\-]+$`)
	sysctlKeyPattern = regexp.MustCompile(`^[a-zA-Z0-9_.]+$`)
)

// ValidatePath checks that a file path is safe to operate on.
// Rejects path traversal sequences and non-absolute paths.
func ValidatePath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path must not be empty")
	}

	if !filepath.IsAbs(path) {
		return "", fmt.Errorf("path must be absolute, got %q", path)
	}

	// Inspect the raw path: Clean collapses ".." segments in absolute
	// paths, which would hide the traversal attempt.
	for _, part := range strings.Split(path, string(filepath.Separator)) {
		if part == ".." {
			return "", fmt.Errorf("path traversal (..) not allowed in %q", path)
		}
	}

	return filepath.Clean(path), nil
}

// ReadFileLimited reads a regular file with safety checks:
//   - path traversal prevention
//   - follows symlinks (system files like /etc/os-release are commonly symlinks)
//   - regular-file-only after resolution (no devices, pipes, sockets)
//   - bounded read (maxFileReadBytes)
//
// Uses open-then-fstat to avoid TOCTOU races between stat and open.
func ReadFileLimited(path string) ([]byte, error) {
	cleaned, err := ValidatePath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(cleaned)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		return nil, fmt.Errorf("cannot open file %q: %w", cleaned, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("cannot stat file %q: %w", cleaned, err)
	}

	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("refusing to read non-regular file %q (mode: %s)", cleaned, info.Mode().Type())
	}

	if info.Size() > maxFileReadBytes {
		return nil, fmt.Errorf("file %q too large: %d bytes (max: %d)", cleaned, info.Size(), maxFileReadBytes)
	}

	limited := io.LimitReader(f, maxFileReadBytes+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("error reading file %q: %w", cleaned, err)
	}

	if int64(len(data)) > maxFileReadBytes {
		return nil, fmt.Errorf("file %q exceeded size limit during read", cleaned)
	}

	return data, nil
}

// FileStat describes the ownership and permission bits of a file.
type FileStat struct {
	Mode os.FileMode // permission bits only
	UID  uint32
	GID  uint32
}

// StatFile returns the permission bits and ownership of a file,
// following symlinks.
func StatFile(path string) (FileStat, error) {
	cleaned, err := ValidatePath(path)
	if err != nil {
		return FileStat{}, err
	}

	info, err := os.Stat(cleaned)
	if err != nil {
		return FileStat{}, err
	}

	fs := FileStat{Mode: info.Mode().Perm()}
	if sys, ok := info.Sys().(*syscall.Stat_t); ok {
		fs.UID = sys.Uid
		fs.GID = sys.Gid
	}
	return fs, nil
}

// FileExists reports whether a regular file exists at path.
func FileExists(path string) bool {
	cleaned, err := ValidatePath(path)
	if err != nil {
		return false
	}
	info, err := os.Stat(cleaned)
	return err == nil && info.Mode().IsRegular()
}
