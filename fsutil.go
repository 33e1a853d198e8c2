package layerconf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnsurePath ensures the directories for a file path exist and the path
// does not already exist as a directory.
func EnsurePath(p string) error {
	info, err := os.Stat(p)
	switch {
	case err == nil:
		if info.IsDir() {
			return ErrInaccessiblePath
		}
		return nil
	case !errors.Is(err, os.ErrNotExist):
		return ErrInaccessiblePath
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return ErrCannotCreateDirectories
	}
	return nil
}

// writeFileAtomic writes data next to path and renames it into place, so
// readers never observe a partially written file. The temporary file is
// removed on every failure path.
func writeFileAtomic(path string, data []byte) error {
	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".layerconf-*"+filepath.Ext(path))
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())
	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("%w %s: %w", ErrWrite, path, err)
	}
	if err := tmpFile.Chmod(perm); err != nil {
		tmpFile.Close()
		return fmt.Errorf("%w %s: %w", ErrWrite, path, err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpFile.Name(), path); err != nil {
		return fmt.Errorf("rename temp file to %s: %w", path, err)
	}
	return nil
}

// encode runs the codec, turning encoder panics into ErrFormat.
func encode(c codec, m *Mapping, format Format) (data []byte, retErr error) {
	defer func() {
		if r := recover(); r != nil {
			retErr = fmt.Errorf("%w as %s: %v", ErrFormat, format, r)
		}
	}()
	data, err := c.encode(m)
	if err != nil {
		if errors.Is(err, ErrInvalidKeyShape) || errors.Is(err, ErrUnsupportedOperation) {
			return nil, err
		}
		return nil, fmt.Errorf("%w as %s: %w", ErrFormat, format, err)
	}
	return data, nil
}

// expandHome replaces a leading "~" with the user's home directory.
func expandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") && !strings.HasPrefix(p, `~\`) {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoConfigDir, err)
	}
	return filepath.Join(home, p[1:]), nil
}
