package layerconf

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// AppDir returns the per-user config directory of app. XDG_CONFIG_HOME is
// preferred when set, then os.UserConfigDir. On systems other than Windows
// and macOS the app name is lower-cased with whitespace runs replaced by
// dashes. With forcePosix the directory is ~/.<app>.
func AppDir(app string, forcePosix bool) (string, error) {
	if forcePosix {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrNoConfigDir, err)
		}
		return filepath.Join(home, "."+posixify(app)), nil
	}
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		var err error
		if base, err = os.UserConfigDir(); err != nil {
			return "", fmt.Errorf("%w: %w", ErrNoConfigDir, err)
		}
	}
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		return filepath.Join(base, app), nil
	}
	return filepath.Join(base, posixify(app)), nil
}

func posixify(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), "-"))
}

func (c *Config) resolvePath(spec FileSpec) (string, error) {
	name, err := expandHome(spec.Name)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(name) {
		return filepath.Clean(name), nil
	}
	if spec.Dir != "" {
		dir, err := expandHome(spec.Dir)
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, name), nil
	}
	if filepath.Base(name) != name {
		return filepath.Abs(name)
	}
	if c.appName == "" {
		return "", fmt.Errorf("%w for %s: set Dir or use WithAppName", ErrNoConfigDir, name)
	}
	dir, err := AppDir(c.appName, c.forcePosix)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}
