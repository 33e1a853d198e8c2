package layerconf

import (
	"errors"
	"fmt"

	"github.com/ygrebnov/layerconf/streams"
)

// Config is an ordered stack of config files, one per level. Reads walk the
// levels in declared order and the first file holding the key wins. Writes
// and unsets target one level, the first declared unless another is named.
type Config struct {
	files      []*File
	separator  string
	appName    string
	forcePosix bool
	verbose    bool
	streams    streams.IOStreams
}

// Option configures a Config at construction time.
type Option func(*Config)

// WithSeparator sets the string joining key segments. Panics if sep is empty.
func WithSeparator(sep string) Option {
	return func(c *Config) {
		if sep == "" {
			panic("layerconf: WithSeparator: separator cannot be empty")
		}
		c.separator = sep
	}
}

// WithAppName enables declaring files by bare name: they are placed in the
// user config directory of app (see AppDir). Panics if app is empty.
func WithAppName(app string) Option {
	return func(c *Config) {
		if app == "" {
			panic("layerconf: WithAppName: app cannot be empty")
		}
		c.appName = app
	}
}

// WithForcePosix places app directories at ~/.<app> instead of the platform
// config directory.
func WithForcePosix() Option {
	return func(c *Config) {
		c.forcePosix = true
	}
}

// WithVerbose toggles notices such as the creation of a file from its
// default. Verbose is on by default; notices need WithStreams to show up.
func WithVerbose(v bool) Option {
	return func(c *Config) {
		c.verbose = v
	}
}

// WithStreams wires user-facing message streams. Pass adapters from the
// streams package to route output to buffers, logs, or io.Discard.
func WithStreams(s streams.IOStreams) Option {
	return func(c *Config) {
		c.streams = s
	}
}

// New opens every declared file in order. Files missing on disk are created
// from their Default; see FileSpec for the declaration rules.
func New(files []FileSpec, opts ...Option) (*Config, error) {
	c := &Config{separator: DefaultSeparator, verbose: true}
	for _, opt := range opts {
		opt(c)
	}
	if err := validateSpecs(files); err != nil {
		return nil, err
	}
	for _, spec := range files {
		f, err := c.open(spec)
		if err != nil {
			return nil, err
		}
		c.files = append(c.files, f)
	}
	return c, nil
}

// NewSingle declares one file at DefaultLevel.
func NewSingle(name string, opts ...Option) (*Config, error) {
	return New([]FileSpec{{Name: name}}, opts...)
}

func (c *Config) open(spec FileSpec) (*File, error) {
	path, err := c.resolvePath(spec)
	if err != nil {
		return nil, err
	}
	var format Format
	if spec.Type != "" {
		if format, err = ParseFormat(spec.Type); err != nil {
			return nil, err
		}
	}
	def := spec.Default
	if def != "" {
		if def, err = expandHome(def); err != nil {
			return nil, err
		}
	}
	return OpenFile(path, FileOptions{
		Level:       spec.Level,
		Format:      format,
		DefaultFile: def,
		Separator:   c.separator,
		Verbose:     c.verbose,
		Streams:     c.streams,
	})
}

// Levels returns the level names in declared order.
func (c *Config) Levels() []string {
	out := make([]string, len(c.files))
	for i, f := range c.files {
		out[i] = f.Level()
	}
	return out
}

// FileNames returns the resolved file paths in declared order.
func (c *Config) FileNames() []string {
	out := make([]string, len(c.files))
	for i, f := range c.files {
		out[i] = f.Path()
	}
	return out
}

// Files returns the files in declared order.
func (c *Config) Files() []*File {
	out := make([]*File, len(c.files))
	copy(out, c.files)
	return out
}

func (c *Config) Separator() string { return c.separator }

// ByLevel returns the file declared with level.
func (c *Config) ByLevel(level string) (*File, error) {
	for _, f := range c.files {
		if f.Level() == level {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrLevelNotFound, level)
}

// target picks the file for a mutation; an empty level means the first
// declared file.
func (c *Config) target(level string) (*File, error) {
	if level == "" {
		return c.files[0], nil
	}
	return c.ByLevel(level)
}

// Read returns the value of key from the first level holding it, or one
// whole (flattened) structure per level when key is empty.
func (c *Config) Read(key string) (ReadResult, error) {
	return c.read(key, true)
}

// ReadRaw is Read without flattening.
func (c *Config) ReadRaw(key string) (ReadResult, error) {
	return c.read(key, false)
}

func (c *Config) read(key string, flatten bool) (ReadResult, error) {
	if key == "" {
		data := make([]any, 0, len(c.files))
		for _, f := range c.files {
			r, err := f.read("", flatten)
			if err != nil {
				return ReadResult{}, err
			}
			if r.Data == nil && c.verbose && !f.Exists() {
				streams.Warn(c.streams, "layerconf: skipping level %s, %s does not exist", f.Level(), f.Path())
			}
			data = append(data, r.Data)
		}
		return ReadResult{Data: data, Separator: c.separator}, nil
	}
	for _, f := range c.files {
		r, err := f.read(key, flatten)
		if err == nil {
			return r, nil
		}
		if !errors.Is(err, ErrKeyNotFound) {
			return ReadResult{}, err
		}
	}
	return ReadResult{}, keyNotFound(key)
}

// Write stores value under key in the first declared level.
func (c *Config) Write(key string, value any) error {
	return c.WriteLevel("", key, value)
}

// WriteMany stores values under keys in the first declared level.
func (c *Config) WriteMany(keys []string, values []any) error {
	return c.WriteManyLevel("", keys, values)
}

// Unset removes key from the first declared level.
func (c *Config) Unset(key string) error {
	return c.UnsetLevel("", key)
}

// WriteLevel stores value under key in the file of level.
func (c *Config) WriteLevel(level, key string, value any) error {
	f, err := c.target(level)
	if err != nil {
		return err
	}
	return f.Write(key, value)
}

// WriteManyLevel stores values under keys in the file of level.
func (c *Config) WriteManyLevel(level string, keys []string, values []any) error {
	f, err := c.target(level)
	if err != nil {
		return err
	}
	return f.WriteMany(keys, values)
}

// UnsetLevel removes key from the file of level.
func (c *Config) UnsetLevel(level, key string) error {
	f, err := c.target(level)
	if err != nil {
		return err
	}
	return f.Unset(key)
}

var _ Backend = (*Config)(nil)
