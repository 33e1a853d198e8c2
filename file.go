package layerconf

import (
	"errors"
	"fmt"
	"os"
	
	"github.com/ygrebnov/layerconf/streams"
)

// DefaultLevel is the level of a file declared without one. It cannot be
// declared explicitly.
const DefaultLevel = "__default__"

// Backend is the capability set shared by a single config file and a
// layered Config.
type Backend interface {
	Read(key string) (ReadResult, error)
	ReadRaw(key string) (ReadResult, error)
	Write(key string, value any) error
	WriteMany(keys []string, values []any) error
	Unset(key string) error
}

// FileOptions configures OpenFile. Zero values pick the defaults: format
// from the extension, DefaultSeparator, DefaultLevel, no notices.
type FileOptions struct {
	Level       string
	Format      Format
	DefaultFile string
	Separator   string
	Verbose     bool
	Streams     streams.IOStreams
}

// File is one physical configuration file. Each operation re-reads the file,
// and every change rewrites it completely through a temporary file.
type File struct {
	path        string
	level       string
	format      Format
	codec       codec
	defaultFile string
	separator   string
	verbose     bool
	streams     streams.IOStreams
}

// OpenFile returns a File for path. When path does not exist it is created as
// a byte-for-byte copy of o.DefaultFile; without a usable default OpenFile
// fails with ErrMissingSource.
func OpenFile(path string, o FileOptions) (*File, error) {
	format := o.Format
	if format == "" {
		var err error
		if format, err = DetectFormat(path); err != nil {
			return nil, err
		}
	}
	sep := o.Separator
	if sep == "" {
		sep = DefaultSeparator
	}
	c, err := codecFor(format, sep)
	if err != nil {
		return nil, err
	}
	level := o.Level
	if level == "" {
		level = DefaultLevel
	}
	f := &File{
		path:        path,
		level:       level,
		format:      format,
		codec:       c,
		defaultFile: o.DefaultFile,
		separator:   sep,
		verbose:     o.Verbose,
		streams:     o.Streams,
	}
	if !f.Exists() {
		if err := f.bootstrap(); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (f *File) Path() string      { return f.path }
func (f *File) Level() string     { return f.level }
func (f *File) Format() Format    { return f.format }
func (f *File) Separator() string { return f.separator }
func (f *File) String() string    { return f.path }

// Exists reports whether the file is present on disk.
func (f *File) Exists() bool {
	_, err := os.Stat(f.path)
	return err == nil
}

func (f *File) bootstrap() error {
	if f.defaultFile == "" {
		return fmt.Errorf("%w: %s", ErrMissingSource, f.path)
	}
	data, err := os.ReadFile(f.defaultFile)
	if err != nil {
		return fmt.Errorf("%w: %s (default %s: %w)", ErrMissingSource, f.path, f.defaultFile, err)
	}
	if err := EnsurePath(f.path); err != nil {
		return errors.Join(ErrEnsureConfigDir, err)
	}
	if err := writeFileAtomic(f.path, data); err != nil {
		return err
	}
	if f.verbose {
		streams.Notify(f.streams, "layerconf: created %s from default %s", f.path, f.defaultFile)
	}
	return nil
}

// load parses the file. A missing file loads as nil.
func (f *File) load() (*Mapping, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	m, err := f.codec.decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrParse, f.path, err)
	}
	return m, nil
}

// Read resolves key (the whole file when empty) and flattens a resulting
// mapping. A key that cannot be resolved, including in a missing file,
// yields a *KeyNotFoundError; the whole-file read of a missing file yields
// nil data.
func (f *File) Read(key string) (ReadResult, error) {
	return f.read(key, true)
}

// ReadRaw is Read without flattening.
func (f *File) ReadRaw(key string) (ReadResult, error) {
	return f.read(key, false)
}

func (f *File) read(key string, flatten bool) (ReadResult, error) {
	data, err := f.load()
	if err != nil {
		return ReadResult{}, err
	}
	v, err := Resolve(f.codec.canonicalKey(key, f.separator), f.separator, data)
	if err != nil {
		return ReadResult{}, err
	}
	if m, ok := v.(*Mapping); ok && flatten {
		v = Flatten(m, f.separator)
	}
	return ReadResult{Data: v, Key: key, Separator: f.separator}, nil
}

// Write stores value under key, keeping the rest of the file.
func (f *File) Write(key string, value any) error {
	return f.WriteMany([]string{key}, []any{value})
}

// WriteMany stores values[i] under keys[i] in a single rewrite.
func (f *File) WriteMany(keys []string, values []any) error {
	if f.codec.readOnly() {
		return fmt.Errorf("%w: %s files are read-only", ErrUnsupportedOperation, f.format)
	}
	if len(keys) != len(values) {
		return fmt.Errorf("%w (%d vs %d)", ErrArityMismatch, len(keys), len(values))
	}
	data, err := f.load()
	if err != nil {
		return err
	}
	if data == nil {
		data = NewMapping()
	}
	for i, k := range keys {
		if k == "" {
			return fmt.Errorf("%w: empty key", ErrInvalidKeyShape)
		}
		segs := splitKey(f.codec.canonicalKey(k, f.separator), f.separator)
		if err := f.codec.set(data, segs, values[i]); err != nil {
			return fmt.Errorf("write %q to %s: %w", k, f.path, err)
		}
	}
	return f.save(f.path, data)
}

// Unset removes exactly the entry whose flattened key is key. The rest of
// the file is rewritten as decoded, through a temporary file in the same
// directory, so a failure leaves the original untouched.
func (f *File) Unset(key string) error {
	if f.codec.readOnly() {
		return fmt.Errorf("%w: %s files are read-only", ErrUnsupportedOperation, f.format)
	}
	data, err := f.load()
	if err != nil {
		return err
	}
	if !removeLeaf(data, f.codec.canonicalKey(key, f.separator), f.separator) {
		return keyNotFound(key)
	}
	return f.save(f.path, data)
}

func (f *File) save(path string, m *Mapping) error {
	data, err := encode(f.codec, m, f.format)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}

var _ Backend = (*File)(nil)
