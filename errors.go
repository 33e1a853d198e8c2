package layerconf

import (
	"errors"
	"fmt"
)

// Exported error categories returned by this package. Errors are wrapped so
// callers can detect classes using errors.Is/As.
//   - ErrKeyNotFound: a key is absent from the resolved structure.
//   - ErrInvalidKeyShape: a key does not fit the structure of a format (INI keys
//     must be "section" or "section<sep>option").
//   - ErrArityMismatch: a batched write got a different number of keys and values.
//   - ErrUnsupportedOperation: a write was attempted on a read-only format.
//   - ErrLevelNotFound: no file is declared with the requested level.
//   - ErrMissingSource: a file is absent and no usable default source is configured.
//   - ErrInvalidInput: malformed declarations, nested input to Unflatten, or
//     on-disk content that does not parse.
var (
	ErrKeyNotFound          = errors.New("key not found")
	ErrInvalidKeyShape      = errors.New("invalid key shape")
	ErrArityMismatch        = errors.New("number of keys and values do not match")
	ErrUnsupportedOperation = errors.New("unsupported operation")
	ErrLevelNotFound        = errors.New("level not found")
	ErrMissingSource        = errors.New("config file not found and no default file available")
	ErrInvalidInput         = errors.New("invalid input")
)

// File-level failures. ErrParse is an ErrInvalidInput.
var (
	ErrEnsureConfigDir           = errors.New("ensure config dir")
	ErrUnsupportedConfigFileType = errors.New("unsupported config file type")
	ErrParse                     = fmt.Errorf("%w: parse config file", ErrInvalidInput)
	ErrFormat                    = errors.New("format config")
	ErrWrite                     = errors.New("write to config file")
	ErrNoConfigDir               = errors.New("cannot determine config directory")
	ErrInaccessiblePath          = errors.New("inaccessible path")
	ErrCannotCreateDirectories   = errors.New("cannot create directories")
)

// KeyNotFoundError carries the key that could not be resolved.
// It matches ErrKeyNotFound with errors.Is.
type KeyNotFoundError struct {
	Key string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("%s: %q", ErrKeyNotFound, e.Key)
}

func (e *KeyNotFoundError) Unwrap() error { return ErrKeyNotFound }

func keyNotFound(key string) error {
	return &KeyNotFoundError{Key: key}
}
