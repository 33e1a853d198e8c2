package layerconf

import (
	"context"
	"errors"
	"fmt"

	modellib "github.com/ygrebnov/model"
	"github.com/ygrebnov/model/validation"
)

// FileSpec declares one file of a Config.
//
// Name is required. It is either a path (anything with a directory part,
// "~" expanded) or a bare file name placed in Dir, or in the app directory
// when WithAppName is set. Level is required when more than one file is
// declared, must be unique, and may not be DefaultLevel. Default is the
// file copied in place when Name does not exist. Type overrides the format
// detected from the extension.
type FileSpec struct {
	Name    string `validate:"nonempty"`
	Level   string
	Default string
	Type    string
	Dir     string
}

func nonEmpty(v string, _ ...string) error {
	if v == "" {
		return errors.New("must not be empty")
	}
	return nil
}

func (s FileSpec) validate() error {
	rule, err := validation.NewRule[string]("nonempty", nonEmpty)
	if err != nil {
		return err
	}
	m, err := modellib.New(&s, modellib.WithRules[FileSpec](rule))
	if err != nil {
		return err
	}
	return m.Validate(context.Background())
}

func validateSpecs(files []FileSpec) error {
	if len(files) == 0 {
		return fmt.Errorf("%w: at least one file must be declared", ErrInvalidInput)
	}
	seen := make(map[string]struct{}, len(files))
	for i, f := range files {
		if err := f.validate(); err != nil {
			return fmt.Errorf("%w: file #%d: %w", ErrInvalidInput, i, err)
		}
		switch {
		case f.Level == DefaultLevel:
			return fmt.Errorf("%w: invalid level name %q", ErrInvalidInput, DefaultLevel)
		case f.Level == "" && len(files) > 1:
			return fmt.Errorf("%w: file %s has no level", ErrInvalidInput, f.Name)
		}
		if _, dup := seen[f.Level]; dup {
			return fmt.Errorf("%w: levels must be distinct, %q is declared twice", ErrInvalidInput, f.Level)
		}
		seen[f.Level] = struct{}{}
	}
	return nil
}
