// Package cli exposes a layerconf.Config as a cobra command that reads,
// writes and unsets keys.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ygrebnov/layerconf"
	"github.com/ygrebnov/layerconf/streams"
)

// ErrUsage is returned for argument combinations the command rejects.
var ErrUsage = errors.New("invalid usage")

// builtinFlags cannot be used as level names.
var builtinFlags = []string{"unset", "json", "parse", "help"}

var keyColor = color.New(color.FgCyan)

type options struct {
	unset  bool
	asJSON bool
	parse  bool
}

// NewCommand builds a command named name operating on cfg:
//
//	name                 print every entry of every level
//	name key             print the value of key
//	name key value       write value under key
//	name --unset key     remove key
//
// When cfg has more than one level, each level gets a boolean flag of the
// same name selecting the file to act on. Without one, reads walk all
// levels and changes go to the first level.
func NewCommand(cfg *layerconf.Config, name string) (*cobra.Command, error) {
	if name == "" {
		name = "config"
	}
	levels := cfg.Levels()
	multi := len(levels) > 1
	if multi {
		for _, l := range levels {
			if slices.Contains(builtinFlags, l) {
				return nil, fmt.Errorf("%w: level %q clashes with a built-in flag", layerconf.ErrInvalidInput, l)
			}
		}
	}

	var o options
	selected := make(map[string]*bool, len(levels))

	cmd := &cobra.Command{
		Use:   name + " [key] [value]",
		Short: "Read or change configuration values",
		Long: `Read or change configuration values.

Without arguments, every entry of every file is printed as key=value.
With a key, its value is printed. With a key and a value, the value is
written. Use --unset to remove a key.`,
		Args:         cobra.MaximumNArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var target layerconf.Backend = cfg
			for _, l := range levels {
				if p := selected[l]; p != nil && *p {
					f, err := cfg.ByLevel(l)
					if err != nil {
						return err
					}
					target = f
				}
			}
			return run(cmd.OutOrStdout(), target, args, o)
		},
	}

	cmd.Flags().BoolVar(&o.unset, "unset", false, "remove the key")
	cmd.Flags().BoolVar(&o.asJSON, "json", false, "print the result as JSON")
	cmd.Flags().BoolVar(&o.parse, "parse", false, "parse the value as YAML before writing it")
	if multi {
		for _, l := range levels {
			p := new(bool)
			selected[l] = p
			cmd.Flags().BoolVar(p, l, false, fmt.Sprintf("act on the %s file only", l))
		}
		cmd.MarkFlagsMutuallyExclusive(levels...)
	}
	return cmd, nil
}

// Attach adds the command built by NewCommand to parent.
func Attach(parent *cobra.Command, cfg *layerconf.Config, name string) (*cobra.Command, error) {
	cmd, err := NewCommand(cfg, name)
	if err != nil {
		return nil, err
	}
	parent.AddCommand(cmd)
	return cmd, nil
}

func run(out io.Writer, b layerconf.Backend, args []string, o options) error {
	var key string
	if len(args) > 0 {
		key = args[0]
	}
	hasValue := len(args) == 2

	switch {
	case o.unset && key == "":
		return fmt.Errorf("%w: --unset needs a key", ErrUsage)
	case o.unset && hasValue:
		return fmt.Errorf("%w: --unset does not take a value", ErrUsage)
	case o.unset:
		return b.Unset(key)
	case hasValue:
		var v any = args[1]
		if o.parse {
			parsed, err := parseValue(args[1])
			if err != nil {
				return err
			}
			v = parsed
		}
		return b.Write(key, v)
	}

	res, err := b.Read(key)
	if err != nil {
		return err
	}
	return printResult(out, res, o.asJSON)
}

func parseValue(s string) (any, error) {
	var v any
	if err := yaml.Unmarshal([]byte(s), &v); err != nil {
		return nil, fmt.Errorf("%w: cannot parse %q: %w", ErrUsage, s, err)
	}
	return layerconf.Normalize(v), nil
}

func printResult(out io.Writer, res layerconf.ReadResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	entries, ok := res.Entries()
	if !ok {
		_, err := fmt.Fprintln(out, res.String())
		return err
	}
	paint := fmt.Sprint
	if streams.IsTerminal(out) {
		paint = keyColor.Sprint
	}
	for _, e := range entries {
		if _, err := fmt.Fprintf(out, "%s=%s\n", paint(e.Path), e.Value); err != nil {
			return err
		}
	}
	return nil
}
