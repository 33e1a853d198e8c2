package layerconf

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format tags the on-disk representation of a config file.
type Format string

const (
	FormatINI  Format = "ini"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	// FormatJS and FormatExpr are read-only script formats: the file is
	// evaluated in a sandbox and its public bindings become config entries.
	FormatJS   Format = "js"
	FormatExpr Format = "expr"
)

// Formats lists every supported format.
func Formats() []Format {
	return []Format{FormatINI, FormatJSON, FormatYAML, FormatTOML, FormatJS, FormatExpr}
}

// ParseFormat converts an explicit type name (as used in FileSpec.Type).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "ini", "cfg":
		return FormatINI, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	case "js", "javascript":
		return FormatJS, nil
	case "expr":
		return FormatExpr, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedConfigFileType, s)
}

// DetectFormat picks the format from the file extension of path.
func DetectFormat(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", fmt.Errorf("%w: cannot determine the type of %s, set it explicitly",
			ErrUnsupportedConfigFileType, path)
	}
	return ParseFormat(ext)
}

// codec is the format-specific half of a File.
type codec interface {
	// decode parses file content. Blank content decodes to a nil mapping.
	decode(data []byte) (*Mapping, error)
	encode(m *Mapping) ([]byte, error)
	// set stores v under segs, enforcing the key shapes of the format.
	set(m *Mapping, segs []string, v any) error
	// canonicalKey rewrites a user key into the form stored by decode.
	canonicalKey(key, sep string) string
	readOnly() bool
}

func codecFor(f Format, sep string) (codec, error) {
	switch f {
	case FormatINI:
		return iniCodec{sep: sep}, nil
	case FormatJSON:
		return jsonCodec{}, nil
	case FormatYAML:
		return yamlCodec{}, nil
	case FormatTOML:
		return tomlCodec{}, nil
	case FormatJS:
		return jsCodec{}, nil
	case FormatExpr:
		return exprCodec{}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedConfigFileType, f)
}

// treeSetter implements set for formats that accept keys of any depth.
type treeSetter struct{}

func (treeSetter) set(m *Mapping, segs []string, v any) error {
	return setPath(m, segs, v, false)
}

func (treeSetter) canonicalKey(key, _ string) string { return key }

// readOnlyCodec rejects every mutation.
type readOnlyCodec struct{}

func (readOnlyCodec) set(*Mapping, []string, any) error { return ErrUnsupportedOperation }
func (readOnlyCodec) encode(*Mapping) ([]byte, error)  { return nil, ErrUnsupportedOperation }
func (readOnlyCodec) readOnly() bool                    { return true }

func (readOnlyCodec) canonicalKey(key, _ string) string { return key }

func isBlank(data []byte) bool {
	return strings.TrimSpace(string(data)) == ""
}
