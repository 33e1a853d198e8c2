package layerconf

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/ini.v1"
)

var iniLoadOptions = ini.LoadOptions{
	AllowPythonMultilineValues: true,
	SpaceBeforeInlineComment:   true,
	InsensitiveKeys:            true,
	PreserveSurroundedQuote:    true,
}

// iniCodec maps sections to top-level keys and options to their children.
// Every value is stored and returned as a string. Option names are
// lower-cased; section names keep their case.
type iniCodec struct {
	sep string
}

func (iniCodec) readOnly() bool { return false }

func (iniCodec) decode(data []byte) (*Mapping, error) {
	if isBlank(data) {
		return nil, nil
	}
	f, err := ini.LoadSources(iniLoadOptions, data)
	if err != nil {
		return nil, err
	}
	m := NewMapping()
	for _, sec := range f.Sections() {
		keys := sec.Keys()
		if sec.Name() == ini.DefaultSection && len(keys) == 0 {
			continue
		}
		options := NewMapping()
		for _, k := range keys {
			options.Set(k.Name(), k.String())
		}
		m.Set(sec.Name(), options)
	}
	if len(m.Keys()) == 0 {
		return nil, nil
	}
	return m, nil
}

func (c iniCodec) encode(m *Mapping) ([]byte, error) {
	f := ini.Empty(iniLoadOptions)
	for _, name := range m.Keys() {
		v, _ := m.Get(name)
		options, ok := asMapping(v)
		if !ok {
			return nil, fmt.Errorf("%w: top-level key %q is not a section", ErrInvalidKeyShape, name)
		}
		sec := f.Section(name)
		// Options nested deeper than one level are written with joined names.
		flat := Flatten(options, c.sep)
		for _, k := range flat.Keys() {
			val, _ := flat.Get(k)
			if _, err := sec.NewKey(k, iniValue(val)); err != nil {
				return nil, err
			}
		}
	}
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c iniCodec) set(m *Mapping, segs []string, v any) error {
	if len(segs) == 0 || len(segs) > 2 || segs[0] == "" || (len(segs) == 2 && segs[1] == "") {
		return fmt.Errorf("%w: for INI files, keys must be a section or of the form section%soption",
			ErrInvalidKeyShape, c.sep)
	}
	sec, ok := m.Get(segs[0])
	options, isMap := asMapping(sec)
	if !ok || !isMap {
		options = NewMapping()
	}
	m.Set(segs[0], options)

	if len(segs) == 1 {
		// A bare section key only creates the section, unless the value
		// carries options for it.
		if sub, ok := asMapping(v); ok {
			flat := Flatten(sub, c.sep)
			for _, k := range flat.Keys() {
				val, _ := flat.Get(k)
				options.Set(strings.ToLower(k), iniValue(val))
			}
		}
		return nil
	}
	options.Set(segs[1], iniValue(v))
	return nil
}

// canonicalKey lower-cases the option part, the text after the last sep.
func (iniCodec) canonicalKey(key, sep string) string {
	i := strings.LastIndex(key, sep)
	if sep == "" || i < 0 {
		return key
	}
	return key[:i+len(sep)] + strings.ToLower(key[i+len(sep):])
}

func iniValue(v any) string {
	if v == nil {
		return ""
	}
	return FormatValue(v)
}
