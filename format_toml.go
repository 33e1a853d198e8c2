package layerconf

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/BurntSushi/toml"
)

// tomlCodec restores key order from the decoder metadata. Encoding goes
// through plain maps, so written files have sorted keys.
type tomlCodec struct {
	treeSetter
}

func (tomlCodec) readOnly() bool { return false }

func (tomlCodec) decode(data []byte) (*Mapping, error) {
	if isBlank(data) {
		return nil, nil
	}
	var raw map[string]any
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, err
	}
	m := NewMapping()
	for _, key := range md.Keys() {
		v, ok := rawLookup(raw, key)
		if !ok {
			continue
		}
		if _, exists := lookup(m, key); exists {
			continue
		}
		if _, isTable := v.(map[string]any); isTable {
			v = NewMapping()
		} else {
			v = Normalize(v)
		}
		if err := setPath(m, key, v, false); err != nil {
			return nil, err
		}
	}
	fillMissing(m, raw)
	return m, nil
}

func rawLookup(raw map[string]any, key []string) (any, bool) {
	var cur any = raw
	for _, seg := range key {
		table, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = table[seg]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// fillMissing adds entries the metadata did not report, in sorted order.
func fillMissing(m *Mapping, raw map[string]any) {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		existing, ok := m.Get(k)
		table, isTable := raw[k].(map[string]any)
		if !ok {
			m.Set(k, Normalize(raw[k]))
			continue
		}
		if sub, isMap := asMapping(existing); isMap && isTable {
			fillMissing(sub, table)
		}
	}
}

func (tomlCodec) encode(m *Mapping) ([]byte, error) {
	plain, err := toPlain(m)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(plain); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toPlain(v any) (any, error) {
	if m, ok := asMapping(v); ok {
		out := make(map[string]any, len(m.Keys()))
		for _, k := range m.Keys() {
			val, _ := m.Get(k)
			p, err := toPlain(val)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out[k] = p
		}
		return out, nil
	}
	switch t := v.(type) {
	case nil:
		return nil, fmt.Errorf("TOML cannot represent null values")
	case []any:
		out := make([]any, len(t))
		for i := range t {
			p, err := toPlain(t[i])
			if err != nil {
				return nil, err
			}
			out[i] = p
		}
		return out, nil
	}
	return v, nil
}
