package layerconf

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// jsonCodec keeps object key order through orderedmap. Numbers are kept as
// json.Number so integers of any size survive a rewrite unchanged.
type jsonCodec struct {
	treeSetter
}

func (jsonCodec) readOnly() bool { return false }

func (jsonCodec) decode(data []byte) (*Mapping, error) {
	if isBlank(data) {
		return nil, nil
	}
	trimmed := bytes.TrimSpace(data)
	if trimmed[0] != '{' {
		return nil, fmt.Errorf("top-level JSON value must be an object")
	}
	ordered := NewMapping()
	if err := json.Unmarshal(trimmed, ordered); err != nil {
		return nil, err
	}
	// orderedmap decodes numbers as float64; take the values from a
	// UseNumber decode and only the key order from orderedmap.
	var exact any
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	if err := dec.Decode(&exact); err != nil {
		return nil, err
	}
	out, _ := withNumbers(Normalize(ordered), exact).(*Mapping)
	return out, nil
}

// withNumbers rebuilds ordered with the leaf values of exact.
func withNumbers(ordered, exact any) any {
	switch o := ordered.(type) {
	case *Mapping:
		plain, ok := exact.(map[string]any)
		if !ok {
			return ordered
		}
		out := NewMapping()
		for _, k := range o.Keys() {
			v, _ := o.Get(k)
			out.Set(k, withNumbers(v, plain[k]))
		}
		return out
	case []any:
		plain, ok := exact.([]any)
		if !ok || len(plain) != len(o) {
			return ordered
		}
		out := make([]any, len(o))
		for i := range o {
			out[i] = withNumbers(o[i], plain[i])
		}
		return out
	}
	return exact
}

func (jsonCodec) encode(m *Mapping) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
