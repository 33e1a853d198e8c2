package layerconf

import (
	"fmt"
	"sort"
	"strings"

	"github.com/iancoleman/orderedmap"
)

// DefaultSeparator joins path segments in keys unless WithSeparator says otherwise.
const DefaultSeparator = "."

// Mapping is an ordered string-keyed structure holding one parsed config file.
// Values are scalars, []any, nested *Mapping values, or Callable for scripts.
type Mapping = orderedmap.OrderedMap

// NewMapping returns an empty *Mapping.
func NewMapping() *Mapping {
	m := orderedmap.New()
	m.SetEscapeHTML(false)
	return m
}

// asMapping reports whether v is a mapping. orderedmap decodes nested objects
// as values rather than pointers, so both shapes are accepted.
func asMapping(v any) (*Mapping, bool) {
	switch m := v.(type) {
	case *Mapping:
		return m, m != nil
	case Mapping:
		return &m, true
	}
	return nil, false
}

// Normalize rewrites decoded values into the shapes used across the package:
// nested objects become *Mapping, plain Go maps are converted with sorted keys.
func Normalize(v any) any {
	switch t := v.(type) {
	case *Mapping:
		if t == nil {
			return nil
		}
		out := NewMapping()
		for _, k := range t.Keys() {
			val, _ := t.Get(k)
			out.Set(k, Normalize(val))
		}
		return out
	case Mapping:
		return Normalize(&t)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := NewMapping()
		for _, k := range keys {
			out.Set(k, Normalize(t[k]))
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = Normalize(t[i])
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = Normalize(t[i])
		}
		return out
	default:
		return v
	}
}

func splitKey(key, sep string) []string {
	if sep == "" {
		return []string{key}
	}
	return strings.Split(key, sep)
}

// Flatten converts m into a single-level mapping whose keys are the
// sep-joined paths of every leaf. Sub-mappings are never leaves.
func Flatten(m *Mapping, sep string) *Mapping {
	out := NewMapping()
	if m == nil {
		return out
	}
	flattenInto(out, m, "", true, sep)
	return out
}

func flattenInto(out, m *Mapping, prefix string, root bool, sep string) {
	for _, k := range m.Keys() {
		v, _ := m.Get(k)
		path := k
		if !root {
			path = prefix + sep + k
		}
		if sub, ok := asMapping(v); ok {
			flattenInto(out, sub, path, false, sep)
			continue
		}
		out.Set(path, v)
	}
}

// Unflatten rebuilds a nested mapping from a flat one by splitting every key
// on sep. It fails with ErrInvalidInput when a value is itself a mapping or
// when one key is both a leaf and the prefix of another.
func Unflatten(flat *Mapping, sep string) (*Mapping, error) {
	out := NewMapping()
	if flat == nil {
		return out, nil
	}
	for _, k := range flat.Keys() {
		v, _ := flat.Get(k)
		if _, ok := asMapping(v); ok {
			return nil, fmt.Errorf("%w: value at %q is a mapping, input must be flat", ErrInvalidInput, k)
		}
		if err := setPath(out, splitKey(k, sep), v, true); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// setPath stores v under segs, creating intermediate mappings. In strict mode
// replacing a mapping with a leaf is a collision; otherwise it overwrites.
func setPath(m *Mapping, segs []string, v any, strict bool) error {
	cur := m
	for i, seg := range segs[:len(segs)-1] {
		existing, ok := cur.Get(seg)
		if !ok {
			next := NewMapping()
			cur.Set(seg, next)
			cur = next
			continue
		}
		sub, isMap := asMapping(existing)
		if !isMap {
			return fmt.Errorf("%w: path %q holds a value, cannot descend into it",
				ErrInvalidInput, segs[:i+1])
		}
		if _, isPtr := existing.(*Mapping); !isPtr {
			cur.Set(seg, sub)
		}
		cur = sub
	}
	last := segs[len(segs)-1]
	if existing, ok := cur.Get(last); ok && strict {
		if _, isMap := asMapping(existing); isMap {
			return fmt.Errorf("%w: path %q is both a value and a section", ErrInvalidInput, segs)
		}
	}
	cur.Set(last, v)
	return nil
}

// removeLeaf deletes the leaf whose flattened key is key, matching keys
// exactly as Flatten joins them, so names containing sep are left intact.
// Mappings emptied by the removal are dropped as well.
func removeLeaf(m *Mapping, key, sep string) bool {
	if m == nil {
		return false
	}
	for _, k := range m.Keys() {
		v, _ := m.Get(k)
		sub, isMap := asMapping(v)
		if k == key && !isMap {
			m.Delete(k)
			return true
		}
		if !isMap || !strings.HasPrefix(key, k+sep) {
			continue
		}
		if removeLeaf(sub, key[len(k)+len(sep):], sep) {
			if _, isPtr := v.(*Mapping); !isPtr {
				m.Set(k, sub)
			}
			if len(sub.Keys()) == 0 {
				m.Delete(k)
			}
			return true
		}
	}
	return false
}
