package layerconf

import "strconv"

// Merge composes sources ordered from strongest to weakest. For every
// top-level key the first source defining it wins; nested values are not
// merged. Nil sources are skipped and Merge returns nil when all are nil.
func Merge(sources ...*Mapping) *Mapping {
	var merged *Mapping
	for _, src := range sources {
		if src == nil {
			continue
		}
		if merged == nil {
			merged = NewMapping()
		}
		for _, k := range src.Keys() {
			if _, taken := merged.Get(k); taken {
				continue
			}
			v, _ := src.Get(k)
			merged.Set(k, v)
		}
	}
	return merged
}

// Resolve returns the value stored at key in the merged sources, or the whole
// merged structure when key is empty. A key whose leaf holds null resolves to
// nil; a key that does not exist yields a *KeyNotFoundError.
func Resolve(key, sep string, sources ...*Mapping) (any, error) {
	merged := Merge(sources...)
	if key == "" {
		if merged == nil {
			return nil, nil
		}
		return merged, nil
	}
	if merged == nil {
		return nil, keyNotFound(key)
	}
	if v, ok := lookup(merged, splitKey(key, sep)); ok {
		return v, nil
	}
	// Keys that carry the separator literally only show up once flattened.
	if v, ok := Flatten(merged, sep).Get(key); ok {
		return v, nil
	}
	return nil, keyNotFound(key)
}

func lookup(m *Mapping, segs []string) (any, bool) {
	var cur any = m
	for _, seg := range segs {
		switch node := cur.(type) {
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			sub, ok := asMapping(node)
			if !ok {
				return nil, false
			}
			v, found := sub.Get(seg)
			if !found {
				return nil, false
			}
			cur = v
		}
	}
	return cur, true
}
