package layerconf

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ReadResult pairs data returned by a read with the key and separator used to
// produce it. Its String method renders mappings as "path=value" lines.
type ReadResult struct {
	Data      any
	Key       string
	Separator string
}

// Entry is one rendered "path=value" line of a ReadResult.
type Entry struct {
	Path  string
	Value string
}

// Entries flattens the mapping data into rendered entries. ok is false when
// the data is not a mapping or a list of mappings.
func (r ReadResult) Entries() (entries []Entry, ok bool) {
	sources, ok := r.sources()
	if !ok {
		return nil, false
	}
	sep := r.Separator
	if sep == "" {
		sep = DefaultSeparator
	}
	for _, m := range sources {
		flat := Flatten(m, sep)
		for _, k := range flat.Keys() {
			v, _ := flat.Get(k)
			if r.Key != "" {
				k = r.Key + sep + k
			}
			entries = append(entries, Entry{Path: k, Value: FormatValue(v)})
		}
	}
	return entries, true
}

func (r ReadResult) String() string {
	entries, ok := r.Entries()
	if !ok {
		return FormatValue(r.Data)
	}
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.Path + "=" + e.Value
	}
	return strings.Join(lines, "\n")
}

// MarshalJSON encodes the raw data.
func (r ReadResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Data)
}

// sources lists the mappings to render. Sources that are nil (a missing file
// in a whole-store read) are skipped.
func (r ReadResult) sources() ([]*Mapping, bool) {
	if m, ok := asMapping(r.Data); ok {
		return []*Mapping{m}, true
	}
	var list []any
	switch d := r.Data.(type) {
	case []any:
		list = d
	case []*Mapping:
		list = make([]any, len(d))
		for i := range d {
			list[i] = d[i]
		}
	default:
		return nil, false
	}
	out := make([]*Mapping, 0, len(list))
	for _, item := range list {
		if item == nil {
			continue
		}
		if p, isPtr := item.(*Mapping); isPtr && p == nil {
			continue
		}
		m, ok := asMapping(item)
		if !ok {
			return nil, false
		}
		out = append(out, m)
	}
	return out, true
}

// FormatValue renders a single config value as display text.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case Callable:
		return "<function>"
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case time.Time:
		return t.Format(time.RFC3339)
	case []any:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	case *Mapping, Mapping:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}
