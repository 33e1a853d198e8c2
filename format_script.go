package layerconf

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dop251/goja"
	exprlang "github.com/expr-lang/expr"
)

// Callable is a function binding exposed by a script config file. It is
// carried through reads as an opaque value.
type Callable func(args ...any) (any, error)

// MarshalJSON renders functions as a placeholder string.
func (Callable) MarshalJSON() ([]byte, error) {
	return []byte(`"<function>"`), nil
}

// hidden reports whether a script binding stays out of the config entries.
func hidden(name string) bool {
	return strings.HasPrefix(name, "_")
}

// jsCodec evaluates a JavaScript file in a fresh goja runtime with no host
// bindings. Global var and function declarations become entries.
type jsCodec struct {
	readOnlyCodec
}

func (jsCodec) decode(data []byte) (*Mapping, error) {
	if isBlank(data) {
		return nil, nil
	}
	vm := goja.New()
	if _, err := vm.RunString(string(data)); err != nil {
		return nil, err
	}
	global := vm.GlobalObject()
	m := NewMapping()
	for _, name := range global.Keys() {
		if hidden(name) {
			continue
		}
		m.Set(name, exportJS(vm, global.Get(name)))
	}
	return m, nil
}

func exportJS(vm *goja.Runtime, v goja.Value) any {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	if fn, ok := goja.AssertFunction(v); ok {
		return jsCallable(vm, fn)
	}
	if obj, ok := v.(*goja.Object); ok {
		switch obj.ClassName() {
		case "Array":
			n := obj.Get("length").ToInteger()
			out := make([]any, n)
			for i := int64(0); i < n; i++ {
				out[i] = exportJS(vm, obj.Get(strconv.FormatInt(i, 10)))
			}
			return out
		case "Object":
			m := NewMapping()
			for _, k := range obj.Keys() {
				m.Set(k, exportJS(vm, obj.Get(k)))
			}
			return m
		}
	}
	return Normalize(v.Export())
}

func jsCallable(vm *goja.Runtime, fn goja.Callable) Callable {
	return func(args ...any) (any, error) {
		in := make([]goja.Value, len(args))
		for i, a := range args {
			in[i] = vm.ToValue(a)
		}
		out, err := fn(goja.Undefined(), in...)
		if err != nil {
			return nil, err
		}
		return exportJS(vm, out), nil
	}
}

var exprBinding = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// exprCodec reads "name = expression" lines evaluated with expr-lang. Each
// expression sees the bindings defined above it, hidden ones included.
// Blank lines and lines starting with # are ignored.
type exprCodec struct {
	readOnlyCodec
}

func (exprCodec) decode(data []byte) (*Mapping, error) {
	if isBlank(data) {
		return nil, nil
	}
	env := map[string]any{}
	m := NewMapping()
	sc := bufio.NewScanner(bytes.NewReader(data))
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		name, src, ok := strings.Cut(text, "=")
		name, src = strings.TrimSpace(name), strings.TrimSpace(src)
		if !ok || src == "" || !exprBinding.MatchString(name) {
			return nil, fmt.Errorf("line %d: expected \"name = expression\"", line)
		}
		program, err := exprlang.Compile(src, exprlang.Env(env))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		v, err := exprlang.Run(program, env)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		env[name] = v
		if !hidden(name) {
			m.Set(name, Normalize(v))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return m, nil
}
