package layerconf

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "ini", want: FormatINI},
		{in: ".cfg", want: FormatINI},
		{in: "JSON", want: FormatJSON},
		{in: "yml", want: FormatYAML},
		{in: "toml", want: FormatTOML},
		{in: "javascript", want: FormatJS},
		{in: "expr", want: FormatExpr},
		{in: "xml", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedConfigFileType) {
					t.Errorf("err = %v, want ErrUnsupportedConfigFileType", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
			}
		})
	}
}

func TestDetectFormat(t *testing.T) {
	if f, err := DetectFormat("/etc/app/config.yaml"); err != nil || f != FormatYAML {
		t.Errorf("DetectFormat = %q, %v", f, err)
	}
	if _, err := DetectFormat("/etc/app/config"); !errors.Is(err, ErrUnsupportedConfigFileType) {
		t.Errorf("err = %v, want ErrUnsupportedConfigFileType", err)
	}
}

// openWith writes content to a file named name in a temp dir and opens it.
func openWith(t *testing.T, name, content string) *File {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	writeFile(t, p, content)
	f, err := OpenFile(p, FileOptions{})
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	return f
}

func readValue(t *testing.T, b Backend, key string) any {
	t.Helper()
	res, err := b.Read(key)
	if err != nil {
		t.Fatalf("Read(%q): %v", key, err)
	}
	return res.Data
}

func readString(t *testing.T, b Backend, key string) string {
	t.Helper()
	res, err := b.Read(key)
	if err != nil {
		t.Fatalf("Read(%q): %v", key, err)
	}
	return res.String()
}

func TestINI_KeyShapes(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   any
		wantErr error
	}{
		{name: "section and option", key: "core.pager", value: "less"},
		{name: "bare section", key: "extra", value: "ignored"},
		{name: "bare section with options", key: "branch", value: mapping("main", "origin")},
		{name: "too deep", key: "a.b.c", value: "x", wantErr: ErrInvalidKeyShape},
		{name: "empty option", key: "core.", value: "x", wantErr: ErrInvalidKeyShape},
		{name: "empty key", key: "", value: "x", wantErr: ErrInvalidKeyShape},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := openWith(t, "config.ini", "[core]\neditor = vim\n")
			err := f.Write(tt.key, tt.value)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				if got := readString(t, f, "core.editor"); got != "vim" {
					t.Errorf("file changed after a failed write: core.editor = %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Write: %v", err)
			}
			if got := readString(t, f, "core.editor"); got != "vim" {
				t.Errorf("core.editor = %q, want vim", got)
			}
		})
	}
}

func TestINI_Values(t *testing.T) {
	f := openWith(t, "config.ini", "[core]\neditor = vim\n")
	if err := f.WriteMany(
		[]string{"core.pager", "core.width", "branch", "empty.value"},
		[]any{"less", 80, mapping("main", "origin"), nil},
	); err != nil {
		t.Fatalf("WriteMany: %v", err)
	}

	want := "core.editor=vim\ncore.pager=less\ncore.width=80\nbranch.main=origin\nempty.value="
	if got := readString(t, f, ""); got != want {
		t.Errorf("content =\n%s\nwant\n%s", got, want)
	}

	f2 := openWith(t, "sections.ini", "[a]\n[b]\nk = v\n")
	if got := keysOf(readValue(t, f2, "").(*Mapping)); !reflect.DeepEqual(got, []string{"b.k"}) {
		t.Errorf("flattened keys = %v", got)
	}
	res, err := f2.ReadRaw("")
	if err != nil {
		t.Fatalf("ReadRaw: %v", err)
	}
	if got := keysOf(res.Data.(*Mapping)); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("sections = %v, want [a b]", got)
	}
}

func TestINI_OptionNamesIgnoreCase(t *testing.T) {
	f := openWith(t, "config.ini", "[Sec]\nMyOpt = a\n")

	for _, key := range []string{"Sec.myopt", "Sec.MyOpt", "Sec.MYOPT"} {
		if got := readString(t, f, key); got != "a" {
			t.Errorf("%s = %q, want a", key, got)
		}
	}
	if err := f.Write("Sec.OtherOpt", "b"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := readString(t, f, "Sec"); got != "Sec.myopt=a\nSec.otheropt=b" {
		t.Errorf("Sec =\n%s", got)
	}
	if _, err := f.Read("sec.myopt"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("section names keep their case: err = %v", err)
	}
	if err := f.Unset("Sec.MYOPT"); err != nil {
		t.Fatalf("Unset: %v", err)
	}
	if got := readString(t, f, "Sec"); got != "Sec.otheropt=b" {
		t.Errorf("Sec after unset =\n%s", got)
	}
}

func TestINI_QuotedValues(t *testing.T) {
	f := openWith(t, "config.ini", "[sec]\nread = \"kept\"\n")

	if got := readString(t, f, "sec.read"); got != `"kept"` {
		t.Errorf("sec.read = %q, want the quotes kept", got)
	}
	if err := f.WriteMany([]string{"sec.v", "sec.single"}, []any{`"quoted"`, `'single'`}); err != nil {
		t.Fatalf("WriteMany: %v", err)
	}
	if got := readString(t, f, "sec.v"); got != `"quoted"` {
		t.Errorf("sec.v = %q, want %q", got, `"quoted"`)
	}
	if got := readString(t, f, "sec.single"); got != `'single'` {
		t.Errorf("sec.single = %q, want %q", got, `'single'`)
	}
}

func TestINI_UnsetKeepsDottedSections(t *testing.T) {
	f := openWith(t, "config.ini", "[foo.bar]\nopt = 1\n\n[other]\nx = 2\ny = 3\n")

	if err := f.Unset("other.x"); err != nil {
		t.Fatalf("Unset: %v", err)
	}
	res, err := f.ReadRaw("")
	if err != nil {
		t.Fatalf("ReadRaw: %v", err)
	}
	if got := keysOf(res.Data.(*Mapping)); !reflect.DeepEqual(got, []string{"foo.bar", "other"}) {
		t.Errorf("sections = %v, want [foo.bar other]\n%s", got, readFile(t, f.Path()))
	}
	if got := readString(t, f, "foo.bar.opt"); got != "1" {
		t.Errorf("foo.bar.opt = %q", got)
	}

	if err := f.Unset("foo.bar.opt"); err != nil {
		t.Fatalf("Unset: %v", err)
	}
	if got := readString(t, f, ""); got != "other.y=3" {
		t.Errorf("content =\n%s", got)
	}
}

func TestJSON(t *testing.T) {
	f := openWith(t, "config.json", `{
  "s": "x",
  "n": 1,
  "f": 1.5,
  "b": true,
  "nil": null,
  "list": [1, "a", {"k": "v"}],
  "obj": {"z": 1, "a": 2}
}`)

	tests := []struct {
		key  string
		want any
	}{
		{key: "s", want: "x"},
		{key: "n", want: json.Number("1")},
		{key: "f", want: json.Number("1.5")},
		{key: "b", want: true},
		{key: "nil", want: nil},
		{key: "obj.z", want: json.Number("1")},
		{key: "list.2.k", want: "v"},
	}
	for _, tt := range tests {
		if got := readValue(t, f, tt.key); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s = %#v, want %#v", tt.key, got, tt.want)
		}
	}
	if got := keysOf(readValue(t, f, "obj").(*Mapping)); !reflect.DeepEqual(got, []string{"z", "a"}) {
		t.Errorf("obj keys = %v, want document order", got)
	}

	if err := f.Write("obj.new", "<tag>"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	content := readFile(t, f.Path())
	if !strings.Contains(content, `"new": "<tag>"`) {
		t.Errorf("written file:\n%s", content)
	}
	if !strings.HasSuffix(content, "}\n") || !strings.Contains(content, "\n    \"s\"") {
		t.Errorf("expected 4-space indentation and a trailing newline:\n%s", content)
	}
}

func TestJSON_IntegersSurviveRewrite(t *testing.T) {
	f := openWith(t, "config.json", `{"id": 9007199254740993, "big": 12345678901234567890, "ratio": 0.1, "list": [18446744073709551615]}`)

	if err := f.Write("x", "y"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	content := readFile(t, f.Path())
	for _, want := range []string{"9007199254740993", "12345678901234567890", "0.1", "18446744073709551615"} {
		if !strings.Contains(content, want) {
			t.Errorf("rewritten file lost %s:\n%s", want, content)
		}
	}
	if got := readString(t, f, "id"); got != "9007199254740993" {
		t.Errorf("id = %q", got)
	}
	if got := readString(t, f, "list"); got != "[18446744073709551615]" {
		t.Errorf("list = %q", got)
	}
}

func TestJSON_TopLevelMustBeObject(t *testing.T) {
	f := openWith(t, "config.json", "[1, 2]")
	_, err := f.Read("")
	if !errors.Is(err, ErrParse) || !errors.Is(err, ErrInvalidInput) {
		t.Errorf("err = %v, want ErrParse", err)
	}
}

func TestYAML_RoundTrip(t *testing.T) {
	f := openWith(t, "config.yaml", "name: app\nports:\n  - 80\n  - 443\nnested:\n  b: null\n  a: 1\n")

	if got := readValue(t, f, "ports.1"); got != 443 {
		t.Errorf("ports.1 = %#v, want 443", got)
	}
	if err := f.Write("nested.c", "x"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := "nested.b=null\nnested.a=1\nnested.c=x"
	if got := readString(t, f, "nested"); got != want {
		t.Errorf("nested =\n%s\nwant\n%s", got, want)
	}
	if got := readString(t, f, "ports"); got != "[80,443]" {
		t.Errorf("ports = %q", got)
	}
	if got := readValue(t, f, "nested.b"); got != nil {
		t.Errorf("nested.b = %#v, want nil", got)
	}
}

func TestYAML_TopLevelMustBeMapping(t *testing.T) {
	f := openWith(t, "config.yml", "- a\n- b\n")
	if _, err := f.Read("x"); !errors.Is(err, ErrParse) {
		t.Errorf("err = %v, want ErrParse", err)
	}
}

func TestTOML_RoundTrip(t *testing.T) {
	f := openWith(t, "config.toml", "title = \"x\"\n\n[server]\nport = 8080\nhost = \"h\"\n\n[[users]]\nname = \"a\"\n")

	want := "title=x\nserver.port=8080\nserver.host=h\nusers=[{\"name\":\"a\"}]"
	if got := readString(t, f, ""); got != want {
		t.Errorf("content =\n%s\nwant\n%s", got, want)
	}
	if got := readString(t, f, "users.0.name"); got != "a" {
		t.Errorf("users.0.name = %q", got)
	}

	if err := f.Write("server.debug", true); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := readValue(t, f, "server.debug"); got != true {
		t.Errorf("server.debug = %#v, want true", got)
	}
	if got := readValue(t, f, "server.port"); got != int64(8080) {
		t.Errorf("server.port = %#v, want 8080", got)
	}

	if err := f.Write("bad", nil); !errors.Is(err, ErrFormat) {
		t.Errorf("writing null: err = %v, want ErrFormat", err)
	}
}

func TestJS(t *testing.T) {
	f := openWith(t, "config.js", `
var name = "app";
var port = 8000 + 80;
var _secret = "s";
var obj = {b: [1, 2], a: {c: true}};
function greet(who) { return "hi " + who; }
`)

	data := readValue(t, f, "").(*Mapping)
	keys := data.Keys()
	sort.Strings(keys)
	if !reflect.DeepEqual(keys, []string{"greet", "name", "obj.a.c", "obj.b", "port"}) {
		t.Errorf("keys = %v", keys)
	}
	if got := readString(t, f, "port"); got != "8080" {
		t.Errorf("port = %q", got)
	}
	if got := readString(t, f, "obj"); got != "obj.b=[1,2]\nobj.a.c=true" {
		t.Errorf("obj =\n%s", got)
	}

	fn, ok := readValue(t, f, "greet").(Callable)
	if !ok {
		t.Fatalf("greet is %T, want Callable", readValue(t, f, "greet"))
	}
	out, err := fn("bob")
	if err != nil || out != "hi bob" {
		t.Errorf("greet(bob) = %v, %v", out, err)
	}
	if got := readString(t, f, "greet"); got != "<function>" {
		t.Errorf("greet renders as %q", got)
	}

	if err := f.Write("name", "x"); !errors.Is(err, ErrUnsupportedOperation) {
		t.Errorf("Write err = %v, want ErrUnsupportedOperation", err)
	}
	if err := f.Unset("name"); !errors.Is(err, ErrUnsupportedOperation) {
		t.Errorf("Unset err = %v, want ErrUnsupportedOperation", err)
	}
}

func TestJS_SyntaxError(t *testing.T) {
	f := openWith(t, "config.js", "var = ;")
	if _, err := f.Read(""); !errors.Is(err, ErrParse) {
		t.Errorf("err = %v, want ErrParse", err)
	}
}

func TestExpr(t *testing.T) {
	f := openWith(t, "app.expr", `# service settings
base = 8000
port = base + 80
_suffix = "prod"
name = "app-" + _suffix

flags = [1, 2]
`)

	want := "base=8000\nport=8080\nname=app-prod\nflags=[1,2]"
	if got := readString(t, f, ""); got != want {
		t.Errorf("content =\n%s\nwant\n%s", got, want)
	}
	if _, err := f.Read("_suffix"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("hidden binding: err = %v, want ErrKeyNotFound", err)
	}
	if err := f.WriteMany([]string{"a"}, []any{1}); !errors.Is(err, ErrUnsupportedOperation) {
		t.Errorf("WriteMany err = %v, want ErrUnsupportedOperation", err)
	}
}

func TestExpr_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "no assignment", content: "port 80\n"},
		{name: "bad name", content: "1port = 80\n"},
		{name: "unknown name", content: "port = missing + 1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := openWith(t, "app.expr", tt.content)
			if _, err := f.Read(""); !errors.Is(err, ErrParse) {
				t.Errorf("err = %v, want ErrParse", err)
			}
		})
	}
}
