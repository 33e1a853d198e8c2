// Package layerconf reads and writes layered configuration files addressed by
// dotted keys.
//
// It supports:
//  1. INI, JSON, YAML and TOML files, plus read-only JavaScript (goja) and
//     expr-lang script files whose public bindings become entries.
//  2. Several files stacked as levels (e.g. "local" over "global"): reads
//     return the value from the first level holding the key, writes target
//     the first level unless another is named.
//  3. Bootstrapping a missing file from a default file.
//  4. Flatten/Unflatten between nested mappings and "a.b.c" keyed ones, and
//     Resolve, which tells a key holding null apart from a missing key.
//
// The companion package cli exposes a Config as a cobra subcommand.
//
// Typical usage:
//
//	cfg, err := layerconf.New([]layerconf.FileSpec{
//	    {Name: ".myapp.json", Dir: ".", Level: "local"},
//	    {Name: "config.json", Level: "global", Default: "/usr/share/myapp/config.json"},
//	}, layerconf.WithAppName("myapp"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, err := cfg.Read("server.port")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res)
//	_ = cfg.WriteLevel("global", "server.port", 8080)
package layerconf
