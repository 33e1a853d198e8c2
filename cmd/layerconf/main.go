// layerconf reads and edits layered configuration files from the shell.
//
// The files are declared in LAYERCONF_FILES as a comma-separated list of
// level=path pairs, strongest first:
//
//	LAYERCONF_FILES=local=./app.yaml,global=~/.config/app/app.yaml layerconf config foo.bar
//
// A single path without a level is also accepted. LAYERCONF_APP names the
// app directory used for bare file names.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ygrebnov/layerconf"
	"github.com/ygrebnov/layerconf/cli"
	"github.com/ygrebnov/layerconf/streams"
)

func main() {
	if err := execute(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func execute(args []string) error {
	specs, err := parseFiles(os.Getenv("LAYERCONF_FILES"))
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	opts := []layerconf.Option{
		layerconf.WithStreams(streams.Slog(logger, slog.LevelInfo, slog.LevelWarn)),
	}
	if app := os.Getenv("LAYERCONF_APP"); app != "" {
		opts = append(opts, layerconf.WithAppName(app))
	}
	cfg, err := layerconf.New(specs, opts...)
	if err != nil {
		return err
	}

	root := &cobra.Command{
		Use:           "layerconf",
		Short:         "Inspect and edit layered configuration files",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	if _, err := cli.Attach(root, cfg, "config"); err != nil {
		return err
	}
	root.SetArgs(args)
	return root.Execute()
}

func parseFiles(s string) ([]layerconf.FileSpec, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("%w: LAYERCONF_FILES is not set", layerconf.ErrInvalidInput)
	}
	var specs []layerconf.FileSpec
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		level, name, ok := strings.Cut(part, "=")
		if !ok {
			level, name = "", part
		}
		specs = append(specs, layerconf.FileSpec{Name: name, Level: level})
	}
	return specs, nil
}
