package main

import (
	"fmt"
	"io"

	"github.com/scott-cotton/cli"
	"github.com/spf13/afero"

	"github.com/cl0nazepamm/P-USDExporter/docio"
	"github.com/cl0nazepamm/P-USDExporter/format"
	"github.com/cl0nazepamm/P-USDExporter/scene"
)

// inFormat is the format of path: -I if given, else the extension. Stdin
// defaults to usda.
func (cfg *MainConfig) inFormat(path string) (format.Format, error) {
	if cfg.InFormat != nil {
		return *cfg.InFormat, nil
	}
	if path == "-" {
		return format.USDAFormat, nil
	}
	return format.FromPath(path)
}

func (cfg *MainConfig) readDoc(cc *cli.Context, path string) (*scene.Document, error) {
	f, err := cfg.inFormat(path)
	if err != nil {
		return nil, err
	}
	var d []byte
	if path == "-" {
		d, err = io.ReadAll(cc.In)
	} else {
		d, err = afero.ReadFile(cfg.fs, path)
	}
	if err != nil {
		return nil, fmt.Errorf("error reading %q: %w", path, err)
	}
	return docio.Decode(d, f, path)
}

// writeDoc encodes doc to w in the -O format, or def.
func (cfg *MainConfig) writeDoc(w io.Writer, doc *scene.Document, def format.Format) error {
	return docio.Encode(doc, w, cfg.outFormat(def), cfg.encOpts(w)...)
}

// argsOrStdin returns args, or "-" if there are none.
func argsOrStdin(args []string) []string {
	if len(args) == 0 {
		return []string{"-"}
	}
	return args
}

func sep(w io.Writer, i, n int) error {
	if i == n-1 {
		return nil
	}
	_, err := io.WriteString(w, "\n---\n")
	return err
}
