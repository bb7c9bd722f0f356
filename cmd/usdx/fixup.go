package main

import (
	"fmt"
	"os"

	"github.com/scott-cotton/cli"
	"github.com/spf13/afero"

	"github.com/cl0nazepamm/P-USDExporter/diag"
	"github.com/cl0nazepamm/P-USDExporter/docio"
	"github.com/cl0nazepamm/P-USDExporter/format"
	"github.com/cl0nazepamm/P-USDExporter/hook"
	"github.com/cl0nazepamm/P-USDExporter/libdiff"
	"github.com/cl0nazepamm/P-USDExporter/props"
	"github.com/cl0nazepamm/P-USDExporter/scene"
)

func fixup(cfg *FixupConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Fixup.Parse(cc, args)
	if err != nil {
		cfg.Fixup.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: fixup requires 1 file, got %v", cli.ErrUsage, args)
	}
	if cfg.Write && cfg.Diff {
		return fmt.Errorf("%w: -w and -diff are exclusive", cli.ErrUsage)
	}
	file := args[0]
	c, err := cfg.settings()
	if err != nil {
		return err
	}
	var (
		handles props.Handles
		host    props.Host
	)
	if cfg.Props != "" {
		sc, err := props.ReadSidecar(cfg.fs, cfg.Props)
		if err != nil {
			return err
		}
		hs, table, err := sc.Host()
		if err != nil {
			return err
		}
		handles, host = hs, table
	}

	// Without -w the result is written to a memory layer over the file
	// system and printed from there.
	fsys := cfg.fs
	if !cfg.Write {
		fsys = afero.NewCopyOnWriteFs(afero.NewReadOnlyFs(cfg.fs), afero.NewMemMapFs())
	}
	var before *scene.Document
	if cfg.Diff {
		if before, err = docio.ReadFile(cfg.fs, file); err != nil {
			return err
		}
	}
	h := hook.New(c.Settings(), hook.WithLogger(cfg.log()), hook.WithSetName(c.VariantSetName))
	doc, rep := h.FixupFile(fsys, file, file, handles, host)
	if err := rep.Print(os.Stderr, cfg.colored(os.Stderr)); err != nil {
		return err
	}
	if doc != nil && !cfg.Write {
		if cfg.Diff {
			if _, err := cfg.diffDocs(cc, file, file+" (fixed)", before, doc, false, libdiff.DefaultContext); err != nil {
				return err
			}
		} else {
			f, err := format.FromPath(file)
			if err != nil {
				return err
			}
			if err := cfg.writeDoc(cc.Out, doc, f); err != nil {
				return err
			}
		}
	}
	if rep.Status() == diag.StatusFailed {
		return cli.ExitCodeErr(1)
	}
	return nil
}
