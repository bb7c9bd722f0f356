package main

import (
	"fmt"

	"github.com/scott-cotton/cli"
	"github.com/spf13/afero"

	"github.com/cl0nazepamm/P-USDExporter/docio"
)

func patch(cfg *PatchConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Patch.Parse(cc, args)
	if err != nil {
		cfg.Patch.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: patch requires a patch file", cli.ErrUsage)
	}
	p, err := afero.ReadFile(cfg.fs, args[0])
	if err != nil {
		return fmt.Errorf("error reading patch: %w", err)
	}
	files := argsOrStdin(args[1:])
	if cfg.Write && files[0] == "-" {
		return fmt.Errorf("%w: -w requires files", cli.ErrUsage)
	}
	for i, file := range files {
		doc, err := cfg.readDoc(cc, file)
		if err != nil {
			return fmt.Errorf("error decoding %s: %w", file, err)
		}
		res, err := docio.Patch(doc, p)
		if err != nil {
			return fmt.Errorf("error patching %s: %w", file, err)
		}
		if cfg.Write {
			if err := docio.WriteFile(cfg.fs, file, res); err != nil {
				return err
			}
			cfg.log().Info("patched", "file", file)
			continue
		}
		f, err := cfg.inFormat(file)
		if err != nil {
			return err
		}
		if err := cfg.writeDoc(cc.Out, res, f); err != nil {
			return fmt.Errorf("error encoding %s: %w", file, err)
		}
		if err := sep(cc.Out, i, len(files)); err != nil {
			return err
		}
	}
	return nil
}
