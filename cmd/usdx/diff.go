package main

import (
	"fmt"

	"github.com/scott-cotton/cli"

	"github.com/cl0nazepamm/P-USDExporter/format"
	"github.com/cl0nazepamm/P-USDExporter/libdiff"
	"github.com/cl0nazepamm/P-USDExporter/scene"
)

func diff(cfg *DiffConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Diff.Parse(cc, args)
	if err != nil {
		cfg.Diff.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: diff requires 2 args, got %v", cli.ErrUsage, args)
	}
	a, err := cfg.readDoc(cc, args[0])
	if err != nil {
		return fmt.Errorf("error decoding %s: %w", args[0], err)
	}
	b, err := cfg.readDoc(cc, args[1])
	if err != nil {
		return fmt.Errorf("error decoding %s: %w", args[1], err)
	}
	differs, err := cfg.diffDocs(cc, args[0], args[1], a, b, cfg.Reverse, cfg.Context)
	if err != nil {
		return err
	}
	if differs {
		return cli.ExitCodeErr(1)
	}
	return nil
}

// diffDocs writes the diff of two documents in the -O format (usda by
// default) and reports whether they differ.
func (cfg *MainConfig) diffDocs(cc *cli.Context, aName, bName string, a, b *scene.Document, reverse bool, context int) (bool, error) {
	lines, err := libdiff.Docs(a, b, cfg.outFormat(format.USDAFormat))
	if err != nil {
		return false, err
	}
	if !libdiff.Changed(lines) {
		return false, nil
	}
	if reverse {
		lines = libdiff.Reverse(lines)
		aName, bName = bName, aName
	}
	var colors *libdiff.Colors
	if cfg.colored(cc.Out) {
		colors = libdiff.NewColors()
	}
	if err := libdiff.Write(cc.Out, aName, bName, libdiff.Hunks(lines, context), colors); err != nil {
		return false, err
	}
	return true, nil
}
