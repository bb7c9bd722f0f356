package main

import (
	"fmt"
	"os"

	"github.com/scott-cotton/cli"

	"github.com/cl0nazepamm/P-USDExporter/assemble"
	"github.com/cl0nazepamm/P-USDExporter/config"
	"github.com/cl0nazepamm/P-USDExporter/diag"
)

func assembleDirs(cfg *AssembleConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Assemble.Parse(cc, args)
	if err != nil {
		cfg.Assemble.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	c, err := cfg.settings()
	if err != nil {
		return err
	}
	a := assemble.New(cfg.fs, cfg.assembleOpts(c)...)
	dirs := args
	if len(dirs) == 0 {
		dirs = []string{"."}
	}
	rep := &diag.Report{}
	for _, dir := range dirs {
		res, err := cfg.assembleDir(a, dir)
		if err != nil {
			return err
		}
		rep.Add(res.Phase)
		if cfg.Print && res.Doc != nil {
			f, _ := c.Format()
			if err := cfg.writeDoc(cc.Out, res.Doc, f); err != nil {
				return err
			}
		}
	}
	if err := rep.Print(os.Stderr, cfg.colored(os.Stderr)); err != nil {
		return err
	}
	if rep.Status() == diag.StatusFailed {
		return cli.ExitCodeErr(1)
	}
	return nil
}

func (cfg *AssembleConfig) assembleOpts(c *config.Config) []assemble.Option {
	opts := append(assemble.FromConfig(c),
		assemble.WithLogger(cfg.log()),
		assemble.DryRun(cfg.DryRun))
	if cfg.DefaultPrim != "" {
		opts = append(opts, assemble.WithDefaultPrim(cfg.DefaultPrim))
	}
	if cfg.Strict {
		opts = append(opts, assemble.Strict(true))
	}
	if cfg.OutFormat != nil {
		opts = append(opts, assemble.WithFormat(*cfg.OutFormat))
	}
	if cfg.FPS != nil || cfg.Start != nil || cfg.End != nil {
		opts = append(opts, assemble.WithTime(
			orElse(cfg.FPS, c.FPS), orElse(cfg.Start, c.StartFrame), orElse(cfg.End, c.EndFrame)))
	}
	return opts
}

func orElse(v, def *float64) *float64 {
	if v != nil {
		return v
	}
	return def
}

// assembleDir assembles dir under its directory lock. Dry runs do not lock.
func (cfg *AssembleConfig) assembleDir(a *assemble.Assembler, dir string) (*assemble.Result, error) {
	if !cfg.DryRun {
		l, err := lockDir(dir)
		if err != nil {
			return nil, err
		}
		defer l.Unlock()
	}
	res := a.Assemble(dir)
	cfg.log().Debug("assembled", "dir", dir, "output", res.Output, "status", res.Phase.Status)
	if cfg.DryRun && res.Phase.Status != diag.StatusFailed {
		fmt.Fprintf(os.Stderr, "would write %s\n", res.Output)
	}
	return res, nil
}
