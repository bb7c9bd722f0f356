package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/scott-cotton/cli"

	"github.com/cl0nazepamm/P-USDExporter/assemble"
	"github.com/cl0nazepamm/P-USDExporter/diag"
	"github.com/cl0nazepamm/P-USDExporter/watch"
)

func watchDir(cfg *WatchConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Watch.Parse(cc, args)
	if err != nil {
		cfg.Watch.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) > 1 {
		return fmt.Errorf("%w: watch takes at most one directory, got %v", cli.ErrUsage, args)
	}
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	c, err := cfg.settings()
	if err != nil {
		return err
	}
	opts := append(assemble.FromConfig(c), assemble.WithLogger(cfg.log()))
	if cfg.DefaultPrim != "" {
		opts = append(opts, assemble.WithDefaultPrim(cfg.DefaultPrim))
	}
	if cfg.OutFormat != nil {
		opts = append(opts, assemble.WithFormat(*cfg.OutFormat))
	}
	a := assemble.New(cfg.fs, opts...)

	l, err := lockDir(dir)
	if err != nil {
		return err
	}
	defer l.Unlock()

	colored := cfg.colored(os.Stderr)
	run := func(_ context.Context, changed []string) error {
		if len(changed) != 0 {
			cfg.log().Info("re-assembling", "dir", dir, "changed", changed)
		}
		res := a.Assemble(dir)
		rep := &diag.Report{}
		rep.Add(res.Phase)
		if err := rep.Print(os.Stderr, colored); err != nil {
			return err
		}
		return res.Phase.Err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, nil); err != nil {
		cfg.log().Error("initial assembly failed", "error", err)
	}
	w, err := watch.New(dir, run,
		watch.WithLogger(cfg.log()),
		watch.WithDebounce(cfg.Debounce),
		watch.WithExtensions(c.Extensions...),
		watch.WithIgnore(c.Ignore...),
		watch.Also(c.HierarchyFile),
		watch.Skip(a.OutputPath(dir)))
	if err != nil {
		return err
	}
	return w.Run(ctx)
}
