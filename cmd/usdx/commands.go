package main

import (
	"github.com/scott-cotton/cli"
	"github.com/spf13/afero"
)

func MainCommand() *cli.Command {
	cfg := &MainConfig{fs: afero.NewOsFs()}
	sOpts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	opts := append(sOpts, []*cli.Opt{
		{
			Name:        "o",
			Description: "output file (default stdout)",
			Type:        cli.NamedFuncOpt(cfg.outOpt, "(filepath)"),
		},
		{
			Name:        "I",
			Aliases:     []string{"ifmt"},
			Description: "input format for stdin: usda/u, yaml/y, json/j",
			Type:        cli.NamedFuncOpt(cfg.fmtFunc(&cfg.InFormat), "(format)"),
		},
		{
			Name:        "O",
			Aliases:     []string{"ofmt"},
			Description: "output format: usda/u, yaml/y, json/j",
			Type:        cli.NamedFuncOpt(cfg.fmtFunc(&cfg.OutFormat), "(format)"),
		}}...)

	return cli.NewCommandAt(&cfg.Main, "usdx").
		WithSynopsis("usdx [opts] command [opts]").
		WithDescription(mainDescription).
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return usdxMain(cfg, cc, args)
		}).
		WithSubs(
			AssembleCommand(cfg),
			FixupCommand(cfg),
			ViewCommand(cfg),
			ListCommand(cfg),
			DiffCommand(cfg),
			PatchCommand(cfg),
			WatchCommand(cfg),
			SuffixCommand(cfg),
			ConfigCommand(cfg))
}

const mainDescription = `usdx assembles per-file scene documents into a stage and cleans up
exported scene documents.

Configuration is read from $XDG_CONFIG_HOME/usdx/config.yaml, then from
usdx.yaml in the working directory or a parent, then from the -config file.
Later files override earlier ones key by key.`

func AssembleCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &AssembleConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	opts = append(opts,
		&cli.Opt{
			Name:        "fps",
			Description: "frames and time codes per second",
			Type:        cli.NamedFuncOpt(floatOpt(&cfg.FPS), "(float)"),
		},
		&cli.Opt{
			Name:        "start",
			Description: "start time code",
			Type:        cli.NamedFuncOpt(floatOpt(&cfg.Start), "(float)"),
		},
		&cli.Opt{
			Name:        "end",
			Description: "end time code",
			Type:        cli.NamedFuncOpt(floatOpt(&cfg.End), "(float)"),
		})
	return cli.NewCommandAt(&cfg.Assemble, "assemble").
		WithAliases("a", "as").
		WithSynopsis("assemble [opts] [dirs]").
		WithDescription(assembleDescription).
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return assembleDirs(cfg, cc, args)
		})
}

const assembleDescription = `assemble composes the documents found in each directory (default the
current directory) into <dir>_stage.<ext>, replacing an earlier output.

Names are grouped by their suffixes: _RENDER, _PROXY and _GUIDE become purpose
buckets, _VARIANT<tag> becomes a variant, _PAYLOAD asks for a payload arc.
A _hierarchy.txt table of 'name|parent' lines nests the results.

The exit code is 1 if any directory failed to assemble. Degraded assemblies
are reported but exit 0.`

func FixupCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &FixupConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Fixup, "fixup").
		WithAliases("f", "fix").
		WithSynopsis("fixup [-props sidecar] [-w | -diff] file").
		WithDescription("run the post-export passes (properties, wrapper strip, variants) on a document").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return fixup(cfg, cc, args)
		})
}

func ViewCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ViewConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.View, "view").
		WithAliases("v").
		WithSynopsis("view [files]").
		WithDescription("view documents, in colour on terminals").
		WithRun(func(cc *cli.Context, args []string) error {
			return view(cfg, cc, args)
		})
}

func ListCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ListConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.List, "list").
		WithAliases("l", "ls").
		WithSynopsis("list [-l] [-where expr] [files]").
		WithDescription(listDescription).
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return list(cfg, cc, args)
		})
}

const listDescription = `list prints the paths of the nodes of documents.

-where filters nodes with an expression over path, name, type, specifier,
kind, purpose, instanceable, active, inVariant, depth, children, attributes,
relationships, references, payloads, inherits, variantSets, apiSchemas,
customData, assetInfo and suffix.{base,purpose,variant,payload}, plus the
functions glob(pattern, s), Attr(name) and Selection(set). For example

  usdx list -where 'type == "Mesh" && glob("/Scene/**", path)' scene.usda`

func DiffCommand(mainCfg *MainConfig) *cli.Command {
	cfg := newDiffConfig(mainCfg)
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Diff, "diff").
		WithAliases("d", "di").
		WithSynopsis("diff [-r] [-U n] a b").
		WithDescription("diff documents by their encodings, exit code 1 if they differ").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return diff(cfg, cc, args)
		})
}

func PatchCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &PatchConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Patch, "patch").
		WithAliases("p", "pa").
		WithSynopsis("patch [-w] <patchfile> [files]").
		WithDescription("apply a JSON patch (json or yaml) to the tree form of documents").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return patch(cfg, cc, args)
		})
}

func WatchCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &WatchConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	opts = append(opts, &cli.Opt{
		Name:        "debounce",
		Description: "time to wait for changes to settle",
		Type:        cli.NamedFuncOpt(cfg.debounceOpt(), "(duration)"),
	})
	return cli.NewCommandAt(&cfg.Watch, "watch").
		WithAliases("w").
		WithSynopsis("watch [-debounce d] [dir]").
		WithDescription("assemble a directory and again whenever its documents change").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return watchDir(cfg, cc, args)
		})
}

func SuffixCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &SuffixConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Suffix, "suffix").
		WithAliases("s").
		WithSynopsis("suffix [-s] names...").
		WithDescription("print how names decode into base, purpose, variant and payload").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return suffixes(cfg, cc, args)
		})
}

func ConfigCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ConfigConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.Config, "config").
		WithAliases("c", "conf").
		WithSynopsis("config").
		WithDescription("print the effective configuration").
		WithRun(func(cc *cli.Context, args []string) error {
			return showConfig(cfg, cc, args)
		})
}
