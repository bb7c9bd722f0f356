package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/scott-cotton/cli"
	"github.com/spf13/afero"

	"github.com/cl0nazepamm/P-USDExporter/config"
	"github.com/cl0nazepamm/P-USDExporter/format"
	"github.com/cl0nazepamm/P-USDExporter/libdiff"
	"github.com/cl0nazepamm/P-USDExporter/usda"
)

type MainConfig struct {
	Verbose    bool   `cli:"name=v desc='log debug messages'"`
	Color      bool   `cli:"name=color desc='colour output'"`
	ConfigFile string `cli:"name=config desc='configuration file, applied over user and project files'"`

	InFormat, OutFormat *format.Format

	Out      string
	CloseOut func() error

	Main *cli.Command

	fs     afero.Fs
	logger *slog.Logger
	conf   *config.Config
}

func (cfg *MainConfig) fmtFunc(fp **format.Format) cli.FuncOpt {
	return cli.FuncOpt(func(_ *cli.Context, v string) (any, error) {
		f, err := format.ParseFormat(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", cli.ErrUsage, err)
		}
		*fp = &f
		return f, nil
	})
}

func (cfg *MainConfig) log() *slog.Logger {
	if cfg.logger == nil {
		cfg.logger = newLogger(cfg.Verbose)
		slog.SetDefault(cfg.logger)
	}
	return cfg.logger
}

// settings returns the layered configuration, loading it on first use.
func (cfg *MainConfig) settings() (*config.Config, error) {
	if cfg.conf != nil {
		return cfg.conf, nil
	}
	c, err := config.NewLoader(cfg.fs, cfg.log()).Load(cfg.ConfigFile)
	if err != nil {
		return nil, err
	}
	cfg.conf = c
	return c, nil
}

// outFormat returns the -O format, or def.
func (cfg *MainConfig) outFormat(def format.Format) format.Format {
	if cfg.OutFormat != nil {
		return *cfg.OutFormat
	}
	return def
}

// colored reports whether output to w should be coloured: -color forces
// it, -color=false disables it, otherwise terminals get colour.
func (cfg *MainConfig) colored(w io.Writer) bool {
	if cfg.Color {
		color.NoColor = false
		return true
	}
	for _, opt := range cfg.Main.Opts {
		if opt.Name != "color" {
			continue
		}
		if opt.Value != nil {
			return false
		}
		break
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (cfg *MainConfig) encOpts(w io.Writer) []usda.EncodeOption {
	if cfg.colored(w) {
		return []usda.EncodeOption{usda.EncodeColors(usda.NewColors())}
	}
	return nil
}

func floatOpt(dst **float64) cli.FuncOpt {
	return cli.FuncOpt(func(_ *cli.Context, v string) (any, error) {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", cli.ErrUsage, err)
		}
		*dst = &f
		return f, nil
	})
}

type AssembleConfig struct {
	*MainConfig
	DryRun      bool   `cli:"name=n aliases=dry-run desc='assemble without writing'"`
	DefaultPrim string `cli:"name=prim desc='wrap the assembly in an assembly-kind default prim'"`
	Strict      bool   `cli:"name=strict desc='fail on undeclared hierarchy parents'"`
	Print       bool   `cli:"name=p aliases=print desc='print the assembled document'"`

	FPS, Start, End *float64

	Assemble *cli.Command
}

type FixupConfig struct {
	*MainConfig
	Props string `cli:"name=props desc='host property sidecar (yaml)'"`
	Write bool   `cli:"name=w desc='write the result back to the file'"`
	Diff  bool   `cli:"name=diff desc='print a diff instead of the result'"`

	Fixup *cli.Command
}

type ViewConfig struct {
	*MainConfig
	View *cli.Command
}

type ListConfig struct {
	*MainConfig
	Where string `cli:"name=where desc='filter expression'"`
	Long  bool   `cli:"name=l desc='long listing'"`

	List *cli.Command
}

type DiffConfig struct {
	*MainConfig
	Reverse bool `cli:"name=r desc='reverse the diff'"`
	Context int  `cli:"name=U desc='lines of context'"`

	Diff *cli.Command
}

type PatchConfig struct {
	*MainConfig
	Write bool `cli:"name=w desc='write results back to the files'"`

	Patch *cli.Command
}

type WatchConfig struct {
	*MainConfig
	DefaultPrim string `cli:"name=prim desc='wrap the assembly in an assembly-kind default prim'"`
	Debounce    time.Duration

	Watch *cli.Command
}

func (cfg *WatchConfig) debounceOpt() cli.FuncOpt {
	return cli.FuncOpt(func(_ *cli.Context, a string) (any, error) {
		d, err := time.ParseDuration(a)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", cli.ErrUsage, err)
		}
		cfg.Debounce = d
		return d, nil
	})
}

type SuffixConfig struct {
	*MainConfig
	Sanitize bool `cli:"name=s desc='print sanitized names'"`

	Suffix *cli.Command
}

type ConfigConfig struct {
	*MainConfig
	Config *cli.Command
}

func newDiffConfig(mainCfg *MainConfig) *DiffConfig {
	return &DiffConfig{MainConfig: mainCfg, Context: libdiff.DefaultContext}
}
