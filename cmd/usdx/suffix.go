package main

import (
	"fmt"

	"github.com/scott-cotton/cli"

	"github.com/cl0nazepamm/P-USDExporter/suffix"
)

func suffixes(cfg *SuffixConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Suffix.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: suffix requires names", cli.ErrUsage)
	}
	for _, name := range args {
		if cfg.Sanitize {
			fmt.Fprintln(cc.Out, suffix.Sanitize(name))
			continue
		}
		fmt.Fprintln(cc.Out, suffix.Parse(name))
	}
	return nil
}
