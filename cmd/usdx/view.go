package main

import (
	"fmt"

	"github.com/scott-cotton/cli"
)

func view(cfg *ViewConfig, cc *cli.Context, args []string) error {
	args, err := cfg.View.Parse(cc, args)
	if err != nil {
		return err
	}
	files := argsOrStdin(args)
	for i, file := range files {
		doc, err := cfg.readDoc(cc, file)
		if err != nil {
			return fmt.Errorf("error decoding %s: %w", file, err)
		}
		f, err := cfg.inFormat(file)
		if err != nil {
			return err
		}
		if err := cfg.writeDoc(cc.Out, doc, f); err != nil {
			return fmt.Errorf("error encoding %s: %w", file, err)
		}
		if err := sep(cc.Out, i, len(files)); err != nil {
			return err
		}
	}
	return nil
}
