package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/scott-cotton/cli"

	"github.com/cl0nazepamm/P-USDExporter/query"
	"github.com/cl0nazepamm/P-USDExporter/scene"
)

func list(cfg *ListConfig, cc *cli.Context, args []string) error {
	args, err := cfg.List.Parse(cc, args)
	if err != nil {
		cfg.List.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	filter, err := query.Compile(cfg.Where)
	if err != nil {
		return fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}
	files := argsOrStdin(args)
	for _, file := range files {
		doc, err := cfg.readDoc(cc, file)
		if err != nil {
			return fmt.Errorf("error decoding %s: %w", file, err)
		}
		nodes, err := filter.Select(doc)
		if err != nil {
			return fmt.Errorf("error querying %s: %w", file, err)
		}
		prefix := ""
		if len(files) > 1 {
			prefix = file + ":"
		}
		if err := listNodes(cc.Out, prefix, nodes, cfg.Long); err != nil {
			return err
		}
	}
	return nil
}

func listNodes(w io.Writer, prefix string, nodes []*scene.Node, long bool) error {
	if !long {
		for _, n := range nodes {
			if _, err := fmt.Fprintf(w, "%s%s\n", prefix, n.Path()); err != nil {
				return err
			}
		}
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, n := range nodes {
		fmt.Fprintf(tw, "%s%s\t%s\t%s\t%s\t%s\t%s\n", prefix, n.Path(),
			n.Specifier, dash(n.TypeName), dash(n.Kind), dash(n.Purpose()), flags(n))
	}
	return tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func flags(n *scene.Node) string {
	var fs []string
	if n.IsInstanceable() {
		fs = append(fs, "instanceable")
	}
	if n.Active != nil && !*n.Active {
		fs = append(fs, "inactive")
	}
	if n.InVariant() {
		fs = append(fs, "variant")
	}
	if len(n.Arcs) != 0 {
		fs = append(fs, fmt.Sprintf("arcs=%d", len(n.Arcs)))
	}
	return dash(strings.Join(fs, ","))
}
