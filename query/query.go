// Package query filters scene nodes with expressions such as
//
//	type == "Mesh" && purpose == "proxy"
//	glob("/Scene/**/Chair*", path) && !instanceable
//	"modelVariant" in variantSets
//
// The names available to an expression are the tagged fields of Env.
package query

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/cl0nazepamm/P-USDExporter/scene"
)

// Filter is a compiled node filter. The zero-source filter matches every
// node.
type Filter struct {
	src  string
	prog *vm.Program
}

// Compile compiles src, which must evaluate to a bool.
func Compile(src string) (*Filter, error) {
	if src == "" {
		return &Filter{}, nil
	}
	prog, err := expr.Compile(src,
		expr.Env(&Env{}),
		expr.AsBool(),
		expr.Function("glob", glob, new(func(string, string) bool)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadQuery, err)
	}
	return &Filter{src: src, prog: prog}, nil
}

func (f *Filter) String() string { return f.src }

// Match reports whether n satisfies the filter.
func (f *Filter) Match(n *scene.Node) (bool, error) {
	if f.prog == nil {
		return true, nil
	}
	out, err := expr.Run(f.prog, NewEnv(n))
	if err != nil {
		return false, fmt.Errorf("%w at %s: %w", ErrEval, n.Path(), err)
	}
	return out.(bool), nil
}

// Select returns the nodes of doc matching the filter in walk order.
// Variant edit scopes are not candidates; their contents are.
func (f *Filter) Select(doc *scene.Document) ([]*scene.Node, error) {
	var res []*scene.Node
	err := doc.Walk(func(n *scene.Node) error {
		if n.IsVariantScope() {
			return nil
		}
		ok, err := f.Match(n)
		if err != nil {
			return err
		}
		if ok {
			res = append(res, n)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func glob(params ...any) (any, error) {
	pattern, s := params[0].(string), params[1].(string)
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("%w: glob pattern %q", ErrBadQuery, pattern)
	}
	return doublestar.MatchUnvalidated(pattern, s), nil
}
