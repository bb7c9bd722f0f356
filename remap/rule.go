package remap

import (
	"strings"

	"github.com/cl0nazepamm/P-USDExporter/scene"
)

// Rule maps paths under StripPrefix to Replacement. When NestTarget is set,
// paths under StripPrefix/<m> for m in MaterialNames map to
// Replacement/NestTarget/<m> instead.
type Rule struct {
	StripPrefix   scene.Path
	NestTarget    string
	MaterialNames []string
	// Replacement defaults to the pseudo-root.
	Replacement scene.Path

	// ContentRoot names the node a relative joint token is tried under when
	// it resolves to nothing as written.
	ContentRoot string
	// RelativePrefix is stripped from relative joint tokens that start with
	// it.
	RelativePrefix string
	// Keep lists subtrees that stayed where they were. Paths at or under
	// them are not remapped.
	Keep []scene.Path
}

func (r *Rule) replacement() scene.Path {
	if r.Replacement == "" {
		return scene.RootPath
	}
	return r.Replacement
}

// Remap returns the new path for p. ok is false when p is not affected by
// the rule.
func (r *Rule) Remap(p scene.Path) (res scene.Path, ok bool) {
	if r.StripPrefix == "" || r.StripPrefix.IsRoot() {
		return p, false
	}
	for _, k := range r.Keep {
		if p.HasPrefix(k) {
			return p, false
		}
	}
	if r.NestTarget != "" {
		for _, m := range r.MaterialNames {
			from := r.StripPrefix.Child(m)
			if res, ok := p.ReplacePrefix(from, r.replacement().Child(r.NestTarget).Child(m)); ok {
				return res, true
			}
		}
	}
	return p.ReplacePrefix(r.StripPrefix, r.replacement())
}

// RemapToken rewrites a joint name token. Tokens are either absolute paths
// or paths relative to the pseudo-root, and keep their style. exists
// reports whether an absolute prim path names a node; it drives the content
// root fallback and may be nil.
func (r *Rule) RemapToken(tok string, exists func(scene.Path) bool) string {
	if tok == "" {
		return tok
	}
	abs := strings.HasPrefix(tok, "/")
	style := func(p scene.Path) string {
		if abs {
			return string(p)
		}
		return strings.TrimPrefix(string(p), "/")
	}
	if res, ok := r.Remap(scene.Path(tok)); ok {
		return style(res)
	}
	if !abs {
		if res, ok := r.Remap(scene.Path("/" + tok)); ok {
			return style(res)
		}
		if pre := strings.Trim(r.RelativePrefix, "/"); pre != "" {
			if rest, ok := strings.CutPrefix(tok, pre+"/"); ok {
				return rest
			}
		}
	}
	if r.ContentRoot == "" || exists == nil {
		return tok
	}
	tokAbs := scene.Path(tok)
	if !abs {
		tokAbs = scene.Path("/" + tok)
	}
	if exists(tokAbs) {
		return tok
	}
	prefixed := scene.Path("/" + r.ContentRoot + string(tokAbs))
	if exists(prefixed) {
		return style(prefixed)
	}
	return tok
}

// remapList returns ps with affected entries rewritten, and the number of
// entries that changed. ps itself is not modified.
func (r *Rule) remapList(ps []scene.Path) ([]scene.Path, int) {
	var res []scene.Path
	n := 0
	for i, p := range ps {
		q, ok := r.Remap(p)
		if !ok || q == p {
			continue
		}
		if res == nil {
			res = make([]scene.Path, len(ps))
			copy(res, ps)
		}
		res[i] = q
		n++
	}
	if res == nil {
		return ps, 0
	}
	return res, n
}
