package nsedit

import (
	"fmt"
	"slices"

	"github.com/cl0nazepamm/P-USDExporter/remap"
	"github.com/cl0nazepamm/P-USDExporter/scene"
)

// Strip is the outcome of StripWrapper.
type Strip struct {
	// Wrapper is the innermost wrapper of a collapsed chain.
	Wrapper scene.Path
	// Skipped explains why nothing was done.
	Skipped string
	// SkelRoot is set when the wrapper was kept as a skeletal root.
	SkelRoot bool
	// Flattened is the scene wrapper flattened under a skeletal root.
	Flattened   scene.Path
	DefaultPrim string
	// Nested is set when material scopes were nested under the content node.
	Nested      bool
	Relocations []*Relocation
	Remap       remap.Stats
	// LiveBefore and LiveAfter count targets and connections which resolve.
	LiveBefore int
	LiveAfter  int
}

// Degraded reports whether any relocation fell back to copying.
func (s *Strip) Degraded() bool {
	for _, r := range s.Relocations {
		if r.Degraded {
			return true
		}
	}
	return false
}

func (s *Strip) moved() int {
	res := 0
	for _, r := range s.Relocations {
		res += len(r.Moved)
	}
	return res
}

// StripWrapper removes the wrapper node at path, moving its content to the
// pseudo-root.
//
// A chain of single children carrying the wrapper name is collapsed first.
// If the wrapper is a skeletal root it is kept, and only a lone scene
// wrapper beneath it is flattened. Otherwise material scopes are nested
// under the content node when there is exactly one, the default prim is set
// and then the emptied wrapper is removed. Paths authored in doc are
// remapped afterwards.
//
// A wrapper with no children is left alone, as is a wrapper whose content
// would land on an existing root node. Nested material scopes whose name is
// taken under the content node go to the root instead. An error is returned
// when the default prim cannot be set or the content node could not be
// relocated; other relocation failures are reported in the result, and
// paths into sources left in place are not remapped.
func (e *Editor) StripWrapper(doc *scene.Document, path scene.Path) (*Strip, error) {
	res := &Strip{Wrapper: path}
	top := doc.Lookup(path)
	if top == nil {
		res.Skipped = fmt.Sprintf("%v %s", ErrNoWrapper, path)
		return res, nil
	}
	res.LiveBefore = remap.LiveTargets(doc)
	err := e.strip(doc, top, res)
	res.LiveAfter = remap.LiveTargets(doc)
	e.report(res)
	return res, err
}

func (e *Editor) strip(doc *scene.Document, top *scene.Node, res *Strip) error {
	path := top.Path()
	cur := top
	for len(cur.Children()) == 1 && cur.Children()[0].Name == e.s.WrapperName {
		cur = cur.Children()[0]
	}
	res.Wrapper = cur.Path()
	if top.TypeName == e.s.SkelRootType && e.s.SkelRootType != "" {
		res.SkelRoot = true
		return e.flattenSkelRoot(doc, top, cur, res)
	}
	if !cur.HasChildren() {
		res.Skipped = "wrapper has no children"
		return nil
	}

	var main, content, mtl []string
	for _, c := range cur.Children() {
		if e.isMaterial(c.Name) {
			mtl = append(mtl, c.Name)
			continue
		}
		main = append(main, c.Name)
		if !e.isClass(c) {
			content = append(content, c.Name)
		}
	}
	if len(main) == 0 {
		res.Skipped = "wrapper holds only material scopes"
		return nil
	}
	def := main[0]
	if len(content) != 0 {
		def = content[0]
	} else {
		e.logger.Warn("no concrete content under wrapper, default prim falls back to first child", "wrapper", res.Wrapper, "defaultPrim", def)
	}
	nest := len(content) == 1 && len(mtl) != 0

	var moves []scene.Move
	for _, name := range main {
		moves = append(moves, scene.Move{From: res.Wrapper.Child(name), To: scene.RootPath.Child(name)})
	}
	for _, name := range mtl {
		to := scene.RootPath.Child(name)
		if nest {
			if doc.Lookup(res.Wrapper.Child(def).Child(name)) == nil {
				to = scene.RootPath.Child(def).Child(name)
			} else {
				e.logger.Warn("material scope not nested, name taken", "scope", name, "under", def)
			}
		}
		moves = append(moves, scene.Move{From: res.Wrapper.Child(name), To: to})
	}
	for _, m := range moves {
		if m.To.Parent() == scene.RootPath && doc.Lookup(m.To) != nil {
			e.logger.Warn("wrapper content collides with a root node", "from", m.From, "to", m.To)
			res.Skipped = fmt.Sprintf("%s already exists", m.To)
			return nil
		}
	}
	rel := e.Relocate(doc, moves)
	res.Relocations = append(res.Relocations, rel)
	var nested []string
	if nest {
		if len(rel.Failed) != 0 {
			e.unnestFailed(doc, rel, res)
		}
		for _, m := range rel.Moved {
			if m.To.Parent() != scene.RootPath {
				nested = append(nested, m.To.Name())
			}
		}
		res.Nested = len(nested) == len(mtl)
	}

	var kept []scene.Path
	for _, r := range res.Relocations {
		for _, f := range r.Failed {
			kept = append(kept, f.Move.From)
		}
	}
	rule := &remap.Rule{StripPrefix: res.Wrapper, MaterialNames: nested, ContentRoot: def, Keep: kept}
	if len(nested) != 0 {
		rule.NestTarget = def
	}
	if slices.Contains(kept, res.Wrapper.Child(def)) {
		res.Remap = rule.Apply(doc, remap.JointAttributes(e.s.JointAttrs...))
		return fmt.Errorf("strip %s: %s not relocated: %w", path, def, rel.Err())
	}

	if err := doc.SetDefaultPrim(def); err != nil {
		return fmt.Errorf("strip %s: %w", path, err)
	}
	res.DefaultPrim = def
	if cur.HasChildren() {
		e.logger.Warn("wrapper not removed, it still has children", "wrapper", res.Wrapper, "children", len(cur.Children()))
	} else if err := doc.Remove(path); err != nil {
		e.logger.Warn("could not remove wrapper", "wrapper", path, "error", err)
	}
	res.Remap = rule.Apply(doc, remap.JointAttributes(e.s.JointAttrs...))
	return nil
}

// unnestFailed retries material moves that could not be nested as moves to
// the root.
func (e *Editor) unnestFailed(doc *scene.Document, rel *Relocation, res *Strip) {
	var retry []scene.Move
	var keep []*scene.MoveError
	for _, f := range rel.Failed {
		if e.isMaterial(f.Move.From.Name()) && f.Move.To.Parent() != scene.RootPath {
			retry = append(retry, scene.Move{From: f.Move.From, To: scene.RootPath.Child(f.Move.From.Name())})
			continue
		}
		keep = append(keep, f)
	}
	if len(retry) == 0 {
		return
	}
	rel.Failed = keep
	res.Relocations = append(res.Relocations, e.Relocate(doc, retry))
}

func (e *Editor) flattenSkelRoot(doc *scene.Document, top, cur *scene.Node, res *Strip) error {
	topPath := top.Path()
	if cur != top {
		from := cur.Path()
		res.Relocations = append(res.Relocations, e.MoveChildren(doc, from, topPath))
		if !cur.HasChildren() {
			if err := doc.Remove(from); err != nil {
				e.logger.Warn("could not remove nested wrapper", "wrapper", from, "error", err)
			}
		}
		rule := &remap.Rule{StripPrefix: from, Replacement: topPath}
		res.Remap = rule.Apply(doc, remap.JointAttributes(e.s.JointAttrs...))
		res.Wrapper = topPath
	}
	if err := doc.SetDefaultPrim(top.Name); err != nil {
		return fmt.Errorf("strip %s: %w", topPath, err)
	}
	res.DefaultPrim = top.Name
	if !top.HasChildren() {
		res.Skipped = "skeletal root has no children"
		return nil
	}

	hasSkeleton := false
	var candidates []*scene.Node
	for _, c := range top.Children() {
		if c.Name == e.s.BonesScope || c.TypeName == e.s.SkeletonType {
			hasSkeleton = true
			continue
		}
		if e.isMaterial(c.Name) || c.Name == e.s.WrapperName || e.isClass(c) {
			continue
		}
		candidates = append(candidates, c)
	}
	if !hasSkeleton || len(candidates) != 1 {
		res.Skipped = "no unique scene wrapper under skeletal root"
		return nil
	}
	scn := candidates[0]
	if !e.s.ScenePattern.MatchString(scn.Name) || !scn.HasChildren() {
		res.Skipped = fmt.Sprintf("%s is not a scene wrapper", scn.Name)
		return nil
	}
	from := scn.Path()
	rel := e.MoveChildren(doc, from, topPath)
	res.Relocations = append(res.Relocations, rel)
	res.Flattened = from
	if scn.HasChildren() {
		e.logger.Warn("scene wrapper not removed, it still has children", "wrapper", from)
	} else if err := doc.Remove(from); err != nil {
		e.logger.Warn("could not remove scene wrapper", "wrapper", from, "error", err)
	}
	if len(rel.Moved) != 0 {
		rule := &remap.Rule{StripPrefix: from, Replacement: topPath, RelativePrefix: scn.Name}
		res.Remap.Add(rule.Apply(doc, remap.JointAttributes(e.s.JointAttrs...)))
	}
	return nil
}

func (e *Editor) report(res *Strip) {
	if res.Skipped != "" && res.moved() == 0 {
		e.logger.Info("wrapper left in place", "wrapper", res.Wrapper, "reason", res.Skipped)
		return
	}
	attrs := []any{
		"wrapper", res.Wrapper,
		"defaultPrim", res.DefaultPrim,
		"moved", res.moved(),
		"remapped", res.Remap.Total(),
	}
	if res.Flattened != "" {
		attrs = append(attrs, "flattened", res.Flattened)
	}
	if res.Nested {
		attrs = append(attrs, "nested", true)
	}
	if res.Degraded() {
		e.logger.Warn("wrapper stripped by copying", attrs...)
	} else {
		e.logger.Info("wrapper stripped", attrs...)
	}
	if res.LiveAfter < res.LiveBefore {
		e.logger.Warn("remap left dangling targets", "before", res.LiveBefore, "after", res.LiveAfter)
	}
}
