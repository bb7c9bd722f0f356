package assemble

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/cl0nazepamm/P-USDExporter/assets"
	"github.com/cl0nazepamm/P-USDExporter/config"
	"github.com/cl0nazepamm/P-USDExporter/debug"
	"github.com/cl0nazepamm/P-USDExporter/diag"
	"github.com/cl0nazepamm/P-USDExporter/docio"
	"github.com/cl0nazepamm/P-USDExporter/format"
	"github.com/cl0nazepamm/P-USDExporter/hierarchy"
	"github.com/cl0nazepamm/P-USDExporter/scene"
	"github.com/cl0nazepamm/P-USDExporter/suffix"
	"github.com/cl0nazepamm/P-USDExporter/variants"
)

// Phase is the name of the assembly phase in run reports.
const Phase = "assemble"

// OutputSuffix ends the name of assembled documents.
const OutputSuffix = assets.StageSuffix

// Assembler composes the documents of a directory into one document.
type Assembler struct {
	fs            afero.Fs
	logger        *slog.Logger
	setName       string
	hierarchyFile string
	strict        bool
	finderOpts    []assets.Option
	format        format.Format
	upAxis        string
	metersPerUnit float64
	defaultPrim   string
	fps           *float64
	start, end    *float64
	dryRun        bool
}

type Option func(*Assembler)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(a *Assembler) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithSetName sets the name of the created variant sets.
func WithSetName(name string) Option {
	return func(a *Assembler) {
		if name != "" {
			a.setName = name
		}
	}
}

// WithHierarchyFile sets the name of the hierarchy table inside the
// directory.
func WithHierarchyFile(name string) Option {
	return func(a *Assembler) {
		if name != "" {
			a.hierarchyFile = name
		}
	}
}

// Strict rejects hierarchy tables naming undeclared parents.
func Strict(v bool) Option {
	return func(a *Assembler) { a.strict = v }
}

// WithFinderOptions configures document discovery.
func WithFinderOptions(opts ...assets.Option) Option {
	return func(a *Assembler) { a.finderOpts = append(a.finderOpts, opts...) }
}

// WithFormat sets the output format.
func WithFormat(f format.Format) Option {
	return func(a *Assembler) { a.format = f }
}

// WithUnits sets the up axis and scale stamped on the output.
func WithUnits(upAxis string, metersPerUnit float64) Option {
	return func(a *Assembler) {
		if upAxis != "" {
			a.upAxis = upAxis
		}
		if metersPerUnit > 0 {
			a.metersPerUnit = metersPerUnit
		}
	}
}

// WithDefaultPrim wraps the assembly in an assembly kind node called name,
// which becomes the default prim.
func WithDefaultPrim(name string) Option {
	return func(a *Assembler) { a.defaultPrim = strings.TrimSpace(name) }
}

// WithTime stamps a frame rate and time range. Nil values are not
// stamped.
func WithTime(fps, start, end *float64) Option {
	return func(a *Assembler) {
		a.fps, a.start, a.end = fps, start, end
	}
}

// DryRun builds the document without writing it.
func DryRun(v bool) Option {
	return func(a *Assembler) { a.dryRun = v }
}

// FromConfig returns the options c implies. c must be valid.
func FromConfig(c *config.Config) []Option {
	f, _ := c.Format()
	return []Option{
		WithSetName(c.VariantSetName),
		WithHierarchyFile(c.HierarchyFile),
		Strict(c.StrictHierarchy),
		WithFinderOptions(c.FinderOptions()...),
		WithFormat(f),
		WithUnits(c.UpAxis, c.MetersPerUnit),
		WithDefaultPrim(c.DefaultPrim),
		WithTime(c.FPS, c.StartFrame, c.EndFrame),
	}
}

func New(fs afero.Fs, opts ...Option) *Assembler {
	a := &Assembler{
		fs:            fs,
		logger:        slog.Default(),
		setName:       variants.DefaultSetName,
		hierarchyFile: "_hierarchy.txt",
		format:        format.USDAFormat,
		upAxis:        "Z",
		metersPerUnit: 0.01,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Result is the outcome of assembling one directory.
type Result struct {
	Dir    string
	Output string
	Doc    *scene.Document
	// Created maps each source name to the node it was assembled into.
	Created map[string]scene.Path
	Phase   *diag.PhaseResult
}

// OutputPath returns the path of the document assembled from dir.
func (a *Assembler) OutputPath(dir string) string {
	dir = filepath.Clean(dir)
	return filepath.Join(dir, suffix.Sanitize(filepath.Base(dir))+OutputSuffix+a.format.Ext())
}

// Assemble composes the documents under dir and writes the result next to
// them, replacing any earlier output. Branch level problems degrade the
// phase; failing to scan dir, to read the hierarchy table or to write the
// output fails it.
func (a *Assembler) Assemble(dir string) *Result {
	res := &Result{
		Dir:     dir,
		Output:  a.OutputPath(dir),
		Created: map[string]scene.Path{},
	}
	res.Phase = diag.Run(Phase, func(pr *diag.PhaseResult) error {
		return a.run(res, pr)
	})
	return res
}

func (a *Assembler) run(res *Result, pr *diag.PhaseResult) error {
	finder, err := assets.NewFinder(a.fs, res.Dir, a.finderOpts...)
	if err != nil {
		return &diag.IOError{Op: "scan", Path: res.Dir, Err: err}
	}
	doc := scene.NewDocument()
	a.stamp(doc)
	res.Doc = doc
	st := &state{
		Assembler: a,
		finder:    finder,
		pr:        pr,
		created:   res.Created,
		metas:     map[string]Meta{},
	}

	root := doc.Root()
	if a.defaultPrim != "" {
		name := suffix.Sanitize(a.defaultPrim)
		n := scene.NewNode(name, "Xform")
		n.Kind = "assembly"
		if err := root.AddChild(n); err != nil {
			return err
		}
		if err := doc.SetDefaultPrim(name); err != nil {
			return err
		}
		root = n
	}

	var names []string
	hp := filepath.Join(res.Dir, a.hierarchyFile)
	if docio.Exists(a.fs, hp) {
		entries, err := hierarchy.ReadFile(a.fs, hp)
		if err != nil {
			return &diag.IOError{Op: "read", Path: hp, Err: err}
		}
		tree, err := hierarchy.Build(entries, hierarchy.Strict(a.strict))
		if err != nil {
			return diag.Invalid(hp, err, "hierarchy table")
		}
		for _, name := range tree.Orphans {
			st.warn("%s: parent %q of %q is not declared", a.hierarchyFile, tree.Nodes[name].Parent, name)
		}
		st.tree = tree
		names = tree.Roots
		a.logger.Debug("read hierarchy", "path", hp, "entries", tree.Len(), "roots", len(tree.Roots))
	} else {
		for _, f := range finder.All() {
			names = append(names, f.Name)
		}
		a.logger.Debug("no hierarchy table, grouping files by base name", "dir", res.Dir, "files", len(names))
	}

	st.children(root, names)

	if st.tree != nil {
		for _, name := range st.tree.Unreachable() {
			st.warn("%s: %q is not reachable from a root", a.hierarchyFile, name)
		}
	}
	if doc.DefaultPrim == "" {
		if roots := doc.RootNodes(); len(roots) != 0 {
			doc.DefaultPrim = roots[0].Name
		}
	}
	pr.Count("nodes", len(res.Created))

	if a.dryRun {
		return nil
	}
	if err := docio.WriteFile(a.fs, res.Output, doc); err != nil {
		return &diag.IOError{Op: "write", Path: res.Output, Err: err}
	}
	a.logger.Info("assembled", "output", res.Output, "nodes", len(res.Created), "status", pr.Status)
	return nil
}

func (a *Assembler) stamp(doc *scene.Document) {
	doc.UpAxis = a.upAxis
	mpu := a.metersPerUnit
	doc.MetersPerUnit = &mpu
	if a.fps != nil {
		fps := *a.fps
		doc.FramesPerSecond = &fps
		doc.TimeCodesPerSecond = &fps
	}
	if a.start != nil {
		s := *a.start
		doc.StartTimeCode = &s
	}
	if a.end != nil {
		e := *a.end
		doc.EndTimeCode = &e
	}
}

// state is the bookkeeping of one assembly.
type state struct {
	*Assembler
	finder  *assets.Finder
	tree    *hierarchy.Tree
	pr      *diag.PhaseResult
	created map[string]scene.Path
	metas   map[string]Meta
}

func (st *state) warn(format string, args ...any) {
	st.pr.Warn(format, args...)
	st.logger.Warn(fmt.Sprintf(format, args...))
}

func (st *state) problem(err error) {
	st.pr.Degrade(err)
	st.logger.Warn(err.Error())
}

func (st *state) childNames(name string) []string {
	if st.tree == nil {
		return nil
	}
	return st.tree.Children(name)
}

// children assembles names under parent, group by group. A failing group
// does not stop its siblings.
func (st *state) children(parent *scene.Node, names []string) {
	for _, g := range Groups(names) {
		if err := st.check(parent, g); err != nil {
			st.problem(err)
			continue
		}
		switch {
		case g.Single():
			st.plain(parent, g.Members[0])
		case g.HasPurposes():
			st.purposeGroup(parent, g)
		case len(g.Tagged()) != 0:
			st.variantGroup(parent, g)
		default:
			// members differing only by a payload marker
			for _, m := range g.Members {
				st.plain(parent, m)
			}
		}
	}
}

// check rejects a group whose variant members contain variants of the
// same base, or whose variant names collide.
func (st *state) check(parent *scene.Node, g *Group) error {
	at := parent.Path().Child(suffix.Sanitize(g.Base)).String()
	for _, m := range g.Tagged() {
		if bad := st.nested(m.Name, g.Base, map[string]bool{}); bad != "" {
			return diag.Invalid(at, diag.ErrNesting, "variant %q is under variant %q", bad, m.Name)
		}
	}
	var sets [][]suffix.Parts
	if g.HasPurposes() {
		for _, b := range g.Buckets() {
			if b.NeedsVariants() {
				sets = append(sets, b.Members)
			}
		}
	} else if len(g.Tagged()) != 0 {
		sets = append(sets, g.Members)
	}
	for _, ms := range sets {
		seen := map[string]string{}
		for _, m := range ms {
			v := VariantName(m)
			if prev, dup := seen[v]; dup {
				return diag.Invalid(at, diag.ErrMalformed, "%q and %q both make variant %q", prev, m.Name, v)
			}
			seen[v] = m.Name
		}
	}
	return nil
}

func (st *state) nested(name, base string, seen map[string]bool) string {
	if seen[name] {
		return ""
	}
	seen[name] = true
	for _, c := range st.childNames(name) {
		p := suffix.Parse(c)
		if p.HasVariant() && p.Base == base {
			return c
		}
		if bad := st.nested(c, base, seen); bad != "" {
			return bad
		}
	}
	return ""
}

func (st *state) define(parent *scene.Node, name, typeName string) (*scene.Node, error) {
	if parent.Child(name) != nil {
		return nil, diag.Invalid(parent.Path().Child(name).String(), ErrNameClash, "node already assembled")
	}
	n := scene.NewNode(name, typeName)
	if err := parent.AddChild(n); err != nil {
		return nil, err
	}
	return n, nil
}

// source finds the document of name and reads its metadata.
func (st *state) source(name string) (assets.File, Meta, bool) {
	file, ok := st.finder.Find(name)
	if !ok {
		return assets.File{}, Meta{}, false
	}
	if m, ok := st.metas[file.Path]; ok {
		return file, m, true
	}
	var m Meta
	doc, err := docio.ReadFile(st.fs, file.Path)
	if err != nil {
		st.warn("%s: metadata not read: %v", file.Rel, err)
	} else if m, ok = ReadMeta(doc, name); !ok {
		st.warn("%s: no root node", file.Rel)
	}
	st.metas[file.Path] = m
	return file, m, true
}

func (st *state) arc(file assets.File, m Meta, p suffix.Parts) scene.Arc {
	kind := scene.ArcReference
	if m.UsePayload() || p.Payload {
		kind = scene.ArcPayload
		st.pr.Count("payloads", 1)
	} else {
		st.pr.Count("references", 1)
	}
	return scene.Arc{Kind: kind, AssetPath: file.Ref()}
}

// props applies the kind and instanceable flag of a source to n. An
// instanceable source is not made instanceable when n receives children.
func (st *state) props(n *scene.Node, m Meta, hasChildren bool) {
	if m.Kind != "" {
		n.Kind = m.Kind
	}
	if m.Instanceable == nil || !*m.Instanceable {
		return
	}
	if hasChildren {
		st.warn("%s: not instanceable, it has children in the hierarchy", n.Path())
		st.pr.Count("instanceableSkipped", 1)
		return
	}
	n.SetInstanceable(true)
}

func (st *state) plain(parent *scene.Node, p suffix.Parts) {
	if at, ok := st.created[p.Name]; ok {
		if debug.Assemble() {
			debug.Logf("assemble: %s already at %s\n", p.Name, at)
		}
		return
	}
	kids := st.childNames(p.Name)
	name := suffix.Sanitize(p.Name)
	file, m, found := st.source(p.Name)
	if !found {
		n, err := st.define(parent, name, "Xform")
		if err != nil {
			st.problem(err)
			return
		}
		if len(kids) == 0 {
			st.problem(&diag.ReferenceError{Name: p.Name})
		}
		st.pr.Count("containers", 1)
		if debug.Assemble() {
			debug.Logf("assemble: + %s (group)\n", n.Path())
		}
		st.created[p.Name] = n.Path()
		st.children(n, kids)
		return
	}
	n, err := st.define(parent, name, m.GeomType())
	if err != nil {
		st.problem(err)
		return
	}
	n.AddArc(st.arc(file, m, p))
	st.props(n, m, len(kids) != 0)
	if debug.Assemble() {
		debug.Logf("assemble: + %s -> %s\n", n.Path(), file.Ref())
	}
	st.created[p.Name] = n.Path()
	if n.IsInstanceable() {
		return
	}
	st.children(n, kids)
}

func (st *state) purposeGroup(parent *scene.Node, g *Group) {
	n, err := st.define(parent, suffix.Sanitize(g.Base), "Xform")
	if err != nil {
		st.problem(err)
		return
	}
	st.pr.Count("purposeGroups", 1)
	if debug.Assemble() {
		debug.Logf("assemble: + %s (purpose group)\n", n.Path())
	}
	for _, b := range g.Buckets() {
		st.bucket(n, b)
	}
	st.children(n, st.memberChildren(g))
}

func (st *state) bucket(group *scene.Node, b *Bucket) {
	switch {
	case b.NeedsVariants():
		n, err := st.define(group, b.Name, "")
		if err != nil {
			st.problem(err)
			return
		}
		if p := b.Purpose(); p != suffix.NoPurpose {
			n.SetPurpose(string(p))
		}
		st.variants(n, b.Members, false)
	case len(b.Members) == 1:
		p := b.Members[0]
		file, m, found := st.source(p.Name)
		n, err := st.define(group, b.Name, m.GeomType())
		if err != nil {
			st.problem(err)
			return
		}
		if pp := b.Purpose(); pp != suffix.NoPurpose {
			n.SetPurpose(string(pp))
		}
		st.created[p.Name] = n.Path()
		if !found {
			st.problem(&diag.ReferenceError{Name: p.Name})
			return
		}
		n.AddArc(st.arc(file, m, p))
		st.props(n, m, false)
		if debug.Assemble() {
			debug.Logf("assemble: + %s (purpose=%s) -> %s\n", n.Path(), b.Name, file.Ref())
		}
	default:
		st.problem(diag.Invalid(group.Path().Child(b.Name).String(), ErrAmbiguous,
			"%d members without a variant marker", len(b.Members)))
	}
}

func (st *state) variantGroup(parent *scene.Node, g *Group) {
	n, err := st.define(parent, suffix.Sanitize(g.Base), "")
	if err != nil {
		st.problem(err)
		return
	}
	kids := st.memberChildren(g)
	st.variants(n, g.Members, len(kids) != 0)
	st.children(n, kids)
}

// variants builds a variant set on owner with one variant per resolved
// member. When no member resolves, owner stays a plain container.
func (st *state) variants(owner *scene.Node, members []suffix.Parts, hasChildren bool) {
	type source struct {
		p    suffix.Parts
		file assets.File
		m    Meta
	}
	var resolved []source
	for _, p := range members {
		file, m, found := st.source(p.Name)
		if !found {
			st.problem(&diag.ReferenceError{Name: p.Name})
			continue
		}
		resolved = append(resolved, source{p: p, file: file, m: m})
	}
	if len(resolved) == 0 {
		if owner.TypeName == "" {
			owner.TypeName = "Xform"
		}
		st.pr.Count("containers", 1)
		st.warn("%s: no variant resolved, left as a container", owner.Path())
		return
	}
	vs := owner.AddVariantSet(st.setName)
	parts := make([]suffix.Parts, len(resolved))
	for i, r := range resolved {
		v := vs.AddVariant(VariantName(r.p))
		v.Scope.AddArc(st.arc(r.file, r.m, r.p))
		st.props(v.Scope, r.m, hasChildren)
		st.created[r.p.Name] = owner.Path()
		parts[i] = r.p
		if debug.Assemble() {
			debug.Logf("assemble: %s{%s=%s} -> %s\n", owner.Path(), vs.Name, v.Name, r.file.Ref())
		}
	}
	st.pr.Count("variantSets", 1)
	st.pr.Count("variants", len(vs.Variants))
	vs.Selection = Selection(parts)
}

func (st *state) memberChildren(g *Group) []string {
	var res []string
	for _, m := range g.Members {
		res = append(res, st.childNames(m.Name)...)
	}
	return res
}
