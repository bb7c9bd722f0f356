package hook

import (
	"fmt"
	"log/slog"

	"github.com/spf13/afero"

	"github.com/cl0nazepamm/P-USDExporter/diag"
	"github.com/cl0nazepamm/P-USDExporter/docio"
	"github.com/cl0nazepamm/P-USDExporter/nsedit"
	"github.com/cl0nazepamm/P-USDExporter/props"
	"github.com/cl0nazepamm/P-USDExporter/scene"
	"github.com/cl0nazepamm/P-USDExporter/usda"
	"github.com/cl0nazepamm/P-USDExporter/variants"
)

// Phase names, in run order.
const (
	PhaseRead       = "read"
	PhaseProperties = "properties"
	PhaseStrip      = "strip"
	PhaseVariants   = "variants"
	PhaseWrite      = "write"
)

// Input is what the host hands over after an export.
type Input struct {
	Doc     *scene.Document
	Handles props.Handles
	// Host resolves Handles. A nil Host skips the properties phase.
	Host props.Host
}

type Hook struct {
	settings     nsedit.Settings
	editor       *nsedit.Editor
	restructurer *variants.Restructurer
	logger       *slog.Logger
	setName      string
}

type Option func(*Hook)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(h *Hook) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithSetName sets the name of the variant sets built from siblings.
func WithSetName(name string) Option {
	return func(h *Hook) { h.setName = name }
}

func New(s nsedit.Settings, opts ...Option) *Hook {
	h := &Hook{settings: s, logger: slog.Default()}
	for _, opt := range opts {
		opt(h)
	}
	h.editor = nsedit.New(s, nsedit.WithLogger(h.logger))
	h.restructurer = variants.New(variants.WithSetName(h.setName), variants.WithLogger(h.logger))
	return h
}

// PostExport runs the properties, strip and variants phases on in.Doc.
func (h *Hook) PostExport(in Input) *diag.Report {
	rep := &diag.Report{}
	h.run(rep, in)
	rep.Log(h.logger)
	return rep
}

func (h *Hook) run(rep *diag.Report, in Input) {
	rep.Add(diag.Run(PhaseProperties, func(pr *diag.PhaseResult) error {
		return h.properties(pr, in)
	}))
	rep.Add(diag.Run(PhaseStrip, func(pr *diag.PhaseResult) error {
		return h.strip(pr, in.Doc)
	}))
	rep.Add(diag.Run(PhaseVariants, func(pr *diag.PhaseResult) error {
		return h.variants(pr, in.Doc)
	}))
}

func (h *Hook) properties(pr *diag.PhaseResult, in Input) error {
	if in.Host == nil {
		pr.Skip("no host")
		return nil
	}
	res := props.Apply(in.Doc, in.Handles, in.Host)
	pr.Count("processed", res.Processed)
	for _, p := range res.Missing {
		pr.Warn("%s: node or host node missing", p)
	}
	return nil
}

func (h *Hook) strip(pr *diag.PhaseResult, doc *scene.Document) error {
	s, err := h.editor.StripWrapper(doc, scene.RootPath.Child(h.settings.WrapperName))
	if err != nil {
		return err
	}
	if s.Skipped != "" && len(s.Relocations) == 0 {
		pr.Skip("%s", s.Skipped)
		return nil
	}
	for _, r := range s.Relocations {
		pr.Count("moved", len(r.Moved))
		if r.Degraded {
			pr.Degrade(fmt.Errorf("copied instead of moved: %w", r.AtomicErr))
		}
		if err := r.Err(); err != nil {
			pr.Degrade(err)
		}
	}
	pr.Count("remapped", s.Remap.Total())
	if s.LiveAfter < s.LiveBefore {
		pr.Warn("%d target(s) dangle after stripping", s.LiveBefore-s.LiveAfter)
	}
	return nil
}

func (h *Hook) variants(pr *diag.PhaseResult, doc *scene.Document) error {
	for _, r := range h.restructurer.Restructure(doc) {
		if r.Err != nil {
			pr.Degrade(r.Err)
			continue
		}
		pr.Count("sets", 1)
		pr.Count("variants", len(r.Group.Members))
		pr.Count("remapped", r.Remap.Total())
	}
	return nil
}

// FixupFile runs the hook on the document at path and writes it to out,
// which may be path. A document that cannot be read fails the read phase and
// skips the others; the write phase fails on its own.
func (h *Hook) FixupFile(fs afero.Fs, path, out string, handles props.Handles, host props.Host, opts ...usda.EncodeOption) (*scene.Document, *diag.Report) {
	rep := &diag.Report{}
	var doc *scene.Document
	rep.Add(diag.Run(PhaseRead, func(pr *diag.PhaseResult) error {
		var err error
		if doc, err = docio.ReadFile(fs, path); err != nil {
			return &diag.IOError{Op: "read", Path: path, Err: err}
		}
		return nil
	}))
	if doc == nil {
		for _, phase := range []string{PhaseProperties, PhaseStrip, PhaseVariants, PhaseWrite} {
			pr := diag.NewPhase(phase)
			pr.Skip("no document")
			rep.Add(pr)
		}
		rep.Log(h.logger)
		return nil, rep
	}
	h.run(rep, Input{Doc: doc, Handles: handles, Host: host})
	rep.Add(diag.Run(PhaseWrite, func(pr *diag.PhaseResult) error {
		if err := docio.WriteFile(fs, out, doc, opts...); err != nil {
			return &diag.IOError{Op: "write", Path: out, Err: err}
		}
		return nil
	}))
	rep.Log(h.logger)
	return doc, rep
}
