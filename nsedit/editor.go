package nsedit

import (
	"log/slog"
	"regexp"
	"slices"
	"strings"

	"github.com/cl0nazepamm/P-USDExporter/remap"
	"github.com/cl0nazepamm/P-USDExporter/scene"
)

// Settings name the conventions an exporter uses.
type Settings struct {
	WrapperName    string
	MaterialScopes []string
	ClassPrefix    string
	SkelRootType   string
	SkeletonType   string
	BonesScope     string
	// ScenePattern matches the scene wrapper flattened under a skeletal
	// root.
	ScenePattern *regexp.Regexp
	JointAttrs   []string
}

// DefaultSettings returns the conventions of the exporter.
func DefaultSettings() Settings {
	return Settings{
		WrapperName:    "root",
		MaterialScopes: []string{"mtl", "Looks", "Materials"},
		ClassPrefix:    "_class_",
		SkelRootType:   "SkelRoot",
		SkeletonType:   "Skeleton",
		BonesScope:     "Bones",
		ScenePattern:   regexp.MustCompile(`(?i)^scene($|_)`),
		JointAttrs:     remap.DefaultJointAttributes,
	}
}

// Editor edits the namespace of documents.
type Editor struct {
	s      Settings
	logger *slog.Logger
}

type Option func(*Editor)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.logger = l
		}
	}
}

// New returns an editor using s.
func New(s Settings, opts ...Option) *Editor {
	e := &Editor{s: s, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	if e.s.ScenePattern == nil {
		e.s.ScenePattern = DefaultSettings().ScenePattern
	}
	return e
}

func (e *Editor) isMaterial(name string) bool {
	return slices.Contains(e.s.MaterialScopes, name)
}

func (e *Editor) isClass(n *scene.Node) bool {
	return n.Specifier == scene.SpecClass || (e.s.ClassPrefix != "" && strings.HasPrefix(n.Name, e.s.ClassPrefix))
}
