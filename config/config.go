package config

import (
	"bytes"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/goccy/go-yaml"
	"github.com/spf13/afero"

	"github.com/cl0nazepamm/P-USDExporter/assets"
	"github.com/cl0nazepamm/P-USDExporter/format"
	"github.com/cl0nazepamm/P-USDExporter/nsedit"
	"github.com/cl0nazepamm/P-USDExporter/variants"
)

// Config holds the naming conventions of an exporter and the defaults of
// an assembly.
type Config struct {
	// WrapperName is the name of the synthetic node exports are wrapped in.
	WrapperName string `yaml:"wrapperName" json:"wrapperName"`
	// MaterialScopes are the names of material holding scopes.
	MaterialScopes []string `yaml:"materialScopes" json:"materialScopes"`
	ClassPrefix    string   `yaml:"classPrefix" json:"classPrefix"`

	SkelRootType string `yaml:"skelRootType" json:"skelRootType"`
	SkeletonType string `yaml:"skeletonType" json:"skeletonType"`
	BonesScope   string `yaml:"bonesScope" json:"bonesScope"`
	// SceneWrapperPattern is a regular expression matching the scene
	// wrapper flattened under a skeletal root.
	SceneWrapperPattern string   `yaml:"sceneWrapperPattern" json:"sceneWrapperPattern"`
	JointAttributes     []string `yaml:"jointAttributes" json:"jointAttributes"`

	VariantSetName string `yaml:"variantSetName" json:"variantSetName"`

	HierarchyFile string   `yaml:"hierarchyFile" json:"hierarchyFile"`
	Extensions    []string `yaml:"extensions" json:"extensions"`
	Ignore        []string `yaml:"ignore" json:"ignore"`
	OutputFormat  string   `yaml:"outputFormat" json:"outputFormat"`
	// StrictHierarchy rejects hierarchy tables naming undeclared parents.
	StrictHierarchy bool `yaml:"strictHierarchy" json:"strictHierarchy"`

	UpAxis        string  `yaml:"upAxis" json:"upAxis"`
	MetersPerUnit float64 `yaml:"metersPerUnit" json:"metersPerUnit"`

	DefaultPrim string   `yaml:"defaultPrim,omitempty" json:"defaultPrim,omitempty"`
	FPS         *float64 `yaml:"fps,omitempty" json:"fps,omitempty"`
	StartFrame  *float64 `yaml:"startFrame,omitempty" json:"startFrame,omitempty"`
	EndFrame    *float64 `yaml:"endFrame,omitempty" json:"endFrame,omitempty"`
}

// Default returns the conventions of the stock exporter.
func Default() *Config {
	s := nsedit.DefaultSettings()
	return &Config{
		WrapperName:         s.WrapperName,
		MaterialScopes:      slices.Clone(s.MaterialScopes),
		ClassPrefix:         s.ClassPrefix,
		SkelRootType:        s.SkelRootType,
		SkeletonType:        s.SkeletonType,
		BonesScope:          s.BonesScope,
		SceneWrapperPattern: s.ScenePattern.String(),
		JointAttributes:     slices.Clone(s.JointAttrs),
		VariantSetName:      variants.DefaultSetName,
		HierarchyFile:       "_hierarchy.txt",
		Extensions:          slices.Clone(assets.DefaultExtensions),
		Ignore:              slices.Clone(assets.DefaultIgnore),
		OutputFormat:        "usda",
		UpAxis:              "Z",
		MetersPerUnit:       0.01,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	for _, f := range []struct{ name, v string }{
		{"wrapperName", c.WrapperName},
		{"skelRootType", c.SkelRootType},
		{"skeletonType", c.SkeletonType},
		{"variantSetName", c.VariantSetName},
		{"hierarchyFile", c.HierarchyFile},
	} {
		if strings.TrimSpace(f.v) == "" {
			return fmt.Errorf("%w: %s is empty", ErrInvalid, f.name)
		}
	}
	for _, name := range c.MaterialScopes {
		if name == "" {
			return fmt.Errorf("%w: empty material scope name", ErrInvalid)
		}
	}
	if _, err := regexp.Compile(c.SceneWrapperPattern); err != nil {
		return fmt.Errorf("%w: sceneWrapperPattern: %w", ErrInvalid, err)
	}
	for _, p := range c.Ignore {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("%w: ignore pattern %q", ErrInvalid, p)
		}
	}
	if _, err := c.Format(); err != nil {
		return fmt.Errorf("%w: outputFormat: %w", ErrInvalid, err)
	}
	switch c.UpAxis {
	case "Y", "Z":
	default:
		return fmt.Errorf("%w: upAxis %q", ErrInvalid, c.UpAxis)
	}
	if c.MetersPerUnit <= 0 {
		return fmt.Errorf("%w: metersPerUnit %v", ErrInvalid, c.MetersPerUnit)
	}
	if c.FPS != nil && *c.FPS <= 0 {
		return fmt.Errorf("%w: fps %v", ErrInvalid, *c.FPS)
	}
	return nil
}

// Format returns the output format.
func (c *Config) Format() (format.Format, error) {
	return format.ParseFormat(c.OutputFormat)
}

// Settings returns the namespace editing conventions. c must be valid.
func (c *Config) Settings() nsedit.Settings {
	return nsedit.Settings{
		WrapperName:    c.WrapperName,
		MaterialScopes: c.MaterialScopes,
		ClassPrefix:    c.ClassPrefix,
		SkelRootType:   c.SkelRootType,
		SkeletonType:   c.SkeletonType,
		BonesScope:     c.BonesScope,
		ScenePattern:   regexp.MustCompile(c.SceneWrapperPattern),
		JointAttrs:     c.JointAttributes,
	}
}

// FinderOptions returns the asset discovery options.
func (c *Config) FinderOptions() []assets.Option {
	return []assets.Option{assets.Extensions(c.Extensions...), assets.Ignore(c.Ignore...)}
}

// Decode overlays the YAML (or JSON) in data onto c. Keys absent from data
// keep their values.
func (c *Config) Decode(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	return yaml.UnmarshalWithOptions(data, c, yaml.DisallowUnknownField())
}

// Marshal returns c as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.MarshalWithOptions(c, yaml.Indent(2), yaml.IndentSequence(true))
}

// LoadFile reads the config file at path over the defaults.
func LoadFile(fs afero.Fs, path string) (*Config, error) {
	c := Default()
	if err := c.load(fs, path); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func (c *Config) load(fs afero.Fs, path string) error {
	d, err := afero.ReadFile(fs, path)
	if err != nil {
		return err
	}
	if err := c.Decode(d); err != nil {
		return fmt.Errorf("%w %s: %w", ErrLoad, path, err)
	}
	return nil
}
