package props

import "github.com/cl0nazepamm/P-USDExporter/scene"

// FileInput is the shader input receiving a texture's file.
const FileInput = "inputs:file"

// TextureSource is a host texture map. It is one of File, SourceMap,
// BitmapMap or HDRI.
type TextureSource interface {
	textureSource()
}

// File is a bitmap texture naming its file directly.
type File struct {
	Filename string
}

// SourceMap wraps another map, as OSL and wrapper textures do.
type SourceMap struct {
	Source TextureSource
}

// BitmapMap holds a bitmap.
type BitmapMap struct {
	Bitmap TextureSource
}

// HDRI is an environment texture.
type HDRI struct {
	MapName string
}

func (File) textureSource()      {}
func (SourceMap) textureSource() {}
func (BitmapMap) textureSource() {}
func (HDRI) textureSource()      {}

// FilePath returns the file a texture map reads. Wrapped maps are followed
// one level only: a SourceMap or BitmapMap must hold a File.
func FilePath(src TextureSource) (string, bool) {
	switch x := src.(type) {
	case File:
		return x.Filename, x.Filename != ""
	case SourceMap:
		return innerFile(x.Source)
	case BitmapMap:
		return innerFile(x.Bitmap)
	case HDRI:
		return x.MapName, x.MapName != ""
	}
	return "", false
}

func innerFile(src TextureSource) (string, bool) {
	f, ok := src.(File)
	if !ok || f.Filename == "" {
		return "", false
	}
	return f.Filename, true
}

// TextureMap is the sidecar form of a texture map.
type TextureMap struct {
	Filename  string      `yaml:"filename,omitempty" json:"filename,omitempty"`
	SourceMap *TextureMap `yaml:"sourceMap,omitempty" json:"sourceMap,omitempty"`
	Bitmap    *TextureMap `yaml:"bitmap,omitempty" json:"bitmap,omitempty"`
	HDRIMap   string      `yaml:"hdriMapName,omitempty" json:"hdriMapName,omitempty"`
}

// Source returns the shape of m. Fields are tried in the order filename,
// sourceMap, bitmap, hdriMapName; a nested map that names no file does not
// stop the probe.
func (m *TextureMap) Source() (TextureSource, bool) {
	if m == nil {
		return nil, false
	}
	if m.Filename != "" {
		return File{Filename: m.Filename}, true
	}
	if m.SourceMap != nil && m.SourceMap.Filename != "" {
		return SourceMap{Source: File{Filename: m.SourceMap.Filename}}, true
	}
	if m.Bitmap != nil && m.Bitmap.Filename != "" {
		return BitmapMap{Bitmap: File{Filename: m.Bitmap.Filename}}, true
	}
	if m.HDRIMap != "" {
		return HDRI{MapName: m.HDRIMap}, true
	}
	return nil, false
}

// applyTexture sets the file input of n from m.
func applyTexture(n *scene.Node, m *TextureMap) (string, bool) {
	src, ok := m.Source()
	if !ok {
		return "", false
	}
	p, ok := FilePath(src)
	if !ok {
		return "", false
	}
	n.SetAttr(&scene.Attribute{Name: FileInput, TypeName: "asset", Value: scene.Asset(p)})
	return p, true
}
