package docio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/goccy/go-yaml"
	"github.com/spf13/afero"

	"github.com/cl0nazepamm/P-USDExporter/format"
	"github.com/cl0nazepamm/P-USDExporter/scene"
	"github.com/cl0nazepamm/P-USDExporter/usda"
)

// Decode reads a document in format f. name is used in error messages.
func Decode(data []byte, f format.Format, name string) (*scene.Document, error) {
	switch f {
	case format.USDAFormat:
		return usda.Parse(data, usda.ParseFile(name))
	case format.YAMLFormat, format.JSONFormat:
		t := &Tree{}
		if err := yaml.Unmarshal(data, t); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrBadDocument, name, err)
		}
		return FromTree(t)
	}
	return nil, fmt.Errorf("%w: %d", format.ErrBadFormat, f)
}

// Encode writes doc in format f. The usda options only apply to text layers.
func Encode(doc *scene.Document, w io.Writer, f format.Format, opts ...usda.EncodeOption) error {
	switch f {
	case format.USDAFormat:
		return usda.Encode(doc, w, opts...)
	case format.YAMLFormat:
		d, err := yaml.MarshalWithOptions(ToTree(doc), yaml.Indent(2), yaml.IndentSequence(true))
		if err != nil {
			return err
		}
		_, err = w.Write(d)
		return err
	case format.JSONFormat:
		d, err := MarshalJSON(doc)
		if err != nil {
			return err
		}
		_, err = w.Write(d)
		return err
	}
	return fmt.Errorf("%w: %d", format.ErrBadFormat, f)
}

// Marshal returns doc encoded in format f.
func Marshal(doc *scene.Document, f format.Format, opts ...usda.EncodeOption) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := Encode(doc, buf, f, opts...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalJSON returns the indented JSON tree form of doc.
func MarshalJSON(doc *scene.Document) ([]byte, error) {
	d, err := yaml.MarshalWithOptions(ToTree(doc), yaml.JSON())
	if err != nil {
		return nil, err
	}
	buf := &bytes.Buffer{}
	if err := json.Indent(buf, bytes.TrimSpace(d), "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// ReadFile reads the document at path, choosing the format from the
// extension.
func ReadFile(fs afero.Fs, path string) (*scene.Document, error) {
	f, err := format.FromPath(path)
	if err != nil {
		return nil, err
	}
	d, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}
	return Decode(d, f, path)
}

// WriteFile writes doc to path, replacing any existing file. The document
// is written to a temporary file in the same directory first and renamed
// into place.
func WriteFile(fs afero.Fs, path string, doc *scene.Document, opts ...usda.EncodeOption) error {
	f, err := format.FromPath(path)
	if err != nil {
		return err
	}
	d, err := Marshal(doc, f, opts...)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := afero.TempFile(fs, dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(d); err != nil {
		tmp.Close()
		fs.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		fs.Remove(tmpName)
		return err
	}
	if err := fs.Chmod(tmpName, 0o644); err != nil {
		fs.Remove(tmpName)
		return err
	}
	if err := fs.Rename(tmpName, path); err != nil {
		fs.Remove(tmpName)
		return err
	}
	return nil
}

// Exists reports whether path names a regular file.
func Exists(fs afero.Fs, path string) bool {
	fi, err := fs.Stat(path)
	if err != nil {
		return false
	}
	return !fi.IsDir()
}
