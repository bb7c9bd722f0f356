// Package libdiff computes line diffs between serialized scene documents.
package libdiff

import (
	"fmt"

	"github.com/cl0nazepamm/P-USDExporter/docio"
	"github.com/cl0nazepamm/P-USDExporter/format"
	"github.com/cl0nazepamm/P-USDExporter/scene"
)

// Docs diffs two documents by their encodings in format f. A nil document
// encodes as empty text.
func Docs(from, to *scene.Document, f format.Format) ([]Line, error) {
	a, err := encode(from, f)
	if err != nil {
		return nil, fmt.Errorf("encoding from document: %w", err)
	}
	b, err := encode(to, f)
	if err != nil {
		return nil, fmt.Errorf("encoding to document: %w", err)
	}
	return Lines(a, b), nil
}

func encode(doc *scene.Document, f format.Format) (string, error) {
	if doc == nil {
		return "", nil
	}
	d, err := docio.Marshal(doc, f)
	if err != nil {
		return "", err
	}
	return string(d), nil
}
