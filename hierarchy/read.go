package hierarchy

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"

	"github.com/cl0nazepamm/P-USDExporter/debug"
)

// Entry is one line of a hierarchy table. An empty Parent marks a root.
type Entry struct {
	Name   string
	Parent string
	Line   int
}

// Read reads a hierarchy table: one "name|parent" entry per line, with an
// empty parent for roots. Blank lines and lines starting with '#' are
// ignored, as are lines without a separator.
func Read(r io.Reader) ([]Entry, error) {
	var res []Entry
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		name, parent, ok := strings.Cut(text, "|")
		if !ok {
			if debug.Assemble() {
				debug.Logf("hierarchy line %d has no separator: %q\n", line, text)
			}
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("%w %d: empty name", ErrBadLine, line)
		}
		// extra fields after the parent are reserved
		parent, _, _ = strings.Cut(parent, "|")
		res = append(res, Entry{Name: name, Parent: strings.TrimSpace(parent), Line: line})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// ReadFile reads the hierarchy table at path.
func ReadFile(fs afero.Fs, path string) ([]Entry, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	res, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return res, nil
}
