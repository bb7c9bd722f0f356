package assets

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"

	"github.com/cl0nazepamm/P-USDExporter/debug"
	"github.com/cl0nazepamm/P-USDExporter/format"
)

// StageSuffix marks assembled outputs.
const StageSuffix = "_stage"

var (
	DefaultExtensions = []string{".usda", ".yaml", ".yml", ".json"}
	DefaultIgnore     = []string{"**/.*", "**/_*"}
)

// File is a discovered document.
type File struct {
	// Name is the file name without extension.
	Name string
	// Path is the path on the Finder's file system.
	Path string
	// Rel is the slash separated path relative to the Finder's root.
	Rel    string
	Format format.Format

	depth int
	ext   int
}

// Ref returns the relative asset path used to reference f from a document
// stored at the root of the directory.
func (f File) Ref() string {
	return "./" + f.Rel
}

type Finder struct {
	fs     afero.Fs
	root   string
	exts   []string
	ignore []string

	files []File
	index map[string]File
}

type Option func(*Finder)

// Extensions sets the document extensions, in order of preference.
func Extensions(exts ...string) Option {
	return func(f *Finder) {
		if len(exts) == 0 {
			return
		}
		f.exts = make([]string, len(exts))
		for i, e := range exts {
			if !strings.HasPrefix(e, ".") {
				e = "." + e
			}
			f.exts[i] = strings.ToLower(e)
		}
	}
}

// Ignore sets the ignore globs. Patterns are matched against slash
// separated paths relative to the root, with doublestar semantics.
func Ignore(patterns ...string) Option {
	return func(f *Finder) {
		f.ignore = slices.Clone(patterns)
	}
}

// NewFinder scans root on fsys.
func NewFinder(fsys afero.Fs, root string, opts ...Option) (*Finder, error) {
	f := &Finder{
		fs:     fsys,
		root:   filepath.Clean(root),
		exts:   DefaultExtensions,
		ignore: DefaultIgnore,
	}
	for _, opt := range opts {
		opt(f)
	}
	for _, p := range f.ignore {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("%w: %q", ErrBadPattern, p)
		}
	}
	if err := f.Scan(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *Finder) Root() string { return f.root }

// Scan rebuilds the index from the file system.
func (f *Finder) Scan() error {
	fi, err := f.fs.Stat(f.root)
	if err != nil {
		return err
	}
	if !fi.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotDir, f.root)
	}
	var files []File
	index := map[string]File{}
	err = afero.Walk(f.fs, f.root, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if p == f.root {
			return nil
		}
		rel, err := filepath.Rel(f.root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if f.ignored(rel) {
			if debug.Assemble() {
				debug.Logf("assets: ignore %s\n", rel)
			}
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			return nil
		}
		file, ok := f.file(p, rel)
		if !ok {
			return nil
		}
		files = append(files, file)
		if prev, dup := index[file.Name]; !dup || better(file, prev) {
			index[file.Name] = file
		}
		return nil
	})
	if err != nil {
		return err
	}
	f.files = files
	f.index = index
	return nil
}

func (f *Finder) ignored(rel string) bool {
	for _, p := range f.ignore {
		if doublestar.MatchUnvalidated(p, rel) {
			return true
		}
	}
	return false
}

func (f *Finder) file(p, rel string) (File, bool) {
	base := path.Base(rel)
	ext := strings.ToLower(path.Ext(base))
	i := slices.Index(f.exts, ext)
	if i < 0 {
		return File{}, false
	}
	name := base[:len(base)-len(ext)]
	if name == "" || strings.HasSuffix(name, StageSuffix) {
		return File{}, false
	}
	ft, err := format.FromPath(base)
	if err != nil {
		return File{}, false
	}
	return File{
		Name:   name,
		Path:   p,
		Rel:    rel,
		Format: ft,
		depth:  strings.Count(rel, "/"),
		ext:    i,
	}, true
}

func better(a, b File) bool {
	if a.depth != b.depth {
		return a.depth < b.depth
	}
	if a.ext != b.ext {
		return a.ext < b.ext
	}
	return a.Rel < b.Rel
}

// Find returns the document named name.
func (f *Finder) Find(name string) (File, bool) {
	file, ok := f.index[name]
	return file, ok
}

// Lookup is like Find but reports a missing name with ErrNotFound.
func (f *Finder) Lookup(name string) (File, error) {
	file, ok := f.index[name]
	if !ok {
		return File{}, fmt.Errorf("%w named %q under %s", ErrNotFound, name, f.root)
	}
	return file, nil
}

// All returns the preferred file of every name, in walk order.
func (f *Finder) All() []File {
	res := make([]File, 0, len(f.index))
	for _, file := range f.files {
		if f.index[file.Name].Path == file.Path {
			res = append(res, file)
		}
	}
	return res
}

// Len returns the number of distinct names.
func (f *Finder) Len() int { return len(f.index) }
