package scene

import (
	"fmt"
	"strings"
)

// Path is an absolute scene path.
//
//   - "/"                     → the pseudo-root
//   - "/World/Hero"           → a prim path
//   - "/World/Hero.purpose"   → a property path on /World/Hero
//   - "/mtl/Mat/Tex.outputs:rgb"
type Path string

// RootPath is the path of the pseudo-root of every document.
const RootPath Path = "/"

// ParsePath checks that s is an absolute prim or property path.
func ParsePath(s string) (Path, error) {
	if s == "" || s[0] != '/' {
		return "", fmt.Errorf("%w: %q is not absolute", ErrBadPath, s)
	}
	if s == "/" {
		return RootPath, nil
	}
	p := Path(s)
	prim := string(p.PrimPath())
	if strings.HasSuffix(prim, "/") {
		return "", fmt.Errorf("%w: %q has a trailing separator", ErrBadPath, s)
	}
	for _, elt := range strings.Split(prim[1:], "/") {
		if !ValidName(elt) {
			return "", fmt.Errorf("%w: %q has invalid element %q", ErrBadPath, s, elt)
		}
	}
	if p.HasProperty() && p.Property() == "" {
		return "", fmt.Errorf("%w: %q has an empty property name", ErrBadPath, s)
	}
	return p, nil
}

// MustPath is like ParsePath but panics on error. It is intended for
// constant paths.
func MustPath(s string) Path {
	p, err := ParsePath(s)
	if err != nil {
		panic(err)
	}
	return p
}

// ValidName reports whether name can be used as a prim name.
func ValidName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

func (p Path) String() string { return string(p) }

func (p Path) IsRoot() bool { return p == RootPath }

func (p Path) IsAbsolute() bool { return len(p) > 0 && p[0] == '/' }

func (p Path) propIndex() int {
	slash := strings.LastIndexByte(string(p), '/')
	dot := strings.IndexByte(string(p[slash+1:]), '.')
	if dot < 0 {
		return -1
	}
	return slash + 1 + dot
}

// HasProperty reports whether p names a property rather than a prim.
func (p Path) HasProperty() bool { return p.propIndex() >= 0 }

// PrimPath strips the property part of p, if any.
func (p Path) PrimPath() Path {
	i := p.propIndex()
	if i < 0 {
		return p
	}
	if i == 1 {
		return RootPath
	}
	return p[:i]
}

// Property returns the property name of p, or "" if p is a prim path.
func (p Path) Property() string {
	i := p.propIndex()
	if i < 0 {
		return ""
	}
	return string(p[i+1:])
}

// Name returns the last element of the prim part of p.
func (p Path) Name() string {
	prim := p.PrimPath()
	if prim.IsRoot() {
		return ""
	}
	return string(prim[strings.LastIndexByte(string(prim), '/')+1:])
}

// Parent returns the parent prim path. The parent of a property path is the
// prim which owns it; the parent of the root is the root.
func (p Path) Parent() Path {
	if p.HasProperty() {
		return p.PrimPath()
	}
	i := strings.LastIndexByte(string(p), '/')
	if i <= 0 {
		return RootPath
	}
	return p[:i]
}

// Child appends a prim name.
func (p Path) Child(name string) Path {
	if p.IsRoot() {
		return Path("/" + name)
	}
	return p + "/" + Path(name)
}

// WithProperty appends a property name to a prim path.
func (p Path) WithProperty(name string) Path {
	return p.PrimPath() + "." + Path(name)
}

// Elements splits the prim part of p into its names.
func (p Path) Elements() []string {
	prim := p.PrimPath()
	if prim.IsRoot() || prim == "" {
		return nil
	}
	return strings.Split(string(prim[1:]), "/")
}

// HasPrefix reports whether p is prefix or lies beneath it, either as a
// descendant prim or as a property of prefix or of a descendant.
func (p Path) HasPrefix(prefix Path) bool {
	if prefix.IsRoot() {
		return p.IsAbsolute()
	}
	if p == prefix {
		return true
	}
	if !strings.HasPrefix(string(p), string(prefix)) {
		return false
	}
	c := p[len(prefix)]
	return c == '/' || c == '.'
}

// ReplacePrefix substitutes to for the prefix from. It returns false when p
// does not have from as a prefix.
func (p Path) ReplacePrefix(from, to Path) (Path, bool) {
	if !p.HasPrefix(from) {
		return p, false
	}
	var rest string
	if from.IsRoot() {
		rest = string(p[1:])
		if rest != "" {
			rest = "/" + rest
		}
	} else {
		rest = string(p[len(from):])
	}
	if to.IsRoot() || to == "" {
		if rest == "" {
			return RootPath, true
		}
		if rest[0] == '.' {
			return Path("/" + rest), true
		}
		return Path(rest), true
	}
	return Path(strings.TrimSuffix(string(to), "/") + rest), true
}
