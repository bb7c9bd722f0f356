package scene

import "slices"

// ListOp is a path list operation as authored on inherits and specializes.
//
// An explicit list op replaces whatever weaker layers say and uses Items.
// Otherwise the op edits the weaker list with its Added, Prepended, Appended
// and Deleted entries.
type ListOp struct {
	Explicit  bool
	Items     []Path
	Added     []Path
	Prepended []Path
	Appended  []Path
	Deleted   []Path
}

// IsEmpty reports whether l authors nothing.
func (l *ListOp) IsEmpty() bool {
	if l == nil {
		return true
	}
	return !l.Explicit && len(l.Items) == 0 && len(l.Added) == 0 &&
		len(l.Prepended) == 0 && len(l.Appended) == 0 && len(l.Deleted) == 0
}

// Effective returns the resulting list when l is applied to an empty list.
func (l *ListOp) Effective() []Path {
	if l == nil {
		return nil
	}
	if l.Explicit {
		return slices.Clone(l.Items)
	}
	var res []Path
	add := func(ps []Path) {
		for _, p := range ps {
			if !slices.Contains(res, p) {
				res = append(res, p)
			}
		}
	}
	add(l.Prepended)
	add(l.Added)
	add(l.Appended)
	return slices.DeleteFunc(res, func(p Path) bool {
		return slices.Contains(l.Deleted, p)
	})
}

// Fields returns pointers to every path list of l so callers can rewrite
// entries in place.
func (l *ListOp) Fields() []*[]Path {
	return []*[]Path{&l.Items, &l.Added, &l.Prepended, &l.Appended, &l.Deleted}
}

func (l *ListOp) Clone() *ListOp {
	if l == nil {
		return nil
	}
	return &ListOp{
		Explicit:  l.Explicit,
		Items:     slices.Clone(l.Items),
		Added:     slices.Clone(l.Added),
		Prepended: slices.Clone(l.Prepended),
		Appended:  slices.Clone(l.Appended),
		Deleted:   slices.Clone(l.Deleted),
	}
}
