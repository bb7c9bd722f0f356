package nsedit

import (
	"errors"
	"fmt"

	"github.com/cl0nazepamm/P-USDExporter/debug"
	"github.com/cl0nazepamm/P-USDExporter/scene"
)

// Relocation is the outcome of Relocate.
type Relocation struct {
	// Moved lists the moves that took effect.
	Moved []scene.Move
	// Failed holds an error for each move that did not take effect.
	Failed []*scene.MoveError
	// Degraded is set when the copy and remove fallback ran.
	Degraded bool
	// AtomicErr is why the atomic batch was refused.
	AtomicErr error
}

// Err returns ErrIncomplete wrapping the failed moves, or nil.
func (r *Relocation) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failed))
	for i, f := range r.Failed {
		errs[i] = f
	}
	return fmt.Errorf("%w: %w", ErrIncomplete, errors.Join(errs...))
}

// Relocate applies moves to doc as one atomic batch. If the batch is
// refused, each move is done in order by copying the source subtree to its
// destination, after which every copied source is removed. A move whose
// destination exists, or which is otherwise invalid, is left undone and
// reported in Failed.
func (e *Editor) Relocate(doc *scene.Document, moves []scene.Move) *Relocation {
	res := &Relocation{}
	if len(moves) == 0 {
		return res
	}
	if debug.Move() {
		debug.Logf("relocate %v\n", moves)
	}
	err := doc.Move(moves...)
	if err == nil {
		res.Moved = moves
		return res
	}
	res.AtomicErr = err
	res.Degraded = true
	e.logger.Warn("atomic relocation refused, copying instead", "error", err, "moves", len(moves))

	var copied []scene.Move
	for i, m := range moves {
		if err := copyMove(doc, m); err != nil {
			res.Failed = append(res.Failed, &scene.MoveError{Index: i, Move: m, Err: err})
			continue
		}
		copied = append(copied, m)
	}
	for _, m := range copied {
		if err := doc.Remove(m.From); err != nil && !errors.Is(err, scene.ErrNotFound) {
			e.logger.Warn("could not remove relocated source", "path", m.From, "error", err)
		}
		res.Moved = append(res.Moved, m)
	}
	return res
}

func copyMove(doc *scene.Document, m scene.Move) error {
	switch {
	case m.From.IsRoot() || m.To.IsRoot() || m.From.HasProperty() || m.To.HasProperty():
		return fmt.Errorf("%w: %s -> %s", scene.ErrBadPath, m.From, m.To)
	case doc.Exists(m.To):
		return fmt.Errorf("%w: destination %s", scene.ErrExists, m.To)
	case m.To.HasPrefix(m.From):
		return fmt.Errorf("%w: %s is inside %s", scene.ErrMoveConflict, m.To, m.From)
	}
	_, err := doc.Copy(m.From, m.To)
	return err
}

// MoveChildren relocates every child of from to become a child of to, keeping
// names.
func (e *Editor) MoveChildren(doc *scene.Document, from, to scene.Path) *Relocation {
	n := doc.Lookup(from)
	if n == nil {
		return &Relocation{}
	}
	var moves []scene.Move
	for _, c := range n.Children() {
		src := from.Child(c.Name)
		dst := to.Child(c.Name)
		if src != dst {
			moves = append(moves, scene.Move{From: src, To: dst})
		}
	}
	return e.Relocate(doc, moves)
}
