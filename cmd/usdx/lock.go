package main

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// lockFile is taken in a directory while its assembly is written. The name
// is hidden from document discovery.
const lockFile = ".usdx.lock"

func lockDir(dir string) (*flock.Flock, error) {
	l := flock.New(filepath.Join(dir, lockFile))
	if locked, err := l.TryLock(); err != nil {
		return nil, fmt.Errorf("cannot lock %q: %w", l.Path(), err)
	} else if !locked {
		return nil, fmt.Errorf("cannot lock %q: already locked", l.Path())
	}
	return l, nil
}
