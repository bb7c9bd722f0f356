package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

const (
	// ProjectFile is the name of the project config file.
	ProjectFile = "usdx.yaml"
	// UserDir is the directory of the user config under the user config
	// directory.
	UserDir  = "usdx"
	UserFile = "config.yaml"
)

// Loader loads configuration with layered precedence.
type Loader struct {
	fs      afero.Fs
	logger  *slog.Logger
	workDir string
	userDir string
}

type LoaderOption func(*Loader)

// WorkDir sets the directory the project config search starts from. The
// default is the process working directory.
func WorkDir(dir string) LoaderOption {
	return func(l *Loader) {
		l.workDir = dir
	}
}

// UserConfigDir sets the user config directory, which holds UserDir. The
// default is os.UserConfigDir, honouring $XDG_CONFIG_HOME.
func UserConfigDir(dir string) LoaderOption {
	return func(l *Loader) {
		l.userDir = dir
	}
}

func NewLoader(fsys afero.Fs, logger *slog.Logger, opts ...LoaderOption) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Loader{fs: fsys, logger: logger}
	for _, opt := range opts {
		opt(l)
	}
	if l.workDir == "" {
		l.workDir, _ = os.Getwd()
	}
	if l.userDir == "" {
		l.userDir, _ = os.UserConfigDir()
	}
	return l
}

// Load loads configuration with layered precedence:
//  1. defaults
//  2. user config ($XDG_CONFIG_HOME/usdx/config.yaml)
//  3. project config (usdx.yaml in the work dir or a parent)
//  4. the explicit file, if not empty
//
// A missing user or project file is not an error, a missing explicit file
// is.
func (l *Loader) Load(explicit string) (*Config, error) {
	c := Default()
	if l.userDir != "" {
		p := filepath.Join(l.userDir, UserDir, UserFile)
		if err := c.load(l.fs, p); err == nil {
			l.logger.Debug("loaded user config", "path", p)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	if p := l.findProject(); p != "" {
		if err := c.load(l.fs, p); err != nil {
			return nil, err
		}
		l.logger.Debug("loaded project config", "path", p)
	}
	if explicit != "" {
		if err := c.load(l.fs, explicit); err != nil {
			return nil, err
		}
		l.logger.Debug("loaded config", "path", explicit)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (l *Loader) findProject() string {
	if l.workDir == "" {
		return ""
	}
	dir := l.workDir
	for {
		p := filepath.Join(dir, ProjectFile)
		if fi, err := l.fs.Stat(p); err == nil && !fi.IsDir() {
			return p
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
