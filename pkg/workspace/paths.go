// Package workspace knows the layout of a cliner base directory and sets it
// up, seeding it from the user's global configuration directories.
package workspace

import (
	"io"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

const (
	// ModesDirName holds one mode document per file.
	ModesDirName = "modes"
	// RulesDirName holds one rule document per file.
	RulesDirName = "rules"
)

// Paths is the fixed layout under a base directory.
type Paths struct {
	Base  string
	Modes string
	Rules string
}

// NewPaths returns the layout rooted at base.
func NewPaths(base string) Paths {
	return Paths{
		Base:  base,
		Modes: filepath.Join(base, ModesDirName),
		Rules: filepath.Join(base, RulesDirName),
	}
}

// CreateDirectories creates the base, modes and rules directories. Existing
// directories are left alone.
func (p Paths) CreateDirectories(fs afero.Fs) error {
	for _, dir := range []string{p.Base, p.Modes, p.Rules} {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "failed to create directory %s", dir)
		}
	}
	return nil
}

// CopyDirContents copies the regular files directly inside src into dst,
// in file-name order. Subdirectories are not descended into and files that
// already exist in dst are kept. It returns the number of files copied.
func CopyDirContents(fs afero.Fs, src, dst string) (int, error) {
	infos, err := afero.ReadDir(fs, src)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to read directory %s", src)
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name() < infos[j].Name()
	})

	if err := fs.MkdirAll(dst, 0o755); err != nil {
		return 0, errors.Wrapf(err, "failed to create directory %s", dst)
	}

	copied := 0
	for _, info := range infos {
		if !info.Mode().IsRegular() {
			continue
		}

		target := filepath.Join(dst, info.Name())
		if exists, _ := afero.Exists(fs, target); exists {
			continue
		}

		if err := copyFile(fs, filepath.Join(src, info.Name()), target); err != nil {
			return copied, err
		}
		copied++
	}

	return copied, nil
}

func copyFile(fs afero.Fs, src, dst string) error {
	in, err := fs.Open(src)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", src)
	}
	defer in.Close()

	out, err := fs.Create(dst)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", dst)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.Wrapf(err, "failed to copy %s to %s", src, dst)
	}
	return errors.Wrapf(out.Close(), "failed to close %s", dst)
}
