package pathutils

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// FindModuleRoot returns the absolute path to the module root enclosing the
// current working directory. See [Root].
func FindModuleRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", errors.Wrap(err, "failed to get current working directory")
	}
	return Root(dir)
}

// Root returns the absolute path to the module root enclosing dir by searching
// for a go.mod file in dir and its parent directories.
// Returns an error if filesystem operations fail or if no go.mod file is found.
func Root(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.Wrapf(err, "failed to resolve absolute path of %s", dir)
	}
	for {
		goModPath := filepath.Join(dir, "go.mod")
		fi, err := os.Stat(goModPath)
		if err != nil {
			if !os.IsNotExist(err) {
				return "", errors.Wrapf(err, "failed to stat %s", goModPath)
			}
			// File doesn't exist, continue searching parent directories.
		} else if !fi.IsDir() {
			return dir, nil
		}

		d := filepath.Dir(dir)
		if d == dir {
			break
		}
		dir = d
	}
	return "", errors.New("go.mod not found in directory tree")
}
