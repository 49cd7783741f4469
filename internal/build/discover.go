package build

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vango-dev/webdsl/internal/errors"
)

// ScriptExt is the extension of page scripts.
const ScriptExt = ".js"

// Discover returns the page scripts below dir in sorted order. Hidden files
// and directories are skipped. A directory without scripts is ErrNoPages.
func Discover(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.Newf("E203", "page directory %s", dir).Wrap(err)
	}
	if !info.IsDir() {
		return nil, errors.Newf("E203", "%s is not a directory", dir)
	}

	var paths []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ScriptExt) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Newf("E203", "scanning %s", dir).Wrap(err)
	}
	if len(paths) == 0 {
		return nil, errors.Newf("E203", "no %s files in %s", ScriptExt, dir)
	}
	sort.Strings(paths)
	return paths, nil
}
