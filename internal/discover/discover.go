// Package discover finds image files to feed the batch engine.
package discover

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Options filters the walk.
type Options struct {
	// Extensions limits matches to these extensions (with leading dot,
	// any case). Empty accepts everything.
	Extensions []string
	// Pattern, when set, is a shell glob matched against base names.
	Pattern string
	// Recursive descends into subdirectories of directory roots.
	Recursive bool
}

// Files resolves roots (files or directories) into a sorted, de-duplicated
// list of matching file paths. The ordering is deterministic so repeated
// runs over the same tree dispatch items identically.
func Files(roots []string, opts Options) ([]string, error) {
	allowed := map[string]bool{}
	for _, ext := range opts.Extensions {
		allowed[strings.ToLower(ext)] = true
	}
	match := func(path string) (bool, error) {
		if len(allowed) > 0 && !allowed[strings.ToLower(filepath.Ext(path))] {
			return false, nil
		}
		if opts.Pattern != "" {
			ok, err := filepath.Match(opts.Pattern, filepath.Base(path))
			if err != nil {
				return false, fmt.Errorf("bad pattern %q: %w", opts.Pattern, err)
			}
			return ok, nil
		}
		return true, nil
	}

	seen := map[string]bool{}
	var files []string
	add := func(path string) error {
		ok, err := match(path)
		if err != nil || !ok {
			return err
		}
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
		return nil
	}

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", root, err)
		}
		if !info.IsDir() {
			if err := add(root); err != nil {
				return nil, err
			}
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && !opts.Recursive {
					return filepath.SkipDir
				}
				return nil
			}
			return add(path)
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}
	}
	sort.Strings(files)
	return files, nil
}
