// Package artifact narrows a variant's compiled output to the artifacts that
// correspond to its matched sources. Selection is driven entirely by include
// patterns; an empty pattern list always means an empty selection, never the
// whole output directory.
package artifact

import (
	"errors"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
)

// Set is the resolved collection of compiled artifacts submitted to the
// analysis tool. Paths are absolute and sorted so reports stay reproducible.
type Set struct {
	Files []string
}

// Empty reports whether the set contains no artifacts.
func (s Set) Empty() bool {
	return len(s.Files) == 0
}

// Len returns the number of selected artifacts.
func (s Set) Len() int {
	return len(s.Files)
}

// Select returns the union, across every output directory, of files whose
// directory-relative path matches any include pattern. When patterns is empty
// the result is the empty set and no directory is scanned; a variant with zero
// matching sources is a legitimate state, not an error. Output directories
// that do not exist yet are treated as empty.
func Select(outputDirs, patterns []string) (Set, error) {
	if len(patterns) == 0 {
		return Set{}, nil
	}
	var files []string
	for _, dir := range outputDirs {
		err := filepath.WalkDir(dir, func(p string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if entry.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(dir, p)
			if err != nil {
				return err
			}
			if matchesAny(filepath.ToSlash(rel), patterns) {
				files = append(files, p)
			}
			return nil
		})
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Set{}, err
		}
	}
	sort.Strings(files)
	return Set{Files: files}, nil
}

func matchesAny(rel string, patterns []string) bool {
	for _, pat := range patterns {
		if ok, err := path.Match(pat, rel); err == nil && ok {
			return true
		}
	}
	return false
}
