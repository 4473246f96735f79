// Package pattern derives compiled-artifact include patterns from the source
// files a variant actually contributes. The analysis step is narrowed to the
// artifacts these patterns match, so classes compiled from filtered-out or
// foreign sources never reach the tool.
package pattern

import (
	"path/filepath"
	"strings"
)

// Resolve computes one include pattern per (source file, qualifying root) pair.
// A root qualifies when it is a path prefix of the source file. The pattern is
// the file's root-relative path with the source suffix stripped and a trailing
// wildcard, so both the primary artifact and nested artifacts sharing the base
// name match (Foo.class, Foo$Inner.class).
//
// A file under none of the roots contributes nothing. A file under several
// overlapping roots contributes a pattern for each; downstream selection is a
// union, so the over-inclusion is harmless. Empty input returns an empty list
// without touching the filesystem.
func Resolve(sourceFiles, sourceRoots []string) []string {
	if len(sourceFiles) == 0 {
		return nil
	}
	var patterns []string
	for _, file := range sourceFiles {
		for _, root := range sourceRoots {
			rel, ok := relativeTo(root, file)
			if !ok {
				continue
			}
			base := strings.TrimSuffix(rel, filepath.Ext(rel))
			patterns = append(patterns, filepath.ToSlash(base)+"*")
		}
	}
	return patterns
}

// relativeTo reports the path of file relative to root, or false when file
// does not live under root. The check is lexical; case sensitivity follows the
// host filesystem conventions encoded in the paths themselves.
func relativeTo(root, file string) (string, bool) {
	rel, err := filepath.Rel(root, file)
	if err != nil {
		return "", false
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return rel, true
}
