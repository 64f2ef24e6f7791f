// Package stacktrace trims runtime stack dumps down to this module's frames.
package stacktrace

import "strings"

// InternalPaths returns the "internal/<pkg>/<file>.go:<line>" locations found
// in a raw debug.Stack dump, in call order.
func InternalPaths(stack []byte) []string {
	var paths []string

	for line := range strings.Lines(string(stack)) {
		line = strings.TrimSpace(line)

		idx := strings.Index(line, "/internal/")
		if idx == -1 {
			continue
		}

		loc := line[idx+1:]
		if !strings.Contains(loc, ".go:") {
			continue
		}

		if end := strings.IndexByte(loc, ' '); end != -1 {
			loc = loc[:end]
		}

		paths = append(paths, loc)
	}

	return paths
}
