package scraper

import "strings"

// resolvePath walks a dot-separated path through nested JSON objects
// (map[string]any as produced by encoding/json). It returns nil when any
// segment is missing or a non-object is traversed. This is the only place
// in the engine that touches dynamic JSON shapes.
func resolvePath(root any, path string) any {
	if path == "" {
		return nil
	}
	cur := root
	for _, seg := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur, ok = obj[seg]
		if !ok {
			return nil
		}
	}
	return cur
}
