package scan

import "strings"

// TargetName is the directory name the engine matches.
const TargetName = "node_modules"

// protectedDirs are user-data and tooling-metadata names never entered.
// Matching is exact and case-sensitive.
var protectedDirs = map[string]bool{
	"Desktop":   true,
	"Documents": true,
	"Downloads": true,
	"Music":     true,
	"Pictures":  true,
	"Public":    true,
	"Templates": true,
	"Videos":    true,
	".git":      true,
	".vscode":   true,
	".idea":     true,
}

// Ignore decides which directory entries the engine skips entirely.
type Ignore struct {
	extra map[string]bool
}

// NewIgnore returns the default rules plus any extra exact names.
func NewIgnore(extra ...string) Ignore {
	ig := Ignore{}
	for _, n := range extra {
		if n == "" {
			continue
		}
		if ig.extra == nil {
			ig.extra = make(map[string]bool, len(extra))
		}
		ig.extra[n] = true
	}
	return ig
}

// Skip reports whether an entry with this name is excluded from matching and recursion.
func (ig Ignore) Skip(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	return protectedDirs[name] || ig.extra[name]
}
