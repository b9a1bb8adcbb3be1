// Package model defines the data structures shared by the SFC pipeline.
package model

import "strings"

// Path represents a file system path or a module identifier.
type Path string

// ComponentExt is the file extension of single-file components.
const ComponentExt = ".vue"

// StyleQuery marks a module identifier as the style view of a component.
const StyleQuery = "?vue&type=style"

// SourceUnit is one component source read for a single pipeline call.
// It is never persisted; ScopeID is recomputed from Path on every call.
type SourceUnit struct {
	Path    Path
	Content []byte
	ScopeID string
}

// File represents a component file discovered on disk.
type File struct {
	FullPath  Path
	ShortPath Path
	Hash      string
}

// StyleID builds the virtual style identifier for a component path.
func StyleID(path Path) Path {
	return path + StyleQuery
}

// IsStyleID reports whether id addresses the style view of a component.
func IsStyleID(id string) bool {
	return strings.Contains(id, ComponentExt+StyleQuery)
}

// StripQuery returns id without its query part.
func StripQuery(id string) Path {
	before, _, _ := strings.Cut(id, "?")
	return Path(before)
}
