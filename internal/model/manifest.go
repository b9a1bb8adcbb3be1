package model

// ManifestVersion is the current manifest schema version.
const ManifestVersion = 2

// ManifestEntry records the last successful transform of a component.
type ManifestEntry struct {
	Source   Path     `yaml:"source"`
	Output   Path     `yaml:"output"`
	ScopeID  string   `yaml:"scope_id"`
	Hash     string   `yaml:"hash"`
	Settings string   `yaml:"settings"`
	Scoped   bool     `yaml:"scoped,omitempty"`
	CSSBytes int      `yaml:"css_bytes,omitempty"`
	Warnings []string `yaml:"warnings,omitempty"`
}

// Manifest is the incremental cache stored next to batch outputs.
type Manifest struct {
	Version int                    `yaml:"version"`
	Entries map[Path]ManifestEntry `yaml:"entries"`
}

// Metafile is the subset of the esbuild metafile used for build reports.
type Metafile struct {
	Inputs  map[string]MetafileInput  `json:"inputs"`
	Outputs map[string]MetafileOutput `json:"outputs"`
}

// MetafileInput is an input file recorded in the metafile.
type MetafileInput struct {
	Bytes   int              `json:"bytes"`
	Imports []MetafileImport `json:"imports"`
}

// MetafileImport is an import edge recorded in the metafile.
type MetafileImport struct {
	Path     string `json:"path"`
	Kind     string `json:"kind"`
	External bool   `json:"external,omitempty"`
}

// MetafileOutput is an output file recorded in the metafile.
type MetafileOutput struct {
	Bytes      int    `json:"bytes"`
	EntryPoint string `json:"entryPoint,omitempty"`
	CSSBundle  string `json:"cssBundle,omitempty"`
}
