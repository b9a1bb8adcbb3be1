package domain

import (
	"crypto/sha256"
	"encoding/hex"

	m "vuec.dev/pkg/vuec/internal/model"
)

// scopeIDLength is the number of hex characters kept from the path digest.
const scopeIDLength = 8

// DeriveScopeID returns the stable scope identifier of a component path:
// the first 8 lowercase hex characters of SHA-256 over the path bytes.
func DeriveScopeID(path m.Path) string {
	sum := sha256.Sum256([]byte(path))
	return hex.EncodeToString(sum[:])[:scopeIDLength]
}

// NewSourceUnit binds content to its path and derived scope identifier.
func NewSourceUnit(path m.Path, content []byte) m.SourceUnit {
	return m.SourceUnit{
		Path:    path,
		Content: content,
		ScopeID: DeriveScopeID(path),
	}
}
