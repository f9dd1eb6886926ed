// Package keys derives object keys from discovered file paths.
package keys

import (
	"path"
	"strings"

	"github.com/treelineops/s3ship/shiptypes"
)

// Builder derives object keys for one run. The zero value builds flat
// keys with no prefix.
type Builder struct {
	// Mode selects flat or hierarchical key derivation
	Mode shiptypes.KeyMode

	// Prefix is prepended to every key, joined with '/'
	Prefix string
}

// Key derives the object key for a file.
//
// Flat mode strips all directory components and keeps the base filename
// only; collisions between files sharing a base name are not detected.
// Hierarchical mode uses the slash-separated path relative to the upload
// root with any leading separator removed. Store-reserved characters pass
// through unchanged; escaping is the caller's responsibility.
func (b Builder) Key(f shiptypes.FileInfo) string {
	rel := strings.TrimPrefix(f.RelPath, "/")

	var key string
	if b.Mode == shiptypes.KeyModeHierarchical {
		key = rel
	} else {
		key = path.Base(rel)
	}

	if b.Prefix != "" {
		key = strings.TrimSuffix(b.Prefix, "/") + "/" + key
	}
	return key
}
