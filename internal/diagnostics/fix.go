package diagnostics

import (
	"fmt"

	"deck-tts/internal/collection"
)

// Fix attempts to repair one failed check by ID. Only filesystem checks
// are fixable; configuration checks must be corrected in settings.
func (c *Checker) Fix(id, collectionPath, mediaDir string) error {
	switch id {
	case "collection_path":
		return collection.EnsureCollection(collectionPath)
	case "media_dir":
		return c.mkdirAll(mediaDir, 0o755)
	default:
		return fmt.Errorf("diagnostic %q cannot be fixed automatically", id)
	}
}
