// Package field computes new target-field values when writing generated
// audio references back into a record.
package field

import (
	"strings"

	"deck-tts/internal/domain"
)

// Apply returns the new field value for one generated reference tag.
//
// Replace mode discards prior content. Append mode is idempotent: if the
// exact tag is already present the value is unchanged, otherwise the tag
// is appended with the separator (omitted when the current value is blank).
func Apply(current, tag string, mode domain.WriteMode, separator string) string {
	if mode == domain.WriteModeReplace {
		return tag
	}
	if strings.Contains(current, tag) {
		return current
	}
	if strings.TrimSpace(current) == "" {
		return current + tag
	}
	return current + separator + tag
}
