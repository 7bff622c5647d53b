// Package text normalizes record field content for previews, synthesis
// input, and media filenames.
package text

import (
	"html"
	"regexp"
	"strings"
)

// SoundTagPrefix is the marker searched for when detecting existing audio.
const SoundTagPrefix = "[sound:"

const (
	previewLimit  = 80
	filenameLimit = 20
)

var (
	markupPattern = regexp.MustCompile(`<[^>]+>`)
	unsafePattern = regexp.MustCompile(`[<>:"/\\|?*]`)
)

// StripMarkup removes angle-bracket tag spans and then decodes HTML
// entities. Entities are decoded after stripping so an encoded delimiter
// cannot resurrect a tag.
func StripMarkup(s string) string {
	if s == "" {
		return ""
	}
	return html.UnescapeString(markupPattern.ReplaceAllString(s, ""))
}

// Preview returns a markup-stripped snapshot of source text, truncated to
// 80 runes with an ellipsis. Blank text yields the "(empty)" placeholder.
func Preview(s string) string {
	plain := StripMarkup(s)
	if strings.TrimSpace(plain) == "" {
		return "(empty)"
	}
	runes := []rune(plain)
	if len(runes) > previewLimit {
		return string(runes[:previewLimit]) + "…"
	}
	return plain
}

// SafeFilenameFromText derives a storage filename from source text: the
// first 20 runes with filesystem-unsafe characters removed, falling back
// to "audio" when nothing survives.
func SafeFilenameFromText(s, ext string) string {
	runes := []rune(s)
	if len(runes) > filenameLimit {
		runes = runes[:filenameLimit]
	}
	base := strings.TrimSpace(unsafePattern.ReplaceAllString(string(runes), ""))
	if base == "" {
		base = "audio"
	}
	return base + "." + ext
}

// SoundTag renders the reference marker embedded in a target field.
func SoundTag(name string) string {
	return SoundTagPrefix + name + "]"
}

// HasSoundTag reports whether a field value already references audio.
// This is a plain substring check; it does not validate the reference.
func HasSoundTag(value string) bool {
	return strings.Contains(value, SoundTagPrefix)
}
