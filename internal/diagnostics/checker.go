// Package diagnostics runs startup readiness checks against the host
// collection, the media directory, and the active provider configuration.
package diagnostics

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"deck-tts/internal/domain"
	"deck-tts/internal/text"
)

// Checker validates required filesystem paths and provider settings.
type Checker struct {
	stat       func(string) (os.FileInfo, error)
	mkdirAll   func(string, os.FileMode) error
	createTemp func(string, string) (*os.File, error)
	remove     func(string) error
}

// NewChecker builds a checker using real OS dependencies.
func NewChecker() *Checker {
	return &Checker{
		stat:       os.Stat,
		mkdirAll:   os.MkdirAll,
		createTemp: os.CreateTemp,
		remove:     os.Remove,
	}
}

// Run executes all startup checks and returns a combined report.
func (c *Checker) Run(collectionPath, mediaDir string, settings domain.ResolvedSettings) domain.DiagnosticReport {
	items := []domain.DiagnosticItem{
		c.checkCollectionPath(collectionPath),
		c.checkMediaDir(mediaDir),
		c.checkAPIKey(settings),
		c.checkAppendSeparator(settings),
	}

	hasFailures := false
	for _, item := range items {
		if item.Status == domain.DiagnosticStatusFail {
			hasFailures = true
			break
		}
	}

	return domain.DiagnosticReport{
		GeneratedAt: time.Now().UTC(),
		HasFailures: hasFailures,
		Items:       items,
	}
}

// checkCollectionPath validates the collection file exists and is a file.
func (c *Checker) checkCollectionPath(path string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "collection_path",
		Name: "Collection file",
	}

	if strings.TrimSpace(path) == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "Collection path is empty."
		item.Hint = "Set the path to the collection file in settings."
		return item
	}

	info, err := c.stat(path)
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		if errors.Is(err, os.ErrNotExist) {
			item.Message = fmt.Sprintf("Collection file does not exist: %s", path)
			item.Hint = "Use Fix to create an empty collection, or point at an existing one."
		} else {
			item.Message = fmt.Sprintf("Cannot access collection file: %s", path)
			item.Hint = "Check permissions for the collection file."
		}
		return item
	}

	if info.IsDir() {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Collection path is a directory: %s", path)
		item.Hint = "Point at the collection file itself, not its directory."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Collection file found: %s", path)
	return item
}

// checkMediaDir validates media directory existence and write access.
func (c *Checker) checkMediaDir(mediaDir string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "media_dir",
		Name: "Media directory",
	}

	if strings.TrimSpace(mediaDir) == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "Media directory is empty."
		item.Hint = "Set a media directory where generated audio can be written."
		return item
	}

	if err := c.mkdirAll(mediaDir, 0o755); err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Cannot create media directory: %s", mediaDir)
		item.Hint = "Choose a writable location or adjust filesystem permissions."
		return item
	}

	tmpFile, err := c.createTemp(mediaDir, ".write-check-*")
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Media directory is not writable: %s", mediaDir)
		item.Hint = "Choose a writable directory for generated audio."
		return item
	}

	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()
	_ = c.remove(tmpPath)

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Writable directory: %s", mediaDir)
	return item
}

// checkAPIKey validates the active provider has a key configured.
func (c *Checker) checkAPIKey(settings domain.ResolvedSettings) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "api_key",
		Name: "API key",
	}

	if strings.TrimSpace(settings.APIKey) == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("No API key configured for provider %q.", settings.Provider)
		item.Hint = "Enter the provider's API key in settings before starting a batch."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("API key configured for provider %q.", settings.Provider)
	return item
}

// checkAppendSeparator catches separator values that would corrupt the
// written field, such as one containing an audio reference marker.
func (c *Checker) checkAppendSeparator(settings domain.ResolvedSettings) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "append_separator",
		Name: "Append separator",
	}

	if settings.WriteMode == domain.WriteModeAppend && settings.AppendSeparator == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "Append separator is empty while write mode is append."
		item.Hint = "Set append_separator (for example \"<br>\") or switch write_mode to replace."
		return item
	}

	if strings.Contains(settings.AppendSeparator, text.SoundTagPrefix) {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "Append separator contains an audio reference marker."
		item.Hint = "Remove the marker from append_separator; it would trip the skip-has-audio policy."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Separator %q is usable.", settings.AppendSeparator)
	return item
}

// NewCheckerForTests creates a checker with injectable dependencies.
func NewCheckerForTests(
	stat func(string) (os.FileInfo, error),
	mkdirAll func(string, os.FileMode) error,
	createTemp func(string, string) (*os.File, error),
	remove func(string) error,
) *Checker {
	return &Checker{
		stat:       stat,
		mkdirAll:   mkdirAll,
		createTemp: createTemp,
		remove:     remove,
	}
}

// IsNotExist reports whether error represents file-not-found.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
