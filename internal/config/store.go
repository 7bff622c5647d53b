// Package config persists the application configuration document and resolves
// provider-scoped settings for individual synthesis calls.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/mapstructure"

	"deck-tts/internal/domain"
)

// Store defines persistence operations for the configuration document.
type Store interface {
	Load() (map[string]any, error)
	Save(map[string]any) error
}

// JSONStore persists the raw configuration document in one JSON file.
type JSONStore struct {
	path string
}

// NewJSONStore creates a JSON-backed configuration store.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Load reads the stored document merged over defaults. A missing file
// yields pure defaults.
func (s *JSONStore) Load() (map[string]any, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Defaults(), nil
		}
		return nil, err
	}

	var stored map[string]any
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("parse config document: %w", err)
	}

	return Merge(stored), nil
}

// Save writes the document as indented JSON and creates parent directories.
func (s *JSONStore) Save(doc map[string]any) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0o644)
}

// Merge overlays a stored document onto defaults. The tts and batch
// sections are each shallow-merged independently; every other top-level
// key from the stored document replaces the default wholesale.
func Merge(stored map[string]any) map[string]any {
	merged := Defaults()
	mergedTTS := sectionOf(merged, "tts")
	mergedBatch := sectionOf(merged, "batch")

	for key, value := range stored {
		merged[key] = value
	}
	for key, value := range sectionOf(stored, "tts") {
		mergedTTS[key] = value
	}
	for key, value := range sectionOf(stored, "batch") {
		mergedBatch[key] = value
	}

	merged["tts"] = mergedTTS
	merged["batch"] = mergedBatch
	return merged
}

// Decode converts a merged document into the typed configuration.
func Decode(doc map[string]any) (domain.Config, error) {
	var cfg domain.Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "mapstructure",
		Result:           &cfg,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return domain.Config{}, err
	}
	if err := decoder.Decode(doc); err != nil {
		return domain.Config{}, fmt.Errorf("decode config document: %w", err)
	}
	return cfg, nil
}

// LoadConfig loads, merges, and decodes the typed configuration.
func LoadConfig(store Store) (domain.Config, error) {
	doc, err := store.Load()
	if err != nil {
		return domain.Config{}, err
	}
	return Decode(doc)
}

// sectionOf returns one nested object of the document, or an empty map.
func sectionOf(doc map[string]any, key string) map[string]any {
	section := map[string]any{}
	raw, ok := doc[key].(map[string]any)
	if !ok {
		return section
	}
	for k, v := range raw {
		section[k] = v
	}
	return section
}
