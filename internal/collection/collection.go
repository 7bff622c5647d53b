// Package collection defines the host-store interfaces the TTS workflow
// consumes, and a JSON-file-backed implementation used by the desktop shell.
package collection

import "deck-tts/internal/domain"

// Record is one host-owned data unit with named fields.
type Record interface {
	ID() string
	Get(field string) string
	Set(field, value string)
}

// RecordStore reads and persists records by opaque identifier.
type RecordStore interface {
	GetRecord(id string) (Record, error)
	UpdateRecord(record Record) error
}

// DeckCatalog lists selectable decks.
type DeckCatalog interface {
	Decks() ([]domain.NamedID, error)
}

// ModelCatalog lists selectable record models and their field names.
type ModelCatalog interface {
	Models() ([]domain.NamedID, error)
	Fields(modelID string) ([]string, error)
}

// MediaSink persists audio bytes under a preferred name and returns the
// name actually stored. Collision handling is the sink's responsibility.
type MediaSink interface {
	StoreMedia(preferredName string, data []byte) (string, error)
}
