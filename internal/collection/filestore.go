package collection

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"deck-tts/internal/domain"
)

// ErrRecordNotFound is returned when a record id has no match.
var ErrRecordNotFound = errors.New("record not found")

// collectionFile is the on-disk document of the file-backed collection.
type collectionFile struct {
	Decks   []deckEntry   `json:"decks"`
	Models  []modelEntry  `json:"models"`
	Records []recordEntry `json:"records"`
}

type deckEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type modelEntry struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Fields []string `json:"fields"`
}

type recordEntry struct {
	ID      string            `json:"id"`
	DeckID  string            `json:"deckId"`
	ModelID string            `json:"modelId"`
	Fields  map[string]string `json:"fields"`
}

// fileRecord is a mutable snapshot of one record entry.
type fileRecord struct {
	id     string
	fields map[string]string
}

// ID returns the opaque record identifier.
func (r *fileRecord) ID() string { return r.id }

// Get returns one field value, empty when the field does not exist.
func (r *fileRecord) Get(field string) string { return r.fields[field] }

// Set replaces one field value on the snapshot.
func (r *fileRecord) Set(field, value string) { r.fields[field] = value }

// FileCollection implements the host-store interfaces over a JSON file and
// a media directory. Writes are serialized; each update is flushed to disk.
type FileCollection struct {
	mu       sync.Mutex
	path     string
	mediaDir string
	doc      collectionFile
}

// Open loads a collection file and prepares its media directory.
func Open(path, mediaDir string) (*FileCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read collection: %w", err)
	}

	var doc collectionFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse collection: %w", err)
	}

	if err := os.MkdirAll(mediaDir, 0o755); err != nil {
		return nil, fmt.Errorf("prepare media directory: %w", err)
	}

	return &FileCollection{path: path, mediaDir: mediaDir, doc: doc}, nil
}

// EnsureCollection creates an empty collection skeleton when none exists.
func EnsureCollection(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(collectionFile{
		Decks:   []deckEntry{},
		Models:  []modelEntry{},
		Records: []recordEntry{},
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Decks lists decks sorted by case-insensitive name.
func (c *FileCollection) Decks() ([]domain.NamedID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]domain.NamedID, 0, len(c.doc.Decks))
	for _, deck := range c.doc.Decks {
		out = append(out, domain.NamedID{Name: deck.Name, ID: deck.ID})
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

// Models lists record models in file order.
func (c *FileCollection) Models() ([]domain.NamedID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]domain.NamedID, 0, len(c.doc.Models))
	for _, model := range c.doc.Models {
		out = append(out, domain.NamedID{Name: model.Name, ID: model.ID})
	}
	return out, nil
}

// Fields returns the field names of one model.
func (c *FileCollection) Fields(modelID string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, model := range c.doc.Models {
		if model.ID == modelID {
			return append([]string(nil), model.Fields...), nil
		}
	}
	return nil, fmt.Errorf("unknown model id: %s", modelID)
}

// RecordIDs lists record ids for a deck and model in file order.
func (c *FileCollection) RecordIDs(deckID, modelID string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []string
	for _, record := range c.doc.Records {
		if record.DeckID == deckID && record.ModelID == modelID {
			out = append(out, record.ID)
		}
	}
	return out, nil
}

// GetRecord returns a mutable snapshot of one record.
func (c *FileCollection) GetRecord(id string) (Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, record := range c.doc.Records {
		if record.ID == id {
			fields := make(map[string]string, len(record.Fields))
			for k, v := range record.Fields {
				fields[k] = v
			}
			return &fileRecord{id: id, fields: fields}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
}

// UpdateRecord writes a record snapshot back and flushes the file.
func (c *FileCollection) UpdateRecord(record Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.doc.Records {
		if c.doc.Records[i].ID != record.ID() {
			continue
		}
		fields := make(map[string]string, len(c.doc.Records[i].Fields))
		for name := range c.doc.Records[i].Fields {
			fields[name] = record.Get(name)
		}
		c.doc.Records[i].Fields = fields
		return c.flushLocked()
	}
	return fmt.Errorf("%w: %s", ErrRecordNotFound, record.ID())
}

// StoreMedia persists audio bytes in the media directory. An existing file
// with identical content is reused; a conflicting name is renamed with a
// numeric suffix.
func (c *FileCollection) StoreMedia(preferredName string, data []byte) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	name := preferredName
	ext := filepath.Ext(preferredName)
	base := strings.TrimSuffix(preferredName, ext)

	for attempt := 1; ; attempt++ {
		target := filepath.Join(c.mediaDir, name)
		existing, err := os.ReadFile(target)
		if errors.Is(err, os.ErrNotExist) {
			if writeErr := os.WriteFile(target, data, 0o644); writeErr != nil {
				return "", fmt.Errorf("store media: %w", writeErr)
			}
			return name, nil
		}
		if err != nil {
			return "", fmt.Errorf("store media: %w", err)
		}
		if bytes.Equal(existing, data) {
			return name, nil
		}
		if attempt > 1000 {
			return "", fmt.Errorf("store media: no free name for %s", preferredName)
		}
		name = fmt.Sprintf("%s (%d)%s", base, attempt, ext)
	}
}

// flushLocked persists the document; callers must hold the mutex.
func (c *FileCollection) flushLocked() error {
	data, err := json.MarshalIndent(c.doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0o644)
}
