package collection

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const sampleCollection = `{
  "decks": [
    {"id": "d2", "name": "zeta"},
    {"id": "d1", "name": "Alpha"}
  ],
  "models": [
    {"id": "m1", "name": "Basic", "fields": ["Front", "Back", "Audio"]}
  ],
  "records": [
    {"id": "r1", "deckId": "d1", "modelId": "m1", "fields": {"Front": "bonjour", "Back": "hello", "Audio": ""}},
    {"id": "r2", "deckId": "d2", "modelId": "m1", "fields": {"Front": "merci", "Back": "thanks", "Audio": ""}}
  ]
}`

func openSample(t *testing.T) *FileCollection {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "collection.json")
	if err := os.WriteFile(path, []byte(sampleCollection), 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	col, err := Open(path, filepath.Join(dir, "media"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return col
}

// TestDecksSortedByName checks case-insensitive name ordering.
func TestDecksSortedByName(t *testing.T) {
	col := openSample(t)
	decks, err := col.Decks()
	if err != nil {
		t.Fatalf("Decks() error = %v", err)
	}
	if len(decks) != 2 || decks[0].Name != "Alpha" || decks[1].Name != "zeta" {
		t.Fatalf("decks = %+v, want Alpha before zeta", decks)
	}
}

// TestFieldsForModel checks field listing and unknown-model error.
func TestFieldsForModel(t *testing.T) {
	col := openSample(t)
	fields, err := col.Fields("m1")
	if err != nil {
		t.Fatalf("Fields() error = %v", err)
	}
	if len(fields) != 3 || fields[2] != "Audio" {
		t.Fatalf("fields = %v", fields)
	}
	if _, err := col.Fields("nope"); err == nil {
		t.Fatal("expected unknown model error")
	}
}

// TestRecordRoundTrip checks get, mutate, update, and re-read.
func TestRecordRoundTrip(t *testing.T) {
	col := openSample(t)

	record, err := col.GetRecord("r1")
	if err != nil {
		t.Fatalf("GetRecord() error = %v", err)
	}
	record.Set("Audio", "[sound:a.wav]")
	if err := col.UpdateRecord(record); err != nil {
		t.Fatalf("UpdateRecord() error = %v", err)
	}

	again, err := col.GetRecord("r1")
	if err != nil {
		t.Fatalf("GetRecord() error = %v", err)
	}
	if got := again.Get("Audio"); got != "[sound:a.wav]" {
		t.Fatalf("Audio = %q", got)
	}

	if _, err := col.GetRecord("missing"); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("error = %v, want ErrRecordNotFound", err)
	}
}

// TestGetRecordReturnsSnapshot checks mutations are invisible until update.
func TestGetRecordReturnsSnapshot(t *testing.T) {
	col := openSample(t)

	record, _ := col.GetRecord("r1")
	record.Set("Back", "changed")

	fresh, _ := col.GetRecord("r1")
	if got := fresh.Get("Back"); got != "hello" {
		t.Fatalf("Back = %q, want unchanged hello", got)
	}
}

// TestStoreMediaCollisionRenaming checks dedupe and numeric suffixing.
func TestStoreMediaCollisionRenaming(t *testing.T) {
	col := openSample(t)

	name, err := col.StoreMedia("clip.wav", []byte("one"))
	if err != nil || name != "clip.wav" {
		t.Fatalf("first store = %q, %v", name, err)
	}

	// Identical content reuses the stored name.
	name, err = col.StoreMedia("clip.wav", []byte("one"))
	if err != nil || name != "clip.wav" {
		t.Fatalf("dedupe store = %q, %v", name, err)
	}

	// Different content under the same name gets a suffix.
	name, err = col.StoreMedia("clip.wav", []byte("two"))
	if err != nil || name != "clip (1).wav" {
		t.Fatalf("renamed store = %q, %v", name, err)
	}
}

// TestRecordIDsFiltersByDeckAndModel checks selection listing.
func TestRecordIDsFiltersByDeckAndModel(t *testing.T) {
	col := openSample(t)
	ids, err := col.RecordIDs("d1", "m1")
	if err != nil {
		t.Fatalf("RecordIDs() error = %v", err)
	}
	if len(ids) != 1 || ids[0] != "r1" {
		t.Fatalf("ids = %v, want [r1]", ids)
	}
}

// TestEnsureCollectionCreatesSkeleton checks first-run file creation.
func TestEnsureCollectionCreatesSkeleton(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "collection.json")
	if err := EnsureCollection(path); err != nil {
		t.Fatalf("EnsureCollection() error = %v", err)
	}
	if _, err := Open(path, filepath.Join(filepath.Dir(path), "media")); err != nil {
		t.Fatalf("Open() after ensure error = %v", err)
	}
	// Existing files are left untouched.
	if err := EnsureCollection(path); err != nil {
		t.Fatalf("EnsureCollection() second call error = %v", err)
	}
}
