package queue

import (
	"context"
	"errors"
	"testing"

	"deck-tts/internal/collection"
	"deck-tts/internal/domain"
	"deck-tts/internal/tts"
)

type memRecord struct {
	id     string
	fields map[string]string
}

func (r *memRecord) ID() string              { return r.id }
func (r *memRecord) Get(field string) string { return r.fields[field] }
func (r *memRecord) Set(field, value string) { r.fields[field] = value }

type memStore struct {
	records map[string]*memRecord
	updates int
	failGet bool
	failPut bool
}

func (s *memStore) GetRecord(id string) (collection.Record, error) {
	if s.failGet {
		return nil, errors.New("store offline")
	}
	record, ok := s.records[id]
	if !ok {
		return nil, collection.ErrRecordNotFound
	}
	return record, nil
}

func (s *memStore) UpdateRecord(record collection.Record) error {
	if s.failPut {
		return errors.New("store readonly")
	}
	s.updates++
	return nil
}

type memMedia struct {
	stored map[string][]byte
	rename string
	fail   bool
}

func (m *memMedia) StoreMedia(preferredName string, data []byte) (string, error) {
	if m.fail {
		return "", errors.New("disk full")
	}
	if m.stored == nil {
		m.stored = map[string][]byte{}
	}
	name := preferredName
	if m.rename != "" {
		name = m.rename
	}
	m.stored[name] = data
	return name, nil
}

type fakeSynth struct {
	audio []byte
	err   error
	calls int
	text  string
}

func (s *fakeSynth) Name() string { return "fake" }

func (s *fakeSynth) Synthesize(_ context.Context, text string, _ domain.ResolvedSettings, onProgress tts.ProgressFunc) ([]byte, error) {
	s.calls++
	s.text = text
	if onProgress != nil {
		onProgress(100)
	}
	return s.audio, s.err
}

func processorConfig() domain.Config {
	return domain.Config{
		TTS: domain.TTSConfig{
			Provider: "dashscope",
			APIKey:   "k",
			Model:    "qwen3-tts-flash",
			Voice:    "Ethan",
			Ext:      "wav",
		},
		WriteMode:        "append",
		AppendSeparator:  "<br>",
		FilenameTemplate: "tts_{nid}_{field}.{ext}",
		Batch: domain.BatchConfig{
			SkipIfSourceEmpty:    true,
			SkipIfTargetHasSound: true,
		},
	}
}

func newTestProcessor(store *memStore, media *memMedia, synth *fakeSynth, cfg domain.Config) *Processor {
	return &Processor{
		Records:     store,
		Media:       media,
		LoadConfig:  func() (domain.Config, error) { return cfg, nil },
		Synthesizer: func(string) (tts.Synthesizer, error) { return synth, nil },
		Logger:      discardLogger(),
	}
}

// TestProcessGeneratesAndAppendsTag checks the happy path end to end.
func TestProcessGeneratesAndAppendsTag(t *testing.T) {
	record := &memRecord{id: "r3", fields: map[string]string{"Front": "Bonjour <b>tout</b>", "Audio": ""}}
	store := &memStore{records: map[string]*memRecord{"r3": record}}
	media := &memMedia{}
	synth := &fakeSynth{audio: []byte("wav-bytes")}
	p := newTestProcessor(store, media, synth, processorConfig())

	outcome := p.Process("r3", domain.Request{SourceField: "Front", TargetField: "Audio"}, nil)

	if outcome.Kind != OutcomeOK {
		t.Fatalf("outcome = %+v, want ok", outcome)
	}
	if outcome.StoredName != "tts_r3_Audio.wav" {
		t.Fatalf("stored name = %q", outcome.StoredName)
	}
	if got := record.Get("Audio"); got != "[sound:tts_r3_Audio.wav]" {
		t.Fatalf("target field = %q", got)
	}
	// The provider receives the raw field text; only previews are stripped.
	if synth.text != "Bonjour <b>tout</b>" {
		t.Fatalf("synthesized text = %q", synth.text)
	}
	if store.updates != 1 {
		t.Fatalf("updates = %d", store.updates)
	}
}

// TestProcessSkipsBlankSourceWithoutNetwork checks the skip-empty policy.
func TestProcessSkipsBlankSourceWithoutNetwork(t *testing.T) {
	record := &memRecord{id: "r1", fields: map[string]string{"Front": "   ", "Audio": ""}}
	store := &memStore{records: map[string]*memRecord{"r1": record}}
	synth := &fakeSynth{audio: []byte("x")}
	p := newTestProcessor(store, &memMedia{}, synth, processorConfig())

	outcome := p.Process("r1", domain.Request{SourceField: "Front", TargetField: "Audio"}, nil)

	if outcome.Kind != OutcomeSkipEmpty {
		t.Fatalf("outcome = %+v, want skip_empty", outcome)
	}
	if synth.calls != 0 {
		t.Fatalf("synthesizer called %d times for blank source", synth.calls)
	}
}

// TestProcessSkipsTargetWithAudioWithoutNetwork checks the skip-has-audio
// policy and that overwrite defeats it.
func TestProcessSkipsTargetWithAudioWithoutNetwork(t *testing.T) {
	record := &memRecord{id: "r2", fields: map[string]string{"Front": "hola", "Audio": "[sound:old.wav]"}}
	store := &memStore{records: map[string]*memRecord{"r2": record}}
	synth := &fakeSynth{audio: []byte("x")}
	p := newTestProcessor(store, &memMedia{}, synth, processorConfig())

	outcome := p.Process("r2", domain.Request{SourceField: "Front", TargetField: "Audio"}, nil)
	if outcome.Kind != OutcomeSkipHasAudio {
		t.Fatalf("outcome = %+v, want skip_has_audio", outcome)
	}
	if synth.calls != 0 {
		t.Fatalf("synthesizer called %d times for populated target", synth.calls)
	}

	outcome = p.Process("r2", domain.Request{SourceField: "Front", TargetField: "Audio", Overwrite: true}, nil)
	if outcome.Kind != OutcomeOK {
		t.Fatalf("overwrite outcome = %+v, want ok", outcome)
	}
	if got := record.Get("Audio"); got != "[sound:tts_r2_Audio.wav]" {
		t.Fatalf("overwritten target = %q", got)
	}
}

// TestProcessOverwriteTwiceKeepsSingleTag checks full replace never
// accumulates references across runs.
func TestProcessOverwriteTwiceKeepsSingleTag(t *testing.T) {
	record := &memRecord{id: "r9", fields: map[string]string{"Front": "ciao", "Audio": ""}}
	store := &memStore{records: map[string]*memRecord{"r9": record}}
	p := newTestProcessor(store, &memMedia{}, &fakeSynth{audio: []byte("x")}, processorConfig())
	request := domain.Request{SourceField: "Front", TargetField: "Audio", Overwrite: true}

	p.Process("r9", request, nil)
	p.Process("r9", request, nil)

	if got := record.Get("Audio"); got != "[sound:tts_r9_Audio.wav]" {
		t.Fatalf("target after two overwrite runs = %q", got)
	}
}

// TestProcessAppendIsIdempotent checks a re-run never duplicates an
// identical reference.
func TestProcessAppendIsIdempotent(t *testing.T) {
	record := &memRecord{id: "r4", fields: map[string]string{"Front": "salut", "Audio": ""}}
	store := &memStore{records: map[string]*memRecord{"r4": record}}
	cfg := processorConfig()
	cfg.Batch.SkipIfTargetHasSound = false
	p := newTestProcessor(store, &memMedia{}, &fakeSynth{audio: []byte("x")}, cfg)
	request := domain.Request{SourceField: "Front", TargetField: "Audio"}

	p.Process("r4", request, nil)
	first := record.Get("Audio")
	p.Process("r4", request, nil)

	if got := record.Get("Audio"); got != first {
		t.Fatalf("target changed on identical re-run: %q -> %q", first, got)
	}
}

// TestProcessShortTemplateFallsBackToTextName checks the template
// misconfiguration heuristic.
func TestProcessShortTemplateFallsBackToTextName(t *testing.T) {
	record := &memRecord{id: "r5", fields: map[string]string{"Front": "bonjour le monde", "Audio": ""}}
	store := &memStore{records: map[string]*memRecord{"r5": record}}
	media := &memMedia{}
	cfg := processorConfig()
	cfg.FilenameTemplate = "{ext}"
	p := newTestProcessor(store, media, &fakeSynth{audio: []byte("x")}, cfg)

	outcome := p.Process("r5", domain.Request{SourceField: "Front", TargetField: "Audio"}, nil)

	if outcome.Kind != OutcomeOK {
		t.Fatalf("outcome = %+v", outcome)
	}
	if outcome.StoredName != "bonjour le monde.wav" {
		t.Fatalf("stored name = %q, want text-derived fallback", outcome.StoredName)
	}
}

// TestProcessUsesSinkRenamedName checks the written tag follows the name
// the sink actually stored.
func TestProcessUsesSinkRenamedName(t *testing.T) {
	record := &memRecord{id: "r6", fields: map[string]string{"Front": "hej", "Audio": ""}}
	store := &memStore{records: map[string]*memRecord{"r6": record}}
	media := &memMedia{rename: "tts_r6_Audio (1).wav"}
	p := newTestProcessor(store, media, &fakeSynth{audio: []byte("x")}, processorConfig())

	outcome := p.Process("r6", domain.Request{SourceField: "Front", TargetField: "Audio"}, nil)

	if outcome.StoredName != "tts_r6_Audio (1).wav" {
		t.Fatalf("stored name = %q", outcome.StoredName)
	}
	if got := record.Get("Audio"); got != "[sound:tts_r6_Audio (1).wav]" {
		t.Fatalf("target field = %q", got)
	}
}

// TestProcessErrorOutcomes checks each failure layer maps to its outcome.
func TestProcessErrorOutcomes(t *testing.T) {
	base := func() (*memStore, *memMedia, *fakeSynth) {
		record := &memRecord{id: "r7", fields: map[string]string{"Front": "hei", "Audio": ""}}
		return &memStore{records: map[string]*memRecord{"r7": record}}, &memMedia{}, &fakeSynth{audio: []byte("x")}
	}
	request := domain.Request{SourceField: "Front", TargetField: "Audio"}

	store, media, synth := base()
	store.failGet = true
	outcome := newTestProcessor(store, media, synth, processorConfig()).Process("r7", request, nil)
	if outcome.Kind != OutcomeError {
		t.Fatalf("failGet outcome = %+v", outcome)
	}

	store, media, synth = base()
	synth.audio = nil
	synth.err = errors.New("API error (status=500): overloaded")
	outcome = newTestProcessor(store, media, synth, processorConfig()).Process("r7", request, nil)
	if outcome.Kind != OutcomeError || outcome.Message != "API error (status=500): overloaded" {
		t.Fatalf("synth error outcome = %+v", outcome)
	}

	store, media, synth = base()
	synth.audio = []byte{}
	outcome = newTestProcessor(store, media, synth, processorConfig()).Process("r7", request, nil)
	if outcome.Kind != OutcomeNoAudio {
		t.Fatalf("empty payload outcome = %+v", outcome)
	}

	store, media, synth = base()
	media.fail = true
	outcome = newTestProcessor(store, media, synth, processorConfig()).Process("r7", request, nil)
	if outcome.Kind != OutcomeError || outcome.Message != "failed to store media: disk full" {
		t.Fatalf("sink outcome = %+v", outcome)
	}

	store, media, synth = base()
	store.failPut = true
	outcome = newTestProcessor(store, media, synth, processorConfig()).Process("r7", request, nil)
	if outcome.Kind != OutcomeError || outcome.Message != "write failed: store readonly" {
		t.Fatalf("persist outcome = %+v", outcome)
	}
}

// TestProcessMissingRecord checks the not-found error path.
func TestProcessMissingRecord(t *testing.T) {
	store := &memStore{records: map[string]*memRecord{}}
	p := newTestProcessor(store, &memMedia{}, &fakeSynth{audio: []byte("x")}, processorConfig())

	outcome := p.Process("ghost", domain.Request{SourceField: "Front", TargetField: "Audio"}, nil)
	if outcome.Kind != OutcomeError {
		t.Fatalf("outcome = %+v, want error", outcome)
	}
}
