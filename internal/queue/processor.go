package queue

import (
	"context"
	"log/slog"
	"strings"

	"deck-tts/internal/collection"
	"deck-tts/internal/config"
	"deck-tts/internal/domain"
	"deck-tts/internal/field"
	"deck-tts/internal/text"
	"deck-tts/internal/tts"
)

// minPreferredNameLength guards against a misconfigured filename template
// rendering an implausibly short name.
const minPreferredNameLength = 8

// Processor is the per-job work unit: it re-reads the record, applies
// skip policies, synthesizes audio, stores it, and writes the reference
// back. Every failure is converted to an outcome; nothing escapes.
type Processor struct {
	Records     collection.RecordStore
	Media       collection.MediaSink
	LoadConfig  func() (domain.Config, error)
	Synthesizer func(provider string) (tts.Synthesizer, error)
	Logger      *slog.Logger
}

// NewProcessor builds a processor around the host collaborators.
func NewProcessor(records collection.RecordStore, media collection.MediaSink, store config.Store, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		Records:     records,
		Media:       media,
		LoadConfig:  func() (domain.Config, error) { return config.LoadConfig(store) },
		Synthesizer: tts.ForProvider,
		Logger:      logger.With(slog.String("component", "processor")),
	}
}

// Process executes one work unit. Field values are re-read live at each
// use rather than trusted from enqueue time, so concurrent edits during
// the network round trip are tolerated.
func (p *Processor) Process(recordID string, request domain.Request, onProgress func(int)) Outcome {
	cfg, err := p.LoadConfig()
	if err != nil {
		return Outcome{Kind: OutcomeError, Message: "load config: " + err.Error()}
	}
	settings := config.Resolve(cfg, request.Overwrite)

	record, err := p.Records.GetRecord(recordID)
	if err != nil {
		return Outcome{Kind: OutcomeError, Message: "read record: " + err.Error()}
	}
	liveText := record.Get(request.SourceField)

	if strings.TrimSpace(liveText) == "" && settings.SkipIfSourceEmpty {
		return Outcome{Kind: OutcomeSkipEmpty}
	}

	record, err = p.Records.GetRecord(recordID)
	if err != nil {
		return Outcome{Kind: OutcomeError, Message: "read record: " + err.Error()}
	}
	targetValue := record.Get(request.TargetField)
	if !request.Overwrite && settings.SkipIfTargetHasSound && text.HasSoundTag(targetValue) {
		return Outcome{Kind: OutcomeSkipHasAudio}
	}

	synth, err := p.Synthesizer(settings.Provider)
	if err != nil {
		return Outcome{Kind: OutcomeError, Message: err.Error()}
	}

	audio, err := synth.Synthesize(context.Background(), liveText, settings, tts.ProgressFunc(onProgress))
	if err != nil {
		return Outcome{Kind: OutcomeError, Message: err.Error()}
	}
	if len(audio) == 0 {
		return Outcome{Kind: OutcomeNoAudio}
	}

	preferredName := renderFilename(settings.FilenameTemplate, recordID, request.TargetField, settings.Ext)
	if len(preferredName) < minPreferredNameLength {
		preferredName = text.SafeFilenameFromText(liveText, settings.Ext)
	}

	storedName, err := p.Media.StoreMedia(preferredName, audio)
	if err != nil {
		return Outcome{Kind: OutcomeError, Message: "failed to store media: " + err.Error()}
	}

	// Third live read: the target may have changed during the round trip.
	record, err = p.Records.GetRecord(recordID)
	if err != nil {
		return Outcome{Kind: OutcomeError, Message: "read record: " + err.Error()}
	}
	tag := text.SoundTag(storedName)
	newValue := field.Apply(record.Get(request.TargetField), tag, settings.WriteMode, settings.AppendSeparator)
	record.Set(request.TargetField, newValue)

	if err := p.Records.UpdateRecord(record); err != nil {
		return Outcome{Kind: OutcomeError, Message: "write failed: " + err.Error()}
	}

	p.Logger.Debug("record updated",
		slog.String("record", recordID),
		slog.String("stored", storedName))
	return Outcome{Kind: OutcomeOK, StoredName: storedName}
}

// renderFilename substitutes the template placeholders {nid}, {field},
// and {ext}.
func renderFilename(template, recordID, targetField, ext string) string {
	return strings.NewReplacer(
		"{nid}", recordID,
		"{field}", targetField,
		"{ext}", ext,
	).Replace(template)
}
