// Package bootstrap wires configuration, the host collection, the synthesis
// queue, and the desktop UI runtime together.
package bootstrap

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"deck-tts/internal/collection"
	"deck-tts/internal/config"
	"deck-tts/internal/diagnostics"
	"deck-tts/internal/domain"
	"deck-tts/internal/queue"
	"deck-tts/internal/text"
	"deck-tts/internal/tts"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// hostCollection is the full host-store surface the app consumes.
type hostCollection interface {
	collection.DeckCatalog
	collection.ModelCatalog
	collection.RecordStore
	collection.MediaSink
	RecordIDs(deckID, modelID string) ([]string, error)
}

// FieldSuggestion is the preselected source/target pair for a model.
type FieldSuggestion struct {
	SourceField string `json:"sourceField"`
	TargetField string `json:"targetField"`
}

// App wires configuration, collection, queue, and UI runtime callbacks.
type App struct {
	Store       config.Store
	Collection  hostCollection
	Queue       *queue.Queue
	Diagnostics domain.DiagnosticReport

	assets         fs.FS
	checker        *diagnostics.Checker
	events         *queue.EventBus
	logger         *slog.Logger
	collectionPath string
	mediaDir       string

	mu         sync.Mutex
	runtimeCtx context.Context
}

// New builds the application with persisted configuration and startup
// diagnostics.
func New() (*App, error) {
	return NewWithAssets(nil)
}

// NewWithAssets builds the application and optionally configures embedded
// frontend assets.
func NewWithAssets(assets fs.FS) (*App, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve user home: %w", err)
	}

	dataDir := filepath.Join(homeDir, ".deck-tts")
	collectionPath := filepath.Join(dataDir, "collection.json")
	mediaDir := filepath.Join(dataDir, "media")

	if err := collection.EnsureCollection(collectionPath); err != nil {
		return nil, fmt.Errorf("prepare collection: %w", err)
	}
	col, err := collection.Open(collectionPath, mediaDir)
	if err != nil {
		return nil, fmt.Errorf("open collection: %w", err)
	}

	store := config.NewJSONStore(filepath.Join(dataDir, "config.json"))
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	app := newApp(store, col, diagnostics.NewChecker(), queue.GoDispatcher{}, logger, collectionPath, mediaDir)
	app.assets = assets
	return app, nil
}

// newApp assembles the app from its collaborators; tests inject fakes here.
func newApp(store config.Store, col hostCollection, checker *diagnostics.Checker, dispatcher queue.Dispatcher, logger *slog.Logger, collectionPath, mediaDir string) *App {
	app := &App{
		Store:          store,
		Collection:     col,
		checker:        checker,
		events:         queue.NewEventBus(1000),
		logger:         logger.With(slog.String("component", "app")),
		collectionPath: collectionPath,
		mediaDir:       mediaDir,
	}

	processor := queue.NewProcessor(col, col, store, logger)
	app.Queue = queue.New(processor.Process, dispatcher, logger)
	app.Queue.SetCallbacks(app.publishJob, app.publishSummary, app.publishFinished)
	app.Diagnostics = app.runChecks()
	return app
}

// Run starts the Wails desktop application and binds backend methods.
func (a *App) Run() error {
	assetOptions := &assetserver.Options{}
	if a.assets != nil {
		assetOptions.Assets = a.assets
	} else {
		assetOptions.Handler = http.FileServer(http.Dir("./frontend"))
	}

	return wails.Run(&options.App{
		Title:       "Deck TTS",
		Width:       1080,
		Height:      720,
		AssetServer: assetOptions,
		OnStartup:   a.Startup,
		OnShutdown: func(ctx context.Context) {
			a.Queue.Clear()
			a.mu.Lock()
			defer a.mu.Unlock()
			a.runtimeCtx = nil
		},
		Bind: []interface{}{a},
	})
}

// Startup stores Wails runtime context for push events.
func (a *App) Startup(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.runtimeCtx = ctx
}

// GetConfig returns the merged configuration document for the settings UI.
func (a *App) GetConfig() (map[string]any, error) {
	doc, err := a.Store.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return doc, nil
}

// SaveConfig persists the configuration document and refreshes diagnostics.
func (a *App) SaveConfig(doc map[string]any) error {
	if err := a.Store.Save(doc); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	a.mu.Lock()
	a.Diagnostics = a.runChecks()
	a.mu.Unlock()
	return nil
}

// GetDiagnostics returns the latest cached diagnostics report.
func (a *App) GetDiagnostics() domain.DiagnosticReport {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Diagnostics
}

// RefreshDiagnostics reruns all readiness checks.
func (a *App) RefreshDiagnostics() domain.DiagnosticReport {
	report := a.runChecks()
	a.mu.Lock()
	a.Diagnostics = report
	a.mu.Unlock()
	return report
}

// FixDiagnostic attempts the repair action for one check and reruns checks.
func (a *App) FixDiagnostic(id string) (domain.DiagnosticReport, error) {
	if err := a.checker.Fix(id, a.collectionPath, a.mediaDir); err != nil {
		return domain.DiagnosticReport{}, err
	}
	return a.RefreshDiagnostics(), nil
}

// ListDecks returns selectable decks.
func (a *App) ListDecks() ([]domain.NamedID, error) {
	return a.Collection.Decks()
}

// ListModels returns selectable record models.
func (a *App) ListModels() ([]domain.NamedID, error) {
	return a.Collection.Models()
}

// ListFields returns the field names of one model.
func (a *App) ListFields(modelID string) ([]string, error) {
	return a.Collection.Fields(modelID)
}

// ListProviders returns the available TTS backends.
func (a *App) ListProviders() []domain.ProviderOption {
	return tts.Providers()
}

// ListVoices returns the voice catalog of one provider.
func (a *App) ListVoices(provider string) []domain.VoiceOption {
	return tts.VoicesFor(provider)
}

// ListLanguages returns the supported languages paired with their display
// names. The ID is the value persisted in configuration.
func (a *App) ListLanguages() []domain.NamedID {
	languages := tts.Languages()
	out := make([]domain.NamedID, len(languages))
	for i, language := range languages {
		out[i] = domain.NamedID{ID: language, Name: tts.LanguageDisplay(language)}
	}
	return out
}

// sourceFieldCandidates and targetFieldCandidates drive field preselection,
// in preference order.
var (
	sourceFieldCandidates = []string{"Back", "Text", "Expression", "Front"}
	targetFieldCandidates = []string{"Audio", "Pronunciation", "BackAudio", "Sound", "AudioBack"}
)

// SuggestFields preselects a source/target field pair for one model.
func (a *App) SuggestFields(modelID string) (FieldSuggestion, error) {
	fields, err := a.Collection.Fields(modelID)
	if err != nil {
		return FieldSuggestion{}, err
	}

	suggestion := FieldSuggestion{
		SourceField: matchField(fields, sourceFieldCandidates),
		TargetField: matchField(fields, targetFieldCandidates),
	}
	if suggestion.SourceField == "" && len(fields) > 0 {
		suggestion.SourceField = fields[0]
	}
	return suggestion, nil
}

// matchField returns the first candidate present in fields, compared
// case-insensitively.
func matchField(fields, candidates []string) string {
	for _, candidate := range candidates {
		for _, field := range fields {
			if strings.EqualFold(field, candidate) {
				return field
			}
		}
	}
	return ""
}

// EnqueueSelected adds one waiting job per record matching the selection.
// Nothing starts processing until StartQueue.
func (a *App) EnqueueSelected(request domain.Request) ([]domain.Job, error) {
	recordIDs, err := a.Collection.RecordIDs(request.DeckID, request.ModelID)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	items := make([]queue.Item, 0, len(recordIDs))
	for _, recordID := range recordIDs {
		items = append(items, queue.Item{
			RecordID: recordID,
			Preview:  a.previewFor(recordID, request.SourceField),
		})
	}

	jobs := a.Queue.Enqueue(request, items)
	a.logger.Info("batch enqueued",
		slog.String("deck", request.DeckID),
		slog.Int("count", len(jobs)))
	return jobs, nil
}

// EnqueueRecord adds a single record, for the process-current action.
func (a *App) EnqueueRecord(recordID string, request domain.Request) (domain.Job, error) {
	if _, err := a.Collection.GetRecord(recordID); err != nil {
		return domain.Job{}, fmt.Errorf("read record: %w", err)
	}

	jobs := a.Queue.Enqueue(request, []queue.Item{{
		RecordID: recordID,
		Preview:  a.previewFor(recordID, request.SourceField),
	}})
	return jobs[0], nil
}

// StartQueue begins sequential processing of waiting jobs.
func (a *App) StartQueue() {
	a.Queue.Start()
}

// ClearQueue drops all jobs and halts the run.
func (a *App) ClearQueue() {
	a.Queue.Clear()
}

// QueueJobs returns a snapshot of all jobs in enqueue order.
func (a *App) QueueJobs() []domain.Job {
	return a.Queue.Jobs()
}

// QueueSummary returns the aggregate completion state.
func (a *App) QueueSummary() domain.QueueSummary {
	return a.Queue.Summary()
}

// QueueEvents returns all events with sequence greater than sinceSeq.
func (a *App) QueueEvents(sinceSeq int64) []queue.Event {
	return a.events.Since(sinceSeq)
}

// previewFor builds the stripped display preview for one record field.
// Preview failures never block enqueueing.
func (a *App) previewFor(recordID, sourceField string) string {
	record, err := a.Collection.GetRecord(recordID)
	if err != nil {
		return text.Preview("")
	}
	return text.Preview(record.Get(sourceField))
}

// runChecks resolves current settings and executes readiness checks.
func (a *App) runChecks() domain.DiagnosticReport {
	cfg, err := config.LoadConfig(a.Store)
	if err != nil {
		a.logger.Warn("config load failed during checks", slog.String("error", err.Error()))
		cfg = domain.Config{}
	}
	settings := config.Resolve(cfg, false)
	return a.checker.Run(a.collectionPath, a.mediaDir, settings)
}

// publishJob forwards one job snapshot to the event stream.
func (a *App) publishJob(job domain.Job) {
	a.publishEvent(queue.Event{Type: queue.EventTypeJob, Job: &job})
}

// publishSummary forwards the aggregate state to the event stream.
func (a *App) publishSummary(summary domain.QueueSummary) {
	a.publishEvent(queue.Event{Type: queue.EventTypeSummary, Summary: &summary})
}

// publishFinished signals the drained queue to the event stream.
func (a *App) publishFinished(summary domain.QueueSummary) {
	a.publishEvent(queue.Event{Type: queue.EventTypeFinished, Summary: &summary})
}

// publishEvent stores event history and emits runtime push notifications.
func (a *App) publishEvent(event queue.Event) {
	published := a.events.Publish(event)

	a.mu.Lock()
	ctx := a.runtimeCtx
	a.mu.Unlock()
	if ctx != nil {
		wailsruntime.EventsEmit(ctx, "queue:event", published)
	}
}
