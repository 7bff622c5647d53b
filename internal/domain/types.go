package domain

// JobState tracks the lifecycle of one queued synthesis job.
type JobState string

const (
	JobStateWaiting    JobState = "waiting"
	JobStateProcessing JobState = "processing"
	JobStateDone       JobState = "done"
	JobStateSkipped    JobState = "skipped"
	JobStateError      JobState = "error"
)

// ProgressIndeterminate marks a phase with no known total (generation).
const ProgressIndeterminate = -1

// Job is one queued TTS request for a single record occurrence.
// RecordID may repeat across enqueues; each occurrence is independent.
type Job struct {
	ID         string   `json:"id"`
	RecordID   string   `json:"recordId"`
	State      JobState `json:"state"`
	Progress   int      `json:"progress"`
	Preview    string   `json:"preview"`
	Detail     string   `json:"detail,omitempty"`
	StoredName string   `json:"storedName,omitempty"`
}

// Terminal reports whether the job reached a final state.
func (j Job) Terminal() bool {
	switch j.State {
	case JobStateDone, JobStateSkipped, JobStateError:
		return true
	default:
		return false
	}
}

// QueueSummary aggregates terminal counts for the batch progress bar.
type QueueSummary struct {
	Total   int `json:"total"`
	Done    int `json:"done"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
	Percent int `json:"percent"`
}

// Request captures the user's selection for one enqueue batch.
type Request struct {
	DeckID      string `json:"deckId"`
	ModelID     string `json:"modelId"`
	SourceField string `json:"sourceField"`
	TargetField string `json:"targetField"`
	Overwrite   bool   `json:"overwrite"`
}

// WriteMode selects how a generated reference is written into the target field.
type WriteMode string

const (
	WriteModeAppend  WriteMode = "append"
	WriteModeReplace WriteMode = "replace"
)

// TTSConfig is the tts section of the stored configuration document.
// The per-provider maps take precedence over the flat legacy keys.
type TTSConfig struct {
	Provider     string            `json:"provider" mapstructure:"provider"`
	APIKey       string            `json:"api_key" mapstructure:"api_key"`
	APIKeys      map[string]string `json:"api_keys" mapstructure:"api_keys"`
	Model        string            `json:"model" mapstructure:"model"`
	Voice        string            `json:"voice" mapstructure:"voice"`
	LanguageType string            `json:"language_type" mapstructure:"language_type"`
	Ext          string            `json:"ext" mapstructure:"ext"`
	Models       map[string]string `json:"models" mapstructure:"models"`
	Voices       map[string]string `json:"voices" mapstructure:"voices"`
	Exts         map[string]string `json:"exts" mapstructure:"exts"`
}

// BatchConfig is the batch section of the stored configuration document.
type BatchConfig struct {
	SkipIfSourceEmpty    bool `json:"skip_if_source_empty" mapstructure:"skip_if_source_empty"`
	SkipIfTargetHasSound bool `json:"skip_if_target_has_sound" mapstructure:"skip_if_target_has_sound"`
	Overwrite            bool `json:"overwrite" mapstructure:"overwrite"`
}

// Config is the typed view of the merged configuration document.
type Config struct {
	TTS              TTSConfig   `json:"tts" mapstructure:"tts"`
	WriteMode        string      `json:"write_mode" mapstructure:"write_mode"`
	AppendSeparator  string      `json:"append_separator" mapstructure:"append_separator"`
	FilenameTemplate string      `json:"filename_template" mapstructure:"filename_template"`
	Batch            BatchConfig `json:"batch" mapstructure:"batch"`
}

// ResolvedSettings is the fully-defaulted, provider-scoped configuration
// used for one synthesis call.
type ResolvedSettings struct {
	Provider             string
	APIKey               string
	Model                string
	Voice                string
	LanguageType         string
	Ext                  string
	WriteMode            WriteMode
	FilenameTemplate     string
	AppendSeparator      string
	Overwrite            bool
	SkipIfSourceEmpty    bool
	SkipIfTargetHasSound bool
}

// NamedID pairs a display name with an opaque host identifier.
type NamedID struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// ProviderOption describes one selectable TTS backend.
type ProviderOption struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	NeedsLanguage bool   `json:"needsLanguage"`
}

// VoiceOption describes one selectable voice for a provider.
type VoiceOption struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Display string `json:"display"`
}
