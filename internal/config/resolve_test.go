package config

import (
	"testing"

	"deck-tts/internal/domain"
)

func baseConfig() domain.Config {
	cfg, err := Decode(Merge(nil))
	if err != nil {
		panic(err)
	}
	return cfg
}

// TestResolvePerProviderWinsOverFlat checks map entries beat legacy keys.
func TestResolvePerProviderWinsOverFlat(t *testing.T) {
	cfg := baseConfig()
	cfg.TTS.Provider = "openai"
	cfg.TTS.APIKey = "flat-key"
	cfg.TTS.APIKeys = map[string]string{"openai": "scoped-key"}

	settings := Resolve(cfg, false)
	if settings.APIKey != "scoped-key" {
		t.Fatalf("api key = %q, want scoped-key", settings.APIKey)
	}
	if settings.Model != "gpt-4o-mini-tts" {
		t.Fatalf("model = %q, want gpt-4o-mini-tts", settings.Model)
	}
	if settings.Ext != "mp3" {
		t.Fatalf("ext = %q, want mp3", settings.Ext)
	}
}

// TestResolveFlatFallback checks legacy keys apply when the map misses.
func TestResolveFlatFallback(t *testing.T) {
	cfg := baseConfig()
	cfg.TTS.Provider = "dashscope"
	cfg.TTS.APIKey = "legacy-key"
	cfg.TTS.APIKeys = map[string]string{"openai": "other"}

	settings := Resolve(cfg, false)
	if settings.APIKey != "legacy-key" {
		t.Fatalf("api key = %q, want legacy-key", settings.APIKey)
	}
}

// TestResolveEmptyMapEntryFallsThrough checks a blank scoped value is skipped.
func TestResolveEmptyMapEntryFallsThrough(t *testing.T) {
	cfg := baseConfig()
	cfg.TTS.APIKey = "legacy-key"
	cfg.TTS.APIKeys = map[string]string{"dashscope": ""}

	if settings := Resolve(cfg, false); settings.APIKey != "legacy-key" {
		t.Fatalf("api key = %q, want legacy-key", settings.APIKey)
	}
}

// TestResolveWriteMode checks overwrite forces replace.
func TestResolveWriteMode(t *testing.T) {
	cfg := baseConfig()

	if got := Resolve(cfg, false).WriteMode; got != domain.WriteModeAppend {
		t.Fatalf("write mode = %q, want append", got)
	}
	if got := Resolve(cfg, true).WriteMode; got != domain.WriteModeReplace {
		t.Fatalf("overwrite write mode = %q, want replace", got)
	}

	cfg.WriteMode = "REPLACE"
	if got := Resolve(cfg, false).WriteMode; got != domain.WriteModeReplace {
		t.Fatalf("configured write mode = %q, want replace", got)
	}
}

// TestResolveDefaultsAndNormalization checks built-in fallbacks.
func TestResolveDefaultsAndNormalization(t *testing.T) {
	cfg := domain.Config{}
	settings := Resolve(cfg, false)

	if settings.Provider != "dashscope" {
		t.Fatalf("provider = %q, want dashscope", settings.Provider)
	}
	if settings.Model != "qwen3-tts-flash" {
		t.Fatalf("model = %q", settings.Model)
	}
	if settings.Voice != "Cherry" {
		t.Fatalf("voice = %q, want Cherry", settings.Voice)
	}
	if settings.Ext != "wav" {
		t.Fatalf("ext = %q, want wav", settings.Ext)
	}
	if settings.AppendSeparator != " " {
		t.Fatalf("separator = %q, want single space", settings.AppendSeparator)
	}

	cfg.TTS.Ext = ".Mp3"
	if got := Resolve(cfg, false).Ext; got != "Mp3" {
		t.Fatalf("ext = %q, want leading dot trimmed", got)
	}
}
