package config

import (
	"strings"

	"deck-tts/internal/domain"
)

// Resolve computes the provider-scoped settings for one synthesis call.
// Per-provider map entries win over the flat legacy keys; when both are
// absent the built-in default applies. The overwrite flag forces replace
// mode regardless of the configured write mode.
func Resolve(cfg domain.Config, overwrite bool) domain.ResolvedSettings {
	provider := strings.TrimSpace(strings.ToLower(cfg.TTS.Provider))
	if provider == "" {
		provider = "dashscope"
	}

	settings := domain.ResolvedSettings{
		Provider:             provider,
		APIKey:               scoped(cfg.TTS.APIKeys, provider, cfg.TTS.APIKey, ""),
		Model:                scoped(cfg.TTS.Models, provider, cfg.TTS.Model, "qwen3-tts-flash"),
		Voice:                scoped(cfg.TTS.Voices, provider, cfg.TTS.Voice, "Cherry"),
		LanguageType:         cfg.TTS.LanguageType,
		Ext:                  strings.TrimPrefix(scoped(cfg.TTS.Exts, provider, cfg.TTS.Ext, "wav"), "."),
		WriteMode:            domain.WriteModeAppend,
		FilenameTemplate:     cfg.FilenameTemplate,
		AppendSeparator:      cfg.AppendSeparator,
		Overwrite:            overwrite,
		SkipIfSourceEmpty:    cfg.Batch.SkipIfSourceEmpty,
		SkipIfTargetHasSound: cfg.Batch.SkipIfTargetHasSound,
	}

	if settings.LanguageType == "" {
		settings.LanguageType = "Chinese"
	}
	if settings.FilenameTemplate == "" {
		settings.FilenameTemplate = "tts_{nid}_{field}.{ext}"
	}
	if settings.AppendSeparator == "" {
		settings.AppendSeparator = " "
	}

	switch {
	case overwrite:
		settings.WriteMode = domain.WriteModeReplace
	case strings.EqualFold(cfg.WriteMode, string(domain.WriteModeReplace)):
		settings.WriteMode = domain.WriteModeReplace
	}

	return settings
}

// scoped prefers the per-provider mapping, then the flat legacy key, then
// the built-in fallback. A present-but-empty map entry falls through.
func scoped(byProvider map[string]string, provider, flat, fallback string) string {
	if v := byProvider[provider]; v != "" {
		return v
	}
	if flat != "" {
		return flat
	}
	return fallback
}
