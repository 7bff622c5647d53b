package config

// Defaults returns the baseline configuration document. Stored user
// documents are shallow-merged over this per section, so any key the
// user never set keeps its default.
func Defaults() map[string]any {
	return map[string]any{
		"tts": map[string]any{
			"provider": "dashscope",
			"api_key":  "",
			"api_keys": map[string]any{
				"dashscope":  "",
				"openai":     "",
				"elevenlabs": "",
			},
			"model":         "qwen3-tts-flash",
			"voice":         "Ethan",
			"language_type": "Chinese",
			"ext":           "wav",
			"models": map[string]any{
				"dashscope":  "qwen3-tts-flash",
				"openai":     "gpt-4o-mini-tts",
				"elevenlabs": "eleven_multilingual_v2",
			},
			"voices": map[string]any{
				"dashscope":  "Ethan",
				"openai":     "alloy",
				"elevenlabs": "21m00Tcm4TlvDq8ikWAM",
			},
			"exts": map[string]any{
				"dashscope":  "wav",
				"openai":     "mp3",
				"elevenlabs": "mp3",
			},
		},
		"write_mode":        "append",
		"append_separator":  "<br>",
		"filename_template": "tts_{nid}_{field}.{ext}",
		"batch": map[string]any{
			"skip_if_source_empty":     true,
			"skip_if_target_has_sound": true,
			"overwrite":                false,
		},
	}
}
