package tts

import "deck-tts/internal/domain"

// Providers lists the selectable TTS backends for the UI.
func Providers() []domain.ProviderOption {
	return []domain.ProviderOption{
		{ID: "dashscope", Name: "DashScope (Qwen TTS)", NeedsLanguage: true},
		{ID: "openai", Name: "OpenAI", NeedsLanguage: false},
		{ID: "elevenlabs", Name: "ElevenLabs", NeedsLanguage: false},
	}
}

var dashScopeVoices = []domain.VoiceOption{
	{ID: "Cherry", Name: "Cherry", Display: "芊悦 (Cherry)"},
	{ID: "Ethan", Name: "Ethan", Display: "晨煦 (Ethan)"},
	{ID: "Nofish", Name: "Nofish", Display: "不吃鱼 (Nofish)"},
	{ID: "Jennifer", Name: "Jennifer", Display: "詹妮弗 (Jennifer)"},
	{ID: "Ryan", Name: "Ryan", Display: "甜茶 (Ryan)"},
	{ID: "Katerina", Name: "Katerina", Display: "卡捷琳娜 (Katerina)"},
	{ID: "Elias", Name: "Elias", Display: "墨讲师 (Elias)"},
	{ID: "Jada", Name: "Jada", Display: "上海-阿珍 (Jada)"},
	{ID: "Dylan", Name: "Dylan", Display: "北京-晓东 (Dylan)"},
	{ID: "Sunny", Name: "Sunny", Display: "四川-晴儿 (Sunny)"},
}

var openAIVoices = []domain.VoiceOption{
	{ID: "alloy", Name: "Alloy", Display: "Alloy"},
	{ID: "ash", Name: "Ash", Display: "Ash"},
	{ID: "ballad", Name: "Ballad", Display: "Ballad"},
	{ID: "coral", Name: "Coral", Display: "Coral"},
	{ID: "echo", Name: "Echo", Display: "Echo"},
	{ID: "fable", Name: "Fable", Display: "Fable"},
	{ID: "nova", Name: "Nova", Display: "Nova"},
	{ID: "onyx", Name: "Onyx", Display: "Onyx"},
	{ID: "sage", Name: "Sage", Display: "Sage"},
	{ID: "shimmer", Name: "Shimmer", Display: "Shimmer"},
	{ID: "verse", Name: "Verse", Display: "Verse"},
	{ID: "marin", Name: "Marin", Display: "Marin"},
	{ID: "cedar", Name: "Cedar", Display: "Cedar"},
}

var elevenLabsVoices = []domain.VoiceOption{
	{ID: "21m00Tcm4TlvDq8ikWAM", Name: "Rachel", Display: "Rachel"},
	{ID: "JBFqnCBsd6RMkjVDRZzb", Name: "George", Display: "George"},
	{ID: "EXAVITQu4vr4xnSDxMaL", Name: "Sarah", Display: "Sarah"},
	{ID: "pNInz6obpgDQGcFmaJgB", Name: "Adam", Display: "Adam"},
	{ID: "onwK4e9ZLuTAKqWW03F9", Name: "Daniel", Display: "Daniel"},
	{ID: "pFZP5JQG7iQjIQuC4Bku", Name: "Lily", Display: "Lily"},
}

// VoicesFor returns the voice catalog for one provider id.
func VoicesFor(provider string) []domain.VoiceOption {
	switch provider {
	case "openai":
		return append([]domain.VoiceOption(nil), openAIVoices...)
	case "elevenlabs":
		return append([]domain.VoiceOption(nil), elevenLabsVoices...)
	default:
		return append([]domain.VoiceOption(nil), dashScopeVoices...)
	}
}

// Languages lists the language types accepted by the DashScope API.
func Languages() []string {
	return []string{
		"Chinese", "English", "French", "German", "Russian",
		"Italian", "Spanish", "Portuguese", "Japanese", "Korean",
	}
}

var languageDisplayByAPI = map[string]string{
	"Chinese":    "中文",
	"English":    "英语",
	"French":     "法语",
	"German":     "德语",
	"Russian":    "俄语",
	"Italian":    "意大利语",
	"Spanish":    "西班牙语",
	"Portuguese": "葡萄牙语",
	"Japanese":   "日语",
	"Korean":     "韩语",
}

// LanguageDisplay converts an API language name to its display form.
// Unknown names pass through unchanged.
func LanguageDisplay(api string) string {
	if display, ok := languageDisplayByAPI[api]; ok {
		return display
	}
	return api
}

// LanguageAPIFormat converts a display language name to the API form.
func LanguageAPIFormat(display string) string {
	for api, d := range languageDisplayByAPI {
		if d == display {
			return api
		}
	}
	return display
}
