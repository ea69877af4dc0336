package prompts

import "strings"

// DefaultLanguage is used whenever a language code has no entry.
const DefaultLanguage = "en"

var languageInstructions = map[string]string{
	"it": "IMPORTANTE: Rispondi SEMPRE in italiano. Usa unità di misura italiane (grammi, litri, cucchiai, ecc.). Scrivi tutti i testi in italiano.",
	"en": "IMPORTANT: Always respond in English. Use imperial or metric measurements as appropriate. Write all text in English.",
	"fr": "IMPORTANT: Répondez TOUJOURS en français. Utilisez des unités de mesure françaises (grammes, litres, cuillères, etc.). Écrivez tout le texte en français.",
	"es": "IMPORTANTE: Responde SIEMPRE en español. Usa unidades de medida españolas (gramos, litros, cucharadas, etc.). Escribe todo el texto en español.",
	"de": "WICHTIG: Antworte IMMER auf Deutsch. Verwende deutsche Maßeinheiten (Gramm, Liter, Esslöffel, usw.). Schreibe den gesamten Text auf Deutsch.",
	"pt": "IMPORTANTE: Responda SEMPRE em português. Use unidades de medida portuguesas (gramas, litros, colheres, etc.). Escreva todo o texto em português.",
	"zh": "重要：始终用中文回复。使用中文度量单位（克、升、勺等）。用中文写所有文本。",
	"ja": "重要：必ず日本語で回答してください。日本の単位（グラム、リットル、大さじなど）を使用してください。すべてのテキストを日本語で書いてください。",
	"ko": "중요: 항상 한국어로 답하세요. 한국의 측정 단위(그램, 리터, 큰술 등)를 사용하세요. 모든 텍스트를 한국어로 작성하세요.",
	"ru": "ВАЖНО: Всегда отвечайте на русском языке. Используйте русские единицы измерения (граммы, литры, ложки и т.д.). Пишите весь текст на русском языке.",
	"ar": "مهم: أجب دائماً بالعربية. استخدم وحدات القياس العربية (جرام، لتر، ملعقة، إلخ). اكتب كل النص بالعربية.",
}

// LanguageInstruction returns the reply-language directive for code.
func LanguageInstruction(code string) string {
	if s, ok := languageInstructions[normalizeCode(code)]; ok {
		return s
	}
	return languageInstructions[DefaultLanguage]
}

func normalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}
