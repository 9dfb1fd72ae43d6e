// Package assistant – detect.go implements language detection.
// A model classification handles real language ambiguity; a deterministic
// script heuristic covers the one thing the model is unreliable at,
// telling Simplified from Traditional Chinese.
package assistant

import (
	"context"
	"fmt"
	"strings"
	"unicode"
)

// Language is one of the closed set of supported language tags.
type Language string

const (
	LangTraditionalChinese Language = "zh-TW"
	LangSimplifiedChinese  Language = "zh-CN"
	LangEnglish            Language = "en"
	LangJapanese           Language = "ja"
	LangKorean             Language = "ko"
	LangSpanish            Language = "es"
	LangFrench             Language = "fr"
	LangGerman             Language = "de"
)

// languages lists every supported tag. The two Chinese variants come
// first so a tie at the same reply offset resolves to the longer code.
var languages = []Language{
	LangTraditionalChinese,
	LangSimplifiedChinese,
	LangEnglish,
	LangJapanese,
	LangKorean,
	LangSpanish,
	LangFrench,
	LangGerman,
}

// detectTokenBudget keeps the classification reply to a single code.
const detectTokenBudget = 10

// DetectLanguage classifies the language of a user message.
// On any model failure or unparseable reply it falls back to the
// script heuristic.
func (a *Assistant) DetectLanguage(ctx context.Context, text string) Language {
	prompt := languageDetectPrompt(text)
	reply, err := a.llm.Generate(ctx, prompt, detectTokenBudget)
	if err != nil {
		a.logger.Warn("language detection model call failed, using script heuristic", "error", err)
		return detectByScript(text)
	}
	if lang, ok := matchLanguageCode(reply); ok {
		return lang
	}
	a.logger.Debug("no language code in model reply, using script heuristic", "reply", reply)
	return detectByScript(text)
}

// languageDetectPrompt instructs the model to answer with a single code.
func languageDetectPrompt(text string) string {
	return fmt.Sprintf(`Identify the language of the following message. Answer with exactly one code from this list and nothing else: zh-TW, zh-CN, en, ja, ko, es, fr, de.

Message: %s

Code:`, text)
}

// matchLanguageCode scans a model reply for the earliest occurrence of
// any known language code. Substring matching tolerates replies like
// "the language is zh-CN probably".
func matchLanguageCode(reply string) (Language, bool) {
	normalized := strings.ToLower(strings.TrimSpace(reply))

	best := Language("")
	bestIdx := -1
	for _, lang := range languages {
		idx := strings.Index(normalized, strings.ToLower(string(lang)))
		if idx < 0 {
			continue
		}
		if bestIdx < 0 || idx < bestIdx {
			best = lang
			bestIdx = idx
		}
	}
	if bestIdx < 0 {
		return "", false
	}
	return best, true
}

// Characters written only in one Chinese script. Small sets are enough:
// one simplified-unique hit with no traditional-unique hit is a strong
// signal, everything else defaults to Traditional.
const (
	simplifiedOnly  = "们这来对时说会么没为发还记与关点过动头认问让见书东马买乐习号忆"
	traditionalOnly = "們這來對時說會麼沒為發還記與關點過動頭認問讓見書東馬買樂習號憶"
)

// detectByScript is the deterministic fallback: Han text is classified
// Simplified vs Traditional by the unique character sets (Traditional is
// the tie-break for mixed or ambiguous text); anything else is English.
func detectByScript(text string) Language {
	if !containsHan(text) {
		return LangEnglish
	}
	hasSimplified := strings.ContainsAny(text, simplifiedOnly)
	hasTraditional := strings.ContainsAny(text, traditionalOnly)
	if hasSimplified && !hasTraditional {
		return LangSimplifiedChinese
	}
	return LangTraditionalChinese
}

// containsHan reports whether text contains any CJK Han character.
func containsHan(text string) bool {
	for _, r := range text {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}
