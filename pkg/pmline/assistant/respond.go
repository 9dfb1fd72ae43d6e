// Package assistant – respond.go builds the grounded prompt and produces
// the final reply. The prompt embeds bounded excerpts of the knowledge
// snapshot so the model answers from context instead of inventing facts.
package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/luwei-tw/pmline/pkg/pmline/knowledge"
)

// Excerpt budgets, in characters, for the knowledge sections embedded in
// the generation prompt.
const (
	productExcerptLimit    = 2000
	prioritiesExcerptLimit = 1500
	customersExcerptLimit  = 1500
	pmMemoryExcerptLimit   = 1500
)

// responseTokenBudget is the num_predict budget for the final reply.
const responseTokenBudget = 500

// languageDirectives tells the model which language to reply in.
// Tags without a directive get the Traditional-Chinese one.
var languageDirectives = map[Language]string{
	LangTraditionalChinese: "請用繁體中文回答。",
	LangSimplifiedChinese:  "请用简体中文回答。",
	LangEnglish:            "Reply in English.",
	LangJapanese:           "日本語で答えてください。",
	LangKorean:             "한국어로 답변해 주세요.",
}

// languageDirective returns the reply-language instruction for a tag.
func languageDirective(lang Language) string {
	if d, ok := languageDirectives[lang]; ok {
		return d
	}
	return languageDirectives[LangTraditionalChinese]
}

// Respond generates a grounded answer to the user's message.
// Inference failures never propagate: the caller always gets a reply
// string, at worst a localized apology.
func (a *Assistant) Respond(ctx context.Context, text string, lang Language) string {
	prompt := buildResponsePrompt(a.cfg.Name, text, lang, a.store.Snapshot())

	reply, err := a.llm.Generate(ctx, prompt, responseTokenBudget)
	if err != nil {
		a.logger.Error("response generation failed", "lang", lang, "error", err)
		return apology(lang)
	}
	return reply
}

// buildResponsePrompt assembles the full generation prompt from the
// persona, language directive, knowledge excerpts, and the user message.
// Pure function: same inputs, same prompt.
func buildResponsePrompt(name, text string, lang Language, snap *knowledge.Snapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are %s, a product manager's personal assistant. %s\n\n", name, languageDirective(lang))

	b.WriteString("Context:\n")
	writeExcerpt(&b, "Product", snap.Get(knowledge.SectionProduct), productExcerptLimit)
	writeExcerpt(&b, "Priorities", snap.Get(knowledge.SectionPriorities), prioritiesExcerptLimit)
	writeExcerpt(&b, "Customers", snap.Get(knowledge.SectionCustomers), customersExcerptLimit)
	writeExcerpt(&b, "PM memory", snap.Get(knowledge.SectionPMMemory), pmMemoryExcerptLimit)

	fmt.Fprintf(&b, "\nUser message: %s\n\n", text)
	b.WriteString("Answer using only the context above. If the context does not contain the answer, say you are not sure.")

	return b.String()
}

// writeExcerpt appends a titled, length-bounded section to the prompt.
func writeExcerpt(b *strings.Builder, title, content string, limit int) {
	fmt.Fprintf(b, "## %s\n%s\n", title, truncateRunes(content, limit))
}

// truncateRunes returns the first limit characters of s.
func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// apology is the fixed fallback reply when generation fails.
func apology(lang Language) string {
	if strings.HasPrefix(string(lang), "zh") {
		return "抱歉，我現在無法回答，請稍後再試。"
	}
	return "Sorry, I can't answer right now. Please try again later."
}
