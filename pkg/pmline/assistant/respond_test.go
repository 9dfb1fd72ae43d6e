package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/luwei-tw/pmline/pkg/pmline/knowledge"
)

func snapshotWith(sections map[string]string) *knowledge.Snapshot {
	snap := &knowledge.Snapshot{Sections: map[string]string{}}
	for _, key := range knowledge.Sections {
		snap.Sections[key] = sections[key]
	}
	return snap
}

func TestBuildResponsePromptContents(t *testing.T) {
	snap := snapshotWith(map[string]string{
		knowledge.SectionProduct:    "product facts",
		knowledge.SectionPriorities: "priority facts",
		knowledge.SectionCustomers:  "customer facts",
		knowledge.SectionPMMemory:   "memory facts",
		knowledge.SectionRoadmap:    "roadmap facts",
	})

	prompt := buildResponsePrompt("pmline", "what's next?", LangEnglish, snap)

	for _, want := range []string{
		"You are pmline",
		"Reply in English.",
		"## Product\nproduct facts",
		"## Priorities\npriority facts",
		"## Customers\ncustomer facts",
		"## PM memory\nmemory facts",
		"User message: what's next?",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	// Roadmap and resources are not part of the generation context.
	if strings.Contains(prompt, "roadmap facts") {
		t.Error("prompt contains roadmap section content")
	}
}

func TestBuildResponsePromptTruncatesSections(t *testing.T) {
	long := strings.Repeat("產", 3000)
	snap := snapshotWith(map[string]string{
		knowledge.SectionProduct: long,
	})

	prompt := buildResponsePrompt("pmline", "q", LangEnglish, snap)

	if strings.Contains(prompt, strings.Repeat("產", 2001)) {
		t.Error("product excerpt exceeds 2000 characters")
	}
	if !strings.Contains(prompt, strings.Repeat("產", 2000)) {
		t.Error("product excerpt shorter than 2000 characters")
	}
}

func TestLanguageDirective(t *testing.T) {
	tests := []struct {
		lang Language
		want string
	}{
		{LangTraditionalChinese, "請用繁體中文回答。"},
		{LangSimplifiedChinese, "请用简体中文回答。"},
		{LangEnglish, "Reply in English."},
		{LangJapanese, "日本語で答えてください。"},
		{LangKorean, "한국어로 답변해 주세요."},
		// Tags without a directive default to Traditional Chinese.
		{LangSpanish, "請用繁體中文回答。"},
		{LangFrench, "請用繁體中文回答。"},
		{LangGerman, "請用繁體中文回答。"},
	}

	for _, tt := range tests {
		t.Run(string(tt.lang), func(t *testing.T) {
			if got := languageDirective(tt.lang); got != tt.want {
				t.Errorf("languageDirective(%q) = %q, want %q", tt.lang, got, tt.want)
			}
		})
	}
}

func TestRespondApologyOnFailure(t *testing.T) {
	tests := []struct {
		lang Language
		want string
	}{
		{LangTraditionalChinese, "抱歉，我現在無法回答，請稍後再試。"},
		{LangSimplifiedChinese, "抱歉，我現在無法回答，請稍後再試。"},
		{LangEnglish, "Sorry, I can't answer right now. Please try again later."},
		{LangJapanese, "Sorry, I can't answer right now. Please try again later."},
	}

	for _, tt := range tests {
		t.Run(string(tt.lang), func(t *testing.T) {
			llm := &fakeLLM{errs: []error{errors.New("model offline")}}
			a := newTestAssistant(t, llm)

			if got := a.Respond(context.Background(), "question", tt.lang); got != tt.want {
				t.Errorf("Respond() = %q, want apology %q", got, tt.want)
			}
		})
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name  string
		s     string
		limit int
		want  string
	}{
		{"shorter than limit", "abc", 5, "abc"},
		{"exactly at limit", "abcde", 5, "abcde"},
		{"cut at limit", "abcdef", 5, "abcde"},
		{"multibyte counted as runes", "產品管理", 2, "產品"},
		{"empty", "", 5, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncateRunes(tt.s, tt.limit); got != tt.want {
				t.Errorf("truncateRunes(%q, %d) = %q, want %q", tt.s, tt.limit, got, tt.want)
			}
		})
	}
}
