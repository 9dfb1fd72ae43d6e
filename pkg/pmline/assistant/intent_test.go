package assistant

import (
	"context"
	"errors"
	"testing"
)

func TestMatchesUpdateRule(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"remember: ACME trial starts Monday", true},
		{"Remember to call back", true},
		{"記得明天的會議", true},
		{"记录一下这个需求", true},
		{"請記下這件事", true},
		{"update the roadmap", true},
		{"更新客戶名單", true},
		{"add a new customer", true},
		{"please append this note", true},
		{"新增一個項目", true},
		{"補充一點", true},
		{"I contacted the vendor", true},
		{"已經聯絡過他們", true},
		{"status changed to shipped", true},
		{"狀態改了", true},
		{"progress is at 80%", true},
		{"進度落後了", true},
		{"notify the team", true},
		{"通知大家", true},
		{"todo: write the brief", true},
		{"待辦事項", true},

		// "add" must match as a whole word only.
		{"the address changed", false},
		{"sudden sadness", false},

		{"what are this week's priorities?", false},
		{"本週的優先事項是什麼？", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := matchesUpdateRule(tt.text); got != tt.want {
				t.Errorf("matchesUpdateRule(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestIsKnowledgeUpdateSkipsModelWithoutKeyword(t *testing.T) {
	llm := &fakeLLM{}
	a := newTestAssistant(t, llm)

	if a.IsKnowledgeUpdate(context.Background(), "what's on the roadmap?") {
		t.Error("IsKnowledgeUpdate() = true for plain question")
	}
	if llm.callCount() != 0 {
		t.Errorf("model calls = %d, want 0 when no rule matches", llm.callCount())
	}
}

func TestIsKnowledgeUpdateModelConfirmation(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		err   error
		want  bool
	}{
		{"model confirms", "YES", nil, true},
		{"model confirms lowercase", "yes", nil, true},
		{"model confirms with prose", "Yes, it is an update request.", nil, true},
		{"model rejects", "NO", nil, false},
		{"model rejects with prose", "No, this is a question.", nil, false},
		{"model failure fails open", "", errors.New("timeout"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &fakeLLM{replies: []string{tt.reply}, errs: []error{tt.err}}
			a := newTestAssistant(t, llm)

			got := a.IsKnowledgeUpdate(context.Background(), "update the roadmap")
			if got != tt.want {
				t.Errorf("IsKnowledgeUpdate() = %v, want %v", got, tt.want)
			}
		})
	}
}
