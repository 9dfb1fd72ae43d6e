// Package assistant – intent.go implements the two-stage classifier that
// decides whether a message asks to update the knowledge base.
// Stage one is a cheap keyword prefilter tuned for recall; stage two asks
// the model to confirm, improving precision. The pipeline deliberately
// over-detects: a false positive costs one acknowledgment message, a
// false negative drops a real update request.
package assistant

import (
	"context"
	"regexp"
	"strings"
)

// updateRules are the stage-one patterns, bilingual and case-insensitive.
// Any match sends the message to the model stage; no match short-circuits
// to false without a model call.
var updateRules = []*regexp.Regexp{
	regexp.MustCompile(`(?i)remember|記得|记得|記錄|记录|記下|记下`),
	regexp.MustCompile(`(?i)update|更新`),
	regexp.MustCompile(`(?i)\badd\b|append|新增|加入|補充|补充`),
	regexp.MustCompile(`(?i)contacted|聯絡|联络|聯繫|联系`),
	regexp.MustCompile(`(?i)status changed|狀態|状态`),
	regexp.MustCompile(`(?i)progress|進度|进度`),
	regexp.MustCompile(`(?i)notify|通知`),
	regexp.MustCompile(`(?i)todo|待辦|待办`),
}

// intentTokenBudget keeps the confirmation reply to one word.
const intentTokenBudget = 5

// matchesUpdateRule runs the stage-one prefilter.
func matchesUpdateRule(text string) bool {
	for _, rule := range updateRules {
		if rule.MatchString(text) {
			return true
		}
	}
	return false
}

// IsKnowledgeUpdate reports whether the message is a request to update,
// record, or remember information. Messages without any update keyword
// are rejected without touching the model. When the model stage fails,
// the classifier fails open to true: the rule stage already signaled
// likely intent, and over-acknowledging is cheaper than silently
// dropping an update request.
func (a *Assistant) IsKnowledgeUpdate(ctx context.Context, text string) bool {
	if !matchesUpdateRule(text) {
		return false
	}

	reply, err := a.llm.Generate(ctx, updateIntentPrompt(text), intentTokenBudget)
	if err != nil {
		a.logger.Warn("intent confirmation failed, assuming update request", "error", err)
		return true
	}
	return strings.Contains(strings.ToUpper(reply), "YES")
}

// updateIntentPrompt asks for a single-word YES/NO confirmation.
func updateIntentPrompt(text string) string {
	return `Is the following message a request to update, record, or remember information (as opposed to a question)? Answer with exactly one word: YES or NO.

Message: ` + text + `

Answer:`
}
