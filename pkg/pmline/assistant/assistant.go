// Package assistant implements the pmline message pipeline: language
// detection, update-intent classification, and grounded response
// generation over the knowledge base.
package assistant

import (
	"context"
	"log/slog"

	"github.com/luwei-tw/pmline/pkg/pmline/knowledge"
)

// Generator is the single blocking call the pipeline needs from the
// inference backend.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Assistant wires the pipeline together. The knowledge store and
// generator are injected so tests can substitute fixtures.
type Assistant struct {
	cfg     *Config
	llm     Generator
	store   *knowledge.Store
	updates *UpdateLog
	logger  *slog.Logger
}

// New creates an Assistant.
func New(cfg *Config, llm Generator, store *knowledge.Store, logger *slog.Logger) *Assistant {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assistant{
		cfg:    cfg,
		llm:    llm,
		store:  store,
		logger: logger.With("component", "assistant"),
	}
}

// SetUpdateLog attaches the update-request log. Optional; without it,
// detected update requests are only logged via slog.
func (a *Assistant) SetUpdateLog(log *UpdateLog) {
	a.updates = log
}

// HandleMessage runs the full pipeline for one inbound message and
// returns the reply text. Update requests are acknowledged and recorded,
// not applied; everything else gets a knowledge-grounded answer.
// Safe for concurrent use.
func (a *Assistant) HandleMessage(ctx context.Context, text, sourceID string) string {
	lang := a.DetectLanguage(ctx, text)

	if a.IsKnowledgeUpdate(ctx, text) {
		a.logger.Info("update request detected", "source", sourceID, "lang", lang, "message", text)
		if a.updates != nil {
			a.updates.Record(sourceID, string(lang), text)
		}
		return updateAck(lang)
	}

	return a.Respond(ctx, text, lang)
}

// updateAck acknowledges a recorded update request.
func updateAck(lang Language) string {
	if lang == LangSimplifiedChinese {
		return "收到，我已记下这条更新。"
	}
	if lang == LangTraditionalChinese {
		return "收到，我已記下這則更新。"
	}
	return "Got it, I've noted that update."
}
