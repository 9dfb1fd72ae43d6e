// Package webhook provides the HTTP webhook server that bridges the
// messaging platform to the assistant pipeline. Transport only: it
// validates signatures, decodes event batches, and relays plain strings
// in and out of the assistant.
package webhook

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/luwei-tw/pmline/pkg/pmline/assistant"
)

// Server is the webhook HTTP server.
type Server struct {
	assistant *assistant.Assistant
	cfg       Config
	replies   *replyClient
	server    *http.Server
	logger    *slog.Logger
	startedAt time.Time
}

// Config configures the webhook server.
type Config struct {
	// Address is the listen address (e.g. ":8080").
	Address string

	// ChannelSecret verifies inbound payload signatures.
	ChannelSecret string

	// ChannelToken authorizes outbound reply calls.
	ChannelToken string

	// ReplyURL overrides the platform reply endpoint (tests, proxies).
	ReplyURL string
}

// webhookBody is the inbound event batch.
type webhookBody struct {
	Events []event `json:"events"`
}

// event is a single platform event. Only text message events are handled.
type event struct {
	Type       string `json:"type"`
	ReplyToken string `json:"replyToken"`
	Message    struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"message"`
	Source struct {
		UserID string `json:"userId"`
	} `json:"source"`
}

// New creates a webhook server.
func New(a *assistant.Assistant, cfg Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Address == "" {
		cfg.Address = ":8080"
	}
	return &Server{
		assistant: a,
		cfg:       cfg,
		replies:   newReplyClient(cfg.ReplyURL, cfg.ChannelToken, logger),
		logger:    logger.With("component", "webhook"),
	}
}

// Start starts the HTTP server. Non-blocking.
func (s *Server) Start(ctx context.Context) error {
	s.startedAt = time.Now()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/webhook", s.handleWebhook)

	s.server = &http.Server{
		Addr:    s.cfg.Address,
		Handler: s.requestIDMiddleware(mux),
	}

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("webhook server error", "error", err)
		}
	}()
	s.logger.Info("webhook server started", "address", s.cfg.Address)
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	s.logger.Info("webhook server stopping...")
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, 200, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.startedAt).String(),
	})
}

// handleWebhook validates the signature, acknowledges the batch, and
// processes each text message event in its own goroutine. The platform
// delivers batches; events within one are independent.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, "method not allowed", 405)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		s.writeError(w, "reading body", 400)
		return
	}

	if !validSignature(s.cfg.ChannelSecret, body, r.Header.Get("X-Line-Signature")) {
		s.logger.Warn("webhook signature mismatch", "request_id", requestID(r.Context()))
		s.writeError(w, "invalid signature", 401)
		return
	}

	var batch webhookBody
	if err := json.Unmarshal(body, &batch); err != nil {
		s.writeError(w, "invalid payload", 400)
		return
	}

	// Ack immediately; the platform retries slow webhooks.
	s.writeJSON(w, 200, map[string]string{"status": "ok"})

	for _, ev := range batch.Events {
		if ev.Type != "message" || ev.Message.Type != "text" {
			continue
		}
		go s.processEvent(ev, requestID(r.Context()))
	}
}

// processEvent runs the pipeline for one event and replies.
func (s *Server) processEvent(ev event, reqID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	start := time.Now()
	reply := s.assistant.HandleMessage(ctx, ev.Message.Text, ev.Source.UserID)

	if err := s.replies.send(ctx, ev.ReplyToken, reply); err != nil {
		s.logger.Error("reply failed", "request_id", reqID, "user", ev.Source.UserID, "error", err)
		return
	}
	s.logger.Info("message handled",
		"request_id", reqID,
		"user", ev.Source.UserID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

func (s *Server) writeError(w http.ResponseWriter, msg string, code int) {
	s.writeJSON(w, code, map[string]string{"error": msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("writing response", "error", err)
	}
}
