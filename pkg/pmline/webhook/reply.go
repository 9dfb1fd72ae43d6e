// Package webhook – reply.go sends reply messages back through the
// platform reply endpoint.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// defaultReplyURL is the platform reply endpoint.
const defaultReplyURL = "https://api.line.me/v2/bot/message/reply"

// replyClient posts reply messages with the channel token.
type replyClient struct {
	url        string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

type replyRequest struct {
	ReplyToken string         `json:"replyToken"`
	Messages   []replyMessage `json:"messages"`
}

type replyMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func newReplyClient(url, token string, logger *slog.Logger) *replyClient {
	if url == "" {
		url = defaultReplyURL
	}
	return &replyClient{
		url:   url,
		token: token,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger.With("component", "reply_client"),
	}
}

// send delivers one text reply for the given reply token.
func (c *replyClient) send(ctx context.Context, replyToken, text string) error {
	payload, err := json.Marshal(replyRequest{
		ReplyToken: replyToken,
		Messages:   []replyMessage{{Type: "text", Text: text}},
	})
	if err != nil {
		return fmt.Errorf("marshaling reply: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating reply request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending reply: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("reply endpoint returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
