// Package ollama maps free-text listening requests onto the fixed mood set by
// asking a local Ollama instance for a structured JSON answer.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ewilliams-labs/soundclusters/internal/core/domain"
	"github.com/ewilliams-labs/soundclusters/internal/core/ports"
)

const (
	defaultBaseURL = "http://localhost:11434"
	DefaultModel   = "deepseek-r1:8b"
)

const systemPrompt = "You classify a listener's request into exactly one mood.\n\nRules:\nAllowed moods: chill, happy, energetic.\nchill: calm, acoustic, relaxing, low energy.\nhappy: upbeat, danceable, party, positive.\nenergetic: intense, fast, loud, workout.\nOutput: Return ONLY a JSON object of the form {\"mood\": \"<mood>\"}. No conversational text."

// Client talks to the Ollama chat endpoint.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// compile-time interface assertion
var _ ports.MoodInterpreter = (*Client)(nil)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Format   string        `json:"format,omitempty"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Error   string      `json:"error,omitempty"`
}

type moodAnswer struct {
	Mood string `json:"mood"`
}

// NewClient returns a client for baseURL. An empty model selects DefaultModel.
func NewClient(baseURL, model string) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		baseURL: baseURL,
		model:   model,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// InterpretMood asks the model for a mood and validates the answer with
// domain.ParseMood, so anything outside the fixed set is domain.ErrUnknownMood.
func (c *Client) InterpretMood(ctx context.Context, message string) (domain.Mood, error) {
	if strings.TrimSpace(message) == "" {
		return "", fmt.Errorf("ollama: empty message: %w", domain.ErrUnknownMood)
	}

	payload := chatRequest{
		Model:  c.model,
		Stream: false,
		Format: "json",
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: message},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("ollama: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("ollama: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("ollama: unexpected status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("ollama: decode response: %w", err)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("ollama: %s", parsed.Error)
	}

	content := strings.TrimSpace(parsed.Message.Content)
	if content == "" {
		return "", fmt.Errorf("ollama: empty response")
	}

	var answer moodAnswer
	if err := json.Unmarshal([]byte(content), &answer); err != nil {
		return "", fmt.Errorf("ollama: decode mood: %w", err)
	}

	mood, err := domain.ParseMood(answer.Mood)
	if err != nil {
		return "", fmt.Errorf("ollama: %w", err)
	}
	logrus.WithFields(logrus.Fields{"model": c.model, "mood": mood}).Debug("ollama: mood interpreted")
	return mood, nil
}
