package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ewilliams-labs/soundclusters/internal/core/domain"
)

func TestClient_InterpretMood(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		responseBody string
		want         domain.Mood
		wantErr      bool
		wantIs       error
	}{
		{
			name:         "Success",
			status:       http.StatusOK,
			responseBody: `{"message":{"role":"assistant","content":"{\"mood\":\"chill\"}"}}`,
			want:         domain.MoodChill,
		},
		{
			name:         "Mixed case answer",
			status:       http.StatusOK,
			responseBody: `{"message":{"role":"assistant","content":"{\"mood\":\" Energetic \"}"}}`,
			want:         domain.MoodEnergetic,
		},
		{
			name:         "Mood outside the set",
			status:       http.StatusOK,
			responseBody: `{"message":{"role":"assistant","content":"{\"mood\":\"melancholic\"}"}}`,
			wantErr:      true,
			wantIs:       domain.ErrUnknownMood,
		},
		{
			name:         "Not JSON content",
			status:       http.StatusOK,
			responseBody: `{"message":{"role":"assistant","content":"I think chill"}}`,
			wantErr:      true,
		},
		{
			name:         "Empty content",
			status:       http.StatusOK,
			responseBody: `{"message":{"role":"assistant","content":"  "}}`,
			wantErr:      true,
		},
		{
			name:         "Error field",
			status:       http.StatusOK,
			responseBody: `{"error":"model not found"}`,
			wantErr:      true,
		},
		{
			name:         "Server error",
			status:       http.StatusInternalServerError,
			responseBody: `{"error":"bad"}`,
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			var gotRequest chatRequest
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/chat" {
					w.WriteHeader(http.StatusNotFound)
					return
				}
				if r.Method != http.MethodPost {
					w.WriteHeader(http.StatusMethodNotAllowed)
					return
				}
				if err := json.NewDecoder(r.Body).Decode(&gotRequest); err != nil {
					w.WriteHeader(http.StatusBadRequest)
					return
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.responseBody))
			}))
			defer srv.Close()

			client := NewClient(srv.URL, "")
			mood, err := client.InterpretMood(context.Background(), "something mellow for a rainy day")

			if (err != nil) != tt.wantErr {
				t.Fatalf("expected err=%v, got %v", tt.wantErr, err)
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Fatalf("expected %v, got %v", tt.wantIs, err)
			}
			if tt.wantErr {
				return
			}
			if gotRequest.Model != DefaultModel {
				t.Fatalf("expected model %s, got %q", DefaultModel, gotRequest.Model)
			}
			if gotRequest.Format != "json" {
				t.Fatalf("expected format json, got %q", gotRequest.Format)
			}
			if len(gotRequest.Messages) != 2 {
				t.Fatalf("expected 2 messages, got %d", len(gotRequest.Messages))
			}
			if gotRequest.Messages[0].Role != "system" || gotRequest.Messages[0].Content != systemPrompt {
				t.Fatalf("system prompt mismatch")
			}
			if gotRequest.Messages[1].Role != "user" || gotRequest.Messages[1].Content != "something mellow for a rainy day" {
				t.Fatalf("user message mismatch")
			}
			if mood != tt.want {
				t.Fatalf("expected mood %q, got %q", tt.want, mood)
			}
		})
	}
}

func TestClient_InterpretMood_EmptyMessage(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "llama3").InterpretMood(context.Background(), "   ")
	if !errors.Is(err, domain.ErrUnknownMood) {
		t.Fatalf("expected ErrUnknownMood, got %v", err)
	}
	if called {
		t.Fatal("expected no request for an empty message")
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient("", "")
	if c.baseURL != defaultBaseURL {
		t.Errorf("baseURL: got %q", c.baseURL)
	}
	if c.model != DefaultModel {
		t.Errorf("model: got %q", c.model)
	}

	c = NewClient("http://ollama:11434/", "llama3")
	if c.baseURL != "http://ollama:11434" || c.model != "llama3" {
		t.Errorf("got %q %q", c.baseURL, c.model)
	}
}
