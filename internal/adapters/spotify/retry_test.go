package spotify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ewilliams-labs/soundclusters/internal/core/ports"
)

const upbeatFeatures = `{"id":"7","danceability":0.8,"energy":0.9,"loudness":-4.1,"valence":0.7,"tempo":128,"duration_ms":200000}`

type reply struct {
	status     int
	retryAfter string
	body       string
}

// recordWaits swaps the client's sleep for one that only records the delay.
func recordWaits(c *Client) *[]time.Duration {
	var waits []time.Duration
	c.retry.wait = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return ctx.Err()
	}
	return &waits
}

func TestGetAudioFeatures_Retry(t *testing.T) {
	tests := []struct {
		name         string
		replies      []reply
		wantAttempts int32
		wantWaits    []time.Duration
		wantErr      error
		wantErrText  string
	}{
		{
			name:         "honours Retry-After",
			replies:      []reply{{status: http.StatusTooManyRequests, retryAfter: "2"}, {status: http.StatusOK, body: upbeatFeatures}},
			wantAttempts: 2,
			wantWaits:    []time.Duration{2 * time.Second},
		},
		{
			name:         "caps a long Retry-After",
			replies:      []reply{{status: http.StatusTooManyRequests, retryAfter: "120"}, {status: http.StatusOK, body: upbeatFeatures}},
			wantAttempts: 2,
			wantWaits:    []time.Duration{maxRetryAfter},
		},
		{
			name:         "doubles backoff on server errors",
			replies:      []reply{{status: http.StatusServiceUnavailable}, {status: http.StatusBadGateway}, {status: http.StatusOK, body: upbeatFeatures}},
			wantAttempts: 3,
			wantWaits:    []time.Duration{10 * time.Millisecond, 20 * time.Millisecond},
		},
		{
			name:         "forbidden is not retried",
			replies:      []reply{{status: http.StatusForbidden}},
			wantAttempts: 1,
			wantErr:      ports.ErrFeaturesUnavailable,
		},
		{
			name:         "gives up after the last attempt",
			replies:      []reply{{status: http.StatusInternalServerError}},
			wantAttempts: 3,
			wantWaits:    []time.Duration{10 * time.Millisecond, 20 * time.Millisecond},
			wantErrText:  "failed after 3 attempts",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var attempts atomic.Int32
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet || r.URL.Path != "/audio-features/7" {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				n := int(attempts.Add(1))
				rep := tt.replies[min(n, len(tt.replies))-1]
				if rep.retryAfter != "" {
					w.Header().Set("Retry-After", rep.retryAfter)
				}
				w.WriteHeader(rep.status)
				w.Write([]byte(rep.body))
			}))
			defer ts.Close()

			client := NewClient(http.DefaultClient, ts.URL, WithRetry(3, 10*time.Millisecond))
			waits := recordWaits(client)

			got, err := client.getAudioFeatures(context.Background(), "7")

			if n := attempts.Load(); n != tt.wantAttempts {
				t.Fatalf("attempts: got %d, want %d", n, tt.wantAttempts)
			}
			if len(*waits) != len(tt.wantWaits) {
				t.Fatalf("waits: got %v, want %v", *waits, tt.wantWaits)
			}
			for i := range tt.wantWaits {
				if (*waits)[i] != tt.wantWaits[i] {
					t.Fatalf("wait %d: got %v, want %v", i, (*waits)[i], tt.wantWaits[i])
				}
			}

			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
			case tt.wantErrText != "":
				if err == nil || !strings.Contains(err.Error(), tt.wantErrText) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErrText, err)
				}
				if errors.Is(err, ports.ErrFeaturesUnavailable) {
					t.Fatalf("server errors must not read as missing features: %v", err)
				}
			default:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got.Tempo != 128 || got.Energy != 0.9 {
					t.Fatalf("features: got %+v", got)
				}
			}
		})
	}
}

func TestGetAudioFeatures_CanceledContext(t *testing.T) {
	var attempts atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(http.DefaultClient, ts.URL, WithRetry(3, time.Hour))
	_, err := client.getAudioFeatures(ctx, "7")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if n := attempts.Load(); n != 0 {
		t.Fatalf("attempts: got %d, want 0", n)
	}
}

func TestRetryPolicy_Delay(t *testing.T) {
	future := time.Now().Add(time.Hour).UTC().Format(http.TimeFormat)
	past := time.Now().Add(-time.Hour).UTC().Format(http.TimeFormat)

	tests := []struct {
		name       string
		attempt    int
		retryAfter string
		wantMin    time.Duration
		wantMax    time.Duration
	}{
		{"first backoff", 1, "", 100 * time.Millisecond, 100 * time.Millisecond},
		{"third backoff", 3, "", 400 * time.Millisecond, 400 * time.Millisecond},
		{"delta seconds", 1, "3", 3 * time.Second, 3 * time.Second},
		{"http date is capped", 1, future, maxRetryAfter, maxRetryAfter},
		{"date in the past", 2, past, 200 * time.Millisecond, 200 * time.Millisecond},
		{"garbage", 1, "soon", 100 * time.Millisecond, 100 * time.Millisecond},
		{"negative", 1, "-5", 100 * time.Millisecond, 100 * time.Millisecond},
	}

	policy := newRetryPolicy(3, 100*time.Millisecond)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{Header: http.Header{}}
			if tt.retryAfter != "" {
				resp.Header.Set("Retry-After", tt.retryAfter)
			}
			got := policy.delay(tt.attempt, resp)
			if got < tt.wantMin || got > tt.wantMax {
				t.Fatalf("delay: got %v, want within [%v, %v]", got, tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestNewRetryPolicy_Defaults(t *testing.T) {
	p := newRetryPolicy(0, -time.Second)
	if p.attempts != defaultAttempts || p.backoff != defaultBackoff {
		t.Fatalf("defaults: got %d attempts, %v backoff", p.attempts, p.backoff)
	}
	if p.wait == nil {
		t.Fatal("wait must default to a real sleep")
	}
}
