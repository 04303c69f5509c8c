package usage

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/goodtune/chime/internal/clock"
)

// afkServer serves a single AFK event with the given status and end time.
func afkServer(status string, timestamp time.Time, durationSec float64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]any{
			{"timestamp": timestamp, "duration": durationSec, "data": map[string]any{"status": status}},
		})
	}
}

// TestActiveStatus tests the three-way activity signal derived from the
// latest AFK event.
func TestActiveStatus(t *testing.T) {
	now := time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    Activity
	}{
		{
			name:    "recent not-afk event",
			handler: afkServer("not-afk", now.Add(-2*time.Minute), 60),
			want:    ActivityActive,
		},
		{
			name:    "recent afk event",
			handler: afkServer("afk", now.Add(-2*time.Minute), 60),
			want:    ActivityIdle,
		},
		{
			name: "stale event is not trusted",
			// ended 10 minutes ago, past the 5 minute max age
			handler: afkServer("not-afk", now.Add(-11*time.Minute), 60),
			want:    ActivityUnknown,
		},
		{
			name: "event still in progress counts as fresh",
			// started 10 minutes ago but runs until now
			handler: afkServer("not-afk", now.Add(-10*time.Minute), 600),
			want:    ActivityActive,
		},
		{
			name: "empty bucket",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`[]`))
			},
			want: ActivityUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clk := &clock.TestClock{CurrentTime: now}
			r := newTestReporter(t, clk, tt.handler)

			got, err := r.ActiveStatus()
			if err != nil {
				t.Fatalf("ActiveStatus() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ActiveStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestActiveStatus_ServerDown tests that an unreachable server yields
// unknown with the error surfaced.
func TestActiveStatus_ServerDown(t *testing.T) {
	clk := &clock.TestClock{CurrentTime: time.Now()}
	r := newTestReporter(t, clk, func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	})

	got, err := r.ActiveStatus()
	if err == nil {
		t.Fatal("ActiveStatus() error = nil, want server error")
	}
	if got != ActivityUnknown {
		t.Errorf("ActiveStatus() = %v, want unknown", got)
	}
}
