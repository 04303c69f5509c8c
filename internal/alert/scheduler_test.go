package alert

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/goodtune/chime/internal/clock"
)

// TestScheduler_PassDrivesAlerts tests that one scheduler pass updates and
// checks every alert.
func TestScheduler_PassDrivesAlerts(t *testing.T) {
	clk := &clock.TestClock{CurrentTime: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	source := &fakeSource{totals: map[string]time.Duration{
		"Work":  20 * time.Minute,
		"Media": 5 * time.Minute,
	}}
	notifier := &fakeNotifier{}

	alerts := []*CategoryAlert{
		NewCategoryAlert("Work", "", []time.Duration{15 * time.Minute}, source, notifier, clk, zerolog.Nop()),
		NewCategoryAlert("Media", "", []time.Duration{15 * time.Minute}, source, notifier, clk, zerolog.Nop()),
	}

	s := NewScheduler(alerts, Config{}, zerolog.Nop())
	s.pass()

	// Only Work has crossed its threshold
	if len(notifier.sent) != 1 {
		t.Fatalf("sent %d notifications, want 1: %v", len(notifier.sent), notifier.sent)
	}
	if source.calls != 2 {
		t.Errorf("queries = %d, want 2", source.calls)
	}
}

// TestScheduler_StartStop tests that the loop ticks on its own and that
// Stop terminates it.
func TestScheduler_StartStop(t *testing.T) {
	source := &fakeSource{totals: map[string]time.Duration{"Work": 20 * time.Minute}}
	notifier := &fakeNotifier{}

	a := NewCategoryAlert("Work", "", []time.Duration{15 * time.Minute}, source, notifier, clock.RealClock{}, zerolog.Nop())

	s := NewScheduler([]*CategoryAlert{a}, Config{Interval: 10 * time.Millisecond}, zerolog.Nop())
	s.Start()

	deadline := time.After(time.Second)
	for notifier.count() == 0 {
		select {
		case <-deadline:
			t.Fatal("no notification within a second of starting")
		case <-time.After(5 * time.Millisecond):
		}
	}

	s.Stop()
}
