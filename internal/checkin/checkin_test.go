package checkin

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/goodtune/chime/internal/usage"
)

type fakeReporter struct {
	totals   map[string]time.Duration
	totalErr error
	activity usage.Activity
	actErr   error
}

func (f *fakeReporter) CategoryTime() (map[string]time.Duration, error) {
	return f.totals, f.totalErr
}

func (f *fakeReporter) ActiveStatus() (usage.Activity, error) {
	return f.activity, f.actErr
}

type fakeNotifier struct {
	titles   []string
	messages []string
}

func (f *fakeNotifier) Send(title, message string) error {
	f.titles = append(f.titles, title)
	f.messages = append(f.messages, message)
	return nil
}

// TestSend_MessageShape tests that the summary lists the requested
// categories sorted by time spent, headed by the day total.
func TestSend_MessageShape(t *testing.T) {
	reporter := &fakeReporter{totals: map[string]time.Duration{
		usage.AllCategory: 3 * time.Hour,
		"Work":            2 * time.Hour,
		"Media":           45 * time.Minute,
		"Twitter":         0,
	}}
	notifier := &fakeNotifier{}

	s := New(reporter, notifier, []string{usage.AllCategory, "Work", "Media", "Twitter"}, zerolog.Nop())
	if err := s.Send(); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if len(notifier.messages) != 1 {
		t.Fatalf("sent %d notifications, want 1", len(notifier.messages))
	}
	if notifier.titles[0] != "Checkin" {
		t.Errorf("title = %q, want Checkin", notifier.titles[0])
	}

	want := "Time spent today: 3h\n" +
		"Categories:\n" +
		" - All: 3h\n" +
		" - Work: 2h\n" +
		" - Media: 45m\n" +
		" - Twitter: 0s"
	if notifier.messages[0] != want {
		t.Errorf("message = %q, want %q", notifier.messages[0], want)
	}
}

// TestSend_ReporterError tests that a failed totals query propagates and
// sends nothing.
func TestSend_ReporterError(t *testing.T) {
	reporter := &fakeReporter{totalErr: errors.New("server unreachable")}
	notifier := &fakeNotifier{}

	s := New(reporter, notifier, []string{usage.AllCategory}, zerolog.Nop())
	if err := s.Send(); err == nil {
		t.Fatal("Send() error = nil, want query failure")
	}
	if len(notifier.messages) != 0 {
		t.Errorf("sent %d notifications, want 0", len(notifier.messages))
	}
}

// TestHourly_GatedOnActivity tests that the hourly checkin fires only when
// the user is demonstrably active.
func TestHourly_GatedOnActivity(t *testing.T) {
	tests := []struct {
		name     string
		activity usage.Activity
		actErr   error
		wantSent int
	}{
		{"active user", usage.ActivityActive, nil, 1},
		{"idle user", usage.ActivityIdle, nil, 0},
		{"unknown activity", usage.ActivityUnknown, nil, 0},
		{"activity query failed", usage.ActivityUnknown, errors.New("afk bucket missing"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reporter := &fakeReporter{
				totals:   map[string]time.Duration{usage.AllCategory: time.Hour},
				activity: tt.activity,
				actErr:   tt.actErr,
			}
			notifier := &fakeNotifier{}

			s := New(reporter, notifier, []string{usage.AllCategory}, zerolog.Nop())
			s.hourly()

			if len(notifier.messages) != tt.wantSent {
				t.Errorf("sent %d notifications, want %d", len(notifier.messages), tt.wantSent)
			}
			if tt.wantSent == 1 && !strings.HasPrefix(notifier.messages[0], "Time spent today: 1h") {
				t.Errorf("message = %q", notifier.messages[0])
			}
		})
	}
}
