package usage

import (
	"fmt"
	"strings"
	"time"
)

// FormatDuration renders a duration as days/hours/minutes, e.g. "1d 2h 3m".
// Seconds are shown only when nothing larger is present.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	days := int(d / (24 * time.Hour))
	hours := int(d/time.Hour) % 24
	minutes := int(d/time.Minute) % 60
	seconds := int(d/time.Second) % 60

	var b strings.Builder
	if days > 0 {
		fmt.Fprintf(&b, "%dd ", days)
	}
	if hours > 0 {
		fmt.Fprintf(&b, "%dh ", hours)
	}
	if minutes > 0 {
		fmt.Fprintf(&b, "%dm ", minutes)
	}
	if b.Len() == 0 {
		fmt.Fprintf(&b, "%ds ", seconds)
	}
	return strings.TrimSpace(b.String())
}
