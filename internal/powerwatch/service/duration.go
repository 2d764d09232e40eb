package service

import (
	"fmt"
	"strings"
	"time"
)

// FormatDuration renders d as its non-zero day, hour, minute and second
// components, largest first, each followed by a space: 90 minutes is
// "1 hours 30 minutes ".  Components are truncated towards zero, so a
// negative span yields negative components.  Zero yields "".
func FormatDuration(d time.Duration) string {
	secs := int64(d / time.Second)

	parts := [...]struct {
		n    int64
		unit string
	}{
		{secs / 86400, "days"},
		{secs / 3600 % 24, "hours"},
		{secs / 60 % 60, "minutes"},
		{secs % 60, "seconds"},
	}

	var b strings.Builder
	for _, p := range parts {
		if p.n != 0 {
			fmt.Fprintf(&b, "%d %s ", p.n, p.unit)
		}
	}
	return b.String()
}
