package utils

import (
	"fmt"
	"time"
)

// FormatTimestamp renders a time as a Discord timestamp showing both the
// full date and the relative form, e.g. "<t:1700000000:F> (<t:1700000000:R>)".
func FormatTimestamp(t time.Time) string {
	unix := t.Unix()
	return fmt.Sprintf("<t:%d:F> (<t:%d:R>)", unix, unix)
}

// FormatDuration renders a duration in a compact human form using the two
// most significant units, e.g. "42s", "3m12s", "2h5m", "1d4h".
func FormatDuration(d time.Duration) string {
	secs := int64(d.Seconds())
	if secs < 0 {
		secs = 0
	}

	switch {
	case secs < 60:
		return fmt.Sprintf("%ds", secs)
	case secs < 3600:
		return fmt.Sprintf("%dm%ds", secs/60, secs%60)
	case secs < 86400:
		return fmt.Sprintf("%dh%dm", secs/3600, (secs%3600)/60)
	default:
		return fmt.Sprintf("%dd%dh", secs/86400, (secs%86400)/3600)
	}
}
