package tui

import (
	"fmt"
	"strings"
	"time"
)

// agoSteps are the units used by formatTime, smallest first. Entries older
// than the last step print their date.
var agoSteps = []struct {
	below time.Duration
	unit  time.Duration
	label string
}{
	{time.Hour, time.Minute, "m"},
	{24 * time.Hour, time.Hour, "h"},
	{60 * 24 * time.Hour, 24 * time.Hour, "d"},
}

// formatTime renders when a grimoire entry was saved.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := time.Since(t)
	if d < time.Minute {
		return "just now"
	}
	for _, s := range agoSteps {
		if d < s.below {
			return fmt.Sprintf("%d%s ago", int64(d/s.unit), s.label)
		}
	}
	return t.Format("2 Jan 2006")
}

// truncStr keeps s within maxLen runes, ending in an ellipsis when cut.
func truncStr(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-1]) + "…"
}

// cleanTitle turns a spell title into one display line: header markers
// dropped, whitespace collapsed.
func cleanTitle(raw string) string {
	words := strings.Fields(raw)
	for len(words) > 0 && strings.Trim(words[0], "#") == "" {
		words = words[1:]
	}
	if len(words) > 0 {
		words[0] = strings.TrimLeft(words[0], "#")
	}
	return strings.Join(words, " ")
}
