package note

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// PreviewLength is the number of characters of content shown on a card.
const PreviewLength = 200

// FormatLastEdited renders how long ago t was, relative to now.
func FormatLastEdited(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	diff := now.Sub(t)
	switch {
	case diff < time.Minute:
		return "Just now"
	case diff < time.Hour:
		return plural(int(diff/time.Minute), "minute") + " ago"
	case diff < 24*time.Hour:
		return plural(int(diff/time.Hour), "hour") + " ago"
	}
	local := t.Local()
	if local.Year() != now.Local().Year() {
		return local.Format("Jan 2, 2006")
	}
	return local.Format("Jan 2")
}

// FormatCardDate renders a creation date as "today", "yesterday" or
// "January 2".
func FormatCardDate(t, now time.Time) string {
	y1, m1, d1 := t.Local().Date()
	y2, m2, d2 := now.Local().Date()
	day := time.Date(y1, m1, d1, 0, 0, 0, 0, time.Local)
	today := time.Date(y2, m2, d2, 0, 0, 0, 0, time.Local)
	switch {
	case day.Equal(today):
		return "today"
	case day.Equal(today.AddDate(0, 0, -1)):
		return "yesterday"
	default:
		return t.Local().Format("January 2")
	}
}

// Preview truncates content to max characters, appending "..." when cut.
func Preview(content string, max int) string {
	content = strings.TrimSpace(content)
	if utf8.RuneCountInString(content) <= max {
		return content
	}
	runes := []rune(content)
	return strings.TrimSpace(string(runes[:max])) + "..."
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
