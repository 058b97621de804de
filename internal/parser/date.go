package parser

import (
	"strings"
	"time"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.RFC1123,
	time.RFC1123Z,
	time.RFC822,
	time.RFC822Z,
	"2006-01-02T15:04:05.000Z0700",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	"Mon 2 Jan 2006 15.04 MST",
	"Mon, 02 Jan 2006",
	"02-Jan-2006",
	"2006/01/02",
	"Mon Jan 2 15:04:05 2006",
}

// ParseDate tries the known publication date layouts. It returns nil when
// none of them fit.
func ParseDate(raw string) *time.Time {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "Published ")
	s = strings.TrimPrefix(s, "Updated ")
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
