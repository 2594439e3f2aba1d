package model

import (
	"strings"
	"time"
)

// Layouts accepted for a task deadline. The space-separated forms are what
// older clients send.
var deadlineLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDeadline parses s with the first matching layout and returns it in UTC.
func ParseDeadline(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var err error
	for _, layout := range deadlineLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, err
}
