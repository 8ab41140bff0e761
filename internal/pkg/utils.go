package pkg

import (
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

var sanitizer = bluemonday.UGCPolicy()

// CalendarDay truncates t to midnight UTC. Every daily key in the engine uses it.
func CalendarDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func SameDay(a, b time.Time) bool {
	return CalendarDay(a).Equal(CalendarDay(b))
}

// Sanitize strips unsafe markup from user content and trims surrounding space.
func Sanitize(input string) string {
	return strings.TrimSpace(sanitizer.Sanitize(input))
}

func Paginate(page, limit, maxLimit int) (int, int) {
	if limit <= 0 || limit > maxLimit {
		limit = maxLimit
	}
	if page < 1 {
		page = 1
	}
	return limit, (page - 1) * limit
}
