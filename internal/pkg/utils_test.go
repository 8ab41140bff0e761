package pkg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCalendarDay(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*60*60)
	// 2024-03-02 01:00 at UTC+9 is still March 1st in UTC
	local := time.Date(2024, 3, 2, 1, 0, 0, 0, loc)

	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), CalendarDay(local))
	assert.True(t, SameDay(local, time.Date(2024, 3, 1, 23, 59, 0, 0, time.UTC)))
	assert.False(t, SameDay(local, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)))
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "hello <b>world</b>", Sanitize("  hello <b>world</b><script>alert(1)</script> "))
	assert.Equal(t, "", Sanitize("<script>x</script>"))
}

func TestPaginate(t *testing.T) {
	limit, offset := Paginate(3, 10, 50)
	assert.Equal(t, 10, limit)
	assert.Equal(t, 20, offset)

	limit, offset = Paginate(0, 500, 50)
	assert.Equal(t, 50, limit)
	assert.Equal(t, 0, offset)
}
