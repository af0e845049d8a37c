package daterange

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ist = time.FixedZone("IST", 5*60*60+30*60)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, ist)
}

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestSelectorTwoClickProtocol(t *testing.T) {
	s := NewSelector(fixedNow(time.Date(2030, 3, 1, 15, 0, 0, 0, ist)), ist)

	r, changed := s.Click(day(2030, 3, 10))
	require.True(t, changed)
	assert.Equal(t, Range{Start: day(2030, 3, 10)}, r)
	assert.Zero(t, r.Nights())

	// earlier day restarts the selection
	r, _ = s.Click(day(2030, 3, 8))
	assert.Equal(t, Range{Start: day(2030, 3, 8)}, r)

	// same day restarts too
	r, _ = s.Click(day(2030, 3, 8))
	assert.Equal(t, Range{Start: day(2030, 3, 8)}, r)

	r, _ = s.Click(day(2030, 3, 11))
	assert.Equal(t, Range{Start: day(2030, 3, 8), End: day(2030, 3, 11)}, r)
	assert.True(t, r.Complete())
	assert.Equal(t, 3, r.Nights())

	// a third click after a complete range starts over
	r, _ = s.Click(day(2030, 3, 20))
	assert.Equal(t, Range{Start: day(2030, 3, 20)}, r)
}

func TestSelectorRejectsPastDays(t *testing.T) {
	s := NewSelector(fixedNow(time.Date(2030, 3, 5, 9, 0, 0, 0, ist)), ist)
	s.Click(day(2030, 3, 6))

	r, changed := s.Click(day(2030, 3, 4))
	assert.False(t, changed)
	assert.Equal(t, Range{Start: day(2030, 3, 6)}, r)
	assert.Equal(t, r, s.State())

	// today itself is selectable whatever the time of day
	_, changed = s.Click(time.Date(2030, 3, 5, 23, 0, 0, 0, ist))
	assert.True(t, changed)
	assert.Equal(t, day(2030, 3, 5), s.State().Start)
}

func TestSelectorEvaluatesTodayPerClick(t *testing.T) {
	now := time.Date(2030, 3, 5, 9, 0, 0, 0, ist)
	s := NewSelector(func() time.Time { return now }, ist)

	_, changed := s.Click(day(2030, 3, 5))
	assert.True(t, changed)

	now = now.Add(24 * time.Hour)
	_, changed = s.Click(day(2030, 3, 5))
	assert.False(t, changed)
}

func TestSelectorEmitsFullPair(t *testing.T) {
	s := NewSelector(fixedNow(day(2030, 1, 1)), ist)
	var got []Range
	s.Subscribe(func(r Range) { got = append(got, r) })

	s.Click(day(2030, 1, 2))
	s.Click(day(2029, 12, 31))
	s.Click(day(2030, 1, 4))

	require.Len(t, got, 2)
	assert.Equal(t, Range{Start: day(2030, 1, 2)}, got[0])
	assert.Equal(t, Range{Start: day(2030, 1, 2), End: day(2030, 1, 4)}, got[1])
}

func TestSelectorConcurrentClicksCompleteOnce(t *testing.T) {
	s := NewSelector(fixedNow(day(2030, 1, 1)), ist)
	s.Click(day(2030, 1, 10))

	var (
		mu        sync.Mutex
		completed int
	)
	s.Subscribe(func(r Range) {
		_ = s.State()
		if r.Start.Equal(day(2030, 1, 10)) && !r.End.IsZero() {
			mu.Lock()
			completed++
			mu.Unlock()
		}
	})

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 11; i <= 30; i++ {
		wg.Add(1)
		go func(d int) {
			defer wg.Done()
			<-start
			s.Click(day(2030, 1, d))
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, completed, "only one click may finish the open range")
}

func TestSelectorRestore(t *testing.T) {
	s := NewSelector(fixedNow(day(2030, 1, 1)), ist)
	s.Restore(Range{Start: time.Date(2030, 1, 2, 13, 0, 0, 0, ist), End: day(2030, 1, 5)})
	assert.Equal(t, Range{Start: day(2030, 1, 2), End: day(2030, 1, 5)}, s.State())
}

func TestNights(t *testing.T) {
	assert.Equal(t, 1, Nights(day(2030, 1, 1), day(2030, 1, 2)))
	assert.Equal(t, 0, Nights(day(2030, 1, 2), day(2030, 1, 2)))
	assert.Equal(t, 0, Nights(day(2030, 1, 3), day(2030, 1, 2)))
	assert.Equal(t, 31, Nights(day(2030, 1, 1), day(2030, 2, 1)))

	ny, err := time.LoadLocation("America/New_York")
	if err == nil {
		// spans the spring-forward change, a 23 hour day
		start := time.Date(2030, 3, 9, 0, 0, 0, 0, ny)
		end := time.Date(2030, 3, 11, 0, 0, 0, 0, ny)
		assert.Equal(t, 2, Nights(start, end))
	}

	assert.Zero(t, Range{Start: day(2030, 1, 1)}.Nights())
	assert.Zero(t, Range{}.Nights())
}

func TestValidate(t *testing.T) {
	today := time.Date(2030, 5, 10, 18, 0, 0, 0, ist)

	assert.NoError(t, Validate(Range{Start: day(2030, 5, 10), End: day(2030, 5, 12)}, today))
	assert.ErrorIs(t, Validate(Range{Start: day(2030, 5, 9), End: day(2030, 5, 12)}, today), ErrPastDate)
	assert.ErrorIs(t, Validate(Range{Start: day(2030, 5, 12), End: day(2030, 5, 12)}, today), ErrEmptyRange)
	assert.ErrorIs(t, Validate(Range{Start: day(2030, 5, 12)}, today), ErrEmptyRange)
}

func TestParseDay(t *testing.T) {
	d, err := ParseDay("2030-07-15", ist)
	require.NoError(t, err)
	assert.Equal(t, day(2030, 7, 15), d)

	_, err = ParseDay("15/07/2030", ist)
	assert.Error(t, err)
}
