package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyPricingStrategy(t *testing.T) {
	s := NewDailyPricingStrategy()
	start := time.Date(2026, 11, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		end  time.Time
		want float64
	}{
		{"same instant bills one day", start, 49.99},
		{"exactly three days", start.Add(72 * time.Hour), 149.97},
		{"partial day rounds up", start.Add(73 * time.Hour), 199.96},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Calculate(PricingParams{PricePerDay: 49.99, StartDate: start, EndDate: tt.end})
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 0.001)
		})
	}

	_, err := s.Calculate(PricingParams{PricePerDay: 10, StartDate: start, EndDate: start.Add(-time.Hour)})
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	for _, v := range []string{
		"2026-10-18T12:00:00Z",
		"2026-10-18T12:00:00.000Z",
		"2026-10-18T14:00:00+02:00",
		"2026-10-18T12:00:00",
	} {
		got, err := ParseDate("endDate", v)
		require.NoError(t, err, v)
		assert.Equal(t, now, got, v)
	}

	got, err := ParseDate("endDate", "2026-10-18")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseDate("endDate", "next tuesday")
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "endDate", parseErr.Field)
}
