package wire

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	cases := []struct {
		in   string
		want Duration
	}{
		{"PT1H", Duration{Hours: 1}},
		{"P9999Y", Duration{Years: 9999}},
		{"P0Y1M2DT3H4M5S", Duration{Months: 1, Days: 2, Hours: 3, Minutes: 4, Seconds: 5}},
		{"PT3M", Duration{Minutes: 3}},
		{"PT0.5S", Duration{Seconds: 0.5}},
		{"P1D", Duration{Days: 1}},
	}
	for _, c := range cases {
		got, err := ParseDuration(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, got, c.in)
	}
}

func TestParseDurationInvalid(t *testing.T) {
	for _, in := range []string{"", "P", "PT", "1H", "P1H", "PT1D", "P-1D", "hello"} {
		_, err := ParseDuration(in)
		assert.Error(t, err, in)
	}
}

func TestDurationString(t *testing.T) {
	d, err := ParseDuration("P9999Y")
	require.NoError(t, err)
	assert.Equal(t, "P9999Y0M0DT0H0M0S", d.String())

	d, err = ParseDuration("P0Y1M2DT3H4M5S")
	require.NoError(t, err)
	assert.Equal(t, "P0Y1M2DT3H4M5S", d.String())
}

func TestDurationJSONRoundTrip(t *testing.T) {
	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`"PT1H"`), &d))
	assert.Equal(t, Duration{Hours: 1}, d)

	raw, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"P0Y0M0DT1H0M0S"`, string(raw))
}

func TestDurationAddToCalendarAware(t *testing.T) {
	start := time.Date(2023, time.January, 31, 12, 0, 0, 0, time.UTC)

	oneMonth := Duration{Months: 1}
	assert.Equal(t, start.AddDate(0, 1, 0), oneMonth.AddTo(start))

	mixed := Duration{Days: 1, Hours: 2, Minutes: 30}
	assert.Equal(t,
		start.AddDate(0, 0, 1).Add(2*time.Hour+30*time.Minute),
		mixed.AddTo(start))
}

func TestDurationToTimeDurationAt(t *testing.T) {
	start := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	feb := Duration{Months: 1}
	// 2024 is a leap year, February has 29 days.
	assert.Equal(t, 29*24*time.Hour, feb.ToTimeDurationAt(start))
}
