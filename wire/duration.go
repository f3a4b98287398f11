package wire

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Duration is an ISO 8601 duration of the form P[nY][nM][nD][T[nH][nM][nS]].
//
// Years and months have no fixed length, so converting a Duration to an
// absolute amount of time is only defined relative to a start instant; see
// AddTo. The seconds component may be fractional. A duration of "P9999Y" is
// used by the OpenADR spec as an "infinite" sentinel.
type Duration struct {
	Years   int
	Months  int
	Days    int
	Hours   int
	Minutes int
	Seconds float64
}

var durationPattern = regexp.MustCompile(
	`^P(?:(\d+)Y)?(?:(\d+)M)?(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+(?:[.,]\d+)?)S)?)?$`)

// ParseDuration parses an ISO 8601 duration string.
func ParseDuration(s string) (Duration, error) {
	m := durationPattern.FindStringSubmatch(s)
	if m == nil || s == "P" || strings.HasSuffix(s, "T") {
		return Duration{}, fmt.Errorf("invalid ISO 8601 duration %q", s)
	}

	var d Duration
	var err error
	intAt := func(idx int) int {
		if err != nil || m[idx] == "" {
			return 0
		}
		var n int
		n, err = strconv.Atoi(m[idx])
		return n
	}
	d.Years = intAt(1)
	d.Months = intAt(2)
	d.Days = intAt(3)
	d.Hours = intAt(4)
	d.Minutes = intAt(5)
	if err == nil && m[6] != "" {
		d.Seconds, err = strconv.ParseFloat(strings.ReplaceAll(m[6], ",", "."), 64)
	}
	if err != nil {
		return Duration{}, fmt.Errorf("invalid ISO 8601 duration %q: %w", s, err)
	}
	return d, nil
}

// Hours constructs a duration of n whole hours.
func Hours(n int) Duration { return Duration{Hours: n} }

// Minutes constructs a duration of n whole minutes.
func Minutes(n int) Duration { return Duration{Minutes: n} }

// String renders the duration in the canonical long form, e.g.
// "P0Y0M0DT1H0M0S". This mirrors how the reference VTN serializes durations.
func (d Duration) String() string {
	secs := strconv.FormatFloat(d.Seconds, 'f', -1, 64)
	return fmt.Sprintf("P%dY%dM%dDT%dH%dM%sS", d.Years, d.Months, d.Days, d.Hours, d.Minutes, secs)
}

// IsZero reports whether every component is zero.
func (d Duration) IsZero() bool {
	return d == Duration{}
}

// AddTo returns start advanced by the duration. Years and months move the
// calendar date; the rest is a fixed offset.
func (d Duration) AddTo(start time.Time) time.Time {
	t := start
	if d.Years != 0 || d.Months != 0 || d.Days != 0 {
		t = t.AddDate(d.Years, d.Months, d.Days)
	}
	return t.Add(d.fixedPart())
}

// ToTimeDurationAt flattens the duration into a time.Duration relative to
// start, accounting for the calendar length of the year/month components.
func (d Duration) ToTimeDurationAt(start time.Time) time.Duration {
	return d.AddTo(start).Sub(start)
}

func (d Duration) fixedPart() time.Duration {
	return time.Duration(d.Hours)*time.Hour +
		time.Duration(d.Minutes)*time.Minute +
		time.Duration(d.Seconds*float64(time.Second))
}

// MarshalJSON encodes the duration as an ISO 8601 string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes an ISO 8601 duration string.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDuration(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
