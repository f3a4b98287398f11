package client

import (
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/openleadr/openleadr-go/wire"
)

// MaxTimelineTime is the open end of an interval without a duration.
var MaxTimelineTime = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)

// TimeRange is a half-open [Start, End) window.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the range.
func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

func (r TimeRange) overlaps(other TimeRange) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}

// internalInterval is one stored fragment. The source id ties fragments of
// the same logical interval together so a split interval does not randomize
// its start twice.
type internalInterval struct {
	sourceID       int
	priority       wire.Priority
	randomizeStart *time.Duration
	payloads       []wire.ValuesMap
}

type segment struct {
	rng      TimeRange
	interval internalInterval
}

// Timeline is an ordered sequence of non-overlapping intervals with their
// active payload values. There may be gaps between intervals.
type Timeline struct {
	segments []segment
}

// Interval is one fragment yielded by the timeline.
type Interval struct {
	// Range the values are active for.
	Range TimeRange
	// RandomizeStart the client may apply to the start. Only the first
	// fragment of a split logical interval carries it.
	RandomizeStart *time.Duration
	// Payloads active during this interval.
	Payloads []wire.ValuesMap
	// Priority of the event the fragment came from.
	Priority wire.Priority
}

// NewTimeline builds the priority-resolved timeline of a program from its
// events.
//
// Events are sorted by ascending priority so that the highest priority is
// written last: writing overwrites, so a long low-priority interval is
// split around a short high-priority one. Events that do not belong to the
// program are skipped with a warning. Two overlapping events of equal
// priority also log a warning; the one written last wins, which the sort
// keeps deterministic.
//
// Every interval must have a period, either its own or the event-level
// default. If neither is resolvable, ok is false.
func NewTimeline(program wire.Program, events []wire.EventRequest) (timeline *Timeline, ok bool) {
	t := &Timeline{}

	sorted := make([]wire.EventRequest, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority.Compare(sorted[j].Priority) < 0
	})

	for sourceID, event := range sorted {
		if event.ProgramID != program.ID {
			log.Warn().
				Str("event_program_id", string(event.ProgramID)).
				Str("program_id", string(program.ID)).
				Msg("skipping event that does not belong into the program")
			continue
		}

		defaultPeriod := event.IntervalPeriod
		var currentStart *time.Time
		if defaultPeriod != nil {
			start := defaultPeriod.Start
			currentStart = &start
		}

		for _, eventInterval := range event.Intervals {
			var (
				start          time.Time
				duration       *wire.Duration
				randomizeStart *wire.Duration
			)
			switch {
			case eventInterval.IntervalPeriod != nil:
				start = eventInterval.IntervalPeriod.Start
				duration = eventInterval.IntervalPeriod.Duration
				randomizeStart = eventInterval.IntervalPeriod.RandomizeStart
			case currentStart != nil && defaultPeriod != nil:
				start = *currentStart
				duration = defaultPeriod.Duration
				randomizeStart = defaultPeriod.RandomizeStart
			default:
				return nil, false
			}

			end := MaxTimelineTime
			if duration != nil {
				end = duration.AddTo(start)
			}
			rng := TimeRange{Start: start, End: end}

			next := rng.End
			currentStart = &next

			interval := internalInterval{
				sourceID: sourceID,
				priority: event.Priority,
				payloads: eventInterval.Payloads,
			}
			if randomizeStart != nil {
				d := randomizeStart.ToTimeDurationAt(start)
				interval.randomizeStart = &d
			}

			for _, existing := range t.segments {
				if existing.rng.overlaps(rng) && existing.interval.priority.Compare(event.Priority) == 0 {
					log.Warn().
						Time("existing_start", existing.rng.Start).
						Time("new_start", rng.Start).
						Str("priority", event.Priority.String()).
						Msg("overlapping ranges with equal priority")
				}
			}

			t.insert(segment{rng: rng, interval: interval})
		}
	}

	return t, true
}

// insert writes a segment, splitting and truncating whatever it overlaps.
// Callers rely on insertion order for priority resolution.
func (t *Timeline) insert(new segment) {
	if !new.rng.Start.Before(new.rng.End) {
		return
	}
	out := make([]segment, 0, len(t.segments)+2)
	for _, existing := range t.segments {
		if !existing.rng.overlaps(new.rng) {
			out = append(out, existing)
			continue
		}
		if existing.rng.Start.Before(new.rng.Start) {
			out = append(out, segment{
				rng:      TimeRange{Start: existing.rng.Start, End: new.rng.Start},
				interval: existing.interval,
			})
		}
		if existing.rng.End.After(new.rng.End) {
			out = append(out, segment{
				rng:      TimeRange{Start: new.rng.End, End: existing.rng.End},
				interval: existing.interval,
			})
		}
	}
	out = append(out, new)
	sort.Slice(out, func(i, j int) bool { return out[i].rng.Start.Before(out[j].rng.Start) })
	t.segments = out
}

// Intervals yields the fragments in ascending start order. A randomize
// start survives only on the first fragment of its logical interval; later
// fragments of the same interval drop it.
func (t *Timeline) Intervals() []Interval {
	seen := make(map[int]struct{}, len(t.segments))
	out := make([]Interval, 0, len(t.segments))
	for _, seg := range t.segments {
		interval := Interval{
			Range:    seg.rng,
			Payloads: seg.interval.payloads,
			Priority: seg.interval.priority,
		}
		if _, dup := seen[seg.interval.sourceID]; !dup {
			seen[seg.interval.sourceID] = struct{}{}
			interval.RandomizeStart = seg.interval.randomizeStart
		}
		out = append(out, interval)
	}
	return out
}

// AtTime returns the interval active at the given instant.
func (t *Timeline) AtTime(at time.Time) (Interval, bool) {
	for _, interval := range t.Intervals() {
		if interval.Range.Contains(at) {
			return interval, true
		}
	}
	return Interval{}, false
}

// NextUpdate returns when the timeline next changes after the given
// instant: the end of the active interval, or the start of the next one.
func (t *Timeline) NextUpdate(at time.Time) (time.Time, bool) {
	for _, seg := range t.segments {
		if seg.rng.Contains(at) {
			return seg.rng.End, true
		}
	}
	for _, seg := range t.segments {
		if seg.rng.Start.After(at) {
			return seg.rng.Start, true
		}
	}
	return time.Time{}, false
}
