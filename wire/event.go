package wire

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event is a time-bounded action within a program.
type Event struct {
	ID                   Identifier `json:"id"`
	CreatedDateTime      time.Time  `json:"createdDateTime"`
	ModificationDateTime time.Time  `json:"modificationDateTime"`
	EventRequest
}

// EventRequest is the client-supplied content of an event.
type EventRequest struct {
	ObjectType         string              `json:"objectType,omitempty"`
	ProgramID          Identifier          `json:"programID"`
	EventName          string              `json:"eventName,omitempty"`
	Priority           Priority            `json:"priority"`
	Targets            Targets             `json:"targets,omitempty"`
	ReportDescriptors  []ReportDescriptor  `json:"reportDescriptors,omitempty"`
	PayloadDescriptors []PayloadDescriptor `json:"payloadDescriptors,omitempty"`
	IntervalPeriod     *IntervalPeriod     `json:"intervalPeriod,omitempty"`
	Intervals          []Interval          `json:"intervals"`
}

// Validate checks the request shape: a valid program reference, at least one
// interval, and well-formed payloads and targets.
func (e EventRequest) Validate() error {
	if e.ObjectType != "" && e.ObjectType != string(ObjectEvent) {
		return fmt.Errorf("objectType must be %q, got %q", ObjectEvent, e.ObjectType)
	}
	if err := ValidateIdentifier(string(e.ProgramID)); err != nil {
		return fmt.Errorf("programID: %w", err)
	}
	if e.EventName != "" && len(e.EventName) > 128 {
		return fmt.Errorf("eventName must be at most 128 characters, got %d", len(e.EventName))
	}
	if len(e.Intervals) == 0 {
		return fmt.Errorf("event must have at least one interval")
	}
	for _, iv := range e.Intervals {
		if err := iv.Validate(); err != nil {
			return err
		}
	}
	return e.Targets.Validate()
}

// ReportDescriptor tells VENs what measurements an event expects back.
type ReportDescriptor struct {
	PayloadType      ValueType `json:"payloadType"`
	ReadingType      string    `json:"readingType,omitempty"`
	Units            string    `json:"units,omitempty"`
	Targets          Targets   `json:"targets,omitempty"`
	Aggregate        bool      `json:"aggregate,omitempty"`
	StartInterval    int32     `json:"startInterval,omitempty"`
	NumIntervals     int32     `json:"numIntervals,omitempty"`
	HistoryStartInterval int32 `json:"historyStartInterval,omitempty"`
	Frequency        int32     `json:"frequency,omitempty"`
	Repeat           int32     `json:"repeat,omitempty"`
}

// Priority is the relative priority of an event. 0 is the highest priority;
// an unspecified priority sorts below every numeric value. Serialized as a
// bare number, or null when unspecified.
type Priority struct {
	value *uint32
}

// UnspecifiedPriority is the lowest possible priority.
var UnspecifiedPriority = Priority{}

// MaxPriority is the highest possible priority (numeric 0).
var MaxPriority = NewPriority(0)

// NewPriority returns a priority with the given numeric value.
func NewPriority(v uint32) Priority {
	return Priority{value: &v}
}

// Specified reports whether a numeric priority was set.
func (p Priority) Specified() bool { return p.value != nil }

// Value returns the numeric priority value; ok is false when unspecified.
func (p Priority) Value() (v uint32, ok bool) {
	if p.value == nil {
		return 0, false
	}
	return *p.value, true
}

// Compare orders priorities: the result is < 0 when p is lower priority
// than other, 0 when equal, and > 0 when p is higher priority. Unspecified
// is the strict minimum, and a lower numeric value means a higher priority.
func (p Priority) Compare(other Priority) int {
	switch {
	case p.value == nil && other.value == nil:
		return 0
	case p.value == nil:
		return -1
	case other.value == nil:
		return 1
	case *p.value == *other.value:
		return 0
	case *p.value < *other.value:
		return 1
	default:
		return -1
	}
}

func (p Priority) String() string {
	if p.value == nil {
		return "unspecified"
	}
	return fmt.Sprintf("%d", *p.value)
}

func (p Priority) MarshalJSON() ([]byte, error) {
	if p.value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*p.value)
}

func (p *Priority) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = UnspecifiedPriority
		return nil
	}
	var v int64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("priority must be an integer or null: %w", err)
	}
	if v < 0 {
		return fmt.Errorf("priority must not be negative, got %d", v)
	}
	u := uint32(v)
	p.value = &u
	return nil
}
