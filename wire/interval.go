package wire

import (
	"fmt"
	"time"
)

// Interval is a temporal window with a list of payload values. If an
// intervalPeriod is present it overrides the event-level one.
type Interval struct {
	// Client generated number assigned to the interval. Not a sequence number.
	ID             int32           `json:"id"`
	IntervalPeriod *IntervalPeriod `json:"intervalPeriod,omitempty"`
	Payloads       []ValuesMap     `json:"payloads"`
}

// Validate requires at least one payload per interval, each with a valid
// type and values matching that type.
func (i Interval) Validate() error {
	if len(i.Payloads) == 0 {
		return fmt.Errorf("interval %d must have at least one payload", i.ID)
	}
	for _, p := range i.Payloads {
		if err := p.Type.Validate(); err != nil {
			return err
		}
		if err := validatePayloadValues(p); err != nil {
			return fmt.Errorf("interval %d: %w", i.ID, err)
		}
	}
	return nil
}

// validatePayloadValues enforces the value shapes for the well-known payload
// types. Private types accept any value.
func validatePayloadValues(p ValuesMap) error {
	switch p.Type {
	case ValueTypePrice, ValueTypeExportPrice, ValueTypeGHG:
		for _, v := range p.Values {
			if !v.IsNumeric() {
				return fmt.Errorf("payload type %s requires numeric values", p.Type)
			}
		}
	case ValueTypeSimple:
		for _, v := range p.Values {
			if _, ok := v.AsInt(); !ok {
				return fmt.Errorf("payload type %s requires integer values", p.Type)
			}
		}
	case ValueTypeCurve:
		for _, v := range p.Values {
			if _, ok := v.AsPoint(); !ok {
				return fmt.Errorf("payload type %s requires point values", p.Type)
			}
		}
	}
	return nil
}

// IntervalPeriod defines the start and durations of one or more intervals.
//
// A start of "0001-01-01T00:00:00Z" may indicate 'now'. A duration of
// "P9999Y" may indicate infinity. randomizeStart is the absolute range of a
// client-applied offset to start.
type IntervalPeriod struct {
	Start          time.Time `json:"start"`
	Duration       *Duration `json:"duration,omitempty"`
	RandomizeStart *Duration `json:"randomizeStart,omitempty"`
}
