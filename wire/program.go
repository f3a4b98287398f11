package wire

import (
	"fmt"
	"time"
)

// Program is a retailer-defined tariff or demand-response program.
type Program struct {
	ID                   Identifier `json:"id"`
	CreatedDateTime      time.Time  `json:"createdDateTime"`
	ModificationDateTime time.Time  `json:"modificationDateTime"`
	ProgramRequest
}

// ProgramRequest is the client-supplied content of a program.
type ProgramRequest struct {
	ObjectType          string               `json:"objectType,omitempty"`
	ProgramName         string               `json:"programName"`
	IntervalPeriod      *IntervalPeriod      `json:"intervalPeriod,omitempty"`
	ProgramDescriptions []ProgramDescription `json:"programDescriptions,omitempty"`
	PayloadDescriptors  []PayloadDescriptor  `json:"payloadDescriptors,omitempty"`
	Attributes          []ValuesMap          `json:"attributes,omitempty"`
	Targets             Targets              `json:"targets,omitempty"`
}

// ProgramDescription is a human-oriented pointer to program documentation.
type ProgramDescription struct {
	URL string `json:"URL"`
}

// Validate checks the request shape. programName doubles as an identifier in
// target filters, so it shares the 1..128 bound.
func (p ProgramRequest) Validate() error {
	if p.ObjectType != "" && p.ObjectType != string(ObjectProgram) {
		return fmt.Errorf("objectType must be %q, got %q", ObjectProgram, p.ObjectType)
	}
	if l := len(p.ProgramName); l < 1 || l > 128 {
		return fmt.Errorf("programName must be between 1 and 128 characters, got %d", l)
	}
	if err := p.Targets.Validate(); err != nil {
		return err
	}
	for _, a := range p.Attributes {
		if err := a.Type.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// PayloadDescriptor provides context for interpreting payload values, e.g.
// units and currency for a PRICE payload.
type PayloadDescriptor struct {
	ObjectType  string    `json:"objectType,omitempty"`
	PayloadType ValueType `json:"payloadType"`
	Units       string    `json:"units,omitempty"`
	Currency    string    `json:"currency,omitempty"`
	// Report descriptor fields; only meaningful when ObjectType is
	// REPORT_PAYLOAD_DESCRIPTOR.
	ReadingType string   `json:"readingType,omitempty"`
	Accuracy    *float64 `json:"accuracy,omitempty"`
	Confidence  *int     `json:"confidence,omitempty"`
}
