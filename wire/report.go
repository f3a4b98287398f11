package wire

import (
	"fmt"
	"time"
)

// Report is a VEN-produced measurement tied to an event. The owning client
// id is captured from the authenticated subject at creation time and is not
// part of the wire content.
type Report struct {
	ID                   Identifier `json:"id"`
	CreatedDateTime      time.Time  `json:"createdDateTime"`
	ModificationDateTime time.Time  `json:"modificationDateTime"`
	ReportRequest
}

// ReportRequest is the client-supplied content of a report.
type ReportRequest struct {
	ObjectType         string              `json:"objectType,omitempty"`
	ProgramID          Identifier          `json:"programID,omitempty"`
	EventID            Identifier          `json:"eventID"`
	ClientName         string              `json:"clientName"`
	ReportName         string              `json:"reportName,omitempty"`
	PayloadDescriptors []PayloadDescriptor `json:"payloadDescriptors,omitempty"`
	Resources          []ReportResource    `json:"resources"`
}

// ReportResource carries the measurements of one resource.
type ReportResource struct {
	ResourceName   string          `json:"resourceName"`
	IntervalPeriod *IntervalPeriod `json:"intervalPeriod,omitempty"`
	Intervals      []Interval      `json:"intervals"`
}

// Validate checks the request shape.
func (r ReportRequest) Validate() error {
	if r.ObjectType != "" && r.ObjectType != string(ObjectReport) {
		return fmt.Errorf("objectType must be %q, got %q", ObjectReport, r.ObjectType)
	}
	if err := ValidateIdentifier(string(r.EventID)); err != nil {
		return fmt.Errorf("eventID: %w", err)
	}
	if l := len(r.ClientName); l < 1 || l > 128 {
		return fmt.Errorf("clientName must be between 1 and 128 characters, got %d", l)
	}
	if len(r.ReportName) > 128 {
		return fmt.Errorf("reportName must be at most 128 characters, got %d", len(r.ReportName))
	}
	for _, res := range r.Resources {
		if l := len(res.ResourceName); l < 1 || l > 128 {
			return fmt.Errorf("resourceName must be between 1 and 128 characters, got %d", l)
		}
		for _, iv := range res.Intervals {
			if err := iv.Validate(); err != nil {
				return err
			}
		}
	}
	return nil
}
