package wire

import (
	"fmt"
	"time"
)

// Request body discriminators for the two write variants of VENs and
// resources. Business-logic clients submit the BL_* shape including clientID
// and targets; VEN clients submit the VEN_* shape, and the server fills the
// clientID from the token.
const (
	ObjectTypeBlVenRequest       = "BL_VEN_REQUEST"
	ObjectTypeVenVenRequest      = "VEN_VEN_REQUEST"
	ObjectTypeBlResourceRequest  = "BL_RESOURCE_REQUEST"
	ObjectTypeVenResourceRequest = "VEN_RESOURCE_REQUEST"
)

// Ven represents an enrolled VEN client.
type Ven struct {
	ID                   Identifier `json:"id"`
	CreatedDateTime      time.Time  `json:"createdDateTime"`
	ModificationDateTime time.Time  `json:"modificationDateTime"`
	ClientID             Identifier `json:"clientID"`
	VenName              string     `json:"venName"`
	Attributes           []ValuesMap `json:"attributes,omitempty"`
	Targets              Targets    `json:"targets,omitempty"`
}

// VenRequest is the tagged write body for VENs. Which fields are allowed
// depends on the objectType variant.
type VenRequest struct {
	ObjectType string      `json:"objectType"`
	ClientID   Identifier  `json:"clientID,omitempty"`
	VenName    string      `json:"venName"`
	Attributes []ValuesMap `json:"attributes,omitempty"`
	Targets    Targets     `json:"targets,omitempty"`
}

// IsBL reports whether this is the business-logic variant.
func (v VenRequest) IsBL() bool { return v.ObjectType == ObjectTypeBlVenRequest }

// Validate checks the discriminator and the variant-specific field rules.
func (v VenRequest) Validate() error {
	switch v.ObjectType {
	case ObjectTypeBlVenRequest:
		if err := ValidateIdentifier(string(v.ClientID)); err != nil {
			return fmt.Errorf("clientID: %w", err)
		}
	case ObjectTypeVenVenRequest:
		if v.ClientID != "" {
			return fmt.Errorf("%s must not carry a clientID", ObjectTypeVenVenRequest)
		}
		if len(v.Targets) != 0 {
			return fmt.Errorf("%s must not carry targets", ObjectTypeVenVenRequest)
		}
	default:
		return fmt.Errorf("objectType must be %s or %s, got %q",
			ObjectTypeBlVenRequest, ObjectTypeVenVenRequest, v.ObjectType)
	}
	if l := len(v.VenName); l < 1 || l > 128 {
		return fmt.Errorf("venName must be between 1 and 128 characters, got %d", l)
	}
	return v.Targets.Validate()
}
