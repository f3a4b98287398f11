package wire

import (
	"fmt"
	"time"
)

// ObjectType names a subscribable OpenADR object class.
type ObjectType string

// Subscribable object types.
const (
	ObjectProgram      ObjectType = "PROGRAM"
	ObjectEvent        ObjectType = "EVENT"
	ObjectReport       ObjectType = "REPORT"
	ObjectSubscription ObjectType = "SUBSCRIPTION"
	ObjectVen          ObjectType = "VEN"
	ObjectResource     ObjectType = "RESOURCE"
)

func (o ObjectType) Validate() error {
	switch o {
	case ObjectProgram, ObjectEvent, ObjectReport, ObjectSubscription, ObjectVen, ObjectResource:
		return nil
	}
	return fmt.Errorf("unknown object type %q", string(o))
}

// Operation names a CRUD operation a subscription can listen for.
type Operation string

// Subscribable operations.
const (
	OperationPost   Operation = "POST"
	OperationPut    Operation = "PUT"
	OperationDelete Operation = "DELETE"
)

func (o Operation) Validate() error {
	switch o {
	case OperationPost, OperationPut, OperationDelete:
		return nil
	}
	return fmt.Errorf("unknown operation %q", string(o))
}

// NotificationMechanism selects how notifications are delivered.
type NotificationMechanism string

// Supported mechanisms. Websocket is the only one the VTN delivers on;
// webhook subscriptions are accepted but delivery is out of scope.
const (
	MechanismWebhook   NotificationMechanism = "WEBHOOK"
	MechanismWebsocket NotificationMechanism = "WEBSOCKET"
)

// Subscription is a request to be notified of object operations.
type Subscription struct {
	ID                   Identifier `json:"id"`
	CreatedDateTime      time.Time  `json:"createdDateTime"`
	ModificationDateTime time.Time  `json:"modificationDateTime"`
	SubscriptionRequest
}

// SubscriptionRequest is the client-supplied content of a subscription. The
// owning client id is captured from the authenticated subject.
type SubscriptionRequest struct {
	ObjectType       string                  `json:"objectType,omitempty"`
	ClientName       string                  `json:"clientName"`
	ProgramID        Identifier              `json:"programID,omitempty"`
	ObjectOperations []SubscriptionOperation `json:"objectOperations"`
}

// SubscriptionOperation is one (objects, operations) pair with its delivery
// mechanism.
type SubscriptionOperation struct {
	Objects     []ObjectType          `json:"objects"`
	Operations  []Operation           `json:"operations"`
	Mechanism   NotificationMechanism `json:"mechanism"`
	CallbackURL string                `json:"callbackUrl,omitempty"`
	BearerToken string                `json:"bearerToken,omitempty"`
}

// Validate checks the request shape.
func (s SubscriptionRequest) Validate() error {
	if s.ObjectType != "" && s.ObjectType != string(ObjectSubscription) {
		return fmt.Errorf("objectType must be %q, got %q", ObjectSubscription, s.ObjectType)
	}
	if l := len(s.ClientName); l < 1 || l > 128 {
		return fmt.Errorf("clientName must be between 1 and 128 characters, got %d", l)
	}
	if s.ProgramID != "" {
		if err := ValidateIdentifier(string(s.ProgramID)); err != nil {
			return fmt.Errorf("programID: %w", err)
		}
	}
	for _, op := range s.ObjectOperations {
		for _, obj := range op.Objects {
			if err := obj.Validate(); err != nil {
				return err
			}
		}
		for _, o := range op.Operations {
			if err := o.Validate(); err != nil {
				return err
			}
		}
		switch op.Mechanism {
		case MechanismWebhook, MechanismWebsocket:
		default:
			return fmt.Errorf("unknown notification mechanism %q", string(op.Mechanism))
		}
	}
	return nil
}

// WantsNotification reports whether the subscription asks for the given
// object/operation pair, optionally scoped to a program.
func (s Subscription) WantsNotification(obj ObjectType, op Operation, programID Identifier) bool {
	if s.ProgramID != "" && programID != "" && s.ProgramID != programID {
		return false
	}
	for _, oo := range s.ObjectOperations {
		objMatch := false
		for _, o := range oo.Objects {
			if o == obj {
				objMatch = true
				break
			}
		}
		if !objMatch {
			continue
		}
		for _, o := range oo.Operations {
			if o == op {
				return true
			}
		}
	}
	return false
}
