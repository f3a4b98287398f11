package wire

import (
	"encoding/json"
	"fmt"
)

// Notification is the message broadcast to subscribers when an object is
// created, updated, or deleted. The object is carried inline, tagged by its
// objectType.
type Notification struct {
	ID         Identifier `json:"id,omitempty"`
	Operation  Operation  `json:"operation"`
	ObjectType ObjectType `json:"objectType"`
	Object     any        `json:"object"`
}

// NewNotification wraps an entity in a notification. The objectType is
// derived from the entity's Go type.
func NewNotification(op Operation, object any) (Notification, error) {
	var (
		typ ObjectType
		id  Identifier
	)
	switch o := object.(type) {
	case Program:
		typ, id = ObjectProgram, o.ID
	case Event:
		typ, id = ObjectEvent, o.ID
	case Report:
		typ, id = ObjectReport, o.ID
	case Ven:
		typ, id = ObjectVen, o.ID
	case Resource:
		typ, id = ObjectResource, o.ID
	case Subscription:
		typ, id = ObjectSubscription, o.ID
	default:
		return Notification{}, fmt.Errorf("object %T is not notifiable", object)
	}
	return Notification{ID: id, Operation: op, ObjectType: typ, Object: object}, nil
}

// DecodeObject re-types the Object field after a round-trip through JSON,
// using the objectType tag. Useful on the receiving side where Object
// arrives as a raw map.
func (n *Notification) DecodeObject() (any, error) {
	raw, err := json.Marshal(n.Object)
	if err != nil {
		return nil, err
	}
	switch n.ObjectType {
	case ObjectProgram:
		var v Program
		err = json.Unmarshal(raw, &v)
		return v, err
	case ObjectEvent:
		var v Event
		err = json.Unmarshal(raw, &v)
		return v, err
	case ObjectReport:
		var v Report
		err = json.Unmarshal(raw, &v)
		return v, err
	case ObjectVen:
		var v Ven
		err = json.Unmarshal(raw, &v)
		return v, err
	case ObjectResource:
		var v Resource
		err = json.Unmarshal(raw, &v)
		return v, err
	case ObjectSubscription:
		var v Subscription
		err = json.Unmarshal(raw, &v)
		return v, err
	}
	return nil, fmt.Errorf("unknown object type %q", n.ObjectType)
}
