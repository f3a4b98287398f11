package client

import (
	"net/url"

	"github.com/openleadr/openleadr-go/wire"
)

// Filter restricts list queries by target. It only matches what objects
// carry in their targets field; the VTN does not interpret the label
// against other fields such as programName.
type Filter struct {
	label  string
	values []string
}

// NoFilter matches everything.
var NoFilter = Filter{}

// FilterBy matches objects whose targets contain every "label:value" pair
// built from the given values.
func FilterBy(label string, values ...string) Filter {
	return Filter{label: label, values: values}
}

// FilterByGroup is shorthand for FilterBy(wire.TargetGroup, names...).
func FilterByGroup(names ...string) Filter {
	return FilterBy(wire.TargetGroup, names...)
}

func (f Filter) query(q url.Values) url.Values {
	if f.label == "" {
		return q
	}
	if q == nil {
		q = url.Values{}
	}
	q.Set("targetType", f.label)
	for _, v := range f.values {
		q.Add("targetValues", v)
	}
	return q
}
