package wire

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Predefined target labels. Any other dot-free string of 1 to 128 characters
// is a valid private label.
const (
	TargetGroup                = "GROUP"
	TargetResourceName         = "RESOURCE_NAME"
	TargetVenName              = "VEN_NAME"
	TargetEventName            = "EVENT_NAME"
	TargetProgramName          = "PROGRAM_NAME"
	TargetPowerServiceLocation = "POWER_SERVICE_LOCATION"
	TargetServiceArea          = "SERVICE_AREA"
)

// Target is a "label:value" pair used to group objects and to compute the
// per-VEN privacy envelope. The label must not contain a dot and everything
// after the first colon is the value.
type Target string

// NewTarget builds a target from a label and value.
func NewTarget(label, value string) Target {
	return Target(label + ":" + value)
}

// Label returns the part before the first colon.
func (t Target) Label() string {
	label, _, _ := strings.Cut(string(t), ":")
	return label
}

// Value returns the part after the first colon, or "" if there is none.
func (t Target) Value() string {
	_, value, _ := strings.Cut(string(t), ":")
	return value
}

// Validate checks the label/value shape and length bounds.
func (t Target) Validate() error {
	label, _, found := strings.Cut(string(t), ":")
	if !found {
		return fmt.Errorf("target %q must be of the form label:value", string(t))
	}
	if len(label) < 1 || len(label) > 128 {
		return fmt.Errorf("target label must be between 1 and 128 characters, got %d", len(label))
	}
	if strings.Contains(label, ".") {
		return fmt.Errorf("target label %q must not contain a dot", label)
	}
	return nil
}

func (t *Target) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if err := Target(s).Validate(); err != nil {
		return err
	}
	*t = Target(s)
	return nil
}

// Targets is an ordered list of targets. Containment checks treat it as a
// set; ordering on the wire is preserved.
type Targets []Target

// Contains reports whether t is present.
func (ts Targets) Contains(t Target) bool {
	for _, cur := range ts {
		if cur == t {
			return true
		}
	}
	return false
}

// SubsetOf reports whether every element of ts is present in other. The
// empty list is a subset of everything; this is what makes untargeted
// objects visible to every VEN.
func (ts Targets) SubsetOf(other Targets) bool {
	for _, t := range ts {
		if !other.Contains(t) {
			return false
		}
	}
	return true
}

// SupersetOf reports whether ts contains every element of other.
func (ts Targets) SupersetOf(other Targets) bool {
	return other.SubsetOf(ts)
}

// Union returns the sorted, de-duplicated union of ts and other.
func (ts Targets) Union(other Targets) Targets {
	seen := make(map[Target]struct{}, len(ts)+len(other))
	var out Targets
	for _, list := range []Targets{ts, other} {
		for _, t := range list {
			if _, ok := seen[t]; !ok {
				seen[t] = struct{}{}
				out = append(out, t)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Validate checks every element.
func (ts Targets) Validate() error {
	for _, t := range ts {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	return nil
}
