// Package wire contains the OpenADR 3 wire types exchanged between VTN and
// clients: programs, events, reports, VENs, resources, subscriptions, and
// the value/interval/target primitives they are built from.
//
// All types marshal to the camelCase JSON the OpenADR 3 specification uses,
// with RFC 3339 timestamps and ISO 8601 durations.
package wire

import (
	"encoding/json"
	"fmt"
)

// Identifier is a URL-safe string of 1 to 128 characters drawn from
// [A-Za-z0-9._~-]. All object ids and client ids on the wire are identifiers.
type Identifier string

// ParseIdentifier validates s and returns it as an Identifier.
func ParseIdentifier(s string) (Identifier, error) {
	if err := ValidateIdentifier(s); err != nil {
		return "", err
	}
	return Identifier(s), nil
}

// ValidateIdentifier reports whether s is a valid OpenADR identifier.
func ValidateIdentifier(s string) error {
	if len(s) < 1 || len(s) > 128 {
		return fmt.Errorf("identifier must be between 1 and 128 characters, got %d", len(s))
	}
	for i := 0; i < len(s); i++ {
		if !isURLSafe(s[i]) {
			return fmt.Errorf("identifier contains invalid character %q at position %d", s[i], i)
		}
	}
	return nil
}

func isURLSafe(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '.' || c == '_' || c == '~' || c == '-':
		return true
	}
	return false
}

func (i Identifier) String() string { return string(i) }

// UnmarshalJSON rejects malformed identifiers at the decoding boundary.
func (i *Identifier) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseIdentifier(s)
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}
