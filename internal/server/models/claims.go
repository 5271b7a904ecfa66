package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// Claim is a single (type, value) pair.
type Claim struct {
	Type  string
	Value string
}

// ClaimEntry groups the ordered values of one claim type.
type ClaimEntry struct {
	Type   string
	Values []string
}

// Claims is an ordered mapping from claim type to an ordered list of values.
// Both the order of types and the order of values within a type are kept.
// The zero value is an empty mapping ready to use.
type Claims struct {
	entries []ClaimEntry
}

// NewClaims builds Claims from entries; repeated types are merged in order.
func NewClaims(entries ...ClaimEntry) Claims {
	var c Claims
	for _, e := range entries {
		c.Add(e.Type, e.Values...)
	}
	return c
}

// Add appends values to claimType, creating the type at the end if absent.
func (c *Claims) Add(claimType string, values ...string) {
	for i := range c.entries {
		if c.entries[i].Type == claimType {
			c.entries[i].Values = append(c.entries[i].Values, values...)
			return
		}
	}
	c.entries = append(c.entries, ClaimEntry{Type: claimType, Values: append([]string{}, values...)})
}

// Get returns the values of claimType and whether it is present.
func (c Claims) Get(claimType string) ([]string, bool) {
	for _, e := range c.entries {
		if e.Type == claimType {
			return slices.Clone(e.Values), true
		}
	}
	return nil, false
}

func (c Claims) Len() int { return len(c.entries) }

func (c Claims) Types() []string {
	types := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		types = append(types, e.Type)
	}
	return types
}

// Entries returns a copy of the grouped entries in order.
func (c Claims) Entries() []ClaimEntry {
	return c.Clone().entries
}

// Flatten yields one Claim per value, types first-to-last, values in order.
func (c Claims) Flatten() []Claim {
	var out []Claim
	for _, e := range c.entries {
		for _, v := range e.Values {
			out = append(out, Claim{Type: e.Type, Value: v})
		}
	}
	return out
}

// Equal reports sequence equality of (type, ordered values) pairs.
func (c Claims) Equal(other Claims) bool {
	return slices.EqualFunc(c.entries, other.entries, func(a, b ClaimEntry) bool {
		return a.Type == b.Type && slices.Equal(a.Values, b.Values)
	})
}

func (c Claims) Clone() Claims {
	if c.entries == nil {
		return Claims{}
	}
	out := Claims{entries: make([]ClaimEntry, len(c.entries))}
	for i, e := range c.entries {
		out.entries[i] = ClaimEntry{Type: e.Type, Values: slices.Clone(e.Values)}
	}
	return out
}

// MarshalJSON writes a JSON object whose keys follow the claim type order.
// An empty mapping encodes as {}.
func (c Claims) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range c.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Type)
		if err != nil {
			return nil, err
		}
		values := e.Values
		if values == nil {
			values = []string{}
		}
		val, err := json.Marshal(values)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object of string arrays, keeping key order.
// null decodes to an empty mapping.
func (c *Claims) UnmarshalJSON(b []byte) error {
	c.entries = nil
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("claims: expected object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("claims: expected key, got %v", tok)
		}
		var values []string
		if err := dec.Decode(&values); err != nil {
			return fmt.Errorf("claims: values of %q: %w", key, err)
		}
		c.Add(key, values...)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
