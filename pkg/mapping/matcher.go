package mapping

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getmockd/stubdesk/pkg/util"
)

// MatchType names the comparison strategy of a Matcher.
type MatchType string

// Match types shared by query parameters, headers, cookies and body patterns.
const (
	MatchEqualTo        MatchType = "equalTo"
	MatchMatches        MatchType = "matches"
	MatchDoesNotMatch   MatchType = "doesNotMatch"
	MatchContains       MatchType = "contains"
	MatchDoesNotContain MatchType = "doesNotContain"
	MatchAbsent         MatchType = "absent"
)

// Match types only meaningful for body patterns.
const (
	MatchEqualToJSON     MatchType = "equalToJson"
	MatchMatchesJSONPath MatchType = "matchesJsonPath"
	MatchMatchesXPath    MatchType = "matchesXPath"
	MatchMatchesXML      MatchType = "matchesXml"
	MatchEqualToXML      MatchType = "equalToXml"
	MatchBinaryEqualTo   MatchType = "binaryEqualTo"
)

// ParamMatchTypes are the match types offered for query parameters, headers and cookies.
var ParamMatchTypes = []MatchType{
	MatchEqualTo, MatchMatches, MatchDoesNotMatch, MatchContains, MatchDoesNotContain, MatchAbsent,
}

// BodyPatternMatchTypes are the match types offered for body patterns.
var BodyPatternMatchTypes = []MatchType{
	MatchEqualTo, MatchMatches, MatchDoesNotMatch, MatchContains, MatchDoesNotContain, MatchAbsent,
	MatchEqualToJSON, MatchMatchesJSONPath, MatchMatchesXPath, MatchMatchesXML, MatchEqualToXML,
	MatchBinaryEqualTo,
}

// Valid reports whether t is a known match type.
func (t MatchType) Valid() bool {
	for _, known := range BodyPatternMatchTypes {
		if t == known {
			return true
		}
	}
	return false
}

// IsParamType reports whether t may be used for a named parameter.
func (t MatchType) IsParamType() bool {
	for _, known := range ParamMatchTypes {
		if t == known {
			return true
		}
	}
	return false
}

// modifierKeys are option flags the mock server accepts next to the match type.
var modifierKeys = map[string]bool{
	"caseInsensitive":                  true,
	"ignoreArrayOrder":                 true,
	"ignoreExtraElements":              true,
	"xPathNamespaces":                  true,
	"enablePlaceholders":               true,
	"placeholderOpeningDelimiterRegex": true,
	"placeholderClosingDelimiterRegex": true,
	"exemptedComparisons":              true,
}

// ErrNoMatchType is returned when a matcher object carries no match-type key.
var ErrNoMatchType = errors.New("matcher has no match type")

// Matcher is one comparison against a request value, such as {"equalTo": "x"}.
// Exactly one match type is present per matcher.
type Matcher struct {
	Type MatchType
	// Operand is a string for most types, structured JSON for equalToJson and
	// true for absent.
	Operand any
	// Modifiers holds option flags like caseInsensitive. They survive JSON
	// round trips but are not edited through the form.
	Modifiers map[string]any
}

// NewMatcher returns a matcher without modifiers.
func NewMatcher(t MatchType, operand any) Matcher {
	return Matcher{Type: t, Operand: operand}
}

// MarshalJSON encodes the matcher as a single-key object plus modifiers.
func (m Matcher) MarshalJSON() ([]byte, error) {
	if m.Type == "" {
		return nil, ErrNoMatchType
	}
	obj := make(map[string]any, len(m.Modifiers)+1)
	for k, v := range m.Modifiers {
		obj[k] = v
	}
	obj[string(m.Type)] = m.Operand
	return json.Marshal(obj)
}

// UnmarshalJSON decodes a single-key matcher object, rejecting objects with
// zero or several match types and keys that are neither.
func (m *Matcher) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("matcher must be an object: %w", err)
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	*m = Matcher{}
	for _, key := range keys {
		value, err := util.ParseJSON(string(raw[key]))
		if err != nil {
			return fmt.Errorf("matcher %q: %w", key, err)
		}

		if modifierKeys[key] {
			if m.Modifiers == nil {
				m.Modifiers = make(map[string]any)
			}
			m.Modifiers[key] = value
			continue
		}

		t := MatchType(key)
		if !t.Valid() {
			return fmt.Errorf("unknown match type %q", key)
		}
		if m.Type != "" {
			return fmt.Errorf("matcher has more than one match type (%s, %s)", m.Type, t)
		}
		m.Type = t
		m.Operand = value
	}

	if m.Type == "" {
		return ErrNoMatchType
	}
	return nil
}

// OperandString returns the operand as text: strings verbatim, anything else
// as compact JSON.
func (m Matcher) OperandString() string {
	if s, ok := m.Operand.(string); ok {
		return s
	}
	if m.Operand == nil {
		return ""
	}
	out, err := util.CompactJSON(m.Operand)
	if err != nil {
		return fmt.Sprint(m.Operand)
	}
	return out
}

// IsStructured reports whether the operand is a JSON object or array.
func (m Matcher) IsStructured() bool {
	switch m.Operand.(type) {
	case map[string]any, []any:
		return true
	default:
		return false
	}
}

// String renders the matcher for diagnostics.
func (m Matcher) String() string {
	var b strings.Builder
	b.WriteString(string(m.Type))
	b.WriteString(": ")
	b.WriteString(m.OperandString())
	return b.String()
}
