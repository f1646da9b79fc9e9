package mapping

import (
	"sort"
	"strings"

	"github.com/getmockd/stubdesk/pkg/util"
)

// ParamRow is one editable query parameter, header or cookie matcher.
type ParamRow struct {
	Key       string    `json:"key" yaml:"key"`
	MatchType MatchType `json:"matchType" yaml:"matchType"`
	Value     string    `json:"value" yaml:"value"`
}

// BodyPatternRow is one editable body pattern.
type BodyPatternRow struct {
	MatchType MatchType `json:"matchType" yaml:"matchType"`
	Value     string    `json:"value" yaml:"value"`
}

// DecodeParams flattens named matchers into rows ordered by key.
func DecodeParams(params map[string]Matcher) []ParamRow {
	rows := make([]ParamRow, 0, len(params))
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		m := params[key]
		rows = append(rows, ParamRow{
			Key:       key,
			MatchType: m.Type,
			Value:     formValue(m),
		})
	}
	return rows
}

// DecodeBodyPatterns flattens body patterns into rows, keeping their order.
func DecodeBodyPatterns(patterns []Matcher) []BodyPatternRow {
	rows := make([]BodyPatternRow, 0, len(patterns))
	for _, m := range patterns {
		rows = append(rows, BodyPatternRow{
			MatchType: m.Type,
			Value:     formValue(m),
		})
	}
	return rows
}

// formValue is the text shown in the editor for a matcher operand.
func formValue(m Matcher) string {
	if m.Type == MatchAbsent {
		return ""
	}
	switch v := m.Operand.(type) {
	case string:
		return v
	case nil:
		return ""
	}
	if m.IsStructured() {
		if out, err := util.PrettyJSON(m.Operand); err == nil {
			return out
		}
	}
	return m.OperandString()
}

// EncodeParams folds rows back into named matchers. When two rows share a key
// the later row wins. Rows without a match type are unfinished and skipped.
func EncodeParams(rows []ParamRow) map[string]Matcher {
	params := make(map[string]Matcher, len(rows))
	for _, row := range rows {
		if row.MatchType == "" {
			continue
		}
		params[row.Key] = NewMatcher(row.MatchType, paramOperand(row.MatchType, row.Value))
	}
	return params
}

// paramOperand keeps the typed value verbatim. An empty absent operand becomes
// true, the form the mock server expects.
func paramOperand(t MatchType, value string) any {
	if t == MatchAbsent && value == "" {
		return true
	}
	return value
}

// EncodeBodyPatterns turns rows back into body patterns. Values that look like
// JSON documents are parsed so structured matchers round trip; anything that
// fails to parse is kept as the trimmed text. Rows without a match type are
// skipped.
func EncodeBodyPatterns(rows []BodyPatternRow) []Matcher {
	patterns := make([]Matcher, 0, len(rows))
	for _, row := range rows {
		if row.MatchType == "" {
			continue
		}
		raw := strings.TrimSpace(row.Value)
		var operand any = raw
		if raw != "" && (raw[0] == '{' || raw[0] == '[') {
			if parsed, err := util.ParseJSON(raw); err == nil {
				operand = parsed
			}
		}
		if row.MatchType == MatchAbsent && raw == "" {
			operand = true
		}
		patterns = append(patterns, NewMatcher(row.MatchType, operand))
	}
	return patterns
}
