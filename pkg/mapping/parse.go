package mapping

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// DecodeError reports a mapping that could not be decoded.
type DecodeError struct {
	// Index is the position of the mapping in a list, or -1 for a single document.
	Index int
	Cause error
}

func (e *DecodeError) Error() string {
	if e.Index < 0 {
		return "decoding mapping: " + e.Cause.Error()
	}
	return fmt.Sprintf("decoding mapping %d: %v", e.Index, e.Cause)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// Parse decodes a single mapping document.
func Parse(data []byte) (*StubMapping, error) {
	var m StubMapping
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, &DecodeError{Index: -1, Cause: err}
	}
	return &m, nil
}

// ParseMappings decodes a single mapping, a JSON array of mappings, or the
// admin API listing {"mappings": [...]}.
func ParseMappings(data []byte) ([]*StubMapping, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, &DecodeError{Index: -1, Cause: fmt.Errorf("empty document")}
	}
	if !gjson.ValidBytes(trimmed) {
		return nil, &DecodeError{Index: -1, Cause: ErrInvalidJSON}
	}

	doc := gjson.ParseBytes(trimmed)
	var items []gjson.Result
	switch {
	case doc.IsArray():
		items = doc.Array()
	case doc.IsObject() && doc.Get("mappings").IsArray() && !doc.Get("request").Exists():
		items = doc.Get("mappings").Array()
	case doc.IsObject():
		m, err := Parse(trimmed)
		if err != nil {
			return nil, err
		}
		return []*StubMapping{m}, nil
	default:
		return nil, &DecodeError{Index: -1, Cause: fmt.Errorf("expected a mapping object or array")}
	}

	mappings := make([]*StubMapping, 0, len(items))
	for i, item := range items {
		var m StubMapping
		if err := json.Unmarshal([]byte(item.Raw), &m); err != nil {
			return nil, &DecodeError{Index: i, Cause: err}
		}
		mappings = append(mappings, &m)
	}
	return mappings, nil
}
