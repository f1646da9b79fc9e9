package mapping

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// CopySuffix is appended to the name of a cloned mapping.
const CopySuffix = " (copy)"

// ErrInvalidJSON is returned when raw mapping JSON cannot be parsed.
var ErrInvalidJSON = errors.New("invalid JSON")

// Clone returns a deep copy of m ready to be created as a new mapping: id and
// uuid are cleared and a non-empty name gets CopySuffix.
func Clone(m *StubMapping) (*StubMapping, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encoding mapping: %w", err)
	}
	data, err = CloneJSON(data)
	if err != nil {
		return nil, err
	}
	var clone StubMapping
	if err := json.Unmarshal(data, &clone); err != nil {
		return nil, fmt.Errorf("decoding clone: %w", err)
	}
	return &clone, nil
}

// CloneJSON clones a raw mapping document. Fields this package does not model
// are kept as they are.
func CloneJSON(data []byte) ([]byte, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}

	out, err := dropIdentity(data)
	if err != nil {
		return nil, err
	}

	name := gjson.GetBytes(out, "name")
	switch {
	case name.Exists() && name.String() != "":
		out, err = sjson.SetBytes(out, "name", name.String()+CopySuffix)
	case name.Exists():
		out, err = sjson.DeleteBytes(out, "name")
	}
	if err != nil {
		return nil, fmt.Errorf("renaming clone: %w", err)
	}
	return out, nil
}

// PrepareForCreate strips the identifiers the server assigns on creation.
func PrepareForCreate(data []byte) ([]byte, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}
	return dropIdentity(data)
}

// PrepareForUpdate pins the mapping id to the one being edited, whatever the
// raw editor content says.
func PrepareForUpdate(data []byte, id string) ([]byte, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}
	out, err := sjson.SetBytes(data, "id", id)
	if err != nil {
		return nil, fmt.Errorf("setting id: %w", err)
	}
	return out, nil
}

func dropIdentity(data []byte) ([]byte, error) {
	out := data
	for _, key := range []string{"id", "uuid"} {
		var err error
		out, err = sjson.DeleteBytes(out, key)
		if err != nil {
			return nil, fmt.Errorf("removing %s: %w", key, err)
		}
	}
	return out, nil
}
