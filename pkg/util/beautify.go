package util

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/beevik/etree"
)

// JSONIndent is the indentation used for every pretty-printed JSON value shown
// in the editor.
const JSONIndent = "    "

// ErrTrailingData is returned by ParseJSON when the input holds more than one value.
var ErrTrailingData = errors.New("unexpected data after JSON value")

// ParseJSON decodes a single JSON value. Numbers are kept as json.Number so that
// re-encoding never changes their textual form.
func ParseJSON(s string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, ErrTrailingData
	}
	return v, nil
}

// PrettyJSON encodes v with 4-space indentation and without HTML escaping.
func PrettyJSON(v any) (string, error) {
	return encodeJSON(v, JSONIndent)
}

// CompactJSON encodes v on a single line without HTML escaping.
func CompactJSON(v any) (string, error) {
	return encodeJSON(v, "")
}

func encodeJSON(v any, indent string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// BeautifyJSON re-indents a JSON document. Blank or invalid input is returned unchanged.
func BeautifyJSON(s string) string {
	if strings.TrimSpace(s) == "" {
		return s
	}
	v, err := ParseJSON(s)
	if err != nil {
		return s
	}
	out, err := PrettyJSON(v)
	if err != nil {
		return s
	}
	return out
}

// BeautifyXML re-indents an XML document. Input that does not parse, or has no
// root element, is returned unchanged.
func BeautifyXML(s string) string {
	if strings.TrimSpace(s) == "" {
		return s
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromString(s); err != nil {
		return s
	}
	if doc.Root() == nil {
		return s
	}
	doc.Indent(len(JSONIndent))
	out, err := doc.WriteToString()
	if err != nil {
		return s
	}
	return strings.TrimSuffix(out, "\n")
}

// Beautify picks JSON or XML formatting from the first significant character.
func Beautify(s string) string {
	if strings.HasPrefix(strings.TrimSpace(s), "<") {
		return BeautifyXML(s)
	}
	return BeautifyJSON(s)
}
