package mapping

import (
	"encoding/json"
	"fmt"
)

// URLMatchType selects how a mapping's URL is compared.
type URLMatchType string

// URL match types. URLMatchAny means no URL field is set and every URL matches.
const (
	URLMatchURL             URLMatchType = "url"
	URLMatchURLPattern      URLMatchType = "urlPattern"
	URLMatchURLPath         URLMatchType = "urlPath"
	URLMatchURLPathPattern  URLMatchType = "urlPathPattern"
	URLMatchURLPathTemplate URLMatchType = "urlPathTemplate"
	URLMatchAny             URLMatchType = "anyUrl"
)

// Valid reports whether t is a known URL match type.
func (t URLMatchType) Valid() bool {
	if t == URLMatchAny {
		return true
	}
	for _, f := range urlFields {
		if f.typ == t {
			return true
		}
	}
	return false
}

// URLMatcher is the single selected URL matcher of a request.
type URLMatcher struct {
	Type  URLMatchType
	Value string
}

// AnyURL returns a matcher that accepts every URL.
func AnyURL() URLMatcher {
	return URLMatcher{Type: URLMatchAny}
}

// IsAny reports whether the matcher accepts every URL.
func (u URLMatcher) IsAny() bool {
	return u.Type == URLMatchAny || u.Type == ""
}

// requestWire is the JSON shape of a request.
type requestWire struct {
	Method          Method             `json:"method,omitempty"`
	URL             *string            `json:"url,omitempty"`
	URLPattern      *string            `json:"urlPattern,omitempty"`
	URLPath         *string            `json:"urlPath,omitempty"`
	URLPathPattern  *string            `json:"urlPathPattern,omitempty"`
	URLPathTemplate *string            `json:"urlPathTemplate,omitempty"`
	QueryParameters map[string]Matcher `json:"queryParameters,omitempty"`
	Headers         map[string]Matcher `json:"headers,omitempty"`
	Cookies         map[string]Matcher `json:"cookies,omitempty"`
	BodyPatterns    []Matcher          `json:"bodyPatterns,omitempty"`
}

// urlFields is the probe order of the mutually exclusive URL fields.
var urlFields = []struct {
	typ   URLMatchType
	field func(*requestWire) **string
}{
	{URLMatchURL, func(w *requestWire) **string { return &w.URL }},
	{URLMatchURLPattern, func(w *requestWire) **string { return &w.URLPattern }},
	{URLMatchURLPath, func(w *requestWire) **string { return &w.URLPath }},
	{URLMatchURLPathPattern, func(w *requestWire) **string { return &w.URLPathPattern }},
	{URLMatchURLPathTemplate, func(w *requestWire) **string { return &w.URLPathTemplate }},
}

// URLMatchTypes lists the URL match types in probe order, followed by anyUrl.
func URLMatchTypes() []URLMatchType {
	types := make([]URLMatchType, 0, len(urlFields)+1)
	for _, f := range urlFields {
		types = append(types, f.typ)
	}
	return append(types, URLMatchAny)
}

// MarshalJSON writes the URL matcher back to its own wire field.
func (r Request) MarshalJSON() ([]byte, error) {
	w := requestWire{
		Method:          r.Method,
		QueryParameters: r.QueryParameters,
		Headers:         r.Headers,
		Cookies:         r.Cookies,
		BodyPatterns:    r.BodyPatterns,
	}
	if !r.URL.IsAny() {
		found := false
		for _, f := range urlFields {
			if f.typ == r.URL.Type {
				*f.field(&w) = strPtr(r.URL.Value)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown URL match type %q", r.URL.Type)
		}
	}
	return json.Marshal(w)
}

// UnmarshalJSON probes the URL fields in order and rejects requests that set
// more than one of them.
func (r *Request) UnmarshalJSON(data []byte) error {
	var w requestWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*r = Request{
		Method:          w.Method,
		URL:             AnyURL(),
		QueryParameters: w.QueryParameters,
		Headers:         w.Headers,
		Cookies:         w.Cookies,
		BodyPatterns:    w.BodyPatterns,
	}

	for _, f := range urlFields {
		value := *f.field(&w)
		if value == nil {
			continue
		}
		if r.URL.Type != URLMatchAny {
			return fmt.Errorf("request sets both %s and %s", r.URL.Type, f.typ)
		}
		r.URL = URLMatcher{Type: f.typ, Value: *value}
	}
	return nil
}
