package mapping

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/getmockd/stubdesk/pkg/util"
)

// Method is the HTTP method a mapping matches.
type Method string

// Supported request methods. MethodAny matches every method.
const (
	MethodGet     Method = "GET"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodPatch   Method = "PATCH"
	MethodDelete  Method = "DELETE"
	MethodHead    Method = "HEAD"
	MethodOptions Method = "OPTIONS"
	MethodTrace   Method = "TRACE"
	MethodAny     Method = "ANY"
)

// Methods lists every method in the order the editor offers them.
var Methods = []Method{
	MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete,
	MethodHead, MethodOptions, MethodTrace, MethodAny,
}

// Valid reports whether m is one of the supported methods.
func (m Method) Valid() bool {
	for _, known := range Methods {
		if m == known {
			return true
		}
	}
	return false
}

// HasBody reports whether requests with this method normally carry a body.
func (m Method) HasBody() bool {
	return m == MethodPost || m == MethodPut || m == MethodPatch
}

// ResponseType is the editor's choice of response body representation.
type ResponseType string

// Response body representations.
const (
	ResponseTypeText  ResponseType = "text"
	ResponseTypeJSON  ResponseType = "json"
	ResponseTypeHTML  ResponseType = "html"
	ResponseTypeImage ResponseType = "image"
)

// Valid reports whether t is a known response type.
func (t ResponseType) Valid() bool {
	switch t {
	case ResponseTypeText, ResponseTypeJSON, ResponseTypeHTML, ResponseTypeImage:
		return true
	default:
		return false
	}
}

// TemplateTransformer is the transformer that enables response templating.
const TemplateTransformer = "response-template"

// StubMapping is a single request matcher paired with a canned response.
type StubMapping struct {
	ID       string    `json:"id,omitempty"`
	UUID     string    `json:"uuid,omitempty"`
	Name     string    `json:"name,omitempty"`
	Priority *int      `json:"priority,omitempty"`
	Request  Request   `json:"request"`
	Response Response  `json:"response"`
	Metadata *Metadata `json:"metadata,omitempty"`
}

// Request describes which requests a mapping matches.
// JSON encoding is implemented in request.go.
type Request struct {
	Method          Method
	URL             URLMatcher
	QueryParameters map[string]Matcher
	Headers         map[string]Matcher
	Cookies         map[string]Matcher
	BodyPatterns    []Matcher
}

// Response is the canned response returned for a matched request.
// At most one of Body, JSONBody and Base64Body is expected to be set.
type Response struct {
	Status                 int               `json:"status"`
	Fault                  string            `json:"fault,omitempty"`
	Body                   *string           `json:"body,omitempty"`
	JSONBody               any               `json:"jsonBody,omitempty"`
	Base64Body             *string           `json:"base64Body,omitempty"`
	BodyFileName           string            `json:"bodyFileName,omitempty"`
	Headers                map[string]string `json:"headers,omitempty"`
	FixedDelayMilliseconds *int              `json:"fixedDelayMilliseconds,omitempty"`
	DelayDistribution      map[string]any    `json:"delayDistribution,omitempty"`
	Transformers           []string          `json:"transformers,omitempty"`
}

// UnmarshalJSON decodes a response, keeping jsonBody numbers exact.
func (r *Response) UnmarshalJSON(data []byte) error {
	type alias Response
	aux := struct {
		*alias
		JSONBody json.RawMessage `json:"jsonBody,omitempty"`
	}{alias: (*alias)(r)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	r.JSONBody = nil
	if len(aux.JSONBody) > 0 && string(aux.JSONBody) != "null" {
		v, err := util.ParseJSON(string(aux.JSONBody))
		if err != nil {
			return fmt.Errorf("jsonBody: %w", err)
		}
		r.JSONBody = v
	}
	return nil
}

// BodyCount returns how many of body, jsonBody and base64Body are set.
func (r *Response) BodyCount() int {
	n := 0
	if r.Body != nil {
		n++
	}
	if r.JSONBody != nil {
		n++
	}
	if r.Base64Body != nil {
		n++
	}
	return n
}

// Header returns the value of a response header. The exact key wins over a
// case-insensitive match.
func (r *Response) Header(name string) string {
	if v, ok := r.Headers[name]; ok {
		return v
	}
	for key, v := range r.Headers {
		if strings.EqualFold(key, name) {
			return v
		}
	}
	return ""
}

// Metadata is editor-owned data persisted alongside the mapping.
type Metadata struct {
	// Folder is a slash-delimited virtual path used for grouping only.
	Folder string
	// ResponseType remembers the body representation chosen in the builder.
	ResponseType ResponseType
	// Extra holds any other metadata keys so they survive a save.
	Extra map[string]any
}

const (
	metadataFolder       = "folder"
	metadataResponseType = "responseType"
)

// MarshalJSON flattens Folder, ResponseType and Extra into one object.
func (m Metadata) MarshalJSON() ([]byte, error) {
	obj := make(map[string]any, len(m.Extra)+2)
	for k, v := range m.Extra {
		obj[k] = v
	}
	if m.Folder != "" {
		obj[metadataFolder] = m.Folder
	}
	if m.ResponseType != "" {
		obj[metadataResponseType] = m.ResponseType
	}
	return json.Marshal(obj)
}

// UnmarshalJSON splits the known keys from passthrough metadata.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*m = Metadata{}
	for key, value := range raw {
		switch key {
		case metadataFolder:
			if err := json.Unmarshal(value, &m.Folder); err != nil {
				return fmt.Errorf("metadata.folder: %w", err)
			}
		case metadataResponseType:
			var rt string
			if err := json.Unmarshal(value, &rt); err != nil {
				return fmt.Errorf("metadata.responseType: %w", err)
			}
			m.ResponseType = ResponseType(rt)
		default:
			v, err := util.ParseJSON(string(value))
			if err != nil {
				return fmt.Errorf("metadata.%s: %w", key, err)
			}
			if m.Extra == nil {
				m.Extra = make(map[string]any)
			}
			m.Extra[key] = v
		}
	}
	return nil
}

// Folder returns the mapping's folder, or "" when it has none.
func (s *StubMapping) Folder() string {
	if s.Metadata == nil {
		return ""
	}
	return s.Metadata.Folder
}

// URL returns the URL expression the mapping matches, or "*" for any URL.
func (s *StubMapping) URL() string {
	if s.Request.URL.IsAny() {
		return "*"
	}
	return s.Request.URL.Value
}

// Label is the display label used for tree leaves and editor tabs: the
// mapping's name when set, else its URL expression.
func (s *StubMapping) Label() string {
	if s.Name != "" {
		return s.Name
	}
	return s.URL()
}

func strPtr(s string) *string {
	return &s
}
