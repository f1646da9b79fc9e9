package mapping

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/getmockd/stubdesk/pkg/logging"
	"github.com/getmockd/stubdesk/pkg/util"
)

// Priority is the form's priority field: an integer or PriorityAuto.
type Priority string

// PriorityAuto leaves the priority unset so the server applies its default ordering.
const PriorityAuto Priority = "auto"

// PriorityOf returns the form priority for an optional mapping priority.
func PriorityOf(p *int) Priority {
	if p == nil {
		return PriorityAuto
	}
	return Priority(strconv.Itoa(*p))
}

// IsAuto reports whether the priority is left to the server.
func (p Priority) IsAuto() bool {
	return p == PriorityAuto || strings.TrimSpace(string(p)) == ""
}

// Int parses the priority as an integer.
func (p Priority) Int() (int, error) {
	return strconv.Atoi(strings.TrimSpace(string(p)))
}

// MarshalJSON writes numeric priorities as numbers and anything else as a string.
func (p Priority) MarshalJSON() ([]byte, error) {
	if n, err := p.Int(); err == nil {
		return json.Marshal(n)
	}
	return json.Marshal(string(p))
}

// UnmarshalJSON accepts a number, a string or null.
func (p *Priority) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case string(data) == "null":
		*p = PriorityAuto
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = Priority(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*p = Priority(n.String())
	return nil
}

// HeaderRow is one editable response header.
type HeaderRow struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// FormValues is the flat, row-based representation of a mapping bound to the
// mapping builder.
type FormValues struct {
	ID                        string           `json:"id,omitempty" yaml:"id,omitempty"`
	UUID                      string           `json:"uuid,omitempty" yaml:"uuid,omitempty"`
	Name                      string           `json:"name,omitempty" yaml:"name,omitempty"`
	Priority                  Priority         `json:"priority" yaml:"priority"`
	Method                    Method           `json:"method" yaml:"method"`
	URL                       string           `json:"url" yaml:"url"`
	URLMatchType              URLMatchType     `json:"urlMatchType" yaml:"urlMatchType"`
	QueryParameters           []ParamRow       `json:"queryParameters" yaml:"queryParameters"`
	RequestHeaders            []ParamRow       `json:"requestHeaders" yaml:"requestHeaders"`
	RequestCookies            []ParamRow       `json:"requestCookies" yaml:"requestCookies"`
	RequestBodyPatterns       []BodyPatternRow `json:"requestBodyPatterns" yaml:"requestBodyPatterns"`
	ResponseStatus            int              `json:"responseStatus" yaml:"responseStatus"`
	ResponseFault             string           `json:"responseFault,omitempty" yaml:"responseFault,omitempty"`
	ResponseHeaders           []HeaderRow      `json:"responseHeaders" yaml:"responseHeaders"`
	ResponseBody              string           `json:"responseBody,omitempty" yaml:"responseBody,omitempty"`
	ResponseJSONBody          string           `json:"responseJsonBody,omitempty" yaml:"responseJsonBody,omitempty"`
	ResponseBase64Body        string           `json:"responseBase64Body,omitempty" yaml:"responseBase64Body,omitempty"`
	ResponseType              ResponseType     `json:"responseType" yaml:"responseType"`
	ResponseBodyFileName      string           `json:"responseBodyFileName,omitempty" yaml:"responseBodyFileName,omitempty"`
	ResponseDelayMilliseconds *int             `json:"responseDelayMilliseconds,omitempty" yaml:"responseDelayMilliseconds,omitempty"`
	ResponseDelayDistribution map[string]any   `json:"responseDelayDistribution,omitempty" yaml:"responseDelayDistribution,omitempty"`
	Folder                    string           `json:"folder,omitempty" yaml:"folder,omitempty"`
}

// NewFormValues returns the form for a mapping that has not been saved yet.
// New mappings start on an exact URL rather than any URL.
func NewFormValues() FormValues {
	return FormValues{
		Priority:            PriorityAuto,
		Method:              MethodGet,
		URLMatchType:        URLMatchURL,
		QueryParameters:     []ParamRow{},
		RequestHeaders:      []ParamRow{},
		RequestCookies:      []ParamRow{},
		RequestBodyPatterns: []BodyPatternRow{},
		ResponseStatus:      200,
		ResponseHeaders:     []HeaderRow{},
		ResponseType:        ResponseTypeJSON,
	}
}

// Converter converts between stub mappings and form values.
// It is safe for concurrent use.
type Converter struct {
	log *slog.Logger
}

// ConverterOption configures a Converter.
type ConverterOption func(*Converter)

// WithLogger sets the logger used for non-fatal conversion diagnostics.
func WithLogger(log *slog.Logger) ConverterOption {
	return func(c *Converter) {
		if log != nil {
			c.log = log
		}
	}
}

// NewConverter creates a Converter.
func NewConverter(opts ...ConverterOption) *Converter {
	c := &Converter{log: logging.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultConverter = NewConverter()

// ToFormValues converts a mapping with the default converter.
func ToFormValues(m *StubMapping) FormValues {
	return defaultConverter.ToFormValues(m)
}

// FromFormValues converts form values with the default converter.
func FromFormValues(fv FormValues) *StubMapping {
	return defaultConverter.FromFormValues(fv)
}

// ToFormValues flattens a mapping for editing. It is total: every mapping has
// a form representation.
func (c *Converter) ToFormValues(m *StubMapping) FormValues {
	if m == nil {
		return NewFormValues()
	}

	urlMatchType, url := URLMatchAny, ""
	if !m.Request.URL.IsAny() {
		urlMatchType, url = m.Request.URL.Type, m.Request.URL.Value
	}

	fv := FormValues{
		ID:                        m.ID,
		UUID:                      m.UUID,
		Name:                      m.Name,
		Priority:                  PriorityOf(m.Priority),
		Method:                    m.Request.Method,
		URL:                       url,
		URLMatchType:              urlMatchType,
		QueryParameters:           DecodeParams(m.Request.QueryParameters),
		RequestHeaders:            DecodeParams(m.Request.Headers),
		RequestCookies:            DecodeParams(m.Request.Cookies),
		RequestBodyPatterns:       DecodeBodyPatterns(m.Request.BodyPatterns),
		ResponseStatus:            m.Response.Status,
		ResponseFault:             m.Response.Fault,
		ResponseHeaders:           flattenHeaders(m.Response.Headers),
		ResponseJSONBody:          c.jsonBodyText(m),
		ResponseType:              InferResponseType(m),
		ResponseBodyFileName:      m.Response.BodyFileName,
		ResponseDelayMilliseconds: m.Response.FixedDelayMilliseconds,
		ResponseDelayDistribution: m.Response.DelayDistribution,
		Folder:                    m.Folder(),
	}
	if m.Response.Body != nil {
		fv.ResponseBody = *m.Response.Body
	}
	if m.Response.Base64Body != nil {
		fv.ResponseBase64Body = *m.Response.Base64Body
	}
	return fv
}

// jsonBodyText pretty-prints jsonBody, falling back to the plain body.
func (c *Converter) jsonBodyText(m *StubMapping) string {
	body := ""
	if m.Response.Body != nil {
		body = *m.Response.Body
	}
	if m.Response.JSONBody == nil {
		return body
	}
	out, err := util.PrettyJSON(m.Response.JSONBody)
	if err != nil {
		c.log.Debug("failed to format response jsonBody", "error", err)
		return body
	}
	return out
}

// InferResponseType picks the editor's body representation for a mapping.
// Explicit metadata wins, then the content-type response header, then the
// presence of a base64 body.
func InferResponseType(m *StubMapping) ResponseType {
	if m.Metadata != nil && m.Metadata.ResponseType != "" {
		return m.Metadata.ResponseType
	}

	contentType := m.Response.Header("content-type")
	if contentType == "" {
		if m.Response.Base64Body != nil {
			return ResponseTypeImage
		}
		return ResponseTypeJSON
	}
	switch {
	case strings.Contains(contentType, "image"):
		return ResponseTypeImage
	case strings.Contains(contentType, "json"):
		return ResponseTypeJSON
	case strings.Contains(contentType, "html"):
		return ResponseTypeHTML
	default:
		return ResponseTypeJSON
	}
}

func flattenHeaders(headers map[string]string) []HeaderRow {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]HeaderRow, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, HeaderRow{Key: k, Value: headers[k]})
	}
	return rows
}

// FromFormValues builds the mapping to save from a form snapshot. Malformed
// drafts never block a save: an unparsable JSON body is stored as a string and
// an unparsable priority falls back to auto, both with a warning.
func (c *Converter) FromFormValues(fv FormValues) *StubMapping {
	m := &StubMapping{
		ID:       fv.ID,
		UUID:     fv.UUID,
		Name:     fv.Name,
		Priority: c.priority(fv.Priority),
		Request: Request{
			Method:          fv.Method,
			URL:             AnyURL(),
			QueryParameters: EncodeParams(fv.QueryParameters),
			Headers:         EncodeParams(fv.RequestHeaders),
			Cookies:         EncodeParams(fv.RequestCookies),
			BodyPatterns:    EncodeBodyPatterns(fv.RequestBodyPatterns),
		},
		Response: Response{
			Status:                 fv.ResponseStatus,
			Fault:                  fv.ResponseFault,
			BodyFileName:           fv.ResponseBodyFileName,
			Headers:                foldHeaders(fv.ResponseHeaders),
			FixedDelayMilliseconds: fv.ResponseDelayMilliseconds,
			DelayDistribution:      fv.ResponseDelayDistribution,
			Transformers:           Transformers(fv),
		},
		Metadata: &Metadata{
			Folder:       fv.Folder,
			ResponseType: fv.ResponseType,
		},
	}

	if fv.URLMatchType != URLMatchAny && fv.URLMatchType != "" {
		m.Request.URL = URLMatcher{Type: fv.URLMatchType, Value: fv.URL}
	}

	c.setResponseBody(&m.Response, fv)
	return m
}

func (c *Converter) priority(p Priority) *int {
	if p.IsAuto() {
		return nil
	}
	n, err := p.Int()
	if err != nil {
		c.log.Warn("ignoring non-integer priority", "priority", string(p))
		return nil
	}
	return &n
}

// setResponseBody fills exactly one body field according to the response type.
func (c *Converter) setResponseBody(r *Response, fv FormValues) {
	switch fv.ResponseType {
	case ResponseTypeImage:
		if fv.ResponseBase64Body != "" {
			r.Base64Body = strPtr(fv.ResponseBase64Body)
		}
	case ResponseTypeJSON:
		text := effectiveJSONBody(fv)
		if text == "" {
			return
		}
		parsed, err := util.ParseJSON(text)
		if err != nil {
			c.log.Warn("failed to parse response JSON body, saving it as a string",
				"error", err,
				"body", util.TruncateBody(text, 256))
			r.JSONBody = text
			return
		}
		r.JSONBody = parsed
	default:
		if fv.ResponseBody != "" {
			r.Body = strPtr(fv.ResponseBody)
		}
	}
}

func effectiveJSONBody(fv FormValues) string {
	if fv.ResponseJSONBody != "" {
		return fv.ResponseJSONBody
	}
	return fv.ResponseBody
}

// Transformers derives the response transformers from the form: JSON bodies
// containing "{{" enable response templating.
func Transformers(fv FormValues) []string {
	if fv.ResponseType == ResponseTypeJSON && strings.Contains(effectiveJSONBody(fv), "{{") {
		return []string{TemplateTransformer}
	}
	return nil
}

// foldHeaders folds header rows into a map; later duplicates overwrite earlier ones.
func foldHeaders(rows []HeaderRow) map[string]string {
	headers := make(map[string]string, len(rows))
	for _, row := range rows {
		headers[row.Key] = row.Value
	}
	return headers
}
