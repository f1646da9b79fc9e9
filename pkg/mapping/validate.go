package mapping

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/beevik/etree"
	"github.com/ohler55/ojg/jp"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"
)

//go:embed schema.json
var schemaJSON string

// Severity grades a validation issue.
type Severity string

// Issue severities. Errors block a save; warnings do not.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one validation finding.
type Issue struct {
	Path     string   `json:"path,omitempty"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// ValidationResult collects the findings for one mapping document.
type ValidationResult struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues,omitempty"`
	// Mapping is the decoded mapping when decoding succeeded.
	Mapping *StubMapping `json:"-"`
}

// Errors returns the issues with error severity.
func (r *ValidationResult) Errors() []Issue {
	return r.filter(SeverityError)
}

// Warnings returns the issues with warning severity.
func (r *ValidationResult) Warnings() []Issue {
	return r.filter(SeverityWarning)
}

func (r *ValidationResult) filter(s Severity) []Issue {
	var out []Issue
	for _, issue := range r.Issues {
		if issue.Severity == s {
			out = append(out, issue)
		}
	}
	return out
}

func (r *ValidationResult) addError(path, format string, args ...any) {
	r.Valid = false
	r.Issues = append(r.Issues, Issue{Path: path, Message: fmt.Sprintf(format, args...), Severity: SeverityError})
}

func (r *ValidationResult) addWarning(path, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{Path: path, Message: fmt.Sprintf(format, args...), Severity: SeverityWarning})
}

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func mappingSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("stub-mapping.json", strings.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("failed to add schema resource: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile("stub-mapping.json")
	})
	return compiledSchema, schemaErr
}

// ValidateJSON validates raw mapping JSON the way the raw editor does before
// saving: syntax, basic shape, schema, typed decoding, then semantic checks.
// Later stages only run when the earlier ones pass.
func ValidateJSON(data []byte) *ValidationResult {
	result := &ValidationResult{Valid: true}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			line, col := lineColumn(data, syntaxErr.Offset)
			result.addError("", "invalid JSON at line %d, column %d: %v", line, col, err)
		} else {
			result.addError("", "invalid JSON: %v", err)
		}
		return result
	}

	if msg := shapeError(gjson.ParseBytes(data)); msg != "" {
		result.addError("", "%s", msg)
		return result
	}

	schema, err := mappingSchema()
	if err != nil {
		result.addError("", "schema compilation error: %v", err)
		return result
	}
	if err := schema.Validate(doc); err != nil {
		var validationErr *jsonschema.ValidationError
		if errors.As(err, &validationErr) {
			collectSchemaErrors(validationErr, result)
		} else {
			result.addError("", "%v", err)
		}
		return result
	}

	m, err := Parse(data)
	if err != nil {
		result.addError("", "%v", errors.Unwrap(err))
		return result
	}
	result.Mapping = m

	semantic := Validate(m)
	result.Issues = append(result.Issues, semantic.Issues...)
	result.Valid = result.Valid && semantic.Valid
	return result
}

// shapeError returns the raw editor's message for documents that are not
// mapping-shaped, or "".
func shapeError(doc gjson.Result) string {
	if !doc.IsObject() {
		return "mapping must be a JSON object"
	}
	request, response := doc.Get("request"), doc.Get("response")
	switch {
	case !request.Exists() || request.Type == gjson.Null:
		return `missing required "request" field`
	case !response.Exists() || response.Type == gjson.Null:
		return `missing required "response" field`
	case !request.IsObject():
		return "request must be an object"
	case !response.IsObject():
		return "response must be an object"
	}
	return ""
}

func collectSchemaErrors(err *jsonschema.ValidationError, result *ValidationResult) {
	if len(err.Causes) == 0 {
		result.addError(pointerToPath(err.InstanceLocation), "%s", err.Message)
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(cause, result)
	}
}

// pointerToPath converts a JSON pointer to dot notation.
func pointerToPath(pointer string) string {
	if pointer == "" || pointer == "/" {
		return ""
	}
	return strings.ReplaceAll(strings.TrimPrefix(pointer, "/"), "/", ".")
}

// Validate runs the semantic checks on a decoded mapping.
func Validate(m *StubMapping) *ValidationResult {
	result := &ValidationResult{Valid: true, Mapping: m}

	if m.Request.Method == "" {
		result.addWarning("request.method", "no method set, the server will match any method")
	} else if !m.Request.Method.Valid() {
		result.addError("request.method", "unsupported method %q", m.Request.Method)
	}

	switch m.Request.URL.Type {
	case URLMatchURLPattern, URLMatchURLPathPattern:
		if _, err := regexp.Compile(m.Request.URL.Value); err != nil {
			result.addError("request."+string(m.Request.URL.Type), "invalid regular expression: %v", err)
		}
	}

	validateMatcherMap(result, "request.queryParameters", m.Request.QueryParameters)
	validateMatcherMap(result, "request.headers", m.Request.Headers)
	validateMatcherMap(result, "request.cookies", m.Request.Cookies)
	for i, bp := range m.Request.BodyPatterns {
		validateOperand(result, fmt.Sprintf("request.bodyPatterns.%d", i), bp)
	}

	if n := m.Response.BodyCount(); n > 1 {
		result.addError("response", "only one of body, jsonBody and base64Body may be set (found %d)", n)
	}
	if _, isString := m.Response.JSONBody.(string); isString {
		result.addWarning("response.jsonBody", "jsonBody is a string, it was probably saved from an unparsable draft")
	}
	if m.Metadata != nil && m.Metadata.ResponseType != "" && !m.Metadata.ResponseType.Valid() {
		result.addError("metadata.responseType", "unknown response type %q", m.Metadata.ResponseType)
	}

	return result
}

func validateMatcherMap(result *ValidationResult, path string, matchers map[string]Matcher) {
	keys := make([]string, 0, len(matchers))
	for k := range matchers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		m := matchers[k]
		if !m.Type.IsParamType() {
			result.addError(path+"."+k, "%s is only supported in body patterns", m.Type)
			continue
		}
		validateOperand(result, path+"."+k, m)
	}
}

func validateOperand(result *ValidationResult, path string, m Matcher) {
	switch m.Type {
	case MatchMatches, MatchDoesNotMatch:
		if _, err := regexp.Compile(m.OperandString()); err != nil {
			result.addError(path, "invalid regular expression: %v", err)
		}
	case MatchMatchesJSONPath:
		if expr, ok := m.Operand.(string); ok {
			if _, err := jp.ParseString(expr); err != nil {
				result.addError(path, "invalid JSONPath %q: %v", expr, err)
			}
		}
	case MatchEqualToXML, MatchMatchesXML:
		if doc, ok := m.Operand.(string); ok {
			if err := etree.NewDocument().ReadFromString(doc); err != nil {
				result.addWarning(path, "operand is not well-formed XML: %v", err)
			}
		}
	case MatchAbsent:
	default:
		if m.Operand == nil {
			result.addError(path, "%s requires a value", m.Type)
		}
	}
}

// lineColumn converts a byte offset into a 1-based line and column.
func lineColumn(data []byte, offset int64) (line, col int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	before := data[:offset]
	line = bytes.Count(before, []byte("\n")) + 1
	col = int(offset) - bytes.LastIndexByte(before, '\n')
	return line, col
}
