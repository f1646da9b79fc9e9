package mapping

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ohler55/ojg/jp"

	"github.com/getmockd/stubdesk/pkg/util"
)

// FieldError is a validation message attached to one form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidateForm reports problems in a form being edited. It never fails and
// never modifies the form; the messages are meant to be shown next to fields.
func ValidateForm(fv FormValues) []FieldError {
	var errs []FieldError
	add := func(field, format string, args ...any) {
		errs = append(errs, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if !fv.Priority.IsAuto() {
		if _, err := fv.Priority.Int(); err != nil {
			add("priority", "priority must be an integer or %q", PriorityAuto)
		}
	}

	if fv.Method != "" && !fv.Method.Valid() {
		add("method", "unsupported method %q", fv.Method)
	}

	if !fv.URLMatchType.Valid() {
		add("urlMatchType", "unknown URL match type %q", fv.URLMatchType)
	} else if fv.URLMatchType != URLMatchAny && strings.TrimSpace(fv.URL) == "" {
		add("url", "url is required for %s matching", fv.URLMatchType)
	} else if fv.URLMatchType == URLMatchURLPattern || fv.URLMatchType == URLMatchURLPathPattern {
		if _, err := regexp.Compile(fv.URL); err != nil {
			add("url", "invalid regular expression: %v", err)
		}
	}

	validateParamRows(&errs, "queryParameters", fv.QueryParameters)
	validateParamRows(&errs, "requestHeaders", fv.RequestHeaders)
	validateParamRows(&errs, "requestCookies", fv.RequestCookies)

	for i, row := range fv.RequestBodyPatterns {
		field := fmt.Sprintf("requestBodyPatterns[%d].value", i)
		if msg := checkOperand(row.MatchType, strings.TrimSpace(row.Value)); msg != "" {
			add(field, "%s", msg)
		}
	}

	if fv.ResponseStatus < 100 || fv.ResponseStatus > 599 {
		add("responseStatus", "status must be between 100 and 599")
	}

	if fv.ResponseType != "" && !fv.ResponseType.Valid() {
		add("responseType", "unknown response type %q", fv.ResponseType)
	}
	if fv.ResponseType == ResponseTypeJSON {
		if text := effectiveJSONBody(fv); strings.TrimSpace(text) != "" && !strings.Contains(text, "{{") {
			if _, err := util.ParseJSON(text); err != nil {
				add("responseJsonBody", "invalid JSON: %v", err)
			}
		}
	}

	for i, row := range fv.ResponseHeaders {
		if strings.TrimSpace(row.Key) == "" {
			add(fmt.Sprintf("responseHeaders[%d].key", i), "header name is required")
		}
	}

	return errs
}

func validateParamRows(errs *[]FieldError, group string, rows []ParamRow) {
	for i, row := range rows {
		if strings.TrimSpace(row.Key) == "" {
			*errs = append(*errs, FieldError{
				Field:   fmt.Sprintf("%s[%d].key", group, i),
				Message: "name is required",
			})
		}
		if !row.MatchType.IsParamType() {
			*errs = append(*errs, FieldError{
				Field:   fmt.Sprintf("%s[%d].matchType", group, i),
				Message: fmt.Sprintf("unsupported match type %q", row.MatchType),
			})
			continue
		}
		if msg := checkOperand(row.MatchType, row.Value); msg != "" {
			*errs = append(*errs, FieldError{
				Field:   fmt.Sprintf("%s[%d].value", group, i),
				Message: msg,
			})
		}
	}
}

// checkOperand validates a matcher operand typed as text.
func checkOperand(t MatchType, value string) string {
	switch t {
	case MatchMatches, MatchDoesNotMatch:
		if _, err := regexp.Compile(value); err != nil {
			return "invalid regular expression: " + err.Error()
		}
	case MatchEqualToJSON:
		if value == "" {
			return "JSON value is required"
		}
		if _, err := util.ParseJSON(value); err != nil {
			return "invalid JSON: " + err.Error()
		}
	case MatchMatchesJSONPath:
		if value == "" {
			return "JSONPath expression is required"
		}
		if strings.HasPrefix(value, "{") {
			// object form: {"expression": "...", ...}
			return ""
		}
		if _, err := jp.ParseString(value); err != nil {
			return "invalid JSONPath: " + err.Error()
		}
	case MatchAbsent:
	case "":
		return "match type is required"
	default:
		if !t.Valid() {
			return fmt.Sprintf("unsupported match type %q", t)
		}
	}
	return ""
}
