// Package curl renders stub mappings as cURL commands that would hit them,
// and reads cURL commands back.
package curl

import (
	"regexp"
	"sort"
	"strings"

	"github.com/getmockd/stubdesk/pkg/mapping"
	"github.com/getmockd/stubdesk/pkg/server"
	"github.com/getmockd/stubdesk/pkg/util"
)

// LineSeparator joins the parts of a generated command.
const LineSeparator = " \\\n"

// DefaultContentType is sent with body-carrying methods when the mapping does
// not match on a content type.
const DefaultContentType = "application/json"

// paramOperandTypes are the match types whose operand can be sent as a query
// parameter, header or cookie value, in probe order.
var paramOperandTypes = []mapping.MatchType{
	mapping.MatchEqualTo,
	mapping.MatchMatches,
	mapping.MatchContains,
}

// bodyOperandTypes are the match types whose operand can be sent as the
// request body, in probe order.
var bodyOperandTypes = []mapping.MatchType{
	mapping.MatchEqualToJSON,
	mapping.MatchContains,
	mapping.MatchMatchesJSONPath,
	mapping.MatchEqualTo,
	mapping.MatchMatches,
	mapping.MatchMatchesXPath,
	mapping.MatchMatchesXML,
	mapping.MatchEqualToXML,
}

var templateVar = regexp.MustCompile(`\{[^}]+\}`)

// Generate builds a cURL command for a request the mapping would match.
// Matchers without a usable literal operand are left out. A nil server sends
// the request to server.DefaultBaseURL.
func Generate(m *mapping.StubMapping, srv *server.Server) string {
	if m == nil {
		return ""
	}

	method := m.Request.Method
	if method == mapping.MethodAny || method == "" {
		method = mapping.MethodGet
	}

	target := m.URL()
	if m.Request.URL.Type == mapping.URLMatchURLPathTemplate {
		target = templateVar.ReplaceAllString(target, "1")
	}
	base, path := splitURL(target)
	if base == "" {
		base = srv.BaseURL()
	}

	fullURL := base + path
	if query := queryString(m.Request.QueryParameters); query != "" {
		fullURL += "?" + query
	}

	parts := []string{"curl --location --request " + string(method) + " '" + fullURL + "'"}
	parts = append(parts, headerParts(m.Request.Headers)...)
	if method.HasBody() && !hasHeader(m.Request.Headers, "content-type") {
		parts = append(parts, "--header 'Content-Type: "+DefaultContentType+"'")
	}
	if cookie := cookieHeader(m.Request.Cookies); cookie != "" {
		parts = append(parts, "--header 'Cookie: "+cookie+"'")
	}
	if method.HasBody() {
		if body, ok := bodyValue(m.Request.BodyPatterns); ok {
			parts = append(parts, "--data '"+EscapeSingleQuotes(util.BeautifyJSON(body))+"'")
		}
	}

	return strings.Join(parts, LineSeparator)
}

// splitURL separates an absolute URL into its scheme-and-host base and path.
// Relative paths get a leading slash and an empty base.
func splitURL(u string) (base, path string) {
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		segments := strings.Split(u, "/")
		return strings.Join(segments[:3], "/"), "/" + strings.Join(segments[3:], "/")
	}
	if strings.HasPrefix(u, "/") {
		return "", u
	}
	return "", "/" + u
}

// extract returns the operand of the first probed type the matcher uses.
func extract(m mapping.Matcher, types []mapping.MatchType) (string, bool) {
	for _, t := range types {
		if m.Type == t {
			return m.OperandString(), true
		}
	}
	return "", false
}

func sortedKeys(params map[string]mapping.Matcher) []string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func queryString(params map[string]mapping.Matcher) string {
	var pairs []string
	for _, key := range sortedKeys(params) {
		if value, ok := extract(params[key], paramOperandTypes); ok {
			pairs = append(pairs, EncodeURIComponent(key)+"="+EncodeURIComponent(value))
		}
	}
	return strings.Join(pairs, "&")
}

func headerParts(headers map[string]mapping.Matcher) []string {
	var parts []string
	for _, key := range sortedKeys(headers) {
		if value, ok := extract(headers[key], paramOperandTypes); ok {
			parts = append(parts, "--header '"+key+": "+value+"'")
		}
	}
	return parts
}

func hasHeader(headers map[string]mapping.Matcher, name string) bool {
	for key := range headers {
		if strings.EqualFold(key, name) {
			return true
		}
	}
	return false
}

func cookieHeader(cookies map[string]mapping.Matcher) string {
	var pairs []string
	for _, key := range sortedKeys(cookies) {
		if value, ok := extract(cookies[key], paramOperandTypes); ok {
			pairs = append(pairs, key+"="+value)
		}
	}
	return strings.Join(pairs, "; ")
}

// bodyValue takes the operand of the first body pattern only.
func bodyValue(patterns []mapping.Matcher) (string, bool) {
	if len(patterns) == 0 {
		return "", false
	}
	return extract(patterns[0], bodyOperandTypes)
}

// EscapeSingleQuotes makes s safe inside a single-quoted shell word.
func EscapeSingleQuotes(s string) string {
	return strings.ReplaceAll(s, "'", `'\''`)
}

// EncodeURIComponent percent-encodes s, leaving only letters, digits and
// -_.!~*'() unescaped.
func EncodeURIComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isURIUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isURIUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}
