package curl

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/getmockd/stubdesk/pkg/mapping"
	"github.com/getmockd/stubdesk/pkg/util"
)

// ErrNotCurl is returned by Parse for input that is not a curl invocation.
var ErrNotCurl = errors.New("not a valid cURL command")

// Header is one --header argument.
type Header struct {
	Name  string
	Value string
}

// Command is the request described by a cURL command line.
type Command struct {
	Method  string
	URL     string
	Headers []Header
	Body    string
	HasBody bool
}

// Header returns the first header with the given name, compared case-insensitively.
func (c *Command) Header(name string) (string, bool) {
	for _, h := range c.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}

// flagsWithArgs are flags whose argument is skipped.
var flagsWithArgs = map[string]bool{
	"-o": true, "--output": true,
	"-A": true, "--user-agent": true,
	"-e": true, "--referer": true,
	"-c": true, "--cookie-jar": true,
	"-T": true, "--upload-file": true,
	"--connect-timeout": true,
	"-m":                true, "--max-time": true,
}

// Parse reads a cURL command line such as the ones Generate produces.
func Parse(cmd string) (*Command, error) {
	tokens := tokenize(strings.TrimSpace(cmd))
	if len(tokens) == 0 || tokens[0] != "curl" {
		return nil, ErrNotCurl
	}

	result := &Command{Method: "GET"}
	explicitMethod := false
	getData := false
	user := ""

	next := func(idx *int) (string, bool) {
		if *idx+1 >= len(tokens) {
			return "", false
		}
		*idx++
		return tokens[*idx], true
	}

	for idx := 1; idx < len(tokens); idx++ {
		token := tokens[idx]

		switch {
		case token == "-X" || token == "--request":
			if v, ok := next(&idx); ok {
				result.Method = strings.ToUpper(v)
				explicitMethod = true
			}

		case token == "-H" || token == "--header":
			if v, ok := next(&idx); ok {
				name, value, found := strings.Cut(v, ":")
				if found {
					result.Headers = append(result.Headers, Header{
						Name:  strings.TrimSpace(name),
						Value: strings.TrimSpace(value),
					})
				}
			}

		case token == "-b" || token == "--cookie":
			if v, ok := next(&idx); ok {
				result.Headers = append(result.Headers, Header{Name: "Cookie", Value: v})
			}

		case token == "-d" || token == "--data" || token == "--data-raw" || token == "--data-binary" || token == "--json":
			if v, ok := next(&idx); ok {
				result.Body = v
				result.HasBody = true
				if token == "--json" {
					result.Headers = append(result.Headers, Header{Name: "Content-Type", Value: DefaultContentType})
				}
			}

		case token == "-u" || token == "--user":
			if v, ok := next(&idx); ok {
				user = v
			}

		case token == "-G" || token == "--get":
			result.Method = "GET"
			explicitMethod = true
			getData = true

		case token == "-I" || token == "--head":
			result.Method = "HEAD"
			explicitMethod = true

		case strings.HasPrefix(token, "-"):
			if flagsWithArgs[token] {
				idx++
			}

		default:
			if result.URL == "" {
				result.URL = token
			}
		}
	}

	if result.URL == "" {
		return nil, fmt.Errorf("no URL found in cURL command")
	}
	if getData && result.HasBody {
		sep := "?"
		if strings.Contains(result.URL, "?") {
			sep = "&"
		}
		result.URL += sep + result.Body
		result.Body, result.HasBody = "", false
	}
	if result.HasBody && !explicitMethod {
		result.Method = "POST"
	}
	if user != "" {
		encoded := base64.StdEncoding.EncodeToString([]byte(user))
		result.Headers = append(result.Headers, Header{Name: "Authorization", Value: "Basic " + encoded})
	}
	return result, nil
}

// tokenize splits a command line into words the way a POSIX shell would for
// the quoting curl commands use: single quotes are literal, bare words honor
// backslash escapes, inside double quotes a backslash only escapes $ ` " and
// itself, and backslash-newline continues a line.
func tokenize(cmd string) []string {
	var tokens []string
	var current strings.Builder
	inWord := false
	inQuote := rune(0)
	escaped := false

	flush := func() {
		if inWord {
			tokens = append(tokens, current.String())
			current.Reset()
			inWord = false
		}
	}

	for _, r := range cmd {
		if escaped {
			escaped = false
			if r == '\n' {
				continue
			}
			if inQuote == '"' && !strings.ContainsRune("$`\"\\", r) {
				current.WriteRune('\\')
			}
			current.WriteRune(r)
			inWord = true
			continue
		}

		switch inQuote {
		case '\'':
			if r == '\'' {
				inQuote = 0
			} else {
				current.WriteRune(r)
			}
			continue
		case '"':
			switch r {
			case '"':
				inQuote = 0
			case '\\':
				escaped = true
			default:
				current.WriteRune(r)
			}
			continue
		}

		switch r {
		case '\\':
			escaped = true
		case '"', '\'':
			inQuote = r
			inWord = true
		case ' ', '\t', '\n', '\r':
			flush()
		default:
			current.WriteRune(r)
			inWord = true
		}
	}
	flush()

	return tokens
}

// Mapping converts the command into a stub mapping that matches it: the URL
// path, each query parameter, header and cookie as equalTo, and the body as
// equalToJson when it is JSON or equalTo otherwise.
func (c *Command) Mapping() (*mapping.StubMapping, error) {
	u, err := url.Parse(c.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", c.URL, err)
	}

	path := u.Path
	if path == "" {
		path = "/"
	}

	m := &mapping.StubMapping{
		Request: mapping.Request{
			Method: mapping.Method(c.Method),
			URL:    mapping.URLMatcher{Type: mapping.URLMatchURLPath, Value: path},
		},
		Response: mapping.Response{Status: 200},
		Metadata: &mapping.Metadata{ResponseType: mapping.ResponseTypeJSON},
	}

	query := u.Query()
	if len(query) > 0 {
		m.Request.QueryParameters = make(map[string]mapping.Matcher, len(query))
		keys := make([]string, 0, len(query))
		for k := range query {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			m.Request.QueryParameters[k] = mapping.NewMatcher(mapping.MatchEqualTo, query.Get(k))
		}
	}

	for _, h := range c.Headers {
		if strings.EqualFold(h.Name, "Cookie") {
			for _, pair := range strings.Split(h.Value, ";") {
				name, value, found := strings.Cut(strings.TrimSpace(pair), "=")
				if !found || name == "" {
					continue
				}
				if m.Request.Cookies == nil {
					m.Request.Cookies = make(map[string]mapping.Matcher)
				}
				m.Request.Cookies[name] = mapping.NewMatcher(mapping.MatchEqualTo, value)
			}
			continue
		}
		if m.Request.Headers == nil {
			m.Request.Headers = make(map[string]mapping.Matcher)
		}
		m.Request.Headers[h.Name] = mapping.NewMatcher(mapping.MatchEqualTo, h.Value)
	}

	if c.HasBody {
		pattern := mapping.NewMatcher(mapping.MatchEqualTo, c.Body)
		if parsed, err := util.ParseJSON(c.Body); err == nil {
			switch parsed.(type) {
			case map[string]any, []any:
				pattern = mapping.NewMatcher(mapping.MatchEqualToJSON, parsed)
			}
		}
		m.Request.BodyPatterns = []mapping.Matcher{pattern}
	}

	return m, nil
}
