// Package util provides shared helpers used across stubdesk packages.
//
// ParseJSON, PrettyJSON and BeautifyJSON decode JSON with exact numbers and
// pretty print it with a 4-space indent, falling back to the raw string when
// the input does not parse. BeautifyXML indents XML on a best-effort basis.
// TruncateBody caps bodies so they can be logged safely.
package util
