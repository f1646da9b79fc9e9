// Package cli implements the stubdesk command-line interface.
//
// Commands read a mapping document from a file argument or stdin and print
// their result to stdout. With --json, only the JSON result is written to
// stdout; diagnostics go to stderr.
package cli
