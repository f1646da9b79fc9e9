// Package logging configures the structured loggers used across stubdesk.
//
// It wraps log/slog. Console output is text or JSON; an optional log file
// receives JSON records and is rotated by size.
//
//	logger, closer := logging.Open(logging.Config{
//	    Level: logging.ParseLevel("debug"),
//	    File:  "/var/log/stubdesk.log",
//	})
//	defer closer.Close()
//
// Components accept a *slog.Logger through an option and fall back to Nop.
package logging
