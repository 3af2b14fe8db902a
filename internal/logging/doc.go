// Package logging provides structured slog logging with file rotation for
// kbsearch. With --debug, JSON logs are written to ~/.kbsearch/logs/ and can
// be read back with `kbsearch logs`.
//
// The MCP server must never write logs to stdout, so server mode logs to the
// file only.
package logging
