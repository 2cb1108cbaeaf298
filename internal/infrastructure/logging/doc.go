// Package logging provides lockcore's structured logger.
//
// It is a thin wrapper over log/slog: format, level and destination
// come from the logging section of config.yaml, and every entry carries
// service and version attributes. Domain packages receive it through
// their own small Logger interfaces rather than importing this package.
//
// Access codes, override codes and JWT secrets must never be logged in
// full; redact before logging (see the emergency package's code
// redaction for the pattern).
package logging
