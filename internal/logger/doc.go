// Package logger wraps zap to provide:
//   - a global sugared logger writing a console encoding to stderr,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing and configuration,
//   - shorthand functions (Infof, ErrorKV, etc.) that take the logger from a context.
//
// Standard output is left to the version string itself, so scripts can capture
// it while diagnostics still reach the terminal.
package logger
