// Package state persists the derived version for downstream packaging steps.
//
// The FileRepository writes a single VERSION=<version> line to disk, and
// WriterSink writes the same line to any io.Writer. Both satisfy Sink, the
// interface the versioner service depends on.
package state
