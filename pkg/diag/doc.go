// Package diag defines the diagnostic model shared by the processor, the
// editors it drives and the host toolchain.
//
// # Data model
//
// Diagnostic is an immutable value:
//
//   - Severity – Info, Warning or Error.
//   - Descriptor – the stable identity (ID, title, message format, category).
//   - Location – file/line/column the finding points at; may be empty.
//   - Message – the descriptor format applied to the report arguments.
//   - Properties – optional string tags (phase, editor) for tooling.
//
// Descriptors are collected in a Table that is built once and passed by
// reference. DefaultTable holds the descriptors the processor itself reports.
//
// # Emitting diagnostics
//
// Producers push through a Reporter. The host supplies a Sink, which is a
// Reporter that can also be polled. Bag is the in-memory Sink used by tools
// and tests; SinkFuncs adapts a pair of host callbacks.
//
// Editor code that wants to surface a fully custom diagnostic from deep inside
// a step returns Raise(d). The processor forwards such diagnostics verbatim
// instead of wrapping them in a generic processing error.
package diag
