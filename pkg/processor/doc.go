// Package processor drives editors through the compilation lifecycle.
//
// # Lifecycle
//
//	Uncreated → Initializing → InitializationFailed | InitializationSucceeded
//	          → Editing → EditingFailed | Done → Uninitialized | Disposed
//
// TryInitialize replays deferred annotation construction failures, then
// initializes editors one by one over a list that grows as editors return
// children (spliced directly after their parent). A failing editor, or any
// error diagnostic present in the sink after an editor initializes, aborts
// the pass. Success is sticky; failure is never retried automatically.
//
// TryEdit runs the named phases in order:
//
//	RecomputeOptions        (only when a recompute pipeline is stored)
//	NotifyCompilationStart
//	EditProgram
//	NotifyCompilationEnd
//	NotifyEmissionStart
//	Emit
//	ExtractAssembly
//	EditAssembly
//	NotifyEmissionEnd
//	PatchAssembly           (only when the assembly pipeline replaced the symbol)
//
// # Error containment
//
// Nothing raised by plugin or host code escapes the public entry points:
// errors and panics become diagnostics pushed to the sink and the call
// reports failure. Joined errors are reported one diagnostic per leaf, and a
// *diag.Error anywhere in a chain is forwarded verbatim.
//
// A Processor is driven by a single goroutine and builds one program at a
// time.
package processor
