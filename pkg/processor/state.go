package processor

// State is the processor lifecycle state
type State int

const (
	StateUncreated State = iota
	StateInitializing
	StateInitializationFailed
	StateInitializationSucceeded
	StateEditing
	StateEditingFailed
	StateDone
	StateUninitialized
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateUncreated:
		return "Uncreated"
	case StateInitializing:
		return "Initializing"
	case StateInitializationFailed:
		return "InitializationFailed"
	case StateInitializationSucceeded:
		return "InitializationSucceeded"
	case StateEditing:
		return "Editing"
	case StateEditingFailed:
		return "EditingFailed"
	case StateDone:
		return "Done"
	case StateUninitialized:
		return "Uninitialized"
	case StateDisposed:
		return "Disposed"
	default:
		return "Unknown"
	}
}

// Phase names recorded on processing diagnostics.
const (
	PhaseRecomputeOptions       = "RecomputeOptions"
	PhaseNotifyCompilationStart = "NotifyCompilationStart"
	PhaseEditProgram            = "EditProgram"
	PhaseNotifyCompilationEnd   = "NotifyCompilationEnd"
	PhaseNotifyEmissionStart    = "NotifyEmissionStart"
	PhaseEmit                   = "Emit"
	PhaseExtractAssembly        = "ExtractAssembly"
	PhaseEditAssembly           = "EditAssembly"
	PhaseNotifyEmissionEnd      = "NotifyEmissionEnd"
	PhasePatchAssembly          = "PatchAssembly"
)
