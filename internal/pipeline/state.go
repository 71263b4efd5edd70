package pipeline

// State is the phase a Generator run is in.
type State string

const (
	StateIdle               State = "idle"
	StateInitializing       State = "initializing"
	StateVerifyingProcessor State = "verifying_processor"
	StateEnsuringOutputDir  State = "ensuring_output_dir"
	StateScanning           State = "scanning"
	StateProcessing         State = "processing"
	StateSummarizing        State = "summarizing"
	StateDone               State = "done"
	StateFailed             State = "failed"
)

// Terminal reports whether a run in this state has finished.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}
