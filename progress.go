package dbpack

// ProgressEvent represents a progress update during a packing run.
type ProgressEvent struct {
	// Stage identifies the current phase of the run.
	Stage ProgressStage

	// Path is the group folder just completed, if applicable.
	Path string

	// GroupsDone is the number of group folders completed.
	GroupsDone int

	// GroupsTotal is the number of group folders in the input.
	GroupsTotal int

	// Progress is the completed fraction of the run, in [0, 1].
	Progress float64
}

// ProgressStage identifies the current phase of a run.
type ProgressStage uint8

// Progress stages of a packing run.
const (
	// StageEnumerating indicates the group folders have been listed.
	StageEnumerating ProgressStage = iota

	// StagePacking indicates a group folder has been packed.
	StagePacking

	// StageMetadata indicates the reserved entries are being written.
	StageMetadata

	// StageDone indicates the run succeeded.
	StageDone
)

// String returns the string representation of the stage.
func (s ProgressStage) String() string {
	switch s {
	case StageEnumerating:
		return "enumerating"
	case StagePacking:
		return "packing"
	case StageMetadata:
		return "metadata"
	case StageDone:
		return "done"
	default:
		return "unknown"
	}
}

// ProgressFunc receives progress updates. It is called from the packing
// goroutine and should return quickly.
type ProgressFunc func(ProgressEvent)
