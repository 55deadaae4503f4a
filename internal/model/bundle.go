package model

// BundleState is the phase of an archive run.
type BundleState int

const (
	StateIdle BundleState = iota
	StateResolvingVersions
	StateDownloadingFiles
	StateCompressing
	StateReady
	StateFailed
)

// String returns a human-readable name for the state.
func (s BundleState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateResolvingVersions:
		return "resolving versions"
	case StateDownloadingFiles:
		return "downloading files"
	case StateCompressing:
		return "compressing"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s BundleState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Terminal reports whether no further transition can happen.
func (s BundleState) Terminal() bool {
	return s == StateReady || s == StateFailed
}

// FileFailure records a file that could not be added to the archive.
type FileFailure struct {
	Identifier string `json:"identifier"`
	FileName   string `json:"file_name"`
	Err        error  `json:"-"`
	Message    string `json:"error"`
}

// BundleResult is the product of one archive run.
//
// On StateReady, Data holds the finalized archive and FileName its
// deterministic name. On StateFailed, Data is nil and Err says why.
type BundleResult struct {
	RunID    string        `json:"run_id"`
	State    BundleState   `json:"state"`
	FileName string        `json:"file_name,omitempty"`
	Data     []byte        `json:"-"`
	Added    []string      `json:"added"`
	Failures []FileFailure `json:"failures,omitempty"`
	Lines    []LineResult  `json:"lines"`
	Err      error         `json:"-"`
}

// Size returns the archive size in bytes.
func (r *BundleResult) Size() int64 {
	return int64(len(r.Data))
}
