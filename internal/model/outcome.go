package model

// OutcomeKind tags the result of resolving one input line.
type OutcomeKind int

const (
	// OutcomeInvalid means the line is not a Modrinth project URL.
	OutcomeInvalid OutcomeKind = iota

	// OutcomeNoMatchingVersion means the catalog had nothing for the criteria.
	OutcomeNoMatchingVersion

	// OutcomeNoPrimaryFile means the chosen version has no usable file.
	OutcomeNoPrimaryFile

	// OutcomeNetworkError means the catalog query failed.
	OutcomeNetworkError

	// OutcomeResolved means a download target was found.
	OutcomeResolved
)

// String returns a short, stable label for the kind.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeInvalid:
		return "invalid"
	case OutcomeNoMatchingVersion:
		return "no-matching-version"
	case OutcomeNoPrimaryFile:
		return "no-primary-file"
	case OutcomeNetworkError:
		return "network-error"
	case OutcomeResolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k OutcomeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Outcome is the tagged result of one input line.
//
// Which fields are set depends on Kind:
//   - OutcomeInvalid: RawURL
//   - OutcomeNoMatchingVersion, OutcomeNoPrimaryFile: Identifier
//   - OutcomeNetworkError: Identifier, Err
//   - OutcomeResolved: Identifier, Entry
type Outcome struct {
	Kind       OutcomeKind    `json:"kind"`
	RawURL     string         `json:"url,omitempty"`
	Identifier string         `json:"identifier,omitempty"`
	Entry      *ResolvedEntry `json:"entry,omitempty"`
	Err        error          `json:"-"`
}

// Invalid returns the outcome for an unparseable line.
func Invalid(rawURL string) Outcome {
	return Outcome{Kind: OutcomeInvalid, RawURL: rawURL}
}

// NoMatchingVersion returns the outcome for a project without a version
// matching the criteria.
func NoMatchingVersion(id string) Outcome {
	return Outcome{Kind: OutcomeNoMatchingVersion, Identifier: id}
}

// NoPrimaryFile returns the outcome for a version without a usable file.
func NoPrimaryFile(id string) Outcome {
	return Outcome{Kind: OutcomeNoPrimaryFile, Identifier: id}
}

// NetworkFailure returns the outcome for a failed catalog query.
func NetworkFailure(id string, err error) Outcome {
	return Outcome{Kind: OutcomeNetworkError, Identifier: id, Err: NewNetworkError(err)}
}

// Resolved returns the outcome for a successfully resolved line.
func Resolved(entry ResolvedEntry) Outcome {
	return Outcome{Kind: OutcomeResolved, Identifier: entry.Identifier, Entry: &entry}
}

// Error returns the sentinel or network error describing a failed
// outcome, or nil when the outcome is resolved.
func (o Outcome) Error() error {
	switch o.Kind {
	case OutcomeInvalid:
		return ErrInvalidInput
	case OutcomeNoMatchingVersion:
		return ErrNoMatchingVersion
	case OutcomeNoPrimaryFile:
		return ErrNoPrimaryFile
	case OutcomeNetworkError:
		return o.Err
	}
	return nil
}

// Message returns the short diagnostic shown next to a failed line.
func (o Outcome) Message() string {
	if err := o.Error(); err != nil {
		return err.Error()
	}
	return ""
}

// LineResult pairs an input line with its outcome.
type LineResult struct {
	Line    InputLine `json:"line"`
	Outcome Outcome   `json:"outcome"`
}

// LinkResult is the link-mode counterpart of LineResult. No network
// access is involved in producing it.
type LinkResult struct {
	Line       InputLine `json:"line"`
	Identifier string    `json:"identifier,omitempty"`
	URL        string    `json:"url,omitempty"`
	Valid      bool      `json:"valid"`
}

// ResolvedEntries returns the entries of all resolved lines, in input order.
func ResolvedEntries(results []LineResult) []ResolvedEntry {
	var entries []ResolvedEntry
	for _, r := range results {
		if r.Outcome.Kind == OutcomeResolved && r.Outcome.Entry != nil {
			entries = append(entries, *r.Outcome.Entry)
		}
	}
	return entries
}
