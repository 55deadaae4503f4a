package model

import (
	"fmt"
	"strings"
)

// InputLine is one parsed line of user input.
//
// RawURL is the first token of the line, Comment the optional trailing
// annotation (empty when the line had none). InputLine is a value type and
// is never modified after parsing.
type InputLine struct {
	RawURL  string `json:"url"`
	Comment string `json:"comment,omitempty"`
}

// String returns the line as the user would have typed it.
func (l InputLine) String() string {
	if l.Comment == "" {
		return l.RawURL
	}
	return l.RawURL + " — " + l.Comment
}

// Criteria selects which version of every project is resolved.
//
// GameVersion and Loader are sent to the catalog as exact filters.
// Channel is the preferred release channel ("release", "beta", "alpha");
// an empty or unknown channel falls back to the newest returned version.
type Criteria struct {
	GameVersion string `json:"game_version" yaml:"game_version"`
	Loader      string `json:"loader" yaml:"loader"`
	Channel     string `json:"channel" yaml:"channel"`
}

// Validate reports whether the criteria can be sent to the catalog.
func (c Criteria) Validate() error {
	if strings.TrimSpace(c.GameVersion) == "" {
		return fmt.Errorf("%w: game version is required", ErrInvalidCriteria)
	}
	if strings.TrimSpace(c.Loader) == "" {
		return fmt.Errorf("%w: loader is required", ErrInvalidCriteria)
	}
	return nil
}

// ArchiveBaseName returns the archive file name without extension,
// e.g. "mods-1.21.8-fabric".
func (c Criteria) ArchiveBaseName() string {
	return fmt.Sprintf("mods-%s-%s", c.GameVersion, c.Loader)
}
