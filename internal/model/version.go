package model

import "time"

// Version is a published version of a project in the catalog.
//
// Only VersionType and Files take part in selection; the remaining
// fields are carried for reports and logging.
type Version struct {
	ID            string
	ProjectID     string
	Name          string
	VersionNumber string
	VersionType   string
	GameVersions  []string
	Loaders       []string
	DatePublished time.Time
	Files         []File
}

// File is one downloadable artifact of a Version.
type File struct {
	Filename string
	URL      string
	Primary  bool
	Size     int64

	// Hashes maps algorithm names ("sha1", "sha512") to hex digests.
	Hashes map[string]string
}

// ResolvedEntry is the download target selected for one input line.
//
// It exists only for the duration of a single batch.
type ResolvedEntry struct {
	Identifier    string            `json:"identifier"`
	FileName      string            `json:"file_name"`
	DownloadURL   string            `json:"download_url"`
	Note          string            `json:"note,omitempty"`
	VersionNumber string            `json:"version_number,omitempty"`
	Size          int64             `json:"size,omitempty"`
	Hashes        map[string]string `json:"-"`
}
