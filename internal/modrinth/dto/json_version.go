// Package dto holds the wire format of the Modrinth v2 API.
package dto

import (
	"time"

	"github.com/handiism/modrinth-downloader/internal/model"
)

// JSONVersion is one element of the /project/{id}/version response.
type JSONVersion struct {
	ID            string     `json:"id"`
	ProjectID     string     `json:"project_id"`
	Name          string     `json:"name"`
	VersionNumber string     `json:"version_number"`
	VersionType   string     `json:"version_type"`
	GameVersions  []string   `json:"game_versions"`
	Loaders       []string   `json:"loaders"`
	DatePublished *time.Time `json:"date_published"`
	Files         []JSONFile `json:"files"`
}

// JSONFile is a file attached to a version.
type JSONFile struct {
	Hashes   map[string]string `json:"hashes"`
	URL      string            `json:"url"`
	Filename string            `json:"filename"`
	Primary  bool              `json:"primary"`
	Size     int64             `json:"size"`
	FileType *string           `json:"file_type"`
}

// ToVersion converts JSONVersion to a model.Version.
func (jv *JSONVersion) ToVersion() model.Version {
	v := model.Version{
		ID:            jv.ID,
		ProjectID:     jv.ProjectID,
		Name:          jv.Name,
		VersionNumber: jv.VersionNumber,
		VersionType:   jv.VersionType,
		GameVersions:  jv.GameVersions,
		Loaders:       jv.Loaders,
	}
	if jv.DatePublished != nil {
		v.DatePublished = *jv.DatePublished
	}

	for _, jf := range jv.Files {
		v.Files = append(v.Files, jf.ToFile())
	}
	return v
}

// ToFile converts JSONFile to a model.File.
func (jf *JSONFile) ToFile() model.File {
	return model.File{
		Filename: jf.Filename,
		URL:      jf.URL,
		Primary:  jf.Primary,
		Size:     jf.Size,
		Hashes:   jf.Hashes,
	}
}

// ToVersions converts a whole response, preserving order.
func ToVersions(in []JSONVersion) []model.Version {
	out := make([]model.Version, 0, len(in))
	for i := range in {
		out = append(out, in[i].ToVersion())
	}
	return out
}
