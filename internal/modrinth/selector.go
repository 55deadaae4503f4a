package modrinth

import (
	"strings"

	"github.com/handiism/modrinth-downloader/internal/model"
)

// SelectVersion picks the version to download from the catalog's answer.
//
// It returns the first version whose type matches channel, ignoring case.
// When none matches it returns the first
// version as given by the catalog. This fallback is intended: a batch
// asking for "release" of a project that only publishes betas still gets
// the newest beta. It returns false only for an empty slice.
func SelectVersion(versions []model.Version, channel string) (model.Version, bool) {
	if len(versions) == 0 {
		return model.Version{}, false
	}
	for _, v := range versions {
		if strings.EqualFold(v.VersionType, channel) {
			return v, true
		}
	}
	return versions[0], true
}

// SelectFile picks the file to download from a version.
//
// The primary file wins wherever it sits in the list; otherwise the first
// file is used, by the same leniency as SelectVersion.
func SelectFile(files []model.File) (model.File, bool) {
	if len(files) == 0 {
		return model.File{}, false
	}
	for _, f := range files {
		if f.Primary {
			return f, true
		}
	}
	return files[0], true
}
