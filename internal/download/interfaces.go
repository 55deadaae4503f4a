package download

import (
	"context"

	"github.com/handiism/modrinth-downloader/internal/model"
)

// Catalog lists the versions of a project. *modrinth.Client implements it.
type Catalog interface {
	ListVersions(ctx context.Context, id string, crit model.Criteria) ([]model.Version, error)
}

// Fetcher downloads a file into memory. *http.Client implements it.
type Fetcher interface {
	DownloadBytes(ctx context.Context, url string, onProgress func(written, total int64)) ([]byte, error)
}
