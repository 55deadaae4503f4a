package download

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	ioutils "github.com/handiism/modrinth-downloader/internal/io"
	"github.com/handiism/modrinth-downloader/internal/model"
)

// SaveBundle writes a ready archive into the configured output directory
// and returns its path. When settings.WriteChecksum is set, a BLAKE3
// sidecar named "<archive>.b3" is written next to it.
func (m *Manager) SaveBundle(ctx context.Context, result *model.BundleResult) (string, error) {
	if result == nil || result.State != model.StateReady {
		return "", fmt.Errorf("%w: bundle is not ready", model.ErrArchiveEmpty)
	}

	path := filepath.Join(m.settings.OutputDir, result.FileName)
	if err := ioutils.WriteFile(ctx, path, result.Data); err != nil {
		return "", fmt.Errorf("writing archive: %w", err)
	}
	m.logger.Info("archive written", zap.String("run_id", result.RunID), zap.String("file", path))

	if m.settings.WriteChecksum {
		sidecar := path + ".b3"
		line := ioutils.ChecksumLine(result.FileName, result.Data)
		if err := ioutils.WriteFile(ctx, sidecar, []byte(line)); err != nil {
			return path, fmt.Errorf("writing checksum: %w", err)
		}
		m.logger.Debug("checksum written", zap.String("run_id", result.RunID), zap.String("file", sidecar))
	}

	m.emit(ProgressEvent{Message: fmt.Sprintf("Saved %s", path), Level: LevelSuccess, State: model.StateReady})
	return path, nil
}
