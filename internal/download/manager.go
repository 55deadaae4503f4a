package download

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/handiism/modrinth-downloader/internal/config"
	"github.com/handiism/modrinth-downloader/internal/http"
	ioutils "github.com/handiism/modrinth-downloader/internal/io"
	"github.com/handiism/modrinth-downloader/internal/model"
	"github.com/handiism/modrinth-downloader/internal/modrinth"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a resolution or bundle progress update.
//
// State, Index, Total and FileName describe where a bundle run stands;
// Index is 1-based and only meaningful in StateDownloadingFiles.
type ProgressEvent struct {
	Message  string
	Level    ProgressLevel
	State    model.BundleState
	Index    int
	Total    int
	FileName string
}

// Progress is a snapshot of the current run, safe to read from another
// goroutine via Manager.GetProgress.
type Progress struct {
	State    model.BundleState
	Index    int
	Total    int
	FileName string
	Added    int
	Failed   int

	// Bytes received for the current file; BytesTotal is -1 when the
	// host sent no Content-Length.
	BytesWritten int64
	BytesTotal   int64
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithCatalog replaces the catalog client built from settings.
func WithCatalog(c Catalog) Option {
	return func(m *Manager) { m.catalog = c }
}

// WithFetcher replaces the file downloader built from settings.
func WithFetcher(f Fetcher) Option {
	return func(m *Manager) { m.fetcher = f }
}

// Manager coordinates resolution and bundling of a batch of input lines.
//
// All work is sequential: one catalog query or one file download at a
// time, in input order. A Manager runs one batch at a time.
type Manager struct {
	settings *config.Settings
	catalog  Catalog
	fetcher  Fetcher
	logger   *zap.Logger

	onProgress func(ProgressEvent)

	progress Progress
	mu       sync.RWMutex
}

// NewManager creates a new Manager.
func NewManager(settings *config.Settings, onProgress func(ProgressEvent), opts ...Option) *Manager {
	httpClient := settings.NewHTTPClient()

	m := &Manager{
		settings:   settings,
		catalog:    settings.NewCatalog(httpClient),
		fetcher:    httpClient,
		logger:     zap.NewNop(),
		onProgress: onProgress,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// BuildLinks produces a download page link for every line. No network
// access is involved; invalid lines are reported with Valid set to false.
func (m *Manager) BuildLinks(lines []model.InputLine, crit model.Criteria) ([]model.LinkResult, error) {
	if len(lines) == 0 {
		return nil, model.ErrEmptyInput
	}

	results := make([]model.LinkResult, 0, len(lines))
	for _, line := range lines {
		id, ok := modrinth.ExtractIdentifier(line.RawURL)
		if !ok {
			results = append(results, model.LinkResult{Line: line})
			m.emit(ProgressEvent{Message: fmt.Sprintf("Invalid input: %s", line.RawURL), Level: LevelError})
			continue
		}
		results = append(results, model.LinkResult{
			Line:       line,
			Identifier: id,
			URL:        modrinth.BuildDownloadPageURL(m.settings.SiteURL, id, crit.GameVersion, crit.Loader),
			Valid:      true,
		})
	}
	return results, nil
}

// Resolve finds the file to download for every line.
//
// The result has one entry per line, in input order. Failures are
// recorded as outcomes and never stop the batch; the only error returned
// is model.ErrEmptyInput.
func (m *Manager) Resolve(ctx context.Context, lines []model.InputLine, crit model.Criteria) ([]model.LineResult, error) {
	if len(lines) == 0 {
		return nil, model.ErrEmptyInput
	}

	results := make([]model.LineResult, 0, len(lines))
	for _, line := range lines {
		outcome := m.resolveLine(ctx, line, crit)
		results = append(results, model.LineResult{Line: line, Outcome: outcome})
		m.reportOutcome(line, outcome)
	}
	return results, nil
}

func (m *Manager) resolveLine(ctx context.Context, line model.InputLine, crit model.Criteria) model.Outcome {
	id, ok := modrinth.ExtractIdentifier(line.RawURL)
	if !ok {
		return model.Invalid(line.RawURL)
	}

	m.emit(ProgressEvent{Message: fmt.Sprintf("Fetching versions: %s", id), Level: LevelVerbose, State: m.state()})

	versions, err := m.catalog.ListVersions(ctx, id, crit)
	if err != nil {
		return model.NetworkFailure(id, http.AsNetworkError(err))
	}

	version, ok := modrinth.SelectVersion(versions, crit.Channel)
	if !ok {
		return model.NoMatchingVersion(id)
	}

	file, ok := modrinth.SelectFile(version.Files)
	if !ok || file.URL == "" {
		return model.NoPrimaryFile(id)
	}

	fileName := file.Filename
	if fileName == "" {
		fileName = id + ".jar"
	}

	return model.Resolved(model.ResolvedEntry{
		Identifier:    id,
		FileName:      fileName,
		DownloadURL:   file.URL,
		Note:          line.Comment,
		VersionNumber: version.VersionNumber,
		Size:          file.Size,
		Hashes:        file.Hashes,
	})
}

func (m *Manager) reportOutcome(line model.InputLine, o model.Outcome) {
	switch o.Kind {
	case model.OutcomeInvalid:
		m.logger.Warn("invalid input line", zap.String("url", line.RawURL))
		m.emit(ProgressEvent{Message: fmt.Sprintf("Invalid input: %s", line.RawURL), Level: LevelError, State: m.state()})
	case model.OutcomeNoMatchingVersion:
		m.logger.Info("no matching version", zap.String("identifier", o.Identifier))
		m.emit(ProgressEvent{Message: fmt.Sprintf("%s: no compatible version", o.Identifier), Level: LevelError, State: m.state()})
	case model.OutcomeNoPrimaryFile:
		m.logger.Info("no primary file", zap.String("identifier", o.Identifier))
		m.emit(ProgressEvent{Message: fmt.Sprintf("%s: no primary file found", o.Identifier), Level: LevelError, State: m.state()})
	case model.OutcomeNetworkError:
		m.logger.Warn("catalog query failed", zap.String("identifier", o.Identifier), zap.Error(o.Err))
		m.emit(ProgressEvent{Message: fmt.Sprintf("%s: error: %v", o.Identifier, o.Err), Level: LevelError, State: m.state()})
	case model.OutcomeResolved:
		m.logger.Debug("resolved",
			zap.String("identifier", o.Identifier),
			zap.String("file", o.Entry.FileName),
			zap.String("version", o.Entry.VersionNumber))
		m.emit(ProgressEvent{Message: fmt.Sprintf("%s → %s", o.Identifier, o.Entry.FileName), Level: LevelInfo, State: m.state()})
	}
}

// Bundle resolves every line, downloads each resolved file and packs the
// successful downloads into one archive.
//
// The run moves through ResolvingVersions, DownloadingFiles and
// Compressing and ends in Ready or Failed. Failed is not an error: the
// returned result carries the reason in Err along with every per-line and
// per-file failure. Bundle only returns an error for an empty batch
// (model.ErrEmptyInput) or an unavailable archive format
// (model.ErrDependencyMissing), both detected before any request is made.
func (m *Manager) Bundle(ctx context.Context, lines []model.InputLine, crit model.Criteria) (*model.BundleResult, error) {
	format, err := ioutils.ParseFormat(m.settings.ArchiveFormat)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrDependencyMissing, err)
	}
	archive, err := ioutils.NewArchive(format)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrDependencyMissing, err)
	}
	if len(lines) == 0 {
		return nil, model.ErrEmptyInput
	}

	result := &model.BundleResult{RunID: uuid.NewString(), State: model.StateIdle}
	logger := m.logger.With(zap.String("run_id", result.RunID))
	m.resetProgress()

	m.setState(model.StateResolvingVersions, 0, 0, "")
	m.emit(ProgressEvent{Message: "Resolving versions...", Level: LevelInfo, State: model.StateResolvingVersions})

	resolved, err := m.Resolve(ctx, lines, crit)
	if err != nil {
		return nil, err
	}
	result.Lines = resolved

	entries := model.ResolvedEntries(resolved)
	if len(entries) == 0 {
		logger.Warn("nothing to bundle", zap.Int("lines", len(lines)))
		return m.fail(result, fmt.Errorf("%w: no file resolved", model.ErrArchiveEmpty)), nil
	}

	total := len(entries)
	for i, entry := range entries {
		index := i + 1
		m.setState(model.StateDownloadingFiles, index, total, entry.FileName)
		m.emit(ProgressEvent{
			Message:  fmt.Sprintf("Downloading %d/%d – %s", index, total, entry.FileName),
			Level:    LevelInfo,
			State:    model.StateDownloadingFiles,
			Index:    index,
			Total:    total,
			FileName: entry.FileName,
		})

		data, err := m.fetch(ctx, entry)
		if err != nil {
			logger.Warn("file download failed",
				zap.String("identifier", entry.Identifier),
				zap.String("file", entry.FileName),
				zap.Error(err))
			result.Failures = append(result.Failures, model.FileFailure{
				Identifier: entry.Identifier,
				FileName:   entry.FileName,
				Err:        err,
				Message:    err.Error(),
			})
			m.countFile(false)
			m.emit(ProgressEvent{
				Message:  fmt.Sprintf("Failed for %s (%v)", entry.FileName, err),
				Level:    LevelError,
				State:    model.StateDownloadingFiles,
				Index:    index,
				Total:    total,
				FileName: entry.FileName,
			})
			continue
		}

		stored := archive.Add(entry.FileName, data)
		m.countFile(true)
		logger.Debug("file added", zap.String("identifier", entry.Identifier), zap.String("file", stored), zap.Int("bytes", len(data)))
		m.emit(ProgressEvent{
			Message:  fmt.Sprintf("Downloaded: %s", stored),
			Level:    LevelVerbose,
			State:    model.StateDownloadingFiles,
			Index:    index,
			Total:    total,
			FileName: stored,
		})
	}

	if archive.Len() == 0 {
		logger.Warn("no file could be downloaded", zap.Int("failures", len(result.Failures)))
		return m.fail(result, fmt.Errorf("%w: no file added", model.ErrArchiveEmpty)), nil
	}

	m.setState(model.StateCompressing, total, total, "")
	m.emit(ProgressEvent{Message: "Compressing...", Level: LevelInfo, State: model.StateCompressing})

	data, err := archive.Finalize()
	if err != nil {
		logger.Error("finalizing archive", zap.Error(err))
		return m.fail(result, err), nil
	}

	result.State = model.StateReady
	result.Data = data
	result.Added = archive.Names()
	result.FileName = crit.ArchiveBaseName() + "." + format.Extension()
	m.setState(model.StateReady, total, total, "")

	logger.Info("archive ready",
		zap.String("file", result.FileName),
		zap.Int("files", len(result.Added)),
		zap.Int("failures", len(result.Failures)),
		zap.Int("bytes", len(data)))
	m.emit(ProgressEvent{
		Message: fmt.Sprintf("Archive ready: %s (%d files)", result.FileName, len(result.Added)),
		Level:   LevelSuccess,
		State:   model.StateReady,
		Index:   total,
		Total:   total,
	})
	return result, nil
}

// fetch downloads one entry and checks it against the published digest.
func (m *Manager) fetch(ctx context.Context, entry model.ResolvedEntry) ([]byte, error) {
	data, err := m.fetcher.DownloadBytes(ctx, entry.DownloadURL, m.trackBytes)
	if err != nil {
		return nil, http.AsNetworkError(err)
	}
	if m.settings.VerifyHashes {
		if err := verifyHash(data, entry.Hashes); err != nil {
			return nil, err
		}
	}
	return data, nil
}

func (m *Manager) fail(result *model.BundleResult, err error) *model.BundleResult {
	result.State = model.StateFailed
	result.Err = err

	p := m.GetProgress()
	m.setState(model.StateFailed, p.Index, p.Total, "")

	m.emit(ProgressEvent{Message: fmt.Sprintf("Failed: %v", err), Level: LevelError, State: model.StateFailed, Index: p.Index, Total: p.Total})
	return result
}

// GetProgress returns the current progress snapshot.
func (m *Manager) GetProgress() Progress {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.progress
}

func (m *Manager) state() model.BundleState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.progress.State
}

func (m *Manager) resetProgress() {
	m.mu.Lock()
	m.progress = Progress{}
	m.mu.Unlock()
}

func (m *Manager) setState(state model.BundleState, index, total int, fileName string) {
	m.mu.Lock()
	m.progress.State = state
	m.progress.Index = index
	m.progress.Total = total
	m.progress.FileName = fileName
	m.progress.BytesWritten = 0
	m.progress.BytesTotal = 0
	m.mu.Unlock()
}

// trackBytes records byte progress of the file being downloaded.
func (m *Manager) trackBytes(written, total int64) {
	m.mu.Lock()
	m.progress.BytesWritten = written
	m.progress.BytesTotal = total
	m.mu.Unlock()
}

func (m *Manager) countFile(added bool) {
	m.mu.Lock()
	if added {
		m.progress.Added++
	} else {
		m.progress.Failed++
	}
	m.mu.Unlock()
}

func (m *Manager) emit(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}
