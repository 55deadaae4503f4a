package download

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/handiism/modrinth-downloader/internal/config"
	"github.com/handiism/modrinth-downloader/internal/http"
	"github.com/handiism/modrinth-downloader/internal/model"
	"github.com/handiism/modrinth-downloader/internal/modrinth"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

type fakeCatalog struct {
	versions map[string][]model.Version
	errs     map[string]error
	calls    []string
}

func (c *fakeCatalog) ListVersions(_ context.Context, id string, _ model.Criteria) ([]model.Version, error) {
	c.calls = append(c.calls, id)
	if err, ok := c.errs[id]; ok {
		return nil, err
	}
	return c.versions[id], nil
}

type fakeFetcher struct {
	files map[string][]byte
	errs  map[string]error
	calls []string
}

func (f *fakeFetcher) DownloadBytes(_ context.Context, url string, onProgress func(written, total int64)) ([]byte, error) {
	f.calls = append(f.calls, url)
	if err, ok := f.errs[url]; ok {
		return nil, err
	}
	data, ok := f.files[url]
	if !ok {
		return nil, &http.StatusError{Code: 404, Status: "404 Not Found", URL: url}
	}
	if onProgress != nil {
		onProgress(int64(len(data)), int64(len(data)))
	}
	return data, nil
}

// snapshotFetcher reports partial progress and captures the manager's
// snapshot while the download is still in flight.
type snapshotFetcher struct {
	manager   *Manager
	snapshots []Progress
}

func (f *snapshotFetcher) DownloadBytes(_ context.Context, _ string, onProgress func(written, total int64)) ([]byte, error) {
	if onProgress == nil {
		return nil, errors.New("no progress callback")
	}
	onProgress(5, 10)
	f.snapshots = append(f.snapshots, f.manager.GetProgress())
	onProgress(10, 10)
	return []byte("0123456789"), nil
}

type eventRecorder struct {
	mu     sync.Mutex
	events []ProgressEvent
}

func (r *eventRecorder) record(e ProgressEvent) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *eventRecorder) states() []model.BundleState {
	r.mu.Lock()
	defer r.mu.Unlock()
	var states []model.BundleState
	for _, e := range r.events {
		if len(states) == 0 || states[len(states)-1] != e.State {
			states = append(states, e.State)
		}
	}
	return states
}

func release(id, file, url string) model.Version {
	return model.Version{
		ID:            id,
		VersionNumber: "1.0.0",
		VersionType:   "release",
		Files:         []model.File{{Filename: file, URL: url, Primary: true}},
	}
}

func lines(raw ...string) []model.InputLine {
	out := make([]model.InputLine, 0, len(raw))
	for _, r := range raw {
		out = append(out, model.InputLine{RawURL: r})
	}
	return out
}

var crit = model.Criteria{GameVersion: "1.21.8", Loader: "fabric", Channel: "release"}

func newTestManager(t *testing.T, cat Catalog, fetch Fetcher, onProgress func(ProgressEvent)) *Manager {
	t.Helper()
	settings := config.DefaultSettings()
	return NewManager(settings, onProgress, WithCatalog(cat), WithFetcher(fetch))
}

func zipNames(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	files := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		body, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		files[f.Name] = string(body)
	}
	return files
}

func TestManager_Resolve_MixedBatch(t *testing.T) {
	cat := &fakeCatalog{
		versions: map[string][]model.Version{
			"sodium": {release("v1", "sodium-0.5.13.jar", "https://cdn.example/sodium.jar")},
			"iris":   nil,
			"nofile": {{ID: "v9", VersionType: "release", Files: nil}},
		},
		errs: map[string]error{
			"lithium": &http.StatusError{Code: 500, Status: "500 Internal Server Error"},
		},
	}
	m := newTestManager(t, cat, &fakeFetcher{}, nil)

	input := []model.InputLine{
		{RawURL: "https://modrinth.com/mod/sodium", Comment: "rendering"},
		{RawURL: "not a url"},
		{RawURL: "https://modrinth.com/mod/iris"},
		{RawURL: "https://modrinth.com/mod/lithium"},
		{RawURL: "https://modrinth.com/mod/nofile"},
	}

	results, err := m.Resolve(context.Background(), input, crit)
	require.NoError(t, err)
	require.Len(t, results, len(input))

	var kinds []model.OutcomeKind
	for i, r := range results {
		assert.Equal(t, input[i], r.Line, "line %d out of order", i)
		kinds = append(kinds, r.Outcome.Kind)
	}
	want := []model.OutcomeKind{
		model.OutcomeResolved,
		model.OutcomeInvalid,
		model.OutcomeNoMatchingVersion,
		model.OutcomeNetworkError,
		model.OutcomeNoPrimaryFile,
	}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("outcome kinds mismatch (-want +got):\n%s", diff)
	}

	entry := results[0].Outcome.Entry
	require.NotNil(t, entry)
	assert.Equal(t, "sodium-0.5.13.jar", entry.FileName)
	assert.Equal(t, "rendering", entry.Note)

	var netErr *model.NetworkError
	require.ErrorAs(t, results[3].Outcome.Err, &netErr)
	assert.Equal(t, 500, netErr.Status)
	assert.Equal(t, "HTTP 500", results[3].Outcome.Message())

	assert.Equal(t, []string{"sodium", "iris", "lithium", "nofile"}, cat.calls, "invalid lines must not reach the catalog")
}

func TestManager_Resolve_Empty(t *testing.T) {
	m := newTestManager(t, &fakeCatalog{}, &fakeFetcher{}, nil)
	_, err := m.Resolve(context.Background(), nil, crit)
	assert.ErrorIs(t, err, model.ErrEmptyInput)
}

func TestManager_Resolve_FilenameFallback(t *testing.T) {
	cat := &fakeCatalog{versions: map[string][]model.Version{
		"sodium": {release("v1", "", "https://cdn.example/x")},
		"iris":   {release("v2", "iris.jar", "")},
	}}
	m := newTestManager(t, cat, &fakeFetcher{}, nil)

	results, err := m.Resolve(context.Background(), lines("https://modrinth.com/mod/sodium", "https://modrinth.com/mod/iris"), crit)
	require.NoError(t, err)

	require.Equal(t, model.OutcomeResolved, results[0].Outcome.Kind)
	assert.Equal(t, "sodium.jar", results[0].Outcome.Entry.FileName)
	assert.Equal(t, model.OutcomeNoPrimaryFile, results[1].Outcome.Kind)
}

func TestManager_Resolve_Cancelled(t *testing.T) {
	cat := &fakeCatalog{errs: map[string]error{"sodium": context.Canceled}}
	m := newTestManager(t, cat, &fakeFetcher{}, nil)

	results, err := m.Resolve(context.Background(), lines("https://modrinth.com/mod/sodium"), crit)
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeNetworkError, results[0].Outcome.Kind)
	assert.ErrorIs(t, results[0].Outcome.Err, context.Canceled)
}

func TestManager_BuildLinks(t *testing.T) {
	m := newTestManager(t, &fakeCatalog{}, &fakeFetcher{}, nil)

	got, err := m.BuildLinks(lines("https://modrinth.com/mod/sodium", "garbage"), crit)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.True(t, got[0].Valid)
	assert.Equal(t, "sodium", got[0].Identifier)
	assert.Equal(t, "https://modrinth.com/mod/sodium?version=1.21.8&loader=fabric#download", got[0].URL)
	assert.False(t, got[1].Valid)
	assert.Empty(t, got[1].URL)

	_, err = m.BuildLinks(nil, crit)
	assert.ErrorIs(t, err, model.ErrEmptyInput)
}

func TestManager_Bundle_PartialSuccess(t *testing.T) {
	cat := &fakeCatalog{versions: map[string][]model.Version{
		"sodium":  {release("v1", "sodium.jar", "https://cdn.example/sodium.jar")},
		"lithium": {release("v2", "lithium.jar", "https://cdn.example/lithium.jar")},
		"iris":    {release("v3", "iris.jar", "https://cdn.example/iris.jar")},
	}}
	fetch := &fakeFetcher{
		files: map[string][]byte{
			"https://cdn.example/sodium.jar": []byte("sodium bytes"),
			"https://cdn.example/iris.jar":   []byte("iris bytes"),
		},
	}
	rec := &eventRecorder{}
	m := newTestManager(t, cat, fetch, rec.record)

	result, err := m.Bundle(context.Background(), lines(
		"https://modrinth.com/mod/sodium",
		"https://modrinth.com/mod/lithium",
		"nope",
		"https://modrinth.com/mod/iris",
	), crit)
	require.NoError(t, err)

	assert.Equal(t, model.StateReady, result.State)
	assert.Equal(t, "mods-1.21.8-fabric.zip", result.FileName)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, []string{"sodium.jar", "iris.jar"}, result.Added)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "lithium.jar", result.Failures[0].FileName)
	assert.Equal(t, "HTTP 404", result.Failures[0].Message)
	require.Len(t, result.Lines, 4)

	want := map[string]string{"sodium.jar": "sodium bytes", "iris.jar": "iris bytes"}
	if diff := cmp.Diff(want, zipNames(t, result.Data)); diff != "" {
		t.Errorf("archive contents mismatch (-want +got):\n%s", diff)
	}

	wantStates := []model.BundleState{
		model.StateResolvingVersions,
		model.StateDownloadingFiles,
		model.StateCompressing,
		model.StateReady,
	}
	if diff := cmp.Diff(wantStates, rec.states()); diff != "" {
		t.Errorf("state sequence mismatch (-want +got):\n%s", diff)
	}

	p := m.GetProgress()
	assert.Equal(t, model.StateReady, p.State)
	assert.Equal(t, 2, p.Added)
	assert.Equal(t, 1, p.Failed)
}

func TestManager_Bundle_DownloadIndices(t *testing.T) {
	cat := &fakeCatalog{versions: map[string][]model.Version{
		"a": {release("v1", "a.jar", "u/a")},
		"b": {release("v2", "b.jar", "u/b")},
	}}
	fetch := &fakeFetcher{files: map[string][]byte{"u/a": []byte("a"), "u/b": []byte("b")}}
	rec := &eventRecorder{}
	m := newTestManager(t, cat, fetch, rec.record)

	_, err := m.Bundle(context.Background(), lines("https://modrinth.com/mod/a", "https://modrinth.com/mod/b"), crit)
	require.NoError(t, err)

	var announced []string
	for _, e := range rec.events {
		if e.State == model.StateDownloadingFiles && e.Level == LevelInfo {
			announced = append(announced, fmt.Sprintf("%d/%d %s", e.Index, e.Total, e.FileName))
		}
	}
	assert.Equal(t, []string{"1/2 a.jar", "2/2 b.jar"}, announced)
	assert.Equal(t, []string{"u/a", "u/b"}, fetch.calls)
}

func TestManager_Resolve_RawStatusError(t *testing.T) {
	cat := &fakeCatalog{errs: map[string]error{
		"sodium": &http.StatusError{Code: 503, Status: "503 Service Unavailable"},
	}}
	m := newTestManager(t, cat, &fakeFetcher{}, nil)

	results, err := m.Resolve(context.Background(), lines("https://modrinth.com/mod/sodium"), crit)
	require.NoError(t, err)

	var netErr *model.NetworkError
	require.ErrorAs(t, results[0].Outcome.Err, &netErr)
	assert.Equal(t, 503, netErr.Status)
	assert.Equal(t, "HTTP 503", results[0].Outcome.Message())
}

func TestManager_Bundle_TracksBytes(t *testing.T) {
	cat := &fakeCatalog{versions: map[string][]model.Version{
		"a": {release("v1", "a.jar", "u/a")},
		"b": {release("v2", "b.jar", "u/b")},
	}}
	fetch := &snapshotFetcher{}
	settings := config.DefaultSettings()
	settings.VerifyHashes = false
	m := NewManager(settings, nil, WithCatalog(cat), WithFetcher(fetch))
	fetch.manager = m

	result, err := m.Bundle(context.Background(), lines("https://modrinth.com/mod/a", "https://modrinth.com/mod/b"), crit)
	require.NoError(t, err)
	require.Equal(t, model.StateReady, result.State)

	require.Len(t, fetch.snapshots, 2)
	for i, p := range fetch.snapshots {
		assert.Equal(t, model.StateDownloadingFiles, p.State)
		assert.Equal(t, i+1, p.Index)
		assert.Equal(t, int64(5), p.BytesWritten)
		assert.Equal(t, int64(10), p.BytesTotal)
	}

	p := m.GetProgress()
	assert.Zero(t, p.BytesWritten, "byte counters reset on state change")
}

func TestManager_Bundle_NothingResolved(t *testing.T) {
	rec := &eventRecorder{}
	cat := &fakeCatalog{}
	fetch := &fakeFetcher{}
	m := newTestManager(t, cat, fetch, rec.record)

	result, err := m.Bundle(context.Background(), lines("bad", "https://modrinth.com/mod/none"), crit)
	require.NoError(t, err)

	assert.Equal(t, model.StateFailed, result.State)
	assert.ErrorIs(t, result.Err, model.ErrArchiveEmpty)
	assert.Nil(t, result.Data)
	assert.Empty(t, fetch.calls, "nothing resolved, nothing fetched")

	states := rec.states()
	assert.NotContains(t, states, model.StateDownloadingFiles)
	assert.Equal(t, model.StateFailed, states[len(states)-1])
}

func TestManager_Bundle_AllDownloadsFail(t *testing.T) {
	cat := &fakeCatalog{versions: map[string][]model.Version{
		"sodium": {release("v1", "sodium.jar", "https://cdn.example/sodium.jar")},
	}}
	fetch := &fakeFetcher{errs: map[string]error{"https://cdn.example/sodium.jar": errors.New("connection reset")}}
	m := newTestManager(t, cat, fetch, nil)

	result, err := m.Bundle(context.Background(), lines("https://modrinth.com/mod/sodium"), crit)
	require.NoError(t, err)

	assert.Equal(t, model.StateFailed, result.State)
	assert.ErrorIs(t, result.Err, model.ErrArchiveEmpty)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "connection reset", result.Failures[0].Message)
}

func TestManager_Bundle_HashMismatch(t *testing.T) {
	data := []byte("real bytes")
	sum := sha1.Sum(data)

	cat := &fakeCatalog{versions: map[string][]model.Version{
		"good": {{VersionType: "release", Files: []model.File{{Filename: "good.jar", URL: "u/good", Primary: true, Hashes: map[string]string{"sha1": hex.EncodeToString(sum[:])}}}}},
		"bad":  {{VersionType: "release", Files: []model.File{{Filename: "bad.jar", URL: "u/bad", Primary: true, Hashes: map[string]string{"sha1": strings.Repeat("0", 40)}}}}},
	}}
	fetch := &fakeFetcher{files: map[string][]byte{"u/good": data, "u/bad": data}}
	m := newTestManager(t, cat, fetch, nil)

	result, err := m.Bundle(context.Background(), lines("https://modrinth.com/mod/good", "https://modrinth.com/mod/bad"), crit)
	require.NoError(t, err)

	assert.Equal(t, []string{"good.jar"}, result.Added)
	require.Len(t, result.Failures, 1)
	assert.ErrorIs(t, result.Failures[0].Err, model.ErrHashMismatch)
}

func TestManager_Bundle_HashCheckDisabled(t *testing.T) {
	cat := &fakeCatalog{versions: map[string][]model.Version{
		"bad": {{VersionType: "release", Files: []model.File{{Filename: "bad.jar", URL: "u/bad", Primary: true, Hashes: map[string]string{"sha1": "00"}}}}},
	}}
	fetch := &fakeFetcher{files: map[string][]byte{"u/bad": []byte("x")}}
	settings := config.DefaultSettings()
	settings.VerifyHashes = false
	m := NewManager(settings, nil, WithCatalog(cat), WithFetcher(fetch))

	result, err := m.Bundle(context.Background(), lines("https://modrinth.com/mod/bad"), crit)
	require.NoError(t, err)
	assert.Equal(t, model.StateReady, result.State)
}

func TestManager_Bundle_UnknownFormat(t *testing.T) {
	settings := config.DefaultSettings()
	settings.ArchiveFormat = "rar"
	cat := &fakeCatalog{}
	m := NewManager(settings, nil, WithCatalog(cat), WithFetcher(&fakeFetcher{}))

	_, err := m.Bundle(context.Background(), lines("https://modrinth.com/mod/sodium"), crit)
	assert.ErrorIs(t, err, model.ErrDependencyMissing)
	assert.Empty(t, cat.calls)
}

func TestManager_Bundle_Empty(t *testing.T) {
	m := newTestManager(t, &fakeCatalog{}, &fakeFetcher{}, nil)
	_, err := m.Bundle(context.Background(), nil, crit)
	assert.ErrorIs(t, err, model.ErrEmptyInput)
}

func TestManager_Bundle_OverHTTP(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		switch r.URL.Path {
		case "/v2/project/sodium/version":
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintf(w, `[{"id":"b","version_number":"0.6.0","version_type":"beta","files":[{"url":"%[1]s/files/beta.jar","filename":"beta.jar","primary":true}]},
{"id":"r","version_number":"0.5.13","version_type":"release","files":[{"url":"%[1]s/files/extra.jar","filename":"extra.jar","primary":false},{"url":"%[1]s/files/sodium.jar","filename":"sodium.jar","primary":true}]}]`, server.URL)
		case "/v2/project/ghost/version":
			w.WriteHeader(nethttp.StatusNotFound)
		case "/files/sodium.jar":
			w.Write([]byte("sodium jar"))
		default:
			nethttp.NotFound(w, r)
		}
	}))
	defer server.Close()

	settings := config.DefaultSettings()
	settings.APIURL = server.URL + "/v2"
	m := NewManager(settings, nil)

	result, err := m.Bundle(context.Background(), modrinth.ParseInput(
		"https://modrinth.com/mod/sodium — rendering\nhttps://modrinth.com/mod/ghost\n",
	), crit)
	require.NoError(t, err)

	require.Equal(t, model.StateReady, result.State)
	assert.Equal(t, map[string]string{"sodium.jar": "sodium jar"}, zipNames(t, result.Data))

	require.Len(t, result.Lines, 2)
	assert.Equal(t, "0.5.13", result.Lines[0].Outcome.Entry.VersionNumber)
	assert.Equal(t, "rendering", result.Lines[0].Outcome.Entry.Note)
	assert.Equal(t, model.OutcomeNetworkError, result.Lines[1].Outcome.Kind)
	assert.Equal(t, "HTTP 404", result.Lines[1].Outcome.Message())
}
