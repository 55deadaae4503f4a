package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/handiism/modrinth-downloader/internal/model"
)

// DefaultUserAgent identifies the tool to the Modrinth API, which asks
// clients to send a unique User-Agent.
const DefaultUserAgent = "handiism/modrinth-downloader"

// Client wraps HTTP operations with Modrinth-specific configuration.
//
// Client provides:
//   - Configured User-Agent and Accept headers for catalog requests
//   - Timeout handling
//   - JSON decoding of catalog responses
//   - In-memory file download with progress tracking
//
// Example usage:
//
//	client := NewClient(DefaultUserAgent, 60*time.Second)
//
//	// Query the catalog
//	var versions []dto.JSONVersion
//	err := client.GetJSON(ctx, apiURL, &versions)
//
//	// Download a file with progress
//	data, err := client.DownloadBytes(ctx, fileURL, func(written, total int64) {
//	    fmt.Printf("%d / %d bytes\n", written, total)
//	})
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a new HTTP client.
//
// A zero timeout leaves the transport default in place (no timeout).
func NewClient(userAgent string, timeout time.Duration) *Client {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: userAgent,
	}
}

// StatusError is returned for responses outside the 2xx range.
type StatusError struct {
	Code   int
	Status string
	URL    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Status)
}

// AsNetworkError converts any error returned by Client into a
// *model.NetworkError, keeping the status code of a StatusError.
func AsNetworkError(err error) *model.NetworkError {
	var se *StatusError
	if errors.As(err, &se) {
		return &model.NetworkError{Status: se.Code, Message: se.Error(), Err: err}
	}
	return model.NewNetworkError(err)
}

// ProgressWriter wraps a writer to track download progress.
//
// Use this to monitor large downloads by providing an OnUpdate callback
// that receives the current bytes written and total expected bytes.
//
// Example:
//
//	pw := &ProgressWriter{
//	    Writer: &buf,
//	    Total:  contentLength,
//	    OnUpdate: func(written, total int64) {
//	        fmt.Printf("%d / %d bytes\n", written, total)
//	    },
//	}
//	io.Copy(pw, response.Body)
type ProgressWriter struct {
	// Writer is the underlying writer to write data to.
	Writer io.Writer

	// Total is the expected total bytes (from Content-Length header).
	// It is -1 when the server did not announce a length.
	Total int64

	// Written is the current number of bytes written.
	Written int64

	// OnUpdate is called after each Write with current progress.
	// Parameters are (bytesWritten, totalExpected).
	OnUpdate func(written, total int64)
}

// Write implements io.Writer, tracking progress and calling OnUpdate.
func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.Written += int64(n)
	if pw.OnUpdate != nil {
		pw.OnUpdate(pw.Written, pw.Total)
	}
	return n, err
}

// GetJSON performs a GET request with an "Accept: application/json"
// header and decodes the response body into v.
//
// Returns an error if:
//   - The request fails
//   - The response status is not 2xx (a *StatusError)
//   - The body is not valid JSON for v
//
// Example:
//
//	var versions []dto.JSONVersion
//	err := client.GetJSON(ctx, "https://api.modrinth.com/v2/project/sodium/version", &versions)
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return &StatusError{Code: resp.StatusCode, Status: resp.Status, URL: url}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// DownloadBytes downloads a file and returns its bytes in memory.
//
// The request is a plain GET without catalog headers; file hosts treat it
// like any browser download. onProgress may be nil.
//
// Example:
//
//	data, err := client.DownloadBytes(ctx, file.URL, nil)
func (c *Client) DownloadBytes(ctx context.Context, url string, onProgress func(written, total int64)) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status, URL: url}
	}

	var buf bytes.Buffer
	if resp.ContentLength > 0 {
		buf.Grow(int(resp.ContentLength))
	}

	var writer io.Writer = &buf
	if onProgress != nil {
		writer = &ProgressWriter{
			Writer:   &buf,
			Total:    resp.ContentLength,
			OnUpdate: onProgress,
		}
	}

	if _, err := io.Copy(writer, resp.Body); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}
