// Package http provides an HTTP client configured for the Modrinth API
// and the file hosts it links to.
//
// The Client in this package handles:
//   - User-Agent and Accept headers for catalog requests
//   - JSON decoding of catalog responses
//   - In-memory file downloads with progress tracking
//   - Timeout handling
//
// # Basic Usage
//
//	client := http.NewClient(http.DefaultUserAgent, 60*time.Second)
//
//	// Query the catalog
//	var versions []dto.JSONVersion
//	err := client.GetJSON(ctx, url, &versions)
//
//	// Download a file into memory
//	data, err := client.DownloadBytes(ctx, fileURL, nil)
//
// # Errors
//
// Responses outside the 2xx range are returned as *StatusError.
// AsNetworkError turns any client error into a *model.NetworkError so
// callers can record it as an outcome.
package http
