package modrinth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/handiism/modrinth-downloader/internal/http"
	"github.com/handiism/modrinth-downloader/internal/model"
	"github.com/handiism/modrinth-downloader/internal/modrinth/dto"
)

// DefaultAPIURL is the base URL of the Modrinth v2 API.
const DefaultAPIURL = "https://api.modrinth.com/v2"

// Client queries the Modrinth catalog.
//
// Every call performs exactly one request; responses are neither cached
// nor retried.
type Client struct {
	http    *http.Client
	baseURL string
}

// NewClient creates a catalog client for the API at baseURL.
func NewClient(httpClient *http.Client, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// ListVersions returns the versions of project id that match the game
// version and loader of crit, in the order the catalog returns them.
//
// Any failure, whether a non-2xx status, an undecodable body or a
// transport error, is returned as a *model.NetworkError.
func (c *Client) ListVersions(ctx context.Context, id string, crit model.Criteria) ([]model.Version, error) {
	endpoint, err := c.versionsURL(id, crit)
	if err != nil {
		return nil, model.NewNetworkError(err)
	}

	var versions []dto.JSONVersion
	if err := c.http.GetJSON(ctx, endpoint, &versions); err != nil {
		return nil, http.AsNetworkError(err)
	}
	return dto.ToVersions(versions), nil
}

// versionsURL builds the version listing query. Both filters are
// single-element JSON arrays, URL-escaped.
func (c *Client) versionsURL(id string, crit model.Criteria) (string, error) {
	loaders, err := jsonArray(crit.Loader)
	if err != nil {
		return "", err
	}
	gameVersions, err := jsonArray(crit.GameVersion)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/project/%s/version?loaders=%s&game_versions=%s",
		c.baseURL,
		url.PathEscape(id),
		url.QueryEscape(loaders),
		url.QueryEscape(gameVersions),
	), nil
}

func jsonArray(value string) (string, error) {
	b, err := json.Marshal([]string{value})
	if err != nil {
		return "", err
	}
	return string(b), nil
}
