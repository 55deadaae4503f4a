package modrinth

import (
	"net/url"
	"strings"
)

// DefaultSiteURL is the public site that download page links point to.
const DefaultSiteURL = "https://" + Domain

// downloadAnchor is the fragment that opens the download section of a
// project page.
const downloadAnchor = "#download"

// BuildDownloadPageURL builds the project page link with the version and
// loader filters preselected.
//
// Example:
//
//	BuildDownloadPageURL(DefaultSiteURL, "sodium", "1.21.8", "fabric")
//	// https://modrinth.com/mod/sodium?version=1.21.8&loader=fabric#download
func BuildDownloadPageURL(siteURL, id, gameVersion, loader string) string {
	if siteURL == "" {
		siteURL = DefaultSiteURL
	}
	base := strings.TrimSuffix(siteURL, "/") + "/mod/" + url.PathEscape(id)
	query := "version=" + url.QueryEscape(gameVersion) + "&loader=" + url.QueryEscape(loader)
	return base + "?" + query + downloadAnchor
}
