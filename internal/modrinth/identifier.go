package modrinth

import (
	"net/url"
	"strings"
)

// Domain is the catalog's site domain. Links on the domain itself or on
// any of its subdomains are accepted.
const Domain = "modrinth.com"

// projectTypes are path prefixes that precede the identifier in project
// URLs, as in https://modrinth.com/mod/sodium.
var projectTypes = map[string]bool{
	"mod":          true,
	"plugin":       true,
	"datapack":     true,
	"resourcepack": true,
	"shader":       true,
	"modpack":      true,
}

// ExtractIdentifier returns the project identifier (slug) a Modrinth URL
// refers to.
//
// The input may carry a trailing comment. The first token must be an
// absolute URL on modrinth.com or one of its subdomains. The identifier is
// the first path segment, or the second one when the first is a project
// type such as "mod". Query strings and fragments are ignored.
//
// ExtractIdentifier has no side effects and returns false instead of an
// error for anything it cannot use.
//
// Example:
//
//	id, ok := ExtractIdentifier("https://modrinth.com/mod/sodium?version=1.21.8")
//	// id = "sodium", ok = true
func ExtractIdentifier(raw string) (string, bool) {
	token := stripComment(raw)
	if token == "" {
		return "", false
	}

	u, err := url.Parse(token)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}

	if !isCatalogHost(u.Hostname()) {
		return "", false
	}

	var parts []string
	for _, p := range strings.Split(u.Path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}

	idx := 0
	if len(parts) > 0 && projectTypes[strings.ToLower(parts[0])] {
		idx = 1
	}
	if idx >= len(parts) {
		return "", false
	}
	return parts[idx], true
}

func isCatalogHost(host string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	return host == Domain || strings.HasSuffix(host, "."+Domain)
}
