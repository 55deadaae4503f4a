// Package modrinth turns user-supplied Modrinth links into download
// targets.
//
// The package covers the resolution pipeline up to, but not including,
// batch orchestration:
//
//  1. Parsing raw input lines into URL and comment (ParseInput, ParseLine)
//  2. Extracting the project identifier from a URL (ExtractIdentifier)
//  3. Querying the catalog for versions (Client.ListVersions)
//  4. Picking the version and file to download (SelectVersion, SelectFile)
//  5. Building human-navigable download page links (BuildDownloadPageURL)
//
// # Input Format
//
// One project per line, optionally followed by a comment separated by
// " — ", " # " or at least two spaces:
//
//	https://modrinth.com/mod/sodium
//	https://modrinth.com/fabric-api — core lib
//	https://modrinth.com/mod/lithium?version=1.21.8  server perf
//
// # Selection Policy
//
// SelectVersion prefers the requested release channel and otherwise falls
// back to the first version the catalog returned. SelectFile prefers the
// primary file and otherwise falls back to the first file. Both fallbacks
// are deliberate: an unknown channel or a version without a primary flag
// still yields a download.
package modrinth
