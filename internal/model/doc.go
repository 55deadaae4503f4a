// Package model defines the core data structures used throughout
// the modrinth-downloader application.
//
// # Input
//
// InputLine is one user-supplied line: a Modrinth project URL with an
// optional trailing comment. Criteria holds the game version, loader and
// release channel applied to the whole batch:
//
//	crit := model.Criteria{GameVersion: "1.21.8", Loader: "fabric", Channel: "release"}
//	if err := crit.Validate(); err != nil {
//	    return err
//	}
//
// # Catalog Records
//
// Version and File mirror the records returned by the Modrinth v2 API.
// They are fetched fresh for every request and never mutated.
//
// # Outcomes
//
// Every input line produces exactly one Outcome. An Outcome is a tagged
// value: its Kind says which of the fields are meaningful.
//
//	for _, res := range results {
//	    switch res.Outcome.Kind {
//	    case model.OutcomeResolved:
//	        fmt.Println(res.Outcome.Entry.FileName)
//	    case model.OutcomeNetworkError:
//	        fmt.Println(res.Outcome.Err)
//	    }
//	}
//
// # Bundles
//
// BundleResult is the product of one archive run, with its BundleState
// following Idle → ResolvingVersions → DownloadingFiles → Compressing →
// Ready (or Failed).
package model
