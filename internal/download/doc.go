// Package download orchestrates resolving mod links against the Modrinth
// catalog and bundling the resolved files into one archive.
//
// # Manager
//
// The Manager drives three operations over a batch of input lines:
//
//  1. BuildLinks: offline, one download page link per line
//  2. Resolve: one catalog query per line, one Outcome per line
//  3. Bundle: Resolve, then download every resolved file and pack them
//
// # Basic Usage
//
//	manager := download.NewManager(settings, func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//
//	result, err := manager.Bundle(ctx, modrinth.ParseInput(text), settings.Criteria())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if result.State == model.StateFailed {
//	    log.Fatal(result.Err)
//	}
//
// # Ordering
//
// Lines are processed one at a time in input order. A failing line or
// file never aborts the batch; it is recorded and the run moves on.
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent.
// Bundle events carry the BundleState and, while downloading, the 1-based
// index of the current file and the number of files to fetch.
package download
