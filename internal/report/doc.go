// Package report renders resolution and bundle results as text, Markdown
// or JSON.
//
// # Formats
//
//	r := report.NewRenderer(report.FormatText, true) // colored terminal output
//	fmt.Print(r.RenderBundle(result, "/home/me/Downloads/mods-1.21.8-fabric.zip"))
//
// Supported formats:
//   - Text (optionally colored with lipgloss)
//   - Markdown
//   - JSON
package report
