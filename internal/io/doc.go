// Package ioutils provides file system and archive utilities.
//
// # File Operations
//
//	// Write data to file atomically
//	err := ioutils.WriteFile(ctx, "/path/to/mods.zip", data)
//
//	// Ensure directory exists
//	err := ioutils.EnsureDir("/path/to/new/directory")
//
// # Filename Sanitization
//
// Use SanitizeFileName to remove invalid characters from filenames:
//
//	safe := ioutils.SanitizeFileName("sodium: 0.5/fabric.jar") // "sodium_ 0.5_fabric.jar"
//
// # Archives
//
// Archive collects files in memory and compresses them in one step:
//
//	arc, err := ioutils.NewArchive(ioutils.FormatZip)
//	if err != nil {
//	    return err // format not available
//	}
//	arc.Add("sodium-0.5.13.jar", jarBytes)
//	data, err := arc.Finalize()
//
// Supported formats are zip, tar.gz and tar.xz.
//
// # Checksums
//
//	sum := ioutils.Checksum(data)             // hex BLAKE3-256
//	line := ioutils.ChecksumLine("mods.zip", data) // "<hex>  mods.zip\n"
package ioutils
