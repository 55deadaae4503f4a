package ioutils

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/ulikunitz/xz"
)

// Format is an archive container and compression combination.
type Format string

const (
	FormatZip   Format = "zip"
	FormatTarGz Format = "tar.gz"
	FormatTarXz Format = "tar.xz"
)

// ErrUnsupportedFormat is returned for a format without a registered writer.
var ErrUnsupportedFormat = errors.New("unsupported archive format")

// Injectable constructors, replaced in tests.
var (
	xzNewWriter        = xz.NewWriter
	gzipNewWriterLevel = gzip.NewWriterLevel
)

// writers maps every available format to its encoder.
var writers = map[Format]func(w io.Writer, entries []entry, modTime time.Time) error{
	FormatZip:   writeZip,
	FormatTarGz: writeTarGz,
	FormatTarXz: writeTarXz,
}

// ParseFormat resolves a format name such as "zip" or "tar.xz". Names are
// matched case-insensitively and may carry a leading dot.
func ParseFormat(name string) (Format, error) {
	f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), "."))
	if f == "txz" {
		f = FormatTarXz
	}
	if f == "tgz" {
		f = FormatTarGz
	}
	if _, ok := writers[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
	return f, nil
}

// Extension returns the file extension without the leading dot.
func (f Format) Extension() string {
	return string(f)
}

// Available reports whether a writer exists for the format.
func (f Format) Available() bool {
	_, ok := writers[f]
	return ok
}

type entry struct {
	name string
	data []byte
}

// Archive is an in-memory archive under construction.
//
// Entries are kept in insertion order. Adding a second entry with the same
// name replaces the first one in place. Archive is not safe for concurrent
// use.
type Archive struct {
	format  Format
	entries []entry
	index   map[string]int
	modTime time.Time
}

// NewArchive creates an empty archive. It fails with ErrUnsupportedFormat
// when no writer is available for format.
func NewArchive(format Format) (*Archive, error) {
	if !format.Available() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return &Archive{
		format:  format,
		index:   make(map[string]int),
		modTime: time.Now(),
	}, nil
}

// Add stores data under a flat, sanitized version of name and returns
// the name actually used.
func (a *Archive) Add(name string, data []byte) string {
	stored := entryName(name)
	if i, ok := a.index[stored]; ok {
		a.entries[i].data = data
		return stored
	}
	a.index[stored] = len(a.entries)
	a.entries = append(a.entries, entry{name: stored, data: data})
	return stored
}

// Len returns the number of entries.
func (a *Archive) Len() int {
	return len(a.entries)
}

// Names returns entry names in insertion order.
func (a *Archive) Names() []string {
	names := make([]string, len(a.entries))
	for i, e := range a.entries {
		names[i] = e.name
	}
	return names
}

// Finalize compresses all entries into a single blob.
func (a *Archive) Finalize() ([]byte, error) {
	write, ok := writers[a.format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, a.format)
	}

	var buf bytes.Buffer
	if err := write(&buf, a.entries, a.modTime); err != nil {
		return nil, fmt.Errorf("writing %s archive: %w", a.format, err)
	}
	return buf.Bytes(), nil
}

// entryName keeps only the base name so a hostile file name cannot escape
// the archive root on extraction.
func entryName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = SanitizeFileName(path.Base(name))
	if name == "" || name == "." || name == ".." {
		name = "file"
	}
	return name
}

func writeZip(w io.Writer, entries []entry, modTime time.Time) error {
	zw := zip.NewWriter(w)
	for _, e := range entries {
		header := &zip.FileHeader{
			Name:     e.name,
			Method:   zip.Deflate,
			Modified: modTime,
		}
		fw, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}
		if _, err := fw.Write(e.data); err != nil {
			return err
		}
	}
	return zw.Close()
}

func writeTarGz(w io.Writer, entries []entry, modTime time.Time) error {
	gz, err := gzipNewWriterLevel(w, gzip.BestCompression)
	if err != nil {
		return err
	}
	if err := writeTar(gz, entries, modTime); err != nil {
		gz.Close()
		return err
	}
	return gz.Close()
}

func writeTarXz(w io.Writer, entries []entry, modTime time.Time) error {
	xw, err := xzNewWriter(w)
	if err != nil {
		return err
	}
	if err := writeTar(xw, entries, modTime); err != nil {
		xw.Close()
		return err
	}
	return xw.Close()
}

func writeTar(w io.Writer, entries []entry, modTime time.Time) error {
	tw := tar.NewWriter(w)
	for _, e := range entries {
		header := &tar.Header{
			Name:     e.name,
			Mode:     0644,
			Size:     int64(len(e.data)),
			ModTime:  modTime,
			Typeflag: tar.TypeReg,
		}
		if err := tw.WriteHeader(header); err != nil {
			return err
		}
		if _, err := tw.Write(e.data); err != nil {
			return err
		}
	}
	return tw.Close()
}
