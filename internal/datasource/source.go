// Package datasource resolves command-line source arguments into readable
// sources and loads them, several at a time, into one flat item list.
//
// File formats are parsed by the loader package; SQLite databases are read
// here.
package datasource

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/vanderheijden86/arbor/pkg/loader"
)

// ErrUnsupportedSource is returned for paths whose format cannot be determined.
var ErrUnsupportedSource = errors.New("unsupported source")

// sqliteMagic opens every SQLite 3 database file.
var sqliteMagic = []byte("SQLite format 3\x00")

// DataSource is a resolved source of flat items.
type DataSource struct {
	// Format selects the reader.
	Format loader.Format `json:"format"`
	// Path is the file path as given.
	Path string `json:"path"`
	// Table is the SQLite table to read. Ignored for other formats.
	Table string `json:"table,omitempty"`
	// ModTime is the last modification time of the source
	ModTime time.Time `json:"mod_time"`
	// Size is the file size in bytes
	Size int64 `json:"size"`
}

// String returns a human-readable description of the source
func (s DataSource) String() string {
	return fmt.Sprintf("%s (%s, %d bytes, mod=%s)", s.Path, s.Format, s.Size, s.ModTime.Format(time.RFC3339))
}

// Detect stats path and classifies it. The extension decides the format;
// files without a known extension are accepted when they carry the SQLite
// header.
func Detect(path string) (DataSource, error) {
	info, err := os.Stat(path)
	if err != nil {
		return DataSource{}, fmt.Errorf("cannot access source: %w", err)
	}
	if info.IsDir() {
		return DataSource{}, fmt.Errorf("%w: %s is a directory", ErrUnsupportedSource, path)
	}

	source := DataSource{
		Path:    path,
		ModTime: info.ModTime(),
		Size:    info.Size(),
	}

	format, err := loader.FormatFromPath(path)
	if err == nil {
		source.Format = format
		return source, nil
	}

	ok, sniffErr := hasSQLiteHeader(path)
	if sniffErr != nil {
		return DataSource{}, fmt.Errorf("cannot read source: %w", sniffErr)
	}
	if !ok {
		return DataSource{}, fmt.Errorf("%w: %s", ErrUnsupportedSource, path)
	}
	source.Format = loader.FormatSQLite
	return source, nil
}

func hasSQLiteHeader(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	header := make([]byte, len(sqliteMagic))
	if _, err := io.ReadFull(f, header); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return false, nil
		}
		return false, err
	}
	return bytes.Equal(header, sqliteMagic), nil
}
