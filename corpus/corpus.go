// Package corpus loads training corpora from local files: plain UTF-8 text, or parquet
// dataset shards with a "text" column.
//
// Files are read through a memory map, so large corpora are not copied twice.
package corpus

import (
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/parquet-go/parquet-go"
	"github.com/pkg/errors"
	"golang.org/x/exp/mmap"
)

// Supported corpus formats.
const (
	FormatAuto    = "auto"
	FormatText    = "text"
	FormatParquet = "parquet"
)

// TextColumn is the parquet column read by ReadParquet.
const TextColumn = "text"

// Row is the parquet schema read by ReadParquet. Other columns are ignored.
type Row struct {
	Text string `parquet:"text"`
}

// Read loads a corpus in the given format. FormatAuto (or "") picks parquet for files
// with a ".parquet" extension and plain text otherwise.
func Read(filePath, format string) (string, error) {
	if format == "" || format == FormatAuto {
		format = FormatText
		if strings.EqualFold(filepath.Ext(filePath), ".parquet") {
			format = FormatParquet
		}
	}
	switch format {
	case FormatText:
		return ReadText(filePath)
	case FormatParquet:
		return ReadParquet(filePath)
	default:
		return "", errors.Errorf("unknown corpus format %q, valid formats are %q, %q and %q",
			format, FormatAuto, FormatText, FormatParquet)
	}
}

// ReadText reads a UTF-8 text file.
func ReadText(filePath string) (string, error) {
	reader, err := mmap.Open(filePath)
	if err != nil {
		return "", errors.Wrapf(err, "failed to mmap %s", filePath)
	}
	defer reader.Close()

	data := make([]byte, reader.Len())
	if _, err := reader.ReadAt(data, 0); err != nil && err != io.EOF {
		return "", errors.Wrapf(err, "failed to read %s", filePath)
	}
	if !utf8.Valid(data) {
		return "", errors.Errorf("corpus %s is not valid UTF-8", filePath)
	}
	return string(data), nil
}

// ReadParquet reads the "text" column of every row of a parquet file, and joins the
// rows with newlines.
func ReadParquet(filePath string) (string, error) {
	reader, err := mmap.Open(filePath)
	if err != nil {
		return "", errors.Wrapf(err, "failed to mmap %s", filePath)
	}
	defer reader.Close()
	size := int64(reader.Len())

	file, err := parquet.OpenFile(reader, size)
	if err != nil {
		return "", errors.Wrapf(err, "failed to open parquet file %s", filePath)
	}
	if _, found := file.Schema().Lookup(TextColumn); !found {
		return "", errors.Errorf("parquet file %s has no %q column", filePath, TextColumn)
	}

	rows, err := parquet.Read[Row](reader, size)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read rows of %s", filePath)
	}
	texts := make([]string, len(rows))
	for ii, row := range rows {
		texts[ii] = row.Text
	}
	return strings.Join(texts, "\n"), nil
}
