package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"kmviz/pkg/kmeans"
)

// ErrNoPoints is returned by ReadCSV when the input has no data rows.
var ErrNoPoints = errors.New("csv contains no points")

// CSVOptions configure ReadCSV.
type CSVOptions struct {
	// XColumn and YColumn are zero-based column indexes.
	XColumn int
	YColumn int
	// Header skips the first row.
	Header bool
	// Comma is the field delimiter, ',' if zero.
	Comma rune
}

// ReadCSV reads one point per row.
func ReadCSV(r io.Reader, opts CSVOptions) (DataSet, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	if opts.Comma != 0 {
		reader.Comma = opts.Comma
	}

	need := opts.XColumn
	if opts.YColumn > need {
		need = opts.YColumn
	}

	var ds DataSet
	for line := 1; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if line == 1 && opts.Header {
			continue
		}
		if len(row) <= need {
			return nil, fmt.Errorf("line %d: want at least %d columns, got %d", line, need+1, len(row))
		}
		x, err := parseCoord(row[opts.XColumn])
		if err != nil {
			return nil, fmt.Errorf("line %d: x: %w", line, err)
		}
		y, err := parseCoord(row[opts.YColumn])
		if err != nil {
			return nil, fmt.Errorf("line %d: y: %w", line, err)
		}
		ds = append(ds, kmeans.Point{X: x, Y: y})
	}
	if len(ds) == 0 {
		return nil, ErrNoPoints
	}
	return ds, nil
}

func parseCoord(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("unable to parse value %q as float: %w", s, err)
	}
	if !(kmeans.Point{X: v}).Finite() {
		return 0, fmt.Errorf("value %q is not finite", s)
	}
	return v, nil
}
