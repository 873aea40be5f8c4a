// Package output serialises the aggregated forecast table.
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/chrissnell/pvforecast/internal/aggregate"
)

// TimeColumn is the header of the timestamp column.
const TimeColumn = "time"

// Options controls number and time formatting. Zero values select six
// decimals and RFC 3339 timestamps in the index's own zone.
type Options struct {
	Precision int
	Location  *time.Location
}

// WriteCSV writes the table to w: a header row followed by one row per
// timestamp. Missing values are written as empty cells.
func WriteCSV(w io.Writer, t *aggregate.Table, opts Options) error {
	if opts.Precision <= 0 {
		opts.Precision = 6
	}

	cw := csv.NewWriter(w)
	keys := t.Keys()

	header := append([]string{TimeColumn}, t.Names()...)
	if err := cw.Write(header); err != nil {
		return err
	}

	columns := make([][]float64, len(keys))
	for i, k := range keys {
		columns[i], _ = t.Column(k)
	}

	row := make([]string, len(keys)+1)
	for r, ts := range t.Index {
		if opts.Location != nil {
			ts = ts.In(opts.Location)
		}
		row[0] = ts.Format(time.RFC3339)
		for c, values := range columns {
			row[c+1] = fmtFloat(values[r], opts.Precision)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the table to path in one step: the rows go to a
// temporary file in the same directory which is then renamed over path, so
// readers never observe a partial file.
func WriteCSVFile(path string, t *aggregate.Table, opts Options) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("could not create temporary output file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := WriteCSV(tmp, t, opts); err != nil {
		tmp.Close()
		return fmt.Errorf("could not write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("could not sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("could not close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("could not move output into place: %w", err)
	}
	return nil
}

func fmtFloat(x float64, precision int) string {
	if math.IsNaN(x) {
		return ""
	}
	return strconv.FormatFloat(x, 'f', precision, 64)
}
