package irradiance

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/gocarina/gocsv"
)

// Bin counts of the DIRINT coefficient table.
const (
	KtPrimeBins      = 6
	ZenithBins       = 6
	DeltaKtPrimeBins = 7
	WBins            = 5
)

// DirintCoefficients maps (kt', zenith, delta kt', w) bins onto the DIRINT
// correction factor applied to the DISC estimate.
type DirintCoefficients [KtPrimeBins][ZenithBins][DeltaKtPrimeBins][WBins]float64

// coefficientRow is one line of a coefficient CSV. Bins are 1-based.
type coefficientRow struct {
	KtPrimeBin      int     `csv:"kt_prime_bin"`
	ZenithBin       int     `csv:"zenith_bin"`
	DeltaKtPrimeBin int     `csv:"delta_kt_prime_bin"`
	WBin            int     `csv:"w_bin"`
	Coefficient     float64 `csv:"coefficient"`
}

// perezCSV is the Perez et al. (1992) DIRINT table, one row per bin.
//
//go:embed data/dirint_coefficients.csv
var perezCSV []byte

var (
	perezOnce  sync.Once
	perezTable *DirintCoefficients
	perezErr   error
)

// PerezDirintCoefficients returns a copy of the published Perez coefficient
// table bundled with the package. It is the table Dirint uses by default.
func PerezDirintCoefficients() (*DirintCoefficients, error) {
	perezOnce.Do(func() {
		c := new(DirintCoefficients)
		n, err := applyCoefficients(bytes.NewReader(perezCSV), c)
		if err != nil {
			perezErr = fmt.Errorf("bundled DIRINT table: %w", err)
			return
		}
		if want := KtPrimeBins * ZenithBins * DeltaKtPrimeBins * WBins; n != want {
			perezErr = fmt.Errorf("bundled DIRINT table has %d entries, want %d", n, want)
			return
		}
		perezTable = c
	})
	if perezErr != nil {
		return nil, perezErr
	}
	c := *perezTable
	return &c, nil
}

// UnityDirintCoefficients returns a table whose entries are all 1, which
// reduces DIRINT to DISC with the kt' clipping applied.
func UnityDirintCoefficients() *DirintCoefficients {
	c := new(DirintCoefficients)
	for i := range c {
		for j := range c[i] {
			for k := range c[i][j] {
				for l := range c[i][j][k] {
					c[i][j][k][l] = 1
				}
			}
		}
	}
	return c
}

// LoadDirintCoefficients reads a coefficient table from CSV with the columns
// kt_prime_bin, zenith_bin, delta_kt_prime_bin, w_bin and coefficient.
// Entries absent from the file keep the Perez value.
func LoadDirintCoefficients(r io.Reader) (*DirintCoefficients, error) {
	c, err := PerezDirintCoefficients()
	if err != nil {
		return nil, err
	}
	if _, err := applyCoefficients(r, c); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadDirintCoefficientsFile is LoadDirintCoefficients for a file path.
func LoadDirintCoefficientsFile(path string) (*DirintCoefficients, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open DIRINT coefficients %s: %w", path, err)
	}
	defer f.Close()
	return LoadDirintCoefficients(f)
}

// applyCoefficients writes every row of r into c and returns the row count.
func applyCoefficients(r io.Reader, c *DirintCoefficients) (int, error) {
	var rows []*coefficientRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return 0, fmt.Errorf("could not parse DIRINT coefficients: %w", err)
	}

	for n, row := range rows {
		if row.KtPrimeBin < 1 || row.KtPrimeBin > KtPrimeBins ||
			row.ZenithBin < 1 || row.ZenithBin > ZenithBins ||
			row.DeltaKtPrimeBin < 1 || row.DeltaKtPrimeBin > DeltaKtPrimeBins ||
			row.WBin < 1 || row.WBin > WBins {
			return 0, fmt.Errorf("DIRINT coefficient row %d: bin (%d, %d, %d, %d) out of range",
				n+1, row.KtPrimeBin, row.ZenithBin, row.DeltaKtPrimeBin, row.WBin)
		}
		c[row.KtPrimeBin-1][row.ZenithBin-1][row.DeltaKtPrimeBin-1][row.WBin-1] = row.Coefficient
	}
	return len(rows), nil
}

// lookup returns the coefficient for 1-based bins; any unresolved bin (0)
// yields NaN.
func (c *DirintCoefficients) lookup(kt, zen, dkt, w int) float64 {
	if kt == 0 || zen == 0 || dkt == 0 || w == 0 {
		return nan
	}
	return c[kt-1][zen-1][dkt-1][w-1]
}
