package output

import (
	"bytes"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chrissnell/pvforecast/internal/aggregate"
	"github.com/chrissnell/pvforecast/internal/pvsystem"
	"github.com/chrissnell/pvforecast/internal/types"
	"github.com/chrissnell/pvforecast/pkg/solar"
)

func smallTable(t *testing.T) *aggregate.Table {
	t.Helper()
	idx := types.Index{
		time.Date(2021, 3, 30, 11, 0, 0, 0, time.UTC),
		time.Date(2021, 3, 30, 12, 0, 0, 0, time.UTC),
	}
	weather := &types.WeatherTable{Index: idx, GHI: types.Series{Index: idx, Values: []float64{400, math.NaN()}}}
	cs := solar.ClearSky{Times: idx, GHI: []float64{600, 650}, DNI: []float64{800, 820}, DHI: []float64{90, 95}}
	pos := solar.Positions{Times: idx, Data: make([]solar.Position, 2)}

	ost := pvsystem.NewResult("Ost", types.ScenarioClearSky, idx)
	ost.AC[0], ost.AC[1] = 1234.5, 1500

	table, err := aggregate.Merge(weather, cs, pos, []aggregate.ScenarioData{
		{Scenario: types.ScenarioClearSky, Results: []*pvsystem.Result{ost}},
	})
	require.NoError(t, err)
	return table
}

func TestWriteCSV(t *testing.T) {
	table := smallTable(t)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, table, Options{Precision: 2}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	header := records[0]
	require.Equal(t, TimeColumn, header[0])
	require.Equal(t, "ghi", header[1])
	require.Equal(t, "ALL_AC_POWER_clearsky", header[len(header)-1])

	require.Equal(t, "2021-03-30T11:00:00Z", records[1][0])
	require.Equal(t, "400.00", records[1][1])
	require.Equal(t, "", records[2][1], "missing values are empty cells")

	acCol := -1
	for i, h := range header {
		if h == "Ost_ac_clearsky" {
			acCol = i
		}
	}
	require.NotEqual(t, -1, acCol)
	require.Equal(t, "1234.50", records[1][acCol])
}

func TestWriteCSVTimezone(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, smallTable(t), Options{Location: berlin}))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Equal(t, "2021-03-30T13:00:00+02:00", records[1][0])
}

func TestWriteCSVFileIsAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "forecast.csv")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	require.NoError(t, WriteCSVFile(path, smallTable(t), Options{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "Ost_ac_clearsky")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestWriteCSVFileMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "forecast.csv")
	require.Error(t, WriteCSVFile(path, smallTable(t), Options{}))
	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))
}
