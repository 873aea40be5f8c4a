package aggregate

import (
	"fmt"
	"math"
	"sort"

	"github.com/chrissnell/pvforecast/internal/pvsystem"
	"github.com/chrissnell/pvforecast/internal/types"
	"github.com/chrissnell/pvforecast/pkg/solar"
)

// ScenarioData is what one scenario contributes to the table. DNI and DHI
// are optional; Results must be in array registration order.
type ScenarioData struct {
	Scenario types.Scenario
	DNI      types.Series
	DHI      types.Series
	Results  []*pvsystem.Result
}

// Merge builds the output table. Columns appear in this order: weather
// fields, clear-sky irradiance, solar position, then for every scenario in
// the fixed enumeration order its decomposed DNI/DHI, every array's result
// columns in registration order and finally ALL_AC_POWER. Merge does not
// modify its inputs.
func Merge(weather *types.WeatherTable, clearSky solar.ClearSky, positions solar.Positions, scenarios []ScenarioData) (*Table, error) {
	if weather == nil {
		return nil, fmt.Errorf("%w: merge needs a weather table", types.ErrInputValidation)
	}
	if err := weather.Validate(); err != nil {
		return nil, err
	}
	idx := weather.Index
	n := len(idx)

	if clearSky.Len() != n {
		return nil, fmt.Errorf("%w: %d clear-sky samples for %d rows", types.ErrInputValidation, clearSky.Len(), n)
	}
	if positions.Len() != n {
		return nil, fmt.Errorf("%w: %d solar positions for %d rows", types.ErrInputValidation, positions.Len(), n)
	}

	t := newTable(idx)

	for _, name := range types.WeatherFields {
		if s, ok := weather.Field(name); ok {
			if err := t.add(Key{Field: string(name)}, s.Values); err != nil {
				return nil, err
			}
		}
	}

	for _, c := range []struct {
		field  string
		values []float64
	}{
		{"clearsky_ghi", clearSky.GHI},
		{"clearsky_dni", clearSky.DNI},
		{"clearsky_dhi", clearSky.DHI},
		{"apparent_zenith", positions.ApparentZenith()},
		{"zenith", positions.Zenith()},
		{"apparent_elevation", pluck(positions, func(p solar.Position) float64 { return p.ApparentElevation })},
		{"elevation", pluck(positions, func(p solar.Position) float64 { return p.Elevation })},
		{"azimuth", positions.Azimuth()},
		{"equation_of_time", pluck(positions, func(p solar.Position) float64 { return p.EquationOfTime })},
	} {
		if err := t.add(Key{Field: c.field}, c.values); err != nil {
			return nil, err
		}
	}

	ordered, err := sortScenarios(scenarios)
	if err != nil {
		return nil, err
	}
	for _, sd := range ordered {
		if err := t.addScenario(sd); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *Table) addScenario(sd ScenarioData) error {
	s := sd.Scenario
	for _, c := range []struct {
		field  string
		series types.Series
	}{{"dni", sd.DNI}, {"dhi", sd.DHI}} {
		if c.series.IsZero() {
			continue
		}
		if err := c.series.AlignedTo(t.Index, c.field+"_"+string(s)); err != nil {
			return err
		}
		if err := t.add(Key{Field: c.field, Scenario: s}, c.series.Values); err != nil {
			return err
		}
	}

	acColumns := make([][]float64, 0, len(sd.Results))
	for _, res := range sd.Results {
		if res == nil {
			return fmt.Errorf("%w: scenario %s has a missing result", types.ErrInputValidation, s)
		}
		if !res.Index.Equal(t.Index) {
			return fmt.Errorf("%w: result of array %q in scenario %s is not aligned to the weather index",
				types.ErrInputValidation, res.ArrayID, s)
		}
		for _, col := range res.Columns() {
			key := Key{ArrayID: res.ArrayID, Field: col.Field, Subfield: col.Subfield, Scenario: s}
			if err := t.add(key, col.Values); err != nil {
				return err
			}
		}
		acColumns = append(acColumns, res.AC)
	}

	return t.add(Key{Field: TotalACField, Scenario: s}, sumIgnoringNaN(len(t.Index), acColumns))
}

// add appends a column, copying values. Duplicate keys or flattened names
// are rejected.
func (t *Table) add(k Key, values []float64) error {
	if len(values) != len(t.Index) {
		return fmt.Errorf("%w: column %s has %d values for %d rows", types.ErrInputValidation, k.Name(), len(values), len(t.Index))
	}
	if _, dup := t.columns[k]; dup {
		return fmt.Errorf("%w: column %s", types.ErrDuplicateID, k.Name())
	}
	name := k.Name()
	if other, clash := t.names[name]; clash {
		return fmt.Errorf("%w: column name %s produced by %+v and %+v", types.ErrDuplicateID, name, other, k)
	}

	v := make([]float64, len(values))
	copy(v, values)
	t.columns[k] = v
	t.names[name] = k
	t.keys = append(t.keys, k)
	return nil
}

// sumIgnoringNaN adds the columns row by row. A NaN sample counts as zero;
// the row is NaN only when every column is NaN there.
func sumIgnoringNaN(rows int, columns [][]float64) []float64 {
	out := make([]float64, rows)
	if len(columns) == 0 {
		return out
	}
	for i := range out {
		sum, defined := 0.0, false
		for _, c := range columns {
			if math.IsNaN(c[i]) {
				continue
			}
			sum += c[i]
			defined = true
		}
		if defined {
			out[i] = sum
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

func sortScenarios(in []ScenarioData) ([]ScenarioData, error) {
	rank := make(map[types.Scenario]int, len(types.Scenarios))
	for i, s := range types.Scenarios {
		rank[s] = i
	}
	seen := make(map[types.Scenario]bool, len(in))
	for _, sd := range in {
		if _, ok := rank[sd.Scenario]; !ok {
			return nil, fmt.Errorf("%w: unknown scenario %q", types.ErrInputValidation, sd.Scenario)
		}
		if seen[sd.Scenario] {
			return nil, fmt.Errorf("%w: scenario %s given twice", types.ErrDuplicateID, sd.Scenario)
		}
		seen[sd.Scenario] = true
	}

	out := make([]ScenarioData, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool { return rank[out[i].Scenario] < rank[out[j].Scenario] })
	return out, nil
}

func pluck(p solar.Positions, f func(solar.Position) float64) []float64 {
	out := make([]float64, len(p.Data))
	for i, d := range p.Data {
		out[i] = f(d)
	}
	return out
}
