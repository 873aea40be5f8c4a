package pvsystem

import (
	"github.com/chrissnell/pvforecast/internal/types"
)

// Result field names as they appear in output column keys.
const (
	FieldAC                  = "ac"
	FieldAOI                 = "aoi"
	FieldCellTemperature     = "cell_temperature"
	FieldEffectiveIrradiance = "effective_irradiance"
	FieldDC                  = "dc"
	FieldDiodeParams         = "diode_params"
	FieldTotalIrrad          = "total_irrad"
)

var (
	dcColumns         = []string{"i_sc", "v_oc", "i_mp", "v_mp", "p_mp", "i_x", "i_xx"}
	diodeParamColumns = []string{"I_L", "I_o", "R_s", "R_sh", "nNsVth"}
	totalIrradColumns = []string{"poa_global", "poa_direct", "poa_diffuse", "poa_sky_diffuse", "poa_ground_diffuse"}
)

// Result is the simulation output of one array for one scenario. Every
// slice is aligned to Index.
type Result struct {
	ArrayID  string
	Scenario types.Scenario
	Index    types.Index

	AC                  []float64
	AOI                 []float64
	CellTemperature     []float64
	EffectiveIrradiance []float64

	DC          map[string][]float64
	DiodeParams map[string][]float64
	TotalIrrad  map[string][]float64
}

// Column is one named output series of a Result. Subfield is empty for the
// plain fields.
type Column struct {
	Field    string
	Subfield string
	Values   []float64
}

// Columns lists the result series in output order: the plain fields, then
// the dc, diode_params and total_irrad sub-columns.
func (r *Result) Columns() []Column {
	cols := []Column{
		{Field: FieldAC, Values: r.AC},
		{Field: FieldAOI, Values: r.AOI},
		{Field: FieldCellTemperature, Values: r.CellTemperature},
		{Field: FieldEffectiveIrradiance, Values: r.EffectiveIrradiance},
	}
	nested := []struct {
		field string
		names []string
		data  map[string][]float64
	}{
		{FieldDC, dcColumns, r.DC},
		{FieldDiodeParams, diodeParamColumns, r.DiodeParams},
		{FieldTotalIrrad, totalIrradColumns, r.TotalIrrad},
	}
	for _, n := range nested {
		for _, name := range n.names {
			cols = append(cols, Column{Field: n.field, Subfield: name, Values: n.data[name]})
		}
	}
	return cols
}

// NewResult allocates a zeroed result with every column sized to idx.
func NewResult(arrayID string, scenario types.Scenario, idx types.Index) *Result {
	n := len(idx)
	alloc := func(names []string) map[string][]float64 {
		m := make(map[string][]float64, len(names))
		for _, name := range names {
			m[name] = make([]float64, n)
		}
		return m
	}
	return &Result{
		ArrayID:             arrayID,
		Scenario:            scenario,
		Index:               idx,
		AC:                  make([]float64, n),
		AOI:                 make([]float64, n),
		CellTemperature:     make([]float64, n),
		EffectiveIrradiance: make([]float64, n),
		DC:                  alloc(dcColumns),
		DiodeParams:         alloc(diodeParamColumns),
		TotalIrrad:          alloc(totalIrradColumns),
	}
}
