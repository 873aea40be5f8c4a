package decompose

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/chrissnell/pvforecast/internal/types"
	"github.com/chrissnell/pvforecast/pkg/solar"
)

// fakeGeometry returns fixed positions and clear sky for any index.
type fakeGeometry struct {
	zenith []float64
	ghi    []float64
	dni    []float64
	dhi    []float64
	calls  int
}

func (f *fakeGeometry) Positions(_ types.Location, times types.Index) (solar.Positions, error) {
	f.calls++
	pos := solar.Positions{Times: times, Data: make([]solar.Position, len(times))}
	for i := range times {
		z := f.zenith[i]
		pos.Data[i] = solar.Position{Zenith: z, ApparentZenith: z, Elevation: 90 - z, ApparentElevation: 90 - z, Azimuth: 180}
	}
	return pos, nil
}

func (f *fakeGeometry) ClearSkyFor(_ types.Location, pos solar.Positions, _ string) (solar.ClearSky, error) {
	return solar.ClearSky{Times: pos.Times, GHI: f.ghi, DNI: f.dni, DHI: f.dhi}, nil
}

var ruhr = func() types.Location {
	loc, err := types.NewLocation(51.2, 6.8, 90, "UTC")
	if err != nil {
		panic(err)
	}
	return loc
}()

// e2eIndex is the hourly forecast window of 2021-03-30 06:00 to 19:00 UTC.
func e2eIndex(t *testing.T) types.Index {
	t.Helper()
	idx, err := types.DateRange(
		time.Date(2021, 3, 30, 6, 0, 0, 0, time.UTC),
		time.Date(2021, 3, 30, 19, 0, 0, 0, time.UTC),
		time.Hour)
	if err != nil {
		t.Fatalf("DateRange: %v", err)
	}
	return idx
}

func TestPreconditionBeforePrepare(t *testing.T) {
	d := New(solar.NewProvider(solar.Options{}), ruhr, Options{})
	idx := e2eIndex(t)
	ghi := types.Constant(idx, 100)

	checks := map[string]func() error{
		"Clearsky":    func() error { _, err := d.Clearsky(); return err },
		"DNIDisc":     func() error { _, err := d.DNIDisc(ghi, types.Series{}); return err },
		"DHIErbs":     func() error { _, err := d.DHIErbs(ghi); return err },
		"DNIDirindex": func() error { _, err := d.DNIDirindex(ghi, types.Series{}, types.Series{}); return err },
		"Decompose": func() error {
			_, err := d.Decompose(types.ScenarioDisc, &types.WeatherTable{Index: idx, GHI: ghi})
			return err
		},
		"Positions": func() error { _, err := d.Positions(); return err },
	}
	for name, call := range checks {
		if err := call(); !errors.Is(err, types.ErrPrecondition) {
			t.Errorf("%s before Prepare: expected ErrPrecondition, got %v", name, err)
		}
	}
}

func TestPrepareEmptyIndex(t *testing.T) {
	d := New(solar.NewProvider(solar.Options{}), ruhr, Options{})
	if err := d.Prepare(nil); !errors.Is(err, types.ErrInputValidation) {
		t.Errorf("expected ErrInputValidation, got %v", err)
	}
}

func TestMisalignedSeries(t *testing.T) {
	d := New(solar.NewProvider(solar.Options{}), ruhr, Options{})
	idx := e2eIndex(t)
	if err := d.Prepare(idx); err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	short := types.Constant(idx[:5], 100)
	if _, err := d.DNIDisc(short, types.Series{}); !errors.Is(err, types.ErrInputValidation) {
		t.Errorf("DNIDisc with short ghi: expected ErrInputValidation, got %v", err)
	}
	if _, err := d.DNIDirindex(types.Constant(idx, 100), types.Series{}, short); !errors.Is(err, types.ErrInputValidation) {
		t.Errorf("DNIDirindex with short dew point: expected ErrInputValidation, got %v", err)
	}
	if _, err := d.DHIErbs(types.Series{}); !errors.Is(err, types.ErrInputValidation) {
		t.Errorf("DHIErbs without ghi: expected ErrInputValidation, got %v", err)
	}
}

func TestEndToEndScenarios(t *testing.T) {
	idx := e2eIndex(t)
	provider := solar.NewProvider(solar.Options{})
	d := New(provider, ruhr, Options{})
	if err := d.Prepare(idx); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	cs, err := d.ClearSkyIrradiance()
	if err != nil {
		t.Fatalf("ClearSkyIrradiance: %v", err)
	}

	ghi := make([]float64, len(idx))
	for i, v := range cs.GHI {
		ghi[i] = 0.5 * v
	}
	weather := &types.WeatherTable{Index: idx, GHI: types.Series{Index: idx, Values: ghi}}
	if err := weather.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	all, err := d.DecomposeAll(weather)
	if err != nil {
		t.Fatalf("DecomposeAll: %v", err)
	}
	if len(all) != len(types.Scenarios) {
		t.Fatalf("got %d scenarios, want %d", len(all), len(types.Scenarios))
	}

	for i, c := range all {
		if c.Scenario != types.Scenarios[i] {
			t.Errorf("scenario %d is %s, want %s", i, c.Scenario, types.Scenarios[i])
		}
		if !c.DNI.Index.Equal(idx) || !c.DHI.Index.Equal(idx) {
			t.Errorf("%s: output index differs from the prepared index", c.Scenario)
		}
	}

	clear := all[0]
	for i := range idx {
		if clear.DNI.Values[i] != cs.DNI[i] || clear.DHI.Values[i] != cs.DHI[i] {
			t.Errorf("clearsky sample %d: got dni=%v dhi=%v, want %v %v",
				i, clear.DNI.Values[i], clear.DHI.Values[i], cs.DNI[i], cs.DHI[i])
		}
	}

	for _, c := range all[1:] {
		for i := range idx {
			v := c.DNI.Values[i]
			if math.IsNaN(v) {
				t.Errorf("%s sample %d: unexpected NaN DNI", c.Scenario, i)
				continue
			}
			if v < 0 || v > cs.DNI[i]+1e-9 {
				t.Errorf("%s sample %d: DNI %.2f outside [0, clear-sky %.2f]", c.Scenario, i, v, cs.DNI[i])
			}
			if c.DHI.Values[i] < 0 {
				t.Errorf("%s sample %d: negative DHI %.2f", c.Scenario, i, c.DHI.Values[i])
			}
		}
	}
}

func TestPrepareIsCached(t *testing.T) {
	idx := types.Index{
		time.Date(2021, 6, 1, 10, 0, 0, 0, time.UTC),
		time.Date(2021, 6, 1, 11, 0, 0, 0, time.UTC),
		time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	geo := &fakeGeometry{
		zenith: []float64{45, 40, 95},
		ghi:    []float64{700, 750, 0},
		dni:    []float64{800, 820, 0},
		dhi:    []float64{100, 110, 0},
	}
	d := New(geo, ruhr, Options{})
	if err := d.Prepare(idx); err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	weather := &types.WeatherTable{Index: idx, GHI: types.Series{Index: idx, Values: []float64{350, 375, 0}}}
	for _, s := range types.Scenarios {
		if _, err := d.Decompose(s, weather); err != nil {
			t.Fatalf("Decompose(%s): %v", s, err)
		}
	}
	if geo.calls != 1 {
		t.Errorf("geometry queried %d times, want 1", geo.calls)
	}
}

func TestNightAndMissingSamples(t *testing.T) {
	idx := types.Index{
		time.Date(2021, 6, 1, 1, 0, 0, 0, time.UTC),
		time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	geo := &fakeGeometry{
		zenith: []float64{110, 40},
		ghi:    []float64{0, 750},
		dni:    []float64{0, 820},
		dhi:    []float64{0, 110},
	}
	d := New(geo, ruhr, Options{})
	if err := d.Prepare(idx); err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	weather := &types.WeatherTable{Index: idx, GHI: types.Series{Index: idx, Values: []float64{math.NaN(), math.NaN()}}}
	disc, err := d.Decompose(types.ScenarioDisc, weather)
	if err != nil {
		t.Fatalf("Decompose: %v", err)
	}
	if disc.DNI.Values[0] != 0 {
		t.Errorf("night DNI = %v, want 0", disc.DNI.Values[0])
	}
	if !math.IsNaN(disc.DNI.Values[1]) || !math.IsNaN(disc.DHI.Values[1]) {
		t.Errorf("daytime NaN ghi should propagate, got dni=%v dhi=%v", disc.DNI.Values[1], disc.DHI.Values[1])
	}
}

func TestResidualDHIFallback(t *testing.T) {
	idx := types.Index{time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC)}
	d := New(&fakeGeometry{zenith: []float64{60}, ghi: []float64{500}, dni: []float64{700}, dhi: []float64{150}}, ruhr, Options{})
	if err := d.Prepare(idx); err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	ghi := types.Series{Index: idx, Values: []float64{400}}
	dni := types.Series{Index: idx, Values: []float64{300}}
	dhi := types.Series{Index: idx, Values: []float64{math.NaN()}}

	got := d.residualDHI(ghi, dni, dhi)
	if want := 400 - 300*0.5; math.Abs(got.Values[0]-want) > 1e-9 {
		t.Errorf("residual dhi = %v, want %v", got.Values[0], want)
	}
}

func TestUnknownScenario(t *testing.T) {
	idx := types.Index{time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC)}
	d := New(&fakeGeometry{zenith: []float64{60}, ghi: []float64{500}, dni: []float64{700}, dhi: []float64{150}}, ruhr, Options{})
	if err := d.Prepare(idx); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	weather := &types.WeatherTable{Index: idx, GHI: types.Constant(idx, 100)}
	if _, err := d.Decompose("perez", weather); !errors.Is(err, types.ErrInputValidation) {
		t.Errorf("expected ErrInputValidation, got %v", err)
	}
}

func TestCheckInputsReportsFirstBadSeries(t *testing.T) {
	d := New(solar.NewProvider(solar.Options{}), ruhr, Options{})
	idx := e2eIndex(t)
	if err := d.Prepare(idx); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	short := types.Constant(idx[:4], 0)

	for i := 0; i < 20; i++ {
		_, err := d.DNIDirindex(types.Constant(idx, 100), short, short)
		if !errors.Is(err, types.ErrInputValidation) || !strings.Contains(err.Error(), `"pressure"`) {
			t.Fatalf("attempt %d: expected the pressure error, got %v", i, err)
		}
	}
}

func TestDirindexDewPoint(t *testing.T) {
	idx := e2eIndex(t)
	d := New(solar.NewProvider(solar.Options{}), ruhr, Options{})
	if err := d.Prepare(idx); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	cs, err := d.ClearSkyIrradiance()
	if err != nil {
		t.Fatalf("ClearSkyIrradiance: %v", err)
	}
	ghi := make([]float64, len(idx))
	for i, v := range cs.GHI {
		ghi[i] = 0.6 * v
	}
	g := types.Series{Index: idx, Values: ghi}

	dry, err := d.DNIDirindex(g, types.Series{}, types.Constant(idx, -15))
	if err != nil {
		t.Fatalf("DNIDirindex: %v", err)
	}
	humid, err := d.DNIDirindex(g, types.Series{}, types.Constant(idx, 20))
	if err != nil {
		t.Fatalf("DNIDirindex: %v", err)
	}

	differ := 0
	for i := range idx {
		if d.zenith[i] >= 90 {
			if dry.Values[i] != 0 || humid.Values[i] != 0 {
				t.Errorf("night sample %d: got %v and %v, want 0", i, dry.Values[i], humid.Values[i])
			}
			continue
		}
		if math.IsNaN(dry.Values[i]) || math.IsNaN(humid.Values[i]) {
			t.Errorf("sample %d: unexpected NaN", i)
			continue
		}
		if math.Abs(dry.Values[i]-humid.Values[i]) > 1e-6 {
			differ++
		}
	}
	if differ == 0 {
		t.Error("dirindex DNI is identical for a dry and a humid dew point")
	}
}
