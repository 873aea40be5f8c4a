package solar

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/chrissnell/pvforecast/internal/types"
)

func mustLocation(t *testing.T, lat, lon, alt float64) types.Location {
	t.Helper()
	loc, err := types.NewLocation(lat, lon, alt, "UTC")
	if err != nil {
		t.Fatalf("NewLocation(%v, %v): %v", lat, lon, err)
	}
	return loc
}

func hourly(t *testing.T, start time.Time, hours int) types.Index {
	t.Helper()
	idx, err := types.DateRange(start, start.Add(time.Duration(hours-1)*time.Hour), time.Hour)
	if err != nil {
		t.Fatalf("DateRange: %v", err)
	}
	return idx
}

func TestPositionsKnownValues(t *testing.T) {
	p := NewProvider(Options{})

	tests := []struct {
		name         string
		lat, lon     float64
		when         time.Time
		minElevation float64
		maxElevation float64
		wantAzimuth  float64
		azimuthTol   float64
	}{
		{
			name:         "Duesseldorf shortly after solar noon",
			lat:          51.2,
			lon:          6.8,
			when:         time.Date(2021, 3, 30, 12, 0, 0, 0, time.UTC),
			minElevation: 40.0,
			maxElevation: 43.5,
			wantAzimuth:  188.0,
			azimuthTol:   6.0,
		},
		{
			name:         "Equator at the March equinox",
			lat:          0,
			lon:          0,
			when:         time.Date(2021, 3, 20, 12, 0, 0, 0, time.UTC),
			minElevation: 87.0,
			maxElevation: 90.0,
			wantAzimuth:  0.0,
			azimuthTol:   180.0,
		},
		{
			name:         "Duesseldorf at midnight",
			lat:          51.2,
			lon:          6.8,
			when:         time.Date(2021, 3, 30, 0, 0, 0, 0, time.UTC),
			minElevation: -45.0,
			maxElevation: -30.0,
			wantAzimuth:  0.0,
			azimuthTol:   20.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, err := p.Positions(mustLocation(t, tt.lat, tt.lon, 0), types.Index{tt.when})
			if err != nil {
				t.Fatalf("Positions: %v", err)
			}
			d := pos.Data[0]
			if d.Elevation < tt.minElevation || d.Elevation > tt.maxElevation {
				t.Errorf("elevation %.2f outside [%.1f, %.1f]", d.Elevation, tt.minElevation, tt.maxElevation)
			}
			diff := math.Abs(d.Azimuth - tt.wantAzimuth)
			if diff > 180 {
				diff = 360 - diff
			}
			if diff > tt.azimuthTol {
				t.Errorf("azimuth %.2f not within %.1f° of %.1f", d.Azimuth, tt.azimuthTol, tt.wantAzimuth)
			}
			if math.Abs(d.Zenith+d.Elevation-90) > 1e-9 {
				t.Errorf("zenith %.4f and elevation %.4f do not add up to 90", d.Zenith, d.Elevation)
			}
			if d.ApparentElevation < d.Elevation {
				t.Errorf("apparent elevation %.4f below true elevation %.4f", d.ApparentElevation, d.Elevation)
			}
		})
	}
}

func TestPositionsRanges(t *testing.T) {
	p := NewProvider(Options{})
	times := hourly(t, time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC), 48)

	for _, lat := range []float64{-90, -45, 0, 51.2, 90} {
		for _, lon := range []float64{-180, -73.9, 0, 6.8, 180} {
			pos, err := p.Positions(mustLocation(t, lat, lon, 0), times)
			if err != nil {
				t.Fatalf("Positions(%v, %v): %v", lat, lon, err)
			}
			if pos.Len() != len(times) {
				t.Fatalf("got %d positions for %d timestamps", pos.Len(), len(times))
			}
			for i, d := range pos.Data {
				if d.Zenith < 0 || d.Zenith > 180 {
					t.Errorf("lat %v lon %v sample %d: zenith %.3f outside [0, 180]", lat, lon, i, d.Zenith)
				}
				if d.Azimuth < 0 || d.Azimuth >= 360 {
					t.Errorf("lat %v lon %v sample %d: azimuth %.3f outside [0, 360)", lat, lon, i, d.Azimuth)
				}
			}
		}
	}
}

func TestClearSkyNonNegativeAndDarkAtNight(t *testing.T) {
	p := NewProvider(Options{})
	times := hourly(t, time.Date(2021, 3, 29, 0, 0, 0, 0, time.UTC), 72)

	for _, lat := range []float64{-90, -33.9, 0, 51.2, 69.6, 90} {
		for _, lon := range []float64{-180, -120, 0, 6.8, 151.2, 180} {
			loc := mustLocation(t, lat, lon, 90)
			pos, err := p.Positions(loc, times)
			if err != nil {
				t.Fatalf("Positions: %v", err)
			}
			cs, err := p.ClearSkyFor(loc, pos, ModelIneichen)
			if err != nil {
				t.Fatalf("ClearSkyFor: %v", err)
			}
			for i := range times {
				if cs.GHI[i] < 0 || cs.DNI[i] < 0 || cs.DHI[i] < 0 {
					t.Errorf("lat %v lon %v sample %d: negative irradiance ghi=%.2f dni=%.2f dhi=%.2f",
						lat, lon, i, cs.GHI[i], cs.DNI[i], cs.DHI[i])
				}
				if pos.Data[i].Zenith >= 90 && cs.GHI[i] != 0 {
					t.Errorf("lat %v lon %v sample %d: ghi=%.3f with zenith %.2f", lat, lon, i, cs.GHI[i], pos.Data[i].Zenith)
				}
			}
		}
	}
}

func TestClearSkyIneichenMagnitude(t *testing.T) {
	p := NewProvider(Options{LinkeTurbidity: 3.0})
	loc := mustLocation(t, 51.2, 6.8, 90)

	cs, err := p.ClearSky(loc, types.Index{time.Date(2021, 3, 30, 12, 0, 0, 0, time.UTC)}, ModelIneichen)
	if err != nil {
		t.Fatalf("ClearSky: %v", err)
	}

	if cs.GHI[0] < 550 || cs.GHI[0] > 800 {
		t.Errorf("clear-sky GHI %.1f W/m² outside the expected noon range", cs.GHI[0])
	}
	if cs.DNI[0] < 750 || cs.DNI[0] > 950 {
		t.Errorf("clear-sky DNI %.1f W/m² outside the expected noon range", cs.DNI[0])
	}

	pos, _ := p.Positions(loc, cs.Times)
	cosZ := math.Cos(degToRad(pos.Data[0].ApparentZenith))
	if closure := cs.DNI[0]*cosZ + cs.DHI[0]; math.Abs(closure-cs.GHI[0]) > 1e-6 {
		t.Errorf("dni·cosZ + dhi = %.3f, expected ghi %.3f", closure, cs.GHI[0])
	}
}

func TestClearSkySimplifiedModel(t *testing.T) {
	p := NewProvider(Options{})
	loc := mustLocation(t, 51.2, 6.8, 90)
	times := hourly(t, time.Date(2021, 3, 30, 0, 0, 0, 0, time.UTC), 24)

	cs, err := p.ClearSky(loc, times, ModelSimplified)
	if err != nil {
		t.Fatalf("ClearSky: %v", err)
	}
	if cs.GHI[0] != 0 {
		t.Errorf("simplified model GHI at midnight = %.2f, expected 0", cs.GHI[0])
	}
	if cs.GHI[12] <= 0 {
		t.Errorf("simplified model GHI at noon = %.2f, expected positive", cs.GHI[12])
	}
}

func TestClearSkyErrors(t *testing.T) {
	p := NewProvider(Options{})
	loc := mustLocation(t, 51.2, 6.8, 90)
	times := hourly(t, time.Date(2021, 3, 30, 0, 0, 0, 0, time.UTC), 3)

	if _, err := p.ClearSky(loc, times, "haurwitz"); !errors.Is(err, types.ErrInputValidation) {
		t.Errorf("unknown model: expected ErrInputValidation, got %v", err)
	}
	if _, err := p.Positions(types.Location{}, times); !errors.Is(err, types.ErrInputValidation) {
		t.Errorf("zero location: expected ErrInputValidation, got %v", err)
	}

	unordered := types.Index{times[1], times[0]}
	if _, err := p.Positions(loc, unordered); !errors.Is(err, types.ErrInputValidation) {
		t.Errorf("unordered index: expected ErrInputValidation, got %v", err)
	}
}

func TestClearSkyEmptyInput(t *testing.T) {
	p := NewProvider(Options{})
	cs, err := p.ClearSky(mustLocation(t, 51.2, 6.8, 90), nil, ModelIneichen)
	if err != nil {
		t.Fatalf("empty input should not fail: %v", err)
	}
	if cs.Len() != 0 {
		t.Errorf("expected empty output, got %d samples", cs.Len())
	}
}

func TestLinkeTurbidity(t *testing.T) {
	loc := mustLocation(t, 51.2, 6.8, 90)
	times := types.Index{time.Date(2021, 3, 30, 12, 0, 0, 0, time.UTC)}

	if got := NewProvider(Options{}).opts.LinkeTurbidity; got != DefaultLinkeTurbidity {
		t.Errorf("default Linke turbidity = %v, expected %v", got, DefaultLinkeTurbidity)
	}

	clean, err := NewProvider(Options{LinkeTurbidity: 2}).ClearSky(loc, times, ModelIneichen)
	if err != nil {
		t.Fatalf("ClearSky: %v", err)
	}
	std, err := NewProvider(Options{}).ClearSky(loc, times, ModelIneichen)
	if err != nil {
		t.Fatalf("ClearSky: %v", err)
	}
	hazy, err := NewProvider(Options{LinkeTurbidity: 5}).ClearSky(loc, times, ModelIneichen)
	if err != nil {
		t.Fatalf("ClearSky: %v", err)
	}
	if !(clean.DNI[0] > std.DNI[0] && std.DNI[0] > hazy.DNI[0]) {
		t.Errorf("clear-sky DNI not decreasing with turbidity: %.1f, %.1f, %.1f", clean.DNI[0], std.DNI[0], hazy.DNI[0])
	}
}
