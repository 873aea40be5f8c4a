package pvsystem

import (
	"math"
	"testing"

	"github.com/chrissnell/pvforecast/internal/devices"
)

var lgModule = moduleParams{
	AlphaSc: 0.003249,
	Adjust:  5,
	ARef:    1.55,
	ILRef:   10.85,
	IoRef:   1.5e-11,
	Rs:      0.3,
	RshRef:  500,
}

func TestLambertWLog(t *testing.T) {
	tests := []struct {
		name string
		logX float64
		want float64
	}{
		{name: "W(1)", logX: 0, want: 0.5671432904097838},
		{name: "W(e)", logX: 1, want: 1},
		{name: "tiny argument", logX: -30, want: math.Exp(-30)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := lambertWLog(tt.logX)
			if err != nil {
				t.Fatalf("lambertWLog: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-12*math.Max(1, tt.want) {
				t.Errorf("got %.16g, want %.16g", got, tt.want)
			}
		})
	}

	// exp(3500) overflows; check the defining identity instead
	w, err := lambertWLog(3500)
	if err != nil {
		t.Fatalf("lambertWLog(3500): %v", err)
	}
	if r := w + math.Log(w) - 3500; math.Abs(r) > 1e-9 {
		t.Errorf("w + ln w - 3500 = %g", r)
	}

	if w, err := lambertWLog(math.NaN()); err != nil || !math.IsNaN(w) {
		t.Errorf("NaN input: got %v, %v", w, err)
	}
}

func TestGoldenSectionMax(t *testing.T) {
	x, err := goldenSectionMax(func(v float64) (float64, error) { return -(v - 2.5) * (v - 2.5), nil }, 0, 10)
	if err != nil {
		t.Fatalf("goldenSectionMax: %v", err)
	}
	if math.Abs(x-2.5) > 1e-6 {
		t.Errorf("maximum at %v, want 2.5", x)
	}
}

func TestSingleDiodeSTC(t *testing.T) {
	d := calcParamsCEC(1000, 25, lgModule)
	if math.Abs(d.IL-lgModule.ILRef) > 1e-12 || math.Abs(d.IO-lgModule.IoRef) > 1e-20 {
		t.Errorf("reference conditions changed parameters: %+v", d)
	}

	dc, err := singleDiode(d)
	if err != nil {
		t.Fatalf("singleDiode: %v", err)
	}
	if dc.ISC < 10.7 || dc.ISC > 10.9 {
		t.Errorf("i_sc %.3f outside [10.7, 10.9]", dc.ISC)
	}
	if dc.VOC < 41 || dc.VOC > 44 {
		t.Errorf("v_oc %.3f outside [41, 44]", dc.VOC)
	}
	if dc.PMP < 300 || dc.PMP > 400 {
		t.Errorf("p_mp %.1f outside [300, 400]", dc.PMP)
	}
	if !(dc.VMP > 0 && dc.VMP < dc.VOC) || !(dc.IMP > 0 && dc.IMP < dc.ISC) {
		t.Errorf("maximum power point outside the curve: %+v", dc)
	}
	if math.Abs(dc.PMP-dc.VMP*dc.IMP) > 1e-9 {
		t.Errorf("p_mp %.6f != v_mp·i_mp %.6f", dc.PMP, dc.VMP*dc.IMP)
	}
	if !(dc.IX <= dc.ISC && dc.IX >= dc.IMP) || !(dc.IXX <= dc.IMP) {
		t.Errorf("i_x %.3f or i_xx %.3f out of order for %+v", dc.IX, dc.IXX, dc)
	}

	// the max power point is a maximum
	for _, dv := range []float64{-0.05, 0.05} {
		i, err := currentAt(dc.VMP+dv, d)
		if err != nil {
			t.Fatalf("currentAt: %v", err)
		}
		if (dc.VMP+dv)*i > dc.PMP+1e-9 {
			t.Errorf("power at v_mp%+.2f exceeds p_mp", dv)
		}
	}
}

func TestSingleDiodeTemperatureAndDark(t *testing.T) {
	cold, err := singleDiode(calcParamsCEC(800, 10, lgModule))
	if err != nil {
		t.Fatalf("singleDiode: %v", err)
	}
	hot, err := singleDiode(calcParamsCEC(800, 60, lgModule))
	if err != nil {
		t.Fatalf("singleDiode: %v", err)
	}
	if hot.VOC >= cold.VOC || hot.PMP >= cold.PMP {
		t.Errorf("hot cell should lose voltage and power: cold %+v hot %+v", cold, hot)
	}

	dark, err := singleDiode(calcParamsCEC(0, 5, lgModule))
	if err != nil {
		t.Fatalf("singleDiode in the dark: %v", err)
	}
	if dark.PMP != 0 || dark.VOC != 0 {
		t.Errorf("dark module: got %+v, want zero power", dark)
	}

	missing, err := singleDiode(calcParamsCEC(math.NaN(), 20, lgModule))
	if err != nil {
		t.Fatalf("singleDiode with NaN irradiance: %v", err)
	}
	if !math.IsNaN(missing.PMP) {
		t.Errorf("NaN irradiance: p_mp %v, want NaN", missing.PMP)
	}
}

func TestSandiaAC(t *testing.T) {
	inv := devices.KostalPlenticorePlus42
	tests := []struct {
		name string
		vdc  float64
		pdc  float64
		want float64
	}{
		{name: "rated point", vdc: inv.Vdco, pdc: inv.Pdco, want: inv.Paco},
		{name: "below self consumption", vdc: 300, pdc: 10, want: -inv.Pnt},
		{name: "clipped", vdc: 570, pdc: 9000, want: inv.Paco},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sandiaAC(inv, tt.vdc, tt.pdc); math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("got %.6f, want %.6f", got, tt.want)
			}
		})
	}

	mid := sandiaAC(inv, 400, 2000)
	if mid <= 1800 || mid >= 2000 {
		t.Errorf("part load AC %.1f, want slightly below DC input", mid)
	}
	if !math.IsNaN(sandiaAC(inv, math.NaN(), math.NaN())) {
		t.Error("NaN input should give NaN output")
	}
}

func TestSAPMCellTemperature(t *testing.T) {
	m := sapmTemperatureModels[DefaultTemperatureModel]
	got := sapmCellTemperature(1000, 20, 0, m)
	want := 1000*math.Exp(-3.47) + 20 + 3
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("got %.4f, want %.4f", got, want)
	}
	if sapmCellTemperature(0, 12, 3, m) != 12 {
		t.Error("cell temperature without irradiance should equal air temperature")
	}
}
