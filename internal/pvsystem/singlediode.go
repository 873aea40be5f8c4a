package pvsystem

import (
	"errors"
	"math"
)

// ErrNoConvergence is returned when an iterative solver runs out of iterations.
var ErrNoConvergence = errors.New("solver did not converge")

const (
	boltzmannEV = 8.617332478e-05 // eV/K
	egRef       = 1.121           // eV, silicon
	dEgdT       = -0.0002677      // 1/K
	irradRef    = 1000.0          // W/m²
	tempRefC    = 25.0
	kelvin      = 273.15

	lambertWMaxIter  = 100
	goldenMaxIter    = 200
	goldenRelTol     = 1e-10
	lambertWRelTol   = 1e-13
	lambertWSmallArg = -700.0
)

// DiodeParams are the five single-diode equation parameters at operating
// conditions.
type DiodeParams struct {
	IL     float64 // photocurrent, A
	IO     float64 // saturation current, A
	RS     float64 // series resistance, Ohm
	RSH    float64 // shunt resistance, Ohm
	NNsVth float64 // modified ideality factor, V
}

// DCPoint holds the characteristic points of one IV curve.
type DCPoint struct {
	ISC float64
	VOC float64
	IMP float64
	VMP float64
	PMP float64
	IX  float64
	IXX float64
}

// calcParamsCEC adjusts the module reference parameters to effective
// irradiance (W/m²) and cell temperature (°C) with the De Soto model, using
// the CEC Adjust correction of alpha_sc.
func calcParamsCEC(effIrradiance, tempCell float64, p moduleParams) DiodeParams {
	alphaSc := p.AlphaSc * (1 - p.Adjust/100)

	tRef := tempRefC + kelvin
	tCell := tempCell + kelvin

	eg := egRef * (1 + dEgdT*(tCell-tRef))
	nNsVth := p.ARef * (tCell / tRef)

	il := effIrradiance / irradRef * (p.ILRef + alphaSc*(tCell-tRef))
	io := p.IoRef * math.Pow(tCell/tRef, 3) *
		math.Exp(egRef/(boltzmannEV*tRef)-eg/(boltzmannEV*tCell))
	rsh := p.RshRef * (irradRef / effIrradiance)

	return DiodeParams{IL: il, IO: io, RS: p.Rs, RSH: rsh, NNsVth: nNsVth}
}

// moduleParams is the subset of a module profile the De Soto model needs.
type moduleParams struct {
	AlphaSc float64
	Adjust  float64
	ARef    float64
	ILRef   float64
	IoRef   float64
	Rs      float64
	RshRef  float64
}

// singleDiode solves the single-diode equation for the IV curve points.
// NaN parameters give an all-NaN point without an error.
func singleDiode(d DiodeParams) (DCPoint, error) {
	if math.IsNaN(d.IL) || math.IsNaN(d.IO) || math.IsNaN(d.RSH) || math.IsNaN(d.NNsVth) {
		return nanPoint(), nil
	}

	isc, err := currentAt(0, d)
	if err != nil {
		return DCPoint{}, err
	}
	voc, err := voltageAt(0, d)
	if err != nil {
		return DCPoint{}, err
	}
	if voc <= 0 {
		return DCPoint{ISC: math.Max(isc, 0)}, nil
	}

	vmp, err := goldenSectionMax(func(v float64) (float64, error) {
		i, err := currentAt(v, d)
		return v * i, err
	}, 0, voc)
	if err != nil {
		return DCPoint{}, err
	}
	imp, err := currentAt(vmp, d)
	if err != nil {
		return DCPoint{}, err
	}
	ix, err := currentAt(0.5*voc, d)
	if err != nil {
		return DCPoint{}, err
	}
	ixx, err := currentAt(0.5*(voc+vmp), d)
	if err != nil {
		return DCPoint{}, err
	}

	return DCPoint{ISC: isc, VOC: voc, IMP: imp, VMP: vmp, PMP: vmp * imp, IX: ix, IXX: ixx}, nil
}

// currentAt returns the module current at voltage v.
func currentAt(v float64, d DiodeParams) (float64, error) {
	gsh := 1 / d.RSH
	a := d.NNsVth

	if d.RS == 0 {
		return d.IL - d.IO*math.Expm1(v/a) - gsh*v, nil
	}

	denom := a * (d.RS*gsh + 1)
	logArg := math.Log(d.RS*d.IO) - math.Log(denom) + (d.RS*(d.IL+d.IO)+v)/denom
	w, err := lambertWLog(logArg)
	if err != nil {
		return 0, err
	}
	return (d.IL+d.IO-v*gsh)/(d.RS*gsh+1) - (a/d.RS)*w, nil
}

// voltageAt returns the module voltage at current i.
func voltageAt(i float64, d DiodeParams) (float64, error) {
	gsh := 1 / d.RSH
	a := d.NNsVth

	if gsh == 0 {
		if d.IL == 0 && i == 0 {
			return 0, nil
		}
		return a*math.Log1p((d.IL-i)/d.IO) - i*d.RS, nil
	}

	logArg := math.Log(d.IO) - math.Log(gsh) - math.Log(a) + (d.IL+d.IO-i)/(gsh*a)
	w, err := lambertWLog(logArg)
	if err != nil {
		return 0, err
	}
	return (d.IL+d.IO-i)/gsh - i*d.RS - a*w, nil
}

// lambertWLog returns W(exp(logX)) on the principal branch by Newton
// iteration on w + ln(w) = logX, which stays finite where exp(logX)
// overflows.
func lambertWLog(logX float64) (float64, error) {
	switch {
	case math.IsNaN(logX):
		return logX, nil
	case math.IsInf(logX, -1):
		return 0, nil
	case math.IsInf(logX, 1):
		return 0, ErrNoConvergence
	case logX < lambertWSmallArg:
		return math.Exp(logX), nil
	}

	var w float64
	if logX < 1 {
		w = math.Exp(logX)
	} else {
		w = logX - math.Log(logX)
	}

	for n := 0; n < lambertWMaxIter; n++ {
		f := w + math.Log(w) - logX
		next := w - f/(1+1/w)
		if next <= 0 {
			next = w / 2
		}
		if math.Abs(next-w) <= lambertWRelTol*math.Max(1, math.Abs(next)) {
			return next, nil
		}
		w = next
	}
	return 0, ErrNoConvergence
}

// goldenSectionMax returns the argument in [lo, hi] that maximises f.
func goldenSectionMax(f func(float64) (float64, error), lo, hi float64) (float64, error) {
	phi := (math.Sqrt(5) - 1) / 2
	tol := goldenRelTol * math.Max(1, math.Abs(hi-lo))

	x1 := hi - phi*(hi-lo)
	x2 := lo + phi*(hi-lo)
	f1, err := f(x1)
	if err != nil {
		return 0, err
	}
	f2, err := f(x2)
	if err != nil {
		return 0, err
	}

	for n := 0; n < goldenMaxIter; n++ {
		if hi-lo <= tol {
			return 0.5 * (lo + hi), nil
		}
		if f1 > f2 {
			hi, x2, f2 = x2, x1, f1
			x1 = hi - phi*(hi-lo)
			if f1, err = f(x1); err != nil {
				return 0, err
			}
		} else {
			lo, x1, f1 = x1, x2, f2
			x2 = lo + phi*(hi-lo)
			if f2, err = f(x2); err != nil {
				return 0, err
			}
		}
	}
	return 0, ErrNoConvergence
}

func nanPoint() DCPoint {
	n := math.NaN()
	return DCPoint{ISC: n, VOC: n, IMP: n, VMP: n, PMP: n, IX: n, IXX: n}
}
