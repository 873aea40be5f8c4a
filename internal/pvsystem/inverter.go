package pvsystem

import (
	"math"

	"github.com/chrissnell/pvforecast/internal/devices"
)

// sandiaAC returns inverter AC output in W for DC voltage vdc and DC power
// pdc following the Sandia inverter model. Output is clipped at Paco and
// below the self-consumption threshold Pso the night tare -Pnt is reported.
func sandiaAC(inv devices.Inverter, vdc, pdc float64) float64 {
	dv := vdc - inv.Vdco
	a := inv.Pdco * (1 + inv.C1*dv)
	b := inv.Pso * (1 + inv.C2*dv)
	c := inv.C0 * (1 + inv.C3*dv)

	ac := (inv.Paco/(a-b)-c*(a-b))*(pdc-b) + c*(pdc-b)*(pdc-b)
	ac = math.Min(ac, inv.Paco)
	if pdc < inv.Pso {
		ac = -math.Abs(inv.Pnt)
	}
	return ac
}
