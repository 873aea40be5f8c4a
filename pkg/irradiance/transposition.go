package irradiance

import "math"

// minCosZenithTransposition bounds the beam ratio Rb near the horizon.
const minCosZenithTransposition = 0.01745

// POA holds the plane-of-array irradiance components in W/m².
type POA struct {
	Global        float64
	Direct        float64
	Diffuse       float64
	SkyDiffuse    float64
	GroundDiffuse float64
}

// AOIProjection returns the cosine of the angle of incidence between the sun
// and a surface, clipped to [-1, 1].
func AOIProjection(surfaceTilt, surfaceAzimuth, zenith, azimuth float64) float64 {
	st, ct := math.Sincos(surfaceTilt * math.Pi / 180)
	sz, cz := math.Sincos(zenith * math.Pi / 180)
	p := ct*cz + st*sz*math.Cos((azimuth-surfaceAzimuth)*math.Pi/180)
	return math.Max(-1, math.Min(1, p))
}

// AOI returns the angle of incidence in degrees.
func AOI(surfaceTilt, surfaceAzimuth, zenith, azimuth float64) float64 {
	return math.Acos(AOIProjection(surfaceTilt, surfaceAzimuth, zenith, azimuth)) * 180 / math.Pi
}

// HayDavies returns sky diffuse irradiance on a tilted surface from the
// Hay-Davies anisotropic model.
func HayDavies(surfaceTilt, surfaceAzimuth, dhi, dni, dniExtra, zenith, azimuth float64) float64 {
	cosTT := math.Max(AOIProjection(surfaceTilt, surfaceAzimuth, zenith, azimuth), 0)
	rb := cosTT / math.Max(math.Cos(zenith*math.Pi/180), minCosZenithTransposition)

	ai := dni / dniExtra
	isotropic := math.Max(dhi*(1-ai)*0.5*(1+math.Cos(surfaceTilt*math.Pi/180)), 0)
	circumsolar := math.Max(dhi*ai*rb, 0)
	return isotropic + circumsolar
}

// GroundDiffuse returns irradiance reflected from the ground onto a tilted
// surface.
func GroundDiffuse(surfaceTilt, ghi, albedo float64) float64 {
	return ghi * albedo * (1 - math.Cos(surfaceTilt*math.Pi/180)) * 0.5
}

// TotalIrradiance combines beam, Hay-Davies sky diffuse and ground reflected
// irradiance on a tilted surface.
func TotalIrradiance(surfaceTilt, surfaceAzimuth, zenith, azimuth, dni, ghi, dhi, dniExtra, albedo float64) POA {
	aoi := AOI(surfaceTilt, surfaceAzimuth, zenith, azimuth)
	sky := HayDavies(surfaceTilt, surfaceAzimuth, dhi, dni, dniExtra, zenith, azimuth)
	ground := GroundDiffuse(surfaceTilt, ghi, albedo)

	direct := math.Max(dni*math.Cos(aoi*math.Pi/180), 0)
	diffuse := sky + ground
	return POA{
		Global:        direct + diffuse,
		Direct:        direct,
		Diffuse:       diffuse,
		SkyDiffuse:    sky,
		GroundDiffuse: ground,
	}
}
