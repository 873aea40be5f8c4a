// Package irradiance implements empirical decomposition models that split
// global horizontal irradiance into its direct and diffuse components
// (DISC, DIRINT, DIRINDEX and ERBS), and the plane-of-array transposition
// used to project those components onto a tilted PV surface.
//
// All functions work on equally long slices of per-sample values. Angles are
// degrees, irradiance W/m², pressure Pa. NaN inputs propagate to NaN outputs.
package irradiance
