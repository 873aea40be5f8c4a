package types

import (
	"fmt"
	"math"
	"time"
)

// Location is an immutable observer position. Build it with NewLocation.
type Location struct {
	latitude  float64
	longitude float64
	altitude  float64
	tz        *time.Location
}

// NewLocation validates coordinates and resolves the timezone name.
func NewLocation(latitude, longitude, altitude float64, timezone string) (Location, error) {
	if math.IsNaN(latitude) || latitude < -90 || latitude > 90 {
		return Location{}, fmt.Errorf("%w: latitude %v outside [-90, 90]", ErrInputValidation, latitude)
	}
	if math.IsNaN(longitude) || longitude < -180 || longitude > 180 {
		return Location{}, fmt.Errorf("%w: longitude %v outside [-180, 180]", ErrInputValidation, longitude)
	}
	if math.IsNaN(altitude) {
		return Location{}, fmt.Errorf("%w: altitude is NaN", ErrInputValidation)
	}
	if timezone == "" {
		timezone = "UTC"
	}
	tz, err := time.LoadLocation(timezone)
	if err != nil {
		return Location{}, fmt.Errorf("%w: timezone %q: %v", ErrInputValidation, timezone, err)
	}
	return Location{latitude: latitude, longitude: longitude, altitude: altitude, tz: tz}, nil
}

// Latitude in degrees north.
func (l Location) Latitude() float64 { return l.latitude }

// Longitude in degrees east.
func (l Location) Longitude() float64 { return l.longitude }

// Altitude in meters above sea level.
func (l Location) Altitude() float64 { return l.altitude }

// TZ returns the location's timezone, UTC when unset.
func (l Location) TZ() *time.Location {
	if l.tz == nil {
		return time.UTC
	}
	return l.tz
}

// Valid reports whether the location was built through NewLocation.
func (l Location) Valid() bool { return l.tz != nil }

func (l Location) String() string {
	return fmt.Sprintf("%.4f,%.4f@%.0fm (%s)", l.latitude, l.longitude, l.altitude, l.TZ())
}
