package solar

import (
	"math"
	"time"
)

// CalculateSunriseSunset returns sunrise and sunset as minutes from midnight UTC
// for the calendar day of date at the specified latitude and longitude.
// Returns (-1, -1) for polar day (sun never sets) or polar night (sun never rises).
func CalculateSunriseSunset(date time.Time, latitude, longitude float64) (sunriseMinutes, sunsetMinutes int) {
	// Solar declination for the day of year
	doy := float64(date.YearDay())
	innerAngle := degToRad(356.6 + 0.9856*doy)
	outerAngle := degToRad(278.97 + 0.9856*doy + 1.9165*math.Sin(innerAngle))
	declinationRad := math.Asin(0.39785 * math.Sin(outerAngle))

	// At sunrise/sunset the sun is at the horizon: cos(H) = -tan(lat) * tan(declination)
	cosH := -math.Tan(degToRad(latitude)) * math.Tan(declinationRad)
	if cosH < -1.0 || cosH > 1.0 {
		return -1, -1
	}

	// Half-day length in minutes, 15 degrees per hour
	hourAngleMinutes := radToDeg(math.Acos(cosH)) / 15.0 * 60.0

	// Solar noon in UTC minutes: 12:00 adjusted for longitude (4 min/deg) and the equation of time
	noon := time.Date(date.Year(), date.Month(), date.Day(), 12, 0, 0, 0, time.UTC)
	solarNoonUTC := 720.0 - longitude*4.0 - equationOfTime(noon)

	sunriseUTC := math.Mod(solarNoonUTC-hourAngleMinutes+1440, 1440)
	sunsetUTC := math.Mod(solarNoonUTC+hourAngleMinutes+1440, 1440)

	return int(math.Round(sunriseUTC)), int(math.Round(sunsetUTC))
}

// DaylightWindow returns sunrise and sunset for the calendar day of t in the
// location's timezone. ok is false during polar day or night.
func DaylightWindow(latitude, longitude float64, t time.Time) (sunrise, sunset time.Time, ok bool) {
	rise, set := CalculateSunriseSunset(t, latitude, longitude)
	if rise < 0 {
		return time.Time{}, time.Time{}, false
	}
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	sunrise = midnight.Add(time.Duration(rise) * time.Minute).In(t.Location())
	sunset = midnight.Add(time.Duration(set) * time.Minute).In(t.Location())
	if sunset.Before(sunrise) {
		sunset = sunset.Add(24 * time.Hour)
	}
	return sunrise, sunset, true
}
