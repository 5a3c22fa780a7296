package core

// A billed unit is fifteen minutes of service.
const minutesPerUnit = 15

// UnitsToHours converts billed units to hours.
func UnitsToHours(units float64) float64 {
	return units * minutesPerUnit / 60
}

// HoursToUnits converts hours to billed units.
func HoursToUnits(hours float64) float64 {
	return hours * 60 / minutesPerUnit
}
