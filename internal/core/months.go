package core

import "strings"

var monthNames = [...]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

var monthByName = func() map[string]int {
	m := make(map[string]int, len(monthNames))
	for i, name := range monthNames {
		m[strings.ToLower(name)] = i + 1
	}
	return m
}()

// MonthName returns the English name of month 1-12, or "" otherwise.
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return monthNames[month-1]
}

// MonthFromName resolves a full English month name, case-insensitively.
func MonthFromName(name string) (int, bool) {
	m, ok := monthByName[strings.ToLower(strings.TrimSpace(name))]
	return m, ok
}
