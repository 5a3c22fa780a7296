package core

import "fmt"

// FiscalPeriod is the fiscal year label and quarter a calendar month falls in.
// Fiscal years run Oct 1 through Sep 30.
type FiscalPeriod struct {
	FiscalYear string
	Quarter    int
}

// fiscalMonths lists calendar months in fiscal order.
var fiscalMonths = [12]int{10, 11, 12, 1, 2, 3, 4, 5, 6, 7, 8, 9}

var quarterByMonth = map[int]int{
	10: 1, 11: 1, 12: 1,
	1: 2, 2: 2, 3: 2,
	4: 3, 5: 3, 6: 3,
	7: 4, 8: 4, 9: 4,
}

// Quarter returns the fiscal quarter (1-4) of a calendar month, or 0 when
// the month is absent or out of range.
func Quarter(month int) int {
	return quarterByMonth[month]
}

// FiscalYear labels the fiscal year that starts in October of startYear,
// e.g. 2023 -> "2023-24". The suffix is the next year's last two digits, so
// 1999 -> "1999-00".
func FiscalYear(startYear int) string {
	next := (startYear + 1) % 100
	if next < 0 {
		next = -next
	}
	return fmt.Sprintf("%d-%02d", startYear, next)
}

// FiscalStartYear returns the calendar year whose October opens the fiscal
// year containing (year, month). January through September belong to the
// fiscal year that began the previous October.
func FiscalStartYear(year, month int) int {
	if Quarter(month) == 1 {
		return year
	}
	return year - 1
}

// FiscalPeriodOf resolves a calendar month to its fiscal period. An unknown
// month yields quarter 0 and the label of the previous year's fiscal year.
func FiscalPeriodOf(year, month int) FiscalPeriod {
	return FiscalPeriod{
		FiscalYear: FiscalYear(FiscalStartYear(year, month)),
		Quarter:    Quarter(month),
	}
}

// MonthsBefore returns the calendar months of the fiscal year that precede
// month, in fiscal order. October has none.
func MonthsBefore(month int) []int {
	var out []int
	for _, m := range fiscalMonths {
		if m == month {
			return out
		}
		out = append(out, m)
	}
	return nil
}

// QuarterLabel renders a quarter as "Q1".."Q4", or "" for the sentinel.
func QuarterLabel(q int) string {
	if q < 1 || q > 4 {
		return ""
	}
	return fmt.Sprintf("Q%d", q)
}
