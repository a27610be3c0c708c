package domain

import "fmt"

// FormatMajorUnits renders a minor-unit amount as a major-unit decimal string
// with two fraction digits, e.g. 150000 -> "1500.00". Integer math only so
// large amounts never lose precision.
func FormatMajorUnits(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}
