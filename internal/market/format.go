package market

import "fmt"

// FormatPercent renders a fractional holding for display with diminishing
// precision: whole percents from 10% up, two decimals from 1%, three from
// 0.01%, and a floor marker below that. Storage always keeps the full float.
func FormatPercent(fraction float64) string {
	pct := fraction * 100
	switch {
	case pct >= 10:
		return fmt.Sprintf("%.0f%%", pct)
	case pct >= 1:
		return fmt.Sprintf("%.2f%%", pct)
	case pct >= 0.01:
		return fmt.Sprintf("%.3f%%", pct)
	default:
		return "<0.01%"
	}
}
