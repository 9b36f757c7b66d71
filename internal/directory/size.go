package directory

import "fmt"

var sizeUnits = []struct {
	threshold int64
	suffix    string
}{
	{1 << 40, "T"},
	{1 << 30, "G"},
	{1 << 20, "M"},
	{1 << 10, "K"},
}

// FormatSize renders a byte count the way the index shows it: one decimal
// place and a unit suffix from 1K upwards, the plain byte count below that.
func FormatSize(size int64) string {
	for _, unit := range sizeUnits {
		if size >= unit.threshold {
			return fmt.Sprintf("%.1f%s", float64(size)/float64(unit.threshold), unit.suffix)
		}
	}

	return fmt.Sprintf("%dB", size)
}
