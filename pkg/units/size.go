package units

import "fmt"

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatBytes renders a byte count with the first binary unit whose
// magnitude is under 1024, e.g. 1536 -> "1.50 KB".
// Values of 1024 TB and above stay in TB.
func FormatBytes(n int64) string {
	size := float64(n)
	for i, unit := range sizeUnits {
		if size < 1024.0 || i == len(sizeUnits)-1 {
			return fmt.Sprintf("%.2f %s", size, unit)
		}
		size /= 1024.0
	}
	return ""
}
