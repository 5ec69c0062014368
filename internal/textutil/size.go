// Package textutil provides small presentation helpers shared by the CLI.
package textutil

import "fmt"

const sizeUnit = 1024

// FormatSize renders a byte count using 1024-based units up to GB.
// Plain bytes are shown without decimals; KB, MB, and GB use two
// decimal places. Callers guarantee a non-negative count.
func FormatSize(bytes int64) string {
	value := float64(bytes)
	switch {
	case bytes < sizeUnit:
		return fmt.Sprintf("%d bytes", bytes)
	case bytes < sizeUnit*sizeUnit:
		return fmt.Sprintf("%.2f KB", value/sizeUnit)
	case bytes < sizeUnit*sizeUnit*sizeUnit:
		return fmt.Sprintf("%.2f MB", value/(sizeUnit*sizeUnit))
	default:
		return fmt.Sprintf("%.2f GB", value/(sizeUnit*sizeUnit*sizeUnit))
	}
}
