package outwriter

import (
	"os"

	"github.com/huangsam/repometrics/internal/contract"
	"golang.org/x/term"
)

// terminalWidth returns the width override from config, the detected
// terminal width, or 80 when neither is available.
func terminalWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detectedWidth <= 0 {
		return 80 // Conservative default for narrow terminals and CI
	}
	return detectedWidth
}

// GetMaxTableErrorWidth calculates the maximum width of the error column in
// the run summary table.
func GetMaxTableErrorWidth(cfg *contract.Config) int {
	// # + Repository + Status + Stage + Kind, plus borders and padding
	return clampWidth(terminalWidth(cfg)-75, 20, 100)
}

// GetMaxTableValueWidth calculates the maximum width of the value column when
// a single record is printed.
func GetMaxTableValueWidth(cfg *contract.Config) int {
	// Column names are at most 28 characters wide
	return clampWidth(terminalWidth(cfg)-35, 20, 200)
}

func clampWidth(available, lo, hi int) int {
	if available < lo {
		return lo
	}
	if available > hi {
		return hi
	}
	return available
}
