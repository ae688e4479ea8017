package outwriter

import (
	"os"

	"github.com/arsham/git-hotspots/internal/contract"
	"golang.org/x/term"
)

// Path column bounds and the space reserved for the other columns.
const (
	minPathWidth  = 15
	maxPathWidth  = 70
	reservedWidth = 60 // LINE, FUNCTION and FREQUENCY plus borders and padding
	fallbackWidth = 80
)

// GetMaxTablePathWidth calculates the maximum width for file paths in table output
// based on terminal width.
func GetMaxTablePathWidth(cfg *contract.Config) int {
	termWidth := cfg.Width
	if termWidth <= 0 {
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = fallbackWidth
		} else {
			termWidth = detectedWidth
		}
	}

	available := termWidth - reservedWidth
	if available < minPathWidth {
		return minPathWidth
	}
	if available > maxPathWidth {
		return maxPathWidth
	}
	return available
}
