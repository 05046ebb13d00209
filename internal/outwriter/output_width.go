package outwriter

import (
	"os"

	"github.com/TordWessman/gitstat/internal/contract"
	"golang.org/x/term"
)

// GetMaxTableTextWidth calculates the maximum width for the free-text column
// of a table (URLs, error messages) based on terminal width and the width
// taken by the fixed columns.
func GetMaxTableTextWidth(cfg *contract.Config, fixedWidth int) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Conservative default for narrow terminals and CI
			termWidth = 80
		} else {
			termWidth = detectedWidth
		}
	}

	// Table borders, separators and padding
	available := termWidth - fixedWidth - 10
	if available < 15 {
		return 15
	}
	if available > 70 {
		return 70
	}
	return available
}
