// Package terminal provides small helpers for terminal control, such as
// erasing prompt lines after the user has answered them.
package terminal

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// ClearPreviousLines erases previously printed text from the terminal.
// textLength is the total number of characters that were printed (prompt plus
// the user's input); the helper works out how many screen lines that occupied
// at the current terminal width and clears each one with ANSI escapes.
//
// After the user presses Enter the cursor sits on a fresh line below the
// input, so one extra line is cleared to account for it.
func ClearPreviousLines(textLength int) {
	termWidth := 80
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		termWidth = width
	}

	lines := (textLength + termWidth - 1) / termWidth
	if lines < 1 {
		lines = 1
	}
	lines++ // the empty line the cursor landed on after Enter

	for i := 0; i < lines; i++ {
		fmt.Print("\r\x1b[2K")
		if i < lines-1 {
			fmt.Print("\x1b[1A")
		}
	}
}
