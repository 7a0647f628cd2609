package countdown

import "fmt"

// Format renders seconds as M:SS. Minutes are not padded.
func Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
