// Package chunker splits document text into bounded, overlapping windows
// for embedding. Windowing operates on runes so multi-byte characters are
// never split mid-sequence.
package chunker

import "errors"

// Common validation errors for Split parameters.
var (
	ErrInvalidWindow  = errors.New("window size must be positive")
	ErrInvalidOverlap = errors.New("overlap must be non-negative and smaller than the window")
)

// Split partitions text into windows of at most maxChars runes, where each
// window after the first starts overlap runes before the previous window's
// end. The final window may be shorter than maxChars. Overlap must be
// strictly smaller than the window so every step makes forward progress.
//
// Concatenating the windows in order reconstructs the input, with each
// adjacent pair sharing exactly overlap runes (except possibly the last).
// Empty input yields no windows.
func Split(text string, maxChars, overlap int) ([]string, error) {
	if maxChars <= 0 {
		return nil, ErrInvalidWindow
	}

	if overlap < 0 || overlap >= maxChars {
		return nil, ErrInvalidOverlap
	}

	if text == "" {
		return nil, nil
	}

	runes := []rune(text)
	step := maxChars - overlap

	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + maxChars
		if end > len(runes) {
			end = len(runes)
		}

		chunks = append(chunks, string(runes[start:end]))

		if end == len(runes) {
			break
		}
	}

	return chunks, nil
}
