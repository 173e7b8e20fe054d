// Package textsplit breaks text into fixed-size overlapping chunks for
// embedding and retrieval. Chunk boundaries prefer paragraph, newline,
// sentence, and word breaks over arbitrary mid-token cuts; a hard cut is the
// last resort. Splitting is deterministic for a given input and configuration.
package textsplit

import (
	"strings"
	"unicode/utf8"
)

var separators = []string{"\n\n", "\n", ". ", " "}

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

type Splitter struct {
	chunkSize    int
	chunkOverlap int
}

func New(chunkSize, chunkOverlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 {
		chunkOverlap = DefaultChunkOverlap
	}
	if chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 2
	}
	return &Splitter{chunkSize: chunkSize, chunkOverlap: chunkOverlap}
}

// Split walks the text with a window of chunkSize runes, cutting each chunk
// at the latest preferred boundary inside the window and stepping forward by
// the chunk length minus chunkOverlap.
func (s *Splitter) Split(text string) []string {
	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return nil
	}

	var chunks []string
	for start := 0; start < n; {
		end := start + s.chunkSize
		if end > n {
			end = n
		}
		cut := end
		if end < n {
			cut = s.boundary(runes, start, end)
		}

		chunk := strings.TrimSpace(string(runes[start:cut]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		var step int
		if cut < end {
			step = (cut - start) - s.chunkOverlap
		} else {
			step = s.chunkSize - s.chunkOverlap
		}
		if step < 1 {
			step = cut - start
			if step < 1 {
				break
			}
		}
		start += step
	}
	return chunks
}

// boundary returns the cut position for the window runes[start:end], choosing
// the last occurrence of the most preferred separator that still leaves the
// chunk longer than the overlap. Falls back to end (hard cut).
func (s *Splitter) boundary(runes []rune, start, end int) int {
	window := string(runes[start:end])
	for _, sep := range separators {
		idx := strings.LastIndex(window, sep)
		if idx < 0 {
			continue
		}
		cutRunes := utf8.RuneCountInString(window[:idx+len(sep)])
		if cutRunes <= s.chunkOverlap {
			continue
		}
		return start + cutRunes
	}
	return end
}
