package loader

import (
	"strings"
	"unicode"
)

// SplitConfig controls how documents are cut into overlapping windows,
// measured in characters.
type SplitConfig struct {
	ChunkSize int
	MinChars  int
	Overlap   int
}

// DefaultSplitConfig returns the standard ingestion parameters.
func DefaultSplitConfig() SplitConfig {
	return SplitConfig{
		ChunkSize: 1000,
		Overlap:   200,
	}
}

// Split cuts text into overlapping chunks, preferring to break on whitespace
// so windows don't end mid-word.
func Split(text string, cfg SplitConfig) []string {
	clean := strings.TrimSpace(text)
	if clean == "" {
		return nil
	}
	if cfg.ChunkSize <= 0 {
		cfg = DefaultSplitConfig()
	}
	minChars := cfg.MinChars
	if minChars <= 0 {
		minChars = cfg.ChunkSize / 2
	}

	runes := []rune(clean)
	if len(runes) <= cfg.ChunkSize {
		return []string{clean}
	}

	chunks := make([]string, 0, 8)
	start := 0
	for start < len(runes) {
		end := start + cfg.ChunkSize
		if end > len(runes) {
			end = len(runes)
		}

		if end < len(runes) {
			cut := end
			minCut := start + minChars
			if minCut > end {
				minCut = start
			}
			for i := end; i > minCut; i-- {
				if unicode.IsSpace(runes[i-1]) {
					cut = i
					break
				}
			}
			end = cut
		}

		if end <= start {
			break
		}

		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end >= len(runes) {
			break
		}

		nextStart := end
		if cfg.Overlap > 0 && end-start > cfg.Overlap {
			nextStart = end - cfg.Overlap
		}
		if nextStart <= start {
			nextStart = end
		}
		start = nextStart
	}

	return chunks
}
