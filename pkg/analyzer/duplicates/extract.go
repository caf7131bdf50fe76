package duplicates

import (
	"strings"

	"github.com/augurhq/augur/pkg/models"
)

// extractBlocks slices file content into overlapping candidate blocks with
// variable window length. Windows dominated by comments or falling short of
// the minimum line/token counts are dropped. Overlap between surviving
// windows is intentional; redundant reports are deduplicated downstream, not
// here. Pure function of its inputs.
func extractBlocks(file, content string, cfg Config) []models.CodeBlock {
	lines := strings.Split(content, "\n")
	// A trailing newline yields an empty final element; it is not a line.
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	maxWindow := cfg.MinLines * 3
	if maxWindow > len(lines) {
		maxWindow = len(lines)
	}

	var blocks []models.CodeBlock
	for window := cfg.MinLines; window <= maxWindow; window++ {
		for i := 0; i+window < len(lines); i++ {
			trimmed := make([]string, 0, window)
			for _, line := range lines[i : i+window] {
				line = strings.TrimSpace(line)
				if line != "" {
					trimmed = append(trimmed, line)
				}
			}
			if len(trimmed) < cfg.MinLines {
				continue
			}

			blockContent := strings.Join(trimmed, "\n")
			if isMostlyComments(blockContent) {
				continue
			}

			normalized := Normalize(blockContent)
			tokens := strings.Fields(normalized)
			if len(tokens) < cfg.MinTokens {
				continue
			}

			blocks = append(blocks, models.CodeBlock{
				File:           file,
				LineStart:      uint32(i + 1),
				LineEnd:        uint32(i + window),
				Content:        blockContent,
				Normalized:     normalized,
				Tokens:         tokens,
				Hash:           hashContent(blockContent),
				NormalizedHash: hashContent(Canonicalize(blockContent)),
			})
		}
	}
	return blocks
}

// countLines counts lines the same way the extractor splits them: a trailing
// newline does not open a final empty line.
func countLines(content string) int {
	if content == "" {
		return 0
	}
	n := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		n++
	}
	return n
}

// isMostlyComments reports whether more than half the lines are comment-only.
func isMostlyComments(content string) bool {
	lines := strings.Split(content, "\n")
	if len(lines) == 0 {
		return false
	}

	commentLines := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "//") ||
			strings.HasPrefix(trimmed, "#") ||
			strings.HasPrefix(trimmed, "/*") {
			commentLines++
		}
	}
	return float64(commentLines)/float64(len(lines)) > 0.5
}

// ShouldProcess applies the test/generated/pattern exclusion toggles to a
// file path. It runs before any content is read so excluded files cost
// nothing.
func ShouldProcess(path string, cfg Config) bool {
	if cfg.ExcludeTests {
		lower := strings.ToLower(path)
		if strings.Contains(lower, "test") ||
			strings.Contains(lower, "spec") ||
			strings.Contains(lower, "__tests__") {
			return false
		}
	}

	if cfg.ExcludeGenerated {
		lower := strings.ToLower(path)
		if strings.Contains(lower, "generated") ||
			strings.Contains(lower, ".gen.") ||
			strings.Contains(lower, "_pb.") ||
			strings.Contains(lower, ".pb.") {
			return false
		}
	}

	for _, pattern := range cfg.ExcludePatterns {
		if strings.Contains(path, pattern) {
			return false
		}
	}
	return true
}
