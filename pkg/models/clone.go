package models

// CloneType classifies how closely two code fragments match.
type CloneType string

const (
	CloneType1 CloneType = "type1" // Exact after normalization (whitespace/comments only)
	CloneType2 CloneType = "type2" // Same canonical structure, renamed identifiers/literals
	CloneType3 CloneType = "type3" // Structurally similar, partial edits
	CloneType4 CloneType = "type4" // Weak signal: token overlap without structural match
)

// String returns the string representation.
func (t CloneType) String() string {
	return string(t)
}

// Badge returns the short label used in text output.
func (t CloneType) Badge() string {
	switch t {
	case CloneType1:
		return "T1"
	case CloneType2:
		return "T2"
	case CloneType3:
		return "T3"
	default:
		return "T4"
	}
}

// CodeBlock is a contiguous run of non-blank lines from one file, the unit
// of comparison. Blocks are created during extraction and never mutated.
type CodeBlock struct {
	File           string
	LineStart      uint32 // 1-based, inclusive
	LineEnd        uint32 // 1-based, inclusive
	Content        string
	Normalized     string
	Tokens         []string
	Hash           uint64 // digest of Content
	NormalizedHash uint64 // digest of the canonicalized form
}

// LineCount returns the number of lines the block spans.
func (b *CodeBlock) LineCount() int {
	return int(b.LineEnd-b.LineStart) + 1
}

// Clone is one reported duplicate pair with multi-metric similarity detail.
type Clone struct {
	File1                string    `json:"file1"`
	Line1                uint32    `json:"line1"`
	File2                string    `json:"file2"`
	Line2                uint32    `json:"line2"`
	Content              string    `json:"content"`
	Similarity           float64   `json:"similarity"`
	CloneType            CloneType `json:"clone_type"`
	TokenSimilarity      float64   `json:"token_similarity"`
	StructuralSimilarity float64   `json:"structural_similarity"`
	LineCount            int       `json:"line_count"`
}

// DuplicateBlock is the legacy result record without clone-type detail.
type DuplicateBlock struct {
	File1      string  `json:"file1"`
	Line1      uint32  `json:"line1"`
	File2      string  `json:"file2"`
	Line2      uint32  `json:"line2"`
	Content    string  `json:"content"`
	Similarity float64 `json:"similarity"`
}

// ToDuplicateBlock projects a Clone onto the legacy record shape.
func (c Clone) ToDuplicateBlock() DuplicateBlock {
	return DuplicateBlock{
		File1:      c.File1,
		Line1:      c.Line1,
		File2:      c.File2,
		Line2:      c.Line2,
		Content:    c.Content,
		Similarity: c.Similarity,
	}
}

// CloneAnalysis is the full duplicate detection result.
type CloneAnalysis struct {
	Clones            []Clone      `json:"clones"`
	Summary           CloneSummary `json:"summary"`
	TotalFilesScanned int          `json:"total_files_scanned"`
	MinLines          int          `json:"min_lines"`
	Threshold         float64      `json:"threshold"`
}

// ToDuplicateBlocks projects all results onto the legacy record shape.
func (a *CloneAnalysis) ToDuplicateBlocks() []DuplicateBlock {
	blocks := make([]DuplicateBlock, 0, len(a.Clones))
	for _, c := range a.Clones {
		blocks = append(blocks, c.ToDuplicateBlock())
	}
	return blocks
}

// CloneSummary provides aggregate statistics for a detection run.
type CloneSummary struct {
	TotalClones      int                  `json:"total_clones"`
	Type1Count       int                  `json:"type1_count"`
	Type2Count       int                  `json:"type2_count"`
	Type3Count       int                  `json:"type3_count"`
	Type4Count       int                  `json:"type4_count"`
	DuplicatedLines  int                  `json:"duplicated_lines"`
	TotalLines       int                  `json:"total_lines"`
	DuplicationRatio float64              `json:"duplication_ratio"`
	FileOccurrences  map[string]int       `json:"file_occurrences"`
	AvgSimilarity    float64              `json:"avg_similarity"`
	P50Similarity    float64              `json:"p50_similarity"`
	P95Similarity    float64              `json:"p95_similarity"`
	Hotspots         []DuplicationHotspot `json:"hotspots,omitempty"`
}

// DuplicationHotspot represents a file with high duplication.
type DuplicationHotspot struct {
	File           string  `json:"file"`
	DuplicateLines int     `json:"duplicate_lines"`
	PairCount      int     `json:"pair_count"`
	Severity       float64 `json:"severity"`
}

// NewCloneSummary creates an initialized summary.
func NewCloneSummary() CloneSummary {
	return CloneSummary{
		FileOccurrences: make(map[string]int),
	}
}

// AddClone updates the summary with a new clone pair.
func (s *CloneSummary) AddClone(c Clone) {
	s.TotalClones++
	s.FileOccurrences[c.File1]++
	s.FileOccurrences[c.File2]++
	s.DuplicatedLines += c.LineCount * 2

	switch c.CloneType {
	case CloneType1:
		s.Type1Count++
	case CloneType2:
		s.Type2Count++
	case CloneType3:
		s.Type3Count++
	case CloneType4:
		s.Type4Count++
	}
}
