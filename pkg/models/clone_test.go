package models

import "testing"

func TestCloneTypeBadge(t *testing.T) {
	tests := []struct {
		cloneType CloneType
		badge     string
	}{
		{CloneType1, "T1"},
		{CloneType2, "T2"},
		{CloneType3, "T3"},
		{CloneType4, "T4"},
		{CloneType("bogus"), "T4"},
	}
	for _, tt := range tests {
		if got := tt.cloneType.Badge(); got != tt.badge {
			t.Errorf("%s.Badge() = %q, want %q", tt.cloneType, got, tt.badge)
		}
	}
}

func TestCodeBlockLineCount(t *testing.T) {
	b := CodeBlock{LineStart: 10, LineEnd: 14}
	if got := b.LineCount(); got != 5 {
		t.Errorf("LineCount() = %d, want 5", got)
	}

	single := CodeBlock{LineStart: 3, LineEnd: 3}
	if got := single.LineCount(); got != 1 {
		t.Errorf("single-line LineCount() = %d, want 1", got)
	}
}

func TestToDuplicateBlock(t *testing.T) {
	c := Clone{
		File1:                "a.go",
		Line1:                10,
		File2:                "b.go",
		Line2:                20,
		Content:              "snippet...",
		Similarity:           0.95,
		CloneType:            CloneType2,
		TokenSimilarity:      0.88,
		StructuralSimilarity: 0.97,
		LineCount:            6,
	}

	legacy := c.ToDuplicateBlock()
	if legacy.File1 != "a.go" || legacy.Line1 != 10 ||
		legacy.File2 != "b.go" || legacy.Line2 != 20 {
		t.Errorf("positions not carried over: %+v", legacy)
	}
	if legacy.Content != "snippet..." || legacy.Similarity != 0.95 {
		t.Errorf("content or similarity not carried over: %+v", legacy)
	}
}

func TestToDuplicateBlocks(t *testing.T) {
	analysis := &CloneAnalysis{
		Clones: []Clone{
			{File1: "a.go", File2: "b.go", Similarity: 1.0},
			{File1: "c.go", File2: "d.go", Similarity: 0.9},
		},
	}

	legacy := analysis.ToDuplicateBlocks()
	if len(legacy) != 2 {
		t.Fatalf("len = %d, want 2", len(legacy))
	}
	if legacy[0].File1 != "a.go" || legacy[1].Similarity != 0.9 {
		t.Errorf("projection mismatch: %+v", legacy)
	}

	empty := &CloneAnalysis{}
	if got := empty.ToDuplicateBlocks(); len(got) != 0 {
		t.Errorf("empty analysis projected %d blocks", len(got))
	}
}

func TestCloneSummaryAddClone(t *testing.T) {
	s := NewCloneSummary()

	s.AddClone(Clone{File1: "a.go", File2: "b.go", CloneType: CloneType1, LineCount: 5})
	s.AddClone(Clone{File1: "a.go", File2: "c.go", CloneType: CloneType2, LineCount: 7})
	s.AddClone(Clone{File1: "b.go", File2: "c.go", CloneType: CloneType3, LineCount: 3})
	s.AddClone(Clone{File1: "a.go", File2: "c.go", CloneType: CloneType4, LineCount: 2})

	if s.TotalClones != 4 {
		t.Errorf("TotalClones = %d, want 4", s.TotalClones)
	}
	if s.Type1Count != 1 || s.Type2Count != 1 || s.Type3Count != 1 || s.Type4Count != 1 {
		t.Errorf("type counts wrong: %+v", s)
	}
	// Both sides of a pair contribute.
	if s.DuplicatedLines != (5+7+3+2)*2 {
		t.Errorf("DuplicatedLines = %d, want %d", s.DuplicatedLines, (5+7+3+2)*2)
	}
	if s.FileOccurrences["a.go"] != 3 {
		t.Errorf("FileOccurrences[a.go] = %d, want 3", s.FileOccurrences["a.go"])
	}
	if s.FileOccurrences["c.go"] != 3 {
		t.Errorf("FileOccurrences[c.go] = %d, want 3", s.FileOccurrences["c.go"])
	}
}
