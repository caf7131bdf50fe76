package duplicates

import (
	"fmt"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/augurhq/augur/pkg/models"
	"github.com/augurhq/augur/pkg/source"
)

const accumulateSnippet = `fn accumulate(items) {
    let total = 0
    for item in items {
        total = total + item.value
    }
    emit(total)
    return total
}`

// renamedSnippet is accumulateSnippet with every identifier renamed.
const renamedSnippet = `fn gather(records) {
    let sum = 0
    for entry in records {
        sum = sum + entry.value
    }
    emit(sum)
    return sum
}`

const unrelatedSnippet = `class Parser {
    open(path)
    read_header(buffer)
    validate_checksum(buffer)
    close(path)
    report_status()
}`

func TestNewDefaults(t *testing.T) {
	a := New()
	cfg := a.Config()

	if cfg.MinLines != 5 {
		t.Errorf("MinLines = %d, want 5", cfg.MinLines)
	}
	if cfg.MinTokens != 10 {
		t.Errorf("MinTokens = %d, want 10", cfg.MinTokens)
	}
	if cfg.SimilarityThreshold != 0.9 {
		t.Errorf("SimilarityThreshold = %f, want 0.9", cfg.SimilarityThreshold)
	}
	if !cfg.DetectType1 || !cfg.DetectType2 || !cfg.DetectType3 {
		t.Error("all detection passes should default on")
	}
	if !cfg.UseParallel {
		t.Error("parallel should default on")
	}
	if cfg.ExcludeTests {
		t.Error("test files should be included by default")
	}
	if !cfg.ExcludeGenerated {
		t.Error("generated files should be excluded by default")
	}
	if cfg.MaxFileSize != 1_000_000 {
		t.Errorf("MaxFileSize = %d, want 1000000", cfg.MaxFileSize)
	}
}

func TestOptions(t *testing.T) {
	a := New(
		WithMinLines(8),
		WithMinTokens(20),
		WithSimilarityThreshold(0.75),
		WithParallel(false),
	)
	cfg := a.Config()

	if cfg.MinLines != 8 || cfg.MinTokens != 20 {
		t.Errorf("options not applied: %+v", cfg)
	}
	if cfg.SimilarityThreshold != 0.75 {
		t.Errorf("threshold = %f, want 0.75", cfg.SimilarityThreshold)
	}
	if cfg.UseParallel {
		t.Error("WithParallel(false) not applied")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults valid", func(c *Config) {}, false},
		{"zero min lines", func(c *Config) { c.MinLines = 0 }, true},
		{"negative min tokens", func(c *Config) { c.MinTokens = -1 }, true},
		{"threshold above one", func(c *Config) { c.SimilarityThreshold = 1.5 }, true},
		{"negative threshold", func(c *Config) { c.SimilarityThreshold = -0.1 }, true},
		{"negative max file size", func(c *Config) { c.MaxFileSize = -1 }, true},
		{"zero max file size disables the cap", func(c *Config) { c.MaxFileSize = 0 }, false},
		{"boundary thresholds", func(c *Config) { c.SimilarityThreshold = 1.0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAnalyzeRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SimilarityThreshold = 2.0
	a := New(WithConfig(cfg))

	_, err := a.Analyze(nil, source.NewFilesystem(), nil)
	if err == nil {
		t.Fatal("expected error for invalid config")
	}
}

func TestAnalyzeFindsExactClones(t *testing.T) {
	src := source.NewMemory(map[string]string{
		"a.go": accumulateSnippet,
		"b.go": accumulateSnippet,
		"c.go": unrelatedSnippet,
	})

	a := New(WithSimilarityThreshold(0.9))
	analysis, err := a.Analyze([]string{"a.go", "b.go", "c.go"}, src, nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if analysis.TotalFilesScanned != 3 {
		t.Errorf("TotalFilesScanned = %d, want 3", analysis.TotalFilesScanned)
	}
	if len(analysis.Clones) == 0 {
		t.Fatal("expected clones between identical files")
	}

	foundType1 := false
	for _, c := range analysis.Clones {
		if c.CloneType == models.CloneType1 {
			foundType1 = true
			if c.Similarity != 1.0 {
				t.Errorf("exact clone similarity = %f, want 1.0", c.Similarity)
			}
		}
	}
	if !foundType1 {
		t.Error("no exact clone reported for identical content")
	}
	if analysis.Summary.Type1Count == 0 {
		t.Error("summary missed exact clones")
	}
}

func TestAnalyzeFindsRenamedClones(t *testing.T) {
	src := source.NewMemory(map[string]string{
		"a.go": accumulateSnippet,
		"b.go": renamedSnippet,
	})

	a := New(WithSimilarityThreshold(0.3))
	analysis, err := a.Analyze([]string{"a.go", "b.go"}, src, nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	foundType2 := false
	for _, c := range analysis.Clones {
		if c.CloneType == models.CloneType2 {
			foundType2 = true
		}
		if c.CloneType == models.CloneType1 {
			t.Errorf("renamed content misclassified as exact: %+v", c)
		}
	}
	if !foundType2 {
		t.Error("no renamed clone reported for identifier-renamed content")
	}
}

func TestAnalyzeNewlineTerminatedFiles(t *testing.T) {
	body := `fn render(frame, palette) {
    let canvas = clear(frame)
    draw_border(canvas, palette)
    draw_body(canvas, palette)
    flush(canvas)
}` + "\n"
	src := source.NewMemory(map[string]string{
		"a.go": body,
		"b.go": body,
	})

	a := New()
	analysis, err := a.Analyze([]string{"a.go", "b.go"}, src, nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	exact := 0
	for _, c := range analysis.Clones {
		if c.CloneType == models.CloneType1 {
			exact++
		}
		if c.Line1 != 1 || c.Line2 != 1 {
			t.Errorf("clone anchored at %d/%d, want 1/1", c.Line1, c.Line2)
		}
	}
	if exact != 1 {
		t.Errorf("exact clones = %d, want exactly 1 for an identical 6-line body", exact)
	}
}

func TestAnalyzeSkipsSameFilePairs(t *testing.T) {
	repeated := accumulateSnippet + "\n" + accumulateSnippet
	src := source.NewMemory(map[string]string{
		"solo.go": repeated,
	})

	a := New(WithSimilarityThreshold(0.5))
	analysis, err := a.Analyze([]string{"solo.go"}, src, nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if len(analysis.Clones) != 0 {
		t.Errorf("intra-file pairs must not be reported, got %d", len(analysis.Clones))
	}
}

func TestAnalyzeHonorsThreshold(t *testing.T) {
	src := source.NewMemory(map[string]string{
		"a.go": accumulateSnippet,
		"b.go": renamedSnippet,
		"c.go": unrelatedSnippet,
	})

	threshold := 0.4
	a := New(WithSimilarityThreshold(threshold))
	analysis, err := a.Analyze([]string{"a.go", "b.go", "c.go"}, src, nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	for _, c := range analysis.Clones {
		if c.Similarity < threshold {
			t.Errorf("clone below threshold reported: %f < %f", c.Similarity, threshold)
		}
	}
}

func TestAnalyzeSortedAndDeduplicated(t *testing.T) {
	src := source.NewMemory(map[string]string{
		"a.go": accumulateSnippet,
		"b.go": accumulateSnippet,
		"c.go": renamedSnippet,
	})

	a := New(WithSimilarityThreshold(0.3))
	analysis, err := a.Analyze([]string{"a.go", "b.go", "c.go"}, src, nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	seen := make(map[string]bool)
	for i, c := range analysis.Clones {
		if i > 0 && c.Similarity > analysis.Clones[i-1].Similarity {
			t.Errorf("clones not sorted by descending similarity at %d", i)
		}
		key := fmt.Sprintf("%s:%d:%s:%d", c.File1, c.Line1, c.File2, c.Line2)
		if seen[key] {
			t.Errorf("duplicate result for %s", key)
		}
		seen[key] = true
	}
}

func TestAnalyzeParallelMatchesSequential(t *testing.T) {
	files := map[string]string{
		"a.go": accumulateSnippet,
		"b.go": renamedSnippet,
		"c.go": accumulateSnippet,
		"d.go": unrelatedSnippet,
	}
	paths := []string{"a.go", "b.go", "c.go", "d.go"}

	run := func(parallel bool) []models.Clone {
		a := New(WithSimilarityThreshold(0.3), WithParallel(parallel))
		analysis, err := a.Analyze(paths, source.NewMemory(files), nil)
		if err != nil {
			t.Fatalf("Analyze(parallel=%v): %v", parallel, err)
		}
		return analysis.Clones
	}

	parallel := run(true)
	sequential := run(false)

	if !reflect.DeepEqual(parallel, sequential) {
		t.Errorf("parallel and sequential disagree:\nparallel:   %+v\nsequential: %+v",
			parallel, sequential)
	}
}

func TestAnalyzeDetectionToggles(t *testing.T) {
	files := map[string]string{
		"a.go": accumulateSnippet,
		"b.go": accumulateSnippet,
		"c.go": renamedSnippet,
	}
	paths := []string{"a.go", "b.go", "c.go"}

	cfg := DefaultConfig()
	cfg.SimilarityThreshold = 0.3
	cfg.DetectType1 = false
	cfg.DetectType2 = false
	cfg.DetectType3 = false

	for _, parallel := range []bool{true, false} {
		cfg.UseParallel = parallel
		a := New(WithConfig(cfg))
		analysis, err := a.Analyze(paths, source.NewMemory(files), nil)
		if err != nil {
			t.Fatalf("Analyze: %v", err)
		}
		if len(analysis.Clones) != 0 {
			t.Errorf("all passes disabled (parallel=%v) but %d clones reported",
				parallel, len(analysis.Clones))
		}
	}
}

func TestAnalyzeSkipsOversizedFiles(t *testing.T) {
	big := strings.Repeat(accumulateSnippet+"\n", 50)
	src := source.NewMemory(map[string]string{
		"big1.go": big,
		"big2.go": big,
	})

	cfg := DefaultConfig()
	cfg.MaxFileSize = 64
	a := New(WithConfig(cfg))
	analysis, err := a.Analyze([]string{"big1.go", "big2.go"}, src, nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if len(analysis.Clones) != 0 {
		t.Errorf("oversized files should be skipped, got %d clones", len(analysis.Clones))
	}
}

func TestAnalyzeProgressCallback(t *testing.T) {
	src := source.NewMemory(map[string]string{
		"a.go": accumulateSnippet,
		"b.go": renamedSnippet,
	})

	var ticks atomic.Int64
	a := New()
	_, err := a.Analyze([]string{"a.go", "b.go"}, src, func() { ticks.Add(1) })
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if ticks.Load() != 2 {
		t.Errorf("progress ticks = %d, want 2", ticks.Load())
	}
}

func TestAnalyzeUnreadableFilesSkipped(t *testing.T) {
	src := source.NewMemory(map[string]string{
		"a.go": accumulateSnippet,
		"b.go": accumulateSnippet,
	})

	a := New()
	analysis, err := a.Analyze([]string{"a.go", "missing.go", "b.go"}, src, nil)
	if err != nil {
		t.Fatalf("unreadable file must not fail the run: %v", err)
	}
	if len(analysis.Clones) == 0 {
		t.Error("readable files should still be compared")
	}
	if analysis.TotalFilesScanned != 3 {
		t.Errorf("TotalFilesScanned = %d, want 3", analysis.TotalFilesScanned)
	}
}

func TestAnalyzeEmptyInput(t *testing.T) {
	a := New()
	analysis, err := a.Analyze(nil, source.NewMemory(nil), nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(analysis.Clones) != 0 || analysis.Summary.TotalClones != 0 {
		t.Error("empty input must produce an empty result")
	}
}

func TestAnalyzeSummaryAndHotspots(t *testing.T) {
	src := source.NewMemory(map[string]string{
		"a.go": accumulateSnippet,
		"b.go": accumulateSnippet,
	})

	a := New()
	analysis, err := a.Analyze([]string{"a.go", "b.go"}, src, nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if analysis.Summary.TotalClones != len(analysis.Clones) {
		t.Errorf("TotalClones = %d, want %d", analysis.Summary.TotalClones, len(analysis.Clones))
	}
	if analysis.Summary.DuplicatedLines == 0 {
		t.Error("DuplicatedLines not accumulated")
	}
	if analysis.Summary.AvgSimilarity <= 0 || analysis.Summary.AvgSimilarity > 1 {
		t.Errorf("AvgSimilarity = %f", analysis.Summary.AvgSimilarity)
	}
	if analysis.Summary.DuplicationRatio < 0 || analysis.Summary.DuplicationRatio > 1 {
		t.Errorf("DuplicationRatio = %f", analysis.Summary.DuplicationRatio)
	}

	if len(analysis.Summary.Hotspots) == 0 {
		t.Fatal("expected hotspots for duplicated files")
	}
	for i, h := range analysis.Summary.Hotspots {
		if h.Severity <= 0 {
			t.Errorf("hotspot %s severity = %f", h.File, h.Severity)
		}
		if i > 0 && h.Severity > analysis.Summary.Hotspots[i-1].Severity {
			t.Errorf("hotspots not sorted by severity at %d", i)
		}
	}
}

func TestPreview(t *testing.T) {
	long := strings.Repeat("x", 300)
	got := preview(long)
	if len([]rune(got)) != 103 {
		t.Errorf("preview length = %d, want 103", len([]rune(got)))
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("preview must end with ellipsis")
	}

	short := preview("ab")
	if short != "ab..." {
		t.Errorf("short preview = %q", short)
	}
}
