// Package duplicates detects code clones across a corpus of source files.
//
// Detection works on line-based sliding windows, not grammar-aware units:
// each file is cut into overlapping candidate blocks, every block gets a
// content digest and a canonical-form digest, and two hash indices narrow
// the candidate pairs so Type-1/Type-2 lookup stays near O(n). Structural
// (Type-3) search remains quadratic in the worst case and is config-gated.
package duplicates

import (
	"fmt"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/augurhq/augur/internal/fileproc"
	"github.com/augurhq/augur/pkg/models"
	"github.com/augurhq/augur/pkg/source"
	"github.com/augurhq/augur/pkg/stats"
)

// Config is the immutable configuration for one detection run.
type Config struct {
	MinLines            int
	MinTokens           int
	SimilarityThreshold float64

	ExcludeTests     bool
	ExcludeGenerated bool
	ExcludePatterns  []string

	DetectType1 bool
	DetectType2 bool
	DetectType3 bool

	UseParallel bool
	MaxFileSize int64
}

// DefaultConfig returns the default detection configuration.
func DefaultConfig() Config {
	return Config{
		MinLines:            5,
		MinTokens:           10,
		SimilarityThreshold: 0.9,
		ExcludeTests:        false,
		ExcludeGenerated:    true,
		DetectType1:         true,
		DetectType2:         true,
		DetectType3:         true,
		UseParallel:         true,
		MaxFileSize:         1_000_000,
	}
}

// Validate rejects configurations that would silently corrupt a run.
func (c Config) Validate() error {
	if c.MinLines < 1 {
		return fmt.Errorf("min_lines must be at least 1, got %d", c.MinLines)
	}
	if c.MinTokens < 1 {
		return fmt.Errorf("min_tokens must be at least 1, got %d", c.MinTokens)
	}
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity_threshold must be in [0, 1], got %g", c.SimilarityThreshold)
	}
	if c.MaxFileSize < 0 {
		return fmt.Errorf("max_file_size must not be negative, got %d", c.MaxFileSize)
	}
	return nil
}

// Analyzer detects duplicate code blocks across files.
type Analyzer struct {
	config Config
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithMinLines sets the minimum block height in lines.
func WithMinLines(minLines int) Option {
	return func(a *Analyzer) {
		a.config.MinLines = minLines
	}
}

// WithMinTokens sets the minimum token count for a block.
func WithMinTokens(minTokens int) Option {
	return func(a *Analyzer) {
		a.config.MinTokens = minTokens
	}
}

// WithSimilarityThreshold sets the reporting threshold.
func WithSimilarityThreshold(threshold float64) Option {
	return func(a *Analyzer) {
		a.config.SimilarityThreshold = threshold
	}
}

// WithParallel toggles the data-parallel comparison path.
func WithParallel(parallel bool) Option {
	return func(a *Analyzer) {
		a.config.UseParallel = parallel
	}
}

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(a *Analyzer) {
		a.config = cfg
	}
}

// New creates an analyzer with default config.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{config: DefaultConfig()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Config returns the analyzer's effective configuration.
func (a *Analyzer) Config() Config {
	return a.config
}

// fileExtract is the per-file extraction result.
type fileExtract struct {
	blocks []models.CodeBlock
	lines  int
}

// AnalyzeProject detects clones across files read from the filesystem.
func (a *Analyzer) AnalyzeProject(files []string) (*models.CloneAnalysis, error) {
	return a.Analyze(files, source.NewFilesystem(), nil)
}

// Analyze detects clones across files read via src. Unreadable files are
// skipped, never fatal; the run always processes the full file set. The
// optional onProgress callback is invoked once per processed file.
func (a *Analyzer) Analyze(files []string, src source.ContentSource, onProgress fileproc.ProgressFunc) (*models.CloneAnalysis, error) {
	if err := a.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid duplicate config: %w", err)
	}

	analysis := &models.CloneAnalysis{
		Clones:            make([]models.Clone, 0),
		Summary:           models.NewCloneSummary(),
		TotalFilesScanned: len(files),
		MinLines:          a.config.MinLines,
		Threshold:         a.config.SimilarityThreshold,
	}

	selected := make([]string, 0, len(files))
	for _, path := range files {
		if ShouldProcess(path, a.config) {
			selected = append(selected, path)
		} else if onProgress != nil {
			onProgress()
		}
	}

	extract := func(path string) (fileExtract, error) {
		content, err := src.Read(path)
		if err != nil {
			return fileExtract{}, err
		}
		if a.config.MaxFileSize > 0 && int64(len(content)) > a.config.MaxFileSize {
			return fileExtract{}, nil
		}
		text := string(content)
		return fileExtract{
			blocks: extractBlocks(path, text, a.config),
			lines:  countLines(text),
		}, nil
	}

	var extracts []fileExtract
	if a.config.UseParallel {
		extracts = fileproc.ForEachFileWithProgress(selected, extract, onProgress)
	} else {
		for _, path := range selected {
			fe, err := extract(path)
			if onProgress != nil {
				onProgress()
			}
			if err != nil {
				continue
			}
			extracts = append(extracts, fe)
		}
	}

	var blocks []models.CodeBlock
	totalLines := 0
	for _, fe := range extracts {
		blocks = append(blocks, fe.blocks...)
		totalLines += fe.lines
	}

	clones := a.findWithIndex(blocks)
	if clones == nil {
		clones = []models.Clone{}
	}
	analysis.Clones = clones

	for _, c := range clones {
		analysis.Summary.AddClone(c)
	}
	analysis.Summary.TotalLines = totalLines
	if totalLines > 0 {
		// Overlapping windows can inflate the duplicated-line count.
		ratio := float64(analysis.Summary.DuplicatedLines) / float64(totalLines)
		if ratio > 1.0 {
			ratio = 1.0
		}
		analysis.Summary.DuplicationRatio = ratio
	}

	if len(clones) > 0 {
		similarities := make([]float64, len(clones))
		for i, c := range clones {
			similarities[i] = c.Similarity
		}
		analysis.Summary.AvgSimilarity = stats.Mean(similarities)
		sort.Float64s(similarities)
		analysis.Summary.P50Similarity = stats.Percentile(similarities, 50)
		analysis.Summary.P95Similarity = stats.Percentile(similarities, 95)
	}

	analysis.Summary.Hotspots = computeHotspots(clones)

	return analysis, nil
}

// findWithIndex runs candidate search over an immutable block slice and its
// hash indices, then sorts and deduplicates the combined results. Blocks and
// indices are read-only from here on, so the parallel path shares them
// across workers without locks.
func (a *Analyzer) findWithIndex(blocks []models.CodeBlock) []models.Clone {
	idx := buildIndex(blocks)

	var clones []models.Clone
	if a.config.UseParallel {
		perBlock := make([][]models.Clone, len(blocks))
		p := fileproc.NewPool()
		for i := range blocks {
			p.Go(func() {
				perBlock[i] = a.probeBlock(blocks, idx, i)
			})
		}
		p.Wait()
		for _, found := range perBlock {
			clones = append(clones, found...)
		}
	} else {
		clones = a.findSequential(blocks)
	}

	// Descending similarity with a positional tie-break keeps output stable
	// across runs and across the parallel/sequential paths.
	sort.Slice(clones, func(i, j int) bool {
		if clones[i].Similarity != clones[j].Similarity {
			return clones[i].Similarity > clones[j].Similarity
		}
		if clones[i].File1 != clones[j].File1 {
			return clones[i].File1 < clones[j].File1
		}
		if clones[i].Line1 != clones[j].Line1 {
			return clones[i].Line1 < clones[j].Line1
		}
		if clones[i].File2 != clones[j].File2 {
			return clones[i].File2 < clones[j].File2
		}
		if clones[i].Line2 != clones[j].Line2 {
			return clones[i].Line2 < clones[j].Line2
		}
		// Overlapping windows can tie on every positional key. The
		// remaining fields make the order total, so deduplication keeps
		// the same survivor no matter how the candidates were gathered.
		if clones[i].LineCount != clones[j].LineCount {
			return clones[i].LineCount < clones[j].LineCount
		}
		if clones[i].TokenSimilarity != clones[j].TokenSimilarity {
			return clones[i].TokenSimilarity > clones[j].TokenSimilarity
		}
		return clones[i].StructuralSimilarity > clones[j].StructuralSimilarity
	})

	return deduplicate(clones)
}

// probeBlock finds all duplicates of blocks[i] among higher-indexed blocks.
// Bucket members are recorded in a bitmap so the structural scan never
// re-examines a candidate the hash probes already covered.
func (a *Analyzer) probeBlock(blocks []models.CodeBlock, idx *blockIndex, i int) []models.Clone {
	b1 := &blocks[i]
	var found []models.Clone

	probed := roaring.New()
	for _, j := range idx.byHash[b1.Hash] {
		probed.Add(uint32(j))
	}
	for _, j := range idx.byNormalizedHash[b1.NormalizedHash] {
		probed.Add(uint32(j))
	}

	if a.config.DetectType1 {
		for _, j := range idx.byHash[b1.Hash] {
			if j <= i || blocks[j].File == b1.File {
				continue
			}
			if c, ok := a.scorePair(b1, &blocks[j]); ok {
				found = append(found, c)
			}
		}
	}

	if a.config.DetectType2 {
		for _, j := range idx.byNormalizedHash[b1.NormalizedHash] {
			if j <= i || blocks[j].File == b1.File || blocks[j].Hash == b1.Hash {
				continue
			}
			if c, ok := a.scorePair(b1, &blocks[j]); ok {
				found = append(found, c)
			}
		}
	}

	if a.config.DetectType3 {
		for j := i + 1; j < len(blocks); j++ {
			if blocks[j].File == b1.File || probed.Contains(uint32(j)) {
				continue
			}
			if c, ok := a.scorePair(b1, &blocks[j]); ok {
				found = append(found, c)
			}
		}
	}

	return found
}

// findSequential is the plain double-loop oracle for the parallel path. It
// applies the same per-type gating, so for a given config both paths report
// the same set of pairs.
func (a *Analyzer) findSequential(blocks []models.CodeBlock) []models.Clone {
	var found []models.Clone
	for i := range blocks {
		b1 := &blocks[i]
		for j := i + 1; j < len(blocks); j++ {
			b2 := &blocks[j]
			if b2.File == b1.File {
				continue
			}
			switch {
			case b2.Hash == b1.Hash:
				if !a.config.DetectType1 {
					continue
				}
			case b2.NormalizedHash == b1.NormalizedHash:
				if !a.config.DetectType2 {
					continue
				}
			default:
				if !a.config.DetectType3 {
					continue
				}
			}
			if c, ok := a.scorePair(b1, b2); ok {
				found = append(found, c)
			}
		}
	}
	return found
}

// scorePair runs the full similarity computation for a candidate pair and
// builds the result record when it clears the threshold. Hash equality only
// nominated the pair; classification always derives from the blocks' text.
func (a *Analyzer) scorePair(b1, b2 *models.CodeBlock) (models.Clone, bool) {
	metrics := calculateSimilarity(b1, b2)
	if metrics.OverallSimilarity < a.config.SimilarityThreshold {
		return models.Clone{}, false
	}
	return models.Clone{
		File1:                b1.File,
		Line1:                b1.LineStart,
		File2:                b2.File,
		Line2:                b2.LineStart,
		Content:              preview(b1.Content),
		Similarity:           metrics.OverallSimilarity,
		CloneType:            metrics.CloneType,
		TokenSimilarity:      metrics.TokenSimilarity,
		StructuralSimilarity: metrics.StructuralSimilarity,
		LineCount:            b1.LineCount(),
	}, true
}

// preview truncates block content for result records.
func preview(content string) string {
	runes := []rune(content)
	if len(runes) > 100 {
		runes = runes[:100]
	}
	return string(runes) + "..."
}

// deduplicate drops entries repeating a (file1, line1, file2, line2) key,
// keeping the first (highest-ranked) occurrence. Overlapping extraction
// windows still produce near-duplicate reports at slightly different line
// ranges; that is accepted behavior.
func deduplicate(clones []models.Clone) []models.Clone {
	seen := make(map[string]struct{}, len(clones))
	result := clones[:0]
	for _, c := range clones {
		key := fmt.Sprintf("%s:%d:%s:%d", c.File1, c.Line1, c.File2, c.Line2)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, c)
	}
	return result
}

// computeHotspots ranks files by how much duplication involves them.
func computeHotspots(clones []models.Clone) []models.DuplicationHotspot {
	type fileStat struct {
		lines int
		pairs int
	}
	perFile := make(map[string]*fileStat)
	touch := func(file string, lines int) {
		st, ok := perFile[file]
		if !ok {
			st = &fileStat{}
			perFile[file] = st
		}
		st.lines += lines
		st.pairs++
	}
	for _, c := range clones {
		touch(c.File1, c.LineCount)
		touch(c.File2, c.LineCount)
	}

	hotspots := make([]models.DuplicationHotspot, 0, len(perFile))
	for file, st := range perFile {
		hotspots = append(hotspots, models.DuplicationHotspot{
			File:           file,
			DuplicateLines: st.lines,
			PairCount:      st.pairs,
			Severity:       stats.Severity(st.lines, st.pairs),
		})
	}

	sort.Slice(hotspots, func(i, j int) bool {
		if hotspots[i].Severity != hotspots[j].Severity {
			return hotspots[i].Severity > hotspots[j].Severity
		}
		return hotspots[i].File < hotspots[j].File
	})

	if len(hotspots) > 10 {
		hotspots = hotspots[:10]
	}
	return hotspots
}
