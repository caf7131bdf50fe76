package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/augurhq/augur/internal/output"
	"github.com/augurhq/augur/internal/progress"
	"github.com/augurhq/augur/internal/scanner"
	"github.com/augurhq/augur/pkg/analyzer/duplicates"
	"github.com/augurhq/augur/pkg/config"
	"github.com/augurhq/augur/pkg/models"
	"github.com/augurhq/augur/pkg/source"
)

func duplicatesCmd() *cli.Command {
	return &cli.Command{
		Name:      "duplicates",
		Aliases:   []string{"dup", "clones"},
		Usage:     "Detect code clones and duplicates",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "min-lines",
				Value: 5,
				Usage: "Minimum block height in lines",
			},
			&cli.IntFlag{
				Name:  "min-tokens",
				Value: 10,
				Usage: "Minimum tokens per block",
			},
			&cli.Float64Flag{
				Name:  "threshold",
				Value: 0.9,
				Usage: "Similarity threshold (0.0-1.0)",
			},
			&cli.BoolFlag{
				Name:  "exclude-tests",
				Usage: "Skip test files",
			},
			&cli.BoolFlag{
				Name:  "include-generated",
				Usage: "Include generated files",
			},
			&cli.BoolFlag{
				Name:  "type1",
				Value: true,
				Usage: "Detect exact clones",
			},
			&cli.BoolFlag{
				Name:  "type2",
				Value: true,
				Usage: "Detect renamed clones",
			},
			&cli.BoolFlag{
				Name:  "type3",
				Value: true,
				Usage: "Detect structural clones (quadratic scan)",
			},
			&cli.BoolFlag{
				Name:  "sequential",
				Usage: "Disable parallel comparison",
			},
			&cli.Int64Flag{
				Name:  "max-file-size",
				Value: 1_000_000,
				Usage: "Skip files larger than this many bytes (0 disables)",
			},
			&cli.BoolFlag{
				Name:  "legacy-format",
				Usage: "Emit the flat block list instead of pairwise results (json only)",
			},
		},
		Action: runDuplicatesCmd,
	}
}

// detectionConfig seeds the run configuration from the [duplicates] section
// of the config file, then lets explicitly passed flags override it.
func detectionConfig(c *cli.Context, appCfg *config.Config) duplicates.Config {
	cfg := duplicates.Config{
		MinLines:            appCfg.Duplicates.MinLines,
		MinTokens:           appCfg.Duplicates.MinTokens,
		SimilarityThreshold: appCfg.Duplicates.SimilarityThreshold,
		ExcludeTests:        appCfg.Duplicates.ExcludeTests,
		ExcludeGenerated:    appCfg.Duplicates.ExcludeGenerated,
		ExcludePatterns:     appCfg.Exclude.Patterns,
		DetectType1:         appCfg.Duplicates.DetectType1,
		DetectType2:         appCfg.Duplicates.DetectType2,
		DetectType3:         appCfg.Duplicates.DetectType3,
		UseParallel:         appCfg.Duplicates.Parallel,
		MaxFileSize:         appCfg.Duplicates.MaxFileSize,
	}

	if c.IsSet("min-lines") {
		cfg.MinLines = c.Int("min-lines")
	}
	if c.IsSet("min-tokens") {
		cfg.MinTokens = c.Int("min-tokens")
	}
	if c.IsSet("threshold") {
		cfg.SimilarityThreshold = c.Float64("threshold")
	}
	if c.IsSet("exclude-tests") {
		cfg.ExcludeTests = c.Bool("exclude-tests")
	}
	if c.IsSet("include-generated") {
		cfg.ExcludeGenerated = !c.Bool("include-generated")
	}
	if c.IsSet("type1") {
		cfg.DetectType1 = c.Bool("type1")
	}
	if c.IsSet("type2") {
		cfg.DetectType2 = c.Bool("type2")
	}
	if c.IsSet("type3") {
		cfg.DetectType3 = c.Bool("type3")
	}
	if c.IsSet("sequential") {
		cfg.UseParallel = !c.Bool("sequential")
	}
	if c.IsSet("max-file-size") {
		cfg.MaxFileSize = c.Int64("max-file-size")
	}
	return cfg
}

func runDuplicatesCmd(c *cli.Context) error {
	appCfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	cfg := detectionConfig(c, appCfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	scan := progress.NewSpinner("Scanning files...")
	files, err := collectFiles(getPaths(c), appCfg)
	if err != nil {
		scan.FinishError(err)
		return err
	}
	files, skipped := scanner.FilterBySize(files, cfg.MaxFileSize)
	if len(files) == 0 {
		scan.FinishSkipped("no source files")
		color.Yellow("No source files found")
		return nil
	}
	scan.FinishSuccess()
	if skipped > 0 && c.Bool("verbose") {
		color.Yellow("Skipped %d oversized files", skipped)
	}

	tracker := progress.NewTracker("Detecting duplicates...", len(files))
	analyzer := duplicates.New(duplicates.WithConfig(cfg))
	analysis, err := analyzer.Analyze(files, source.NewFilesystem(), tracker.Tick)
	if err != nil {
		tracker.FinishError(err)
		return fmt.Errorf("analysis failed: %w", err)
	}
	tracker.FinishSuccess()

	formatter, err := output.NewFormatter(output.ParseFormat(c.String("format")), c.String("output"), true)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if c.Bool("legacy-format") {
		return formatter.Output(analysis.ToDuplicateBlocks())
	}

	if len(analysis.Clones) == 0 {
		if formatter.Format() == output.FormatText {
			formatter.Success("No duplicates found in %d files", analysis.TotalFilesScanned)
			return nil
		}
		return formatter.Output(analysis)
	}

	return renderCloneReport(formatter, analysis)
}

func renderCloneReport(formatter *output.Formatter, analysis *models.CloneAnalysis) error {
	var rows [][]string
	for _, clone := range analysis.Clones {
		badge := clone.CloneType.Badge()
		if formatter.Colored() && formatter.Format() == output.FormatText {
			badge = output.CloneTypeColor(badge)
		}
		rows = append(rows, []string{
			fmt.Sprintf("%s:%d", clone.File1, clone.Line1),
			fmt.Sprintf("%s:%d", clone.File2, clone.Line2),
			badge,
			fmt.Sprintf("%.0f%%", clone.Similarity*100),
			fmt.Sprintf("%.0f%%", clone.TokenSimilarity*100),
			fmt.Sprintf("%.0f%%", clone.StructuralSimilarity*100),
			fmt.Sprintf("%d", clone.LineCount),
		})
	}

	summary := analysis.Summary
	cloneTable := output.NewTable(
		"Code Clones Detected",
		[]string{"Location A", "Location B", "Type", "Similarity", "Token", "Structural", "Lines"},
		rows,
		[]string{
			fmt.Sprintf("Total: %d", summary.TotalClones),
			fmt.Sprintf("T1: %d", summary.Type1Count),
			fmt.Sprintf("T2: %d", summary.Type2Count),
			fmt.Sprintf("T3: %d", summary.Type3Count),
			fmt.Sprintf("T4: %d", summary.Type4Count),
			fmt.Sprintf("Avg: %.0f%%", summary.AvgSimilarity*100),
			fmt.Sprintf("Dup ratio: %.1f%%", summary.DuplicationRatio*100),
		},
		analysis,
	)

	report := &output.Report{
		Title:    "Duplication Report",
		Sections: []output.Renderable{cloneTable},
		Data:     analysis,
	}

	if len(summary.Hotspots) > 0 {
		var hotRows [][]string
		for _, h := range summary.Hotspots {
			hotRows = append(hotRows, []string{
				h.File,
				fmt.Sprintf("%d", h.DuplicateLines),
				fmt.Sprintf("%d", h.PairCount),
				fmt.Sprintf("%.1f", h.Severity),
			})
		}
		report.Sections = append(report.Sections, output.NewTable(
			"Duplication Hotspots",
			[]string{"File", "Dup Lines", "Pairs", "Severity"},
			hotRows,
			nil,
			summary.Hotspots,
		))
	}

	return formatter.Output(report)
}
