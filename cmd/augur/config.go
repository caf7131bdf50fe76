package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/pelletier/go-toml"
	"github.com/urfave/cli/v2"

	"github.com/augurhq/augur/pkg/analyzer/duplicates"
)

func configCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Subcommands: []*cli.Command{
			{
				Name:   "validate",
				Usage:  "Validate a configuration file",
				Action: runConfigValidate,
			},
			{
				Name:   "show",
				Usage:  "Show the effective configuration",
				Action: runConfigShow,
			},
		},
	}
}

func runConfigValidate(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		color.Red("Configuration validation failed:")
		fmt.Printf("  - %s\n", err)
		return err
	}

	detection := duplicates.Config{
		MinLines:            cfg.Duplicates.MinLines,
		MinTokens:           cfg.Duplicates.MinTokens,
		SimilarityThreshold: cfg.Duplicates.SimilarityThreshold,
		MaxFileSize:         cfg.Duplicates.MaxFileSize,
	}
	if err := detection.Validate(); err != nil {
		color.Red("Configuration validation failed:")
		fmt.Printf("  - %s\n", err)
		return err
	}

	if path := c.String("config"); path != "" {
		color.Green("Configuration valid: %s", path)
	} else {
		color.Green("Configuration valid.")
	}
	return nil
}

func runConfigShow(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	content, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	fmt.Print(string(content))
	return nil
}
