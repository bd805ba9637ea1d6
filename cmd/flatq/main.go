package main

import (
	"fmt"
	"io"
	"os"

	"github.com/standardbeagle/flatq/internal/config"
	"github.com/standardbeagle/flatq/internal/debug"
	"github.com/standardbeagle/flatq/internal/display"
	"github.com/standardbeagle/flatq/internal/version"

	"github.com/urfave/cli/v2"
)

// loadConfigWithOverrides loads configuration and applies CLI flag overrides
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	configPath := c.String("config")

	cfg, err := config.Load(configPath)
	if err != nil {
		if configPath == "" {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
	}

	if sep := c.String("separator"); sep != "" {
		cfg.Codec.Separator = sep
	}
	if c.IsSet("preserve-empty") {
		cfg.Codec.PreserveEmpty = c.Bool("preserve-empty")
	}
	if c.IsSet("strict") {
		cfg.Codec.Strict = c.Bool("strict")
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// useColor reports whether output to the app's writer should be colored.
func useColor(c *cli.Context) bool {
	return display.ShouldColor(c.App.Writer, c.Bool("no-color"))
}

var codecFlags = []cli.Flag{
	&cli.BoolFlag{
		Name:  "preserve-empty",
		Usage: "Keep empty objects and arrays as leaf values",
	},
	&cli.BoolFlag{
		Name:  "strict",
		Usage: "Reject keys containing the separator and fail on lossy array coercion",
	},
}

var filterFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "glob",
		Aliases: []string{"g"},
		Usage:   "Only consider paths matching a doublestar glob over '/'-joined segments (e.g. 'users/*/email')",
	},
	&cli.StringFlag{
		Name:    "where",
		Aliases: []string{"w"},
		Usage:   "Only consider entries where an expr-lang condition holds (e.g. 'kind == \"number\" && depth > 2')",
	},
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:                   "flatq",
		Usage:                  "Flatten, inflate and search nested JSON, YAML and TOML documents",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Writer:                 stdout,
		ErrWriter:              stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file applied after ~/" + config.FileName + " and ./" + config.FileName,
			},
			&cli.StringFlag{
				Name:    "separator",
				Aliases: []string{"s"},
				Usage:   "Path separator (overrides config)",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable colored output",
			},
			&cli.BoolFlag{
				Name:   "debug",
				Usage:  "Write debug logs to a temp file",
				Hidden: true,
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("debug") {
				path, err := debug.InitDebugLogFile()
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.ErrWriter, "debug log: %s\n", path)
			}
			return nil
		},
		After: func(c *cli.Context) error {
			return debug.CloseDebugLog()
		},
		Commands: []*cli.Command{
			{
				Name:      "flatten",
				Aliases:   []string{"f"},
				Usage:     "Flatten documents into path -> value pairs",
				ArgsUsage: "FILE...",
				Flags: append([]cli.Flag{
					&cli.BoolFlag{
						Name:    "text",
						Aliases: []string{"t"},
						Usage:   "Print 'path = value' lines instead of JSON",
					},
				}, codecFlags...),
				Action: flattenCommand,
			},
			{
				Name:      "inflate",
				Aliases:   []string{"i"},
				Usage:     "Rebuild a nested document from a flat object",
				ArgsUsage: "FILE",
				Flags: append([]cli.Flag{
					&cli.BoolFlag{
						Name:  "yaml",
						Usage: "Write YAML instead of JSON",
					},
				}, codecFlags...),
				Action: inflateCommand,
			},
			{
				Name:      "search",
				Usage:     "Find entries whose path, or else value, contains a keyword",
				ArgsUsage: "KEYWORD FILE",
				Flags: append([]cli.Flag{
					&cli.BoolFlag{
						Name:    "case-insensitive",
						Aliases: []string{"i"},
						Usage:   "Case-insensitive search",
					},
					&cli.BoolFlag{
						Name:  "fuzzy",
						Usage: "Accept close matches against path segments or value words",
					},
					&cli.BoolFlag{
						Name:  "keys-only",
						Usage: "Only match paths",
					},
					&cli.BoolFlag{
						Name:  "values-only",
						Usage: "Only match values",
					},
					&cli.BoolFlag{
						Name:    "json",
						Aliases: []string{"j"},
						Usage:   "Output as JSON",
					},
				}, filterFlags...),
				Action: searchCommand,
			},
			{
				Name:      "query",
				Aliases:   []string{"q"},
				Usage:     "Rank entries by how many query words they contain",
				ArgsUsage: "WORDS FILE",
				Flags: append([]cli.Flag{
					&cli.BoolFlag{
						Name:    "case-insensitive",
						Aliases: []string{"i"},
						Usage:   "Case-insensitive matching",
					},
					&cli.BoolFlag{
						Name:  "fuzzy",
						Usage: "Count close matches",
					},
					&cli.BoolFlag{
						Name:  "stem",
						Usage: "Count words sharing a porter2 stem",
					},
					&cli.IntFlag{
						Name:    "max-results",
						Aliases: []string{"n"},
						Usage:   "Cap on results, 0 for unlimited (overrides config)",
					},
					&cli.BoolFlag{
						Name:    "json",
						Aliases: []string{"j"},
						Usage:   "Output as JSON",
					},
				}, filterFlags...),
				Action: queryCommand,
			},
			{
				Name:      "roundtrip",
				Usage:     "Check that documents survive flatten then inflate unchanged",
				ArgsUsage: "FILE...",
				Flags:     codecFlags,
				Action:    roundtripCommand,
			},
			{
				Name:      "tokenize",
				Usage:     "Split compound identifiers into words",
				ArgsUsage: "WORD...",
				Action:    tokenizeCommand,
			},
			{
				Name:      "show",
				Usage:     "Display a document as a tree",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: text, json or compact",
						Value:   "text",
					},
					&cli.IntFlag{
						Name:    "depth",
						Aliases: []string{"d"},
						Usage:   "Maximum depth to display, 0 for all",
					},
				},
				Action: showCommand,
			},
			{
				Name:      "watch",
				Usage:     "Re-flatten documents whenever they change",
				ArgsUsage: "FILE...",
				Flags:     codecFlags,
				Action:    watchCommand,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the flatq tools over MCP on stdio",
				Action: mcpCommand,
			},
		},
	}
}

func main() {
	app := newApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
