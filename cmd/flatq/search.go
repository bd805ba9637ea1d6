package main

import (
	"encoding/json"
	"fmt"

	"github.com/standardbeagle/flatq/internal/config"
	"github.com/standardbeagle/flatq/internal/display"
	"github.com/standardbeagle/flatq/internal/docio"
	"github.com/standardbeagle/flatq/internal/flat"
	"github.com/standardbeagle/flatq/internal/search"

	"github.com/urfave/cli/v2"
)

// loadFlat loads the document named by the second argument and flattens it.
func loadFlat(c *cli.Context) (*config.Config, *flat.FlatMap, error) {
	cfg, codec, err := newCodec(c)
	if err != nil {
		return nil, nil, err
	}
	doc, err := docio.Load(c.Args().Get(1))
	if err != nil {
		return nil, nil, err
	}
	fm, err := codec.Flatten(doc.Root)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", doc.Path, err)
	}
	return cfg, fm, nil
}

func filterFromFlags(c *cli.Context) search.Filter {
	return search.Filter{PathGlob: c.String("glob"), Where: c.String("where")}
}

func searchCommand(c *cli.Context) error {
	if err := requireArgs(c, 2, "KEYWORD FILE"); err != nil {
		return err
	}
	cfg, fm, err := loadFlat(c)
	if err != nil {
		return err
	}

	opts := cfg.KeywordOptions()
	if c.Bool("case-insensitive") {
		opts.CaseSensitive = false
	}
	if c.IsSet("fuzzy") {
		opts.Fuzzy = c.Bool("fuzzy")
	}
	opts.KeysOnly = c.Bool("keys-only")
	opts.ValuesOnly = c.Bool("values-only")
	opts.Filter = filterFromFlags(c)

	res, err := cfg.NewEngine().SearchByKeyword(fm, c.Args().First(), opts)
	if err != nil {
		return err
	}

	if c.Bool("json") {
		out, err := json.MarshalIndent(map[string]interface{}{
			"by_key":   res.ByKey,
			"by_value": res.ByValue,
			"count":    res.Len(),
		}, "", "  ")
		if err != nil {
			return err
		}
		writeOut(c.App.Writer, string(out))
		return nil
	}

	tf := display.NewTreeFormatter(display.FormatterOptions{Color: useColor(c)})
	fmt.Fprint(c.App.Writer, tf.FormatKeyword(res))
	return nil
}

type rankedJSON struct {
	Path  string          `json:"path"`
	Value json.RawMessage `json:"value"`
	Score int             `json:"score"`
}

func queryCommand(c *cli.Context) error {
	if err := requireArgs(c, 2, "WORDS FILE"); err != nil {
		return err
	}
	cfg, fm, err := loadFlat(c)
	if err != nil {
		return err
	}

	opts := cfg.QueryOptions()
	if c.Bool("case-insensitive") {
		opts.CaseSensitive = false
	}
	if c.IsSet("fuzzy") {
		opts.Fuzzy = c.Bool("fuzzy")
	}
	if c.IsSet("stem") {
		opts.Stem = c.Bool("stem")
	}
	if c.IsSet("max-results") {
		opts.MaxResults = c.Int("max-results")
	}
	opts.Filter = filterFromFlags(c)

	ranked, err := cfg.NewEngine().RankByQuery(c.Args().First(), fm, opts)
	if err != nil {
		return err
	}

	if c.Bool("json") {
		results := make([]rankedJSON, 0, len(ranked))
		for _, r := range ranked {
			value, err := r.Value.MarshalJSON()
			if err != nil {
				return err
			}
			results = append(results, rankedJSON{Path: r.Path, Value: value, Score: r.Score})
		}
		out, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return err
		}
		writeOut(c.App.Writer, string(out))
		return nil
	}

	tf := display.NewTreeFormatter(display.FormatterOptions{Color: useColor(c)})
	fmt.Fprint(c.App.Writer, tf.FormatRanked(ranked))
	return nil
}
