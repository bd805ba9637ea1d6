package main

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/standardbeagle/flatq/internal/config"
	"github.com/standardbeagle/flatq/internal/display"
	"github.com/standardbeagle/flatq/internal/docio"
	"github.com/standardbeagle/flatq/internal/flat"

	"github.com/urfave/cli/v2"
)

// writeOut writes s to w, ending it with a newline.
func writeOut(w io.Writer, s string) {
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	fmt.Fprint(w, s)
}

func warnings(c *cli.Context) *log.Logger {
	return log.New(c.App.ErrWriter, "warning: ", 0)
}

func requireArgs(c *cli.Context, n int, usage string) error {
	if c.NArg() < n {
		return fmt.Errorf("usage: flatq %s %s", c.Command.Name, usage)
	}
	return nil
}

// loadDocuments loads every argument from index 'from' on, concurrently.
func loadDocuments(c *cli.Context, cfg *config.Config, from int) ([]*docio.Document, error) {
	paths := c.Args().Slice()[from:]
	return docio.LoadAll(c.Context, paths, cfg.Codec.LoadConcurrency)
}

func newCodec(c *cli.Context) (*config.Config, *flat.Codec, error) {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return nil, nil, err
	}
	codec, err := flat.New(cfg.CodecOptions())
	if err != nil {
		return nil, nil, err
	}
	return cfg, codec, nil
}

func flattenCommand(c *cli.Context) error {
	if err := requireArgs(c, 1, "FILE..."); err != nil {
		return err
	}
	cfg, codec, err := newCodec(c)
	if err != nil {
		return err
	}
	docs, err := loadDocuments(c, cfg, 0)
	if err != nil {
		return err
	}

	color := useColor(c)
	tf := display.NewTreeFormatter(display.FormatterOptions{Color: color})
	w := c.App.Writer
	for _, doc := range docs {
		fm, err := codec.Flatten(doc.Root)
		if err != nil {
			return fmt.Errorf("%s: %w", doc.Path, err)
		}
		if len(docs) > 1 {
			fmt.Fprintf(w, "==> %s <==\n", doc.Path)
		}
		if c.Bool("text") {
			fmt.Fprint(w, tf.FormatFlat(fm))
			continue
		}
		writeOut(w, string(docio.EncodeJSON(fm.Tree(), docio.EncodeOptions{Pretty: true, Color: color})))
	}
	return nil
}

func inflateCommand(c *cli.Context) error {
	if err := requireArgs(c, 1, "FILE"); err != nil {
		return err
	}
	_, codec, err := newCodec(c)
	if err != nil {
		return err
	}
	doc, err := docio.Load(c.Args().First())
	if err != nil {
		return err
	}

	fm, err := flat.FromObject(doc.Root)
	if err != nil {
		return fmt.Errorf("%s: %w", doc.Path, err)
	}
	res, err := codec.InflateReport(fm)
	if err != nil {
		return fmt.Errorf("%s: %w", doc.Path, err)
	}

	if len(res.Dropped) > 0 {
		tf := display.NewTreeFormatter(display.FormatterOptions{})
		warn := warnings(c)
		for _, line := range strings.Split(strings.TrimSuffix(tf.FormatDropped(res.Dropped), "\n"), "\n") {
			warn.Print(line)
		}
	}

	format := docio.FormatJSON
	if c.Bool("yaml") {
		format = docio.FormatYAML
	}
	return docio.Write(c.App.Writer, res.Tree, format, docio.EncodeOptions{Pretty: true, Color: useColor(c)})
}

func roundtripCommand(c *cli.Context) error {
	if err := requireArgs(c, 1, "FILE..."); err != nil {
		return err
	}
	cfg, codec, err := newCodec(c)
	if err != nil {
		return err
	}
	docs, err := loadDocuments(c, cfg, 0)
	if err != nil {
		return err
	}

	w := c.App.Writer
	failed := 0
	for _, doc := range docs {
		report, err := codec.Verify(doc.Root)
		if err != nil {
			return fmt.Errorf("%s: %w", doc.Path, err)
		}
		if report.OK {
			fmt.Fprintf(w, "ok    %s (%d paths)\n", doc.Path, report.Flat.Len())
			continue
		}
		failed++
		fmt.Fprintf(w, "FAIL  %s\n", doc.Path)
		writeOut(w, report.Diff)
		if len(report.MergePatch) > 0 {
			fmt.Fprintf(w, "merge patch: %s\n", report.MergePatch)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents did not round-trip", failed, len(docs))
	}
	return nil
}

func tokenizeCommand(c *cli.Context) error {
	if err := requireArgs(c, 1, "WORD..."); err != nil {
		return err
	}
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	splitter := cfg.NewMatcher().Splitter
	for _, word := range c.Args().Slice() {
		fmt.Fprintf(c.App.Writer, "%s: %s\n", word, strings.Join(splitter.Split(word), " "))
	}
	return nil
}

func showCommand(c *cli.Context) error {
	if err := requireArgs(c, 1, "FILE"); err != nil {
		return err
	}
	format := c.String("format")
	switch format {
	case "text", "json", "compact":
	default:
		return fmt.Errorf("unknown format %q (want text, json or compact)", format)
	}
	doc, err := docio.Load(c.Args().First())
	if err != nil {
		return err
	}

	tf := display.NewTreeFormatter(display.FormatterOptions{
		Format:   format,
		MaxDepth: c.Int("depth"),
		Color:    useColor(c),
	})
	writeOut(c.App.Writer, tf.Format(doc.Root))
	return nil
}
