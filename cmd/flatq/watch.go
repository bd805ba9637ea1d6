package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/standardbeagle/flatq/internal/display"
	"github.com/standardbeagle/flatq/internal/watch"
	"github.com/standardbeagle/flatq/pkg/pathutil"

	"github.com/urfave/cli/v2"
)

func watchCommand(c *cli.Context) error {
	if err := requireArgs(c, 1, "FILE..."); err != nil {
		return err
	}
	cfg, codec, err := newCodec(c)
	if err != nil {
		return err
	}

	w, err := watch.New(codec, cfg.WatchDebounce())
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	for _, path := range c.Args().Slice() {
		if err := w.Add(path); err != nil {
			w.Stop()
			return err
		}
	}

	palette := display.NewPalette(useColor(c))
	warn := warnings(c)
	var mu sync.Mutex
	w.OnUpdate(func(up watch.Update) {
		mu.Lock()
		defer mu.Unlock()
		if up.Err != nil {
			warn.Printf("%s: %v", pathutil.ToRelativeWD(up.Path), up.Err)
			return
		}
		printUpdate(c.App.Writer, palette, up)
	})

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w.Start()
	wd, _ := os.Getwd()
	fmt.Fprintf(c.App.ErrWriter, "watching %s, Ctrl-C to stop\n", strings.Join(pathutil.ToRelativeAll(w.Files(), wd), ", "))
	<-ctx.Done()

	if err := w.Stop(); err != nil {
		return err
	}
	stats := w.Stats()
	fmt.Fprintf(c.App.ErrWriter, "\n%d updates, %d errors\n", stats.EventsProcessed, stats.ErrorCount)
	return nil
}

// printUpdate writes one update as a header followed by "+", "-" and "~"
// lines for added, removed and modified paths.
func printUpdate(out io.Writer, palette *display.Palette, up watch.Update) {
	fmt.Fprintf(out, "==> %s (%s) <==\n", pathutil.ToRelativeWD(up.Path), up.Event)
	if up.Event == watch.EventRemove {
		for _, p := range up.Changes.Removed {
			fmt.Fprintf(out, "- %s\n", palette.Key(p))
		}
		return
	}
	for _, p := range up.Changes.Added {
		v, _ := up.Flat.Get(p)
		fmt.Fprintf(out, "+ %s%s%s\n", palette.Key(p), palette.Punct(" = "), palette.Value(v))
	}
	for _, p := range up.Changes.Removed {
		fmt.Fprintf(out, "- %s\n", palette.Key(p))
	}
	for _, p := range up.Changes.Modified {
		v, _ := up.Flat.Get(p)
		fmt.Fprintf(out, "~ %s%s%s\n", palette.Key(p), palette.Punct(" = "), palette.Value(v))
	}
	if up.Changes.IsEmpty() {
		fmt.Fprintln(out, "(no changes)")
	}
}
