// Command vinemap renders a markdown outline to a collapsible tree diagram
// in SVG. With --watch it serves the diagram over HTTP and re-renders on
// every save, pushing updates to the page over a websocket.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"cdr.dev/slog"
	"github.com/spf13/pflag"

	"github.com/vinemap/vinemap"
	"github.com/vinemap/vinemap/lib/highlight"
	"github.com/vinemap/vinemap/lib/log"
	"github.com/vinemap/vinemap/vmparse"
)

func main() {
	if err := run(); err != nil {
		if err != pflag.ErrHelp {
			fmt.Fprintf(os.Stderr, "err: %v\n", err)
		}
		os.Exit(1)
	}
}

func run() error {
	flags := pflag.NewFlagSet("vinemap", pflag.ContinueOnError)
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, `usage: vinemap [flags] input.md

Renders a markdown outline as a collapsible tree diagram.

flags:
%s`, flags.FlagUsages())
	}

	output := flags.StringP("output", "o", "", "output SVG path (default: input with .svg extension)")
	watch := flags.BoolP("watch", "w", false, "serve the diagram and re-render on input changes")
	host := flags.String("host", "localhost", "host to serve on with --watch")
	port := flags.String("port", "0", "port to serve on with --watch")
	width := flags.Float64("width", 800, "viewport width in pixels")
	height := flags.Float64("height", 600, "viewport height in pixels")
	duration := flags.Duration("duration", 500*time.Millisecond, "animation duration")
	debug := flags.BoolP("debug", "d", false, "log at debug level")

	if err := flags.Parse(os.Args[1:]); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		flags.Usage()
		return fmt.Errorf("expected exactly one input path, got %d", flags.NArg())
	}
	inputPath := flags.Arg(0)
	if *output == "" {
		*output = strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ".svg"
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if *debug {
		ctx = log.Leveled(ctx, slog.LevelDebug)
	}

	opts := vinemap.Options{
		Width:    *width,
		Height:   *height,
		Duration: *duration,
		AutoFit:  true,
		Hook:     highlight.Fragments,
	}

	if *watch {
		w, err := newWatcher(ctx, watcherOpts{
			inputPath: inputPath,
			host:      *host,
			port:      *port,
			render:    opts,
		})
		if err != nil {
			return err
		}
		return w.run()
	}

	svg, err := renderSVG(ctx, inputPath, opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(*output, svg, 0644); err != nil {
		return err
	}
	log.Info(ctx, "wrote diagram",
		slog.F("path", *output),
		slog.F("bytes", len(svg)),
	)
	return nil
}

// renderSVG runs the full pipeline once: parse the outline, measure and
// lay it out, reconcile into a fresh scene, serialize.
func renderSVG(ctx context.Context, inputPath string, opts vinemap.Options) ([]byte, error) {
	src, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, err
	}
	root, err := vmparse.Parse(src)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, fmt.Errorf("%v: no outline content", inputPath)
	}

	m, err := vinemap.New(opts)
	if err != nil {
		return nil, err
	}
	defer m.Destroy()

	if err := m.SetData(ctx, root); err != nil {
		return nil, err
	}
	return m.SVG()
}
