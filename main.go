package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/chazu/proctex/pkg/config"
	"github.com/chazu/proctex/pkg/logger"
	"github.com/chazu/proctex/pkg/procedure"
	"github.com/chazu/proctex/pkg/render"
)

func main() {
	var (
		configPath string
		outPath    string
		format     string
		layer      string
		savePath   string
		width      int
		height     int
	)
	flag.StringVar(&configPath, "config", "", "TOML settings file (default: built-in settings)")
	flag.StringVar(&outPath, "out", "", "preview image path (default: <input>.<format>)")
	flag.StringVar(&format, "format", "png", "preview format: "+strings.Join(render.Formats, ", "))
	flag.StringVar(&layer, "layer", "Diffuse", "output written to the preview image")
	flag.StringVar(&savePath, "save", "", "also write the procedure as JSON to this path")
	flag.IntVar(&width, "width", 0, "preview width in pixels (overrides config)")
	flag.IntVar(&height, "height", 0, "preview height in pixels (overrides config)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <file.proc|file.json>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	if err := run(flag.Arg(0), configPath, outPath, format, layer, savePath, width, height); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(input, configPath, outPath, format, layer, savePath string, width, height int) error {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	}
	if width > 0 {
		cfg.Render.Width = width
	}
	if height > 0 {
		cfg.Render.Height = height
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Development); err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	app := NewApp(cfg)
	app.startup(ctx)

	var result EvalResult
	if strings.EqualFold(filepath.Ext(input), ".json") {
		f, err := os.Open(input)
		if err != nil {
			return err
		}
		p, err := procedure.Decoder{Registry: app.registry, AllowFeedback: cfg.Eval.AllowFeedback}.Decode(f)
		f.Close()
		if err != nil {
			return err
		}
		result = app.EvaluateProcedure(p)
	} else {
		src, err := os.ReadFile(input)
		if err != nil {
			return err
		}
		result = app.Evaluate(string(src))
	}

	for _, w := range result.Warnings {
		logger.Log.Warn(w.Message, zap.Int("node", w.NodeID))
	}
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			fmt.Fprintf(os.Stderr, "%s: line %d: %s\n", input, e.Line, e.Message)
		}
		return fmt.Errorf("%s: %d error(s)", input, len(result.Errors))
	}

	if savePath != "" {
		if err := writeFile(savePath, func(f *os.File) error { return procedure.Encode(f, result.Procedure) }); err != nil {
			return err
		}
	}

	img, err := result.Image.Layer(layer)
	if err != nil {
		return err
	}
	if outPath == "" {
		outPath = strings.TrimSuffix(input, filepath.Ext(input)) + "." + format
	}
	if err := writeFile(outPath, func(f *os.File) error { return render.Write(f, img, format) }); err != nil {
		return err
	}

	for _, s := range result.Outputs {
		logger.Log.Info("output",
			zap.String("name", s.Name),
			zap.Float64("min", s.Min),
			zap.Float64("max", s.Max),
			zap.Float64("mean", s.Mean))
	}
	logger.Log.Info("wrote preview", zap.String("path", outPath), zap.String("layer", layer))
	return nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
