// Package main is the armrig command: it simulates, validates and runs rig configurations
// against an in-memory skeleton and clip mixer.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"go.viam.com/armrig/animation/fake"
	"go.viam.com/armrig/blend"
	"go.viam.com/armrig/config"
	"go.viam.com/armrig/logging"
	"go.viam.com/armrig/referenceframe"
	"go.viam.com/armrig/rig"
	fakeskeleton "go.viam.com/armrig/skeleton/fake"
)

const (
	// Flags.
	flagConfig   = "config"
	flagDebug    = "debug"
	flagFrames   = "frames"
	flagFPS      = "fps"
	flagEvery    = "every"
	flagPath     = "path"
	flagDuration = "duration"
	flagPlot     = "plot"
	flagLogFile  = "log-file"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	configFlag := &cli.StringFlag{
		Name:    flagConfig,
		Aliases: []string{"c"},
		Usage:   "rig config file (JSON5); the canonical arm when unset",
	}
	pathFlag := &cli.StringFlag{
		Name:  flagPath,
		Value: string(pathCircle),
		Usage: "scripted pointer path: circle, corners or static",
	}
	return &cli.App{
		Name:  "armrig",
		Usage: "drive a pointer-following arm rig and its pose blend set",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: flagDebug, Usage: "enable debug logging"},
		},
		Commands: []*cli.Command{
			{
				Name:  "simulate",
				Usage: "tick a rig as fast as possible and report how it tracks a scripted pointer",
				Flags: []cli.Flag{
					configFlag,
					pathFlag,
					&cli.IntFlag{Name: flagFrames, Value: 600, Usage: "number of frames to simulate"},
					&cli.Float64Flag{Name: flagFPS, Usage: "frame rate; the config's when unset"},
					&cli.IntFlag{Name: flagEvery, Value: 120, Usage: "print a snapshot every N frames, 0 for none"},
					&cli.StringFlag{Name: flagPlot, Usage: "also plot distance and clip weights to this image file (.png, .svg, .pdf)"},
				},
				Action: simulateAction,
			},
			{
				Name:   "validate",
				Usage:  "read and validate a config, then print it with defaults applied",
				Flags:  []cli.Flag{configFlag},
				Action: validateAction,
			},
			{
				Name:  "run",
				Usage: "drive a rig in real time, reloading the config file when it changes",
				Flags: []cli.Flag{
					configFlag,
					pathFlag,
					&cli.DurationFlag{Name: flagDuration, Usage: "stop after this long; run until interrupted when unset"},
					&cli.StringFlag{Name: flagLogFile, Usage: "also write JSON logs to this rotated file"},
				},
				Action: runAction,
			},
		},
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	path := c.String(flagConfig)
	if path == "" {
		return config.Default(), nil
	}
	return config.Read(path)
}

func newLogger(c *cli.Context, cfg *config.Config) (logging.Logger, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	if c.Bool(flagDebug) {
		level = logging.DEBUG
	}
	logger := logging.NewLogger("armrig")
	logger.SetLevel(level)
	return logger, nil
}

// newFakeRig builds cfg over the canonical in-memory arm and a mixer holding every clip cfg names.
func newFakeRig(cfg *config.Config, logger logging.Logger) (*rig.Rig, error) {
	blendCfg := cfg.Blend
	if blendCfg == nil {
		blendCfg = blend.DefaultConfig()
	}
	names := make([]string, 0, blend.NumClips)
	for _, clip := range blend.AllClips {
		names = append(names, blendCfg.ActionName(clip))
	}
	return rig.New(fakeskeleton.NewArm(), fake.NewMixer(names...), cfg, logger)
}

func simulateAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger, err := newLogger(c, cfg)
	if err != nil {
		return err
	}
	path, err := parseInputPath(c.String(flagPath))
	if err != nil {
		return err
	}
	fps := cfg.Driver.FPS
	if c.IsSet(flagFPS) {
		fps = c.Float64(flagFPS)
	}
	if fps <= 0 {
		return errors.Errorf("fps must be positive, got %v", fps)
	}

	r, err := newFakeRig(cfg, logger)
	if err != nil {
		return err
	}
	sum, err := simulate(c, r, path, c.Int(flagFrames), fps, c.Int(flagEvery))
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, sum.table())
	if err := printDistanceHistogram(c.App.Writer, sum.distances); err != nil {
		return err
	}
	if plotPath := c.String(flagPlot); plotPath != "" {
		if err := writePlot(plotPath, sum); err != nil {
			return err
		}
		logger.Infow("wrote plot", "path", plotPath)
	}
	return nil
}

// summary collects per-frame measurements of a simulation.
type summary struct {
	frames      int
	dt          float64
	distances   []float64
	jitter      []float64
	weights     [blend.NumClips][]float64
	transitions int
	hasChain    bool
	hasBlend    bool
}

func simulate(c *cli.Context, r *rig.Rig, path inputPath, frames int, fps float64, every int) (*summary, error) {
	if frames <= 0 {
		return nil, errors.Errorf("frames must be positive, got %d", frames)
	}
	dt := 1 / fps
	controls := r.Controls()
	sum := &summary{frames: frames, dt: dt}

	prev := r.Snapshot()
	for i := 0; i < frames; i++ {
		path.apply(controls, float64(i)*dt)
		r.Tick(dt)
		s := r.Snapshot()
		if s.HasChain {
			sum.hasChain = true
			sum.distances = append(sum.distances, s.Distance)
			sum.jitter = append(sum.jitter, referenceframe.InputsL2Distance(prev.Angles(), s.Angles()))
		}
		if s.HasBlend {
			sum.hasBlend = true
			for _, clip := range blend.AllClips {
				sum.weights[clip] = append(sum.weights[clip], s.Weights.Of(clip))
			}
			if prev.HasBlend && s.Active != prev.Active {
				sum.transitions++
			}
		}
		if every > 0 && (i+1)%every == 0 {
			fmt.Fprintln(c.App.Writer, s.Table())
		}
		prev = s
	}
	return sum, nil
}

func (s *summary) table() string {
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("%d frames", s.frames))
	t.AppendHeader(table.Row{"Measure", "Value"})
	if s.hasChain {
		mean, _ := stats.Mean(s.distances)
		maxDist, _ := stats.Max(s.distances)
		p95, _ := stats.Percentile(s.distances, 95)
		final := s.distances[len(s.distances)-1]
		step, _ := stats.Mean(s.jitter)
		stddev, _ := stats.StandardDeviation(s.jitter)
		t.AppendRows([]table.Row{
			{"mean distance", fmt.Sprintf("%.3f", mean)},
			{"max distance", fmt.Sprintf("%.3f", maxDist)},
			{"p95 distance", fmt.Sprintf("%.3f", p95)},
			{"final distance", fmt.Sprintf("%.3f", final)},
			{"mean joint step (rad)", fmt.Sprintf("%.5f", step)},
			{"joint step stddev (rad)", fmt.Sprintf("%.5f", stddev)},
		})
	}
	t.AppendRow(table.Row{"active clip changes", s.transitions})
	return t.Render()
}

func validateAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, string(out))
	source := c.String(flagConfig)
	if source == "" {
		source = "default config"
	}
	color.New(color.FgGreen).Fprintf(c.App.Writer, "%s is valid\n", source)
	return nil
}

func runAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger, err := newLogger(c, cfg)
	if err != nil {
		return err
	}
	if logFile := c.String(flagLogFile); logFile != "" {
		var closeLog func() error
		logger, closeLog = logging.NewFileLogger("armrig", logFile, logger.GetLevel())
		defer func() {
			if err := closeLog(); err != nil {
				fmt.Fprintln(c.App.ErrWriter, err)
			}
		}()
	}
	path, err := parseInputPath(c.String(flagPath))
	if err != nil {
		return err
	}
	r, err := newFakeRig(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if d := c.Duration(flagDuration); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	clk := clock.New()
	driver, err := rig.NewDriver(r, clk, cfg.Driver.FPS, logger.Sublogger("driver"))
	if err != nil {
		return err
	}
	if err := driver.Start(ctx); err != nil {
		return err
	}
	defer driver.Close()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return feedInput(ctx, clk, path, r.Controls(), driver.Period())
	})
	if cfg.ConfigFilePath != "" {
		g.Go(func() error {
			return reloadConfig(ctx, cfg.ConfigFilePath, r, logger)
		})
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	driver.Close()
	fmt.Fprintln(c.App.Writer, r.Snapshot().Table())
	return nil
}

// feedInput plays path into controls every period until ctx is done.
func feedInput(ctx context.Context, clk clock.Clock, path inputPath, controls rig.Controls, period time.Duration) error {
	start := clk.Now()
	ticker := clk.Ticker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			path.apply(controls, now.Sub(start).Seconds())
		}
	}
}

// reloadConfig applies every valid edit of the config file to r until ctx is done.
func reloadConfig(ctx context.Context, filePath string, r *rig.Rig, logger logging.Logger) error {
	w, err := config.NewWatcher(ctx, filePath, logger.Sublogger("config"))
	if err != nil {
		return err
	}
	defer func() {
		if err := w.Close(); err != nil {
			logger.Warnw("error closing config watcher", "error", err)
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cfg := <-w.Config():
			if err := r.Reconfigure(cfg); err != nil {
				logger.Errorw("keeping previous config", "error", err)
			}
		}
	}
}
