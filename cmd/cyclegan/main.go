// Package main provides the cyclegan CLI: train a denoising CycleGAN or
// evaluate a saved checkpoint.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"

	"github.com/born-ml/cyclegan/internal/config"
	"github.com/born-ml/cyclegan/internal/tensor"
	"github.com/born-ml/cyclegan/internal/trainer"
)

const version = "v0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "train":
		err = train(ctx, os.Args[2:])
	case "test":
		err = test(ctx, os.Args[2:])
	case "version":
		fmt.Printf("cyclegan %s\n", version)
	case "help", "-h", "--help":
		usage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage(os.Stderr)
		stop()
		os.Exit(2)
	}
	if err != nil {
		slog.Error("command failed", "command", os.Args[1], "err", err)
		stop()
		os.Exit(1)
	}
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "cyclegan %s - CycleGAN image denoising\n\n", version)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  train      Train the networks (see train -h)")
	fmt.Fprintln(w, "  test       Evaluate a saved checkpoint on the test set")
	fmt.Fprintln(w, "  version    Show version")
}

// common holds the flags shared by train and test.
type common struct {
	cfgPath   string
	overrides config.Overrides
	robotics  bool
	height    int
	width     int
	channels  int
}

func (c *common) register(fs *flag.FlagSet) {
	fs.StringVar(&c.cfgPath, "config", "", "Path to YAML config (defaults are used when empty)")
	fs.StringVar(&c.overrides.Task, "task", "", "Task: mnist, robotics or synthetic")
	fs.StringVar(&c.overrides.DataDir, "data-dir", "", "Dataset directory")
	fs.StringVar(&c.overrides.CheckpointDir, "checkpoint-dir", "", "Checkpoint directory")
	fs.StringVar(&c.overrides.OutputDir, "output-dir", "", "Directory for images and loss history")
	fs.StringVar(&c.overrides.Device, "device", "", "Device: auto, cpu or gpu")
	fs.StringVar(&c.overrides.LogLevel, "log-level", "", "Log level: debug, info, warn or error")
	fs.IntVar(&c.overrides.BatchSize, "batch-size", 0, "Batch size")
	fs.IntVar(&c.overrides.TrainImages, "train-images", 0, "Number of training images")
	fs.IntVar(&c.overrides.ValImages, "val-images", 0, "Number of validation images")
	fs.IntVar(&c.overrides.TestImages, "test-images", 0, "Number of test images")
	fs.IntVar(&c.overrides.Filters, "filters", 0, "Base convolution filters")
	fs.Int64Var(&c.overrides.Seed, "seed", 0, "PRNG seed")
	fs.BoolVar(&c.overrides.Plot, "plot", false, "Print text previews of images")
	fs.BoolVar(&c.robotics, "robotics", false, "Robotics task with pixel removal")
	fs.IntVar(&c.height, "height", 0, "Image height (robotics and synthetic)")
	fs.IntVar(&c.width, "width", 0, "Image width (robotics and synthetic)")
	fs.IntVar(&c.channels, "channels", 0, "Image channels (robotics and synthetic)")
}

// load builds the config and run options from the parsed flags.
func (c *common) load() (*config.Config, trainer.RunOptions, error) {
	cfg := config.Default()
	if c.cfgPath != "" {
		var err error
		if cfg, err = config.Load(c.cfgPath); err != nil {
			return nil, trainer.RunOptions{}, err
		}
	}
	cfg.ApplyOverrides(c.overrides)
	if c.robotics {
		cfg.Task = config.TaskRobotics
	}
	if c.height > 0 {
		cfg.ImageHeight = c.height
	}
	if c.width > 0 {
		cfg.ImageWidth = c.width
	}
	if c.channels > 0 {
		cfg.ImageChannels = c.channels
	}
	if err := cfg.Validate(); err != nil {
		return nil, trainer.RunOptions{}, errors.Wrap(err, "invalid config")
	}

	level, _ := config.ParseLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	return cfg, trainer.RunOptions{
		Robotics: cfg.Task == config.TaskRobotics,
		Shape:    tensor.Shape{cfg.ImageHeight, cfg.ImageWidth, cfg.ImageChannels},
		Logger:   logger,
		Preview:  os.Stdout,
	}, nil
}

func train(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	var c common
	c.register(fs)
	epochs := fs.Int("epochs", 0, "Number of epochs")
	resume := fs.Bool("resume", false, "Resume from the checkpoint of -start-epoch")
	startEpoch := fs.Int("start-epoch", 0, "Checkpoint epoch to resume from")
	_ = fs.Parse(args)

	c.overrides.Epochs = *epochs
	cfg, opts, err := c.load()
	if err != nil {
		return err
	}
	opts.Resume, opts.StartEpoch = *resume, *startEpoch

	res, err := trainer.Run(ctx, cfg, opts)
	if err != nil {
		return err
	}
	fmt.Printf("test: %s\n", res.Test)
	return nil
}

func test(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("test", flag.ExitOnError)
	var c common
	c.register(fs)
	epoch := fs.Int("epoch", 1, "Checkpoint epoch to evaluate")
	_ = fs.Parse(args)

	cfg, opts, err := c.load()
	if err != nil {
		return err
	}
	rec, err := trainer.LoadAndTest(ctx, cfg, *epoch, opts)
	if err != nil {
		return err
	}
	fmt.Printf("test: %s\n", rec)
	return nil
}
