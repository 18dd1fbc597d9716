// Package config holds the runtime knobs of a training run.
//
// A Config starts from Default, is optionally merged with a YAML file by
// Load and is then adjusted by command-line Overrides.
package config

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/born-ml/cyclegan/internal/cyclegan"
	"github.com/born-ml/cyclegan/internal/tensor"
)

// Supported tasks.
const (
	TaskMNIST     = "mnist"
	TaskRobotics  = "robotics"
	TaskSynthetic = "synthetic"
)

// Config captures the runtime knobs for a training run.
type Config struct {
	Epochs          int     `yaml:"epochs"`
	BatchSize       int     `yaml:"batch_size"`
	TrainImages     int     `yaml:"train_images"`
	ValImages       int     `yaml:"val_images"`
	TestImages      int     `yaml:"test_images"`
	LambdaCycle     float32 `yaml:"lambda_cycle"`
	LambdaIdentity  float32 `yaml:"lambda_identity"`
	LearningRateGen float32 `yaml:"learning_rate_gen"`
	LearningRateDis float32 `yaml:"learning_rate_disc"`
	Beta            float32 `yaml:"beta"`
	SaveEveryTrain  int     `yaml:"save_every_train"`
	SaveEveryTest   int     `yaml:"save_every_test"`
	ValidationEvery int     `yaml:"validation_every"`
	LogEvery        int     `yaml:"log_every"`

	Task          string `yaml:"task"`
	DataDir       string `yaml:"data_dir"`
	CheckpointDir string `yaml:"checkpoint_dir"`
	OutputDir     string `yaml:"output_dir"`
	Device        string `yaml:"device"`
	Seed          int64  `yaml:"seed"`

	ImageHeight   int `yaml:"image_height"`
	ImageWidth    int `yaml:"image_width"`
	ImageChannels int `yaml:"image_channels"`

	NoiseAmount     float32 `yaml:"noise_amount"`
	RemoveFraction  float32 `yaml:"remove_fraction"`
	Filters         int     `yaml:"filters"`
	Dropout         float32 `yaml:"dropout"`
	AdversarialLoss string  `yaml:"adversarial_loss"`

	Plot      bool   `yaml:"plot"`
	NumImages int    `yaml:"num_images"`
	LogLevel  string `yaml:"log_level"`
}

// Overrides captures CLI supplied values. Zero values leave the config
// untouched.
type Overrides struct {
	Epochs        int
	BatchSize     int
	TrainImages   int
	ValImages     int
	TestImages    int
	Task          string
	DataDir       string
	CheckpointDir string
	OutputDir     string
	Device        string
	Seed          int64
	Filters       int
	LogLevel      string
	Plot          bool
}

// Default returns the reference hyperparameters for MNIST denoising.
func Default() *Config {
	return &Config{
		Epochs:          20,
		BatchSize:       32,
		TrainImages:     10000,
		ValImages:       1000,
		TestImages:      1000,
		LambdaCycle:     10,
		LambdaIdentity:  0.5,
		LearningRateGen: 2e-4,
		LearningRateDis: 1e-4,
		Beta:            0.5,
		SaveEveryTrain:  100,
		SaveEveryTest:   10,
		ValidationEvery: 100,
		LogEvery:        10,

		Task:          TaskMNIST,
		DataDir:       "data/mnist",
		CheckpointDir: "models",
		OutputDir:     ".",
		Device:        "auto",
		Seed:          1,

		ImageHeight:   28,
		ImageWidth:    28,
		ImageChannels: 1,

		NoiseAmount:     0.1,
		RemoveFraction:  0.1,
		Filters:         32,
		Dropout:         0.1,
		AdversarialLoss: "lsgan",

		NumImages: 5,
		LogLevel:  "info",
	}
}

// Load reads a YAML file over the defaults and validates the result.
// Unknown keys are rejected.
func Load(path string) (*Config, error) {
	//nolint:gosec // G304: config path is chosen by the user
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "open config")
	}
	cfg, err := Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML from r over the defaults without validating.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return cfg, nil
}

// ApplyOverrides updates c using any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.Epochs > 0 {
		c.Epochs = o.Epochs
	}
	if o.BatchSize > 0 {
		c.BatchSize = o.BatchSize
	}
	if o.TrainImages > 0 {
		c.TrainImages = o.TrainImages
	}
	if o.ValImages > 0 {
		c.ValImages = o.ValImages
	}
	if o.TestImages > 0 {
		c.TestImages = o.TestImages
	}
	if o.Task != "" {
		c.Task = o.Task
	}
	if o.DataDir != "" {
		c.DataDir = o.DataDir
	}
	if o.CheckpointDir != "" {
		c.CheckpointDir = o.CheckpointDir
	}
	if o.OutputDir != "" {
		c.OutputDir = o.OutputDir
	}
	if o.Device != "" {
		c.Device = o.Device
	}
	if o.Seed != 0 {
		c.Seed = o.Seed
	}
	if o.Filters > 0 {
		c.Filters = o.Filters
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	if o.Plot {
		c.Plot = true
	}
}

// Validate verifies the config is runnable.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	positive := []struct {
		name  string
		value int
	}{
		{"epochs", c.Epochs},
		{"batch_size", c.BatchSize},
		{"train_images", c.TrainImages},
		{"val_images", c.ValImages},
		{"test_images", c.TestImages},
		{"save_every_train", c.SaveEveryTrain},
		{"save_every_test", c.SaveEveryTest},
		{"validation_every", c.ValidationEvery},
		{"log_every", c.LogEvery},
		{"filters", c.Filters},
		{"image_channels", c.ImageChannels},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return errors.Errorf("%s must be > 0 (got %d)", p.name, p.value)
		}
	}
	if c.ImageHeight < 4 || c.ImageWidth < 4 {
		return errors.Errorf("image size %dx%d must be at least 4x4", c.ImageHeight, c.ImageWidth)
	}
	if c.LearningRateGen <= 0 || c.LearningRateDis <= 0 {
		return errors.Errorf("learning rates must be > 0 (gen=%v disc=%v)", c.LearningRateGen, c.LearningRateDis)
	}
	if c.Beta <= 0 || c.Beta >= 1 {
		return errors.Errorf("beta must be in (0, 1) (got %v)", c.Beta)
	}
	if c.LambdaCycle < 0 || c.LambdaIdentity < 0 {
		return errors.Errorf("loss weights must be >= 0 (cycle=%v identity=%v)", c.LambdaCycle, c.LambdaIdentity)
	}
	if c.NoiseAmount < 0 || c.NoiseAmount > 1 || c.RemoveFraction < 0 || c.RemoveFraction > 1 {
		return errors.Errorf("noise_amount and remove_fraction must be in [0, 1] (got %v, %v)", c.NoiseAmount, c.RemoveFraction)
	}
	if c.Dropout < 0 || c.Dropout >= 1 {
		return errors.Errorf("dropout must be in [0, 1) (got %v)", c.Dropout)
	}
	switch c.Task {
	case TaskMNIST, TaskRobotics, TaskSynthetic:
	default:
		return errors.Errorf("unknown task %q (want %s, %s or %s)", c.Task, TaskMNIST, TaskRobotics, TaskSynthetic)
	}
	if c.Task == TaskMNIST && (c.ImageHeight != 28 || c.ImageWidth != 28 || c.ImageChannels != 1) {
		return errors.Errorf("mnist images are 28x28x1, got %dx%dx%d", c.ImageHeight, c.ImageWidth, c.ImageChannels)
	}
	if c.CheckpointDir == "" {
		return errors.New("checkpoint_dir must be set")
	}
	if _, err := cyclegan.ParseAdversarialLoss(c.AdversarialLoss); err != nil {
		return err
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.NumImages < 0 {
		return errors.Errorf("num_images must be >= 0 (got %d)", c.NumImages)
	}
	return nil
}

// ImageShape returns [H, W, C].
func (c *Config) ImageShape() tensor.Shape {
	return tensor.Shape{c.ImageHeight, c.ImageWidth, c.ImageChannels}
}

// Arch returns the network architecture for images of the given [H, W, C]
// shape.
func (c *Config) Arch(shape tensor.Shape) cyclegan.Arch {
	arch := cyclegan.DefaultArch()
	arch.Height, arch.Width, arch.Channels = shape[0], shape[1], shape[2]
	arch.Filters = c.Filters
	arch.Dropout = c.Dropout
	return arch
}

// GAN returns the training hyperparameters. Validate must have succeeded.
func (c *Config) GAN() cyclegan.Config {
	adv, _ := cyclegan.ParseAdversarialLoss(c.AdversarialLoss)
	return cyclegan.Config{
		LambdaCycle:    c.LambdaCycle,
		LambdaIdentity: c.LambdaIdentity,
		LRGen:          c.LearningRateGen,
		LRDisc:         c.LearningRateDis,
		Beta:           c.Beta,
		Adversarial:    adv,
	}
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, errors.Errorf("unknown log level %q", s)
}
