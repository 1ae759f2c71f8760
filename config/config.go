// Package config loads the JSON run configuration.
package config

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	nn "github.com/LouisFoschiani/Machine-Learning-5JV/neuralnet"
)

// Run modes.
const (
	ModeTrain   = "train"
	ModeTest    = "test"
	ModePredict = "predict"
)

// Dataset layouts.
const (
	SourceDir   = "dir"
	SourceCIFAR = "cifar"
)

type Config struct {
	Model string `json:"model"`
	Mode  string `json:"mode"`
	// Category indexes Categories; -1 runs every category.
	Category   int      `json:"category"`
	Categories []string `json:"categories"`
	Source     string   `json:"source"`
	DataDir    string   `json:"data_dir"`
	ModelDir   string   `json:"model_dir"`
	ReportDir  string   `json:"report_dir"`

	Epochs       int     `json:"epochs"`
	Budget       int     `json:"budget"`
	LearningRate float64 `json:"learning_rate"`
	Decay        float64 `json:"decay"`

	Width     int  `json:"width"`
	Height    int  `json:"height"`
	Grayscale bool `json:"grayscale"`

	Hidden     []int   `json:"hidden"`
	Centers    int     `json:"centers"`
	Beta       float64 `json:"beta"`
	CenterMode string  `json:"center_mode"`

	Seed  int64  `json:"seed"`
	Image string `json:"image"`
}

func Default() *Config {
	return &Config{
		Model:        nn.Linear.String(),
		Mode:         ModeTrain,
		Category:     -1,
		Categories:   []string{"Avocado", "Banana", "Tomato"},
		Source:       SourceDir,
		DataDir:      "images",
		ModelDir:     "models",
		ReportDir:    "reports",
		Epochs:       50,
		Budget:       1000,
		LearningRate: 0.001,
		Width:        32,
		Height:       32,
		Hidden:       []int{64},
		Centers:      20,
		CenterMode:   "fixed",
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	return cfg, nil
}

// Kind returns the configured model kind.
func (c *Config) Kind() (nn.Kind, error) {
	return nn.ParseKind(c.Model)
}

// SelectedCategories returns every category, or only the selected one.
func (c *Config) SelectedCategories() []string {
	if c.Category < 0 {
		return c.Categories
	}
	return c.Categories[c.Category : c.Category+1]
}

func (c *Config) Validate() error {
	if _, err := c.Kind(); err != nil {
		return err
	}
	switch c.Mode {
	case ModeTrain, ModeTest, ModePredict:
	default:
		return errors.Errorf("unknown mode %q", c.Mode)
	}
	switch c.Source {
	case SourceDir, SourceCIFAR:
	default:
		return errors.Errorf("unknown source %q", c.Source)
	}
	if c.Source == SourceDir && len(c.Categories) == 0 {
		return errors.New("no categories")
	}
	if c.Category < -1 || c.Category >= len(c.Categories) {
		return errors.Errorf("category %d out of range [-1, %d)", c.Category, len(c.Categories))
	}
	if c.Epochs <= 0 || c.Budget <= 0 {
		return errors.Errorf("epochs (%d) and budget (%d) must be positive", c.Epochs, c.Budget)
	}
	if !(c.LearningRate > 0) {
		return errors.Errorf("learning rate %v must be positive", c.LearningRate)
	}
	if c.Decay < 0 {
		return errors.Errorf("negative decay %v", c.Decay)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return errors.Errorf("invalid image size %dx%d", c.Width, c.Height)
	}
	for _, n := range c.Hidden {
		if n <= 0 {
			return errors.Wrapf(nn.ErrInvalidTopology, "hidden layer width %d", n)
		}
	}
	if c.Beta < 0 {
		return errors.Wrapf(nn.ErrInvalidBeta, "beta %v", c.Beta)
	}
	if _, err := c.ParseCenterMode(); err != nil {
		return err
	}
	if c.Mode == ModePredict && c.Image == "" {
		return errors.New("predict mode needs an image")
	}
	return nil
}

// ParseCenterMode maps center_mode to an RBF center mode.
func (c *Config) ParseCenterMode() (nn.CenterMode, error) {
	switch c.CenterMode {
	case "", "fixed":
		return nn.FixedCenters, nil
	case "drift":
		return nn.DriftCenters, nil
	}
	return 0, errors.Errorf("unknown center mode %q", c.CenterMode)
}
