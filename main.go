package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/LouisFoschiani/Machine-Learning-5JV/config"
	"github.com/LouisFoschiani/Machine-Learning-5JV/dataset"
	"github.com/LouisFoschiani/Machine-Learning-5JV/harness"
	nn "github.com/LouisFoschiani/Machine-Learning-5JV/neuralnet"
	"github.com/LouisFoschiani/Machine-Learning-5JV/persist"
	"github.com/LouisFoschiani/Machine-Learning-5JV/report"
)

func main() {
	var (
		configPath = flag.String("config", "config.json", "path of the JSON configuration")
		model      = flag.String("model", "", "linear_model, rbf_model or mlp_model")
		mode       = flag.String("mode", "", "train, test or predict")
		category   = flag.Int("category", -1, "index of the category to run, -1 for all")
		image      = flag.String("image", "", "image to classify in predict mode")
		seed       = flag.Int64("seed", 0, "random seed, 0 seeds from the clock")
	)
	flag.Parse()
	logger := log.New(os.Stderr, "", log.LstdFlags)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal(err)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "model":
			cfg.Model = *model
		case "mode":
			cfg.Mode = *mode
		case "category":
			cfg.Category = *category
		case "image":
			cfg.Image = *image
		case "seed":
			cfg.Seed = *seed
		}
	})

	if err := run(cfg, logger); err != nil {
		logger.Fatal(err)
	}
}

func newSource(cfg *config.Config) (dataset.Source, error) {
	if cfg.Source == config.SourceCIFAR {
		c := &dataset.CIFAR{Dir: cfg.DataDir}
		if len(cfg.Categories) == 0 {
			labels, err := c.Labels()
			if err != nil {
				return nil, err
			}
			cfg.Categories = labels
		}
		return c, nil
	}
	return &dataset.Dir{
		Root:       cfg.DataDir,
		Categories: cfg.Categories,
		Image:      imageOptions(cfg),
	}, nil
}

func imageOptions(cfg *config.Config) dataset.ImageOptions {
	return dataset.ImageOptions{Width: cfg.Width, Height: cfg.Height, Grayscale: cfg.Grayscale}
}

func run(cfg *config.Config, logger *log.Logger) error {
	source, err := newSource(cfg)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	kind, err := cfg.Kind()
	if err != nil {
		return err
	}
	centerMode, err := cfg.ParseCenterMode()
	if err != nil {
		return err
	}
	h := harness.New(harness.Config{
		Kind:         kind,
		Categories:   cfg.Categories,
		Epochs:       cfg.Epochs,
		Budget:       cfg.Budget,
		LearningRate: cfg.LearningRate,
		Decay:        cfg.Decay,
		Spec: nn.Spec{
			Hidden:     cfg.Hidden,
			Centers:    cfg.Centers,
			Beta:       cfg.Beta,
			CenterMode: centerMode,
		},
	}, source, persist.Store{Dir: cfg.ModelDir}, nn.NewRand(cfg.Seed), logger)

	switch cfg.Mode {
	case config.ModeTrain:
		return train(h, cfg, kind, logger)
	case config.ModeTest:
		categories := cfg.SelectedCategories()
		if !kind.OneVsRest() {
			categories = []string{harness.AllCategories}
		}
		accuracies := make([]float64, len(categories))
		for i, category := range categories {
			acc, err := h.Evaluate(category, dataset.Test)
			if err != nil {
				return errors.Wrap(err, category)
			}
			fmt.Printf("%s\t%s\t%.2f%%\n", kind, category, acc*100)
			accuracies[i] = acc
		}
		if err := os.MkdirAll(cfg.ReportDir, 0o755); err != nil {
			return errors.Wrap(err, "creating report directory")
		}
		chart := filepath.Join(cfg.ReportDir, kind.String()+"_accuracy.png")
		return report.PlotAccuracies("Test accuracy: "+kind.String(), categories, accuracies, chart)
	case config.ModePredict:
		features, err := dataset.Features(cfg.Image, imageOptions(cfg))
		if err != nil {
			return err
		}
		p, err := h.Predictor()
		if err != nil {
			return err
		}
		category, score, err := p.Predict(features)
		if err != nil {
			return err
		}
		fmt.Printf("%s\t%s\t%.4f\n", cfg.Image, category, score)
		return nil
	}
	return errors.Errorf("unknown mode %q", cfg.Mode)
}

// train runs every category, or only the selected one, and writes the error
// reports of every run that completed at least one epoch.
func train(h *harness.Harness, cfg *config.Config, kind nn.Kind, logger *log.Logger) error {
	var (
		histories []*harness.History
		runErr    error
	)
	if cfg.Category < 0 || !kind.OneVsRest() {
		histories, runErr = h.RunAll()
	} else {
		var hist *harness.History
		hist, runErr = h.Run(cfg.Categories[cfg.Category])
		if hist != nil {
			histories = append(histories, hist)
		}
	}
	if err := os.MkdirAll(cfg.ReportDir, 0o755); err != nil {
		return errors.Wrap(err, "creating report directory")
	}
	for _, hist := range histories {
		if len(hist.Train) == 0 {
			continue
		}
		if err := writeReports(hist, cfg.ReportDir); err != nil {
			logger.Printf("%s: %v", hist.Category, err)
		}
	}
	return runErr
}

func writeReports(hist *harness.History, dir string) error {
	path := filepath.Join(dir, hist.Category+"_errors.csv")
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	if err := report.WriteCSV(f, hist); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "closing %s", path)
	}
	return report.PlotErrors(hist, filepath.Join(dir, hist.Category+"_errors.png"))
}
