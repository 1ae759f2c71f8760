// Package report writes training error histories as CSV and as plots.
package report

import (
	"encoding/csv"
	"image/color"
	"io"
	"strconv"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/LouisFoschiani/Machine-Learning-5JV/harness"
)

// WriteCSV writes one epoch,train_error,test_error row per epoch of h.
func WriteCSV(w io.Writer, h *harness.History) error {
	if len(h.Train) != len(h.Test) {
		return errors.Errorf("history has %d train and %d test entries", len(h.Train), len(h.Test))
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"epoch", "train_error", "test_error"}); err != nil {
		return errors.Wrap(err, "writing csv header")
	}
	for i := range h.Train {
		row := []string{
			strconv.Itoa(i + 1),
			strconv.FormatFloat(h.Train[i], 'f', -1, 64),
			strconv.FormatFloat(h.Test[i], 'f', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrapf(err, "writing epoch %d", i+1)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flushing csv")
}

func errorPoints(values []float64) plotter.XYs {
	pts := make(plotter.XYs, len(values))
	for i, v := range values {
		pts[i].X = float64(i + 1)
		pts[i].Y = v
	}
	return pts
}

// PlotErrors renders the train and test error curves of h to path. The
// image format follows the file extension.
func PlotErrors(h *harness.History, path string) error {
	if len(h.Train) == 0 {
		return errors.Errorf("no epochs to plot for %s", h.Category)
	}
	p := plot.New()
	p.Title.Text = "Error per epoch: " + h.Category
	p.X.Label.Text = "Epoch"
	p.Y.Label.Text = "Error"
	p.Y.Min = 0
	p.Y.Max = 1
	p.Legend.Top = true

	curves := []struct {
		name   string
		values []float64
		color  color.Color
	}{
		{"train", h.Train, color.RGBA{B: 255, A: 255}},
		{"test", h.Test, color.RGBA{R: 255, A: 255}},
	}
	for _, c := range curves {
		l, err := plotter.NewLine(errorPoints(c.values))
		if err != nil {
			return errors.Wrapf(err, "%s curve", c.name)
		}
		l.Color = c.color
		l.LineStyle.Width = vg.Points(1.5)
		p.Add(l)
		p.Legend.Add(c.name, l)
	}
	p.Add(plotter.NewGrid())

	return errors.Wrapf(p.Save(6*vg.Inch, 4*vg.Inch, path), "saving %s", path)
}

// PlotAccuracies renders one bar per category with its accuracy in percent.
func PlotAccuracies(title string, categories []string, accuracies []float64, path string) error {
	if len(categories) == 0 || len(categories) != len(accuracies) {
		return errors.Errorf("%d categories for %d accuracies", len(categories), len(accuracies))
	}
	values := make(plotter.Values, len(accuracies))
	for i, a := range accuracies {
		values[i] = a * 100
	}
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "Accuracy (%)"
	p.Y.Min = 0
	p.Y.Max = 100

	bars, err := plotter.NewBarChart(values, vg.Points(30))
	if err != nil {
		return errors.Wrap(err, "accuracy bars")
	}
	bars.Color = color.RGBA{G: 128, B: 255, A: 255}
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars, plotter.NewGrid())
	p.NominalX(categories...)

	return errors.Wrapf(p.Save(6*vg.Inch, 4*vg.Inch, path), "saving %s", path)
}
