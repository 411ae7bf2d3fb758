package main

import (
	"fmt"
	"image/color"

	"npr/common"
	"npr/core/ml"
	"npr/runner"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var labelColors = []color.RGBA{
	{R: 220, G: 50, B: 50, A: 255},
	{R: 50, G: 50, B: 220, A: 255},
	{R: 50, G: 160, B: 50, A: 255},
	{R: 200, G: 140, B: 0, A: 255},
}

// plotPredictions draws the validation set coloured by predicted label. Misclassified
// points use a cross glyph.
func plotPredictions(p *ml.Problem, c ml.Classifier, title, file string) error {
	if p.Dimension != 2 {
		return errors.Errorf("plot needs a 2-D problem, got dimension %d", p.Dimension)
	}

	type group struct {
		label   int
		correct bool
	}
	points := make(map[group]plotter.XYs)
	for _, e := range p.ValidationSet.Examples() {
		id, err := c.Predict(e.X)
		if err != nil {
			return err
		}
		g := group{label: id, correct: id == e.Label.ID}
		points[g] = append(points[g], plotter.XY{X: e.X[0], Y: e.X[1]})
	}

	pl := plot.New()
	pl.Title.Text = title
	pl.X.Label.Text = "x0"
	pl.Y.Label.Text = "x1"

	for i, id := range p.TrainingSet.Labels() {
		for _, correct := range []bool{true, false} {
			xys := points[group{label: id, correct: correct}]
			if len(xys) == 0 {
				continue
			}
			s, err := plotter.NewScatter(xys)
			if err != nil {
				return errors.Wrap(err, "new scatter")
			}
			s.GlyphStyle.Color = labelColors[i%len(labelColors)]
			name := fmt.Sprintf("predicted %d", id)
			if correct {
				s.GlyphStyle.Shape = draw.CircleGlyph{}
			} else {
				s.GlyphStyle.Shape = draw.CrossGlyph{}
				name += " (wrong)"
			}
			pl.Add(s)
			pl.Legend.Add(name, s)
		}
	}

	if err := pl.Save(6*vg.Inch, 6*vg.Inch, file); err != nil {
		return errors.Wrapf(err, "save plot %s", file)
	}
	return nil
}

func plotRun(cmd *cobra.Command) error {
	ct, err := common.ParseClassifierType(algorithmFlag)
	if err != nil {
		return err
	}
	lc, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	r := &runner.Runner{}
	if err = r.Init(lc); err != nil {
		return err
	}
	defer r.Stop()

	res, err := r.Run(ct)
	if err != nil {
		return err
	}
	title := fmt.Sprintf("%s on %s (correct ratio %.3f)", ct, lc.Problem.Type, res.Score.Accuracy)
	if err = plotPredictions(r.Problem(), res.Classifier, title, outputFlag); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", outputFlag)
	return nil
}

func plotCMD() *cobra.Command {
	plotCmd := &cobra.Command{
		Use:   "plot",
		Short: "plot validation predictions",
		Long:  "train one classifier and draw its validation predictions to an image file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return plotRun(cmd)
		},
	}
	attachFlags(plotCmd, append([]string{"algorithm", "output"}, problemFlagList...))
	return plotCmd
}
