package main

import (
	"fmt"
	"image/color"
	"io"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"go.viam.com/armrig/blend"
)

const histogramBins = 10

var clipColors = [blend.NumClips]color.Color{
	color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
	color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
	color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
	color.RGBA{R: 0x7f, G: 0x7f, B: 0x7f, A: 0xff},
}

// printDistanceHistogram writes a text histogram of the end effector's distance to its target.
// Nothing is written when every frame saw the same distance.
func printDistanceHistogram(w io.Writer, distances []float64) error {
	if len(distances) == 0 {
		return nil
	}
	lowest, highest := distances[0], distances[0]
	for _, d := range distances {
		lowest = min(lowest, d)
		highest = max(highest, d)
	}
	if highest-lowest < 1e-9 {
		return nil
	}
	fmt.Fprintln(w, "distance to target")
	return histogram.Fprint(w, histogram.Hist(histogramBins, distances), histogram.Linear(40))
}

// writePlot renders the per-frame distance and clip weights of s to an image file whose format
// follows the file extension.
func writePlot(path string, s *summary) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%d frames", s.frames)
	p.X.Label.Text = "time (s)"
	p.Legend.Top = true

	if s.hasChain {
		line, err := plotter.NewLine(s.series(s.distances))
		if err != nil {
			return errors.Wrap(err, "cannot plot distance")
		}
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add("distance", line)
	}
	if s.hasBlend {
		for _, clip := range blend.AllClips {
			line, err := plotter.NewLine(s.series(s.weights[clip]))
			if err != nil {
				return errors.Wrapf(err, "cannot plot %s weight", clip)
			}
			line.Color = clipColors[clip]
			p.Add(line)
			p.Legend.Add(clip.String(), line)
		}
	}
	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "cannot save plot to %s", path)
	}
	return nil
}

func (s *summary) series(values []float64) plotter.XYs {
	xys := make(plotter.XYs, len(values))
	for i, v := range values {
		xys[i].X = float64(i+1) * s.dt
		xys[i].Y = v
	}
	return xys
}
