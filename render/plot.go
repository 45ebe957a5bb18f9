package render

import (
	"errors"
	"image/color"

	"github.com/soypat/gouge"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// PlotDepth saves a plot of groove depth against arc length along the
// curve for profile p. The image format follows the extension of path.
func PlotDepth(path string, p *gouge.Profile) error {
	if p == nil || len(p.Stations) == 0 {
		return errors.New("profile has no stations")
	}
	full := make(plotter.XYs, len(p.Stations))
	cut := make(plotter.XYs, len(p.Stations))
	for i, st := range p.Stations {
		full[i].X, full[i].Y = st.S, -p.Radius
		cut[i].X, cut[i].Y = st.S, -p.Radius*st.W
	}

	plt := plot.New()
	plt.Title.Text = "Gouge depth"
	plt.X.Label.Text = "Arc length"
	plt.Y.Label.Text = "Depth"
	plt.Add(plotter.NewGrid())

	fullLine, err := plotter.NewLine(full)
	if err != nil {
		return err
	}
	fullLine.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	fullLine.LineStyle.Color = color.Gray{Y: 128}

	cutLine, err := plotter.NewLine(cut)
	if err != nil {
		return err
	}
	cutLine.LineStyle.Width = vg.Points(1.5)
	points, err := plotter.NewScatter(cut)
	if err != nil {
		return err
	}
	points.GlyphStyle.Color = color.RGBA{R: 200, A: 255}

	plt.Add(fullLine, cutLine, points)
	plt.Legend.Add("tool radius", fullLine)
	plt.Legend.Add("stations", cutLine, points)
	return plt.Save(6*vg.Inch, 3*vg.Inch, path)
}
