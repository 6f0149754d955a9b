// Package plotting renders the run's image artifacts: walker trace plots,
// a corner plot of the posterior sample set and a model-comparison Hubble
// diagram. Plot output consumes samples only; nothing feeds back into
// sampling.
package plotting

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"lvilc/domain/chain"
	"lvilc/internal/errors"
)

// maxCornerPoints caps the scatter density in corner panels.
const maxCornerPoints = 5000

// Renderer writes PNG artifacts. It is stateless; every call names the
// output directory explicitly so independent runs never collide.
type Renderer struct{}

// NewRenderer creates a plot renderer.
func NewRenderer() *Renderer { return &Renderer{} }

// TracePlots writes one per-parameter trace plot (all walkers overlaid)
// and returns the written paths.
func (r *Renderer) TracePlots(c *chain.Chain, names []string, outDir string) ([]string, error) {
	var paths []string
	for dim := 0; dim < c.Dim; dim++ {
		p := plot.New()
		p.Title.Text = fmt.Sprintf("Trace: %s", names[dim])
		p.X.Label.Text = "step"
		p.Y.Label.Text = names[dim]

		for w := 0; w < c.Walkers; w++ {
			series := c.WalkerSeries(w, dim)
			xys := make(plotter.XYs, len(series))
			for s, v := range series {
				xys[s].X = float64(s)
				xys[s].Y = v
			}
			line, err := plotter.NewLine(xys)
			if err != nil {
				return nil, fmt.Errorf("trace line for walker %d: %w", w, err)
			}
			line.Color = plotutil.Color(w % 7)
			line.Width = vg.Points(0.4)
			p.Add(line)
		}

		path := filepath.Join(outDir, fmt.Sprintf("trace_%s.png", names[dim]))
		if err := p.Save(8*vg.Inch, 3*vg.Inch, path); err != nil {
			return nil, errors.IOError(path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// CornerPlot writes the standard corner view of the posterior sample set:
// marginal histograms on the diagonal, pairwise scatters below it.
func (r *Renderer) CornerPlot(set *chain.SampleSet, names []string, outDir string) (string, error) {
	dim := set.Dim
	cols := make([][]float64, dim)
	for d := 0; d < dim; d++ {
		cols[d] = thin(set.FlatParam(d), maxCornerPoints)
	}

	plots := make([][]*plot.Plot, dim)
	for i := 0; i < dim; i++ {
		plots[i] = make([]*plot.Plot, dim)
		for j := 0; j <= i; j++ {
			p := plot.New()
			if i == dim-1 {
				p.X.Label.Text = names[j]
			}
			if j == 0 && i > 0 {
				p.Y.Label.Text = names[i]
			}
			if i == j {
				hist, err := plotter.NewHist(plotter.Values(cols[i]), 40)
				if err != nil {
					return "", fmt.Errorf("histogram for %s: %w", names[i], err)
				}
				hist.FillColor = plotutil.Color(0)
				p.Add(hist)
			} else {
				xys := make(plotter.XYs, len(cols[j]))
				for k := range xys {
					xys[k].X = cols[j][k]
					xys[k].Y = cols[i][k]
				}
				sc, err := plotter.NewScatter(xys)
				if err != nil {
					return "", fmt.Errorf("scatter %s vs %s: %w", names[i], names[j], err)
				}
				sc.GlyphStyle.Radius = vg.Points(0.6)
				sc.GlyphStyle.Shape = draw.CircleGlyph{}
				sc.GlyphStyle.Color = plotutil.Color(1)
				p.Add(sc)
			}
			plots[i][j] = p
		}
	}

	img := vgimg.New(9*vg.Inch, 9*vg.Inch)
	dc := draw.New(img)
	tiles := draw.Tiles{Rows: dim, Cols: dim, PadX: vg.Millimeter, PadY: vg.Millimeter}
	canvases := plot.Align(plots, tiles, dc)
	for i := range plots {
		for j := range plots[i] {
			if plots[i][j] != nil {
				plots[i][j].Draw(canvases[i][j])
			}
		}
	}

	path := filepath.Join(outDir, "corner.png")
	f, err := os.Create(path)
	if err != nil {
		return "", errors.IOError(path, err)
	}
	defer f.Close()
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		return "", errors.IOError(path, err)
	}
	return path, nil
}

// ComparisonPlot writes two distance-modulus curves over a redshift grid,
// typically LVILC against the approximate LCDM baseline.
func (r *Renderer) ComparisonPlot(zs, model, reference []float64, modelName, referenceName, outDir string) (string, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s vs %s", modelName, referenceName)
	p.X.Label.Text = "redshift z"
	p.Y.Label.Text = "distance modulus"
	p.Legend.Top = false

	if err := plotutil.AddLinePoints(p,
		modelName, toXYs(zs, model),
		referenceName, toXYs(zs, reference)); err != nil {
		return "", fmt.Errorf("comparison lines: %w", err)
	}

	path := filepath.Join(outDir, "model_comparison.png")
	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return "", errors.IOError(path, err)
	}
	return path, nil
}

func toXYs(xs, ys []float64) plotter.XYs {
	xys := make(plotter.XYs, len(xs))
	for i := range xs {
		xys[i].X = xs[i]
		xys[i].Y = ys[i]
	}
	return xys
}

// thin keeps at most n evenly spaced samples.
func thin(xs []float64, n int) []float64 {
	if len(xs) <= n {
		return xs
	}
	stride := len(xs) / n
	out := make([]float64, 0, n)
	for i := 0; i < len(xs); i += stride {
		out = append(out, xs[i])
	}
	return out
}
