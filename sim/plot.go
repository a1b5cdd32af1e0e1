package sim

import (
	"fmt"
	"image/color"

	"github.com/scenekf/go-scenekf/slot"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// NewSlotPlot creates new plot of the x, y trajectory of slot i from the three data series:
// truth:    true scene states
// measure:  measured scene states
// filter:   filter estimates
// It returns error if the plot fails to be created. This can be due to either of the following conditions:
// * either of the series is empty
// * i is not a valid slot of layout l
// * either of the series holds a vector which does not match the layout
// * gonum plot fails to be created
func NewSlotPlot(l slot.Layout, i int, truth, measure, filter []mat.Vector) (*plot.Plot, error) {
	if len(truth) == 0 || len(measure) == 0 || len(filter) == 0 {
		return nil, fmt.Errorf("invalid data supplied")
	}

	if i < 0 || i >= l.Slots() {
		return nil, fmt.Errorf("invalid slot: %d", i)
	}

	p := plot.New()

	p.Title.Text = fmt.Sprintf("Slot %d", i)
	p.X.Label.Text = "X"
	p.Y.Label.Text = "Y"

	legend := plot.NewLegend()
	legend.Top = true
	p.Legend = legend

	// Make a scatter plotter for true data
	truthData, err := makePoints(l, i, truth)
	if err != nil {
		return nil, err
	}
	truthScatter, err := plotter.NewScatter(truthData)
	if err != nil {
		return nil, err
	}
	truthScatter.GlyphStyle.Color = color.RGBA{R: 255, B: 128, A: 255}
	truthScatter.Shape = draw.PyramidGlyph{}
	truthScatter.GlyphStyle.Radius = vg.Points(3)

	p.Add(truthScatter)
	p.Legend.Add("truth", truthScatter)

	// Make a scatter plotter for measurement data
	measData, err := makePoints(l, i, measure)
	if err != nil {
		return nil, err
	}
	measScatter, err := plotter.NewScatter(measData)
	if err != nil {
		return nil, err
	}
	measScatter.GlyphStyle.Color = color.RGBA{G: 255, A: 128}
	measScatter.GlyphStyle.Radius = vg.Points(3)

	p.Add(measScatter)
	p.Legend.Add("measurement", measScatter)

	// Make a scatter plotter for filter data
	filterData, err := makePoints(l, i, filter)
	if err != nil {
		return nil, err
	}
	filterScatter, err := plotter.NewScatter(filterData)
	if err != nil {
		return nil, fmt.Errorf("failed to create scatter: %v", err)
	}
	filterScatter.GlyphStyle.Color = color.RGBA{R: 169, G: 169, B: 169}
	filterScatter.Shape = draw.CrossGlyph{}
	filterScatter.GlyphStyle.Radius = vg.Points(3)

	p.Add(filterScatter)
	p.Legend.Add("filtered", filterScatter)

	return p, nil
}

func makePoints(l slot.Layout, i int, series []mat.Vector) (plotter.XYs, error) {
	pts := make(plotter.XYs, len(series))
	for n, v := range series {
		b, err := l.Box(v, i)
		if err != nil {
			return nil, err
		}
		pts[n].X = b.X
		pts[n].Y = b.Y
	}

	return pts, nil
}
