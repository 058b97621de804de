package report

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/IshaanNene/newsentiment/internal/types"
)

const (
	maxCategoryBars = 8
	histogramBins   = 30
)

var (
	colorPositive = color.RGBA{R: 0x2e, G: 0xcc, B: 0x71, A: 0xff}
	colorNegative = color.RGBA{R: 0xe7, G: 0x4c, B: 0x3c, A: 0xff}
	colorNeutral  = color.RGBA{R: 0x95, G: 0xa5, B: 0xa6, A: 0xff}
	colorSkyBlue  = color.RGBA{R: 0x87, G: 0xce, B: 0xeb, A: 0xff}
	colorCoral    = color.RGBA{R: 0xff, G: 0x7f, B: 0x50, A: 0xff}
	colorPurple   = color.RGBA{R: 0x80, G: 0x00, B: 0x80, A: 0xff}
	colorGold     = color.RGBA{R: 0xff, G: 0xd7, B: 0x00, A: 0xff}
)

func labelColor(l types.SentimentLabel) color.Color {
	switch l {
	case types.Positive:
		return colorPositive
	case types.Negative:
		return colorNegative
	default:
		return colorNeutral
	}
}

// scoreColor colours a mean sentiment the way the per-source panel does.
func scoreColor(score float64) color.Color {
	switch {
	case score > 0.1:
		return colorPositive
	case score < -0.1:
		return colorNegative
	default:
		return colorNeutral
	}
}

// CreateVisualizations renders the six panel dashboard to a PNG at path.
func CreateVisualizations(articles []*types.Article, path string, days int) error {
	t, err := AnalyzeTrends(articles, days)
	if err != nil {
		return err
	}

	panels := []func(*Trends, []*types.Article) (*plot.Plot, error){
		distributionPanel,
		sourceCountPanel,
		categoryPanel,
		trendPanel,
		sourceSentimentPanel,
		lengthPanel,
	}
	const rows, cols = 2, 3
	plots := make([][]*plot.Plot, rows)
	for j := range plots {
		plots[j] = make([]*plot.Plot, cols)
		for i := range plots[j] {
			p, err := panels[j*cols+i](t, articles)
			if err != nil {
				return fmt.Errorf("dashboard panel %d: %w", j*cols+i+1, err)
			}
			plots[j][i] = p
		}
	}

	img := vgimg.New(20*vg.Inch, 12*vg.Inch)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      rows,
		Cols:      cols,
		PadX:      vg.Millimeter * 6,
		PadY:      vg.Millimeter * 6,
		PadTop:    vg.Millimeter * 4,
		PadBottom: vg.Millimeter * 4,
		PadLeft:   vg.Millimeter * 4,
		PadRight:  vg.Millimeter * 4,
	}
	canvases := plot.Align(plots, tiles, dc)
	for j := range plots {
		for i := range plots[j] {
			plots[j][i].Draw(canvases[j][i])
		}
	}

	return writePNG(path, img)
}

func writePNG(path string, img *vgimg.Canvas) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// coloredBars adds one bar per value so each can carry its own colour.
func coloredBars(p *plot.Plot, names []string, values []float64, colors []color.Color) error {
	width := vg.Points(28)
	if n := len(values); n > 6 {
		width = vg.Points(math.Max(8, 168/float64(n)))
	}
	for i, v := range values {
		bar, err := plotter.NewBarChart(plotter.Values{v}, width)
		if err != nil {
			return err
		}
		bar.XMin = float64(i)
		bar.Color = colors[i%len(colors)]
		bar.LineStyle.Width = 0
		p.Add(bar)
	}
	p.NominalX(names...)
	if len(names) > 4 {
		p.X.Tick.Label.Rotation = math.Pi / 6
		p.X.Tick.Label.XAlign = draw.XRight
		p.X.Tick.Label.YAlign = draw.YCenter
	}
	return nil
}

func distributionPanel(t *Trends, _ []*types.Article) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Sentiment Distribution"
	p.Y.Label.Text = "Articles"

	var (
		names  []string
		values []float64
		colors []color.Color
	)
	for _, l := range types.Labels {
		n := t.Distribution[string(l)]
		if n == 0 {
			continue
		}
		names = append(names, fmt.Sprintf("%s (%.1f%%)", titleCase(string(l)), t.Percent(l)))
		values = append(values, float64(n))
		colors = append(colors, labelColor(l))
	}
	return p, coloredBars(p, names, values, colors)
}

func sourceCountPanel(t *Trends, _ []*types.Article) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Articles by Source"
	p.Y.Label.Text = "Number of Articles"

	names := make([]string, len(t.SourceCounts))
	values := make([]float64, len(t.SourceCounts))
	for i, c := range t.SourceCounts {
		names[i] = c.Name
		values[i] = float64(c.Count)
	}
	return p, coloredBars(p, names, values, []color.Color{colorSkyBlue})
}

func categoryPanel(t *Trends, _ []*types.Article) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Top Categories"
	p.Y.Label.Text = "Articles"

	top := t.CategoryCounts
	if len(top) > maxCategoryBars {
		top = top[:maxCategoryBars]
	}
	names := make([]string, len(top))
	values := make([]float64, len(top))
	for i, c := range top {
		names[i] = c.Name
		values[i] = float64(c.Count)
	}
	return p, coloredBars(p, names, values, []color.Color{colorCoral})
}

func trendPanel(t *Trends, _ []*types.Article) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Sentiment Trend (Last %d Days)", t.WindowDays)
	p.Y.Label.Text = "Average Sentiment"
	p.X.Tick.Marker = plot.TimeTicks{Format: "01-02"}
	p.Add(plotter.NewGrid())

	if len(t.Daily) == 0 {
		return p, nil
	}
	xys := make(plotter.XYs, len(t.Daily))
	for i, d := range t.Daily {
		xys[i].X = float64(d.Date().Unix())
		xys[i].Y = d.Mean
	}
	line, points, err := plotter.NewLinePoints(xys)
	if err != nil {
		return nil, err
	}
	line.Color = colorPurple
	line.Width = vg.Points(2)
	points.Color = colorPurple
	points.Shape = draw.CircleGlyph{}
	p.Add(line, points, zeroLine(xys[0].X, xys[len(xys)-1].X))
	return p, nil
}

func sourceSentimentPanel(t *Trends, _ []*types.Article) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Average Sentiment by Source"
	p.Y.Label.Text = "Average Sentiment"

	names := make([]string, len(t.SourceSentiment))
	values := make([]float64, len(t.SourceSentiment))
	colors := make([]color.Color, len(t.SourceSentiment))
	for i, m := range t.SourceSentiment {
		names[i] = m.Name
		values[i] = m.Mean
		colors[i] = scoreColor(m.Mean)
	}
	if err := coloredBars(p, names, values, colors); err != nil {
		return nil, err
	}
	if len(values) > 0 {
		p.Add(zeroLine(-0.5, float64(len(values))-0.5))
	}
	return p, nil
}

func lengthPanel(_ *Trends, articles []*types.Article) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Content Length Distribution"
	p.X.Label.Text = "Characters"
	p.Y.Label.Text = "Frequency"

	vals := make(plotter.Values, 0, len(articles))
	for _, a := range articles {
		vals = append(vals, float64(a.ContentLength))
	}
	if len(vals) == 0 {
		return p, nil
	}
	h, err := plotter.NewHist(vals, histogramBins)
	if err != nil {
		return nil, err
	}
	h.FillColor = colorGold
	p.Add(h)
	return p, nil
}

func zeroLine(from, to float64) *plotter.Function {
	f := plotter.NewFunction(func(float64) float64 { return 0 })
	f.XMin, f.XMax = from, to
	f.Color = color.Gray{Y: 0x60}
	f.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
	return f
}
