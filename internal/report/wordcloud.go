package report

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/IshaanNene/newsentiment/internal/types"
)

// DefaultCloudWords is the number of terms drawn when none is given.
const DefaultCloudWords = 100

const (
	cloudWidth   = 1200
	cloudHeight  = 600
	minWordSize  = 10
	maxWordSize  = 64
	spiralStep   = 0.15
	spiralGrowth = 1.4
	spiralLimit  = 6000
)

var cloudPalettes = map[types.SentimentLabel][]color.Color{
	types.Positive: {
		color.RGBA{R: 0x1b, G: 0x5e, B: 0x20, A: 0xff},
		color.RGBA{R: 0x2e, G: 0x7d, B: 0x32, A: 0xff},
		color.RGBA{R: 0x43, G: 0xa0, B: 0x47, A: 0xff},
		color.RGBA{R: 0x66, G: 0xbb, B: 0x6a, A: 0xff},
	},
	types.Negative: {
		color.RGBA{R: 0xb7, G: 0x1c, B: 0x1c, A: 0xff},
		color.RGBA{R: 0xc6, G: 0x28, B: 0x28, A: 0xff},
		color.RGBA{R: 0xe5, G: 0x39, B: 0x35, A: 0xff},
		color.RGBA{R: 0xef, G: 0x53, B: 0x50, A: 0xff},
	},
	"": {
		color.RGBA{R: 0x0d, G: 0x47, B: 0xa1, A: 0xff},
		color.RGBA{R: 0x15, G: 0x65, B: 0xc0, A: 0xff},
		color.RGBA{R: 0x6a, G: 0x1b, B: 0x9a, A: 0xff},
		color.RGBA{R: 0x00, G: 0x83, B: 0x8f, A: 0xff},
	},
}

// CreateWordCloud renders the most frequent non-stop-words of the articles
// carrying label ("" for all) to a PNG at path.
func CreateWordCloud(articles []*types.Article, label types.SentimentLabel, path string, maxWords int) error {
	if maxWords <= 0 {
		maxWords = DefaultCloudWords
	}
	var selected []*types.Article
	for _, a := range articles {
		if label == "" || a.SentimentLabel == label {
			selected = append(selected, a)
		}
	}
	terms := TopTerms(selected, maxWords)
	if len(terms) == 0 {
		if label == "" {
			return ErrNoData
		}
		return fmt.Errorf("%w with %s sentiment", ErrNoData, label)
	}

	palette, ok := cloudPalettes[label]
	if !ok {
		palette = cloudPalettes[""]
	}

	p := plot.New()
	if label != "" {
		p.Title.Text = fmt.Sprintf("%s Sentiment Word Cloud", titleCase(string(label)))
	} else {
		p.Title.Text = "News Word Cloud"
	}
	p.HideAxes()
	p.Add(&wordCloud{terms: terms, palette: palette})

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := p.Save(vg.Points(cloudWidth), vg.Points(cloudHeight), path); err != nil {
		return fmt.Errorf("save word cloud: %w", err)
	}
	return nil
}

// wordCloud is a plot.Plotter that places words on an Archimedean spiral
// around the centre of the canvas, largest first, skipping any word that
// cannot be placed without overlap.
type wordCloud struct {
	terms   []Term
	palette []color.Color
}

type placedWord struct {
	word  string
	style text.Style
	at    vg.Point
	box   vg.Rectangle
}

func (w *wordCloud) Plot(c draw.Canvas, _ *plot.Plot) {
	for _, pw := range w.layout(c.Rectangle) {
		c.FillText(pw.style, pw.at, pw.word)
	}
}

func (w *wordCloud) layout(area vg.Rectangle) []placedWord {
	if len(w.terms) == 0 {
		return nil
	}
	top := float64(w.terms[0].Count)
	center := vg.Point{
		X: (area.Min.X + area.Max.X) / 2,
		Y: (area.Min.Y + area.Max.Y) / 2,
	}
	aspect := float64(area.Size().Y) / float64(area.Size().X)

	placed := make([]placedWord, 0, len(w.terms))
	for i, t := range w.terms {
		ratio := math.Sqrt(float64(t.Count) / top)
		f := plot.DefaultFont
		f.Variant = "Sans"
		f.Size = vg.Points(minWordSize + (maxWordSize-minWordSize)*ratio)
		sty := text.Style{
			Color:   w.palette[i%len(w.palette)],
			Font:    f,
			Handler: plot.DefaultTextHandler,
			XAlign:  draw.XCenter,
			YAlign:  draw.YCenter,
		}
		width, height := sty.Width(t.Word), sty.Height(t.Word)

		for step := 0; step < spiralLimit; step++ {
			theta := float64(step) * spiralStep
			r := spiralGrowth * theta
			at := vg.Point{
				X: center.X + vg.Length(r*math.Cos(theta)),
				Y: center.Y + vg.Length(r*math.Sin(theta)*aspect),
			}
			box := vg.Rectangle{
				Min: vg.Point{X: at.X - width/2, Y: at.Y - height/2},
				Max: vg.Point{X: at.X + width/2, Y: at.Y + height/2},
			}
			if !contains(area, box) || collides(box, placed) {
				continue
			}
			placed = append(placed, placedWord{word: t.Word, style: sty, at: at, box: box})
			break
		}
	}
	return placed
}

func contains(outer, inner vg.Rectangle) bool {
	return inner.Min.X >= outer.Min.X && inner.Min.Y >= outer.Min.Y &&
		inner.Max.X <= outer.Max.X && inner.Max.Y <= outer.Max.Y
}

func overlaps(a, b vg.Rectangle) bool {
	return a.Min.X < b.Max.X && b.Min.X < a.Max.X &&
		a.Min.Y < b.Max.Y && b.Min.Y < a.Max.Y
}

func collides(box vg.Rectangle, placed []placedWord) bool {
	for _, p := range placed {
		if overlaps(box, p.box) {
			return true
		}
	}
	return false
}
