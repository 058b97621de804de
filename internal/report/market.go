package report

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/IshaanNene/newsentiment/internal/sources"
	"github.com/IshaanNene/newsentiment/internal/types"
)

// ErrNoMarketData is returned when no article falls in a market category.
var ErrNoMarketData = errors.New("no market-related articles")

// MarketCategories are the categories the market report reads.
var MarketCategories = []string{"Business", "Technology", "World"}

// methodGap is the difference in mean sentiment between loading methods
// that gets called out.
const methodGap = 0.1

// SourceInfo describes sources that may appear in stored rows.
type SourceInfo interface {
	Region(name string) string
	MethodOf(name string) sources.Method
}

// MarketSource is one source's line in the market report.
type MarketSource struct {
	Name   string  `json:"name"`
	Method string  `json:"method"`
	Mean   float64 `json:"mean"`
	Count  int     `json:"count"`
}

// MarketReport is the market-oriented sentiment digest.
type MarketReport struct {
	Score          float64        `json:"score"`
	Classification string         `json:"classification"`
	Articles       int            `json:"articles"`
	Sources        []string       `json:"sources"`
	Methods        []Mean         `json:"methods"`
	BySource       []MarketSource `json:"by_source"`
	ByCategory     []Mean         `json:"by_category"`
	Interpretation []string       `json:"interpretation"`
}

// ClassifyMarket buckets a mean market score.
func ClassifyMarket(score float64) string {
	switch {
	case score >= 0.2:
		return "Very Positive"
	case score >= 0.05:
		return "Positive"
	case score >= -0.05:
		return "Neutral"
	case score >= -0.2:
		return "Negative"
	default:
		return "Very Negative"
	}
}

// BuildMarketReport summarizes the business, technology and world
// articles. info may be nil, in which case methods are reported unknown.
func BuildMarketReport(articles []*types.Article, info SourceInfo) (*MarketReport, error) {
	if len(articles) == 0 {
		return nil, ErrNoData
	}

	wanted := make(map[string]bool, len(MarketCategories))
	for _, c := range MarketCategories {
		wanted[strings.ToLower(c)] = true
	}

	var (
		market   []*types.Article
		scores   []float64
		order    []string
		bySource = make(map[string][]float64)
		byCat    = make(map[string][]float64)
		catOrder []string
		byMethod = make(map[string][]float64)
	)
	for _, a := range articles {
		if !wanted[strings.ToLower(a.Category)] {
			continue
		}
		market = append(market, a)
		scores = append(scores, a.SentimentScore)
		if _, ok := bySource[a.Source]; !ok {
			order = append(order, a.Source)
		}
		bySource[a.Source] = append(bySource[a.Source], a.SentimentScore)
		if _, ok := byCat[a.Category]; !ok {
			catOrder = append(catOrder, a.Category)
		}
		byCat[a.Category] = append(byCat[a.Category], a.SentimentScore)
		m := methodName(info, a.Source)
		byMethod[m] = append(byMethod[m], a.SentimentScore)
	}
	if len(market) == 0 {
		return nil, ErrNoMarketData
	}

	r := &MarketReport{
		Score:    stat.Mean(scores, nil),
		Articles: len(market),
		Sources:  order,
	}
	r.Classification = ClassifyMarket(r.Score)

	for _, m := range []string{string(sources.MethodBrowser), string(sources.MethodHTTP), "unknown"} {
		if vals := byMethod[m]; len(vals) > 0 {
			r.Methods = append(r.Methods, Mean{Name: m, Mean: stat.Mean(vals, nil), Count: len(vals)})
		}
	}
	for _, s := range order {
		vals := bySource[s]
		r.BySource = append(r.BySource, MarketSource{
			Name:   s,
			Method: methodName(info, s),
			Mean:   stat.Mean(vals, nil),
			Count:  len(vals),
		})
	}
	for _, c := range catOrder {
		vals := byCat[c]
		r.ByCategory = append(r.ByCategory, Mean{Name: c, Mean: stat.Mean(vals, nil), Count: len(vals)})
	}

	r.Interpretation = interpret(r)
	return r, nil
}

func interpret(r *MarketReport) []string {
	var parts []string
	switch {
	case r.Score >= BullishAbove:
		parts = append(parts, "Strong positive market sentiment detected.", "Consider bullish market positions.")
	case r.Score <= BearishBelow:
		parts = append(parts, "Concerning negative sentiment revealed.", "Consider defensive strategies.")
	default:
		parts = append(parts, "Neutral market sentiment indicated.", "Monitor closely for directional signals.")
	}

	var browser, plain *Mean
	for i := range r.Methods {
		switch r.Methods[i].Name {
		case string(sources.MethodBrowser):
			browser = &r.Methods[i]
		case string(sources.MethodHTTP):
			plain = &r.Methods[i]
		}
	}
	if browser != nil && plain != nil {
		if math.Abs(browser.Mean-plain.Mean) > methodGap {
			hi, lo := browser, plain
			if plain.Mean > browser.Mean {
				hi, lo = plain, browser
			}
			parts = append(parts, fmt.Sprintf("%s sources show more positive sentiment (%.3f vs %.3f).", methodLabel(hi.Name), hi.Mean, lo.Mean))
		} else {
			parts = append(parts, "Both loading methods show consistent sentiment readings.")
		}
	}
	return parts
}

// Render formats the market report as text.
func (r *MarketReport) Render() string {
	var b strings.Builder
	b.WriteString("\n💼 MARKET SENTIMENT INTELLIGENCE REPORT\n")
	b.WriteString(strings.Repeat("=", 50) + "\n")
	fmt.Fprintf(&b, "Overall Market Sentiment Score: %.3f\n", r.Score)
	fmt.Fprintf(&b, "Classification: %s\n", r.Classification)
	fmt.Fprintf(&b, "Articles Analyzed: %d\n", r.Articles)
	fmt.Fprintf(&b, "Sources: %s\n", strings.Join(r.Sources, ", "))

	b.WriteString("\n🔧 METHOD BREAKDOWN:\n")
	for _, m := range r.Methods {
		fmt.Fprintf(&b, "   %s: %.3f sentiment (%d articles)\n", methodLabel(m.Name), m.Mean, m.Count)
	}

	b.WriteString("\n📰 SOURCE BREAKDOWN:\n")
	for _, s := range r.BySource {
		fmt.Fprintf(&b, "   %s (%s): %.3f (%d articles)\n", strings.ToUpper(s.Name), methodLabel(s.Method), s.Mean, s.Count)
	}

	b.WriteString("\n📈 CATEGORY BREAKDOWN:\n")
	for _, c := range r.ByCategory {
		fmt.Fprintf(&b, "   %s: %.3f (%d articles)\n", titleCase(c.Name), c.Mean, c.Count)
	}

	b.WriteString("\n💡 INTERPRETATION:\n")
	for _, p := range r.Interpretation {
		fmt.Fprintf(&b, "   %s\n", p)
	}
	return b.String()
}

func methodName(info SourceInfo, source string) string {
	if info == nil {
		return "unknown"
	}
	if m := info.MethodOf(source); m != "" {
		return string(m)
	}
	return "unknown"
}

func methodLabel(m string) string {
	switch m {
	case string(sources.MethodBrowser):
		return "Browser"
	case string(sources.MethodHTTP):
		return "HTTP"
	default:
		return "Unknown"
	}
}
