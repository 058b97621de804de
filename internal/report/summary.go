package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/IshaanNene/newsentiment/internal/types"
)

// Mood thresholds on the overall mean score.
const (
	BullishAbove = 0.1
	BearishBelow = -0.1
)

var labelEmoji = map[types.SentimentLabel]string{
	types.Positive: "😊",
	types.Negative: "😔",
	types.Neutral:  "😐",
}

// MarketMood classifies an overall score.
func MarketMood(score float64) string {
	switch {
	case score > BullishAbove:
		return "🚀 BULLISH"
	case score < BearishBelow:
		return "📉 BEARISH"
	default:
		return "⚖️ NEUTRAL"
	}
}

func moodEmoji(score float64) string {
	switch {
	case score > BullishAbove:
		return "😊"
	case score < BearishBelow:
		return "😔"
	default:
		return "😐"
	}
}

// SummaryReport renders the textual digest of a set of articles.
func SummaryReport(articles []*types.Article, days int) (string, error) {
	t, err := AnalyzeTrends(articles, days)
	if err != nil {
		return "", err
	}
	return RenderSummary(t, TopTerms(articles, 10)), nil
}

// RenderSummary formats precomputed trends.
func RenderSummary(t *Trends, terms []Term) string {
	var b strings.Builder

	b.WriteString("\n📰 NEWS SENTIMENT ANALYSIS REPORT\n")
	b.WriteString(strings.Repeat("=", 50) + "\n\n")

	b.WriteString("📊 OVERVIEW:\n")
	fmt.Fprintf(&b, "   Total Articles: %s\n", thousands(t.Total))
	fmt.Fprintf(&b, "   Date Range: %s to %s\n", t.Start.UTC().Format(dayLayout), t.End.UTC().Format(dayLayout))
	fmt.Fprintf(&b, "   Average Content Length: %.0f characters\n", t.AvgContentLength)

	b.WriteString("\n😊 SENTIMENT DISTRIBUTION:\n")
	for _, l := range types.Labels {
		n := t.Distribution[string(l)]
		if n == 0 {
			continue
		}
		fmt.Fprintf(&b, "   %s %s %s (%.1f%%)\n", labelEmoji[l], pad(titleCase(string(l))+":", 10), thousands(n), t.Percent(l))
	}

	b.WriteString("\n📰 ARTICLES BY SOURCE:\n")
	width := 0
	for _, c := range t.SourceCounts {
		width = max(width, runewidth.StringWidth(c.Name))
	}
	for _, c := range t.SourceCounts {
		fmt.Fprintf(&b, "   %s %6s\n", pad(strings.ToUpper(c.Name), width), thousands(c.Count))
	}

	b.WriteString("\n📰 TOP SOURCES BY SENTIMENT:\n")
	for _, m := range t.SourceSentiment {
		fmt.Fprintf(&b, "   %s %s %7.3f\n", moodEmoji(m.Mean), pad(strings.ToUpper(m.Name)+":", width+1), m.Mean)
	}

	b.WriteString("\n📈 CATEGORY INSIGHTS:\n")
	catWidth := 0
	for _, m := range t.CategorySentiment {
		catWidth = max(catWidth, runewidth.StringWidth(m.Name))
	}
	for _, m := range t.CategorySentiment {
		fmt.Fprintf(&b, "   %s %s %7.3f\n", moodEmoji(m.Mean), pad(titleCase(m.Name)+":", catWidth+1), m.Mean)
	}

	b.WriteString("\n🎯 MARKET SENTIMENT ANALYSIS:\n")
	fmt.Fprintf(&b, "   Overall Score: %.3f\n", t.OverallSentiment)
	fmt.Fprintf(&b, "   Market Classification: %s\n", MarketMood(t.OverallSentiment))

	b.WriteString("\n💡 INSIGHTS:\n")
	if n := len(t.SourceSentiment); n > 0 {
		top, bottom := t.SourceSentiment[0], t.SourceSentiment[n-1]
		fmt.Fprintf(&b, "   Most Positive Source: %s (%.3f)\n", strings.ToUpper(top.Name), top.Mean)
		fmt.Fprintf(&b, "   Most Negative Source: %s (%.3f)\n", strings.ToUpper(bottom.Name), bottom.Mean)
	}
	if c := t.MostCovered(); c.Count > 0 {
		fmt.Fprintf(&b, "   Most Covered Category: %s (%d articles)\n", titleCase(c.Name), c.Count)
	}

	if len(terms) > 0 {
		b.WriteString("\n🔑 TOP TERMS:\n")
		words := make([]string, len(terms))
		for i, term := range terms {
			words[i] = fmt.Sprintf("%s (%d)", term.Word, term.Count)
		}
		fmt.Fprintf(&b, "   %s\n", strings.Join(words, ", "))
	}

	return b.String()
}

// pad right-fills s to a display width, counting wide runes correctly.
func pad(s string, width int) string {
	return runewidth.FillRight(s, width)
}

func thousands(n int) string {
	s := strconv.Itoa(n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
