package parser

import (
	"strings"
	"testing"
)

const testHTML = `<!DOCTYPE html>
<html>
<head>
    <title>Test Page</title>
    <meta property="og:title" content="OG Headline">
    <meta name="author" content="Meta Author">
    <script type="application/ld+json">
    {"@context":"https://schema.org","@type":"NewsArticle","headline":"LD Headline",
     "datePublished":"2024-03-05T10:30:00Z","author":[{"@type":"Person","name":"Jane Roe"}]}
    </script>
</head>
<body>
    <h1 class="headline">   Markets   rally on earnings </h1>
    <div class="byline"><span class="author">Alex Smith</span></div>
    <time datetime="2024-03-05T09:00:00Z">5 March 2024</time>
    <article>
        <p>First paragraph of the story.</p>
        <p>ok</p>
        <p>Second paragraph of the story.</p>
    </article>
    <div class="cookie-banner">Accept cookies</div>
</body>
</html>`

func mustPage(t *testing.T, markup string) *Page {
	t.Helper()
	p, err := ParseHTML(markup)
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return p
}

func TestCompileKinds(t *testing.T) {
	css, err := Compile(`h1[data-testid="headline"]`)
	if err != nil {
		t.Fatalf("compile css: %v", err)
	}
	if css.Kind != CSS {
		t.Errorf("expected css kind, got %v", css.Kind)
	}

	xp, err := Compile("xpath://h1[@class='headline']")
	if err != nil {
		t.Fatalf("compile xpath: %v", err)
	}
	if xp.Kind != XPath || xp.Expr != "//h1[@class='headline']" {
		t.Errorf("unexpected xpath selector: %+v", xp)
	}
	if xp.String() != "xpath://h1[@class='headline']" {
		t.Errorf("String() = %q", xp.String())
	}
}

func TestCompileRejectsInvalid(t *testing.T) {
	for _, raw := range []string{"", "h1[", "xpath://h1[@", "xpath:"} {
		if _, err := Compile(raw); err == nil {
			t.Errorf("expected error compiling %q", raw)
		}
	}
}

func TestFirstMatchOrder(t *testing.T) {
	p := mustPage(t, testHTML)

	candidates := Each([]Selector{
		MustCompile(`h1[data-testid="headline"]`),
		MustCompile("h1.headline"),
		MustCompile("title"),
	}, FirstText)

	got, ok := FirstMatch(p, candidates)
	if !ok {
		t.Fatal("expected a match")
	}
	if got != "Markets rally on earnings" {
		t.Errorf("expected collapsed headline, got %q", got)
	}
}

func TestFirstMatchNoMatch(t *testing.T) {
	p := mustPage(t, testHTML)
	_, ok := FirstMatch(p, Each([]Selector{MustCompile(".missing"), MustCompile("xpath://h6")}, FirstText))
	if ok {
		t.Error("expected no match")
	}
	if _, ok := FirstMatch(p, nil); ok {
		t.Error("expected no match for empty candidate list")
	}
}

func TestJoinedTextMinChars(t *testing.T) {
	p := mustPage(t, testHTML)

	body := JoinedText(MustCompile("article p"), "\n\n", 5)(p)
	parts := strings.Split(body, "\n\n")
	if len(parts) != 2 {
		t.Fatalf("expected 2 paragraphs, got %d: %q", len(parts), body)
	}
	if parts[1] != "Second paragraph of the story." {
		t.Errorf("unexpected second paragraph %q", parts[1])
	}
}

func TestXPathElements(t *testing.T) {
	p := mustPage(t, testHTML)
	got := FirstText(MustCompile("xpath://span[@class='author']"))(p)
	if got != "Alex Smith" {
		t.Errorf("expected Alex Smith, got %q", got)
	}
}

func TestAttrOrText(t *testing.T) {
	p := mustPage(t, testHTML)
	if got := AttrOrText(MustCompile("time"), "datetime", "content")(p); got != "2024-03-05T09:00:00Z" {
		t.Errorf("expected datetime attribute, got %q", got)
	}
	if got := AttrOrText(MustCompile(".author"), "datetime")(p); got != "Alex Smith" {
		t.Errorf("expected text fallback, got %q", got)
	}
}

func TestRemove(t *testing.T) {
	p := mustPage(t, testHTML)
	p.Remove([]Selector{MustCompile(".cookie-banner")})
	if got := FirstText(MustCompile(".cookie-banner"))(p); got != "" {
		t.Errorf("expected overlay removed, got %q", got)
	}
}

func TestExtractMetadata(t *testing.T) {
	md := ExtractMetadata(mustPage(t, testHTML))
	if md.Headline != "LD Headline" {
		t.Errorf("headline = %q", md.Headline)
	}
	if md.DatePublished != "2024-03-05T10:30:00Z" {
		t.Errorf("date = %q", md.DatePublished)
	}
	if md.Author != "Jane Roe" {
		t.Errorf("author = %q", md.Author)
	}
}

func TestExtractMetadataMetaFallback(t *testing.T) {
	md := ExtractMetadata(mustPage(t, `<html><head>
		<meta property="article:published_time" content="2024-01-02">
		<meta name="author" content="Desk">
		<meta property="og:title" content="From OG"></head><body></body></html>`))
	if md.DatePublished != "2024-01-02" || md.Author != "Desk" || md.Headline != "From OG" {
		t.Errorf("unexpected metadata %+v", md)
	}
}

func TestParseDate(t *testing.T) {
	cases := map[string]bool{
		"2024-03-05T09:00:00Z":          true,
		"2024-03-05":                    true,
		"March 5, 2024":                 true,
		"5 March 2024":                  true,
		"Tue, 05 Mar 2024 09:00:00 GMT": true,
		"yesterday":                     false,
		"":                              false,
	}
	for in, want := range cases {
		got := ParseDate(in)
		if (got != nil) != want {
			t.Errorf("ParseDate(%q) = %v, want parsed=%v", in, got, want)
		}
	}

	d := ParseDate("2024-03-05T09:00:00+02:00")
	if d == nil || d.Hour() != 7 {
		t.Errorf("expected UTC normalization, got %v", d)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("héllo world", 5); got != "héllo" {
		t.Errorf("Truncate = %q", got)
	}
	if got := Truncate("short", 100); got != "short" {
		t.Errorf("Truncate = %q", got)
	}
}

func TestHref(t *testing.T) {
	p := mustPage(t, `<ul><li class="card"><a href="/news/one">One</a></li><a class="direct" href="/news/two">Two</a></ul>`)
	cards := p.Elements(MustCompile("li.card"))
	if len(cards) != 1 || Href(cards[0]) != "/news/one" {
		t.Errorf("expected descendant href, got %v", cards)
	}
	direct := p.Elements(MustCompile("a.direct"))
	if len(direct) != 1 || Href(direct[0]) != "/news/two" {
		t.Errorf("expected direct href")
	}
}
