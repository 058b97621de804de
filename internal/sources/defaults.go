package sources

import "slices"

// Default returns the built-in registry of the five supported outlets.
func Default() *Registry {
	r, err := New(Builtin()...)
	if err != nil {
		panic("sources: built-in registry is invalid: " + err.Error())
	}
	return r
}

// DefaultInvalidPatterns lists URL substrings that never point at an
// article page.
func DefaultInvalidPatterns() []string {
	return []string{
		"/video/", "/live/", "/weather/", "/sport/", "/iplayer/", "/sounds/",
		"/programmes/", "/schedule/", "/contact/", "/about/", "/help/",
		"/terms/", "/privacy/", "/cookies/", "/accessibility/", "/newsletter",
		"/register", "/sign-in", "/login", "/profile", "/account", "/subscribe",
		"/gallery/", "/photos/", "/pictures/", "/images/", "/podcast/",
		"/radio/", "/tv/", "/media/", "/multimedia/", "/interactive/",
		"share", "facebook.com", "twitter.com", "instagram.com", "youtube.com",
		"/tags/", "/topics/", "/authors/", "/search", "/archive/",
		"/rss", "/feed", "/sitemap", "mailto:", "tel:", "whatsapp:",
		"/corrections/", "/obituaries/", "/crossword/", "/sudoku/",
		"/horoscope/", "/games/", "/quiz/", "/competition/",
		".pdf", ".jpg", ".png", ".gif", ".mp4", ".mp3",
		"/live-reporting/", "/coronavirus/", "/covid",
		"/election/", "/olympics/", "/world-cup/", "/champions-league/",
	}
}

var defaultOverlays = []string{
	`[data-testid="TrustArcOverlay"]`,
	".trust-arc-overlay",
	".cookie-banner",
	".overlay",
	".modal",
	".popup",
}

// Builtin returns fresh copies of the built-in source definitions.
func Builtin() []Source {
	return []Source{
		{
			Name:    "bbc",
			Method:  MethodHTTP,
			Region:  "UK/Europe",
			BaseURL: "https://www.bbc.com",
			ListingURLs: []string{
				"https://www.bbc.com/news",
				"https://www.bbc.com/news/world",
				"https://www.bbc.com/news/business",
				"https://www.bbc.com/news/technology",
				"https://www.bbc.com/news/politics",
				"https://www.bbc.com/news/health",
			},
			FeedURLs:   []string{"https://feeds.bbci.co.uk/news/rss.xml"},
			StripQuery: true,
			Selectors: Selectors{
				Links: []string{
					`a[data-testid="internal-link"]`,
					`a[href*="/news/"]`,
					"h3 a",
					".media__link",
					".gs-c-promo-heading a",
					".gel-layout a",
					".nw-c-promo a",
					".gs-c-promo a",
					".media-list__item a",
					`[data-testid="card-headline"] a`,
					".block-link a",
					".promo a",
					".story-promo a",
				},
				Title: []string{
					`h1[data-testid="headline"]`,
					"h1",
					".story-body__h1",
					".headline",
					".article-headline__text",
				},
				Body: []string{
					`[data-component="text-block"] p`,
					".story-body__inner p",
					".gel-body-copy",
					"article p",
					".story-body p",
					".rich-text p",
				},
				Date: []string{
					"time[datetime]",
					`[data-testid="timestamp"]`,
					".date",
					"time",
				},
				Author: []string{
					`[data-testid="byline-name"]`,
					".byline__name",
					`[rel="author"]`,
					".story-body__byline",
					".author",
				},
			},
		},
		{
			Name:    "guardian",
			Method:  MethodHTTP,
			Region:  "UK/Europe",
			BaseURL: "https://www.theguardian.com",
			ListingURLs: []string{
				"https://www.theguardian.com/world",
				"https://www.theguardian.com/business",
				"https://www.theguardian.com/technology",
				"https://www.theguardian.com/international",
				"https://www.theguardian.com/uk-news",
				"https://www.theguardian.com/politics",
			},
			FeedURLs:   []string{"https://www.theguardian.com/world/rss"},
			StripQuery: true,
			Selectors: Selectors{
				Links: []string{
					`a[data-link-name="article"]`,
					`a[href*="/2025/"]`,
					`a[href*="/2024/"]`,
					".fc-item__link",
					".u-faux-block-link__overlay",
					"h3 a",
					".headline a",
					".fc-item a",
					".content__headline a",
					"article a",
					`a[href*="/commentisfree/"]`,
				},
				Title: []string{
					`h1[data-gu-name="headline"]`,
					"h1",
					".content__headline",
					".article-header h1",
				},
				Body: []string{
					".content__article-body p",
					".article-body p",
					"#maincontent p",
					".content__main p",
					"article p",
				},
				Date: []string{
					"time[datetime]",
					".content__dateline time",
					".timestamp",
					"time",
				},
				Author: []string{
					`[data-component="meta-byline"] a`,
					".byline a",
					".content__meta-container .contributor-full",
					".author-name",
				},
			},
		},
		{
			Name:    "ap",
			Method:  MethodBrowser,
			Region:  "International",
			BaseURL: "https://apnews.com",
			ListingURLs: []string{
				"https://apnews.com",
				"https://apnews.com/hub/world-news",
				"https://apnews.com/hub/business",
				"https://apnews.com/hub/technology",
				"https://apnews.com/world-news",
			},
			StripQuery: true,
			Scroll:     true,
			Selectors: Selectors{
				Links: []string{
					`a[href*="/article/"]`,
					`a[data-key="card-headline"]`,
					".Component-headline a",
					"h3 a",
					".PagePromo-title a",
					".CardHeadline a",
					"article a",
				},
				Title: []string{
					`h1[data-key="card-headline"]`,
					"h1",
					".Page-headline",
					".Article-headline",
					".PagePromo-title",
				},
				Body: []string{
					".RichTextStoryBody p",
					".Article p",
					`div[data-key="article"] p`,
					".main p",
					"article p",
					".story-body p",
				},
				Date: []string{
					"bsp-timestamp",
					`time[data-source="ap"]`,
					".Timestamp",
					"time",
					`[data-key="timestamp"]`,
				},
				Author: []string{
					".Component-bylines",
					`[data-key="byline"]`,
					".Byline",
					".byline",
				},
			},
		},
		{
			Name:    "cnn",
			Method:  MethodBrowser,
			Region:  "North America",
			BaseURL: "https://edition.cnn.com",
			ListingURLs: []string{
				"https://www.cnn.com/world",
				"https://www.cnn.com/business",
				"https://www.cnn.com/tech",
				"https://www.cnn.com",
				"https://edition.cnn.com",
				"https://www.cnn.com/politics",
			},
			StripQuery: true,
			Scroll:     true,
			Selectors: Selectors{
				Links: []string{
					`a[href*="/2025/"]`,
					`a[href*="/2024/"]`,
					`a[data-link-type="article"]`,
					".container__link",
					"h3 a",
					".cd__headline-text a",
					".card a",
					".headline a",
					"article a",
					`a[href*="/index.html"]`,
				},
				Title: []string{
					`h1[data-editable="headlineText"]`,
					"h1",
					".headline__text",
					".pg-headline",
					`[data-zn-id="headline"]`,
					".Article__title",
				},
				Body: []string{
					".zn-body__paragraph",
					`p[data-zn-id="paragraph"]`,
					".l-container p",
					".pg-body p",
					".BasicArticle__main p",
					".Article__content p",
					`div[data-zn-id="paragraph"]`,
					".wysiwyg p",
					"article p",
					".body-text p",
				},
				Date: []string{
					".timestamp",
					"time",
					".metadata__date",
					`[data-zn-id="timestamp"]`,
				},
				Author: []string{
					".byline__names",
					".metadata__byline",
					".BasicArticle__byline",
					`[data-zn-id="byline"]`,
				},
			},
		},
		{
			Name:    "reuters",
			Method:  MethodBrowser,
			Region:  "International",
			BaseURL: "https://www.reuters.com",
			ListingURLs: []string{
				"https://www.reuters.com/world/",
				"https://www.reuters.com/business/",
				"https://www.reuters.com/technology/",
				"https://www.reuters.com/markets/",
				"https://www.reuters.com/legal/",
				"https://www.reuters.com/breakingviews/",
				"https://www.reuters.com/business/finance/",
				"https://www.reuters.com/business/energy/",
				"https://www.reuters.com/world/americas/",
				"https://www.reuters.com/world/europe/",
				"https://www.reuters.com/world/asia-pacific/",
				"https://www.reuters.com/world/middle-east/",
				"https://www.reuters.com/world/africa/",
				"https://www.reuters.com",
			},
			StripQuery: true,
			Scroll:     true,
			Overlays:   slices.Clone(defaultOverlays),
			Selectors: Selectors{
				Links: []string{
					`a[data-testid="Heading"]`,
					`a[data-testid="Body"]`,
					`a[href*="/world/"]`,
					`a[href*="/business/"]`,
					`a[href*="/technology/"]`,
					`a[href*="/markets/"]`,
					`a[href*="/legal/"]`,
					`a[href*="/breakingviews/"]`,
					"h3 a",
					"h2 a",
					".story-title a",
					".media-story-card__headline a",
					".story-card a",
					"article a",
					`[data-testid="Card"] a`,
				},
				Title: []string{
					`h1[data-testid="Heading"]`,
					`h1[data-testid="ArticleHeader:headline"]`,
					"h1",
					".ArticleHeader_headline",
					".headline",
					"header h1",
					`[data-testid*="headline"]`,
				},
				Body: []string{
					`p[data-testid*="paragraph"]`,
					`[data-testid*="paragraph-"]`,
					".ArticleBody_container p",
					`[data-testid="ArticleBody"] p`,
					"article p",
					".article-content p",
					".story-body p",
				},
				Date: []string{
					"time[datetime]",
					`[data-testid="ArticleHeader:dateTime"]`,
					".ArticleHeader_date",
					".timestamp",
					".date",
					"time",
				},
				Author: []string{
					`[data-testid="AuthorByline"]`,
					".ArticleHeader_author",
					".byline",
					".author",
					`[data-testid*="author"]`,
				},
			},
		},
	}
}
