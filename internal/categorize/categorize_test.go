package categorize

import "testing"

func TestDefaultCategories(t *testing.T) {
	c := Default()
	tests := []struct {
		text string
		want string
	}{
		{"", DefaultCategory},
		{"Nothing of note happened.", DefaultCategory},
		{"The central bank raised rates", "Business"},
		{"A startup shipped new software", "Technology"},
		{"Advances in artificial intelligence", "Technology"},
		{"Parliament passed the bill", "Politics"},
		{"Hospital waiting lists grow", "Health"},
		{"Diplomatic talks resume", "World"},
		{"The league title race", "Sports"},
	}
	for _, tt := range tests {
		if got := c.Categorize(tt.text); got != tt.want {
			t.Errorf("Categorize(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestWordStartMatching(t *testing.T) {
	c := Default()
	// "said" contains "ai", "warning" starts with "war"
	if got := c.Categorize("She said the warning was brief"); got != DefaultCategory {
		t.Errorf("expected substring matches to be ignored, got %q", got)
	}
}

func TestInflectedKeywords(t *testing.T) {
	c := Default()
	tests := []struct {
		text string
		want string
	}{
		{"Markets surged today on record profits and strong growth", "Business"},
		{"Stocks fall as banks report losses", "Business"},
		{"Companies cut hiring", "Business"},
		{"Trading halted after the open", "Business"},
		{"Elections loom across the region", "Politics"},
		{"Voters head to the polls", "Politics"},
		{"Hospitals strained by new viruses", "Health"},
		{"Doctors warn of a long winter", "Health"},
		{"Wars and conflicts reshape alliances", "World"},
		{"Players and teams prepare for the final", "Sports"},
		{"Startups chase artificial intelligence talent", "Technology"},
	}
	for _, tt := range tests {
		if got := c.Categorize(tt.text); got != tt.want {
			t.Errorf("Categorize(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestFirstMatchTieBreak(t *testing.T) {
	c := Default()
	// one Business hit, three Sports hits: declared order wins
	got := c.Categorize("Team player wins the league, lifting the company")
	if got != "Business" {
		t.Errorf("expected Business, got %q", got)
	}
}

func TestMostHits(t *testing.T) {
	c, err := New(DefaultCategories(), MostHits)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if got := c.Categorize("Team player wins the league, lifting the company"); got != "Sports" {
		t.Errorf("expected Sports, got %q", got)
	}
	// equal hits: earlier category wins
	if got := c.Categorize("The bank and the hospital"); got != "Business" {
		t.Errorf("expected Business on tie, got %q", got)
	}
	if got := c.Categorize(""); got != DefaultCategory {
		t.Errorf("expected default, got %q", got)
	}
}

func TestCaseInsensitive(t *testing.T) {
	if got := Default().Categorize("ELECTION NIGHT"); got != "Politics" {
		t.Errorf("expected Politics, got %q", got)
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	if _, err := New(DefaultCategories(), "random"); err == nil {
		t.Error("expected unknown strategy error")
	}
	if _, err := New([]Category{{Name: " "}}, FirstMatch); err == nil {
		t.Error("expected empty name error")
	}
}

func TestNames(t *testing.T) {
	names := Default().Names()
	if names[0] != "Business" || names[len(names)-1] != DefaultCategory {
		t.Errorf("unexpected names %v", names)
	}
}
