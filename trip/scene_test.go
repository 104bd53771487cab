package trip

import "testing"

func TestSceneCategory_Exhaustive(t *testing.T) {
	// Every category must carry keywords, a summary, highlights, and a
	// valid palette; a gap means a new category missed a switch arm.
	for _, c := range AllScenes {
		t.Run(c.String(), func(t *testing.T) {
			if len(c.Keywords()) == 0 {
				t.Error("no keywords")
			}
			if c.FallbackSummary() == "" {
				t.Error("no fallback summary")
			}
			if len(c.FallbackHighlights()) == 0 {
				t.Error("no fallback highlights")
			}
			if !c.DefaultPalette().IsValid() {
				t.Errorf("invalid default palette %q", c.DefaultPalette())
			}
		})
	}
}

func TestParseScene(t *testing.T) {
	tests := []struct {
		in   string
		want SceneCategory
	}{
		{"foodie", SceneFoodie},
		{"romantic", SceneRomantic},
		{"", DefaultScene},
		{"gibberish", DefaultScene},
	}
	for _, tt := range tests {
		if got := ParseScene(tt.in); got != tt.want {
			t.Errorf("ParseScene(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFallbackAnalysis_Deterministic(t *testing.T) {
	a := SceneFoodie.FallbackAnalysis()
	b := SceneFoodie.FallbackAnalysis()

	if a.Category != b.Category || a.Confidence != b.Confidence || a.Summary != b.Summary {
		t.Errorf("fallback analysis not deterministic: %+v vs %+v", a, b)
	}
	if a.Confidence != 0.5 {
		t.Errorf("Confidence = %v, want 0.5", a.Confidence)
	}
	if len(a.Keywords) != 3 {
		t.Errorf("Keywords = %v, want 3 entries", a.Keywords)
	}
}

func TestLookupFont(t *testing.T) {
	if got := LookupFont("modern"); got.Heading != "Montserrat" {
		t.Errorf("LookupFont(modern) = %+v", got)
	}
	def := FontCatalog[DefaultFontKey]
	if got := LookupFont("no-such-pairing"); got != def {
		t.Errorf("LookupFont(unknown) = %+v, want default %+v", got, def)
	}
}

func TestPaletteColors(t *testing.T) {
	for _, p := range AllPalettes {
		primary, accent, background := p.Colors()
		if primary == "" || accent == "" || background == "" {
			t.Errorf("palette %q missing a color", p)
		}
	}
}

func TestPlaceResolved(t *testing.T) {
	if (Place{Name: "Somewhere"}).Resolved() {
		t.Error("name-only place should not be resolved")
	}
	if !(Place{Name: "Somewhere", Lat: 38.7, Lng: -9.1}).Resolved() {
		t.Error("place with coordinates should be resolved")
	}
}
