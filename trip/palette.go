package trip

// Palette is a token from the fixed color-palette set referenced by the
// rendered document's stylesheet.
type Palette string

const (
	PaletteSunset  Palette = "sunset"
	PaletteOcean   Palette = "ocean"
	PaletteForest  Palette = "forest"
	PaletteBlossom Palette = "blossom"
	PaletteDesert  Palette = "desert"
	PaletteInk     Palette = "ink"
)

// AllPalettes lists every palette token in a stable order.
var AllPalettes = []Palette{
	PaletteSunset, PaletteOcean, PaletteForest,
	PaletteBlossom, PaletteDesert, PaletteInk,
}

// IsValid checks if a palette string is a known token.
func (p Palette) IsValid() bool {
	switch p {
	case PaletteSunset, PaletteOcean, PaletteForest, PaletteBlossom, PaletteDesert, PaletteInk:
		return true
	}
	return false
}

// Colors returns the primary/accent/background hex triple for a token.
func (p Palette) Colors() (primary, accent, background string) {
	switch p {
	case PaletteSunset:
		return "#e76f51", "#f4a261", "#fff8f0"
	case PaletteOcean:
		return "#1d6fa5", "#5bc0de", "#f0f8ff"
	case PaletteForest:
		return "#2d6a4f", "#95d5b2", "#f3faf5"
	case PaletteBlossom:
		return "#c9426e", "#f2a7c3", "#fff5f9"
	case PaletteDesert:
		return "#b5651d", "#e0a458", "#fdf6ec"
	case PaletteInk:
		return "#22223b", "#4a4e69", "#f8f7fc"
	}
	return "#1d6fa5", "#5bc0de", "#f0f8ff"
}

// FontCatalog is the fixed set of heading/body pairings the visual
// identity stage may choose from.
var FontCatalog = map[string]FontPairing{
	"classic":   {Heading: "Playfair Display", Body: "Source Sans 3"},
	"modern":    {Heading: "Montserrat", Body: "Open Sans"},
	"editorial": {Heading: "Libre Baskerville", Body: "Lato"},
	"playful":   {Heading: "Quicksand", Body: "Nunito"},
}

// DefaultFontKey is used when the identity stage names an unknown pairing.
const DefaultFontKey = "classic"

// LookupFont resolves a catalog key to its pairing, falling back to the
// default pairing for unknown keys.
func LookupFont(key string) FontPairing {
	if f, ok := FontCatalog[key]; ok {
		return f
	}
	return FontCatalog[DefaultFontKey]
}
