package trip

// SceneCategory is one of the fixed travel-scene archetypes used to bias
// tone and styling. The switches below are exhaustive over every category
// so a missing template or keyword list is a compile-visible gap, not a
// silent runtime default.
type SceneCategory string

const (
	SceneRomantic   SceneCategory = "romantic"
	SceneFamily     SceneCategory = "family"
	SceneAdventure  SceneCategory = "adventure"
	SceneFoodie     SceneCategory = "foodie"
	SceneCulture    SceneCategory = "culture"
	SceneNature     SceneCategory = "nature"
	SceneUrban      SceneCategory = "urban"
	SceneRelaxation SceneCategory = "relaxation"
)

// DefaultScene is returned by the instant classifier when no keyword hits.
const DefaultScene = SceneRelaxation

// AllScenes lists every category in a stable order.
var AllScenes = []SceneCategory{
	SceneRomantic, SceneFamily, SceneAdventure, SceneFoodie,
	SceneCulture, SceneNature, SceneUrban, SceneRelaxation,
}

// IsValid checks if a category string is a known scene category.
func (c SceneCategory) IsValid() bool {
	switch c {
	case SceneRomantic, SceneFamily, SceneAdventure, SceneFoodie,
		SceneCulture, SceneNature, SceneUrban, SceneRelaxation:
		return true
	}
	return false
}

// String returns the string representation of the category.
func (c SceneCategory) String() string {
	return string(c)
}

// ParseScene converts a string to a SceneCategory, returning DefaultScene
// for unknown values.
func ParseScene(s string) SceneCategory {
	c := SceneCategory(s)
	if c.IsValid() {
		return c
	}
	return DefaultScene
}

// Keywords returns the bilingual keyword list matched by the instant
// classifier tier.
func (c SceneCategory) Keywords() []string {
	switch c {
	case SceneRomantic:
		return []string{"romantic", "honeymoon", "anniversary", "couple", "proposal", "浪漫", "蜜月", "情侣", "求婚"}
	case SceneFamily:
		return []string{"family", "kids", "children", "parents", "toddler", "亲子", "家庭", "孩子", "带娃"}
	case SceneAdventure:
		return []string{"adventure", "hiking", "trek", "climbing", "diving", "surfing", "探险", "徒步", "登山", "潜水"}
	case SceneFoodie:
		return []string{"food", "foodie", "cuisine", "restaurant", "street food", "michelin", "美食", "吃", "餐厅", "小吃"}
	case SceneCulture:
		return []string{"culture", "museum", "history", "temple", "heritage", "art", "文化", "博物馆", "历史", "古迹"}
	case SceneNature:
		return []string{"nature", "mountain", "lake", "forest", "wildlife", "national park", "自然", "山", "湖", "森林"}
	case SceneUrban:
		return []string{"city", "shopping", "nightlife", "skyline", "cafe", "都市", "城市", "购物", "夜生活"}
	case SceneRelaxation:
		return []string{"relax", "spa", "beach", "resort", "slow", "unwind", "放松", "度假", "海滩", "温泉"}
	}
	return nil
}

// FallbackSummary is the deterministic one-line summary used when the LLM
// confirmation tier is unavailable.
func (c SceneCategory) FallbackSummary() string {
	switch c {
	case SceneRomantic:
		return "A romantic getaway with intimate settings and memorable evenings."
	case SceneFamily:
		return "A family trip balancing kid-friendly activities with downtime."
	case SceneAdventure:
		return "An active journey built around outdoor challenges and exploration."
	case SceneFoodie:
		return "A trip organized around local cuisine, markets, and signature dishes."
	case SceneCulture:
		return "A cultural itinerary through museums, landmarks, and local history."
	case SceneNature:
		return "A nature-focused escape into landscapes, trails, and open air."
	case SceneUrban:
		return "A city break covering neighborhoods, shopping, and nightlife."
	case SceneRelaxation:
		return "An unhurried trip with space to rest, wander, and recharge."
	}
	return ""
}

// FallbackHighlights are the fixed highlight strings for the deterministic
// fallback SceneAnalysis.
func (c SceneCategory) FallbackHighlights() []string {
	switch c {
	case SceneRomantic:
		return []string{"Sunset viewpoints", "Candlelit dinners", "Quiet strolls for two"}
	case SceneFamily:
		return []string{"Kid-approved stops", "Easy pacing", "Something for every age"}
	case SceneAdventure:
		return []string{"Trail time", "Adrenaline moments", "Off-the-path finds"}
	case SceneFoodie:
		return []string{"Market mornings", "Signature local dishes", "Hidden eateries"}
	case SceneCulture:
		return []string{"Landmark visits", "Local stories", "Museum highlights"}
	case SceneNature:
		return []string{"Scenic lookouts", "Fresh-air mornings", "Wildlife encounters"}
	case SceneUrban:
		return []string{"Neighborhood walks", "Skyline views", "Late-night energy"}
	case SceneRelaxation:
		return []string{"Slow mornings", "Spa and downtime", "No-rush sightseeing"}
	}
	return nil
}

// DefaultPalette maps the category to its default palette token, used when
// the visual identity stage returns an unknown token.
func (c SceneCategory) DefaultPalette() Palette {
	switch c {
	case SceneRomantic:
		return PaletteBlossom
	case SceneFamily:
		return PaletteSunset
	case SceneAdventure:
		return PaletteDesert
	case SceneFoodie:
		return PaletteSunset
	case SceneCulture:
		return PaletteInk
	case SceneNature:
		return PaletteForest
	case SceneUrban:
		return PaletteInk
	case SceneRelaxation:
		return PaletteOcean
	}
	return PaletteOcean
}

// FallbackAnalysis builds the deterministic SceneAnalysis substituted when
// the confirmation tier fails. No randomness: same category, same output.
func (c SceneCategory) FallbackAnalysis() SceneAnalysis {
	return SceneAnalysis{
		Category:   c,
		Confidence: 0.5,
		Summary:    c.FallbackSummary(),
		Highlights: c.FallbackHighlights(),
		Keywords:   c.Keywords()[:3],
	}
}
