package scenes

import (
	"strings"

	"codecraft-studio/types"
)

// Scene category identifiers.
const (
	EpicBattle       = "epic_battle"
	SacredTemple     = "sacred_temple"
	EmotionalCloseup = "emotional_closeup"
	CinematicJourney = "cinematic_journey"
	GrandVista       = "grand_vista"
	HeroicScene      = "heroic_scene"
	DarkRitual       = "dark_ritual"
	FantasyRealm     = "fantasy_realm"
)

// template carries the visual direction for one scene category.
type template struct {
	description string
	colors      []string
}

var sceneTemplates = map[string]template{
	EpicBattle: {
		description: "Epic battle scene with warriors, golden light, and triumphant atmosphere",
		colors:      []string{"#8B0000", "#FFD700", "#2F4F4F"},
	},
	SacredTemple: {
		description: "Sacred temple with golden light rays, ethereal atmosphere, divine presence",
		colors:      []string{"#DAA520", "#F5DEB3", "#8B4513"},
	},
	EmotionalCloseup: {
		description: "Emotional close-up with dramatic lighting, intimate atmosphere",
		colors:      []string{"#4682B4", "#FFE4B5", "#DDA0DD"},
	},
	CinematicJourney: {
		description: "Cinematic journey scene with movement, epic landscape, rising action",
		colors:      []string{"#4682B4", "#FFD700", "#228B22"},
	},
	GrandVista: {
		description: "Grand cinematic vista with epic scale, dramatic lighting, triumphant mood",
		colors:      []string{"#87CEEB", "#FFD700", "#2F4F4F"},
	},
	HeroicScene: {
		description: "Epic cinematic scene with dramatic lighting and heroic atmosphere",
		colors:      []string{"#FFD700", "#8B0000", "#4682B4"},
	},
	DarkRitual: {
		description: "Dark ritual scene with mysterious atmosphere",
		colors:      []string{"#000000", "#8B0000", "#4B0082"},
	},
	FantasyRealm: {
		description: "Fantasy realm with magical elements",
		colors:      []string{"#9370DB", "#20B2AA", "#98FB98"},
	},
}

// classification rules, evaluated in order; the first hit wins and a
// chorus with no keyword hit gets the grand vista treatment.
type rule struct {
	keywords []string
	category string
}

var lyricRules = []rule{
	{[]string{"battle", "fight", "war", "sword", "victory"}, EpicBattle},
	{[]string{"divine", "sacred", "eternal", "heaven", "glory"}, SacredTemple},
	{[]string{"heart", "love", "soul", "emotion"}, EmotionalCloseup},
	{[]string{"rise", "ascend", "journey", "path", "forward"}, CinematicJourney},
}

// Classify maps verse lyrics to a scene category. Pure function of the
// inputs; the same lyrics always plan the same scene.
func Classify(lyricText, verseType string) string {
	lower := strings.ToLower(lyricText)
	for _, r := range lyricRules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return r.category
			}
		}
	}
	if verseType == "chorus" {
		return GrandVista
	}
	return HeroicScene
}

// Describe returns the visual direction for a category, falling back to
// the heroic template for unknown names.
func Describe(category string) (string, []string) {
	t, ok := sceneTemplates[category]
	if !ok {
		t = sceneTemplates[HeroicScene]
	}
	return t.description, t.colors
}

// Plan turns a lyric document into an ordered scene list. Verses with
// unparseable timings fall back to consecutive 30-second slots.
func Plan(doc *types.LyricDocument) []types.Scene {
	out := make([]types.Scene, 0, len(doc.Verses))
	for i, v := range doc.Verses {
		start, end, err := types.ParseTiming(v.Timing)
		if err != nil || end <= start {
			start = float64(i) * 30
			end = start + 30
		}
		category := Classify(v.Lyrics, v.Type)
		desc, colors := Describe(category)
		out = append(out, types.Scene{
			Index:       i,
			Category:    category,
			Description: desc,
			Colors:      colors,
			VerseType:   v.Type,
			Lyrics:      v.Lyrics,
			StartSec:    start,
			EndSec:      end,
		})
	}
	return out
}
