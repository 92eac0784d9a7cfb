package styles

import (
	"strings"

	"github.com/sirupsen/logrus"

	"codecraft-studio/types"
)

// Voice style identifiers.
const (
	VoiceHeroicMale = "heroic_male"
	VoiceSoprano    = "soprano"
	VoiceChoir      = "choir"
	VoiceWhisper    = "whisper"
)

// Music style identifiers.
const (
	MusicEpic      = "epic"
	MusicPop       = "pop"
	MusicDark      = "dark"
	MusicGregorian = "gregorian"
	MusicFantasy   = "fantasy"
	MusicGladiator = "gladiator"
	MusicEmotional = "emotional"
)

// VoiceStyles describes every selectable voice style.
var VoiceStyles = map[string]string{
	VoiceHeroicMale: "Deep, powerful male voice with heroic resonance",
	VoiceSoprano:    "High, clear female soprano with ethereal quality",
	VoiceChoir:      "Full choir harmonies with Latin pronunciation",
	VoiceWhisper:    "Intimate whisper voice for dramatic effect",
}

// MusicStyles describes every selectable music style.
var MusicStyles = map[string]string{
	MusicEpic:      "Epic orchestral with full symphony and choir",
	MusicPop:       "Modern pop arrangement with orchestral elements",
	MusicDark:      "Dark, brooding orchestral with minor keys",
	MusicGregorian: "Medieval Gregorian chant with sacred atmosphere",
	MusicFantasy:   "Fantasy orchestral with magical elements",
	MusicGladiator: "Gladiator-style epic with battle drums",
	MusicEmotional: "Emotional ballad with strings and piano",
}

// rule is one (keywords, result) pair. Rules are evaluated in slice
// order; the first rule with any keyword present wins.
type rule struct {
	keywords []string
	style    string
}

var voiceRules = []rule{
	{[]string{"battle", "war", "champion"}, VoiceHeroicMale},
	{[]string{"sacred", "divine", "eternal"}, VoiceChoir},
	{[]string{"emotional", "love", "heart"}, VoiceSoprano},
	{[]string{"mystery", "secret"}, VoiceWhisper},
}

var musicRules = []rule{
	{[]string{"gladiator", "arena"}, MusicGladiator},
	{[]string{"sacred", "prayer"}, MusicGregorian},
	{[]string{"dark", "shadow"}, MusicDark},
	{[]string{"magic", "fantasy"}, MusicFantasy},
	{[]string{"emotional"}, MusicEmotional},
	{[]string{"modern", "pop"}, MusicPop},
}

// LearningLookup reads past successful theme/style combinations.
type LearningLookup interface {
	LookupLearning(theme string) (types.LearningRecord, bool, error)
}

// Selector picks voice and music styles for a theme. Pure keyword
// matching aside from one read of the learning table.
type Selector struct {
	learning LearningLookup
	log      *logrus.Logger
}

// New creates a Selector. learning may be nil to skip learned matches.
func New(learning LearningLookup, log *logrus.Logger) *Selector {
	return &Selector{learning: learning, log: log}
}

// Select returns (voiceStyle, musicStyle) for the theme and lyric text.
func (s *Selector) Select(theme, lyricText string) (string, string) {
	return s.SelectVoice(theme, lyricText), s.SelectMusic(theme, lyricText)
}

// SelectVoice applies the ordered voice keyword table.
func (s *Selector) SelectVoice(theme, lyricText string) string {
	themeLower := strings.ToLower(theme)
	for _, r := range voiceRules {
		for _, kw := range r.keywords {
			if strings.Contains(themeLower, kw) {
				return r.style
			}
		}
	}
	return VoiceHeroicMale
}

// SelectMusic consults the learning table first: the most recently
// recorded combination whose theme is a substring of the request theme
// wins. Otherwise the ordered keyword table applies.
func (s *Selector) SelectMusic(theme, lyricText string) string {
	if s.learning != nil {
		rec, ok, err := s.learning.LookupLearning(theme)
		if err != nil {
			s.log.Warnf("[styles] learning lookup failed: %v", err)
		} else if ok {
			if _, known := MusicStyles[rec.MusicStyle]; known {
				s.log.Infof("[styles] learned match %q -> %s", rec.Theme, rec.MusicStyle)
				return rec.MusicStyle
			}
		}
	}

	themeLower := strings.ToLower(theme)
	for _, r := range musicRules {
		for _, kw := range r.keywords {
			if strings.Contains(themeLower, kw) {
				return r.style
			}
		}
	}
	return MusicEpic
}
