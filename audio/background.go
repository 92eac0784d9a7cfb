package audio

import (
	"math"

	"codecraft-studio/styles"
)

// normalizationCeiling is the peak amplitude every generated background
// track is scaled to before quantization.
const normalizationCeiling = 0.70

// component is one sine layer of a background recipe: a frequency ratio
// against the base note, an amplitude, and an optional rhythmic pulse
// (an even power of a slow sine used as a percussive stand-in).
type component struct {
	ratio     float64
	amplitude float64
	pulseHz   float64
	pulsePow  int
}

// recipe is the arrangement for one music style.
type recipe struct {
	baseFreq   float64 // musical key of the style
	components []component
}

// backgroundRecipes maps each music style to its key and layers.
var backgroundRecipes = map[string]recipe{
	styles.MusicEpic: {baseFreq: 130.81, components: []component{ // C3
		{ratio: 1, amplitude: 0.3},
		{ratio: 1.5, amplitude: 0.2},               // perfect fifth
		{amplitude: 0.1, pulseHz: 2, pulsePow: 8},  // rhythmic element
	}},
	styles.MusicGladiator: {baseFreq: 146.83, components: []component{ // D3
		{ratio: 1, amplitude: 0.3},
		{ratio: 1.5, amplitude: 0.15},
		{amplitude: 0.2, pulseHz: 2, pulsePow: 8}, // battle-drum pulse
	}},
	styles.MusicDark: {baseFreq: 110, components: []component{ // A2
		{ratio: 1, amplitude: 0.4},
		{ratio: 0.5, amplitude: 0.3}, // sub bass
	}},
	styles.MusicEmotional: {baseFreq: 261.63, components: []component{ // C4
		{ratio: 1, amplitude: 0.3},
		{ratio: 1.25, amplitude: 0.2}, // string-like major third
	}},
	styles.MusicGregorian: {baseFreq: 196, components: []component{ // G3
		{ratio: 1, amplitude: 0.25},
		{ratio: 1.33, amplitude: 0.2}, // fourth
	}},
	styles.MusicFantasy: {baseFreq: 174.61, components: []component{ // F3
		{ratio: 1, amplitude: 0.3},
		{ratio: 1.25, amplitude: 0.15},
		{ratio: 1.5, amplitude: 0.15},
	}},
	styles.MusicPop: {baseFreq: 220, components: []component{ // A3
		{ratio: 1, amplitude: 0.3},
		{ratio: 1.33, amplitude: 0.2},
		{amplitude: 0.05, pulseHz: 2, pulsePow: 8},
	}},
}

// defaultRecipe covers unrecognized styles.
var defaultRecipe = recipe{baseFreq: 196, components: []component{ // G3
	{ratio: 1, amplitude: 0.3},
	{ratio: 1.33, amplitude: 0.2},
}}

// BuildBackground generates the deterministic background track for a
// style. Output length equals the requested duration within one sample,
// and the peak amplitude never exceeds the normalization ceiling.
func BuildBackground(musicStyle string, durationMS, sampleRate int) *Track {
	r, ok := backgroundRecipes[musicStyle]
	if !ok {
		r = defaultRecipe
	}

	track := NewSilence(durationMS, sampleRate)
	for i := range track.Samples {
		tSec := float64(i) / float64(track.SampleRate)
		var sample float64
		for _, c := range r.components {
			if c.pulsePow > 0 {
				sample += math.Pow(math.Sin(2*math.Pi*c.pulseHz*tSec), float64(c.pulsePow)) * c.amplitude
			} else {
				sample += math.Sin(2*math.Pi*r.baseFreq*c.ratio*tSec) * c.amplitude
			}
		}
		track.Samples[i] = sample
	}
	return track.Normalize(normalizationCeiling)
}
