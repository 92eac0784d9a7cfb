package audio

import "codecraft-studio/styles"

// backgroundGainDB keeps vocals prominent: the background track drops
// by a fixed style-specific offset before the overlay.
var backgroundGainDB = map[string]float64{
	styles.MusicEpic:      -12,
	styles.MusicGladiator: -13,
	styles.MusicDark:      -14,
	styles.MusicEmotional: -16,
	styles.MusicGregorian: -15,
	styles.MusicFantasy:   -15,
	styles.MusicPop:       -14,
}

const defaultBackgroundGainDB = -15

// Mix pads the shorter of the two tracks with silence, attenuates the
// background by the style's offset and overlays the voice on top.
// Output length equals max(len(voice), len(background)); nothing is
// truncated.
func Mix(voice, background *Track, musicStyle string) *Track {
	rate := voice.SampleRate
	if rate <= 0 {
		rate = background.SampleRate
	}
	if rate <= 0 {
		rate = DefaultSampleRate
	}
	if voice.SampleRate <= 0 {
		voice = &Track{SampleRate: rate, Samples: voice.Samples}
	}
	if background.SampleRate <= 0 {
		background = &Track{SampleRate: rate, Samples: background.Samples}
	}

	n := len(voice.Samples)
	if len(background.Samples) > n {
		n = len(background.Samples)
	}
	voice = voice.PadToSamples(n)
	background = background.PadToSamples(n)

	db, ok := backgroundGainDB[musicStyle]
	if !ok {
		db = defaultBackgroundGainDB
	}
	return background.Gain(db).Overlay(voice, 0)
}
