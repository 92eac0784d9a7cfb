package audio

import "codecraft-studio/styles"

// voiceEffects is the fixed per-style effect chain. Order matters and
// effects are not idempotent: reapplying reverb keeps stacking delayed
// copies.
var voiceEffects = map[string][]string{
	styles.VoiceHeroicMale: {"reverb", "bass_boost"},
	styles.VoiceSoprano:    {"reverb", "pitch_shift"},
	styles.VoiceChoir:      {"reverb", "chorus", "harmony"},
	styles.VoiceWhisper:    {"intimate", "soft_reverb"},
}

// ApplyVoiceEffects runs the style's effect chain over the track.
// Unknown styles pass through unchanged.
func ApplyVoiceEffects(t *Track, voiceStyle string) *Track {
	out := t
	for _, effect := range voiceEffects[voiceStyle] {
		out = ApplyEffect(out, effect)
	}
	return out
}

// ApplyEffect applies one named effect. Unknown names are a no-op.
func ApplyEffect(t *Track, effect string) *Track {
	switch effect {
	case "reverb":
		// Delayed attenuated copy on top of the original.
		return t.Overlay(t.Gain(-10), 100)
	case "chorus":
		// Reversed first half overlaid at a short offset.
		return t.Overlay(t.Reverse().Slice(0, t.DurationMS()/2), 50)
	case "bass_boost":
		return t.Gain(3)
	case "pitch_shift":
		// Resample-based: raises pitch and shortens the track.
		return t.Speedup(1.1)
	case "harmony":
		return t.Overlay(t.Gain(-5), 25)
	case "soft_reverb":
		return t.Overlay(t.Gain(-15), 150)
	case "intimate":
		return t.Gain(-5).LowPass(3000)
	default:
		return t
	}
}
