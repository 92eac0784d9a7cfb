package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

// DefaultSampleRate is the pipeline-wide PCM rate.
const DefaultSampleRate = 44100

// Track is a mono PCM buffer with float64 samples in [-1, 1].
// Quantization to 16-bit happens only at WAV encode time.
type Track struct {
	SampleRate int
	Samples    []float64
}

// NewSilence returns a silent track of the given duration.
func NewSilence(durMS, sampleRate int) *Track {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	n := sampleRate * durMS / 1000
	if n < 0 {
		n = 0
	}
	return &Track{SampleRate: sampleRate, Samples: make([]float64, n)}
}

// Tone returns a pure sine tone at the given frequency.
func Tone(freq float64, durMS, sampleRate int) *Track {
	t := NewSilence(durMS, sampleRate)
	for i := range t.Samples {
		t.Samples[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(t.SampleRate))
	}
	return t
}

// DurationMS reports the track length in milliseconds.
func (t *Track) DurationMS() int {
	if t.SampleRate <= 0 {
		return 0
	}
	return len(t.Samples) * 1000 / t.SampleRate
}

// Clone returns an independent copy.
func (t *Track) Clone() *Track {
	out := &Track{SampleRate: t.SampleRate, Samples: make([]float64, len(t.Samples))}
	copy(out.Samples, t.Samples)
	return out
}

// gainFactor converts a decibel offset into a linear multiplier.
func gainFactor(db float64) float64 {
	return math.Pow(10, db/20)
}

// Gain returns a copy with a flat decibel gain applied.
func (t *Track) Gain(db float64) *Track {
	f := gainFactor(db)
	out := t.Clone()
	for i := range out.Samples {
		out.Samples[i] *= f
	}
	return out
}

// Overlay mixes other on top of t starting at offsetMS. The result
// keeps t's length; overlaid samples past the end are dropped.
func (t *Track) Overlay(other *Track, offsetMS int) *Track {
	out := t.Clone()
	start := t.SampleRate * offsetMS / 1000
	for i, s := range other.Samples {
		j := start + i
		if j < 0 {
			continue
		}
		if j >= len(out.Samples) {
			break
		}
		out.Samples[j] += s
	}
	return out
}

// Reverse returns the track played backwards.
func (t *Track) Reverse() *Track {
	out := t.Clone()
	for i, j := 0, len(out.Samples)-1; i < j; i, j = i+1, j-1 {
		out.Samples[i], out.Samples[j] = out.Samples[j], out.Samples[i]
	}
	return out
}

// Slice returns the [fromMS, toMS) portion, clamped to the track.
func (t *Track) Slice(fromMS, toMS int) *Track {
	from := t.SampleRate * fromMS / 1000
	to := t.SampleRate * toMS / 1000
	if from < 0 {
		from = 0
	}
	if to > len(t.Samples) {
		to = len(t.Samples)
	}
	if from >= to {
		return &Track{SampleRate: t.SampleRate}
	}
	out := &Track{SampleRate: t.SampleRate, Samples: make([]float64, to-from)}
	copy(out.Samples, t.Samples[from:to])
	return out
}

// Speedup resamples the track by a playback-speed factor. A factor of
// 1.1 raises perceived pitch about a semitone but also shortens the
// track; tempo and pitch are coupled in this approximation.
func (t *Track) Speedup(factor float64) *Track {
	if factor <= 0 || len(t.Samples) == 0 {
		return t.Clone()
	}
	n := int(float64(len(t.Samples)) / factor)
	out := &Track{SampleRate: t.SampleRate, Samples: make([]float64, n)}
	for i := 0; i < n; i++ {
		pos := float64(i) * factor
		j := int(pos)
		if j+1 >= len(t.Samples) {
			out.Samples[i] = t.Samples[len(t.Samples)-1]
			continue
		}
		frac := pos - float64(j)
		out.Samples[i] = t.Samples[j]*(1-frac) + t.Samples[j+1]*frac
	}
	return out
}

// LowPass applies a single-pole RC low-pass filter at the cutoff
// frequency in Hz.
func (t *Track) LowPass(cutoff float64) *Track {
	out := t.Clone()
	if cutoff <= 0 || len(out.Samples) == 0 {
		return out
	}
	rc := 1.0 / (2 * math.Pi * cutoff)
	dt := 1.0 / float64(t.SampleRate)
	alpha := dt / (rc + dt)
	prev := 0.0
	for i, s := range out.Samples {
		prev += alpha * (s - prev)
		out.Samples[i] = prev
	}
	return out
}

// FadeIn ramps the first durMS linearly from silence.
func (t *Track) FadeIn(durMS int) *Track {
	out := t.Clone()
	n := t.SampleRate * durMS / 1000
	if n > len(out.Samples) {
		n = len(out.Samples)
	}
	for i := 0; i < n; i++ {
		out.Samples[i] *= float64(i) / float64(n)
	}
	return out
}

// FadeOut ramps the last durMS linearly to silence.
func (t *Track) FadeOut(durMS int) *Track {
	out := t.Clone()
	n := t.SampleRate * durMS / 1000
	if n > len(out.Samples) {
		n = len(out.Samples)
	}
	total := len(out.Samples)
	for i := 0; i < n; i++ {
		out.Samples[total-1-i] *= float64(i) / float64(n)
	}
	return out
}

// PadToSamples appends silence until the track holds at least n samples.
func (t *Track) PadToSamples(n int) *Track {
	if len(t.Samples) >= n {
		return t.Clone()
	}
	out := &Track{SampleRate: t.SampleRate, Samples: make([]float64, n)}
	copy(out.Samples, t.Samples)
	return out
}

// Peak returns the maximum absolute sample value.
func (t *Track) Peak() float64 {
	peak := 0.0
	for _, s := range t.Samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	return peak
}

// Normalize scales the track so its peak equals the target, leaving
// silence untouched.
func (t *Track) Normalize(targetPeak float64) *Track {
	peak := t.Peak()
	if peak == 0 {
		return t.Clone()
	}
	out := t.Clone()
	f := targetPeak / peak
	for i := range out.Samples {
		out.Samples[i] *= f
	}
	return out
}

// EncodeWAV writes the track as 16-bit mono PCM WAV.
func (t *Track) EncodeWAV(w io.Writer) error {
	dataLen := len(t.Samples) * 2
	var header [44]byte
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+dataLen))
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(header[22:24], 1) // mono
	binary.LittleEndian.PutUint32(header[24:28], uint32(t.SampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(t.SampleRate*2))
	binary.LittleEndian.PutUint16(header[32:34], 2)
	binary.LittleEndian.PutUint16(header[34:36], 16)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(dataLen))
	if _, err := w.Write(header[:]); err != nil {
		return err
	}

	buf := make([]byte, dataLen)
	for i, s := range t.Samples {
		v := s
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(int16(v*32767)))
	}
	_, err := w.Write(buf)
	return err
}

// WriteWAV writes the track to a WAV file.
func (t *Track) WriteWAV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create wav: %w", err)
	}
	defer f.Close()
	if err := t.EncodeWAV(f); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	return nil
}

// FromPCM16 builds a track from raw little-endian 16-bit mono samples.
func FromPCM16(raw []byte, sampleRate int) *Track {
	n := len(raw) / 2
	t := &Track{SampleRate: sampleRate, Samples: make([]float64, n)}
	for i := 0; i < n; i++ {
		v := int16(binary.LittleEndian.Uint16(raw[i*2:]))
		t.Samples[i] = float64(v) / 32767
	}
	return t
}
