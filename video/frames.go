package video

import (
	"hash/fnv"
	"image"
	"image/color"
	"math"
	"math/rand"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"codecraft-studio/scenes"
	"codecraft-studio/types"
)

const maxCaptionChars = 60

// frameRenderer draws the procedural frames for one scene. All drawing
// is deterministic: the particle layout comes from a seed derived from
// the scene index and category, and animation depends only on t.
type frameRenderer struct {
	width  int
	height int
}

// parseHex decodes a "#RRGGBB" color, black on malformed input.
func parseHex(s string) color.RGBA {
	if len(s) != 7 || s[0] != '#' {
		return color.RGBA{A: 0xff}
	}
	hex := func(c byte) uint8 {
		switch {
		case c >= '0' && c <= '9':
			return c - '0'
		case c >= 'a' && c <= 'f':
			return c - 'a' + 10
		case c >= 'A' && c <= 'F':
			return c - 'A' + 10
		}
		return 0
	}
	return color.RGBA{
		R: hex(s[1])<<4 | hex(s[2]),
		G: hex(s[3])<<4 | hex(s[4]),
		B: hex(s[5])<<4 | hex(s[6]),
		A: 0xff,
	}
}

// sceneSeed derives the deterministic particle seed for a scene.
func sceneSeed(sc types.Scene) int64 {
	h := fnv.New64a()
	h.Write([]byte(sc.Category))
	h.Write([]byte{byte(sc.Index)})
	return int64(h.Sum64())
}

// palette returns the scene's colors, padded to three entries.
func palette(sc types.Scene) [3]color.RGBA {
	var out [3]color.RGBA
	for i := range out {
		if i < len(sc.Colors) {
			out[i] = parseHex(sc.Colors[i])
		} else {
			out[i] = color.RGBA{A: 0xff}
		}
	}
	return out
}

// renderFrame draws one frame of a scene at time t within [0, duration].
func (f *frameRenderer) renderFrame(sc types.Scene, t, duration float64) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.width, f.height))
	pal := palette(sc)
	rng := rand.New(rand.NewSource(sceneSeed(sc)))

	progress := 0.0
	if duration > 0 {
		progress = t / duration
	}

	switch sc.Category {
	case scenes.EpicBattle:
		f.drawBattle(img, pal, rng, t)
	case scenes.SacredTemple:
		f.drawTemple(img, pal, t)
	case scenes.EmotionalCloseup:
		f.drawCloseup(img, pal, t)
	case scenes.CinematicJourney:
		f.drawJourney(img, pal, progress)
	case scenes.GrandVista:
		f.drawVista(img, pal, t)
	case scenes.DarkRitual:
		f.drawRitual(img, pal, rng, t)
	case scenes.FantasyRealm:
		f.drawFantasy(img, pal, rng, t)
	default:
		f.drawHeroic(img, pal, t)
	}

	f.drawCaption(img, sc.Lyrics)
	return img
}

func lerp(a, b uint8, f float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*f)
}

func blend(a, b color.RGBA, f float64) color.RGBA {
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	return color.RGBA{
		R: lerp(a.R, b.R, f),
		G: lerp(a.G, b.G, f),
		B: lerp(a.B, b.B, f),
		A: 0xff,
	}
}

// fillVerticalGradient paints the whole frame from top color to bottom.
func (f *frameRenderer) fillVerticalGradient(img *image.RGBA, top, bottom color.RGBA) {
	for y := 0; y < f.height; y++ {
		c := blend(top, bottom, float64(y)/float64(f.height))
		for x := 0; x < f.width; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

// drawBattle: dark-to-crimson gradient, sweeping light rays and ember
// particles drifting upward.
func (f *frameRenderer) drawBattle(img *image.RGBA, pal [3]color.RGBA, rng *rand.Rand, t float64) {
	f.fillVerticalGradient(img, pal[2], pal[0])

	// light rays pivoting around the top center
	cx := f.width / 2
	for i := 0; i < 5; i++ {
		angle := math.Pi/3 + float64(i)*math.Pi/12 + 0.1*math.Sin(t+float64(i))
		f.drawRay(img, cx, 0, angle, pal[1], 0.25)
	}

	// embers: fixed horizontal layout, rising with time
	for i := 0; i < 60; i++ {
		x := rng.Intn(f.width)
		phase := rng.Float64()
		y := f.height - int(math.Mod(t*80+phase*float64(f.height), float64(f.height)))
		f.drawGlowDot(img, x, y, 3, pal[1])
	}
}

// drawTemple: warm gradient with vertical light columns.
func (f *frameRenderer) drawTemple(img *image.RGBA, pal [3]color.RGBA, t float64) {
	f.fillVerticalGradient(img, pal[0], pal[2])
	for i := 0; i < 6; i++ {
		x := f.width * (i*2 + 1) / 12
		width := 40 + int(12*math.Sin(t*0.8+float64(i)))
		f.drawColumn(img, x, width, pal[1])
	}
}

// drawCloseup: radial glow breathing around the center.
func (f *frameRenderer) drawCloseup(img *image.RGBA, pal [3]color.RGBA, t float64) {
	cx, cy := float64(f.width)/2, float64(f.height)/2
	maxDist := math.Hypot(cx, cy)
	breath := 0.85 + 0.15*math.Sin(t*0.6)
	for y := 0; y < f.height; y++ {
		for x := 0; x < f.width; x++ {
			d := math.Hypot(float64(x)-cx, float64(y)-cy) / maxDist
			img.SetRGBA(x, y, blend(pal[1], pal[0], d/breath))
		}
	}
}

// drawJourney: diagonal sweep advancing with scene progress.
func (f *frameRenderer) drawJourney(img *image.RGBA, pal [3]color.RGBA, progress float64) {
	span := float64(f.width + f.height)
	front := progress * span
	for y := 0; y < f.height; y++ {
		for x := 0; x < f.width; x++ {
			d := float64(x+y) - front
			switch {
			case d < -200:
				img.SetRGBA(x, y, pal[1])
			case d < 200:
				img.SetRGBA(x, y, blend(pal[1], pal[0], (d+200)/400))
			default:
				img.SetRGBA(x, y, blend(pal[0], pal[2], float64(y)/float64(f.height)))
			}
		}
	}
}

// drawVista: layered horizon bands under a slowly brightening sky.
func (f *frameRenderer) drawVista(img *image.RGBA, pal [3]color.RGBA, t float64) {
	horizon := f.height * 2 / 3
	glow := 0.5 + 0.5*math.Sin(t*0.3)
	sky := blend(pal[0], pal[1], 0.3*glow)
	for y := 0; y < horizon; y++ {
		c := blend(sky, pal[1], float64(y)/float64(horizon)*0.5)
		for x := 0; x < f.width; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	for y := horizon; y < f.height; y++ {
		band := (y - horizon) * 4 / (f.height - horizon)
		c := blend(pal[2], color.RGBA{A: 0xff}, float64(band)*0.2)
		for x := 0; x < f.width; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

// drawRitual: near-black field with flickering candle points.
func (f *frameRenderer) drawRitual(img *image.RGBA, pal [3]color.RGBA, rng *rand.Rand, t float64) {
	f.fillVerticalGradient(img, pal[0], pal[2])
	for i := 0; i < 12; i++ {
		x := rng.Intn(f.width)
		y := f.height/2 + rng.Intn(f.height/2)
		flicker := 3 + int(2*math.Abs(math.Sin(t*7+float64(i))))
		f.drawGlowDot(img, x, y, flicker, pal[1])
	}
}

// drawFantasy: drifting luminous particles over a violet gradient.
func (f *frameRenderer) drawFantasy(img *image.RGBA, pal [3]color.RGBA, rng *rand.Rand, t float64) {
	f.fillVerticalGradient(img, pal[0], pal[1])
	for i := 0; i < 80; i++ {
		baseX := rng.Float64() * float64(f.width)
		baseY := rng.Float64() * float64(f.height)
		x := int(baseX + 30*math.Sin(t*0.5+float64(i)))
		y := int(baseY + 20*math.Cos(t*0.4+float64(i)))
		f.drawGlowDot(img, x, y, 2, pal[2])
	}
}

// drawHeroic: golden radial burst from the lower third.
func (f *frameRenderer) drawHeroic(img *image.RGBA, pal [3]color.RGBA, t float64) {
	cx, cy := float64(f.width)/2, float64(f.height)*0.7
	maxDist := math.Hypot(float64(f.width), float64(f.height))
	pulse := 0.9 + 0.1*math.Sin(t)
	for y := 0; y < f.height; y++ {
		for x := 0; x < f.width; x++ {
			d := math.Hypot(float64(x)-cx, float64(y)-cy) / maxDist / pulse
			img.SetRGBA(x, y, blend(pal[0], pal[2], d))
		}
	}
}

func (f *frameRenderer) drawRay(img *image.RGBA, x0, y0 int, angle float64, c color.RGBA, alpha float64) {
	dx, dy := math.Cos(angle), math.Sin(angle)
	steps := f.height * 2
	for s := 0; s < steps; s++ {
		x := x0 + int(dx*float64(s))
		y := y0 + int(dy*float64(s))
		if x < 0 || x >= f.width || y < 0 || y >= f.height {
			break
		}
		for w := -2; w <= 2; w++ {
			xx := x + w
			if xx < 0 || xx >= f.width {
				continue
			}
			img.SetRGBA(xx, y, blend(img.RGBAAt(xx, y), c, alpha))
		}
	}
}

func (f *frameRenderer) drawColumn(img *image.RGBA, cx, width int, c color.RGBA) {
	half := width / 2
	for x := cx - half; x <= cx+half; x++ {
		if x < 0 || x >= f.width {
			continue
		}
		fade := 1 - math.Abs(float64(x-cx))/float64(half+1)
		for y := 0; y < f.height; y++ {
			img.SetRGBA(x, y, blend(img.RGBAAt(x, y), c, 0.4*fade))
		}
	}
}

func (f *frameRenderer) drawGlowDot(img *image.RGBA, cx, cy, r int, c color.RGBA) {
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			if x < 0 || x >= f.width || y < 0 || y >= f.height {
				continue
			}
			d := math.Hypot(float64(x-cx), float64(y-cy))
			if d > float64(r) {
				continue
			}
			img.SetRGBA(x, y, blend(img.RGBAAt(x, y), c, 1-d/float64(r+1)))
		}
	}
}

// truncateCaption shortens a lyric line to the caption limit, counting
// runes so multibyte text is never split mid-character.
func truncateCaption(text string) string {
	runes := []rune(text)
	if len(runes) <= maxCaptionChars {
		return text
	}
	return string(runes[:maxCaptionChars-3]) + "..."
}

// drawCaption renders the lyric line near the bottom of the frame,
// truncated to keep it on one line.
func (f *frameRenderer) drawCaption(img *image.RGBA, text string) {
	if text == "" {
		return
	}
	text = truncateCaption(text)
	face := basicfont.Face7x13
	textWidth := font.MeasureString(face, text).Ceil()
	x := (f.width - textWidth) / 2
	y := f.height - 60

	shadow := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{A: 0xff}),
		Face: face,
		Dot:  fixed.P(x+1, y+1),
	}
	shadow.DrawString(text)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
