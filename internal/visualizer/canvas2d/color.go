package canvas2d

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

func alpha8(a float64) uint8 {
	return uint8(max(0, min(a, 1))*255 + 0.5)
}

func rgba(r, g, b uint8, a float64) color.NRGBA {
	return color.NRGBA{R: r, G: g, B: b, A: alpha8(a)}
}

// hsla takes hue in degrees and saturation/lightness in [0,1].
func hsla(h, s, l, a float64) color.NRGBA {
	r, g, b := colorful.Hsl(h, s, l).Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha8(a)}
}

func withAlpha(c color.NRGBA, a float64) color.NRGBA {
	c.A = alpha8(a)
	return c
}

var (
	slate200 = color.NRGBA{R: 0xe2, G: 0xe8, B: 0xf0, A: 0xff}
	slate300 = color.NRGBA{R: 0xcb, G: 0xd5, B: 0xe1, A: 0xff}
	slate400 = color.NRGBA{R: 0x94, G: 0xa3, B: 0xb8, A: 0xff}
	slate100 = color.NRGBA{R: 0xf1, G: 0xf5, B: 0xf9, A: 0xff}
)
