package visualizer

import (
	"image"
	"strings"
)

const lumaRamp = " .:-=+*#%@"

// HalfBlocks downsamples img to cols x rows terminal cells. Each cell shows
// two vertically stacked pixels using an upper half block with separate
// foreground and background colors. Without color support it falls back to
// a luminance ramp.
func HalfBlocks(img image.Image, cols, rows int) string {
	return halfBlocks(img, cols, rows, currentColorProfile())
}

func halfBlocks(img image.Image, cols, rows int, p colorProfile) string {
	if img == nil || cols <= 0 || rows <= 0 {
		return ""
	}
	b := img.Bounds()
	if b.Empty() {
		return ""
	}

	px := downsample(img, cols, rows*2)

	var sb strings.Builder
	sb.Grow(cols * rows * 8)
	state := newANSIState(p)
	for r := range rows {
		if r > 0 {
			sb.WriteByte('\n')
		}
		top := px[(2*r)*cols : (2*r+1)*cols]
		bottom := px[(2*r+1)*cols : (2*r+2)*cols]
		for c := range cols {
			if p == colorNone {
				l := (top[c].luma() + bottom[c].luma()) / 2
				idx := min(int(l*float64(len(lumaRamp))), len(lumaRamp)-1)
				sb.WriteByte(lumaRamp[idx])
				continue
			}
			state.set(&sb, fg, top[c])
			state.set(&sb, bg, bottom[c])
			sb.WriteRune('▀')
		}
		state.reset(&sb)
	}
	return sb.String()
}

// downsample box-averages img onto a w x h grid, row-major.
func downsample(img image.Image, w, h int) []rgb {
	b := img.Bounds()
	out := make([]rgb, w*h)
	rgba, fast := img.(*image.RGBA)

	for y := range h {
		y0 := b.Min.Y + y*b.Dy()/h
		y1 := max(b.Min.Y+(y+1)*b.Dy()/h, y0+1)
		for x := range w {
			x0 := b.Min.X + x*b.Dx()/w
			x1 := max(b.Min.X+(x+1)*b.Dx()/w, x0+1)

			var sr, sg, sbl, n uint32
			for yy := y0; yy < y1 && yy < b.Max.Y; yy++ {
				for xx := x0; xx < x1 && xx < b.Max.X; xx++ {
					if fast {
						i := rgba.PixOffset(xx, yy)
						sr += uint32(rgba.Pix[i])
						sg += uint32(rgba.Pix[i+1])
						sbl += uint32(rgba.Pix[i+2])
					} else {
						r, g, bb, _ := img.At(xx, yy).RGBA()
						sr += r >> 8
						sg += g >> 8
						sbl += bb >> 8
					}
					n++
				}
			}
			if n > 0 {
				out[y*w+x] = rgb(sr/n)<<16 | rgb(sg/n)<<8 | rgb(sbl/n)
			}
		}
	}
	return out
}
