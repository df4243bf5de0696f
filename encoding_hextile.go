// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package vnc

import "bytes"

// Hextile subencoding flags and tile size, as defined in RFC 6143 Section
// 7.7.4.
const (
	hextileRaw                 = 1
	hextileBackgroundSpecified = 2
	hextileTileSize            = 16
)

// hextileEncode builds a Hextile payload for region by dividing it into
// tileSize x tileSize tiles: a uniform tile is sent as a single background
// color, and any other tile falls back to a Raw subencoding for that tile.
// Falling back to Raw per-tile is always a legal Hextile encoding, so this
// never needs the subrectangle-coloring machinery to be correct.
func hextileEncode(fb *Framebuffer, format *PixelFormat, region Rectangle) []byte {
	pixels, err := rawPayload(fb, format, region)
	if err != nil {
		return nil
	}

	bpp := format.BytesPerPixel()
	w, h := int(region.Width), int(region.Height)

	var out bytes.Buffer
	for tileY := 0; tileY < h; tileY += hextileTileSize {
		tileH := hextileTileSize
		if tileY+tileH > h {
			tileH = h - tileY
		}
		for tileX := 0; tileX < w; tileX += hextileTileSize {
			tileW := hextileTileSize
			if tileX+tileW > w {
				tileW = w - tileX
			}
			encodeHextile(&out, pixels, bpp, w, tileX, tileY, tileW, tileH)
		}
	}
	return out.Bytes()
}

func encodeHextile(out *bytes.Buffer, pixels []byte, bpp, width, tileX, tileY, tileW, tileH int) {
	uniform := true
	first := pixelAt(pixels, bpp, width, tileX, tileY)
	for y := 0; y < tileH && uniform; y++ {
		for x := 0; x < tileW; x++ {
			if !bytes.Equal(pixelAt(pixels, bpp, width, tileX+x, tileY+y), first) {
				uniform = false
				break
			}
		}
	}

	if uniform {
		out.WriteByte(hextileBackgroundSpecified)
		out.Write(first)
		return
	}

	out.WriteByte(hextileRaw)
	for y := 0; y < tileH; y++ {
		for x := 0; x < tileW; x++ {
			out.Write(pixelAt(pixels, bpp, width, tileX+x, tileY+y))
		}
	}
}
