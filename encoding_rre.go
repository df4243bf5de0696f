// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package vnc

import (
	"bytes"
	"encoding/binary"
)

// rreEncode builds an RRE (Rise-and-Run-length Encoding) payload for region:
// a background color overlaid with solid-color subrectangles, as RFC 6143
// Section 7.7.3 defines for the read side. The background is the top-left
// pixel's color; subrectangles are maximal horizontal runs of pixels that
// differ from it, one row tall. This never needs more subrectangles than
// there are differing pixels, and is always a legal RRE payload regardless
// of how well it compresses a given region.
func rreEncode(fb *Framebuffer, format *PixelFormat, region Rectangle) []byte {
	pixels, err := rawPayload(fb, format, region)
	if err != nil {
		return nil
	}

	bpp := format.BytesPerPixel()
	w, h := int(region.Width), int(region.Height)
	background := append([]byte(nil), pixelAt(pixels, bpp, w, 0, 0)...)

	var subrects bytes.Buffer
	var count uint32
	for y := 0; y < h; y++ {
		x := 0
		for x < w {
			v := pixelAt(pixels, bpp, w, x, y)
			if bytes.Equal(v, background) {
				x++
				continue
			}
			runStart := x
			for x < w && bytes.Equal(pixelAt(pixels, bpp, w, x, y), v) {
				x++
			}
			subrects.Write(v)
			writeUint16BE(&subrects, uint16(runStart))
			writeUint16BE(&subrects, uint16(y))
			writeUint16BE(&subrects, uint16(x-runStart))
			writeUint16BE(&subrects, 1)
			count++
		}
	}

	payload := make([]byte, 0, 4+len(background)+subrects.Len())
	var countBuf [4]byte
	binary.BigEndian.PutUint32(countBuf[:], count)
	payload = append(payload, countBuf[:]...)
	payload = append(payload, background...)
	payload = append(payload, subrects.Bytes()...)
	return payload
}

func writeUint16BE(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}
