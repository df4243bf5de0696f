// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package vnc

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
)

// pixelAt returns the bpp-byte pixel at (x, y) within a tightly packed
// row-major buffer of the given width.
func pixelAt(buf []byte, bpp, width, x, y int) []byte {
	off := (y*width + x) * bpp
	return buf[off : off+bpp]
}

// pickCompressedEncoding tries every tag in candidates the client has
// advertised and returns the smallest resulting payload, or (0, nil, false)
// if none apply. Raw remains the caller's fallback.
func pickCompressedEncoding(fb *Framebuffer, format *PixelFormat, region Rectangle, supports func(int32) bool, candidates []int32) (int32, []byte, bool) {
	var bestTag int32
	var bestPayload []byte
	found := false

	for _, tag := range candidates {
		if !supports(tag) {
			continue
		}
		var payload []byte
		switch tag {
		case EncodingRRE:
			payload = rreEncode(fb, format, region)
		case EncodingHextile:
			payload = hextileEncode(fb, format, region)
		default:
			continue
		}
		if !found || len(payload) < len(bestPayload) {
			bestTag, bestPayload, found = tag, payload, true
		}
	}

	return bestTag, bestPayload, found
}

// ZlibEncoder wraps an encoder's raw rectangle bytes in a zlib-compressed,
// length-prefixed envelope, the shape RFC 6143's Tight/Zlib encoding family
// uses. It is not part of the mandatory Raw/CopyRect/PseudoDesktopSize path;
// embedders that want it can compress a rectangle's payload themselves and
// hand the result to Session.FramebufferManualAddEncodedRectangle under
// whichever encoding tag their client negotiated for it.
type ZlibEncoder struct{}

// Compress returns raw's zlib-compressed form with a 4-byte big-endian
// length prefix.
func (ZlibEncoder) Compress(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		zw.Close()
		return nil, sanityError("ZlibEncoder.Compress", "zlib write failed")
	}
	if err := zw.Close(); err != nil {
		return nil, sanityError("ZlibEncoder.Compress", "zlib close failed")
	}

	compressed := buf.Bytes()
	out := make([]byte, 4+len(compressed))
	binary.BigEndian.PutUint32(out[0:4], uint32(len(compressed)))
	copy(out[4:], compressed)
	return out, nil
}
