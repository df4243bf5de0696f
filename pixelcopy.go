// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package vnc

import "encoding/binary"

// copyRegion copies a rectangular region of pixels from a source buffer to a
// destination buffer at the same (region.X, region.Y) origin, converting
// between pixel formats when they differ. Used when src and dst share a
// coordinate space, such as a framebuffer and its shadow cache.
//
// srcStride and dstStride are the number of bytes per scanline in each
// buffer; they may exceed width*bytesPerPixel when a buffer has padding.
func copyRegion(
	dst []byte, dstStride int, dstFormat *PixelFormat,
	src []byte, srcStride int, srcFormat *PixelFormat,
	region Rectangle,
) error {
	return copyRegionTo(dst, dstStride, dstFormat, region.X, region.Y, src, srcStride, srcFormat, region)
}

// copyRegionTo copies region from src into dst, placing it at (dstX, dstY)
// in the destination's coordinate space rather than assuming dst shares
// region's own origin. This is what lets a wire rectangle payload be built
// as a tightly packed buffer starting at (0, 0) regardless of where region
// sits in the source framebuffer.
func copyRegionTo(
	dst []byte, dstStride int, dstFormat *PixelFormat,
	dstX, dstY uint16,
	src []byte, srcStride int, srcFormat *PixelFormat,
	region Rectangle,
) error {
	srcBPP := srcFormat.BytesPerPixel()
	dstBPP := dstFormat.BytesPerPixel()

	srcRowBytes := int(region.Width) * srcBPP
	dstRowBytes := int(region.Width) * dstBPP

	if srcRowBytes+int(region.X)*srcBPP > srcStride || dstRowBytes+int(dstX)*dstBPP > dstStride {
		return invalidArgumentError("copyRegionTo", "region exceeds buffer stride")
	}
	if (int(region.Y)+int(region.Height))*srcStride > len(src) ||
		(int(dstY)+int(region.Height))*dstStride > len(dst) {
		return invalidArgumentError("copyRegionTo", "region exceeds buffer bounds")
	}

	sameFormat := *srcFormat == *dstFormat

	for row := 0; row < int(region.Height); row++ {
		srcOff := (int(region.Y)+row)*srcStride + int(region.X)*srcBPP
		dstOff := (int(dstY)+row)*dstStride + int(dstX)*dstBPP

		srcRow := src[srcOff : srcOff+srcRowBytes]
		dstRow := dst[dstOff : dstOff+dstRowBytes]

		if sameFormat {
			copy(dstRow, srcRow)
			continue
		}

		for col := 0; col < int(region.Width); col++ {
			pixel := readPixelValue(srcRow[col*srcBPP:col*srcBPP+srcBPP], srcFormat)
			r, g, b := splitChannels(pixel, srcFormat)
			r = convertChannel(r, uint32(srcFormat.RedMax), uint32(dstFormat.RedMax))
			g = convertChannel(g, uint32(srcFormat.GreenMax), uint32(dstFormat.GreenMax))
			b = convertChannel(b, uint32(srcFormat.BlueMax), uint32(dstFormat.BlueMax))
			out := joinChannels(r, g, b, dstFormat)
			writePixelValue(dstRow[col*dstBPP:col*dstBPP+dstBPP], dstFormat, out)
		}
	}

	return nil
}

// readPixelValue decodes a single pixel from its wire bytes according to
// format's byte order.
func readPixelValue(b []byte, format *PixelFormat) uint32 {
	switch format.BytesPerPixel() {
	case 1:
		return uint32(b[0])
	case 2:
		if format.BigEndian {
			return uint32(binary.BigEndian.Uint16(b))
		}
		return uint32(binary.LittleEndian.Uint16(b))
	default:
		if format.BigEndian {
			return binary.BigEndian.Uint32(b)
		}
		return binary.LittleEndian.Uint32(b)
	}
}

// writePixelValue encodes a pixel value into its wire bytes according to
// format's byte order.
func writePixelValue(b []byte, format *PixelFormat, pixel uint32) {
	switch format.BytesPerPixel() {
	case 1:
		b[0] = uint8(pixel)
	case 2:
		if format.BigEndian {
			binary.BigEndian.PutUint16(b, uint16(pixel))
		} else {
			binary.LittleEndian.PutUint16(b, uint16(pixel))
		}
	default:
		if format.BigEndian {
			binary.BigEndian.PutUint32(b, pixel)
		} else {
			binary.LittleEndian.PutUint32(b, pixel)
		}
	}
}

// splitChannels extracts the three color components from a pixel value
// using format's shifts and masks.
func splitChannels(pixel uint32, format *PixelFormat) (r, g, b uint32) {
	r = (pixel >> format.RedShift) & uint32(format.RedMax)
	g = (pixel >> format.GreenShift) & uint32(format.GreenMax)
	b = (pixel >> format.BlueShift) & uint32(format.BlueMax)
	return r, g, b
}

// joinChannels combines color components, already rescaled into format's
// range, into a single pixel value using format's shifts.
func joinChannels(r, g, b uint32, format *PixelFormat) uint32 {
	return (r << format.RedShift) | (g << format.GreenShift) | (b << format.BlueShift)
}

// convertChannel rescales a color component from a source maximum to a
// destination maximum.
func convertChannel(value, srcMax, dstMax uint32) uint32 {
	if srcMax == 0 {
		return 0
	}
	return (value*dstMax + srcMax/2) / srcMax
}
