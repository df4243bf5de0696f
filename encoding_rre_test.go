// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package vnc

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRREEncodeUniformRegionHasNoSubrects(t *testing.T) {
	format := *PixelFormat32BitRGBA
	fb := NewFramebuffer(4, 4, format, "rre")

	payload := rreEncode(fb, &format, Rect(0, 0, 4, 4))
	require.GreaterOrEqual(t, len(payload), 4)

	count := binary.BigEndian.Uint32(payload[0:4])
	assert.Equal(t, uint32(0), count)
}

func TestRREEncodeSingleDifferingPixel(t *testing.T) {
	format := *PixelFormat32BitRGBA
	fb := NewFramebuffer(4, 4, format, "rre")
	bpp := format.BytesPerPixel()
	// Make pixel (2,1) differ from the background.
	off := 1*fb.Stride + 2*bpp
	fb.Buffer[off] = 0xAB

	payload := rreEncode(fb, &format, Rect(0, 0, 4, 4))
	count := binary.BigEndian.Uint32(payload[0:4])
	assert.Equal(t, uint32(1), count)
}

func TestHextileEncodeUniformTileIsBackgroundOnly(t *testing.T) {
	format := *PixelFormat32BitRGBA
	fb := NewFramebuffer(hextileTileSize, hextileTileSize, format, "hex")

	payload := hextileEncode(fb, &format, Rect(0, 0, hextileTileSize, hextileTileSize))
	require.NotEmpty(t, payload)
	assert.Equal(t, uint8(hextileBackgroundSpecified), payload[0])
}

func TestHextileEncodeNonUniformTileIsRaw(t *testing.T) {
	format := *PixelFormat32BitRGBA
	fb := NewFramebuffer(hextileTileSize, hextileTileSize, format, "hex")
	fb.Buffer[0] = 0xFF

	payload := hextileEncode(fb, &format, Rect(0, 0, hextileTileSize, hextileTileSize))
	require.NotEmpty(t, payload)
	assert.Equal(t, uint8(hextileRaw), payload[0])
}

func TestCopyRectPayloadEncodesCoordinates(t *testing.T) {
	payload := copyRectPayload(10, 20)
	require.Len(t, payload, 4)
	assert.Equal(t, uint16(10), binary.BigEndian.Uint16(payload[0:2]))
	assert.Equal(t, uint16(20), binary.BigEndian.Uint16(payload[2:4]))
}
