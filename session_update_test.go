// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package vnc

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyRegionUsesCopyRectWhenSupported(t *testing.T) {
	s, conn := newTestSession(100, 100, *PixelFormat32BitRGBA)
	s.clientEncodings.replace([]int32{EncodingCopyRect})

	s.framebufferManualBeginUpdate()
	s.FramebufferManualCopyRegion(Rect(50, 50, 10, 10), 0, 0)
	sent := s.framebufferManualEndUpdate()

	require.True(t, sent)
	require.Len(t, s.pendingRects, 0)
	assert.Greater(t, conn.written.Len(), 0)

	// One rectangle with encoding tag CopyRect and a 4-byte payload.
	out := conn.written.Bytes()
	require.Len(t, out, 4+12+4)
	assert.Equal(t, EncodingCopyRect, int32(binary.BigEndian.Uint32(out[12:16])))
}

func TestCopyRegionFallsBackToTwoRectsWhenDisjoint(t *testing.T) {
	s, _ := newTestSession(100, 100, *PixelFormat32BitRGBA)
	// No SetEncodings call: clientEncodings is empty, so CopyRect is
	// unavailable even though the tag exists, per the spec's open question.

	var captured []pendingRect
	s.framebufferManualBeginUpdate()
	s.FramebufferManualCopyRegion(Rect(10, 10, 5, 5), 0, 0)
	s.updateRequestLock.Lock()
	captured = append(captured, s.pendingRects...)
	s.updateRequestLock.Unlock()

	// source (0,0,5,5) and target (10,10,5,5) are disjoint; union area
	// (15*15=225) exceeds their combined area (50), so two Raw rects.
	assert.Len(t, captured, 2)
	for _, r := range captured {
		assert.Equal(t, EncodingRaw, r.Encoding)
	}
}

func TestCopyRegionFallsBackToUnionWhenOverlapping(t *testing.T) {
	s, _ := newTestSession(100, 100, *PixelFormat32BitRGBA)

	s.framebufferManualBeginUpdate()
	s.FramebufferManualCopyRegion(Rect(2, 0, 10, 10), 0, 0)
	s.updateRequestLock.Lock()
	captured := append([]pendingRect(nil), s.pendingRects...)
	s.updateRequestLock.Unlock()

	// source (0,0,10,10) and target (2,0,10,10) overlap heavily: union
	// area (12*10=120) is smaller than disjoint sum (200), so one rect.
	require.Len(t, captured, 1)
	assert.Equal(t, EncodingRaw, captured[0].Encoding)
	assert.Equal(t, Rect(0, 0, 12, 10), captured[0].Region)
}

func TestAddRectFlushesAtOverflowThreshold(t *testing.T) {
	s, conn := newTestSession(4, 4, *PixelFormat32BitRGBA)

	s.framebufferManualBeginUpdate()
	for i := 0; i < maxPendingRects; i++ {
		s.addRect(Rect(0, 0, 1, 1), EncodingRaw, []byte{0, 0, 0, 0})
	}

	// The overflow threshold should have already triggered one flush.
	assert.Greater(t, conn.written.Len(), 0)
	s.updateRequestLock.Lock()
	remaining := len(s.pendingRects)
	s.updateRequestLock.Unlock()
	assert.Equal(t, 0, remaining)
}

func TestEndUpdatePrependsPseudoDesktopSizeOnResize(t *testing.T) {
	s, conn := newTestSession(640, 480, *PixelFormat32BitRGBA)
	s.clientEncodings.replace([]int32{EncodingPseudoDesktopSize})

	s.framebufferManualBeginUpdate()
	s.framebuffer = NewFramebuffer(1024, 768, *PixelFormat32BitRGBA, "resized")

	// EndUpdate sends the PseudoDesktopSize rectangle first (here the only
	// one) and records the new extent as the client's tracked dimensions.
	sent := s.framebufferManualEndUpdate()

	assert.True(t, sent)
	assert.Equal(t, uint16(1024), s.seenWidth)
	assert.Equal(t, uint16(768), s.seenHeight)

	out := conn.written.Bytes()
	require.Len(t, out, 4+12)
	assert.Equal(t, Rect(0, 0, 1024, 768), Rect(
		binary.BigEndian.Uint16(out[4:6]), binary.BigEndian.Uint16(out[6:8]),
		binary.BigEndian.Uint16(out[8:10]), binary.BigEndian.Uint16(out[10:12])))
	assert.Equal(t, EncodingPseudoDesktopSize, int32(binary.BigEndian.Uint32(out[12:16])))
}

func TestEndUpdateReturnsFalseWhenEmpty(t *testing.T) {
	s, _ := newTestSession(4, 4, *PixelFormat32BitRGBA)

	s.framebufferManualBeginUpdate()
	sent := s.framebufferManualEndUpdate()

	assert.False(t, sent)
}

func TestUnionRect(t *testing.T) {
	got := unionRect(Rect(0, 0, 5, 5), Rect(10, 10, 5, 5))
	assert.Equal(t, Rect(0, 0, 15, 15), got)
}
