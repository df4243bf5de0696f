// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package vnc

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheNonIncrementalSendsFullRegion(t *testing.T) {
	s, conn := newTestSession(2, 2, *PixelFormat32BitRGBA)

	s.pendingRequest = &FramebufferUpdateRequest{Incremental: false, Region: Rect(0, 0, 2, 2)}

	sent := s.cache.respondToUpdateRequest(s)

	require.True(t, sent)
	assert.Greater(t, conn.written.Len(), 0)
	assert.Nil(t, s.pendingRequest)
}

func TestCacheIncrementalSkipsUnchangedLines(t *testing.T) {
	s, conn := newTestSession(2, 4, *PixelFormat32BitRGBA)

	// First pass primes the shadow copy with the current (all-zero) pixels.
	s.pendingRequest = &FramebufferUpdateRequest{Incremental: false, Region: Rect(0, 0, 2, 4)}
	require.True(t, s.cache.respondToUpdateRequest(s))
	conn.written.Reset()

	// Dirty only row 2.
	off := 2 * s.framebuffer.Stride
	s.framebuffer.Buffer[off] = 0xFF

	s.pendingRequest = &FramebufferUpdateRequest{Incremental: true, Region: Rect(0, 0, 2, 4)}
	sent := s.cache.respondToUpdateRequest(s)

	require.True(t, sent)
	assert.Greater(t, conn.written.Len(), 0)

	// Only row 2 is sent: one rectangle (0,2,2,1), so the message is the
	// 4-byte header, one 12-byte rectangle header and 2*4 payload bytes.
	out := conn.written.Bytes()
	require.Len(t, out, 4+12+2*4)
	assert.Equal(t, uint16(1), binary.BigEndian.Uint16(out[2:4]))
	assert.Equal(t, Rect(0, 2, 2, 1), Rect(
		binary.BigEndian.Uint16(out[4:6]), binary.BigEndian.Uint16(out[6:8]),
		binary.BigEndian.Uint16(out[8:10]), binary.BigEndian.Uint16(out[10:12])))
}

func TestCacheIncrementalNoChangeSendsNothing(t *testing.T) {
	s, conn := newTestSession(2, 2, *PixelFormat32BitRGBA)

	s.pendingRequest = &FramebufferUpdateRequest{Incremental: false, Region: Rect(0, 0, 2, 2)}
	require.True(t, s.cache.respondToUpdateRequest(s))
	conn.written.Reset()

	s.pendingRequest = &FramebufferUpdateRequest{Incremental: true, Region: Rect(0, 0, 2, 2)}
	sent := s.cache.respondToUpdateRequest(s)

	assert.False(t, sent)
	assert.Equal(t, 0, conn.written.Len())
	// A no-op pass must retain the pending request so a later pixel
	// change can still be answered without the client sending a fresh
	// FramebufferUpdateRequest.
	assert.NotNil(t, s.pendingRequest)
}

func TestCacheRebindResetsShadow(t *testing.T) {
	s, _ := newTestSession(2, 2, *PixelFormat32BitRGBA)
	cache := s.cache.(*framebufferCache)

	newFB := NewFramebuffer(4, 4, *PixelFormat32BitRGBA, "resized")
	cache.rebind(newFB)

	assert.Len(t, cache.cachedBytes, len(newFB.Buffer))
	assert.Len(t, cache.isLineInvalid, int(newFB.Height))
}
