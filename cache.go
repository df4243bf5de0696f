// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package vnc

import "bytes"

// framebufferCache is the shadow copy of the last pixels sent to a client.
// Bound to exactly one Framebuffer instance at a time; replaced wholesale
// when that instance changes.
type framebufferCache struct {
	logger Logger

	framebuffer *Framebuffer

	// cachedBytes mirrors framebuffer.Buffer at the time of the last diff.
	cachedBytes []byte

	// isLineInvalid is reused scratch space across diff passes.
	isLineInvalid []bool
}

func newFramebufferCache(fb *Framebuffer, logger Logger) *framebufferCache {
	return &framebufferCache{
		logger:        logger,
		framebuffer:   fb,
		cachedBytes:   make([]byte, len(fb.Buffer)),
		isLineInvalid: make([]bool, fb.Height),
	}
}

// respondToUpdateRequest implements the Framebuffer Cache diff algorithm:
// it diffs the pending request's region against the shadow copy line by
// line, then asks the session to emit either coalesced vertical runs
// (incremental) or a single rectangle (non-incremental). Returns whether
// RespondToUpdateRequest's caller should consider anything sent.
func (c *framebufferCache) respondToUpdateRequest(s *Session) bool {
	s.updateRequestLock.Lock()
	req := s.pendingRequest
	if req == nil {
		s.updateRequestLock.Unlock()
		return false
	}

	region := clampRegion(req.Region, s.framebuffer.Width, s.framebuffer.Height)
	if region.Width == 0 || region.Height == 0 {
		s.updateRequestLock.Unlock()
		return false
	}
	incremental := req.Incremental
	s.updateRequestLock.Unlock()

	fb := s.framebuffer
	fb.SyncRoot.Lock()
	bpp := fb.Format.BytesPerPixel()
	rowLen := bpp * int(region.Width)
	for i := 0; i < int(region.Height); i++ {
		y := int(region.Y) + i
		off := y*fb.Stride + bpp*int(region.X)
		live := fb.Buffer[off : off+rowLen]
		shadow := c.cachedBytes[off : off+rowLen]

		if !bytes.Equal(live, shadow) {
			copy(shadow, live)
			c.isLineInvalid[i] = true
		} else {
			c.isLineInvalid[i] = false
		}
	}
	fb.SyncRoot.Unlock()

	s.framebufferManualBeginUpdate()

	if incremental {
		c.invalidateRuns(s, region)
	} else {
		s.framebufferManualInvalidate(region)
	}

	return s.framebufferManualEndUpdate()
}

// invalidateRuns coalesces consecutive invalid lines within region into
// maximal vertical runs and invalidates each as one region.Width-wide
// rectangle.
func (c *framebufferCache) invalidateRuns(s *Session, region Rectangle) {
	runStart := -1
	for i := 0; i <= int(region.Height); i++ {
		invalid := i < int(region.Height) && c.isLineInvalid[i]
		if invalid && runStart < 0 {
			runStart = i
			continue
		}
		if !invalid && runStart >= 0 {
			run := Rect(region.X, region.Y+uint16(runStart), region.Width, uint16(i-runStart))
			s.framebufferManualInvalidate(run)
			runStart = -1
		}
	}
}

// clampRegion restricts region to the bounds of a width x height framebuffer.
func clampRegion(region Rectangle, width, height uint16) Rectangle {
	if region.X >= width || region.Y >= height {
		return Rectangle{}
	}
	w := region.Width
	if uint32(region.X)+uint32(w) > uint32(width) {
		w = width - region.X
	}
	h := region.Height
	if uint32(region.Y)+uint32(h) > uint32(height) {
		h = height - region.Y
	}
	return Rect(region.X, region.Y, w, h)
}

// rebind replaces the cache's shadow state for a new framebuffer instance,
// as required whenever the bound Framebuffer changes.
func (c *framebufferCache) rebind(fb *Framebuffer) {
	c.framebuffer = fb
	c.cachedBytes = make([]byte, len(fb.Buffer))
	c.isLineInvalid = make([]bool, fb.Height)
}
