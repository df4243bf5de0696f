// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package vnc

// produceUpdate is the Update Scheduler's action: it captures fresh
// pixels, gives the embedder a chance to assemble the update itself, and
// otherwise drives the Framebuffer Cache. Returns whether a
// FramebufferUpdate message was sent.
func (s *Session) produceUpdate() bool {
	s.updateRequestLock.Lock()
	hasPending := s.pendingRequest != nil
	source := s.source
	s.updateRequestLock.Unlock()
	if !hasPending {
		return false
	}

	if source != nil {
		if fb, err := source.Capture(); err != nil {
			s.logger.Warn("framebuffer capture failed, reusing prior frame", Field{Key: "error", Value: err})
		} else {
			s.updateRequestLock.Lock()
			s.framebuffer = fb
			s.updateRequestLock.Unlock()
		}
	}

	if s.onFramebufferCapturing != nil {
		s.onFramebufferCapturing()
	}

	ev := &UpdateEvent{}
	if s.onFramebufferUpdating != nil {
		s.onFramebufferUpdating(ev)
	}

	if ev.Handled {
		s.updateRequestLock.Lock()
		sent := s.lastManualResult
		s.updateRequestLock.Unlock()
		return sent
	}

	s.updateRequestLock.Lock()
	fb := s.framebuffer
	if s.cacheBound != fb {
		s.cache.rebind(fb)
		s.cacheBound = fb
	}
	s.updateRequestLock.Unlock()

	return s.cache.respondToUpdateRequest(s)
}

// FramebufferManualBeginUpdate starts a manually assembled update,
// discarding any rectangles left over from a prior, unflushed batch.
func (s *Session) FramebufferManualBeginUpdate() {
	s.framebufferManualBeginUpdate()
}

func (s *Session) framebufferManualBeginUpdate() {
	s.updateRequestLock.Lock()
	s.pendingRects = s.pendingRects[:0]
	s.assembling = true
	s.updateRequestLock.Unlock()
}

// FramebufferManualInvalidate queues region for Raw re-transmission.
func (s *Session) FramebufferManualInvalidate(region Rectangle) {
	s.framebufferManualInvalidate(region)
}

func (s *Session) framebufferManualInvalidate(region Rectangle) {
	s.updateRequestLock.Lock()
	fb := s.framebuffer
	format := s.clientPixelFormat
	s.updateRequestLock.Unlock()

	region = clampRegion(region, fb.Width, fb.Height)
	if region.Width == 0 || region.Height == 0 {
		return
	}

	payload, err := rawPayload(fb, &format, region)
	if err != nil {
		s.logger.Warn("raw payload encode failed", Field{Key: "error", Value: err})
		return
	}
	s.addRect(region, EncodingRaw, payload)
}

// FramebufferManualInvalidateCompressed behaves like
// FramebufferManualInvalidate but tries the encodings configured via
// WithCompressionEncodings first, falling back to Raw when none of them
// are both configured and supported by the client, or when they fail to
// improve on Raw's size.
func (s *Session) FramebufferManualInvalidateCompressed(region Rectangle) {
	s.updateRequestLock.Lock()
	fb := s.framebuffer
	format := s.clientPixelFormat
	candidates := s.cfg.CompressionEncodings
	supports := s.clientEncodings.supports
	s.updateRequestLock.Unlock()

	region = clampRegion(region, fb.Width, fb.Height)
	if region.Width == 0 || region.Height == 0 {
		return
	}

	rawLen := int(region.Width) * int(region.Height) * format.BytesPerPixel()
	if tag, payload, ok := pickCompressedEncoding(fb, &format, region, supports, candidates); ok && len(payload) < rawLen {
		s.addRect(region, tag, payload)
		return
	}
	s.framebufferManualInvalidate(region)
}

// FramebufferManualInvalidateAll queues the full framebuffer extent.
func (s *Session) FramebufferManualInvalidateAll() {
	s.updateRequestLock.Lock()
	fb := s.framebuffer
	s.updateRequestLock.Unlock()
	s.framebufferManualInvalidate(fb.bounds())
}

// FramebufferManualAddEncodedRectangle queues a rectangle whose payload
// the embedder has already encoded, for encodings this package does not
// build itself (a custom Tight variant, a ZlibEncoder-wrapped Raw
// payload, and so on). The embedder is responsible for only using an
// encoding tag the client has advertised support for.
func (s *Session) FramebufferManualAddEncodedRectangle(region Rectangle, encodingType int32, payload []byte) {
	s.addRect(region, encodingType, payload)
}

// FramebufferManualCopyRegion queues a CopyRect rectangle if the client
// supports it, naming (srcX, srcY) as the on-screen origin the pixels at
// target were copied from. If the client lacks CopyRect support, it falls
// back to Raw invalidation of whichever of the union of source and target,
// or the two disjoint rectangles, has the smaller total area.
func (s *Session) FramebufferManualCopyRegion(target Rectangle, srcX, srcY uint16) {
	s.updateRequestLock.Lock()
	supportsCopyRect := s.clientEncodings.supports(EncodingCopyRect)
	s.updateRequestLock.Unlock()

	if supportsCopyRect {
		s.addRect(target, EncodingCopyRect, copyRectPayload(srcX, srcY))
		return
	}

	source := Rect(srcX, srcY, target.Width, target.Height)
	union := unionRect(source, target)
	disjointArea := uint64(source.Area()) + uint64(target.Area())
	if uint64(union.Area()) <= disjointArea {
		s.framebufferManualInvalidate(union)
		return
	}
	s.framebufferManualInvalidate(source)
	s.framebufferManualInvalidate(target)
}

// unionRect returns the smallest rectangle containing both a and b.
func unionRect(a, b Rectangle) Rectangle {
	minX := min(a.X, b.X)
	minY := min(a.Y, b.Y)
	maxX := max(uint32(a.X)+uint32(a.Width), uint32(b.X)+uint32(b.Width))
	maxY := max(uint32(a.Y)+uint32(a.Height), uint32(b.Y)+uint32(b.Height))
	return Rect(minX, minY, uint16(maxX-uint32(minX)), uint16(maxY-uint32(minY)))
}

// addRect queues one encoded rectangle, flushing immediately if the batch
// has reached the overflow threshold.
func (s *Session) addRect(region Rectangle, encoding int32, payload []byte) {
	s.updateRequestLock.Lock()
	s.pendingRects = append(s.pendingRects, pendingRect{Region: region, Encoding: encoding, Payload: payload})
	var overflow []pendingRect
	if len(s.pendingRects) >= maxPendingRects {
		overflow = s.pendingRects
		s.pendingRects = nil
	}
	s.updateRequestLock.Unlock()

	if overflow != nil {
		s.flushRects(overflow)
	}
}

// FramebufferManualEndUpdate closes out the batch started by
// FramebufferManualBeginUpdate: prepends a PseudoDesktopSize rectangle if
// the framebuffer's extent has changed and the client supports the tag,
// flushes whatever rectangles remain, and reports whether anything was
// sent.
func (s *Session) FramebufferManualEndUpdate() bool {
	return s.framebufferManualEndUpdate()
}

func (s *Session) framebufferManualEndUpdate() bool {
	s.updateRequestLock.Lock()
	fb := s.framebuffer
	rects := s.pendingRects
	s.pendingRects = nil
	s.assembling = false

	var desktopSizeRect *pendingRect
	if fb.Width != s.seenWidth || fb.Height != s.seenHeight {
		if s.clientEncodings.supports(EncodingPseudoDesktopSize) {
			desktopSizeRect = &pendingRect{Region: Rect(0, 0, fb.Width, fb.Height), Encoding: EncodingPseudoDesktopSize}
			s.seenWidth = fb.Width
			s.seenHeight = fb.Height
		}
	}
	s.updateRequestLock.Unlock()

	if desktopSizeRect != nil {
		rects = append([]pendingRect{*desktopSizeRect}, rects...)
	}

	sent := s.flushRects(rects)

	s.updateRequestLock.Lock()
	if sent {
		s.pendingRequest = nil
	}
	s.lastManualResult = sent
	s.updateRequestLock.Unlock()

	return sent
}
