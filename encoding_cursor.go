// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package vnc

// SetCursor queues a Cursor pseudo-encoding rectangle (tag -239), the
// analogue of PseudoDesktopSize extended to cursor shape: the rectangle's
// (x, y) carry the hotspot offset and (width, height) the cursor dimensions;
// the payload is the cursor's pixel data in the client's negotiated pixel
// format followed by its transparency mask. A no-op if the client has not
// advertised the Cursor tag via SetEncodings. The rectangle joins the
// current update batch and is sent with it by FramebufferManualEndUpdate;
// one queued while no batch is open is discarded by the next
// FramebufferManualBeginUpdate.
func (s *Session) SetCursor(width, height, hotspotX, hotspotY uint16, pixels, mask []byte) error {
	s.updateRequestLock.Lock()
	supports := s.clientEncodings.supports(EncodingCursor)
	format := s.clientPixelFormat
	s.updateRequestLock.Unlock()

	if !supports {
		return nil
	}

	expectedPixels := int(width) * int(height) * format.BytesPerPixel()
	if len(pixels) != expectedPixels {
		return invalidArgumentError("Session.SetCursor", "pixel data length does not match width*height*bpp")
	}
	expectedMask := int((width+7)/8) * int(height)
	if len(mask) != expectedMask {
		return invalidArgumentError("Session.SetCursor", "mask data length does not match ceil(width/8)*height")
	}

	payload := make([]byte, 0, len(pixels)+len(mask))
	payload = append(payload, pixels...)
	payload = append(payload, mask...)

	s.addRect(Rect(hotspotX, hotspotY, width, height), EncodingCursor, payload)
	return nil
}
