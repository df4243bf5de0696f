// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package vnc

// readLoop is the sole reader of s.wire's connection for the lifetime of
// the session. It runs until the connection fails or is closed, then
// closes done. It must never be waited on from within itself, so a
// protocol failure discovered here can call terminate and return without
// deadlocking on its own completion.
func (s *Session) readLoop(done chan struct{}) {
	defer close(done)

	for {
		msgType, err := s.wire.readUint8()
		if err != nil {
			s.terminate(err)
			return
		}

		if err := s.dispatch(msgType); err != nil {
			s.terminate(err)
			return
		}
	}
}

func (s *Session) dispatch(msgType uint8) error {
	switch msgType {
	case clientMsgSetPixelFormat:
		return s.handleSetPixelFormat()
	case clientMsgSetEncodings:
		return s.handleSetEncodings()
	case clientMsgFramebufferUpdateRequest:
		return s.handleFramebufferUpdateRequest()
	case clientMsgKeyEvent:
		return s.handleKeyEvent()
	case clientMsgPointerEvent:
		return s.handlePointerEvent()
	case clientMsgClientCutText:
		return s.handleClientCutText()
	default:
		return protocolError("Session.dispatch", "unrecognized client message type", nil)
	}
}

func (s *Session) handleSetPixelFormat() error {
	// Padding: 3 reserved bytes.
	var pad [3]byte
	if err := s.wire.readFull(pad[:]); err != nil {
		return err
	}
	pf, err := s.wire.readPixelFormatBlob()
	if err != nil {
		return err
	}
	if err := s.validator.ValidatePixelFormat(&pf); err != nil {
		return err
	}

	s.updateRequestLock.Lock()
	s.clientPixelFormat = pf
	s.updateRequestLock.Unlock()
	return nil
}

func (s *Session) handleSetEncodings() error {
	// Padding: 1 reserved byte.
	if _, err := s.wire.readUint8(); err != nil {
		return err
	}
	count, err := s.wire.readUint16()
	if err != nil {
		return err
	}
	if count > maxEncodingsPerMessage {
		return protocolError("Session.handleSetEncodings", "encoding count exceeds maximum", nil)
	}

	tags := make([]int32, count)
	for i := range tags {
		tag, err := s.wire.readInt32()
		if err != nil {
			return err
		}
		if err := s.validator.ValidateEncodingType(tag); err != nil {
			return err
		}
		tags[i] = tag
	}

	s.updateRequestLock.Lock()
	s.clientEncodings.replace(tags)
	s.updateRequestLock.Unlock()
	return nil
}

func (s *Session) handleFramebufferUpdateRequest() error {
	incremental, err := s.wire.readUint8()
	if err != nil {
		return err
	}
	region, err := s.wire.readRectangle()
	if err != nil {
		return err
	}

	s.updateRequestLock.Lock()
	fb := s.framebuffer
	clamped := clampRegion(region, fb.Width, fb.Height)
	if clamped.Width == 0 || clamped.Height == 0 {
		s.updateRequestLock.Unlock()
		return nil
	}
	s.pendingRequest = &FramebufferUpdateRequest{
		Incremental: incremental != 0,
		Region:      clamped,
	}
	s.updateRequestLock.Unlock()

	s.scheduler.signal()
	return nil
}

func (s *Session) handleKeyEvent() error {
	downFlag, err := s.wire.readUint8()
	if err != nil {
		return err
	}
	// Padding: 2 reserved bytes.
	var pad [2]byte
	if err := s.wire.readFull(pad[:]); err != nil {
		return err
	}
	keysym, err := s.wire.readUint32()
	if err != nil {
		return err
	}
	if err := s.validator.ValidateKeySymbol(keysym); err != nil {
		return err
	}

	if s.onKeyChanged != nil {
		s.onKeyChanged(KeyEvent{Down: downFlag != 0, Keysym: keysym})
	}
	return nil
}

func (s *Session) handlePointerEvent() error {
	buttonMask, err := s.wire.readUint8()
	if err != nil {
		return err
	}
	x, err := s.wire.readUint16()
	if err != nil {
		return err
	}
	y, err := s.wire.readUint16()
	if err != nil {
		return err
	}

	s.updateRequestLock.Lock()
	fb := s.framebuffer
	s.updateRequestLock.Unlock()
	if fb != nil {
		if err := s.validator.ValidatePointerPosition(x, y, fb.Width, fb.Height); err != nil {
			s.logger.Debug("pointer position outside framebuffer bounds", Field{Key: "error", Value: err})
		}
	}

	if s.onPointerChanged != nil {
		s.onPointerChanged(PointerEvent{ButtonMask: buttonMask, X: x, Y: y})
	}
	return nil
}

func (s *Session) handleClientCutText() error {
	// Padding: 3 reserved bytes.
	var pad [3]byte
	if err := s.wire.readFull(pad[:]); err != nil {
		return err
	}
	text, err := s.wire.readText(maxClipboardText)
	if err != nil {
		return err
	}
	if err := s.validator.ValidateTextData(text, maxClipboardText); err != nil {
		return err
	}
	text = s.validator.SanitizeText(text)

	if s.onRemoteClipboardChanged != nil {
		s.onRemoteClipboardChanged(text)
	}
	return nil
}
