// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package vnc

import (
	"bytes"
	"encoding/binary"
)

// Server-to-client message type tags.
const (
	serverMsgFramebufferUpdate = 0
	serverMsgBell              = 2
	serverMsgServerCutText     = 3
)

// maxClipboardText bounds ServerCutText and ClientCutText payloads at
// 0x00FFFFFF bytes; the length itself travels as a 32-bit big-endian field.
const maxClipboardText = 0x00FFFFFF

// Bell sends a server-initiated Bell message (type 2, one byte, no body).
func (s *Session) Bell() error {
	return s.wire.write([]byte{serverMsgBell})
}

// SendLocalClipboardChange sends a ServerCutText message (type 3) carrying
// the embedder's clipboard contents.
func (s *Session) SendLocalClipboardChange(text string) error {
	if len(text) > maxClipboardText {
		return invalidArgumentError("Session.SendLocalClipboardChange", "clipboard text exceeds maximum length")
	}

	var buf bytes.Buffer
	buf.WriteByte(serverMsgServerCutText)
	buf.Write(make([]byte, 3))
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(text)))
	buf.Write(lenBuf[:])
	buf.WriteString(text)

	return s.wire.write(buf.Bytes())
}

// flushRects writes a single FramebufferUpdate message (type 0) carrying
// rects, then reports whether anything was sent. An empty rects is a no-op
// that reports false, matching the "nothing sent" outcome the Update
// Scheduler uses to decide whether to keep polling at MaxUpdateRate or wait
// for the next signal.
func (s *Session) flushRects(rects []pendingRect) bool {
	if len(rects) == 0 {
		return false
	}

	var buf bytes.Buffer
	buf.WriteByte(serverMsgFramebufferUpdate)
	buf.WriteByte(0)
	var countBuf [2]byte
	binary.BigEndian.PutUint16(countBuf[:], uint16(len(rects)))
	buf.Write(countBuf[:])

	for _, rc := range rects {
		buf.Write(rectangleHeader(rc.Region, rc.Encoding))
		buf.Write(rc.Payload)
	}

	if err := s.wire.write(buf.Bytes()); err != nil {
		s.terminate(err)
		return false
	}

	s.cfg.Metrics.Gauge("vnc.rectangles_sent", len(rects))
	return true
}
