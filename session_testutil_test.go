// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package vnc

import (
	"bytes"
	"net"
	"time"
)

// recordingConn is a minimal net.Conn that captures everything written to
// it and returns io.EOF-free zero reads, enough for exercising the wire
// codec's write path in tests without a real socket.
type recordingConn struct {
	written bytes.Buffer
}

func (c *recordingConn) Read(b []byte) (int, error)         { return 0, nil }
func (c *recordingConn) Write(b []byte) (int, error)        { return c.written.Write(b) }
func (c *recordingConn) Close() error                       { return nil }
func (c *recordingConn) LocalAddr() net.Addr                { return fakeAddr{} }
func (c *recordingConn) RemoteAddr() net.Addr                { return fakeAddr{} }
func (c *recordingConn) SetDeadline(t time.Time) error       { return nil }
func (c *recordingConn) SetReadDeadline(t time.Time) error   { return nil }
func (c *recordingConn) SetWriteDeadline(t time.Time) error  { return nil }

type fakeAddr struct{}

func (fakeAddr) Network() string { return "test" }
func (fakeAddr) String() string  { return "test" }

// newTestSession builds a Session with a framebuffer and wire codec ready
// to exercise the update-assembly path without a handshake.
func newTestSession(width, height uint16, format PixelFormat) (*Session, *recordingConn) {
	s := NewSession()
	conn := &recordingConn{}
	s.wire = newWireCodec(conn)
	s.framebuffer = NewFramebuffer(width, height, format, "test")
	s.clientPixelFormat = format
	s.seenWidth = width
	s.seenHeight = height
	s.cache = newFramebufferCache(s.framebuffer, s.logger)
	s.cacheBound = s.framebuffer
	return s, conn
}
