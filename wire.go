// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package vnc

import (
	"encoding/binary"
	"io"
	"net"
	"sync"
)

// protocolVersion is the 12-byte RFB version banner this session speaks.
const protocolVersion = "RFB 003.008\n"

// wireCodec serializes and deserializes RFB protocol primitives over a
// net.Conn, serializing concurrent writers behind streamWriteLock.
type wireCodec struct {
	conn net.Conn

	streamWriteLock sync.Mutex
	closeOnce       sync.Once
	closeErr        error
}

func newWireCodec(conn net.Conn) *wireCodec {
	return &wireCodec{conn: conn}
}

// Close shuts down the underlying connection. Idempotent.
func (w *wireCodec) Close() error {
	w.closeOnce.Do(func() {
		w.closeErr = w.conn.Close()
	})
	return w.closeErr
}

func (w *wireCodec) readFull(buf []byte) error {
	if _, err := io.ReadFull(w.conn, buf); err != nil {
		return transportError("wireCodec.readFull", "connection read failed", err)
	}
	return nil
}

func (w *wireCodec) readUint8() (uint8, error) {
	var buf [1]byte
	if err := w.readFull(buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (w *wireCodec) readUint16() (uint16, error) {
	var buf [2]byte
	if err := w.readFull(buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(buf[:]), nil
}

func (w *wireCodec) readUint32() (uint32, error) {
	var buf [4]byte
	if err := w.readFull(buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

func (w *wireCodec) readInt32() (int32, error) {
	v, err := w.readUint32()
	return int32(v), err
}

// readVersion reads the 12-byte RFB version banner.
func (w *wireCodec) readVersion() (string, error) {
	var buf [12]byte
	if err := w.readFull(buf[:]); err != nil {
		return "", err
	}
	return string(buf[:]), nil
}

// writeVersion sends a 12-byte RFB version banner.
func (w *wireCodec) writeVersion(v string) error {
	if len(v) != 12 {
		return sanityError("wireCodec.writeVersion", "version banner must be exactly 12 bytes")
	}
	return w.write([]byte(v))
}

// readRectangle reads the four 16-bit big-endian fields of a rectangle
// (x, y, width, height), with no encoding tag.
func (w *wireCodec) readRectangle() (Rectangle, error) {
	x, err := w.readUint16()
	if err != nil {
		return Rectangle{}, err
	}
	y, err := w.readUint16()
	if err != nil {
		return Rectangle{}, err
	}
	width, err := w.readUint16()
	if err != nil {
		return Rectangle{}, err
	}
	height, err := w.readUint16()
	if err != nil {
		return Rectangle{}, err
	}
	return Rect(x, y, width, height), nil
}

// writeRectangle writes the four 16-bit big-endian fields of a rectangle.
func (w *wireCodec) writeRectangle(r Rectangle) error {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint16(buf[0:2], r.X)
	binary.BigEndian.PutUint16(buf[2:4], r.Y)
	binary.BigEndian.PutUint16(buf[4:6], r.Width)
	binary.BigEndian.PutUint16(buf[6:8], r.Height)
	return w.write(buf)
}

// readPixelFormatBlob reads the 16-byte PixelFormat blob.
func (w *wireCodec) readPixelFormatBlob() (PixelFormat, error) {
	var pf PixelFormat
	if err := readPixelFormat(w.conn, &pf); err != nil {
		return PixelFormat{}, err
	}
	return pf, nil
}

// writePixelFormatBlob writes the 16-byte PixelFormat blob.
func (w *wireCodec) writePixelFormatBlob(pf PixelFormat) error {
	buf, err := writePixelFormat(&pf)
	if err != nil {
		return err
	}
	return w.write(buf)
}

// readText reads a uint32 length prefix followed by that many bytes of text.
func (w *wireCodec) readText(maxLength uint32) (string, error) {
	length, err := w.readUint32()
	if err != nil {
		return "", err
	}
	if length > maxLength {
		return "", protocolError("wireCodec.readText", "text length exceeds maximum", nil)
	}
	buf := make([]byte, length)
	if err := w.readFull(buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// write serializes one write under streamWriteLock. Used for every
// server-to-client message so writes from the dispatch loop and the update
// scheduler never interleave.
func (w *wireCodec) write(buf []byte) error {
	w.streamWriteLock.Lock()
	defer w.streamWriteLock.Unlock()

	if _, err := w.conn.Write(buf); err != nil {
		return transportError("wireCodec.write", "connection write failed", err)
	}
	return nil
}

func (w *wireCodec) writeUint8(v uint8) error {
	return w.write([]byte{v})
}

func (w *wireCodec) writeUint16(v uint16) error {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	return w.write(buf[:])
}

func (w *wireCodec) writeUint32(v uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	return w.write(buf[:])
}

func (w *wireCodec) writeInt32(v int32) error {
	return w.writeUint32(uint32(v))
}

func (w *wireCodec) writeText(s string) error {
	buf := make([]byte, 4+len(s))
	binary.BigEndian.PutUint32(buf, uint32(len(s)))
	copy(buf[4:], s)
	return w.write(buf)
}

// rectangleHeader returns the 12-byte wire encoding of a rectangle header:
// x, y, width, height, and encoding type.
func rectangleHeader(r Rectangle, encodingType int32) []byte {
	buf := make([]byte, 12)
	binary.BigEndian.PutUint16(buf[0:2], r.X)
	binary.BigEndian.PutUint16(buf[2:4], r.Y)
	binary.BigEndian.PutUint16(buf[4:6], r.Width)
	binary.BigEndian.PutUint16(buf[6:8], r.Height)
	binary.BigEndian.PutUint32(buf[8:12], uint32(encodingType))
	return buf
}
