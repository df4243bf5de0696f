// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package vnc

import "encoding/binary"

// copyRectPayload builds the 4-byte CopyRect payload: the source rectangle's
// top-left corner, big-endian. The destination geometry travels in the
// rectangle header the payload is attached to; the dimensions are implicitly
// shared between source and destination.
func copyRectPayload(srcX, srcY uint16) []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint16(buf[0:2], srcX)
	binary.BigEndian.PutUint16(buf[2:4], srcY)
	return buf
}
