// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package vnc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// PixelFormat describes how pixel color data is encoded and interpreted for
// a session's framebuffer.
type PixelFormat struct {
	// BPP (bits-per-pixel) specifies how many bits are used to represent each pixel.
	BPP uint8

	// Depth specifies the number of useful bits within each pixel value.
	Depth uint8

	// BigEndian determines the byte order for multi-byte pixel values.
	BigEndian bool

	// TrueColor determines whether pixels represent direct RGB values (true)
	// or indices into a color map (false).
	TrueColor bool

	// RedMax specifies the maximum value for the red color component.
	RedMax uint16

	// GreenMax specifies the maximum value for the green color component.
	GreenMax uint16

	// BlueMax specifies the maximum value for the blue color component.
	BlueMax uint16

	// RedShift specifies how many bits to right-shift a pixel value
	// to position the red color component at the least significant bits.
	RedShift uint8

	// GreenShift specifies how many bits to right-shift a pixel value
	// to position the green color component at the least significant bits.
	GreenShift uint8

	// BlueShift specifies how many bits to right-shift a pixel value
	// to position the blue color component at the least significant bits.
	BlueShift uint8
}

// BytesPerPixel returns the number of bytes used to store one pixel.
func (pf *PixelFormat) BytesPerPixel() int {
	return int(pf.BPP) / 8
}

// readPixelFormat reads a VNC pixel format from the wire format.
// Parses the 16-byte pixel format structure as defined in RFC 6143.
func readPixelFormat(r io.Reader, result *PixelFormat) error {
	var rawPixelFormat [16]byte
	if _, err := io.ReadFull(r, rawPixelFormat[:]); err != nil {
		return transportError("readPixelFormat", "failed to read pixel format data", err)
	}

	var pfBoolByte uint8
	brPF := bytes.NewReader(rawPixelFormat[:])
	if err := binary.Read(brPF, binary.BigEndian, &result.BPP); err != nil {
		return protocolError("readPixelFormat", "failed to read BPP field", err)
	}

	if err := binary.Read(brPF, binary.BigEndian, &result.Depth); err != nil {
		return protocolError("readPixelFormat", "failed to read depth field", err)
	}

	if err := binary.Read(brPF, binary.BigEndian, &pfBoolByte); err != nil {
		return protocolError("readPixelFormat", "failed to read big endian flag", err)
	}
	result.BigEndian = pfBoolByte != 0

	if err := binary.Read(brPF, binary.BigEndian, &pfBoolByte); err != nil {
		return protocolError("readPixelFormat", "failed to read true color flag", err)
	}
	result.TrueColor = pfBoolByte != 0

	if result.TrueColor {
		if err := binary.Read(brPF, binary.BigEndian, &result.RedMax); err != nil {
			return protocolError("readPixelFormat", "failed to read red max value", err)
		}

		if err := binary.Read(brPF, binary.BigEndian, &result.GreenMax); err != nil {
			return protocolError("readPixelFormat", "failed to read green max value", err)
		}

		if err := binary.Read(brPF, binary.BigEndian, &result.BlueMax); err != nil {
			return protocolError("readPixelFormat", "failed to read blue max value", err)
		}

		if err := binary.Read(brPF, binary.BigEndian, &result.RedShift); err != nil {
			return protocolError("readPixelFormat", "failed to read red shift value", err)
		}

		if err := binary.Read(brPF, binary.BigEndian, &result.GreenShift); err != nil {
			return protocolError("readPixelFormat", "failed to read green shift value", err)
		}

		if err := binary.Read(brPF, binary.BigEndian, &result.BlueShift); err != nil {
			return protocolError("readPixelFormat", "failed to read blue shift value", err)
		}
	}

	return nil
}

// writePixelFormat converts a PixelFormat to its wire format representation.
// Returns the 16-byte pixel format structure as defined in RFC 6143.
func writePixelFormat(format *PixelFormat) ([]byte, error) {
	var buf bytes.Buffer

	if err := binary.Write(&buf, binary.BigEndian, format.BPP); err != nil {
		return nil, sanityError("writePixelFormat", "failed to write BPP field")
	}

	if err := binary.Write(&buf, binary.BigEndian, format.Depth); err != nil {
		return nil, sanityError("writePixelFormat", "failed to write depth field")
	}

	var boolByte byte
	if format.BigEndian {
		boolByte = 1
	}
	if err := binary.Write(&buf, binary.BigEndian, boolByte); err != nil {
		return nil, sanityError("writePixelFormat", "failed to write big endian flag")
	}

	boolByte = 0
	if format.TrueColor {
		boolByte = 1
	}
	if err := binary.Write(&buf, binary.BigEndian, boolByte); err != nil {
		return nil, sanityError("writePixelFormat", "failed to write true color flag")
	}

	if format.TrueColor {
		if err := binary.Write(&buf, binary.BigEndian, format.RedMax); err != nil {
			return nil, sanityError("writePixelFormat", "failed to write red max value")
		}

		if err := binary.Write(&buf, binary.BigEndian, format.GreenMax); err != nil {
			return nil, sanityError("writePixelFormat", "failed to write green max value")
		}

		if err := binary.Write(&buf, binary.BigEndian, format.BlueMax); err != nil {
			return nil, sanityError("writePixelFormat", "failed to write blue max value")
		}

		if err := binary.Write(&buf, binary.BigEndian, format.RedShift); err != nil {
			return nil, sanityError("writePixelFormat", "failed to write red shift value")
		}

		if err := binary.Write(&buf, binary.BigEndian, format.GreenShift); err != nil {
			return nil, sanityError("writePixelFormat", "failed to write green shift value")
		}

		if err := binary.Write(&buf, binary.BigEndian, format.BlueShift); err != nil {
			return nil, sanityError("writePixelFormat", "failed to write blue shift value")
		}
	} else {
		buf.Write(make([]byte, 12))
	}

	return buf.Bytes()[0:16], nil
}

// PixelFormatValidationError reports a pixel format field that fails
// RFC 6143 consistency rules.
type PixelFormatValidationError struct {
	Field   string
	Value   interface{}
	Rule    string
	Message string
}

// Error returns the formatted error message for pixel format validation errors.
func (e *PixelFormatValidationError) Error() string {
	return fmt.Sprintf("pixel format validation failed for field %s: %s (value: %v)",
		e.Field, e.Message, e.Value)
}

// Validate performs comprehensive validation of a pixel format according to RFC 6143.
func (pf *PixelFormat) Validate() error {
	if pf.BPP == 0 {
		return &PixelFormatValidationError{
			Field: "BPP", Value: pf.BPP,
			Rule:    "BPP must be greater than 0",
			Message: "bits per pixel cannot be zero",
		}
	}

	if pf.BPP != 8 && pf.BPP != 16 && pf.BPP != 32 {
		return &PixelFormatValidationError{
			Field: "BPP", Value: pf.BPP,
			Rule:    "BPP must be 8, 16, or 32",
			Message: "bits per pixel must be 8, 16, or 32",
		}
	}

	if pf.Depth == 0 {
		return &PixelFormatValidationError{
			Field: "Depth", Value: pf.Depth,
			Rule:    "Depth must be greater than 0",
			Message: "color depth cannot be zero",
		}
	}

	if pf.Depth > pf.BPP {
		return &PixelFormatValidationError{
			Field: "Depth", Value: pf.Depth,
			Rule:    "Depth cannot exceed BPP",
			Message: fmt.Sprintf("color depth (%d) cannot exceed bits per pixel (%d)", pf.Depth, pf.BPP),
		}
	}

	if !pf.TrueColor {
		return &PixelFormatValidationError{
			Field: "TrueColor", Value: pf.TrueColor,
			Rule:    "TrueColor must be true",
			Message: "color-mapped pixel formats are not supported",
		}
	}

	if pf.RedMax == 0 && pf.GreenMax == 0 && pf.BlueMax == 0 {
		return &PixelFormatValidationError{
			Field: "ColorMax", Value: fmt.Sprintf("R:%d G:%d B:%d", pf.RedMax, pf.GreenMax, pf.BlueMax),
			Rule:    "at least one color component must have non-zero maximum",
			Message: "all color maximums cannot be zero",
		}
	}

	maxShift := pf.BPP - 1
	if pf.RedShift > maxShift || pf.GreenShift > maxShift || pf.BlueShift > maxShift {
		return &PixelFormatValidationError{
			Field: "Shift", Value: fmt.Sprintf("R:%d G:%d B:%d", pf.RedShift, pf.GreenShift, pf.BlueShift),
			Rule:    fmt.Sprintf("shifts cannot exceed %d for %d-bit pixels", maxShift, pf.BPP),
			Message: "a color shift exceeds the pixel width",
		}
	}

	redBits := countBits(pf.RedMax)
	greenBits := countBits(pf.GreenMax)
	blueBits := countBits(pf.BlueMax)
	if redBits+greenBits+blueBits > pf.Depth {
		return &PixelFormatValidationError{
			Field: "ColorBits", Value: fmt.Sprintf("R:%d G:%d B:%d (total:%d)", redBits, greenBits, blueBits, redBits+greenBits+blueBits),
			Rule:    fmt.Sprintf("total color bits cannot exceed depth (%d)", pf.Depth),
			Message: "total color component bits exceed color depth",
		}
	}

	return nil
}

// countBits returns the number of bits needed to represent the given maximum value.
func countBits(maxVal uint16) uint8 {
	bits := uint8(0)
	for maxVal > 0 {
		maxVal >>= 1
		bits++
	}
	return bits
}

// Common pixel format presets for server configuration.
var (
	// PixelFormat32BitRGBA represents high-quality 32-bit RGBA true color format.
	PixelFormat32BitRGBA = &PixelFormat{
		BPP: 32, Depth: 24, BigEndian: false, TrueColor: true,
		RedMax: 255, GreenMax: 255, BlueMax: 255,
		RedShift: 16, GreenShift: 8, BlueShift: 0,
	}

	// PixelFormat16BitRGB565 represents balanced 16-bit RGB565 true color format.
	PixelFormat16BitRGB565 = &PixelFormat{
		BPP: 16, Depth: 16, BigEndian: false, TrueColor: true,
		RedMax: 31, GreenMax: 63, BlueMax: 31,
		RedShift: 11, GreenShift: 5, BlueShift: 0,
	}

	// PixelFormat16BitRGB555 represents 16-bit RGB555 true color format.
	PixelFormat16BitRGB555 = &PixelFormat{
		BPP: 16, Depth: 15, BigEndian: false, TrueColor: true,
		RedMax: 31, GreenMax: 31, BlueMax: 31,
		RedShift: 10, GreenShift: 5, BlueShift: 0,
	}
)
