// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package vnc

import "sync"

// Rectangle identifies a rectangular region of a framebuffer in pixel
// coordinates.
type Rectangle struct {
	X, Y          uint16
	Width, Height uint16
}

// Rect constructs a Rectangle from its four components.
func Rect(x, y, width, height uint16) Rectangle {
	return Rectangle{X: x, Y: y, Width: width, Height: height}
}

// Area returns width*height as a uint32, never overflowing a uint16.
func (r Rectangle) Area() uint32 {
	return uint32(r.Width) * uint32(r.Height)
}

// PixelSource supplies framebuffer pixel data to a Session on demand. A
// PixelSource is asked to Capture a full frame whenever the session's
// update scheduler decides a client should receive fresh pixels.
type PixelSource interface {
	// Capture fills and returns the current contents of the framebuffer.
	// Implementations may return the same backing buffer on every call;
	// the session only reads it while holding the framebuffer's SyncRoot.
	Capture() (*Framebuffer, error)
}

// Framebuffer holds the pixel data a session serves to its client, along
// with the desktop name and pixel format advertised during the handshake.
type Framebuffer struct {
	// SyncRoot guards Buffer and the dimension fields below. Callers that
	// mutate or read Buffer directly must hold SyncRoot; Session methods
	// that accept a Framebuffer acquire it internally.
	SyncRoot sync.Mutex

	Width  uint16
	Height uint16
	Stride int

	Format PixelFormat
	Name   string

	// Buffer holds Height rows of Stride bytes each, Format-encoded.
	Buffer []byte
}

// NewFramebuffer allocates a Framebuffer with a zeroed buffer sized for
// width x height pixels in the given format.
func NewFramebuffer(width, height uint16, format PixelFormat, name string) *Framebuffer {
	stride := int(width) * format.BytesPerPixel()
	return &Framebuffer{
		Width:  width,
		Height: height,
		Stride: stride,
		Format: format,
		Name:   name,
		Buffer: make([]byte, stride*int(height)),
	}
}

// Resize reallocates the framebuffer's buffer for new dimensions, discarding
// prior contents. Callers must hold SyncRoot.
func (f *Framebuffer) Resize(width, height uint16) {
	f.Width = width
	f.Height = height
	f.Stride = int(width) * f.Format.BytesPerPixel()
	f.Buffer = make([]byte, f.Stride*int(height))
}

// bounds returns the full-framebuffer rectangle.
func (f *Framebuffer) bounds() Rectangle {
	return Rect(0, 0, f.Width, f.Height)
}
