// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package vnc

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWireCodecRectangleRoundTrip(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	sw := newWireCodec(server)
	cw := newWireCodec(client)

	want := Rect(1, 2, 3, 4)
	go func() {
		_ = sw.writeRectangle(want)
	}()

	got, err := cw.readRectangle()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestWireCodecPixelFormatRoundTrip(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	sw := newWireCodec(server)
	cw := newWireCodec(client)

	want := *PixelFormat16BitRGB565
	go func() {
		_ = sw.writePixelFormatBlob(want)
	}()

	got, err := cw.readPixelFormatBlob()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestWireCodecVersionRejectsWrongLength(t *testing.T) {
	server, _ := net.Pipe()
	defer server.Close()
	sw := newWireCodec(server)

	err := sw.writeVersion("short")
	assert.True(t, IsRFBError(err, CodeSanityCheck))
}

func TestWireCodecTextRoundTrip(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	sw := newWireCodec(server)
	cw := newWireCodec(client)

	go func() {
		_ = sw.writeText("hello framebuffer")
	}()

	got, err := cw.readText(1024)
	require.NoError(t, err)
	assert.Equal(t, "hello framebuffer", got)
}

func TestWireCodecCloseIsIdempotent(t *testing.T) {
	server, _ := net.Pipe()
	w := newWireCodec(server)
	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}
