// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

// Package vnc implements the server side of a Remote Framebuffer (RFB/VNC)
// session: version and security negotiation, desktop initialization, client
// message dispatch, and framebuffer-update encoding, driven over a
// transport the embedder has already established.
//
// # Basic Usage
//
//	ln, err := net.Listen("tcp", ":5900")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	for {
//		conn, err := ln.Accept()
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		session := vnc.NewSession(
//			vnc.WithLogger(&vnc.StandardLogger{}),
//			vnc.WithAuthenticationMethod(vnc.AuthNone),
//		)
//		session.SetFramebufferSource(mySource)
//		if err := session.Connect(context.Background(), conn); err != nil {
//			log.Printf("session failed: %v", err)
//			continue
//		}
//	}
//
// # Framebuffer updates
//
// The session pulls pixels from a PixelSource on demand, diffs them
// line-by-line against a shadow cache, and sends only the changed
// scanlines, coalesced into vertical runs. FramebufferChanged is a cheap
// hint; the Update Scheduler never sends faster than MaxUpdateRate.
//
// # Manual update assembly
//
// Embedders that want to bypass the cache for a given update can do so from
// inside a FramebufferUpdating callback:
//
//	session.OnFramebufferUpdating(func(ev *vnc.UpdateEvent) {
//		ev.Handled = true
//		session.FramebufferManualBeginUpdate()
//		session.FramebufferManualCopyRegion(vnc.Rect(0, 0, 64, 64), 640, 0)
//		session.FramebufferManualEndUpdate()
//	})
//
// # Error handling
//
//	if vnc.IsRFBError(err, vnc.CodeAuthenticationFailed) {
//		log.Printf("authentication failed: %v", err)
//	}
package vnc
