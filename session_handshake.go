// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package vnc

import (
	"context"
	"net"
)

// RFB security type identifiers.
const (
	securityTypeNone    uint8 = 1
	securityTypeVNCAuth uint8 = 2
)

// securityResult values sent at the end of VNC Authentication.
const (
	securityResultOK     uint32 = 0
	securityResultFailed uint32 = 1
)

// Connect runs the RFB handshake over conn to completion — version
// negotiation, security negotiation, and desktop initialization — then
// spawns the client message dispatch loop and starts the Update Scheduler.
// It blocks until the connection closes or ctx is canceled.
func (s *Session) Connect(ctx context.Context, conn net.Conn) error {
	s.wire = newWireCodec(conn)

	go func() {
		<-ctx.Done()
		s.wire.Close()
	}()

	if err := s.negotiateVersion(); err != nil {
		return s.failConnect(err)
	}
	s.setPhase(phaseVersionNegotiated)

	if err := s.negotiateSecurity(); err != nil {
		return s.failConnect(err)
	}
	s.setPhase(phaseSecurityNegotiated)

	if err := s.initializeDesktop(); err != nil {
		return s.failConnect(err)
	}
	s.setPhase(phaseDesktopInitialized)

	if s.onConnected != nil {
		s.onConnected()
	}

	s.setPhase(phaseRunning)
	s.cache = s.cfg.CacheFactory(s.framebuffer, s.logger)
	s.cacheBound = s.framebuffer

	done := make(chan struct{})
	go s.readLoop(done)

	s.scheduler.start(s.produceUpdate, s.MaxUpdateRate, true)

	<-done
	s.scheduler.stop()
	s.setPhase(phaseClosed)

	err := s.closeErr
	if s.onClosed != nil {
		s.onClosed(err)
	}
	return err
}

func (s *Session) failConnect(err error) error {
	s.logger.Error("connection failed", Field{Key: "error", Value: err})
	if s.onConnectionFailed != nil {
		s.onConnectionFailed(err)
	}
	s.wire.Close()
	s.setPhase(phaseClosed)
	return err
}

func (s *Session) negotiateVersion() error {
	if err := s.wire.writeVersion(protocolVersion); err != nil {
		return err
	}
	clientVersion, err := s.wire.readVersion()
	if err != nil {
		return err
	}
	if err := s.validator.ValidateProtocolVersion(clientVersion); err != nil {
		return err
	}
	s.clientVersionString = clientVersion
	return nil
}

func (s *Session) negotiateSecurity() error {
	var offered []uint8
	if s.clientVersionString == protocolVersion {
		offered = []uint8{securityTypeNone}
		if s.cfg.AuthenticationMethod == AuthPassword {
			offered = []uint8{securityTypeVNCAuth}
		}
	}

	if len(offered) > 0 {
		if err := s.validator.ValidateSecurityTypes(offered); err != nil {
			return err
		}
	}

	if err := s.wire.writeUint8(uint8(len(offered))); err != nil {
		return err
	}
	if len(offered) == 0 {
		return noAuthMethodsError("Session.negotiateSecurity", "no security type is offered for the negotiated protocol version")
	}
	for _, t := range offered {
		if err := s.wire.writeUint8(t); err != nil {
			return err
		}
	}

	chosen, err := s.wire.readUint8()
	if err != nil {
		return err
	}

	ok := false
	for _, t := range offered {
		if t == chosen {
			ok = true
			break
		}
	}
	if !ok {
		return protocolError("Session.negotiateSecurity", "client chose an unoffered security type", nil)
	}

	switch chosen {
	case securityTypeNone:
		return s.wire.writeUint32(securityResultOK)
	case securityTypeVNCAuth:
		return s.runVNCAuth()
	default:
		return protocolError("Session.negotiateSecurity", "unsupported security type", nil)
	}
}

func (s *Session) runVNCAuth() error {
	challenge, err := s.passwordChallenge.GenerateChallenge()
	if err != nil {
		return authenticationError("Session.runVNCAuth", "failed to generate challenge", err)
	}
	if err := s.wire.write(challenge); err != nil {
		return err
	}

	response := make([]byte, VNCChallengeSize)
	if err := s.wire.readFull(response); err != nil {
		return err
	}

	authenticated := false
	if s.onAuthenticate != nil {
		authenticated = s.onAuthenticate(challenge, response)
	}

	if !authenticated {
		if err := s.wire.writeUint32(securityResultFailed); err != nil {
			return err
		}
		return authenticationError("Session.runVNCAuth", "VNC authentication rejected", nil)
	}

	return s.wire.writeUint32(securityResultOK)
}

func (s *Session) initializeDesktop() error {
	shared, err := s.wire.readUint8()
	if err != nil {
		return err
	}

	if s.onCreatingDesktop != nil {
		s.onCreatingDesktop(shared != 0)
	}

	if s.source == nil {
		return sanityError("Session.initializeDesktop", "no PixelSource configured; call SetFramebufferSource before Connect")
	}
	fb, err := s.source.Capture()
	if err != nil {
		return transportError("Session.initializeDesktop", "initial framebuffer capture failed", err)
	}
	if err := s.validator.ValidateFramebufferDimensions(fb.Width, fb.Height); err != nil {
		return err
	}
	s.framebuffer = fb
	s.clientPixelFormat = fb.Format
	s.seenWidth = fb.Width
	s.seenHeight = fb.Height

	if err := s.wire.writeUint16(fb.Width); err != nil {
		return err
	}
	if err := s.wire.writeUint16(fb.Height); err != nil {
		return err
	}
	if err := s.wire.writePixelFormatBlob(fb.Format); err != nil {
		return err
	}
	return s.wire.writeText(fb.Name)
}
