// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package vnc

import (
	"sync"

	"github.com/google/uuid"
)

// sessionPhase tracks a Session's progress through the handshake and
// lifetime of a connection.
type sessionPhase int

const (
	phaseFresh sessionPhase = iota
	phaseVersionNegotiated
	phaseSecurityNegotiated
	phaseDesktopInitialized
	phaseRunning
	phaseClosed
)

// Client-to-server message type tags.
const (
	clientMsgSetPixelFormat           = 0
	clientMsgSetEncodings             = 2
	clientMsgFramebufferUpdateRequest = 3
	clientMsgKeyEvent                 = 4
	clientMsgPointerEvent             = 5
	clientMsgClientCutText            = 6
)

// maxEncodingsPerMessage bounds a single SetEncodings message, matching the
// uint16 count field's practical ceiling for any client that isn't
// malicious.
const maxEncodingsPerMessage = 511

// maxPendingRects is the rectangle count a FramebufferUpdate message is
// flushed at, one short of the uint16 count field's range so a
// PseudoDesktopSize rectangle prepended at EndUpdate always has room.
const maxPendingRects = 65534

// FramebufferUpdateRequest records a client's most recent request for
// fresh pixels.
type FramebufferUpdateRequest struct {
	Incremental bool
	Region      Rectangle
}

// UpdateEvent is passed to the FramebufferUpdating callback. Setting
// Handled to true tells the session the embedder assembled the update
// itself via the FramebufferManual* methods, bypassing the Framebuffer
// Cache for this cycle.
type UpdateEvent struct {
	Handled bool
}

// KeyEvent describes a KeyEvent message from the client.
type KeyEvent struct {
	Down   bool
	Keysym uint32
}

// PointerEvent describes a PointerEvent message from the client.
type PointerEvent struct {
	ButtonMask uint8
	X, Y       uint16
}

// pendingRect is one rectangle queued for the next FramebufferUpdate
// message, already encoded.
type pendingRect struct {
	Region   Rectangle
	Encoding int32
	Payload  []byte
}

// Session drives one RFB/VNC connection from handshake through teardown.
// A Session is not reusable across connections; call NewSession for each.
type Session struct {
	id     uuid.UUID
	logger Logger
	cfg    *ServerConfig

	validator *InputValidator

	wire *wireCodec

	phaseLock sync.Mutex
	phase     sessionPhase

	source PixelSource

	// clientVersionString is the 12-byte banner read during version
	// negotiation; only "RFB 003.008\n" unlocks any security type.
	clientVersionString string

	// framebuffer is read under updateRequestLock when swapping instances;
	// its own SyncRoot guards pixel contents.
	framebuffer *Framebuffer

	clientPixelFormat PixelFormat
	seenWidth         uint16
	seenHeight        uint16

	clientEncodings *clientEncodingSet

	// updateRequestLock guards pendingRequest, the client's last observed
	// dimensions, clientEncodings, clientPixelFormat, and pendingRects. The
	// lock order documented across this package is
	// updateRequestLock -> framebuffer.SyncRoot -> cache internals ->
	// wire.streamWriteLock; this field is always acquired first.
	updateRequestLock sync.Mutex
	pendingRequest    *FramebufferUpdateRequest
	pendingRects      []pendingRect
	assembling        bool
	lastManualResult  bool

	cache      framebufferCacher
	cacheBound *Framebuffer

	scheduler *updateScheduler

	passwordChallenge PasswordChallenge

	closeOnce sync.Once
	closeErr  error

	onAuthenticate           func(challenge, response []byte) bool
	onCreatingDesktop        func(shared bool)
	onConnected              func()
	onConnectionFailed       func(err error)
	onClosed                 func(err error)
	onFramebufferCapturing   func()
	onFramebufferUpdating    func(ev *UpdateEvent)
	onKeyChanged             func(ev KeyEvent)
	onPointerChanged         func(ev PointerEvent)
	onRemoteClipboardChanged func(text string)
}

// NewSession constructs a Session ready to Connect. Options are applied
// over sensible defaults; see the With* functions.
func NewSession(opts ...ServerOption) *Session {
	cfg := defaultServerConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	id := uuid.New()
	return &Session{
		id:                id,
		logger:            cfg.Logger.With(Field{Key: "session_id", Value: id.String()}),
		cfg:               cfg,
		validator:         newInputValidator(),
		phase:             phaseFresh,
		clientEncodings:   newClientEncodingSet(),
		passwordChallenge: cfg.PasswordChallenge,
		scheduler:         newUpdateScheduler(),
	}
}

// SetFramebufferSource sets the PixelSource the session captures from on
// every scheduled update cycle.
func (s *Session) SetFramebufferSource(source PixelSource) {
	s.updateRequestLock.Lock()
	defer s.updateRequestLock.Unlock()
	s.source = source
}

// SetMaxUpdateRate changes the frames-per-second cap the Update Scheduler
// enforces. Safe to call at any time, including from within callbacks.
// Fails with InvalidArgument, leaving the cap unchanged, when hz <= 0.
func (s *Session) SetMaxUpdateRate(hz float64) error {
	if hz <= 0 {
		return invalidArgumentError("Session.SetMaxUpdateRate", "MaxUpdateRate must be positive")
	}
	s.updateRequestLock.Lock()
	defer s.updateRequestLock.Unlock()
	s.cfg.MaxUpdateRate = hz
	return nil
}

// MaxUpdateRate returns the current frames-per-second cap.
func (s *Session) MaxUpdateRate() float64 {
	s.updateRequestLock.Lock()
	defer s.updateRequestLock.Unlock()
	return s.cfg.MaxUpdateRate
}

// SetPasswordChallenge overrides the challenge generator used for VNC
// Authentication. Only takes effect before security negotiation completes;
// called afterward, it fails with InvalidArgument and leaves the provider
// unchanged.
func (s *Session) SetPasswordChallenge(pc PasswordChallenge) error {
	s.phaseLock.Lock()
	defer s.phaseLock.Unlock()
	if s.phase >= phaseSecurityNegotiated {
		return invalidArgumentError("Session.SetPasswordChallenge", "security already negotiated")
	}
	s.passwordChallenge = pc
	return nil
}

// FramebufferChanged is a cheap hint that fresh pixels are available,
// waking the Update Scheduler early instead of waiting for its next tick.
func (s *Session) FramebufferChanged() {
	if s.scheduler != nil {
		s.scheduler.signal()
	}
}

// OnAuthenticate sets the callback invoked with the VNC Authentication
// challenge this session sent and the client's encrypted response. The
// embedder typically calls VerifyVNCResponse with the password it expects
// and returns the result.
func (s *Session) OnAuthenticate(fn func(challenge, response []byte) bool) { s.onAuthenticate = fn }
func (s *Session) OnCreatingDesktop(fn func(shared bool))                  { s.onCreatingDesktop = fn }
func (s *Session) OnConnected(fn func())                                   { s.onConnected = fn }
func (s *Session) OnConnectionFailed(fn func(err error))                   { s.onConnectionFailed = fn }
func (s *Session) OnClosed(fn func(err error))                             { s.onClosed = fn }
func (s *Session) OnFramebufferCapturing(fn func())                        { s.onFramebufferCapturing = fn }
func (s *Session) OnFramebufferUpdating(fn func(ev *UpdateEvent))          { s.onFramebufferUpdating = fn }
func (s *Session) OnKeyChanged(fn func(ev KeyEvent))                       { s.onKeyChanged = fn }
func (s *Session) OnPointerChanged(fn func(ev PointerEvent))               { s.onPointerChanged = fn }
func (s *Session) OnRemoteClipboardChanged(fn func(text string))           { s.onRemoteClipboardChanged = fn }

func (s *Session) setPhase(p sessionPhase) {
	s.phaseLock.Lock()
	s.phase = p
	s.phaseLock.Unlock()
}
