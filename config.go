// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package vnc

// AuthenticationMethod selects which RFB security type a session offers
// during negotiation.
type AuthenticationMethod int

const (
	// AuthNone offers only security type 1 (None).
	AuthNone AuthenticationMethod = iota
	// AuthPassword offers only security type 2 (VNC Authentication).
	AuthPassword
)

// defaultMaxUpdateRate is the frames-per-second cap a session starts with.
const defaultMaxUpdateRate = 15.0

// ServerConfig configures a Session's behavior.
type ServerConfig struct {
	Logger  Logger
	Metrics MetricsCollector

	AuthenticationMethod AuthenticationMethod
	PasswordChallenge    PasswordChallenge

	MaxUpdateRate float64

	// CacheFactory constructs the Framebuffer Cache bound to a framebuffer.
	// Overridable so embedders can swap in an alternate cache implementation.
	CacheFactory func(fb *Framebuffer, logger Logger) framebufferCacher

	// CompressionEncodings lists non-Raw encoding tags (RRE, Hextile, ...)
	// FramebufferManualInvalidateCompressed may pick when the client has
	// also advertised support for the tag. The mandatory cache/diff path
	// never consults this; it always emits Raw.
	CompressionEncodings []int32
}

// framebufferCacher is the interface the Session engine drives the
// Framebuffer Cache component through, letting an embedder substitute a
// different cache implementation via CacheFactory.
type framebufferCacher interface {
	respondToUpdateRequest(s *Session) bool
	rebind(fb *Framebuffer)
}

// ServerOption represents a functional option for configuring a Session.
type ServerOption func(*ServerConfig)

// WithLogger sets the logger for the session.
func WithLogger(logger Logger) ServerOption {
	return func(cfg *ServerConfig) {
		cfg.Logger = logger
	}
}

// WithMetrics sets the metrics collector for the session.
func WithMetrics(metrics MetricsCollector) ServerOption {
	return func(cfg *ServerConfig) {
		cfg.Metrics = metrics
	}
}

// WithAuthenticationMethod selects which security type the session offers.
func WithAuthenticationMethod(method AuthenticationMethod) ServerOption {
	return func(cfg *ServerConfig) {
		cfg.AuthenticationMethod = method
	}
}

// WithPasswordChallenge sets the pluggable challenge generator used for
// VNC Authentication. May only take effect before security negotiation;
// Session.SetPasswordChallenge enforces that at runtime.
func WithPasswordChallenge(pc PasswordChallenge) ServerOption {
	return func(cfg *ServerConfig) {
		cfg.PasswordChallenge = pc
	}
}

// WithMaxUpdateRate sets the initial frames-per-second cap. Values <= 0 are
// ignored; use Session.SetMaxUpdateRate to change it after construction.
func WithMaxUpdateRate(hz float64) ServerOption {
	return func(cfg *ServerConfig) {
		if hz > 0 {
			cfg.MaxUpdateRate = hz
		}
	}
}

// WithCacheFactory overrides the Framebuffer Cache construction.
func WithCacheFactory(factory func(fb *Framebuffer, logger Logger) framebufferCacher) ServerOption {
	return func(cfg *ServerConfig) {
		cfg.CacheFactory = factory
	}
}

// WithCompressionEncodings enables RRE/Hextile as candidates for
// FramebufferManualInvalidateCompressed, tried whenever the client has
// advertised the matching tag via SetEncodings.
func WithCompressionEncodings(tags ...int32) ServerOption {
	return func(cfg *ServerConfig) {
		cfg.CompressionEncodings = append([]int32(nil), tags...)
	}
}

func defaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Logger:                &NoOpLogger{},
		Metrics:               &NoOpMetrics{},
		AuthenticationMethod:  AuthNone,
		PasswordChallenge:     newSecureChallengeGenerator(),
		MaxUpdateRate:         defaultMaxUpdateRate,
		CacheFactory: func(fb *Framebuffer, logger Logger) framebufferCacher {
			return newFramebufferCache(fb, logger)
		},
	}
}
