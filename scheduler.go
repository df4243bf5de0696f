// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package vnc

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// updateScheduler is the single periodic worker that decides when a
// session is allowed to produce a framebuffer update. It never drives work
// itself; signal() wakes it and action() decides whether anything was
// actually sent.
type updateScheduler struct {
	action     func() bool
	rateSource func() float64

	signalCh chan struct{}
	stopCh   chan struct{}
	doneCh   chan struct{}

	limiter *rate.Limiter

	startOnce sync.Once
	stopOnce  sync.Once
	started   bool
}

func newUpdateScheduler() *updateScheduler {
	return &updateScheduler{
		signalCh: make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// start launches the worker goroutine. action is invoked on every wake and
// must return whether it actually produced an update. rateSource is sampled
// once per cycle and caps how often action may fire. If initialFire is
// true, the worker invokes action once immediately before waiting.
func (s *updateScheduler) start(action func() bool, rateSource func() float64, initialFire bool) {
	s.startOnce.Do(func() {
		s.action = action
		s.rateSource = rateSource
		s.limiter = rate.NewLimiter(rate.Limit(rateSource()), 1)
		s.started = true

		go s.run(initialFire)
	})
}

func (s *updateScheduler) run(initialFire bool) {
	defer close(s.doneCh)

	if initialFire {
		s.action()
	}

	wait := time.Duration(0)
	for {
		var timerCh <-chan time.Time
		var timer *time.Timer
		if wait > 0 {
			timer = time.NewTimer(wait)
			timerCh = timer.C
		}

		select {
		case <-s.stopCh:
			if timer != nil {
				timer.Stop()
			}
			return
		case <-s.signalCh:
			if timer != nil {
				timer.Stop()
			}
		case <-timerCh:
		}

		s.limiter.SetLimit(rate.Limit(s.rateSource()))
		if !s.limiter.Allow() {
			wait = s.nextInterval()
			continue
		}

		if s.action() {
			wait = s.nextInterval()
		} else {
			wait = 0
		}
	}
}

func (s *updateScheduler) nextInterval() time.Duration {
	hz := s.rateSource()
	if hz <= 0 {
		return time.Second
	}
	return time.Duration(float64(time.Second) / hz)
}

// signal wakes the worker. Edge-triggered and idempotent: multiple signals
// between fires collapse into one wake.
func (s *updateScheduler) signal() {
	select {
	case s.signalCh <- struct{}{}:
	default:
	}
}

// stop signals shutdown and blocks until the worker goroutine exits. A
// no-op if the scheduler was never started.
func (s *updateScheduler) stop() {
	if !s.started {
		return
	}
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
	<-s.doneCh
}
