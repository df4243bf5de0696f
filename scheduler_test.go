// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package vnc

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSchedulerSignalTriggersAction(t *testing.T) {
	var fired int32
	s := newUpdateScheduler()
	s.start(func() bool {
		atomic.AddInt32(&fired, 1)
		return false
	}, func() float64 { return 30 }, false)
	defer s.stop()

	s.signal()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&fired) >= 1
	}, time.Second, 5*time.Millisecond)
}

func TestSchedulerInitialFire(t *testing.T) {
	var fired int32
	s := newUpdateScheduler()
	s.start(func() bool {
		atomic.AddInt32(&fired, 1)
		return false
	}, func() float64 { return 1 }, true)
	defer s.stop()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&fired) >= 1
	}, time.Second, 5*time.Millisecond)
}

func TestSchedulerStopIsIdempotentWhenNeverStarted(t *testing.T) {
	s := newUpdateScheduler()
	assert.NotPanics(t, func() {
		s.stop()
		s.stop()
	})
}
