// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package vnc

// Close shuts down the session's connection, unblocking whatever
// goroutine is inside Connect. It never waits for that goroutine to
// finish, so it is always safe to call from inside an embedder callback
// running on the reader thread itself as well as from any other
// goroutine. Connect's return value reports nil on a Close-initiated
// shutdown and the triggering error otherwise.
func (s *Session) Close() error {
	s.terminate(nil)
	return nil
}

// terminate records the first error that ends the session and closes the
// underlying connection, unblocking the reader loop's next read. Safe to
// call more than once; only the first call's error is kept.
func (s *Session) terminate(err error) {
	s.closeOnce.Do(func() {
		s.closeErr = err
		if s.wire != nil {
			s.wire.Close()
		}
	})
}
