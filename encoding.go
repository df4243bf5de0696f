// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package vnc

// Encoding tags this session may emit. Values match RFC 6143 (positive
// tags) and its pseudo-encoding extensions (negative tags).
const (
	EncodingRaw              int32 = 0
	EncodingCopyRect         int32 = 1
	EncodingRRE              int32 = 2
	EncodingHextile          int32 = 5
	EncodingPseudoDesktopSize int32 = -223
	EncodingCursor           int32 = -239
)

// clientEncodingSet tracks the encoding tags a client most recently
// advertised via SetEncodings, in arrival order. Until the client sends
// SetEncodings the set is empty, so CopyRect and PseudoDesktopSize are
// unavailable even though the session otherwise supports them.
type clientEncodingSet struct {
	tags []int32
	has  map[int32]bool
}

func newClientEncodingSet() *clientEncodingSet {
	return &clientEncodingSet{has: make(map[int32]bool)}
}

// replace discards the prior set and records tags as the client's current
// encoding support.
func (s *clientEncodingSet) replace(tags []int32) {
	s.tags = append([]int32(nil), tags...)
	s.has = make(map[int32]bool, len(tags))
	for _, t := range tags {
		s.has[t] = true
	}
}

// supports reports whether the client has advertised tag.
func (s *clientEncodingSet) supports(tag int32) bool {
	return s.has[tag]
}
