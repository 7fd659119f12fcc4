package subscriber

// This file implements the Position Arithmetic component: mapping between
// consensus positions and per-publication stream positions, and detecting
// term boundaries.
//
// Two position spaces coexist: consensus position (p), a cluster-global
// byte offset into the logical replicated log, and stream position (s), a
// byte offset into a specific leader's publication on the data transport.
// For a heartbeat carrying (term, leaderSessionId, p, sStart, sEnd), the
// invariant is p - (sEnd - sStart) == startConsensusPosition(term).

// streamLength returns the width of a stream-position range.
func streamLength(streamStart, streamEnd int64) int64 {
	return streamEnd - streamStart
}

// startConsensusPosition computes the consensus position at which a term
// began, given a heartbeat's (position, streamStart, streamEnd).
func startConsensusPosition(position, streamStart, streamEnd int64) int64 {
	return position - streamLength(streamStart, streamEnd)
}

// isNextLeadershipTerm reports whether term is the term this subscriber
// should treat as "next": either the immediate successor of currentTerm,
// or — per the open question recorded in DESIGN.md — any term at all if no
// data image has been acquired yet, which lets the very first heartbeat or
// resend bootstrap the subscriber regardless of term number.
func (s *Subscriber) isNextLeadershipTerm(term int32) bool {
	if term == s.currentTerm+1 {
		return true
	}
	if s.dataImage == nil {
		if term != 1 {
			s.logger.Warn("bootstrapping off non-initial leadership term",
				"term", term,
			)
		}
		return true
	}
	return false
}

// cannotAdvance reports whether the data transport cannot currently make
// forward progress: either no leader image has been acquired, or the
// image's consumed position has already reached streamConsensusPosition,
// so a live poll could not deliver anything consensus has committed.
func (s *Subscriber) cannotAdvance() bool {
	return s.dataImage == nil || s.streamConsensusPosition <= s.dataImage.Position()
}

// appliedBehindConsensus reports whether there is a committed range that
// has not yet been applied to the caller, i.e. the archive has something
// useful to replay.
func (s *Subscriber) appliedBehindConsensus() bool {
	return s.streamConsensusPosition-s.lastAppliedPosition > 0
}
