package subscriber

import "github.com/i-melnichenko/clustersub/internal/wire"

// onControlMessage is the Control Dispatcher: a FragmentHandler passed to
// the control transport's controlled poll, decoding the SBE-style frame
// header and routing to the per-template handler.
func (s *Subscriber) onControlMessage(buf []byte, _ Header) Action {
	msgHeader, err := wire.DecodeHeader(buf)
	if err != nil {
		s.logger.Error("decode control message", "error", err)
		return ActionContinue
	}

	switch msgHeader.TemplateID {
	case wire.TemplateConsensusHeartbeat:
		hb, err := wire.DecodeConsensusHeartbeat(buf, wire.HeaderLength, msgHeader.BlockLength)
		if err != nil {
			s.logger.Error("decode consensus heartbeat", "error", err)
			return ActionContinue
		}
		return s.onConsensusHeartbeat(hb.LeaderShipTerm, hb.LeaderSessionID, hb.Position, hb.StreamStartPosition, hb.StreamPosition)
	case wire.TemplateResend:
		r, err := wire.DecodeResend(buf, wire.HeaderLength, msgHeader.BlockLength)
		if err != nil {
			s.logger.Error("decode resend", "error", err)
			return ActionContinue
		}
		return s.onResend(r.LeaderSessionID, r.LeaderShipTerm, r.StartPosition, r.StreamStartPosition, r.Body)
	default:
		s.logger.Debug("unknown control template", "template_id", msgHeader.TemplateID)
		return ActionContinue
	}
}

// onConsensusHeartbeat handles one decoded ConsensusHeartbeat. Heartbeats
// for the current term widen streamConsensusPosition; heartbeats for the
// next term either switch immediately, when the predecessor consensus
// position has already been reached, or are queued as a future ack.
// Heartbeats for any other term are ignored, except that a term strictly
// ahead of current is also worth queuing in case a resend for it never
// arrives.
func (s *Subscriber) onConsensusHeartbeat(term, leaderSessionID int32, position, streamStart, streamEnd int64) Action {
	if term == s.currentTerm {
		s.previousConsensusPosition = position
		if streamEnd > s.streamConsensusPosition {
			s.streamConsensusPosition = streamEnd
			s.metrics.SetStreamConsensusPosition(s.clusterStreamID, streamEnd)
			return ActionBreak
		}
		return ActionContinue
	}

	start := startConsensusPosition(position, streamStart, streamEnd)

	if s.isNextLeadershipTerm(term) {
		if start != s.previousConsensusPosition {
			s.saveFutureAck(FutureAck{
				Term:                term,
				LeaderSessionID:     leaderSessionID,
				StartPosition:       start,
				StreamStartPosition: streamStart,
				StreamPosition:      streamEnd,
			})
			return ActionContinue
		}
		s.switchTerms(term, leaderSessionID, start, position, streamStart, streamEnd)
		return ActionBreak
	}

	if term > s.currentTerm {
		s.saveFutureAck(FutureAck{
			Term:                term,
			LeaderSessionID:     leaderSessionID,
			StartPosition:       start,
			StreamStartPosition: streamStart,
			StreamPosition:      streamEnd,
		})
	}
	return ActionContinue
}

// onResend handles one decoded Resend by delivering its body inline,
// skipping the data transport and archive entirely for the bytes it
// carries. A resend whose startPosition matches previousConsensusPosition
// is immediately applicable; one further ahead is queued as a future ack
// keyed on its startPosition; one already behind is stale and ignored.
func (s *Subscriber) onResend(leaderSessionID, term int32, startPosition, streamStart int64, body []byte) Action {
	streamEnd := streamStart + int64(len(body))

	if startPosition == s.previousConsensusPosition {
		if term != s.currentTerm {
			s.switchTermUpdateSources(leaderSessionID)
		}

		header := Header{
			Position:      streamEnd,
			ReservedValue: wire.ReservedValue(s.clusterStreamID),
			SessionID:     leaderSessionID,
		}
		action := s.handler(body, header)
		if action == ActionAbort {
			return ActionAbort
		}

		if term != s.currentTerm {
			s.switchTermUpdatePositions(term, startPosition, startPosition+int64(len(body)), streamStart, streamEnd)
			// The resend's body is already delivered as of this call;
			// switchTermUpdatePositions resets lastAppliedPosition and
			// previousConsensusPosition to the term's start, so advance both
			// past what was just applied.
			s.lastAppliedPosition = streamEnd
			s.previousConsensusPosition = startPosition + int64(len(body))
		} else {
			s.lastAppliedPosition += int64(len(body))
			s.previousConsensusPosition += int64(len(body))
		}
		s.metrics.IncFragmentsDelivered(s.clusterStreamID, term)
		return ActionContinue
	}

	if startPosition > s.previousConsensusPosition {
		s.saveFutureAck(FutureAck{
			Term:                term,
			LeaderSessionID:     leaderSessionID,
			StartPosition:       startPosition,
			StreamStartPosition: streamStart,
			StreamPosition:      streamEnd,
		})
	}
	return ActionContinue
}

// switchTerms performs a full term transition: acquiring the new leader's
// data image and archive reader, then committing the new term's position
// state. See switchTermUpdateSources and switchTermUpdatePositions for why
// the two halves are split rather than always called together.
//
// termStartPosition is the consensus position at which the new term
// began (the predecessor key future acks and resends match against).
// committedPosition is the consensus position the triggering heartbeat or
// resend reported; it is only ever equal to termStartPosition (never
// less) but may be greater when the heartbeat has already advanced past
// the term boundary. It carries no position-state weight of its own —
// streamConsensusPosition is set from streamEnd, the new term's own
// stream-local watermark — and is kept only for the term-switch log line.
func (s *Subscriber) switchTerms(term, leaderSessionID int32, termStartPosition, committedPosition, streamStart, streamEnd int64) {
	s.switchTermUpdateSources(leaderSessionID)
	s.switchTermUpdatePositions(term, termStartPosition, committedPosition, streamStart, streamEnd)
}

// switchTermUpdateSources acquires the data image and archive session
// reader for leaderSessionID. It is idempotent and safe to call
// speculatively — e.g. a resend may call it ahead of the heartbeat that
// would otherwise trigger the switch — because it only ever replaces
// dataImage/leaderArchiveReader with a fresher lookup for the same
// session, never touches position state, and tolerates either lookup
// missing.
func (s *Subscriber) switchTermUpdateSources(leaderSessionID int32) {
	if image, ok := s.dataSub.ImageBySessionID(leaderSessionID); ok {
		s.dataImage = image
	} else {
		s.logger.Warn("no data image for leader session", "leader_session_id", leaderSessionID)
		s.dataImage = nil
	}

	if reader, ok := s.archive.Session(leaderSessionID); ok {
		s.leaderArchiveReader = reader
	} else {
		s.logger.Warn("no archive session for leader session", "leader_session_id", leaderSessionID)
		s.leaderArchiveReader = nil
		s.metrics.IncArchiveUnavailable(s.clusterStreamID)
	}
}

// switchTermUpdatePositions commits the new term's position state. Unlike
// switchTermUpdateSources, this is not reentrant: calling it twice for the
// same transition would double-count the term switch and must not happen.
// It is the caller's responsibility to invoke it exactly once per term.
func (s *Subscriber) switchTermUpdatePositions(term int32, termStartPosition, committedPosition, streamStart, streamEnd int64) {
	s.currentTerm = term
	s.previousConsensusPosition = termStartPosition
	s.streamConsensusPosition = streamEnd
	s.lastAppliedPosition = streamStart

	s.logger.Info("leadership term switch",
		"term", term,
		"term_start_position", termStartPosition,
		"committed_position", committedPosition,
		"stream_start", streamStart,
		"stream_end", streamEnd,
	)
	s.metrics.SetStreamConsensusPosition(s.clusterStreamID, s.streamConsensusPosition)
	s.metrics.IncTermSwitch(s.clusterStreamID, term)
}
