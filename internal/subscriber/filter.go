package subscriber

import "github.com/i-melnichenko/clustersub/internal/wire"

// filterFragment is the Message Filter: a stateful fragment handler that
// gates data-transport fragments by committed position, cluster-stream
// tag, and leader-applied watermark, invoking the caller's handler only
// for fragments that should actually be delivered.
//
// Fragments are assumed aligned to term boundaries — a single fragment
// never straddles two terms.
func (s *Subscriber) filterFragment(buf []byte, header Header) Action {
	length := int64(len(buf))
	fragmentStartPosition := header.Position - length
	tag := wire.ClusterStreamID(header.ReservedValue)

	s.logger.Debug("filter fragment",
		"header_position", header.Position,
		"stream_consensus_position", s.streamConsensusPosition,
		"our_cluster_stream_id", s.clusterStreamID,
		"fragment_cluster_stream_id", tag,
	)

	// Consensus hasn't committed this far yet.
	if header.Position > s.streamConsensusPosition {
		return ActionAbort
	}

	// Bytes published on the leader's publication before it was leader, or
	// already delivered: skip, never deliver.
	if fragmentStartPosition < s.lastAppliedPosition {
		s.metrics.IncFragmentsSkippedStaleLeader(s.clusterStreamID, s.currentTerm)
		return ActionContinue
	}

	if tag != s.clusterStreamID {
		return ActionContinue
	}

	// Consensus heartbeats occasionally ride the data stream as in-band
	// control noise; they are never application fragments.
	if isConsensusHeartbeatFrame(buf) {
		return ActionContinue
	}

	action := s.handler(buf, header)
	if action != ActionAbort {
		s.lastAppliedPosition += length
		// previousConsensusPosition must stay in lockstep with
		// lastAppliedPosition — it is the predecessor key the next term's
		// heartbeat or resend matches against — regardless of whether
		// bytes reach the caller via the live path here or via onResend.
		s.previousConsensusPosition += length
		s.metrics.IncFragmentsDelivered(s.clusterStreamID, s.currentTerm)
		s.metrics.SetLastAppliedPosition(s.clusterStreamID, s.lastAppliedPosition)
	}
	return action
}

// isConsensusHeartbeatFrame peeks the SBE-style template id at the start
// of buf without decoding the rest of the message. A buffer too short to
// carry a MessageHeader cannot be a heartbeat.
func isConsensusHeartbeatFrame(buf []byte) bool {
	header, err := wire.DecodeHeader(buf)
	if err != nil {
		return false
	}
	return header.TemplateID == wire.TemplateConsensusHeartbeat
}
