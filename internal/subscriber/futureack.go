package subscriber

import "container/heap"

// futureAckQueue is a min-heap of FutureAck keyed by StartPosition
// ascending, ties broken by Term ascending. Resends and gapped heartbeats
// may announce overlapping terms at different consensus offsets, which is
// why the heap keys on StartPosition (the unique predecessor key) rather
// than Term.
type futureAckQueue []FutureAck

func (q futureAckQueue) Len() int { return len(q) }

func (q futureAckQueue) Less(i, j int) bool {
	if q[i].StartPosition != q[j].StartPosition {
		return q[i].StartPosition < q[j].StartPosition
	}
	return q[i].Term < q[j].Term
}

func (q futureAckQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *futureAckQueue) Push(x any) {
	*q = append(*q, x.(FutureAck))
}

func (q *futureAckQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// saveFutureAck enqueues ack, deduplicating on (Term, StartPosition) so
// that re-announcing the same pending term switch twice has the same
// effect as announcing it once (property 4 in spec.md §8).
func (s *Subscriber) saveFutureAck(ack FutureAck) {
	for _, existing := range s.futureAcks {
		if existing.Term == ack.Term && existing.StartPosition == ack.StartPosition {
			return
		}
	}
	heap.Push(&s.futureAcks, ack)
	s.metrics.IncFutureAckQueued(s.clusterStreamID)
	s.logger.Debug("future ack queued",
		"term", ack.Term,
		"leader_session_id", ack.LeaderSessionID,
		"start_position", ack.StartPosition,
	)
}

// applyMatchingFutureAck pops and applies the queue head as a term switch
// if its StartPosition equals previousConsensusPosition, per spec.md §4.B.
// It reports whether a switch was applied.
func (s *Subscriber) applyMatchingFutureAck() bool {
	if len(s.futureAcks) == 0 {
		return false
	}
	ack := s.futureAcks[0]
	if ack.StartPosition != s.previousConsensusPosition {
		return false
	}

	heap.Pop(&s.futureAcks)
	s.metrics.IncFutureAckApplied(s.clusterStreamID)
	s.logger.Debug("future ack applied as term switch",
		"term", ack.Term,
		"leader_session_id", ack.LeaderSessionID,
		"start_position", ack.StartPosition,
	)

	// A future ack does not retain the raw committed position its
	// triggering heartbeat carried, only the term-start position both
	// sides agree on — so StartPosition is passed as committedPosition too.
	// switchTerms uses that argument only for its log line.
	s.switchTerms(ack.Term, ack.LeaderSessionID, ack.StartPosition, ack.StartPosition, ack.StreamStartPosition, ack.StreamPosition)
	return true
}
