package subscriber

import "context"

// Poll is the single entry point. If live data cannot currently advance, it
// first tries a queued future ack that is now reachable; failing that, it
// drains the control transport (which may itself trigger a term switch or
// enqueue a future ack) and, if data is still stuck afterward, falls back
// to the archive. Otherwise — and after a term switch or archive read that
// unblocked it — it pulls from the data transport through the message
// filter, which invokes handler for accepted fragments only. It never
// blocks. It returns the fixed value 1 when it replayed from the archive
// because data was still stuck after draining control; otherwise it returns
// the number of fragments the data image consumed, which counts fragments
// the filter skipped as well as those delivered to handler.
//
// LastErr reports the most recent internal error (currently only archive
// read failures) encountered while servicing this call.
func (s *Subscriber) Poll(handler FragmentHandler, limit int) int {
	s.lastErr = nil
	s.handler = handler

	if s.cannotAdvance() {
		if !s.applyMatchingFutureAck() {
			_, controlSpan := s.startSpan(context.Background(), "subscriber.control_dispatch")
			s.controlSub.ControlledPoll(s.onControlMessage, limit)
			controlSpan.End()

			if s.cannotAdvance() {
				if s.leaderArchiveReader != nil && s.appliedBehindConsensus() {
					s.readFromArchive(limit)
					return 1
				}
				return 0
			}
		}

		if s.cannotAdvance() && s.leaderArchiveReader != nil {
			s.readFromArchive(limit)
		}
	}

	if s.dataImage == nil {
		return 0
	}

	return s.dataImage.ControlledPoll(s.filterFragment, limit)
}
