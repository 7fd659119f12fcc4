package subscriber

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
)

// readFromArchive is the Archive Catch-Up component: when the live data
// transport's image cannot currently make progress, it replays whatever
// consensus has committed but not yet applied from the current leader's
// archived session instead of blocking on the transport to produce more
// fragments. The replay range is bounded only by what is committed, never
// by the live image's position — the image may be empty or far behind, and
// that is exactly the situation this path exists to cover.
//
// It reports no count of its own; Poll's caller-visible return value for an
// archive-driven poll is the fixed sentinel 1 (one unit of backlog work
// done), not the number of fragments replayed, matching the contract the
// archive reader is modeled on.
func (s *Subscriber) readFromArchive(limit int) {
	_, span := s.startSpan(context.Background(), "subscriber.archive_catch_up")
	defer span.End()

	if s.leaderArchiveReader == nil {
		s.metrics.IncArchiveUnavailable(s.clusterStreamID)
		return
	}

	from := s.lastAppliedPosition
	to := s.streamConsensusPosition
	span.SetAttributes(attribute.Int64("subscriber.archive_from", from), attribute.Int64("subscriber.archive_to", to))
	if to <= from {
		return
	}

	delivered := 0
	wrapped := func(buf []byte, header Header) Action {
		if delivered >= limit {
			return ActionAbort
		}
		action := s.filterFragment(buf, header)
		if action != ActionAbort {
			delivered++
		}
		return action
	}

	reached, err := s.leaderArchiveReader.ReadUpTo(from, to, wrapped)
	if err != nil {
		s.lastErr = err
		spanRecordError(span, err)
		s.logger.Error("archive read failed", "error", err, "from", from, "to", to)
		return
	}

	if reached > from {
		s.metrics.IncArchiveCatchUp(s.clusterStreamID, reached-from)
	}
}
