package subscriber

// Metrics captures subscriber-layer metric sinks. Implementations must be
// safe to call from the single goroutine that owns the Subscriber; no
// concurrent-use guarantee is required since the Subscriber itself makes
// none.
type Metrics interface {
	IncFragmentsDelivered(clusterStreamID int32, term int32)
	IncFragmentsSkippedStaleLeader(clusterStreamID int32, term int32)
	IncTermSwitch(clusterStreamID int32, term int32)
	IncFutureAckQueued(clusterStreamID int32)
	IncFutureAckApplied(clusterStreamID int32)
	IncArchiveCatchUp(clusterStreamID int32, bytes int64)
	IncArchiveUnavailable(clusterStreamID int32)
	SetStreamConsensusPosition(clusterStreamID int32, pos int64)
	SetLastAppliedPosition(clusterStreamID int32, pos int64)
}

type noopMetrics struct{}

func (noopMetrics) IncFragmentsDelivered(int32, int32)           {}
func (noopMetrics) IncFragmentsSkippedStaleLeader(int32, int32)  {}
func (noopMetrics) IncTermSwitch(int32, int32)                   {}
func (noopMetrics) IncFutureAckQueued(int32)                     {}
func (noopMetrics) IncFutureAckApplied(int32)                    {}
func (noopMetrics) IncArchiveCatchUp(int32, int64)                {}
func (noopMetrics) IncArchiveUnavailable(int32)                  {}
func (noopMetrics) SetStreamConsensusPosition(int32, int64)      {}
func (noopMetrics) SetLastAppliedPosition(int32, int64)          {}
