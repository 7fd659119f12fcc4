//revive:disable:var-naming
//revive:disable:exported
package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus exposes subscriber metrics and implements internal/subscriber.Metrics
// through method set compatibility, without that package importing this one.
type Prometheus struct {
	fragmentsDeliveredTotal     *prometheus.CounterVec
	fragmentsSkippedStaleTotal  *prometheus.CounterVec
	termSwitchTotal             *prometheus.CounterVec
	futureAckQueuedTotal        *prometheus.CounterVec
	futureAckAppliedTotal       *prometheus.CounterVec
	archiveCatchUpBytesTotal    *prometheus.CounterVec
	archiveUnavailableTotal     *prometheus.CounterVec
	streamConsensusPosition     *prometheus.GaugeVec
	lastAppliedPosition         *prometheus.GaugeVec
}

func NewPrometheus(reg prometheus.Registerer) (*Prometheus, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Prometheus{
		fragmentsDeliveredTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "clustersub",
				Subsystem: "subscriber",
				Name:      "fragments_delivered_total",
				Help:      "Application fragments delivered to the handler, by cluster stream and term.",
			},
			[]string{"cluster_stream_id", "term"},
		),
		fragmentsSkippedStaleTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "clustersub",
				Subsystem: "subscriber",
				Name:      "fragments_skipped_stale_leader_total",
				Help:      "Fragments skipped because they start before the last applied position (published before the leader's term, or already delivered).",
			},
			[]string{"cluster_stream_id", "term"},
		),
		termSwitchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "clustersub",
				Subsystem: "subscriber",
				Name:      "term_switch_total",
				Help:      "Leadership term switches observed, by resulting term.",
			},
			[]string{"cluster_stream_id", "term"},
		),
		futureAckQueuedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "clustersub",
				Subsystem: "subscriber",
				Name:      "future_ack_queued_total",
				Help:      "Future acks queued pending an earlier term switch arriving.",
			},
			[]string{"cluster_stream_id"},
		),
		futureAckAppliedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "clustersub",
				Subsystem: "subscriber",
				Name:      "future_ack_applied_total",
				Help:      "Queued future acks drained and applied as a term switch.",
			},
			[]string{"cluster_stream_id"},
		),
		archiveCatchUpBytesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "clustersub",
				Subsystem: "subscriber",
				Name:      "archive_catch_up_bytes_total",
				Help:      "Bytes replayed from the archive fallback path.",
			},
			[]string{"cluster_stream_id"},
		),
		archiveUnavailableTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "clustersub",
				Subsystem: "subscriber",
				Name:      "archive_unavailable_total",
				Help:      "Term switches for which no archive session reader could be acquired.",
			},
			[]string{"cluster_stream_id"},
		),
		streamConsensusPosition: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "clustersub",
				Subsystem: "subscriber",
				Name:      "stream_consensus_position",
				Help:      "Highest stream position of the current term known committed for a cluster stream.",
			},
			[]string{"cluster_stream_id"},
		),
		lastAppliedPosition: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "clustersub",
				Subsystem: "subscriber",
				Name:      "last_applied_position",
				Help:      "Stream position of the last fragment applied to the handler.",
			},
			[]string{"cluster_stream_id"},
		),
	}

	if err := m.register(reg); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Prometheus) register(reg prometheus.Registerer) error {
	if err := registerOrReuseCounterVec(reg, &m.fragmentsDeliveredTotal); err != nil {
		return fmt.Errorf("register fragments delivered counter: %w", err)
	}
	if err := registerOrReuseCounterVec(reg, &m.fragmentsSkippedStaleTotal); err != nil {
		return fmt.Errorf("register fragments skipped counter: %w", err)
	}
	if err := registerOrReuseCounterVec(reg, &m.termSwitchTotal); err != nil {
		return fmt.Errorf("register term switch counter: %w", err)
	}
	if err := registerOrReuseCounterVec(reg, &m.futureAckQueuedTotal); err != nil {
		return fmt.Errorf("register future ack queued counter: %w", err)
	}
	if err := registerOrReuseCounterVec(reg, &m.futureAckAppliedTotal); err != nil {
		return fmt.Errorf("register future ack applied counter: %w", err)
	}
	if err := registerOrReuseCounterVec(reg, &m.archiveCatchUpBytesTotal); err != nil {
		return fmt.Errorf("register archive catch-up counter: %w", err)
	}
	if err := registerOrReuseCounterVec(reg, &m.archiveUnavailableTotal); err != nil {
		return fmt.Errorf("register archive unavailable counter: %w", err)
	}
	if err := registerOrReuseGaugeVec(reg, &m.streamConsensusPosition); err != nil {
		return fmt.Errorf("register stream consensus position gauge: %w", err)
	}
	if err := registerOrReuseGaugeVec(reg, &m.lastAppliedPosition); err != nil {
		return fmt.Errorf("register last applied position gauge: %w", err)
	}
	return nil
}

func registerOrReuseCounterVec(reg prometheus.Registerer, c **prometheus.CounterVec) error {
	if err := reg.Register(*c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return err
		}
		existing, ok := already.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return fmt.Errorf("collector type mismatch for %T", *c)
		}
		*c = existing
	}
	return nil
}

func registerOrReuseGaugeVec(reg prometheus.Registerer, c **prometheus.GaugeVec) error {
	if err := reg.Register(*c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return err
		}
		existing, ok := already.ExistingCollector.(*prometheus.GaugeVec)
		if !ok {
			return fmt.Errorf("collector type mismatch for %T", *c)
		}
		*c = existing
	}
	return nil
}

func streamLabel(clusterStreamID int32) string {
	return fmt.Sprintf("%d", clusterStreamID)
}

func termLabel(term int32) string {
	return fmt.Sprintf("%d", term)
}

func (m *Prometheus) IncFragmentsDelivered(clusterStreamID int32, term int32) {
	m.fragmentsDeliveredTotal.WithLabelValues(streamLabel(clusterStreamID), termLabel(term)).Inc()
}

func (m *Prometheus) IncFragmentsSkippedStaleLeader(clusterStreamID int32, term int32) {
	m.fragmentsSkippedStaleTotal.WithLabelValues(streamLabel(clusterStreamID), termLabel(term)).Inc()
}

func (m *Prometheus) IncTermSwitch(clusterStreamID int32, term int32) {
	m.termSwitchTotal.WithLabelValues(streamLabel(clusterStreamID), termLabel(term)).Inc()
}

func (m *Prometheus) IncFutureAckQueued(clusterStreamID int32) {
	m.futureAckQueuedTotal.WithLabelValues(streamLabel(clusterStreamID)).Inc()
}

func (m *Prometheus) IncFutureAckApplied(clusterStreamID int32) {
	m.futureAckAppliedTotal.WithLabelValues(streamLabel(clusterStreamID)).Inc()
}

func (m *Prometheus) IncArchiveCatchUp(clusterStreamID int32, bytes int64) {
	if bytes <= 0 {
		return
	}
	m.archiveCatchUpBytesTotal.WithLabelValues(streamLabel(clusterStreamID)).Add(float64(bytes))
}

func (m *Prometheus) IncArchiveUnavailable(clusterStreamID int32) {
	m.archiveUnavailableTotal.WithLabelValues(streamLabel(clusterStreamID)).Inc()
}

func (m *Prometheus) SetStreamConsensusPosition(clusterStreamID int32, pos int64) {
	m.streamConsensusPosition.WithLabelValues(streamLabel(clusterStreamID)).Set(float64(pos))
}

func (m *Prometheus) SetLastAppliedPosition(clusterStreamID int32, pos int64) {
	m.lastAppliedPosition.WithLabelValues(streamLabel(clusterStreamID)).Set(float64(pos))
}
