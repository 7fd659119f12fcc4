package subscriber

import (
	"math"

	"go.opentelemetry.io/otel"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// noTerm is the sentinel "current term" value before the subscriber has
// bootstrapped off its first heartbeat or resend. Using MinInt32 means any
// real term compares greater and never equals noTerm+1, so before bootstrap
// only the no-data-image half of the "next leadership term" check in
// position.go lets a term through.
const noTerm int32 = math.MinInt32

// FutureAck is a deferred term-switch announcement whose predecessor
// consensus position has not yet been reached. The queue is keyed by
// StartPosition ascending (the unique predecessor key), ties broken by
// Term ascending.
type FutureAck struct {
	Term                int32
	LeaderSessionID     int32
	StartPosition       int64
	StreamStartPosition int64
	StreamPosition      int64
}

// Subscriber reconstructs an ordered, gap-free stream of application
// fragments from a data transport and a control transport, falling back to
// an archive when the data transport lags behind consensus. It is not
// thread-safe: one subscriber is owned by exactly one goroutine, and poll
// is non-blocking.
type Subscriber struct {
	dataSub    DataSubscription
	controlSub ControlSubscription
	archive    ArchiveReader
	logger     Logger
	metrics    Metrics
	tracer     oteltrace.Tracer

	clusterStreamID int32

	currentTerm               int32
	streamConsensusPosition   int64
	lastAppliedPosition       int64
	previousConsensusPosition int64

	dataImage           Image
	leaderArchiveReader SessionReader

	futureAcks futureAckQueue

	handler FragmentHandler

	closed  bool
	lastErr error
}

// Option configures optional Subscriber collaborators.
type Option func(*Subscriber)

// WithLogger injects a structured logger. Defaults to a no-op logger.
func WithLogger(l Logger) Option {
	return func(s *Subscriber) { s.logger = l }
}

// WithMetrics injects a metrics sink. Defaults to a no-op implementation.
func WithMetrics(m Metrics) Option {
	return func(s *Subscriber) { s.metrics = m }
}

// WithTracer injects a tracer for the control-dispatch and archive-catch-up
// spans. Defaults to the tracer obtained from the global otel provider,
// which is a no-op until something calls otel.SetTracerProvider.
func WithTracer(t oteltrace.Tracer) Option {
	return func(s *Subscriber) { s.tracer = t }
}

// New constructs a Subscriber scoped to clusterStreamID, which must be
// non-zero (0 is the transport's reserved "no filter" sentinel).
func New(
	dataSub DataSubscription,
	controlSub ControlSubscription,
	archive ArchiveReader,
	clusterStreamID int32,
	opts ...Option,
) (*Subscriber, error) {
	if clusterStreamID == 0 {
		return nil, ErrZeroClusterStreamID
	}
	if dataSub == nil {
		return nil, ErrNilDataSubscription
	}
	if controlSub == nil {
		return nil, ErrNilControlSubscription
	}
	if archive == nil {
		return nil, ErrNilArchiveReader
	}

	s := &Subscriber{
		dataSub:         dataSub,
		controlSub:      controlSub,
		archive:         archive,
		clusterStreamID: clusterStreamID,
		currentTerm:     noTerm,
		logger:          noopLogger{},
		metrics:         noopMetrics{},
		tracer:          otel.Tracer("github.com/i-melnichenko/clustersub/internal/subscriber"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// StreamPosition returns streamConsensusPosition: the highest stream
// position of the current term that consensus has committed.
func (s *Subscriber) StreamPosition() int64 {
	return s.streamConsensusPosition
}

// PositionOf returns the same value as StreamPosition; sessionID is
// ignored. Preserved for API compatibility with the transport this is
// modeled on, which exposes per-session positions on other subscription
// types. Candidate for deprecation.
func (s *Subscriber) PositionOf(sessionID int32) int64 {
	return s.StreamPosition()
}

// CurrentLeadershipTerm returns the leadership term currently being
// delivered, or noTerm before the first bootstrap.
func (s *Subscriber) CurrentLeadershipTerm() int32 {
	return s.currentTerm
}

// LastErr returns the most recent internal error encountered while
// polling — currently only archive read failures — without disturbing
// Poll's plain int return. It is cleared at the start of every Poll call.
func (s *Subscriber) LastErr() error {
	return s.lastErr
}

// Close releases the data subscription, control subscription, and archive
// reader. It is best-effort: all three are released even if one fails, and
// calling Close twice is a no-op that never returns an error on the second
// call.
func (s *Subscriber) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if c, ok := s.dataSub.(Closer); ok {
		record(c.Close())
	}
	if c, ok := s.controlSub.(Closer); ok {
		record(c.Close())
	}
	if c, ok := s.archive.(Closer); ok {
		record(c.Close())
	}
	return firstErr
}
