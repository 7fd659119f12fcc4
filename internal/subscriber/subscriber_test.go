package subscriber

import (
	"errors"
	"testing"

	"github.com/golang/mock/gomock"

	"github.com/i-melnichenko/clustersub/internal/wire"
)

func reservedValueFor(clusterStreamID int32) int64 {
	return wire.ReservedValue(clusterStreamID)
}

func newTestSubscriber(t *testing.T, ctrl *gomock.Controller) (*Subscriber, *MockDataSubscription, *MockControlSubscription, *MockArchiveReader) {
	t.Helper()
	dataSub := NewMockDataSubscription(ctrl)
	controlSub := NewMockControlSubscription(ctrl)
	archive := NewMockArchiveReader(ctrl)

	s, err := New(dataSub, controlSub, archive, 42)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s, dataSub, controlSub, archive
}

func TestNew_RejectsZeroClusterStreamID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	dataSub := NewMockDataSubscription(ctrl)
	controlSub := NewMockControlSubscription(ctrl)
	archive := NewMockArchiveReader(ctrl)

	_, err := New(dataSub, controlSub, archive, 0)
	if !errors.Is(err, ErrZeroClusterStreamID) {
		t.Fatalf("expected ErrZeroClusterStreamID, got %v", err)
	}
}

func TestNew_RejectsNilCollaborators(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	dataSub := NewMockDataSubscription(ctrl)
	controlSub := NewMockControlSubscription(ctrl)
	archive := NewMockArchiveReader(ctrl)

	if _, err := New(nil, controlSub, archive, 1); !errors.Is(err, ErrNilDataSubscription) {
		t.Fatalf("expected ErrNilDataSubscription, got %v", err)
	}
	if _, err := New(dataSub, nil, archive, 1); !errors.Is(err, ErrNilControlSubscription) {
		t.Fatalf("expected ErrNilControlSubscription, got %v", err)
	}
	if _, err := New(dataSub, controlSub, nil, 1); !errors.Is(err, ErrNilArchiveReader) {
		t.Fatalf("expected ErrNilArchiveReader, got %v", err)
	}
}

func TestPoll_NoDataImageYet_ReturnsZero(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	s, _, controlSub, _ := newTestSubscriber(t, ctrl)

	controlSub.EXPECT().ControlledPoll(gomock.Any(), 10).Return(0)

	n := s.Poll(func([]byte, Header) Action { return ActionContinue }, 10)
	if n != 0 {
		t.Fatalf("expected 0 fragments, got %d", n)
	}
	if s.CurrentLeadershipTerm() != noTerm {
		t.Fatalf("expected term unset, got %d", s.CurrentLeadershipTerm())
	}
}

func TestOnConsensusHeartbeat_BootstrapSwitchesTerm(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	s, dataSub, _, archive := newTestSubscriber(t, ctrl)

	image := NewMockImage(ctrl)
	reader := NewMockSessionReader(ctrl)
	dataSub.EXPECT().ImageBySessionID(int32(7)).Return(image, true)
	archive.EXPECT().Session(int32(7)).Return(reader, true)

	action := s.onConsensusHeartbeat(1, 7, 100, 0, 100)
	if action != ActionBreak {
		t.Fatalf("expected ActionBreak, got %v", action)
	}
	if s.CurrentLeadershipTerm() != 1 {
		t.Fatalf("expected term 1, got %d", s.CurrentLeadershipTerm())
	}
	if s.StreamPosition() != 100 {
		t.Fatalf("expected stream position 100, got %d", s.StreamPosition())
	}
}

func TestOnConsensusHeartbeat_SameTermWidensPosition(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	s, dataSub, _, archive := newTestSubscriber(t, ctrl)

	image := NewMockImage(ctrl)
	reader := NewMockSessionReader(ctrl)
	dataSub.EXPECT().ImageBySessionID(int32(7)).Return(image, true)
	archive.EXPECT().Session(int32(7)).Return(reader, true)
	s.onConsensusHeartbeat(1, 7, 100, 0, 100)

	action := s.onConsensusHeartbeat(1, 7, 150, 0, 150)
	if action != ActionBreak {
		t.Fatalf("expected ActionBreak, got %v", action)
	}
	if s.StreamPosition() != 150 {
		t.Fatalf("expected stream position 150, got %d", s.StreamPosition())
	}

	// A heartbeat that does not advance position should not break the poll.
	action = s.onConsensusHeartbeat(1, 7, 150, 0, 150)
	if action != ActionContinue {
		t.Fatalf("expected ActionContinue, got %v", action)
	}
}

func TestOnConsensusHeartbeat_NextTermNotYetReachable_QueuesFutureAck(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	s, dataSub, _, archive := newTestSubscriber(t, ctrl)

	image := NewMockImage(ctrl)
	reader := NewMockSessionReader(ctrl)
	dataSub.EXPECT().ImageBySessionID(int32(7)).Return(image, true)
	archive.EXPECT().Session(int32(7)).Return(reader, true)
	s.onConsensusHeartbeat(1, 7, 100, 0, 100)

	// Term 2 claims to start at consensus position 150, but we've only
	// committed to 100 in term 1 so far: not yet applicable.
	action := s.onConsensusHeartbeat(2, 8, 200, 0, 50)
	if action != ActionContinue {
		t.Fatalf("expected ActionContinue, got %v", action)
	}
	if len(s.futureAcks) != 1 {
		t.Fatalf("expected 1 queued future ack, got %d", len(s.futureAcks))
	}
	if s.CurrentLeadershipTerm() != 1 {
		t.Fatalf("expected term to remain 1, got %d", s.CurrentLeadershipTerm())
	}
}

func TestSaveFutureAck_DeduplicatesByTermAndStartPosition(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	s, _, _, _ := newTestSubscriber(t, ctrl)

	ack := FutureAck{Term: 2, LeaderSessionID: 9, StartPosition: 100, StreamStartPosition: 0, StreamPosition: 10}
	s.saveFutureAck(ack)
	s.saveFutureAck(ack)
	if len(s.futureAcks) != 1 {
		t.Fatalf("expected dedup to 1 entry, got %d", len(s.futureAcks))
	}
}

func TestApplyMatchingFutureAck_OutOfOrderArrival(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	s, dataSub, _, archive := newTestSubscriber(t, ctrl)

	image1 := NewMockImage(ctrl)
	reader1 := NewMockSessionReader(ctrl)
	dataSub.EXPECT().ImageBySessionID(int32(7)).Return(image1, true)
	archive.EXPECT().Session(int32(7)).Return(reader1, true)
	s.onConsensusHeartbeat(1, 7, 100, 0, 100)

	// Simulate delivering all 100 bytes of term 1 so previousConsensusPosition
	// reaches the point where term 2 claims to start.
	s.handler = func([]byte, Header) Action { return ActionContinue }
	s.filterFragment(make([]byte, 100), Header{Position: 100, ReservedValue: reservedValueFor(42), SessionID: 7})

	// Term 3's heartbeat arrives before term 2's: queued, not applied, since
	// term 3 isn't the immediate successor of term 1. Its claimed start
	// (100) is where term 2 will leave previousConsensusPosition right after
	// switching, before any of term 2's own bytes are delivered.
	s.onConsensusHeartbeat(3, 9, 150, 0, 50)
	if len(s.futureAcks) != 1 {
		t.Fatalf("expected term 3 queued, got %d entries", len(s.futureAcks))
	}

	// Term 2's heartbeat now arrives, starting exactly where term 1 left off:
	// applies immediately as an in-order switch.
	image2 := NewMockImage(ctrl)
	reader2 := NewMockSessionReader(ctrl)
	dataSub.EXPECT().ImageBySessionID(int32(8)).Return(image2, true)
	archive.EXPECT().Session(int32(8)).Return(reader2, true)
	action := s.onConsensusHeartbeat(2, 8, 200, 0, 100)
	if action != ActionBreak {
		t.Fatalf("expected ActionBreak, got %v", action)
	}
	if s.CurrentLeadershipTerm() != 2 {
		t.Fatalf("expected term 2, got %d", s.CurrentLeadershipTerm())
	}

	// Now draining the queue should switch straight into term 3.
	image3 := NewMockImage(ctrl)
	reader3 := NewMockSessionReader(ctrl)
	dataSub.EXPECT().ImageBySessionID(int32(9)).Return(image3, true)
	archive.EXPECT().Session(int32(9)).Return(reader3, true)
	if !s.applyMatchingFutureAck() {
		t.Fatalf("expected queued term 3 ack to apply")
	}
	if s.CurrentLeadershipTerm() != 3 {
		t.Fatalf("expected term 3, got %d", s.CurrentLeadershipTerm())
	}
	if len(s.futureAcks) != 0 {
		t.Fatalf("expected queue drained, got %d entries", len(s.futureAcks))
	}
}

func TestFilterFragment_AbortsAheadOfConsensus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	s, dataSub, _, archive := newTestSubscriber(t, ctrl)

	image := NewMockImage(ctrl)
	reader := NewMockSessionReader(ctrl)
	dataSub.EXPECT().ImageBySessionID(int32(7)).Return(image, true)
	archive.EXPECT().Session(int32(7)).Return(reader, true)
	s.onConsensusHeartbeat(1, 7, 100, 0, 100)

	delivered := false
	s.handler = func([]byte, Header) Action { delivered = true; return ActionContinue }

	buf := []byte("hello")
	header := Header{Position: 999, ReservedValue: reservedValueFor(42), SessionID: 7}
	action := s.filterFragment(buf, header)
	if action != ActionAbort {
		t.Fatalf("expected ActionAbort, got %v", action)
	}
	if delivered {
		t.Fatalf("handler should not have been invoked")
	}
}

func TestFilterFragment_SkipsOtherClusterStream(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	s, dataSub, _, archive := newTestSubscriber(t, ctrl)

	image := NewMockImage(ctrl)
	reader := NewMockSessionReader(ctrl)
	dataSub.EXPECT().ImageBySessionID(int32(7)).Return(image, true)
	archive.EXPECT().Session(int32(7)).Return(reader, true)
	s.onConsensusHeartbeat(1, 7, 100, 0, 100)

	delivered := false
	s.handler = func([]byte, Header) Action { delivered = true; return ActionContinue }

	buf := []byte("hello")
	header := Header{Position: 5, ReservedValue: reservedValueFor(99), SessionID: 7}
	action := s.filterFragment(buf, header)
	if action != ActionContinue {
		t.Fatalf("expected ActionContinue, got %v", action)
	}
	if delivered {
		t.Fatalf("handler should not have been invoked for a different cluster stream")
	}
}

func TestFilterFragment_DeliversAndAdvances(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	s, dataSub, _, archive := newTestSubscriber(t, ctrl)

	image := NewMockImage(ctrl)
	reader := NewMockSessionReader(ctrl)
	dataSub.EXPECT().ImageBySessionID(int32(7)).Return(image, true)
	archive.EXPECT().Session(int32(7)).Return(reader, true)
	s.onConsensusHeartbeat(1, 7, 100, 0, 100)

	var gotBuf []byte
	s.handler = func(buf []byte, _ Header) Action {
		gotBuf = buf
		return ActionContinue
	}

	buf := []byte("hello")
	header := Header{Position: 5, ReservedValue: reservedValueFor(42), SessionID: 7}
	action := s.filterFragment(buf, header)
	if action != ActionContinue {
		t.Fatalf("expected ActionContinue, got %v", action)
	}
	if string(gotBuf) != "hello" {
		t.Fatalf("expected handler to receive fragment bytes, got %q", gotBuf)
	}
	if s.lastAppliedPosition != 5 {
		t.Fatalf("expected lastAppliedPosition 5, got %d", s.lastAppliedPosition)
	}
}

func TestFilterFragment_HandlerAbort_DoesNotAdvance(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	s, dataSub, _, archive := newTestSubscriber(t, ctrl)

	image := NewMockImage(ctrl)
	reader := NewMockSessionReader(ctrl)
	dataSub.EXPECT().ImageBySessionID(int32(7)).Return(image, true)
	archive.EXPECT().Session(int32(7)).Return(reader, true)
	s.onConsensusHeartbeat(1, 7, 100, 0, 100)

	s.handler = func([]byte, Header) Action { return ActionAbort }

	buf := []byte("hello")
	header := Header{Position: 5, ReservedValue: reservedValueFor(42), SessionID: 7}
	action := s.filterFragment(buf, header)
	if action != ActionAbort {
		t.Fatalf("expected ActionAbort, got %v", action)
	}
	if s.lastAppliedPosition != 0 {
		t.Fatalf("expected lastAppliedPosition unchanged, got %d", s.lastAppliedPosition)
	}
}

func TestOnResend_AppliesAtExactPredecessorPosition(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	s, dataSub, _, archive := newTestSubscriber(t, ctrl)

	image := NewMockImage(ctrl)
	reader := NewMockSessionReader(ctrl)
	dataSub.EXPECT().ImageBySessionID(int32(7)).Return(image, true)
	archive.EXPECT().Session(int32(7)).Return(reader, true)
	s.onConsensusHeartbeat(1, 7, 100, 0, 100)

	var gotBuf []byte
	s.handler = func(buf []byte, _ Header) Action {
		gotBuf = buf
		return ActionContinue
	}

	action := s.onResend(7, 1, 0, 0, []byte("world"))
	if action != ActionContinue {
		t.Fatalf("expected ActionContinue, got %v", action)
	}
	if string(gotBuf) != "world" {
		t.Fatalf("expected resend body delivered, got %q", gotBuf)
	}
	if s.previousConsensusPosition != 5 {
		t.Fatalf("expected previousConsensusPosition 5, got %d", s.previousConsensusPosition)
	}
}

func TestOnResend_AheadOfPredecessor_QueuesFutureAck(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	s, dataSub, _, archive := newTestSubscriber(t, ctrl)

	image := NewMockImage(ctrl)
	reader := NewMockSessionReader(ctrl)
	dataSub.EXPECT().ImageBySessionID(int32(7)).Return(image, true)
	archive.EXPECT().Session(int32(7)).Return(reader, true)
	s.onConsensusHeartbeat(1, 7, 100, 0, 100)

	delivered := false
	s.handler = func([]byte, Header) Action { delivered = true; return ActionContinue }

	action := s.onResend(7, 1, 150, 150, []byte("later"))
	if action != ActionContinue {
		t.Fatalf("expected ActionContinue, got %v", action)
	}
	if delivered {
		t.Fatalf("handler should not have been invoked for a gapped resend")
	}
	if len(s.futureAcks) != 1 {
		t.Fatalf("expected 1 queued future ack, got %d", len(s.futureAcks))
	}
}

func TestOnResend_CrossTermSwitch_AdvancesPreviousConsensusPosition(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	s, dataSub, _, archive := newTestSubscriber(t, ctrl)

	s.currentTerm = 1
	s.previousConsensusPosition = 100
	s.lastAppliedPosition = 100

	image := NewMockImage(ctrl)
	reader := NewMockSessionReader(ctrl)
	dataSub.EXPECT().ImageBySessionID(int32(9)).Return(image, true)
	archive.EXPECT().Session(int32(9)).Return(reader, true)

	var gotBuf []byte
	s.handler = func(buf []byte, _ Header) Action {
		gotBuf = buf
		return ActionContinue
	}

	body := make([]byte, 60)
	action := s.onResend(9, 2, 100, 0, body)
	if action != ActionContinue {
		t.Fatalf("expected ActionContinue, got %v", action)
	}
	if len(gotBuf) != 60 {
		t.Fatalf("expected the resend body delivered, got %d bytes", len(gotBuf))
	}
	if s.CurrentLeadershipTerm() != 2 {
		t.Fatalf("expected term to switch to 2, got %d", s.CurrentLeadershipTerm())
	}
	if s.lastAppliedPosition != 60 {
		t.Fatalf("expected lastAppliedPosition 60, got %d", s.lastAppliedPosition)
	}
	// previousConsensusPosition must land on the body just delivered, not
	// on the term's start position the switch resets it to.
	if s.previousConsensusPosition != 160 {
		t.Fatalf("expected previousConsensusPosition 160, got %d", s.previousConsensusPosition)
	}
}

func TestClose_IsIdempotentAndBestEffort(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dataSub := &closingDataSubscription{MockDataSubscription: NewMockDataSubscription(ctrl)}
	controlSub := NewMockControlSubscription(ctrl)
	archive := &closingArchiveReader{MockArchiveReader: NewMockArchiveReader(ctrl), err: errors.New("archive close failed")}

	s, err := New(dataSub, controlSub, archive, 1)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := s.Close(); err == nil {
		t.Fatalf("expected Close() to surface archive close error")
	}
	if !dataSub.closed {
		t.Fatalf("expected data subscription to be closed")
	}

	if err := s.Close(); err != nil {
		t.Fatalf("expected second Close() to be a no-op, got %v", err)
	}
}

type closingDataSubscription struct {
	*MockDataSubscription
	closed bool
}

func (c *closingDataSubscription) Close() error {
	c.closed = true
	return nil
}

type closingArchiveReader struct {
	*MockArchiveReader
	err error
}

func (c *closingArchiveReader) Close() error {
	return c.err
}
