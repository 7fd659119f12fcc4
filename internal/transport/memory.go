// Package transport provides a reference, in-memory implementation of the
// data and control transports a subscriber.Subscriber consumes. It exists
// for tests and local demos; a production deployment would back these
// interfaces with a real message transport instead.
package transport

import (
	"fmt"

	"github.com/i-melnichenko/clustersub/internal/subscriber"
	"github.com/i-melnichenko/clustersub/internal/wire"
)

type dataFrame struct {
	body          []byte
	reservedValue int64
	endPosition   int64
}

// sessionLog is the append-only byte log for one leader session's
// publication on the data transport.
type sessionLog struct {
	frames      []dataFrame
	endPosition int64
}

func (l *sessionLog) append(body []byte, reservedValue int64) int64 {
	buf := make([]byte, len(body))
	copy(buf, body)
	l.endPosition += int64(len(buf))
	l.frames = append(l.frames, dataFrame{body: buf, reservedValue: reservedValue, endPosition: l.endPosition})
	return l.endPosition
}

// MemoryImage is a per-session cursor over a sessionLog, implementing
// subscriber.Image.
type MemoryImage struct {
	sessionID     int32
	log           *sessionLog
	next          int
	position      int64
	initialTermID int32
}

// Position reports this image's own read cursor: how far ControlledPoll
// has consumed, not how much the leader has published. A fragment still
// sitting in the log past the cursor is not yet "seen" by this image,
// matching Aeron's Image.position() rather than a total-bytes-published
// counter.
func (img *MemoryImage) Position() int64 { return img.position }

func (img *MemoryImage) InitialTermID() int32 { return img.initialTermID }

func (img *MemoryImage) TermBufferLength() int32 { return 0 }

// ControlledPoll delivers up to limit undelivered frames from this
// session's log to handler, stopping early on ActionAbort. The cursor
// advances past a frame only once it has been committed to the handler
// (CONTINUE or BREAK); an ABORT leaves it exactly where it was.
func (img *MemoryImage) ControlledPoll(handler subscriber.FragmentHandler, limit int) int {
	delivered := 0
	for delivered < limit && img.next < len(img.log.frames) {
		f := img.log.frames[img.next]
		header := subscriber.Header{
			Position:      f.endPosition,
			ReservedValue: f.reservedValue,
			SessionID:     img.sessionID,
		}
		action := handler(f.body, header)
		if action == subscriber.ActionAbort {
			break
		}
		img.next++
		img.position = f.endPosition
		delivered++
		if action == subscriber.ActionBreak {
			break
		}
	}
	return delivered
}

// MemoryDataTransport is an in-memory subscriber.DataSubscription: an
// append-only byte log per leader session, each with its own cursor.
type MemoryDataTransport struct {
	logs   map[int32]*sessionLog
	images map[int32]*MemoryImage
	order  []int32
}

// NewMemoryDataTransport constructs an empty data transport.
func NewMemoryDataTransport() *MemoryDataTransport {
	return &MemoryDataTransport{
		logs:   make(map[int32]*sessionLog),
		images: make(map[int32]*MemoryImage),
	}
}

// Publish appends body to sessionID's log, tagged with clusterStreamID via
// the transport's reserved-value convention, and returns the resulting
// stream position.
func (t *MemoryDataTransport) Publish(sessionID int32, clusterStreamID int32, body []byte) int64 {
	log := t.logForSession(sessionID)
	return log.append(body, wire.ReservedValue(clusterStreamID))
}

func (t *MemoryDataTransport) logForSession(sessionID int32) *sessionLog {
	log, ok := t.logs[sessionID]
	if !ok {
		log = &sessionLog{}
		t.logs[sessionID] = log
		t.order = append(t.order, sessionID)
	}
	return log
}

// ImageBySessionID returns a cursor over sessionID's log, or false if
// sessionID has never published anything — standing in for a leader this
// subscriber cannot reach live, e.g. one only reachable through the
// archive.
func (t *MemoryDataTransport) ImageBySessionID(sessionID int32) (subscriber.Image, bool) {
	if img, ok := t.images[sessionID]; ok {
		return img, true
	}
	log, ok := t.logs[sessionID]
	if !ok {
		return nil, false
	}
	img := &MemoryImage{sessionID: sessionID, log: log, initialTermID: sessionID}
	t.images[sessionID] = img
	return img, true
}

// ControlledPoll polls each session's image in turn, in the order the
// sessions first published, until limit fragments are consumed. Sessions
// whose image has not yet been obtained through ImageBySessionID are
// skipped. It exists for interface completeness; subscriber.Subscriber always polls a
// specific leader's Image directly rather than this multiplexed view.
func (t *MemoryDataTransport) ControlledPoll(handler subscriber.FragmentHandler, limit int) int {
	delivered := 0
	for _, sessionID := range t.order {
		if delivered >= limit {
			break
		}
		img := t.images[sessionID]
		if img == nil {
			continue
		}
		delivered += img.ControlledPoll(handler, limit-delivered)
	}
	return delivered
}

// controlFrame is one framed control-transport message (its raw encoded
// bytes, as produced by internal/wire).
type controlFrame struct {
	buf []byte
}

// MemoryControlTransport is an in-memory subscriber.ControlSubscription:
// an append-only log of framed control messages.
type MemoryControlTransport struct {
	frames []controlFrame
	next   int
}

// NewMemoryControlTransport constructs an empty control transport.
func NewMemoryControlTransport() *MemoryControlTransport {
	return &MemoryControlTransport{}
}

// PublishHeartbeat appends a framed ConsensusHeartbeat message.
func (t *MemoryControlTransport) PublishHeartbeat(hb wire.ConsensusHeartbeat) error {
	buf := make([]byte, hb.EncodedLength())
	if _, err := hb.Encode(buf); err != nil {
		return fmt.Errorf("transport: encode heartbeat: %w", err)
	}
	t.frames = append(t.frames, controlFrame{buf: buf})
	return nil
}

// PublishResend appends a framed Resend message.
func (t *MemoryControlTransport) PublishResend(r wire.Resend) error {
	buf := make([]byte, r.EncodedLength())
	if _, err := r.Encode(buf); err != nil {
		return fmt.Errorf("transport: encode resend: %w", err)
	}
	t.frames = append(t.frames, controlFrame{buf: buf})
	return nil
}

// ControlledPoll delivers up to limit undelivered control frames to
// handler, stopping early on ActionAbort.
func (t *MemoryControlTransport) ControlledPoll(handler subscriber.FragmentHandler, limit int) int {
	delivered := 0
	for delivered < limit && t.next < len(t.frames) {
		f := t.frames[t.next]
		action := handler(f.buf, subscriber.Header{})
		if action == subscriber.ActionAbort {
			break
		}
		t.next++
		delivered++
		if action == subscriber.ActionBreak {
			break
		}
	}
	return delivered
}
