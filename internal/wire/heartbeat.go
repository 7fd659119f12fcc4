package wire

import (
	"encoding/binary"
	"fmt"
)

// ConsensusHeartbeatBlockLength is the fixed-block size following the
// MessageHeader for a ConsensusHeartbeat frame.
//
// Field order: leaderShipTerm:i32, leaderSessionId:i32, position:i64,
// streamStartPosition:i64, streamPosition:i64.
const ConsensusHeartbeatBlockLength = 4 + 4 + 8 + 8 + 8

// ConsensusHeartbeat is a consensus decision announcing committed stream
// position for the current or next leadership term.
type ConsensusHeartbeat struct {
	LeaderShipTerm      int32
	LeaderSessionID     int32
	Position            int64
	StreamStartPosition int64
	StreamPosition      int64
}

// EncodedLength returns the total frame length (header + fixed block).
func (ConsensusHeartbeat) EncodedLength() int {
	return HeaderLength + ConsensusHeartbeatBlockLength
}

// Encode writes the full framed ConsensusHeartbeat message (header + body)
// into buf, which must be at least EncodedLength() bytes.
func (hb ConsensusHeartbeat) Encode(buf []byte) (int, error) {
	n := hb.EncodedLength()
	if len(buf) < n {
		return 0, ErrShortBuffer
	}
	header := MessageHeader{
		BlockLength: ConsensusHeartbeatBlockLength,
		TemplateID:  TemplateConsensusHeartbeat,
		SchemaID:    SchemaID,
		Version:     SchemaVersion,
	}
	if err := header.Encode(buf); err != nil {
		return 0, err
	}
	body := buf[HeaderLength:n]
	binary.LittleEndian.PutUint32(body[0:4], uint32(hb.LeaderShipTerm))
	binary.LittleEndian.PutUint32(body[4:8], uint32(hb.LeaderSessionID))
	binary.LittleEndian.PutUint64(body[8:16], uint64(hb.Position))
	binary.LittleEndian.PutUint64(body[16:24], uint64(hb.StreamStartPosition))
	binary.LittleEndian.PutUint64(body[24:32], uint64(hb.StreamPosition))
	return n, nil
}

// DecodeConsensusHeartbeat decodes the fixed block that follows a
// MessageHeader already known to carry TemplateConsensusHeartbeat.
// offset points at the start of the fixed block (i.e. just past the header).
func DecodeConsensusHeartbeat(buf []byte, offset int, blockLength uint16) (ConsensusHeartbeat, error) {
	if blockLength < ConsensusHeartbeatBlockLength {
		return ConsensusHeartbeat{}, fmt.Errorf("wire: heartbeat block length %d too small", blockLength)
	}
	if len(buf) < offset+ConsensusHeartbeatBlockLength {
		return ConsensusHeartbeat{}, fmt.Errorf("wire: decode heartbeat: %w", ErrShortBuffer)
	}
	body := buf[offset:]
	return ConsensusHeartbeat{
		LeaderShipTerm:      int32(binary.LittleEndian.Uint32(body[0:4])),
		LeaderSessionID:     int32(binary.LittleEndian.Uint32(body[4:8])),
		Position:            int64(binary.LittleEndian.Uint64(body[8:16])),
		StreamStartPosition: int64(binary.LittleEndian.Uint64(body[16:24])),
		StreamPosition:      int64(binary.LittleEndian.Uint64(body[24:32])),
	}, nil
}
