package wire

import (
	"encoding/binary"
	"fmt"
)

// ResendBlockLength is the fixed-block size following the MessageHeader for
// a Resend frame, not counting the variable-length body.
//
// Field order: leaderSessionId:i32, leaderShipTerm:i32, startPosition:i64,
// streamStartPosition:i64, body:varData (u32 length prefix + bytes).
const ResendBlockLength = 4 + 4 + 8 + 8

// Resend inlines the bytes of a committed range so a subscriber doesn't
// have to wait on the data transport or archive to catch up.
type Resend struct {
	LeaderSessionID     int32
	LeaderShipTerm      int32
	StartPosition       int64
	StreamStartPosition int64
	Body                []byte
}

// EncodedLength returns the total frame length (header + fixed block + body).
func (r Resend) EncodedLength() int {
	return HeaderLength + ResendBlockLength + 4 + len(r.Body)
}

// Encode writes the full framed Resend message (header + body) into buf,
// which must be at least EncodedLength() bytes.
func (r Resend) Encode(buf []byte) (int, error) {
	n := r.EncodedLength()
	if len(buf) < n {
		return 0, ErrShortBuffer
	}
	header := MessageHeader{
		BlockLength: ResendBlockLength,
		TemplateID:  TemplateResend,
		SchemaID:    SchemaID,
		Version:     SchemaVersion,
	}
	if err := header.Encode(buf); err != nil {
		return 0, err
	}
	fixed := buf[HeaderLength : HeaderLength+ResendBlockLength]
	binary.LittleEndian.PutUint32(fixed[0:4], uint32(r.LeaderSessionID))
	binary.LittleEndian.PutUint32(fixed[4:8], uint32(r.LeaderShipTerm))
	binary.LittleEndian.PutUint64(fixed[8:16], uint64(r.StartPosition))
	binary.LittleEndian.PutUint64(fixed[16:24], uint64(r.StreamStartPosition))

	varOffset := HeaderLength + ResendBlockLength
	binary.LittleEndian.PutUint32(buf[varOffset:varOffset+4], uint32(len(r.Body)))
	copy(buf[varOffset+4:n], r.Body)
	return n, nil
}

// DecodeResend decodes the fixed block and varData body that follow a
// MessageHeader already known to carry TemplateResend. offset points at
// the start of the fixed block (i.e. just past the header).
func DecodeResend(buf []byte, offset int, blockLength uint16) (Resend, error) {
	if blockLength < ResendBlockLength {
		return Resend{}, fmt.Errorf("wire: resend block length %d too small", blockLength)
	}
	if len(buf) < offset+ResendBlockLength+4 {
		return Resend{}, fmt.Errorf("wire: decode resend fixed block: %w", ErrShortBuffer)
	}
	fixed := buf[offset:]
	r := Resend{
		LeaderSessionID:     int32(binary.LittleEndian.Uint32(fixed[0:4])),
		LeaderShipTerm:      int32(binary.LittleEndian.Uint32(fixed[4:8])),
		StartPosition:       int64(binary.LittleEndian.Uint64(fixed[8:16])),
		StreamStartPosition: int64(binary.LittleEndian.Uint64(fixed[16:24])),
	}

	varOffset := offset + ResendBlockLength
	bodyLen := binary.LittleEndian.Uint32(buf[varOffset : varOffset+4])
	bodyStart := varOffset + 4
	bodyEnd := bodyStart + int(bodyLen)
	if len(buf) < bodyEnd {
		return Resend{}, fmt.Errorf("wire: decode resend body: %w", ErrShortBuffer)
	}
	r.Body = buf[bodyStart:bodyEnd]
	return r, nil
}
