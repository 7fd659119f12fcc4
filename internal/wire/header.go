// Package wire implements the fixed-header, SBE-style binary framing used
// on the control transport: a MessageHeader identifying the template,
// followed by a template-specific fixed block (and, for Resend, a
// length-prefixed variable-length body).
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// HeaderLength is the encoded size of MessageHeader in bytes.
const HeaderLength = 8

// Template ids for the two control message kinds this subscriber decodes.
const (
	TemplateConsensusHeartbeat uint16 = 1
	TemplateResend             uint16 = 2
)

// SchemaID and SchemaVersion identify the message schema in use. They are
// not interpreted by this package beyond being carried through the header;
// a future schema migration would branch on Version in the decoders below.
const (
	SchemaID      uint16 = 1
	SchemaVersion uint16 = 1
)

// ErrShortBuffer is returned when a buffer is too small to contain the
// structure being decoded.
var ErrShortBuffer = errors.New("wire: short buffer")

// MessageHeader prefixes every control-transport frame.
type MessageHeader struct {
	BlockLength uint16
	TemplateID  uint16
	SchemaID    uint16
	Version     uint16
}

// Encode writes h into buf[0:HeaderLength]. buf must have length >= HeaderLength.
func (h MessageHeader) Encode(buf []byte) error {
	if len(buf) < HeaderLength {
		return ErrShortBuffer
	}
	binary.LittleEndian.PutUint16(buf[0:2], h.BlockLength)
	binary.LittleEndian.PutUint16(buf[2:4], h.TemplateID)
	binary.LittleEndian.PutUint16(buf[4:6], h.SchemaID)
	binary.LittleEndian.PutUint16(buf[6:8], h.Version)
	return nil
}

// DecodeHeader reads a MessageHeader from the start of buf.
func DecodeHeader(buf []byte) (MessageHeader, error) {
	if len(buf) < HeaderLength {
		return MessageHeader{}, fmt.Errorf("wire: decode header: %w", ErrShortBuffer)
	}
	return MessageHeader{
		BlockLength: binary.LittleEndian.Uint16(buf[0:2]),
		TemplateID:  binary.LittleEndian.Uint16(buf[2:4]),
		SchemaID:    binary.LittleEndian.Uint16(buf[4:6]),
		Version:     binary.LittleEndian.Uint16(buf[6:8]),
	}, nil
}
