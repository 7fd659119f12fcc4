// Package archive implements the on-disk fallback a subscriber.Subscriber
// reads from when the live data transport lags behind consensus. Each
// leader session gets its own append-only file of framed fragments,
// written durably by fsyncing the file and then its directory after every
// append (appended in place, with no temp-file rename).
package archive

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/i-melnichenko/clustersub/internal/subscriber"
)

// frameHeaderLength is the size of the length-prefix + reserved-value
// prefix written ahead of every archived fragment's body.
const frameHeaderLength = 4 + 8

// FileArchive is a directory of per-session archive files, implementing
// subscriber.ArchiveReader.
type FileArchive struct {
	dir string
}

// NewFileArchive returns a FileArchive rooted at dir. dir is created lazily
// by Writer.Append; Session never creates it.
func NewFileArchive(dir string) *FileArchive {
	return &FileArchive{dir: dir}
}

func sessionPath(dir string, sessionID int32) string {
	return filepath.Join(dir, fmt.Sprintf("session-%d.log", sessionID))
}

// Session returns a reader over sessionID's archive file, or false if no
// archive has ever been recorded for that session.
func (a *FileArchive) Session(sessionID int32) (subscriber.SessionReader, bool) {
	path := sessionPath(a.dir, sessionID)
	if _, err := os.Stat(path); err != nil {
		return nil, false
	}
	return &FileSessionReader{path: path}, true
}

// Writer appends fragments to a session's archive file. It is the
// counterpart to FileArchive: something outside the Subscriber — typically
// whatever is consuming the data transport durably — is responsible for
// calling Append to keep the archive caught up.
type Writer struct {
	dir string
}

// NewWriter returns a Writer rooted at dir, creating dir on first Append.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Append durably appends one fragment to sessionID's archive file, framed
// as [bodyLength uint32][reservedValue int64][body].
func (w *Writer) Append(sessionID int32, reservedValue int64, body []byte) error {
	if err := os.MkdirAll(w.dir, 0o750); err != nil {
		return err
	}

	path := sessionPath(w.dir, sessionID)

	//nolint:gosec // path is derived from the configured archive directory under our control.
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	frame := make([]byte, frameHeaderLength+len(body))
	binary.LittleEndian.PutUint32(frame[0:4], uint32(len(body)))
	binary.LittleEndian.PutUint64(frame[4:12], uint64(reservedValue))
	copy(frame[frameHeaderLength:], body)

	if _, err := f.Write(frame); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return err
	}

	dir, err := os.Open(w.dir)
	if err != nil {
		return err
	}
	defer func() { _ = dir.Close() }()
	return dir.Sync()
}

// FileSessionReader replays the frames of one session's archive file,
// implementing subscriber.SessionReader.
type FileSessionReader struct {
	path string
}

var errTruncatedFrame = errors.New("archive: truncated frame")

// ReadUpTo replays frames whose cumulative stream positions fall in
// [fromStreamPos, toStreamPos) through handler, stopping early on
// ActionAbort. It always scans from the start of the file, since the
// on-disk format carries no position index; a deployment expecting large
// archives would add one.
func (r *FileSessionReader) ReadUpTo(fromStreamPos, toStreamPos int64, handler subscriber.FragmentHandler) (int64, error) {
	//nolint:gosec // path is derived from the configured archive directory under our control.
	data, err := os.ReadFile(r.path)
	if err != nil {
		return fromStreamPos, err
	}

	var pos int64
	offset := 0
	for offset < len(data) {
		if offset+frameHeaderLength > len(data) {
			return pos, errTruncatedFrame
		}
		bodyLen := binary.LittleEndian.Uint32(data[offset : offset+4])
		reservedValue := int64(binary.LittleEndian.Uint64(data[offset+4 : offset+12]))
		bodyStart := offset + frameHeaderLength
		bodyEnd := bodyStart + int(bodyLen)
		if bodyEnd > len(data) {
			return pos, errTruncatedFrame
		}
		body := data[bodyStart:bodyEnd]
		offset = bodyEnd

		frameEnd := pos + int64(bodyLen)
		if frameEnd <= fromStreamPos {
			pos = frameEnd
			continue
		}
		if frameEnd > toStreamPos {
			break
		}

		header := subscriber.Header{
			Position:      frameEnd,
			ReservedValue: reservedValue,
			SessionID:     0,
		}
		action := handler(body, header)
		if action == subscriber.ActionAbort {
			break
		}
		pos = frameEnd
		if frameEnd >= toStreamPos {
			break
		}
	}

	return pos, nil
}
