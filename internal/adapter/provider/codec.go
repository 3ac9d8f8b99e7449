package provider

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/marmos91/davmount/pkg/bufpool"
)

// Frame layout: a 4-byte big-endian length prefix followed by exactly that
// many bytes of JSON. One frame carries one Request, Response, or Event.
const (
	// DefaultMaxFrameBytes bounds a single frame (16 MiB). Write payloads
	// ride base64-encoded inside the JSON body, so this also caps the
	// chunk size a host can submit in one request.
	DefaultMaxFrameBytes = 16 << 20

	framePrefixSize = 4
)

// ReadFrame reads one length-prefixed frame from r.
//
// The returned buffer comes from the shared buffer pool; the caller must
// return it via bufpool.Put once the frame is decoded. io.EOF surfaces
// unwrapped so connection loops can distinguish a clean disconnect from a
// protocol failure.
func ReadFrame(r io.Reader, maxBytes uint32) ([]byte, error) {
	var prefix [framePrefixSize]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return nil, err
	}

	length := binary.BigEndian.Uint32(prefix[:])
	if length == 0 {
		return nil, fmt.Errorf("zero-length frame")
	}
	if length > maxBytes {
		return nil, fmt.Errorf("frame of %d bytes exceeds limit of %d", length, maxBytes)
	}

	buf := bufpool.GetUint32(length)
	if _, err := io.ReadFull(r, buf); err != nil {
		bufpool.Put(buf)
		return nil, fmt.Errorf("read frame body: %w", err)
	}
	return buf, nil
}

// WriteFrame writes payload as one length-prefixed frame.
//
// Prefix and body go out in a single Write so a frame is never interleaved
// with another writer's bytes; callers still serialize frame writes per
// connection.
func WriteFrame(w io.Writer, payload []byte) error {
	if uint64(len(payload)) > math.MaxUint32 {
		return fmt.Errorf("frame of %d bytes exceeds prefix range", len(payload))
	}

	buf := bufpool.Get(framePrefixSize + len(payload))
	defer bufpool.Put(buf)

	binary.BigEndian.PutUint32(buf[:framePrefixSize], uint32(len(payload)))
	copy(buf[framePrefixSize:], payload)

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}
