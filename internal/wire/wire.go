// Package wire frames persisted cache entries with the generation they were
// written under.
//
// Frame: magic(4) | ver(1) | kind(1) | gen(u64 be) | vlen(u32 be) | payload(vlen)
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const (
	version   byte = 1
	kindEntry byte = 1

	headerLen = 4 + 1 + 1 + 8 + 4
)

var (
	ErrCorrupt = errors.New("mercury: corrupt entry")
	magic      = [4]byte{'M', 'R', 'C', 'Y'}
)

// Encode frames payload under gen.
func Encode(gen uint64, payload []byte) []byte {
	out := make([]byte, headerLen, headerLen+len(payload))
	copy(out, magic[:])
	out[4] = version
	out[5] = kindEntry
	binary.BigEndian.PutUint64(out[6:14], gen)
	binary.BigEndian.PutUint32(out[14:18], uint32(len(payload)))
	return append(out, payload...)
}

// Decode validates a frame and returns its generation and payload. The
// payload aliases b. Frames with trailing bytes are corrupt.
func Decode(b []byte) (gen uint64, payload []byte, err error) {
	if len(b) < headerLen || !bytes.Equal(b[:4], magic[:]) || b[4] != version || b[5] != kindEntry {
		return 0, nil, ErrCorrupt
	}
	gen = binary.BigEndian.Uint64(b[6:14])
	vlen := uint64(binary.BigEndian.Uint32(b[14:18]))
	if vlen != uint64(len(b)-headerLen) {
		return 0, nil, ErrCorrupt
	}
	return gen, b[headerLen:], nil
}
