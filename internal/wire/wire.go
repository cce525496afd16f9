// Package wire frames object values before they reach a backend.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const (
	version byte = 1
	hdrLen       = 4 + 1 + 1 + 4
)

var (
	ErrCorrupt = errors.New("cachex: corrupt object entry")
	magic4     = [...]byte{'C', 'X', 'O', 'B'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Encode: magic(4) | ver(1) | codec(1) | vlen(u32 be) | payload(vlen)
func Encode(codecID byte, payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(hdrLen + len(payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(codecID)

	var u4 [4]byte
	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	buf.Write(payload)
	return buf.Bytes()
}

// Decode returns the codec id and a payload slice aliasing b.
// Trailing bytes after the payload are rejected.
func Decode(b []byte) (codecID byte, payload []byte, err error) {
	if len(b) < hdrLen || !hasMagic(b) || b[4] != version {
		return 0, nil, ErrCorrupt
	}
	codecID = b[5]
	vlen := int(binary.BigEndian.Uint32(b[6:10]))
	if vlen < 0 || vlen != len(b)-hdrLen {
		return 0, nil, ErrCorrupt
	}
	return codecID, b[hdrLen:], nil
}
