// Package codec serializes cached object values.
//
// Every Serializer carries a one-byte ID that is written into the object frame.
// A value written with one serializer and read back with another is detected by
// the ID and treated as corrupt instead of being mis-decoded.
package codec

import "errors"

const (
	IDJSON     byte = 1
	IDMsgpack  byte = 2
	IDCBOR     byte = 3
	IDProtobuf byte = 4
	IDRaw      byte = 5
)

var ErrUnsupported = errors.New("codec: unsupported value type")

// Serializer turns values into bytes and back. Unmarshal receives a pointer.
type Serializer interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(b []byte, v any) error
	ID() byte
}
