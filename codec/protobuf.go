package codec

import (
	"fmt"
	"reflect"

	"google.golang.org/protobuf/proto"
)

// Protobuf serializes proto.Message values. Unmarshal accepts either a message
// pointer or a pointer to a (possibly nil) message pointer, which is what the
// typed object helpers pass for T = *pb.Msg.
type Protobuf struct{}

func (Protobuf) Marshal(v any) ([]byte, error) {
	m, ok := v.(proto.Message)
	if !ok {
		return nil, fmt.Errorf("%w: %T is not a proto.Message", ErrUnsupported, v)
	}
	return proto.Marshal(m)
}

func (Protobuf) Unmarshal(b []byte, v any) error {
	if m, ok := v.(proto.Message); ok {
		return proto.Unmarshal(b, m)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Pointer {
		return fmt.Errorf("%w: %T", ErrUnsupported, v)
	}
	elem := rv.Elem()
	if elem.IsNil() {
		elem.Set(reflect.New(elem.Type().Elem()))
	}
	m, ok := elem.Interface().(proto.Message)
	if !ok {
		return fmt.Errorf("%w: %T is not a proto.Message", ErrUnsupported, elem.Interface())
	}
	return proto.Unmarshal(b, m)
}

func (Protobuf) ID() byte { return IDProtobuf }
