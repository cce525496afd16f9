package codec

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type user struct {
	ID      string    `json:"id" msgpack:"id" cbor:"id"`
	Name    string    `json:"name" msgpack:"name" cbor:"name"`
	Created time.Time `json:"created" msgpack:"created" cbor:"created"`
}

func TestStructSerializers(t *testing.T) {
	in := user{ID: "1", Name: "ann", Created: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	for _, s := range []Serializer{JSON{}, Msgpack{}, MustCBOR(false), MustCBOR(true)} {
		b, err := s.Marshal(in)
		if err != nil {
			t.Fatalf("%T Marshal: %v", s, err)
		}
		var out user
		if err := s.Unmarshal(b, &out); err != nil {
			t.Fatalf("%T Unmarshal: %v", s, err)
		}
		if out.ID != in.ID || out.Name != in.Name || !out.Created.Equal(in.Created) {
			t.Fatalf("%T mismatch: got %+v want %+v", s, out, in)
		}
	}
}

func TestIDsAreDistinct(t *testing.T) {
	seen := map[byte]string{}
	for _, s := range []Serializer{JSON{}, Msgpack{}, MustCBOR(false), Protobuf{}, Raw{}} {
		name := reflect.TypeOf(s).Name()
		if prev, dup := seen[s.ID()]; dup {
			t.Fatalf("%s and %s share id %d", prev, name, s.ID())
		}
		seen[s.ID()] = name
	}
	if (Limit{Inner: Msgpack{}}).ID() != IDMsgpack {
		t.Fatalf("Limit must report the inner id")
	}
}

func TestProtobufDecodesIntoNilMessagePointer(t *testing.T) {
	p := Protobuf{}
	b, err := p.Marshal(wrapperspb.String("hello"))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var direct wrapperspb.StringValue
	if err := p.Unmarshal(b, &direct); err != nil || direct.GetValue() != "hello" {
		t.Fatalf("direct Unmarshal=%v value=%q", err, direct.GetValue())
	}

	var ptr *wrapperspb.StringValue
	if err := p.Unmarshal(b, &ptr); err != nil {
		t.Fatalf("Unmarshal into **T: %v", err)
	}
	if !proto.Equal(ptr, wrapperspb.String("hello")) {
		t.Fatalf("got %v", ptr)
	}

	if _, err := p.Marshal(struct{}{}); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
	var s string
	if err := p.Unmarshal(b, &s); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported for *string, got %v", err)
	}
}

func TestLimit(t *testing.T) {
	l := Limit{Inner: JSON{}, MaxDecode: 8}
	b, _ := l.Marshal(strings.Repeat("x", 20))
	var out string
	if err := l.Unmarshal(b, &out); err == nil {
		t.Fatalf("expected size error")
	}
	small, _ := l.Marshal("ok")
	if err := l.Unmarshal(small, &out); err != nil || out != "ok" {
		t.Fatalf("small payload: %v %q", err, out)
	}
}

func TestRaw(t *testing.T) {
	r := Raw{}
	b, _ := r.Marshal("abc")
	var bs []byte
	if err := r.Unmarshal(b, &bs); err != nil || string(bs) != "abc" {
		t.Fatalf("Unmarshal []byte: %v %q", err, bs)
	}
	bs[0] = 'X'
	if b[0] != 'a' {
		t.Fatalf("Raw must copy on decode")
	}
	if _, err := r.Marshal(42); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported")
	}
}
