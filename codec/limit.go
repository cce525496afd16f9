package codec

import "fmt"

// Limit wraps another serializer to enforce a maximum payload size at
// Unmarshal time. Marshal is forwarded unchanged. MaxDecode <= 0 disables the
// check.
//
// Typical use: protect against oversized inputs coming from a shared cache.
type Limit struct {
	Inner     Serializer
	MaxDecode int
}

func (c Limit) Marshal(v any) ([]byte, error) { return c.Inner.Marshal(v) }

func (c Limit) Unmarshal(b []byte, v any) error {
	if c.MaxDecode > 0 && len(b) > c.MaxDecode {
		return fmt.Errorf("payload too large: %d > %d", len(b), c.MaxDecode)
	}
	return c.Inner.Unmarshal(b, v)
}

func (c Limit) ID() byte { return c.Inner.ID() }
