package codec

import "fmt"

// Raw stores []byte and string values unchanged. Useful when the value is
// already encoded and only the object framing is wanted.
type Raw struct{}

func (Raw) Marshal(v any) ([]byte, error) {
	switch x := v.(type) {
	case []byte:
		return x, nil
	case string:
		return []byte(x), nil
	default:
		return nil, fmt.Errorf("%w: raw takes []byte or string, got %T", ErrUnsupported, v)
	}
}

func (Raw) Unmarshal(b []byte, v any) error {
	switch x := v.(type) {
	case *[]byte:
		*x = append([]byte(nil), b...)
	case *string:
		*x = string(b)
	default:
		return fmt.Errorf("%w: raw decodes into *[]byte or *string, got %T", ErrUnsupported, v)
	}
	return nil
}

func (Raw) ID() byte { return IDRaw }
