package codec

import "encoding/json"

// JSON is the default serializer.
type JSON struct{}

func (JSON) Marshal(v any) ([]byte, error)   { return json.Marshal(v) }
func (JSON) Unmarshal(b []byte, v any) error { return json.Unmarshal(b, v) }
func (JSON) ID() byte                        { return IDJSON }
