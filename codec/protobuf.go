package codec

import "google.golang.org/protobuf/proto"

// Protobuf encodes proto messages. New returns an empty message to decode
// into, e.g. func() *structpb.ListValue { return new(structpb.ListValue) }.
type Protobuf[T proto.Message] struct {
	New func() T
}

func (c Protobuf[T]) Encode(v T) ([]byte, error) { return proto.Marshal(v) }

func (c Protobuf[T]) Decode(b []byte) (T, error) {
	m := c.New()
	err := proto.Unmarshal(b, m)
	return m, err
}
