// Package codec turns cached values into the bytes a provider stores.
package codec

// Codec encodes and decodes values of one type.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}

// Convert adapts a codec for W into a codec for V, e.g. to persist a domain
// type through a generated protobuf message.
type Convert[V, W any] struct {
	Inner Codec[W]
	To    func(V) (W, error)
	From  func(W) (V, error)
}

func (c Convert[V, W]) Encode(v V) ([]byte, error) {
	w, err := c.To(v)
	if err != nil {
		return nil, err
	}
	return c.Inner.Encode(w)
}

func (c Convert[V, W]) Decode(b []byte) (V, error) {
	w, err := c.Inner.Decode(b)
	if err != nil {
		var zero V
		return zero, err
	}
	return c.From(w)
}
